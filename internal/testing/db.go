// Package testing provides testing utilities and helpers for the marketpulse project.
package testing

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/aristath/marketpulse/internal/database"
)

// NewTestDB creates a file-backed SQLite database in a temp dir with the
// snapshot schema applied. Returns the database and a cleanup function that
// closes it; the cleanup is idempotent and the file goes with the temp dir.
func NewTestDB(t *testing.T, name string) (*database.DB, func()) {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: database.ProfileCache,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	closed := false
	return db, func() {
		if closed {
			return
		}
		closed = true
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
	}
}

// GetRawConnection returns the underlying *sql.DB for direct queries in tests
func GetRawConnection(db *database.DB) *sql.DB {
	return db.Conn()
}
