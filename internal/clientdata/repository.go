// Package clientdata provides the persistent cache of upstream API snapshots.
// Snapshots are stored as msgpack blobs with expiration timestamps for cache-first behavior.
package clientdata

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Entry describes a cached snapshot without its payload
type Entry struct {
	Key       string    `json:"key"`
	FetchedAt time.Time `json:"fetchedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	SizeBytes int       `json:"sizeBytes"`
}

// Fresh reports whether the entry is still within its TTL at now
func (e Entry) Fresh(now time.Time) bool {
	return e.ExpiresAt.After(now)
}

// Repository provides cache operations for upstream snapshots.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new snapshot repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Store saves data with expiration = now + ttl, replacing any previous snapshot.
func (r *Repository) Store(key string, data interface{}, ttl time.Duration) error {
	blob, err := encode(data)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", key, err)
	}

	now := time.Now()
	_, err = r.db.Exec(
		"INSERT OR REPLACE INTO snapshots (key, data, expires_at, fetched_at) VALUES (?, ?, ?, ?)",
		key, blob, now.Add(ttl).Unix(), now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store snapshot %s: %w", key, err)
	}
	return nil
}

// GetIfFresh decodes the snapshot into out only if it has not expired.
// found is false when the key is missing or expired.
// Use Get() to retrieve stale data as a fallback when upstream calls fail.
func (r *Repository) GetIfFresh(key string, out interface{}) (found bool, err error) {
	var blob []byte
	err = r.db.QueryRow(
		"SELECT data FROM snapshots WHERE key = ? AND expires_at > ?",
		key, time.Now().Unix(),
	).Scan(&blob)
	return r.decodeRow(key, blob, err, out)
}

// Get decodes the snapshot into out regardless of expiration.
// Stale data is better than no data.
func (r *Repository) Get(key string, out interface{}) (found bool, err error) {
	var blob []byte
	err = r.db.QueryRow("SELECT data FROM snapshots WHERE key = ?", key).Scan(&blob)
	return r.decodeRow(key, blob, err, out)
}

func (r *Repository) decodeRow(key string, blob []byte, err error, out interface{}) (bool, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get snapshot %s: %w", key, err)
	}
	if err := decode(blob, out); err != nil {
		return false, fmt.Errorf("failed to decode snapshot %s: %w", key, err)
	}
	return true, nil
}

// Delete removes a specific snapshot.
func (r *Repository) Delete(key string) error {
	if _, err := r.db.Exec("DELETE FROM snapshots WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", key, err)
	}
	return nil
}

// DeleteExpired removes snapshots that expired more than grace ago.
// Returns the number of rows deleted.
func (r *Repository) DeleteExpired(grace time.Duration) (int64, error) {
	cutoff := time.Now().Add(-grace).Unix()

	result, err := r.db.Exec("DELETE FROM snapshots WHERE expires_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired snapshots: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// Keys lists every cached snapshot ordered by key.
func (r *Repository) Keys() ([]Entry, error) {
	rows, err := r.db.Query("SELECT key, fetched_at, expires_at, length(data) FROM snapshots ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		var fetchedAt, expiresAt int64
		if err := rows.Scan(&e.Key, &fetchedAt, &expiresAt, &e.SizeBytes); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		e.FetchedAt = time.Unix(fetchedAt, 0).UTC()
		e.ExpiresAt = time.Unix(expiresAt, 0).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	return entries, nil
}

// encode uses the json tags so cached payloads keep the upstream field names
func encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(data []byte, out interface{}) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(out)
}
