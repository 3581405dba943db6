package reliability

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	archivePrefix     = "marketpulse-views-"
	archiveSuffix     = ".json.gz"
	archiveTimeFormat = "2006-01-02-150405"
	archiveVersion    = "1"

	// minArchivesToKeep survive rotation regardless of age
	minArchivesToKeep = 3
)

// ViewCollector produces one section of the archive
type ViewCollector func(ctx context.Context) (interface{}, error)

// ArchiveDocument is the archived JSON document
type ArchiveDocument struct {
	Version     string                 `json:"version"`
	GeneratedAt time.Time              `json:"generatedAt"`
	Views       map[string]interface{} `json:"views"`
	Errors      map[string]string      `json:"errors,omitempty"`
}

// ArchiveInfo represents an archive stored in the bucket
type ArchiveInfo struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"sizeBytes"`
	AgeHours  int64     `json:"ageHours"`
}

// ArchiveResult summarizes one archive run
type ArchiveResult struct {
	Key       string `json:"key"`
	SizeBytes int64  `json:"sizeBytes"`
	Rotated   int    `json:"rotated"`
}

// ArchiveService uploads gzip'd JSON snapshots of the derived views
type ArchiveService struct {
	store      ObjectStore
	mu         sync.RWMutex
	names      []string
	collectors map[string]ViewCollector
	now        func() time.Time
	log        zerolog.Logger
}

// NewArchiveService creates a new archive service
func NewArchiveService(store ObjectStore, log zerolog.Logger) *ArchiveService {
	return &ArchiveService{
		store:      store,
		collectors: make(map[string]ViewCollector),
		now:        time.Now,
		log:        log.With().Str("service", "archive").Logger(),
	}
}

// Register adds a named section to every archive. Registering a name again replaces it.
func (s *ArchiveService) Register(name string, collector ViewCollector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.collectors[name]; !exists {
		s.names = append(s.names, name)
	}
	s.collectors[name] = collector
}

// Collect builds the archive document. Failing sections are recorded in Errors;
// it fails only when every section failed.
func (s *ArchiveService) Collect(ctx context.Context) (*ArchiveDocument, error) {
	s.mu.RLock()
	names := append([]string(nil), s.names...)
	collectors := make(map[string]ViewCollector, len(s.collectors))
	for k, v := range s.collectors {
		collectors[k] = v
	}
	s.mu.RUnlock()

	if len(names) == 0 {
		return nil, errors.New("no views registered for archiving")
	}

	doc := &ArchiveDocument{
		Version:     archiveVersion,
		GeneratedAt: s.now().UTC(),
		Views:       make(map[string]interface{}, len(names)),
	}

	for _, name := range names {
		view, err := collectors[name](ctx)
		if err != nil {
			if doc.Errors == nil {
				doc.Errors = make(map[string]string)
			}
			doc.Errors[name] = err.Error()
			s.log.Warn().Err(err).Str("view", name).Msg("Failed to collect view for archive")
			continue
		}
		doc.Views[name] = view
	}

	if len(doc.Views) == 0 {
		return nil, fmt.Errorf("all %d views failed to collect", len(names))
	}
	return doc, nil
}

// CreateAndUpload collects the views and uploads them as a gzip'd JSON archive
func (s *ArchiveService) CreateAndUpload(ctx context.Context) (*ArchiveResult, error) {
	s.log.Info().Msg("Starting view archive")
	startTime := time.Now()

	doc, err := s.Collect(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode archive: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress archive: %w", err)
	}

	key := ArchiveKey(doc.GeneratedAt)
	size := int64(buf.Len())
	if err := s.store.Upload(ctx, key, &buf, "application/gzip"); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("key", key).
		Int64("size_bytes", size).
		Int("views", len(doc.Views)).
		Dur("duration_ms", time.Since(startTime)).
		Msg("View archive uploaded")

	return &ArchiveResult{Key: key, SizeBytes: size}, nil
}

// ListArchives lists the archives in the bucket, newest first
func (s *ArchiveService) ListArchives(ctx context.Context) ([]ArchiveInfo, error) {
	objects, err := s.store.List(ctx, archivePrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list archives: %w", err)
	}

	now := s.now()
	archives := make([]ArchiveInfo, 0, len(objects))
	for _, obj := range objects {
		timestamp, ok := parseArchiveKey(obj.Key)
		if !ok {
			s.log.Warn().Str("key", obj.Key).Msg("Failed to parse timestamp from archive key")
			continue
		}
		archives = append(archives, ArchiveInfo{
			Key:       obj.Key,
			Timestamp: timestamp,
			SizeBytes: obj.SizeBytes,
			AgeHours:  int64(now.Sub(timestamp).Hours()),
		})
	}

	sort.Slice(archives, func(i, j int) bool {
		return archives[i].Timestamp.After(archives[j].Timestamp)
	})
	return archives, nil
}

// RotateOldArchives deletes archives older than retentionDays, always keeping
// the newest few. A retention of 0 keeps everything. Returns the number deleted.
func (s *ArchiveService) RotateOldArchives(ctx context.Context, retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	archives, err := s.ListArchives(ctx)
	if err != nil {
		return 0, err
	}
	if len(archives) <= minArchivesToKeep {
		return 0, nil
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays)
	deleted := 0
	for _, archive := range archives[minArchivesToKeep:] {
		if !archive.Timestamp.Before(cutoff) {
			continue
		}
		if err := s.store.Delete(ctx, archive.Key); err != nil {
			s.log.Error().Err(err).Str("key", archive.Key).Msg("Failed to delete old archive")
			continue
		}
		deleted++
	}

	if deleted > 0 {
		s.log.Info().
			Int("deleted", deleted).
			Int("remaining", len(archives)-deleted).
			Msg("Archive rotation completed")
	}
	return deleted, nil
}

// ArchiveKey returns the object key of an archive generated at t
func ArchiveKey(t time.Time) string {
	return archivePrefix + t.UTC().Format(archiveTimeFormat) + archiveSuffix
}

func parseArchiveKey(key string) (time.Time, bool) {
	if !strings.HasPrefix(key, archivePrefix) || !strings.HasSuffix(key, archiveSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(key, archivePrefix), archiveSuffix)
	t, err := time.Parse(archiveTimeFormat, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
