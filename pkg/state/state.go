// Package state persists fetch watermarks between harvester runs.
//
// The fetch engine itself keeps no state: every run traverses the listing
// from the requested from-date. Incremental behavior comes from the caller
// remembering when the last clean run started and passing that time back
// as the next run's from-date. This package provides that memory, keyed by
// origin and category, with a file-based store for standalone CLI use and
// a Redis store for shared deployments.
package state

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Store persists the last-fetch watermark under a caller-chosen key.
type Store interface {
	// Load returns the watermark for key. The boolean is false when no
	// watermark has been recorded yet.
	Load(ctx context.Context, key string) (time.Time, bool, error)

	// Save records t as the watermark for key, replacing any previous
	// value.
	Save(ctx context.Context, key string, t time.Time) error

	// Close releases any resources held by the store.
	Close() error
}

// Key builds the canonical watermark key for an origin and category.
func Key(origin, category string) string {
	return origin + "#" + category
}

// FileStore keeps watermarks as JSON files in a directory, one file per
// key. It is safe for concurrent use within a single process; cross-process
// writers race benignly (last write wins).
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates a file-based store rooted at dir, creating the
// directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

type watermark struct {
	LastFetch time.Time `json:"last_fetch"`
}

func (s *FileStore) path(key string) string {
	sum := sha1.Sum([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".json")
}

func (s *FileStore) Load(ctx context.Context, key string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read watermark: %w", err)
	}

	var w watermark
	if err := json.Unmarshal(data, &w); err != nil {
		return time.Time{}, false, fmt.Errorf("parse watermark: %w", err)
	}
	return w.LastFetch.UTC(), true, nil
}

func (s *FileStore) Save(ctx context.Context, key string, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(watermark{LastFetch: t.UTC()})
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		return fmt.Errorf("write watermark: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
