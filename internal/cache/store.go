// Package cache persists VirusTotal verdicts on disk so repeat scans of
// unchanged files skip the network entirely.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"vtscan/internal/logging"
)

const (
	// DefaultMaxAge is how long a cached verdict stays valid. Detection
	// engines update daily, so week-old results are rescanned.
	DefaultMaxAge = 7 * 24 * time.Hour

	hotEntries = 128
	fileMode   = 0600
)

// hotEntry keeps a recently touched payload in memory alongside the time it
// was stored on disk.
type hotEntry struct {
	payload  json.RawMessage
	storedAt time.Time
}

// Store is a file-per-hash verdict cache with a small in-memory LRU front.
type Store struct {
	dir    string
	maxAge time.Duration
	hot    *lru.Cache[string, hotEntry]
	logger logging.Logger
}

// New opens a cache rooted at dir, creating the directory when needed.
// maxAge <= 0 falls back to DefaultMaxAge.
func New(dir string, maxAge time.Duration, logger logging.Logger) (*Store, error) {
	if strings.HasPrefix(dir, "~/") {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, dir[2:])
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	hot, err := lru.New[string, hotEntry](hotEntries)
	if err != nil {
		return nil, err
	}
	return &Store{
		dir:    dir,
		maxAge: maxAge,
		hot:    hot,
		logger: logging.OrNop(logger),
	}, nil
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	return s.dir
}

// Lookup returns the cached payload for hash when present and fresh. Any
// problem reading an entry is treated as a miss, so scans behave the same
// with or without a working cache.
func (s *Store) Lookup(hash string) (json.RawMessage, bool) {
	if entry, ok := s.hot.Get(hash); ok {
		if time.Since(entry.storedAt) <= s.maxAge {
			s.logger.Debug("cache hit (memory) sha256=%s", hash)
			return entry.payload, true
		}
		s.hot.Remove(hash)
	}

	path := s.entryPath(hash)
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) > s.maxAge {
		// Stale entries are removed lazily on the read path.
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove stale cache entry %s: %v", path, err)
		}
		s.logger.Debug("cache expired sha256=%s", hash)
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Warn("failed to read cache entry %s: %v", path, err)
		return nil, false
	}
	if !json.Valid(data) {
		s.logger.Warn("ignoring corrupt cache entry %s. Preview: %s", path, previewJSON(data))
		return nil, false
	}

	s.hot.Add(hash, hotEntry{payload: data, storedAt: info.ModTime()})
	s.logger.Debug("cache hit (disk) sha256=%s", hash)
	return data, true
}

// Store persists payload for hash. A failed write is reported but callers
// treat it as advisory; the scan result itself is already in hand.
func (s *Store) Store(hash string, payload json.RawMessage) error {
	if err := os.WriteFile(s.entryPath(hash), payload, fileMode); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	s.hot.Add(hash, hotEntry{payload: payload, storedAt: time.Now()})
	s.logger.Debug("cached result sha256=%s (%d bytes)", hash, len(payload))
	return nil
}

// Clear removes every cached entry and reports how many were deleted.
func (s *Store) Clear() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			s.logger.Warn("failed to remove cache entry %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}
	s.hot.Purge()
	return removed, nil
}

// Count reports how many entries are currently cached on disk.
func (s *Store) Count() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			n++
		}
	}
	return n, nil
}

func (s *Store) entryPath(hash string) string {
	return filepath.Join(s.dir, hash+".json")
}

func previewJSON(data []byte) string {
	const maxPreview = 512
	preview := strings.TrimSpace(string(data))
	preview = strings.ReplaceAll(preview, "\n", " ")
	preview = strings.ReplaceAll(preview, "\t", " ")
	if len(preview) > maxPreview {
		preview = preview[:maxPreview] + "... (truncated)"
	}
	return preview
}
