package scanner

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"vtscan/internal/cache"
	"vtscan/internal/hashing"
	"vtscan/internal/logging"
	"vtscan/internal/vt"
)

const (
	cleanFileReport = `{"data": {"type": "file", "attributes": {
		"last_analysis_stats": {"malicious": 0, "suspicious": 0, "undetected": 70, "harmless": 0},
		"last_analysis_date": 1700000000}}}`
	completedAnalysis = `{"data": {"type": "analysis", "attributes": {
		"status": "completed",
		"stats": {"malicious": 0, "suspicious": 0, "undetected": 65, "harmless": 5},
		"date": 1700000000}}}`
)

func newTestScanner(t *testing.T, handler http.Handler) (*Scanner, *cache.Store) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store, err := cache.New(t.TempDir(), 0, nil)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	client := vt.NewClient("test-key", vt.WithBaseURL(server.URL))
	return New(client, store, logging.Nop()), store
}

func writeScanTarget(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "target.bin")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write target: %v", err)
	}
	return path
}

func TestScanFileCachesResult(t *testing.T) {
	var lookups atomic.Int32
	s, _ := newTestScanner(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		lookups.Add(1)
		w.Write([]byte(cleanFileReport))
	}))
	path := writeScanTarget(t, "cache me")

	first := s.ScanFile(context.Background(), path, Options{})
	if first.Err != nil {
		t.Fatalf("first scan: %v", first.Err)
	}
	if first.FromCache || first.Uploaded {
		t.Fatalf("first scan should hit the network, got %+v", first)
	}
	if first.Summary.Severity != vt.SeverityClean {
		t.Fatalf("expected CLEAN, got %s", first.Summary.Severity)
	}

	second := s.ScanFile(context.Background(), path, Options{})
	if second.Err != nil {
		t.Fatalf("second scan: %v", second.Err)
	}
	if !second.FromCache {
		t.Fatal("second scan should come from cache")
	}
	if lookups.Load() != 1 {
		t.Fatalf("expected 1 remote lookup, got %d", lookups.Load())
	}
}

func TestScanFileNoCache(t *testing.T) {
	var lookups atomic.Int32
	s, _ := newTestScanner(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lookups.Add(1)
		w.Write([]byte(cleanFileReport))
	}))
	path := writeScanTarget(t, "never cached")

	for i := 0; i < 2; i++ {
		result := s.ScanFile(context.Background(), path, Options{NoCache: true})
		if result.Err != nil {
			t.Fatalf("scan %d: %v", i, result.Err)
		}
		if result.FromCache {
			t.Fatalf("scan %d should not use the cache", i)
		}
	}
	if lookups.Load() != 2 {
		t.Fatalf("expected 2 remote lookups, got %d", lookups.Load())
	}
}

func TestScanFileForceUploadBypassesCache(t *testing.T) {
	var lookups, uploads atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		lookups.Add(1)
		w.Write([]byte(cleanFileReport))
	})
	mux.HandleFunc("/files", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		uploads.Add(1)
		w.Write([]byte(`{"data": {"type": "analysis", "id": "analysis-1"}}`))
	})
	mux.HandleFunc("/analyses/analysis-1", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Write([]byte(completedAnalysis))
	})

	s, store := newTestScanner(t, mux)
	path := writeScanTarget(t, "rescan me")

	hash, err := hashing.SHA256File(path)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := store.Store(hash, []byte(cleanFileReport)); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	result := s.ScanFile(context.Background(), path, Options{ForceUpload: true})
	if result.Err != nil {
		t.Fatalf("scan: %v", result.Err)
	}
	if !result.Uploaded || result.FromCache {
		t.Fatalf("expected a forced upload, got %+v", result)
	}
	if lookups.Load() != 0 {
		t.Fatalf("force upload must skip hash lookup, got %d", lookups.Load())
	}
	if uploads.Load() != 1 {
		t.Fatalf("expected 1 upload, got %d", uploads.Load())
	}

	// The fresh verdict replaced the cached one.
	followup := s.ScanFile(context.Background(), path, Options{})
	if followup.Err != nil {
		t.Fatalf("followup: %v", followup.Err)
	}
	if !followup.FromCache {
		t.Fatal("followup should be served from cache")
	}
	if lookups.Load() != 0 {
		t.Fatalf("followup should not hit the network, got %d lookups", lookups.Load())
	}
}

func TestScanFileMissingPath(t *testing.T) {
	s, _ := newTestScanner(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	}))

	result := s.ScanFile(context.Background(), filepath.Join(t.TempDir(), "ghost.bin"), Options{})
	if !IsPathError(result.Err) {
		t.Fatalf("expected PathError, got %v", result.Err)
	}
	if !errors.Is(result.Err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", result.Err)
	}
}

func TestScanFileRejectsDirectory(t *testing.T) {
	s, _ := newTestScanner(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	}))

	result := s.ScanFile(context.Background(), t.TempDir(), Options{})
	if !errors.Is(result.Err, ErrNotAFile) {
		t.Fatalf("expected ErrNotAFile, got %v", result.Err)
	}
}

func TestScanBatchContinuesPastFailures(t *testing.T) {
	s, _ := newTestScanner(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(cleanFileReport))
	}))

	good1 := writeScanTarget(t, "first")
	good2 := writeScanTarget(t, "second")
	missing := filepath.Join(t.TempDir(), "missing.bin")

	results := s.ScanBatch(context.Background(), []string{good1, missing, good2}, Options{})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Path != good1 || results[1].Path != missing || results[2].Path != good2 {
		t.Fatal("results must keep input order")
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("good files must succeed: %v, %v", results[0].Err, results[2].Err)
	}
	if !errors.Is(results[1].Err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound for the middle file, got %v", results[1].Err)
	}
}

func TestScanFileSurvivesCacheWriteFailure(t *testing.T) {
	cacheDir := t.TempDir()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(cleanFileReport))
	}))
	t.Cleanup(server.Close)

	store, err := cache.New(cacheDir, 0, nil)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	client := vt.NewClient("test-key", vt.WithBaseURL(server.URL))
	s := New(client, store, logging.Nop())

	// Pull the directory out from under the store.
	if err := os.RemoveAll(cacheDir); err != nil {
		t.Fatalf("remove cache dir: %v", err)
	}

	path := writeScanTarget(t, "still fine")
	result := s.ScanFile(context.Background(), path, Options{})
	if result.Err != nil {
		t.Fatalf("a failed cache write must not fail the scan: %v", result.Err)
	}
	if result.Summary == nil {
		t.Fatal("expected a summary")
	}
}

func TestScanFileUnparseableCacheEntryFallsThrough(t *testing.T) {
	var lookups atomic.Int32
	s, store := newTestScanner(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lookups.Add(1)
		w.Write([]byte(cleanFileReport))
	}))
	path := writeScanTarget(t, "bad cache entry")

	hash, err := hashing.SHA256File(path)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	// Valid JSON, but not a verdict shape the parser accepts.
	if err := store.Store(hash, []byte(`{"data": {"type": "domain"}}`)); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	result := s.ScanFile(context.Background(), path, Options{})
	if result.Err != nil {
		t.Fatalf("scan: %v", result.Err)
	}
	if result.FromCache {
		t.Fatal("an unparseable entry must not satisfy the scan")
	}
	if lookups.Load() != 1 {
		t.Fatalf("expected the scan to fall through to the network, got %d lookups", lookups.Load())
	}
}

func TestCheckHash(t *testing.T) {
	s, _ := newTestScanner(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/deadbeef" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(cleanFileReport))
	}))

	summary, err := s.CheckHash(context.Background(), "deadbeef")
	if err != nil {
		t.Fatalf("check hash: %v", err)
	}
	if summary.Severity != vt.SeverityClean {
		t.Fatalf("expected CLEAN, got %s", summary.Severity)
	}
}

func TestCheckHashNotFound(t *testing.T) {
	s, _ := newTestScanner(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"code": "NotFoundError"}}`, http.StatusNotFound)
	}))

	_, err := s.CheckHash(context.Background(), "deadbeef")
	if !vt.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}
