// Package scanner orchestrates a file scan end to end: hash the file,
// consult the local result cache, drive the VirusTotal client through
// lookup, upload and polling, persist the verdict, and reduce it to a
// summary. Files in a batch are processed one at a time, in the order
// given.
package scanner

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"

	"vtscan/internal/cache"
	"vtscan/internal/hashing"
	"vtscan/internal/logging"
	"vtscan/internal/vt"
)

// Options control a single scan invocation.
type Options struct {
	// ForceUpload submits the file bytes even when VirusTotal already
	// knows the hash. It also bypasses the local cache lookup, so the
	// operator gets a fresh verdict.
	ForceUpload bool

	// NoCache disables both the cache lookup and the cache store.
	NoCache bool

	// MaxWait caps how long an uploaded file's analysis is polled.
	// Zero means the client default.
	MaxWait time.Duration
}

// Result is the outcome of scanning one path. A failure is carried on
// Err rather than returned, so batch rendering can report per-file
// failures alongside successes.
type Result struct {
	Path      string      `json:"path"`
	SHA256    string      `json:"sha256,omitempty"`
	Summary   *vt.Summary `json:"summary,omitempty"`
	Uploaded  bool        `json:"uploaded"`
	FromCache bool        `json:"from_cache"`
	Err       error       `json:"-"`
}

// Scanner wires the hasher, the cache and the remote client together.
type Scanner struct {
	client *vt.Client
	cache  *cache.Store
	logger logging.Logger
}

// New creates a Scanner. The cache store may be nil, in which case every
// scan goes to the network; results are the same either way.
func New(client *vt.Client, store *cache.Store, logger logging.Logger) *Scanner {
	return &Scanner{
		client: client,
		cache:  store,
		logger: logging.OrNop(logger),
	}
}

// ScanFile scans a single path and always returns a Result; inspect
// Result.Err for failure. The flow is hash, cache lookup, remote
// lookup-or-upload, cache store, parse. Cache writes are best effort
// and never fail the scan.
func (s *Scanner) ScanFile(ctx context.Context, path string, opts Options) *Result {
	result := &Result{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		result.Err = &PathError{Path: path, Err: ErrFileNotFound}
		return result
	}
	if !info.Mode().IsRegular() {
		result.Err = &PathError{Path: path, Err: ErrNotAFile}
		return result
	}

	// A short correlation ID rides on the context so client log lines
	// from the same scan can be matched up with these.
	scanID := uuid.NewString()[:8]
	ctx = logging.ContextWithScanID(ctx, scanID)
	logger := logging.WithScanID(s.logger, scanID)

	hash, err := hashing.SHA256File(path)
	if err != nil {
		result.Err = err
		return result
	}
	result.SHA256 = hash
	logger.Debug("%s sha256=%s", path, hash)

	if s.cache != nil && !opts.NoCache && !opts.ForceUpload {
		if payload, ok := s.cache.Lookup(hash); ok {
			summary, err := vt.ParseSummary(payload)
			if err == nil {
				logger.Info("cache hit for %s", hash)
				result.Summary = summary
				result.FromCache = true
				return result
			}
			// A cache entry we cannot parse is as good as absent.
			logger.Warn("unreadable cache entry for %s: %v", hash, err)
		}
	}

	payload, uploaded, err := s.client.Scan(ctx, path, hash, opts.ForceUpload, opts.MaxWait)
	result.Uploaded = uploaded
	if err != nil {
		result.Err = err
		return result
	}

	if s.cache != nil && !opts.NoCache {
		if err := s.cache.Store(hash, payload); err != nil {
			logger.Warn("could not cache result for %s: %v", hash, err)
		}
	}

	summary, err := vt.ParseSummary(payload)
	if err != nil {
		result.Err = err
		return result
	}
	result.Summary = summary
	logger.Info("%s is %s (%d/%d)", path, summary.Severity, summary.Detections, summary.TotalScans)
	return result
}

// ScanBatch scans paths sequentially, in the order given. One file's
// failure is recorded on its Result and does not stop the rest.
func (s *Scanner) ScanBatch(ctx context.Context, paths []string, opts Options) []*Result {
	results := make([]*Result, 0, len(paths))
	for _, path := range paths {
		results = append(results, s.ScanFile(ctx, path, opts))
	}
	return results
}

// CheckHash looks up a digest without uploading anything. The lookup
// accepts MD5, SHA-1 or SHA-256, as the API does. A hash VirusTotal has
// never seen yields an error satisfying vt.IsNotFound; the local cache
// is not consulted.
func (s *Scanner) CheckHash(ctx context.Context, hash string) (*vt.Summary, error) {
	payload, err := s.client.FileReport(ctx, hash)
	if err != nil {
		return nil, err
	}
	return vt.ParseSummary(payload)
}
