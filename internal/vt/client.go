package vt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vtscan/internal/httpclient"
	"vtscan/internal/logging"
)

const (
	// DefaultBaseURL is the production VirusTotal API v3 endpoint.
	DefaultBaseURL = "https://www.virustotal.com/api/v3"

	// DefaultMaxWait bounds how long WaitForAnalysis polls before giving up.
	DefaultMaxWait = 5 * time.Minute

	// pollInterval is the fixed pause between analysis polls.
	pollInterval = 5 * time.Second

	// uploadURLThreshold is the file size above which uploads go through a
	// dedicated upload URL, as the API requires for large files.
	uploadURLThreshold int64 = 32 << 20

	apiKeyHeader = "x-apikey"

	filesPath     = "/files"
	uploadURLPath = "/files/upload_url"
	analysesPath  = "/analyses"

	lookupTimeout = 30 * time.Second
	uploadTimeout = 300 * time.Second

	statusCompleted = "completed"
)

// Client talks to the VirusTotal API v3. All methods are safe for
// sequential use; the CLI never issues concurrent API calls.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger

	uploadLimit int64
	pollEvery   time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		c.logger = logging.OrNop(logger)
	}
}

// NewClient builds a client for the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:      apiKey,
		baseURL:     DefaultBaseURL,
		logger:      logging.Nop(),
		uploadLimit: uploadURLThreshold,
		pollEvery:   pollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = httpclient.New(0, c.logger)
	}
	return c
}

// log returns the client logger tagged with the scan ID carried on ctx,
// so lookup and upload lines line up with the scanner's.
func (c *Client) log(ctx context.Context) logging.Logger {
	return logging.FromContext(ctx, c.logger)
}

// FileReport fetches the existing report for a file hash (SHA-256, and the
// API equally accepts MD5 or SHA-1). ErrNotFound is returned when VirusTotal
// has never seen the hash.
func (c *Client) FileReport(ctx context.Context, hash string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	c.log(ctx).Debug("checking hash %s", hash)
	body, err := c.get(ctx, filesPath+"/"+hash, "check hash")
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("hash %s: %w", hash, ErrNotFound)
		}
		return nil, err
	}
	return body, nil
}

// UploadFile submits the file at path for analysis and returns the analysis
// ID to poll. Files above 32 MiB are routed through a one-time upload URL.
func (c *Client) UploadFile(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	endpoint := c.baseURL + filesPath
	if info.Size() > c.uploadLimit {
		uploadURL, err := c.fetchUploadURL(ctx)
		if err != nil {
			return "", err
		}
		endpoint = uploadURL
		c.log(ctx).Debug("large file (%d bytes), using dedicated upload URL", info.Size())
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	// The multipart prologue and epilogue are tiny; only they are built in
	// memory. The file content itself streams from disk so uploads of
	// hundreds of megabytes stay flat on memory.
	var head bytes.Buffer
	mw := multipart.NewWriter(&head)
	if _, err := mw.CreateFormFile("file", filepath.Base(path)); err != nil {
		return "", err
	}
	tail := fmt.Sprintf("\r\n--%s--\r\n", mw.Boundary())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		io.MultiReader(&head, f, strings.NewReader(tail)))
	if err != nil {
		return "", err
	}
	req.ContentLength = int64(head.Len()) + info.Size() + int64(len(tail))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.setHeaders(req)

	c.log(ctx).Info("uploading %s (%d bytes)", filepath.Base(path), info.Size())
	respBody, err := c.do(req, "upload file")
	if err != nil {
		return "", err
	}

	var uploadResp struct {
		Data struct {
			Type string `json:"type"`
			ID   string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &uploadResp); err != nil {
		return "", &ParseError{Reason: "upload response: " + err.Error()}
	}
	if uploadResp.Data.ID == "" {
		return "", &ParseError{Reason: "upload response missing analysis id"}
	}

	c.log(ctx).Info("upload accepted, analysis id %s", uploadResp.Data.ID)
	return uploadResp.Data.ID, nil
}

// Analysis fetches the current state of an analysis by ID.
func (c *Client) Analysis(ctx context.Context, analysisID string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	return c.get(ctx, analysesPath+"/"+analysisID, "fetch analysis")
}

// WaitForAnalysis polls an analysis at a fixed interval until it completes
// or maxWait elapses. maxWait <= 0 falls back to DefaultMaxWait. There are
// no retries: the first request or API error ends the wait.
func (c *Client) WaitForAnalysis(ctx context.Context, analysisID string, maxWait time.Duration) (json.RawMessage, error) {
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}
	start := time.Now()
	logger := c.log(ctx)
	logger.Info("waiting for analysis %s (up to %s)", analysisID, maxWait)

	for time.Since(start) < maxWait {
		payload, err := c.Analysis(ctx, analysisID)
		if err != nil {
			return nil, err
		}

		status, err := analysisStatus(payload)
		if err != nil {
			return nil, err
		}
		if status == statusCompleted {
			logger.Info("analysis %s completed after %s", analysisID, time.Since(start).Round(time.Second))
			return payload, nil
		}

		logger.Debug("analysis %s still %s after %s", analysisID, status, time.Since(start).Round(time.Second))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollEvery):
		}
	}

	return nil, &TimeoutError{AnalysisID: analysisID, Waited: time.Since(start)}
}

// Scan runs the full flow for one file whose SHA-256 is already known: a
// report lookup first, then upload plus polling when the hash is unknown.
// forceUpload skips the lookup entirely. The returned bool reports whether
// the file was uploaded for a fresh analysis.
func (c *Client) Scan(ctx context.Context, path, sha256 string, forceUpload bool, maxWait time.Duration) (json.RawMessage, bool, error) {
	if !forceUpload {
		payload, err := c.FileReport(ctx, sha256)
		if err == nil {
			return payload, false, nil
		}
		if !IsNotFound(err) {
			return nil, false, err
		}
		c.log(ctx).Info("hash %s unknown to VirusTotal, uploading %s", sha256, filepath.Base(path))
	}

	analysisID, err := c.UploadFile(ctx, path)
	if err != nil {
		return nil, false, err
	}

	payload, err := c.WaitForAnalysis(ctx, analysisID, maxWait)
	if err != nil {
		return nil, true, err
	}
	return payload, true, nil
}

func (c *Client) fetchUploadURL(ctx context.Context) (string, error) {
	body, err := c.get(ctx, uploadURLPath, "fetch upload URL")
	if err != nil {
		return "", err
	}

	// The upload URL endpoint wraps a bare string, not an object.
	var urlResp struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(body, &urlResp); err != nil {
		return "", &ParseError{Reason: "upload URL response: " + err.Error()}
	}
	if urlResp.Data == "" {
		return "", &ParseError{Reason: "upload URL response missing data"}
	}
	return urlResp.Data, nil
}

func (c *Client) get(ctx context.Context, path, op string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	return c.do(req, op)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
}

func (c *Client) do(req *http.Request, op string) (json.RawMessage, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := httpclient.ReadAllWithLimit(resp.Body, httpclient.DefaultBodyLimit)
	if err != nil {
		return nil, &RequestError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}

func analysisStatus(payload json.RawMessage) (string, error) {
	var resp struct {
		Data struct {
			Attributes struct {
				Status string `json:"status"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &resp); err != nil {
		return "", &ParseError{Reason: "analysis response: " + err.Error()}
	}
	if resp.Data.Attributes.Status == "" {
		return "", &ParseError{Reason: "analysis response missing status"}
	}
	return resp.Data.Attributes.Status, nil
}
