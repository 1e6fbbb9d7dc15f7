package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"vtscan/internal/httpclient"
	"vtscan/internal/logging"
)

const defaultWebhookTimeout = 10 * time.Second

// WebhookChannel POSTs each notification as JSON to a fixed URL, so a
// malicious verdict can reach an external endpoint as well as the desk.
type WebhookChannel struct {
	name    string
	url     string
	headers map[string]string
	timeout time.Duration
	logger  logging.Logger
	client  *http.Client
}

// WebhookOption configures a WebhookChannel.
type WebhookOption func(*WebhookChannel)

// WithTimeout bounds each webhook request.
func WithTimeout(d time.Duration) WebhookOption {
	return func(w *WebhookChannel) { w.timeout = d }
}

// WithHeaders adds headers to every webhook request, for endpoint
// authentication tokens and the like.
func WithHeaders(headers map[string]string) WebhookOption {
	return func(w *WebhookChannel) { w.headers = headers }
}

// WithWebhookLogger attaches a logger to the channel's HTTP transport.
func WithWebhookLogger(logger logging.Logger) WebhookOption {
	return func(w *WebhookChannel) { w.logger = logging.OrNop(logger) }
}

// NewWebhookChannel creates a channel delivering to url.
func NewWebhookChannel(name, url string, opts ...WebhookOption) *WebhookChannel {
	w := &WebhookChannel{
		name:    name,
		url:     url,
		timeout: defaultWebhookTimeout,
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.client = httpclient.New(w.timeout, w.logger)
	return w
}

type webhookPayload struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Priority  int               `json:"priority"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func (w *WebhookChannel) Name() string { return w.name }

func (w *WebhookChannel) Send(ctx context.Context, n Notification) error {
	payload := webhookPayload{
		ID:        n.ID,
		Title:     n.Title,
		Body:      n.Body,
		Priority:  int(n.Priority),
		Metadata:  n.Metadata,
		CreatedAt: n.CreatedAt,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook %s: encode payload: %w", w.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook %s: build request: %w", w.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range w.headers {
		req.Header.Set(key, value)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook %s: %w", w.name, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s: unexpected status %d", w.name, resp.StatusCode)
	}
	return nil
}

func (w *WebhookChannel) Supports(NotificationPriority) bool { return true }
