package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"vtscan/internal/logging"
)

const defaultHistorySize = 50

// Center routes notifications to registered channels and keeps a short
// in-memory delivery history. It is safe for concurrent use.
type Center struct {
	mu          sync.Mutex
	channels    map[string]*registeredChannel
	order       []string
	defaultName string
	history     []SendResult
	historySize int
	logger      logging.Logger
}

type registeredChannel struct {
	channel Channel
	config  ChannelConfig
}

// CenterOption configures a Center.
type CenterOption func(*Center)

// WithDefaultChannel names the channel used when a notification does not
// target one. The channel may be registered later.
func WithDefaultChannel(name string) CenterOption {
	return func(c *Center) { c.defaultName = name }
}

// WithHistorySize bounds the delivery history.
func WithHistorySize(n int) CenterOption {
	return func(c *Center) {
		if n > 0 {
			c.historySize = n
		}
	}
}

// WithLogger attaches a logger for delivery tracing.
func WithLogger(logger logging.Logger) CenterOption {
	return func(c *Center) { c.logger = logging.OrNop(logger) }
}

// NewCenter creates an empty Center.
func NewCenter(opts ...CenterOption) *Center {
	c := &Center{
		channels:    make(map[string]*registeredChannel),
		historySize: defaultHistorySize,
		logger:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterChannel adds or replaces a channel under its own name.
func (c *Center) RegisterChannel(ch Channel, cfg ChannelConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := ch.Name()
	cfg.Name = name
	if _, exists := c.channels[name]; !exists {
		c.order = append(c.order, name)
	}
	c.channels[name] = &registeredChannel{channel: ch, config: cfg}
	if cfg.IsDefault {
		c.defaultName = name
	}
}

// UnregisterChannel removes a channel. Removing the default clears it.
func (c *Center) UnregisterChannel(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.channels, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	if c.defaultName == name {
		c.defaultName = ""
	}
}

// SetDefault makes a registered channel the default target.
func (c *Center) SetDefault(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.channels[name]; !ok {
		return fmt.Errorf("channel %q not found", name)
	}
	c.defaultName = name
	return nil
}

// ListChannels returns every registered channel's configuration.
func (c *Center) ListChannels() []ChannelConfig {
	c.mu.Lock()
	defer c.mu.Unlock()

	configs := make([]ChannelConfig, 0, len(c.order))
	for _, name := range c.order {
		reg, ok := c.channels[name]
		if !ok {
			continue
		}
		cfg := reg.config
		cfg.IsDefault = name == c.defaultName
		configs = append(configs, cfg)
	}
	return configs
}

// Send delivers a notification to its target channel, or the default
// when none is named. Critical notifications additionally fan out to
// every other enabled channel that accepts them. Delivery problems are
// reported on the SendResult; the returned error only covers having no
// channel to send to at all.
func (c *Center) Send(ctx context.Context, n Notification) (SendResult, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	target := n.Channel
	if target == "" {
		c.mu.Lock()
		target = c.defaultName
		c.mu.Unlock()
	}
	if target == "" {
		return SendResult{}, errors.New("no channel specified and no default channel configured")
	}

	result := c.deliver(ctx, n, target)

	if n.Priority >= PriorityCritical {
		for _, name := range c.fanOutTargets(target, n.Priority) {
			c.deliver(ctx, n, name)
		}
	}
	return result, nil
}

// SendMulti delivers one notification to several named channels,
// returning a result per channel in the order given.
func (c *Center) SendMulti(ctx context.Context, n Notification, channels []string) ([]SendResult, error) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	results := make([]SendResult, 0, len(channels))
	for _, name := range channels {
		results = append(results, c.deliver(ctx, n, name))
	}
	return results, nil
}

// History returns the most recent delivery results, newest first.
func (c *Center) History(limit int) []SendResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.history)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]SendResult, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, c.history[i])
	}
	return out
}

func (c *Center) deliver(ctx context.Context, n Notification, name string) SendResult {
	result := SendResult{NotificationID: n.ID, Channel: name, Status: StatusFailed}

	c.mu.Lock()
	reg, ok := c.channels[name]
	c.mu.Unlock()

	switch {
	case !ok:
		result.Error = fmt.Sprintf("channel %q not found", name)
	case !reg.config.Enabled:
		result.Error = fmt.Sprintf("channel %q is disabled", name)
	case n.Priority < reg.config.MinPriority:
		result.Error = fmt.Sprintf("priority %s below channel minimum %s", n.Priority, reg.config.MinPriority)
	case !reg.channel.Supports(n.Priority):
		result.Error = fmt.Sprintf("channel %q does not support priority %s", name, n.Priority)
	default:
		if err := reg.channel.Send(ctx, n); err != nil {
			result.Error = err.Error()
		} else {
			result.Status = StatusDelivered
		}
	}

	c.logger.Debug("notification %s via %s: %s %s", n.ID, name, result.Status, result.Error)
	c.record(result)
	return result
}

func (c *Center) fanOutTargets(exclude string, p NotificationPriority) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var targets []string
	for _, name := range c.order {
		reg, ok := c.channels[name]
		if !ok || name == exclude || !reg.config.Enabled {
			continue
		}
		if p < reg.config.MinPriority || !reg.channel.Supports(p) {
			continue
		}
		targets = append(targets, name)
	}
	return targets
}

func (c *Center) record(r SendResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.history = append(c.history, r)
	if len(c.history) > c.historySize {
		c.history = c.history[len(c.history)-c.historySize:]
	}
}
