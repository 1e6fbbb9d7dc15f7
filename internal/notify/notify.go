// Package notify delivers scan verdicts outside the terminal. Channels
// (desktop notifier, log stream, webhook) register with a Center that
// routes each notification by name or default, filters by priority, and
// fans critical verdicts out to every channel that can carry them.
package notify

import (
	"context"
	"fmt"
	"time"

	"vtscan/internal/vt"
)

// NotificationPriority orders notifications by urgency.
type NotificationPriority int

const (
	PriorityLow NotificationPriority = iota + 1
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

func (p NotificationPriority) String() string {
	switch p {
	case PriorityLow:
		return "LOW"
	case PriorityNormal:
		return "NORMAL"
	case PriorityHigh:
		return "HIGH"
	case PriorityCritical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("PRIORITY(%d)", int(p))
	}
}

// PriorityForSeverity maps a verdict to a notification priority. A
// malicious verdict is critical, which makes the Center fan it out to
// every channel that supports it.
func PriorityForSeverity(s vt.Severity) NotificationPriority {
	switch s {
	case vt.SeverityMalicious:
		return PriorityCritical
	case vt.SeveritySuspicious:
		return PriorityHigh
	default:
		return PriorityNormal
	}
}

// Notification is one message to deliver.
type Notification struct {
	ID        string
	Title     string
	Body      string
	Priority  NotificationPriority
	Channel   string // target channel name; empty means the default
	Metadata  map[string]string
	CreatedAt time.Time
}

// Channel delivers notifications over one medium.
type Channel interface {
	Name() string
	Send(ctx context.Context, n Notification) error
	Supports(p NotificationPriority) bool
}

// ChannelConfig controls how the Center routes to a registered channel.
type ChannelConfig struct {
	Name        string
	Enabled     bool
	MinPriority NotificationPriority
	IsDefault   bool
}

// SendStatus is the outcome of one delivery attempt.
type SendStatus string

const (
	StatusDelivered SendStatus = "delivered"
	StatusFailed    SendStatus = "failed"
)

// SendResult records one delivery attempt. Per-channel failures are
// carried here as data, not as a returned error, so one broken channel
// never hides the others.
type SendResult struct {
	NotificationID string
	Channel        string
	Status         SendStatus
	Error          string
}
