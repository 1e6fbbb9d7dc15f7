package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// LogChannel writes notifications as single lines to a stream. It backs
// the delivery history when no desktop notifier is available and doubles
// as the diagnostic channel in quick mode.
type LogChannel struct {
	name string
	mu   sync.Mutex
	out  io.Writer
}

// NewLogChannel creates a LogChannel writing to out.
func NewLogChannel(name string, out io.Writer) *LogChannel {
	return &LogChannel{name: name, out: out}
}

func (l *LogChannel) Name() string { return l.name }

func (l *LogChannel) Send(_ context.Context, n Notification) error {
	ts := n.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := fmt.Fprintf(l.out, "[%s] [%s] %s: %s\n",
		ts.UTC().Format(time.RFC3339), n.Priority, n.Title, n.Body)
	return err
}

func (l *LogChannel) Supports(NotificationPriority) bool { return true }
