package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

const notifierTimeout = 5 * time.Second

// DesktopChannel raises a native desktop notification: osascript on
// macOS, notify-send on Linux. Other platforms report an error, which
// the Center records as a failed delivery.
type DesktopChannel struct {
	name string
	run  func(ctx context.Context, name string, args ...string) error
}

// NewDesktopChannel creates a channel using the platform notifier.
func NewDesktopChannel(name string) *DesktopChannel {
	return &DesktopChannel{name: name, run: runNotifier}
}

func (d *DesktopChannel) Name() string { return d.name }

func (d *DesktopChannel) Send(ctx context.Context, n Notification) error {
	switch runtime.GOOS {
	case "darwin":
		return d.run(ctx, "osascript", "-e", appleScript(n))
	case "linux":
		return d.run(ctx, "notify-send", notifySendArgs(n)...)
	default:
		return fmt.Errorf("desktop notifications not supported on %s", runtime.GOOS)
	}
}

func (d *DesktopChannel) Supports(NotificationPriority) bool { return true }

func appleScript(n Notification) string {
	script := fmt.Sprintf("display notification %s with title %s",
		appleScriptQuote(n.Body), appleScriptQuote(n.Title))
	if n.Priority >= PriorityCritical {
		script += ` sound name "default"`
	}
	return script
}

func appleScriptQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

func notifySendArgs(n Notification) []string {
	urgency := "normal"
	switch {
	case n.Priority >= PriorityCritical:
		urgency = "critical"
	case n.Priority <= PriorityLow:
		urgency = "low"
	}
	return []string{"-u", urgency, "-a", "vtscan", n.Title, n.Body}
}

func runNotifier(ctx context.Context, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, notifierTimeout)
	defer cancel()
	return exec.CommandContext(ctx, name, args...).Run()
}
