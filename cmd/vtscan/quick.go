package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"vtscan/internal/notify"
	"vtscan/internal/output"
	"vtscan/internal/scanner"
	"vtscan/internal/vt"
)

// newQuickCommand creates the quick subcommand
func newQuickCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "quick <file>",
		Short: "⚡ Scan one file, report only through notifications",
		Long: `Scan a single file and report the verdict as a desktop notification.

quick prints nothing on stdout, which makes it suitable for file manager
integrations such as macOS Quick Actions or a Nautilus script: wire the
selected file's path as the only argument and the verdict pops up when
the scan finishes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.initialize(); err != nil {
				return err
			}

			center := cli.quickCenter()
			ctx := cmd.Context()
			name := filepath.Base(args[0])

			if err := cli.cfg.RequireAPIKey(); err != nil {
				quickNotify(ctx, center, "❌ VirusTotal Scanner", "API key not configured", notify.PriorityHigh)
				return &exitError{Code: 1, Err: err}
			}

			quickNotify(ctx, center, "🔍 VirusTotal Scanner", "Scanning "+name+"...", notify.PriorityNormal)

			res := cli.scanner.ScanFile(ctx, args[0], scanner.Options{})
			if res.Err != nil {
				quickNotify(ctx, center, "❌ VirusTotal Scanner", res.Err.Error(), notify.PriorityHigh)
				return &exitError{Code: 1, Err: res.Err}
			}

			title, body := quickVerdict(name, res.Summary, res.Uploaded)
			quickNotify(ctx, center, title, body, notify.PriorityForSeverity(res.Summary.Severity))
			return nil
		},
	}
}

// quickCenter extends the scan notification fan-out with a stderr channel.
// launchd and file manager hooks capture stderr, so threats and failures
// stay visible even where desktop notifications are unavailable.
func (cli *CLI) quickCenter() *notify.Center {
	center := cli.notifyCenter()
	center.RegisterChannel(notify.NewLogChannel("stderr", os.Stderr), notify.ChannelConfig{
		Enabled:     true,
		MinPriority: notify.PriorityHigh,
	})
	return center
}

// quickVerdict renders a scan summary as a notification title and body.
func quickVerdict(name string, summary *vt.Summary, uploaded bool) (title, body string) {
	detections := fmt.Sprintf("%d/%d", summary.Detections, summary.TotalScans)
	switch summary.Severity {
	case vt.SeverityMalicious:
		body = "⚠️ THREAT DETECTED: " + detections
	case vt.SeveritySuspicious:
		body = "⚠️ Suspicious: " + detections
	default:
		body = "✅ Clean: " + detections
	}
	if uploaded {
		body += " (Newly analyzed)"
	} else {
		body += " (From VT database)"
	}
	return output.SeverityEmoji(summary.Severity) + " " + name, body
}

// quickNotify delivers one notification, printing to stderr when the
// primary channel cannot.
func quickNotify(ctx context.Context, center *notify.Center, title, body string, priority notify.NotificationPriority) {
	n := notify.Notification{Title: title, Body: body, Priority: priority}
	result, err := center.Send(ctx, n)
	if err != nil || result.Status == notify.StatusFailed {
		fmt.Fprintf(os.Stderr, "%s: %s\n", title, body)
	}
}
