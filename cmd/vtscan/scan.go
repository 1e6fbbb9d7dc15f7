package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"vtscan/internal/browser"
	"vtscan/internal/logging"
	"vtscan/internal/notify"
	"vtscan/internal/output"
	"vtscan/internal/scanner"
	"vtscan/internal/vt"
)

// newScanCommand creates the scan subcommand
func newScanCommand(cli *CLI) *cobra.Command {
	var (
		recursive   bool
		forceUpload bool
		notifyFlag  bool
		openReport  bool
		jsonOutput  bool
		noCache     bool
		maxWait     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "scan <file|directory|glob>...",
		Short: "🔍 Scan files with VirusTotal",
		Long: fmt.Sprintf(`Scan files against VirusTotal's engines.

Each file is hashed locally first. Known hashes return instantly from the
local cache or the VirusTotal database; unknown files are uploaded and the
analysis is polled until it completes.

%s
  vtscan scan document.pdf
  vtscan scan ~/Downloads -r               # Walk the whole tree
  vtscan scan "*.exe" --force-upload       # Fresh analysis, skip caches
  vtscan scan installer.dmg --notify -o    # Notify and open the report`,
			bold("EXAMPLES:")),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.initialize(); err != nil {
				return err
			}
			if err := cli.requireAPIKey(); err != nil {
				return err
			}

			paths, err := scanner.ExpandPaths(args, recursive)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				fmt.Printf("%s\n", yellow("⚠️  No files found to scan"))
				return nil
			}

			ctx := cmd.Context()
			opts := scanner.Options{
				ForceUpload: forceUpload,
				NoCache:     noCache,
				MaxWait:     maxWait,
			}

			if jsonOutput {
				results := cli.scanner.ScanBatch(ctx, paths, opts)
				if err := cli.renderer.JSON(results); err != nil {
					return err
				}
				if anyFailed(results) {
					return &exitError{Code: 1}
				}
				return nil
			}

			fmt.Printf("%s\n\n", cyan(fmt.Sprintf("🔍 Scanning %d file(s)...", len(paths))))

			var center *notify.Center
			if notifyFlag {
				center = cli.notifyCenter()
			}

			results := make([]*scanner.Result, 0, len(paths))
			for _, path := range paths {
				base := filepath.Base(path)
				res, completed := withSpinner("Scanning "+output.Truncate(base, 48)+"...", func() *scanner.Result {
					return cli.scanner.ScanFile(ctx, path, opts)
				})
				if !completed {
					return &exitError{Code: 1, Err: errors.New("scan interrupted")}
				}
				results = append(results, res)

				if res.Err != nil {
					cli.renderer.ScanError(path, res.Err)
					continue
				}
				cli.renderer.Result(res)

				if center != nil {
					sendScanNotification(ctx, center, cli.logger, res)
				}
				if openReport && res.Summary.Permalink != "" {
					if err := browser.Open(res.Summary.Permalink); err != nil {
						cli.logger.Warn("could not open report in browser: %v", err)
					}
				}
			}

			if succeeded(results) > 1 {
				cli.renderer.Summary(results)
			}
			if anyFailed(results) {
				return &exitError{Code: 1}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Scan directories recursively")
	cmd.Flags().BoolVarP(&forceUpload, "force-upload", "f", false, "Upload even when the hash is already known")
	cmd.Flags().BoolVarP(&notifyFlag, "notify", "n", false, "Send a desktop notification per result")
	cmd.Flags().BoolVarP(&openReport, "open-report", "o", false, "Open each report in the browser")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the local result cache")
	cmd.Flags().DurationVar(&maxWait, "max-wait", vt.DefaultMaxWait, "How long to wait for an upload's analysis")

	return cmd
}

func sendScanNotification(ctx context.Context, center *notify.Center, logger logging.Logger, res *scanner.Result) {
	summary := res.Summary
	n := notify.Notification{
		Title:    output.SeverityEmoji(summary.Severity) + " VirusTotal Scan Complete",
		Body:     fmt.Sprintf("%s: %s", filepath.Base(res.Path), summary.Severity),
		Priority: notify.PriorityForSeverity(summary.Severity),
		Metadata: map[string]string{
			"sha256":    res.SHA256,
			"permalink": summary.Permalink,
		},
	}

	result, err := center.Send(ctx, n)
	if err != nil {
		logger.Warn("notification failed: %v", err)
		return
	}
	if result.Status == notify.StatusFailed {
		logger.Warn("notification via %s failed: %s", result.Channel, result.Error)
	}
}

func succeeded(results []*scanner.Result) int {
	n := 0
	for _, res := range results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

func anyFailed(results []*scanner.Result) bool {
	for _, res := range results {
		if res.Err != nil {
			return true
		}
	}
	return false
}
