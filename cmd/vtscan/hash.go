package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vtscan/internal/browser"
	"vtscan/internal/scanner"
	"vtscan/internal/vt"
)

type hashOutcome struct {
	summary *vt.Summary
	err     error
}

// newHashCommand creates the hash subcommand
func newHashCommand(cli *CLI) *cobra.Command {
	var (
		openReport bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "hash <md5|sha1|sha256>",
		Short: "🔎 Look up a hash without uploading anything",
		Long: `Check whether VirusTotal already knows a file hash.

Nothing is uploaded and the local cache is not consulted, so the answer
always reflects the live VirusTotal database. MD5, SHA-1 and SHA-256
digests are all accepted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.initialize(); err != nil {
				return err
			}
			if err := cli.requireAPIKey(); err != nil {
				return err
			}

			hash := strings.ToLower(strings.TrimSpace(args[0]))
			if !jsonOutput {
				fmt.Printf("%s\n", cyan("🔍 Checking hash: "+hash))
			}

			out, completed := withSpinner("Checking hash...", func() hashOutcome {
				summary, err := cli.scanner.CheckHash(cmd.Context(), hash)
				return hashOutcome{summary: summary, err: err}
			})
			if !completed {
				return &exitError{Code: 1, Err: errors.New("lookup interrupted")}
			}
			if out.err != nil {
				if vt.IsNotFound(out.err) {
					// An unknown hash is an answer, not a failure.
					if jsonOutput {
						return cli.renderer.JSONResult(&scanner.Result{
							Path: hashDisplayName(hash),
							Err:  out.err,
						})
					}
					fmt.Printf("%s\n", yellow("⚠️  Hash not found in VirusTotal database"))
					fmt.Printf("%s\n", gray("The file may not have been scanned yet."))
					return nil
				}
				return out.err
			}

			res := &scanner.Result{
				Path:    hashDisplayName(hash),
				SHA256:  out.summary.File.SHA256,
				Summary: out.summary,
			}
			if jsonOutput {
				return cli.renderer.JSONResult(res)
			}
			cli.renderer.Result(res)

			if openReport && out.summary.Permalink != "" {
				if err := browser.Open(out.summary.Permalink); err != nil {
					cli.logger.Warn("could not open report in browser: %v", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&openReport, "open-report", "o", false, "Open the report in the browser")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")

	return cmd
}

// hashDisplayName stands in for a file name in the result panel.
func hashDisplayName(hash string) string {
	if len(hash) > 16 {
		return "Hash: " + hash[:16] + "..."
	}
	return "Hash: " + hash
}
