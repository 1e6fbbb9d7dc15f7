package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vtscan/internal/cache"
	"vtscan/internal/config"
	"vtscan/internal/logging"
	"vtscan/internal/notify"
	"vtscan/internal/output"
	"vtscan/internal/scanner"
	"vtscan/internal/vt"
)

const appVersion = "1.0.0"

// isTTY checks if the current environment has a TTY available
func isTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Color definitions for terminal output
var (
	blue   = color.New(color.FgBlue).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// CLI holds the command line interface state
type CLI struct {
	manager  *config.Manager
	cfg      *config.Config
	store    *cache.Store
	scanner  *scanner.Scanner
	renderer *output.Renderer
	logger   logging.Logger
	debug    bool
}

// NewRootCommand creates the root cobra command
func NewRootCommand() *cobra.Command {
	cli := &CLI{}

	rootCmd := &cobra.Command{
		Use:     "vtscan",
		Version: appVersion,
		Short:   "🛡️ Scan files with VirusTotal from the command line",
		Long: fmt.Sprintf(`%s

vtscan hashes files locally, checks VirusTotal for known verdicts and only
uploads what the service has never seen. Results are cached on disk so
repeat scans of unchanged files are instant and cost no API quota.

%s
  vtscan scan suspicious.exe             # Scan a single file
  vtscan scan ~/Downloads -r             # Scan a directory tree
  vtscan scan "*.pdf" --notify           # Glob scan with desktop notifications
  vtscan hash d41d8cd98f00b204e9800998ecf8427e
  vtscan config --api-key YOUR_KEY       # Store your API key
  vtscan config --show                   # Show configuration and cache state`,
			bold("vtscan "+appVersion),
			bold("EXAMPLES:")),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&cli.debug, "debug", "d", false, "Debug logging")

	rootCmd.AddCommand(newScanCommand(cli))
	rootCmd.AddCommand(newHashCommand(cli))
	rootCmd.AddCommand(newConfigCommand(cli))
	rootCmd.AddCommand(newQuickCommand(cli))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// initialize sets up logging, configuration, cache and the scanner.
func (cli *CLI) initialize() error {
	logCfg, err := logging.LoadConfig("")
	if err != nil && cli.debug {
		fmt.Printf("%s ignoring bad logging config: %v\n", yellow("⚠️"), err)
	}
	if cli.debug {
		logCfg.Level = "debug"
	}
	// A broken log sink degrades to discard rather than blocking scans.
	_ = logging.Setup(logCfg)
	cli.logger = logging.NewComponentLogger("cli")

	if err := cli.initializeConfigOnly(); err != nil {
		return err
	}

	store, err := cache.New(cli.manager.CacheDir(), 0, logging.NewComponentLogger("cache"))
	if err != nil {
		cli.logger.Warn("cache unavailable, scans will not be cached: %v", err)
	}
	cli.store = store

	client := vt.NewClient(cli.cfg.APIKey,
		vt.WithBaseURL(cli.cfg.BaseURL),
		vt.WithLogger(logging.NewComponentLogger("vt")),
	)
	cli.scanner = scanner.New(client, store, logging.NewComponentLogger("scanner"))
	cli.renderer = output.NewRenderer(nil)
	return nil
}

// initializeConfigOnly sets up only the configuration manager, for commands
// that never touch the network.
func (cli *CLI) initializeConfigOnly() error {
	if cli.logger == nil {
		cli.logger = logging.NewComponentLogger("cli")
	}
	if cli.manager == nil {
		manager, err := config.NewManager(logging.NewComponentLogger("config"))
		if err != nil {
			return fmt.Errorf("failed to create config manager: %w", err)
		}
		cli.manager = manager
	}
	cli.cfg = cli.manager.Load()
	return nil
}

// requireAPIKey prints configuration instructions and fails the command when
// no API key is available.
func (cli *CLI) requireAPIKey() error {
	if err := cli.cfg.RequireAPIKey(); err == nil {
		return nil
	}

	fmt.Printf("%s\n\n", red("❌ VirusTotal API key not configured!"))
	fmt.Println("To configure, run one of the following:")
	fmt.Printf("  1. %s\n", cyan("vtscan config --api-key YOUR_KEY"))
	fmt.Printf("  2. %s\n", cyan("export "+config.EnvAPIKey+"=YOUR_KEY"))
	fmt.Printf("\nGet your API key at: %s\n", blue("https://www.virustotal.com/gui/my-apikey"))
	return &exitError{Code: 1}
}

// notifyCenter builds the notification fan-out for scan verdicts. Desktop is
// the default channel; a webhook is added when the config file names one.
// Malicious verdicts are critical, so they reach every channel.
func (cli *CLI) notifyCenter() *notify.Center {
	center := notify.NewCenter(
		notify.WithDefaultChannel("desktop"),
		notify.WithLogger(logging.NewComponentLogger("notify")),
	)
	center.RegisterChannel(notify.NewDesktopChannel("desktop"), notify.ChannelConfig{
		Enabled:     true,
		MinPriority: notify.PriorityLow,
		IsDefault:   true,
	})
	if cli.cfg.WebhookURL != "" {
		center.RegisterChannel(
			notify.NewWebhookChannel("webhook", cli.cfg.WebhookURL,
				notify.WithWebhookLogger(logging.NewComponentLogger("webhook"))),
			notify.ChannelConfig{Enabled: true, MinPriority: notify.PriorityNormal},
		)
	}
	return center
}

// maskAPIKey hides the middle of an API key, keeping just enough of both
// ends to recognize which key is configured.
func maskAPIKey(key string) string {
	keyRunes := []rune(key)
	if len(keyRunes) < 16 {
		return "****"
	}
	return string(keyRunes[:8]) + "..." + string(keyRunes[len(keyRunes)-8:])
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	err := NewRootCommand().Execute()
	if err == nil {
		return
	}
	var ee *exitError
	if errors.As(err, &ee) {
		// The command already printed its own diagnostics.
		if ee.Err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", red("❌ Error:"), ee.Err)
		}
		os.Exit(ee.Code)
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", red("❌ Error:"), err)
	os.Exit(1)
}

// newVersionCommand creates the version subcommand
func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("vtscan %s\n", appVersion)
		},
	}
}
