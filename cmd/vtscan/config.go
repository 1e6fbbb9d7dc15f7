package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"vtscan/internal/cache"
	"vtscan/internal/config"
	"vtscan/internal/logging"
)

// newConfigCommand creates the config subcommand
func newConfigCommand(cli *CLI) *cobra.Command {
	var (
		apiKey     string
		show       bool
		clearCache bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "⚙️ Manage API key, cache and settings",
		Long: `Manage the vtscan configuration.

The API key is stored in ` + "`~/.config/vtscan/config.json`" + ` with owner-only
permissions. The ` + config.EnvAPIKey + ` environment variable always wins over
the file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.initializeConfigOnly(); err != nil {
				return err
			}

			switch {
			case apiKey != "":
				return cli.saveAPIKey(apiKey)
			case clearCache:
				store, err := cache.New(cli.manager.CacheDir(), 0, logging.NewComponentLogger("cache"))
				if err != nil {
					return err
				}
				removed, err := store.Clear()
				if err != nil {
					return err
				}
				fmt.Printf("%s\n", green(fmt.Sprintf("✅ Cleared %d cached result(s)", removed)))
				return nil
			default:
				// --show and the bare command both display the configuration.
				cli.showConfig()
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "Store this VirusTotal API key")
	cmd.Flags().BoolVar(&show, "show", false, "Show the current configuration")
	cmd.Flags().BoolVar(&clearCache, "clear-cache", false, "Delete all cached scan results")

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Interactively store your API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.initializeConfigOnly(); err != nil {
				return err
			}

			prompt := promptui.Prompt{
				Label: "VirusTotal API key",
				Mask:  '*',
				Validate: func(input string) error {
					if strings.TrimSpace(input) == "" {
						return errors.New("API key cannot be empty")
					}
					return nil
				},
			}
			key, err := prompt.Run()
			if err != nil {
				return fmt.Errorf("setup aborted: %w", err)
			}
			return cli.saveAPIKey(strings.TrimSpace(key))
		},
	})

	return cmd
}

func (cli *CLI) saveAPIKey(key string) error {
	if err := cli.manager.SetAPIKey(key); err != nil {
		return err
	}
	fmt.Printf("%s\n", green("✅ API key saved successfully"))
	fmt.Printf("%s\n", gray("Config file: "+cli.manager.ConfigFile()))
	return nil
}

func (cli *CLI) showConfig() {
	key := "Not set"
	if cli.cfg.APIKey != "" {
		key = maskAPIKey(cli.cfg.APIKey)
	}

	out := fmt.Sprintf("\n%s vtscan Configuration:\n", bold("⚙️"))
	out += fmt.Sprintf("  %s: %s\n", bold("API Key"), blue(key))
	out += fmt.Sprintf("  %s: %s\n", bold("Source"), blue(sourceLabel(cli.cfg.Source)))
	out += fmt.Sprintf("  %s: %s\n", bold("Config Dir"), blue(cli.manager.ConfigDir()))
	out += fmt.Sprintf("  %s: %s\n", bold("Cache Dir"), blue(cli.manager.CacheDir()))
	if cli.cfg.BaseURL != "" {
		out += fmt.Sprintf("  %s: %s\n", bold("Base URL"), blue(cli.cfg.BaseURL))
	}
	if cli.cfg.WebhookURL != "" {
		out += fmt.Sprintf("  %s: %s\n", bold("Webhook"), blue(cli.cfg.WebhookURL))
	}

	if store, err := cache.New(cli.manager.CacheDir(), 0, logging.NewComponentLogger("cache")); err == nil {
		if count, err := store.Count(); err == nil {
			out += fmt.Sprintf("  %s: %s\n", bold("Cached Results"), blue(fmt.Sprintf("%d", count)))
		}
	}

	fmt.Print(out)
}

func sourceLabel(s config.Source) string {
	switch s {
	case config.SourceEnvironment:
		return "Environment"
	case config.SourceConfigFile:
		return "Config file"
	default:
		return "Not configured"
	}
}
