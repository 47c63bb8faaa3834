package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moviepilot/mp-cli/internal/config"
	"github.com/moviepilot/mp-cli/internal/output"
)

// NewConfigCmd creates the config command for managing configuration.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage mp configuration.

Configuration is loaded from multiple sources with the following precedence:
  flags > env > local > global > system > defaults

Config locations:
  - System: /etc/moviepilot/config.yaml
  - Global: ~/.config/moviepilot/config.yaml
  - Local:  .moviepilot/config.yaml (server_url and api_token are ignored here)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigSetCmd(),
		newConfigPathCmd(),
	)

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long:  "Display the current effective configuration with source information.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}
}

func runConfigShow(cmd *cobra.Command) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}

	cfg := app.Config
	values := map[string]string{
		"server_url":       cfg.ServerURL,
		"api_token":        maskSecret(cfg.APIToken),
		"username":         cfg.Username,
		"timeout":          cfg.Timeout.String(),
		"credential_store": cfg.CredentialStore,
		"format":           cfg.Format,
		"log_format":       cfg.LogFormat,
	}
	if cfg.Stats != nil {
		values["stats"] = fmt.Sprintf("%t", *cfg.Stats)
	}
	if cfg.Verbose != nil {
		values["verbose"] = fmt.Sprintf("%d", *cfg.Verbose)
	}

	configData := make(map[string]any, len(values))
	for key, value := range values {
		if value == "" {
			continue
		}
		source := cfg.Sources[key]
		if source == "" {
			source = string(config.SourceDefault)
		}
		configData[key] = map[string]string{
			"value":  value,
			"source": source,
		}
	}

	return app.OK(configData,
		output.WithSummary("Effective configuration"),
		output.WithBreadcrumbs(output.Breadcrumb{
			Action:      "set",
			Cmd:         "mp config set <key> <value>",
			Description: "Set config value",
		}),
	)
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a value in the global config file.

Valid keys: ` + strings.Join(config.Keys, ", "),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			key, value := args[0], args[1]
			if !slices.Contains(config.Keys, key) {
				return output.ErrUsage(fmt.Sprintf("Invalid config key %q. Valid keys: %s", key, strings.Join(config.Keys, ", ")))
			}

			path, err := config.SetGlobal(key, value)
			if err != nil {
				return output.ErrUsage(fmt.Sprintf("cannot set %s: %v", key, err))
			}

			shown := value
			if key == "api_token" {
				shown = maskSecret(value)
			}
			return app.OK(map[string]string{
				"key":   key,
				"value": shown,
				"path":  path,
			}, output.WithSummary(fmt.Sprintf("Set %s in %s", key, path)))
		},
	}
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config and session locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			return app.OK(map[string]string{
				"config":  config.GlobalConfigPath(),
				"session": app.Auth.Store().Location(),
			}, output.WithSummary(config.GlobalConfigPath()))
		},
	}
}

// maskSecret keeps the last four characters of a secret.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
