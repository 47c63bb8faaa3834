package commands

import (
	"github.com/spf13/cobra"

	"github.com/moviepilot/mp-cli/internal/api"
	"github.com/moviepilot/mp-cli/internal/appctx"
	"github.com/moviepilot/mp-cli/internal/completion"
	"github.com/moviepilot/mp-cli/internal/output"
)

// NewPluginsCmd creates the plugins command group.
func NewPluginsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "plugins",
		Aliases: []string{"plugin"},
		Short:   "Manage server plugins",
	}

	var state string
	var force bool
	list := endpointCmd("list", "List plugins", "plugin", cobra.NoArgs,
		func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
			switch state {
			case "all", "installed", "market":
			default:
				return nil, output.ErrUsage("--state must be all, installed or market")
			}
			resp, err := app.MP.Plugin().List(cmd.Context(), state, force)
			if err == nil && state == "installed" {
				remember(app, completion.Plugins, resp)
			}
			return resp, err
		})
	list.Flags().StringVar(&state, "state", "all", "Filter: all, installed or market")
	list.Flags().BoolVar(&force, "force", false, "Bypass the market cache")

	var repoURL string
	var forceInstall bool
	install := endpointCmd("install <plugin-id>", "Install a plugin", "", cobra.ExactArgs(1),
		func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
			return app.MP.Plugin().Install(cmd.Context(), args[0], repoURL, forceInstall)
		})
	install.Flags().StringVar(&repoURL, "repo", "", "Plugin repository URL")
	install.Flags().BoolVar(&forceInstall, "force", false, "Reinstall when already installed")

	cmd.AddCommand(
		list,
		endpointCmd("installed", "List installed plugin IDs", "plugin", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				resp, err := app.MP.Plugin().Installed(cmd.Context())
				if err == nil {
					remember(app, completion.Plugins, resp)
				}
				return resp, err
			}),
		endpointCmd("statistic", "Show plugin install counts", "", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.Plugin().Statistic(cmd.Context())
			}),
		pluginCmd("show <plugin-id>", "Show a plugin's configuration", "", cobra.ExactArgs(1),
			func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
				return app.MP.Plugin().Get(cmd.Context(), args[0])
			}),
		install,
		pluginCmd("reload <plugin-id>", "Reload a plugin", "", cobra.ExactArgs(1),
			func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
				return app.MP.Plugin().Reload(cmd.Context(), args[0])
			}),
		pluginCmd("reset <plugin-id>", "Reset a plugin's data", "", cobra.ExactArgs(1),
			func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
				return app.MP.Plugin().Reset(cmd.Context(), args[0])
			}),
		pluginCmd("uninstall <plugin-id>", "Uninstall a plugin", "", cobra.ExactArgs(1),
			func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
				return app.MP.Plugin().Uninstall(cmd.Context(), args[0])
			}),
	)

	return cmd
}

// pluginCmd takes one plugin id, completed from the cache.
func pluginCmd(use, short, noun string, args cobra.PositionalArgs, fn call) *cobra.Command {
	return completeWith(endpointCmd(use, short, noun, args, fn), completion.Plugins)
}
