package commands

import (
	"github.com/spf13/cobra"

	"github.com/moviepilot/mp-cli/internal/api"
	"github.com/moviepilot/mp-cli/internal/appctx"
)

// NewDashboardCmd creates the dashboard command group.
func NewDashboardCmd() *cobra.Command {
	var useToken bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Server dashboard statistics",
		Long: `Read dashboard statistics. With --api-token the API-token variant of
the endpoint is used, which needs no login (statistic, storage, downloader,
schedule, cpu, memory and network).`,
	}
	addAPITokenFlag(cmd.PersistentFlags(), &useToken)

	var name string
	statistic := endpointCmd("statistic", "Media library statistics", "", cobra.NoArgs,
		func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
			d := app.MP.Dashboard()
			return pick(useToken,
				func() (*api.Response, error) { return d.Statistic(cmd.Context(), name) },
				func() (*api.Response, error) { return d.Statistic2(cmd.Context()) })
		})
	statistic.Flags().StringVar(&name, "name", "", "Media server name")

	var downloader string
	downloaders := endpointCmd("downloader", "Downloader transfer rates", "", cobra.NoArgs,
		func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
			d := app.MP.Dashboard()
			return pick(useToken,
				func() (*api.Response, error) { return d.Downloader(cmd.Context(), downloader) },
				func() (*api.Response, error) { return d.Downloader2(cmd.Context()) })
		})
	downloaders.Flags().StringVar(&downloader, "name", "", "Downloader name")

	var days int
	transfer := endpointCmd("transfer", "Transfer counts per day", "", cobra.NoArgs,
		func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
			return pick(useToken,
				func() (*api.Response, error) { return app.MP.Dashboard().Transfer(cmd.Context(), days) },
				nil)
		})
	transfer.Flags().IntVar(&days, "days", 7, "Number of days")

	cmd.AddCommand(
		statistic,
		variantCmd("storage", "Storage usage", "",
			func(c *cobra.Command, a *appctx.App) (*api.Response, error) {
				return a.MP.Dashboard().Storage(c.Context())
			},
			func(c *cobra.Command, a *appctx.App) (*api.Response, error) {
				return a.MP.Dashboard().Storage2(c.Context())
			}, &useToken),
		variantCmd("processes", "Server processes", "process",
			func(c *cobra.Command, a *appctx.App) (*api.Response, error) {
				return a.MP.Dashboard().Processes(c.Context())
			}, nil, &useToken),
		downloaders,
		variantCmd("schedule", "Scheduled jobs", "job",
			func(c *cobra.Command, a *appctx.App) (*api.Response, error) {
				return a.MP.Dashboard().Schedule(c.Context())
			},
			func(c *cobra.Command, a *appctx.App) (*api.Response, error) {
				return a.MP.Dashboard().Schedule2(c.Context())
			}, &useToken),
		transfer,
		variantCmd("cpu", "CPU usage", "",
			func(c *cobra.Command, a *appctx.App) (*api.Response, error) {
				return a.MP.Dashboard().CPU(c.Context())
			},
			func(c *cobra.Command, a *appctx.App) (*api.Response, error) {
				return a.MP.Dashboard().CPU2(c.Context())
			}, &useToken),
		variantCmd("memory", "Memory usage", "",
			func(c *cobra.Command, a *appctx.App) (*api.Response, error) {
				return a.MP.Dashboard().Memory(c.Context())
			},
			func(c *cobra.Command, a *appctx.App) (*api.Response, error) {
				return a.MP.Dashboard().Memory2(c.Context())
			}, &useToken),
		variantCmd("network", "Network traffic", "",
			func(c *cobra.Command, a *appctx.App) (*api.Response, error) {
				return a.MP.Dashboard().Network(c.Context())
			},
			func(c *cobra.Command, a *appctx.App) (*api.Response, error) {
				return a.MP.Dashboard().Network2(c.Context())
			}, &useToken),
	)

	return cmd
}

type variant func(cmd *cobra.Command, app *appctx.App) (*api.Response, error)

// variantCmd builds an argument-less leaf with an optional API-token variant.
func variantCmd(use, short, noun string, session, token variant, useToken *bool) *cobra.Command {
	return endpointCmd(use, short, noun, cobra.NoArgs,
		func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
			var tokenFn func() (*api.Response, error)
			if token != nil {
				tokenFn = func() (*api.Response, error) { return token(cmd, app) }
			}
			return pick(*useToken, func() (*api.Response, error) { return session(cmd, app) }, tokenFn)
		})
}
