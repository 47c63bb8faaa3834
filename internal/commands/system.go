package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moviepilot/mp-cli/internal/api"
	"github.com/moviepilot/mp-cli/internal/appctx"
	"github.com/moviepilot/mp-cli/internal/output"
)

// NewSystemCmd creates the system command group.
func NewSystemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "system",
		Short: "Server settings, logs and maintenance",
	}

	var role string
	message := endpointCmd("message", "Read pending system messages", "message", cobra.NoArgs,
		func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
			return app.MP.System().Message(cmd.Context(), role)
		})
	message.Flags().StringVar(&role, "role", "system", "Message role")

	var length int
	var logfile string
	logs := endpointCmd("logging", "Tail the server log", "", cobra.NoArgs,
		func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
			return app.MP.System().Logging(cmd.Context(), length, logfile)
		})
	logs.Flags().IntVarP(&length, "length", "n", 50, "Number of lines (-1 for the whole file)")
	logs.Flags().StringVar(&logfile, "logfile", "moviepilot.log", "Log file name")

	var proxy bool
	nettest := endpointCmd("nettest <url>", "Test connectivity from the server", "", cobra.ExactArgs(1),
		func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
			return app.MP.System().NetTest(cmd.Context(), args[0], proxy)
		})
	nettest.Flags().BoolVar(&proxy, "proxy", false, "Go through the configured proxy")

	var ruleGroup, subtitle string
	ruletest := endpointCmd("ruletest <title>", "Test a filter rule group against a title", "", cobra.ExactArgs(1),
		func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
			if ruleGroup == "" {
				return nil, output.ErrUsage("--rule-group is required")
			}
			return app.MP.System().RuleTest(cmd.Context(), args[0], ruleGroup, subtitle)
		})
	ruletest.Flags().StringVar(&ruleGroup, "rule-group", "", "Rule group name")
	ruletest.Flags().StringVar(&subtitle, "subtitle", "", "Release subtitle")

	var useToken bool
	scheduler := endpointCmd("run-scheduler <job-id>", "Run a scheduled job now", "", cobra.ExactArgs(1),
		func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
			s := app.MP.System()
			return pick(useToken,
				func() (*api.Response, error) { return s.RunScheduler(cmd.Context(), args[0]) },
				func() (*api.Response, error) { return s.RunScheduler2(cmd.Context(), args[0]) })
		})
	addAPITokenFlag(scheduler.Flags(), &useToken)

	cmd.AddCommand(
		endpointCmd("env", "Show server environment settings", "", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.System().Env(cmd.Context())
			}),
		endpointCmd("global", "Show public server settings", "", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.System().Global(cmd.Context())
			}),
		endpointCmd("versions", "List released server versions", "version", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.System().Versions(cmd.Context())
			}),
		endpointCmd("setting <key>", "Read a setting", "", cobra.ExactArgs(1),
			func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
				return app.MP.System().Setting(cmd.Context(), args[0])
			}),
		newSystemSetCmd(),
		message,
		logs,
		nettest,
		ruletest,
		endpointCmd("modules", "List loaded modules", "module", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.System().ModuleList(cmd.Context())
			}),
		endpointCmd("moduletest <module-id>", "Run a module self-test", "", cobra.ExactArgs(1),
			func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
				return app.MP.System().ModuleTest(cmd.Context(), args[0])
			}),
		endpointCmd("restart", "Restart the server", "", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.System().Restart(cmd.Context())
			}),
		scheduler,
	)

	return cmd
}

func newSystemSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <json-value>",
		Short: "Change a setting",
		Long: `Store a JSON value under a setting key.

Examples:
  mp system set DownloaderMonitor true
  mp system set MediaServerSyncInterval 6`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			value, err := readJSONArg(cmd, args[1])
			if err != nil {
				return err
			}
			resp, err := app.MP.System().SetSetting(cmd.Context(), args[0], value)
			if err != nil {
				return err
			}
			return respond(app, resp, fmt.Sprintf("Set %s", args[0]))
		},
	}
}
