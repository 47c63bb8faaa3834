package commands

import (
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/moviepilot/mp-cli/internal/api"
	"github.com/moviepilot/mp-cli/internal/appctx"
	"github.com/moviepilot/mp-cli/internal/output"
)

// NewDownloadsCmd creates the downloads command group.
func NewDownloadsCmd() *cobra.Command {
	var downloader string

	cmd := &cobra.Command{
		Use:     "downloads",
		Aliases: []string{"download"},
		Short:   "Manage downloader tasks",
		Long:    "List, start, stop and delete tasks in the configured downloaders.",
	}
	cmd.PersistentFlags().StringVar(&downloader, "downloader", "", "Downloader name (default: the server's default)")

	var data string
	add := endpointCmd("add", "Queue a torrent", "", cobra.NoArgs,
		func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
			raw, err := requireData(cmd, data)
			if err != nil {
				return nil, err
			}
			var body map[string]any
			if err := json.Unmarshal(raw, &body); err != nil || body == nil {
				return nil, output.ErrUsage("--data must be a JSON object with torrent_in")
			}
			if _, ok := body["downloader"]; !ok && downloader != "" {
				body["downloader"] = downloader
			}
			return app.MP.Download().Add(cmd.Context(), body)
		})
	add.Flags().StringVarP(&data, "data", "d", "", `Request body: {"torrent_in":{...},"media_in":{...},"save_path":"..."}`)

	cmd.AddCommand(
		endpointCmd("list", "List active tasks", "task", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.Download().List(cmd.Context(), downloader)
			}),
		add,
		endpointCmd("start <hash>", "Resume a task", "", cobra.ExactArgs(1),
			func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
				return app.MP.Download().Start(cmd.Context(), args[0], downloader)
			}),
		endpointCmd("stop <hash>", "Pause a task", "", cobra.ExactArgs(1),
			func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
				return app.MP.Download().Stop(cmd.Context(), args[0], downloader)
			}),
		endpointCmd("delete <hash>", "Delete a task", "", cobra.ExactArgs(1),
			func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
				return app.MP.Download().Delete(cmd.Context(), args[0], downloader)
			}),
		endpointCmd("clients", "List configured downloaders", "downloader", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.Download().Clients(cmd.Context())
			}),
	)

	return cmd
}
