package commands

import (
	"github.com/spf13/cobra"

	"github.com/moviepilot/mp-cli/internal/api"
	"github.com/moviepilot/mp-cli/internal/appctx"
)

// NewTransferCmd creates the transfer command group.
func NewTransferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Control the file organizing queue",
	}

	var data string
	remove := endpointCmd("remove", "Remove an item from the queue", "", cobra.NoArgs,
		func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
			item, err := requireData(cmd, data)
			if err != nil {
				return nil, err
			}
			return app.MP.Transfer().RemoveFromQueue(cmd.Context(), item)
		})
	remove.Flags().StringVarP(&data, "data", "d", "", "Queue item as returned by transfer queue")

	var filetype string
	name := endpointCmd("name <path>", "Preview the organized name of a file", "", cobra.ExactArgs(1),
		func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
			return app.MP.Transfer().Name(cmd.Context(), args[0], filetype)
		})
	name.Flags().StringVar(&filetype, "filetype", "", "File type hint")

	cmd.AddCommand(
		endpointCmd("queue", "Show the transfer queue", "item", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.Transfer().Queue(cmd.Context())
			}),
		remove,
		name,
		endpointCmd("now", "Run the transfer job now (uses the API token)", "", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.Transfer().Now(cmd.Context())
			}),
	)

	return cmd
}
