package commands

import (
	"github.com/spf13/cobra"

	"github.com/moviepilot/mp-cli/internal/api"
	"github.com/moviepilot/mp-cli/internal/appctx"
)

// NewHistoryCmd creates the history command group.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Download and transfer history",
	}

	var page, count int
	downloads := endpointCmd("downloads", "List download history", "record", cobra.NoArgs,
		func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
			return app.MP.History().Downloads(cmd.Context(), page, count)
		})
	downloads.Flags().IntVar(&page, "page", 1, "Page number")
	downloads.Flags().IntVar(&count, "count", 30, "Records per page")

	var tPage, tCount int
	var title string
	transfers := endpointCmd("transfers", "List transfer history", "", cobra.NoArgs,
		func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
			return app.MP.History().Transfers(cmd.Context(), tPage, tCount, title)
		})
	transfers.Flags().IntVar(&tPage, "page", 1, "Page number")
	transfers.Flags().IntVar(&tCount, "count", 30, "Records per page")
	transfers.Flags().StringVar(&title, "title", "", "Filter by title")

	var dlData string
	deleteDownload := endpointCmd("delete-download", "Delete a download history record", "", cobra.NoArgs,
		func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
			item, err := requireData(cmd, dlData)
			if err != nil {
				return nil, err
			}
			return app.MP.History().DeleteDownload(cmd.Context(), item)
		})
	deleteDownload.Flags().StringVarP(&dlData, "data", "d", "", "Record as returned by history downloads")

	var trData string
	var deleteSrc, deleteDest bool
	deleteTransfer := endpointCmd("delete-transfer", "Delete a transfer history record", "", cobra.NoArgs,
		func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
			item, err := requireData(cmd, trData)
			if err != nil {
				return nil, err
			}
			return app.MP.History().DeleteTransfer(cmd.Context(), item, deleteSrc, deleteDest)
		})
	deleteTransfer.Flags().StringVarP(&trData, "data", "d", "", "Record as returned by history transfers")
	deleteTransfer.Flags().BoolVar(&deleteSrc, "delete-src", false, "Also delete the source file")
	deleteTransfer.Flags().BoolVar(&deleteDest, "delete-dest", false, "Also delete the library file")

	cmd.AddCommand(
		downloads,
		transfers,
		deleteDownload,
		deleteTransfer,
		endpointCmd("empty-transfers", "Clear all transfer history", "", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.History().EmptyTransfers(cmd.Context())
			}),
	)

	return cmd
}
