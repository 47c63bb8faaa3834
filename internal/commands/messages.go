package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/moviepilot/mp-cli/internal/api"
	"github.com/moviepilot/mp-cli/internal/appctx"
	"github.com/moviepilot/mp-cli/internal/output"
)

// NewMessagesCmd creates the messages command group.
func NewMessagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "messages",
		Aliases: []string{"message", "msg"},
		Short:   "Read and send web UI messages",
	}

	var page, count int
	list := endpointCmd("list", "List web messages", "message", cobra.NoArgs,
		func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
			return app.MP.Message().Web(cmd.Context(), page, count)
		})
	list.Flags().IntVar(&page, "page", 1, "Page number")
	list.Flags().IntVar(&count, "count", 20, "Messages per page")

	send := endpointCmd("send <text>...", "Send a message as the logged-in user", "", cobra.MinimumNArgs(1),
		func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return nil, output.ErrUsage("message text is required")
			}
			return app.MP.Message().SendWeb(cmd.Context(), text)
		})

	cmd.AddCommand(list, send)
	return cmd
}
