package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/moviepilot/mp-cli/internal/api"
	"github.com/moviepilot/mp-cli/internal/appctx"
	"github.com/moviepilot/mp-cli/internal/completion"
	"github.com/moviepilot/mp-cli/internal/output"
)

// NewSubscribesCmd creates the subscribes command group.
func NewSubscribesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscribes",
		Aliases: []string{"subscribe", "sub"},
		Short:   "Manage media subscriptions",
	}

	var useToken bool
	list := endpointCmd("list", "List subscriptions", "subscription", cobra.NoArgs,
		func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
			s := app.MP.Subscribe()
			resp, err := pick(useToken,
				func() (*api.Response, error) { return s.List(cmd.Context()) },
				func() (*api.Response, error) { return s.List2(cmd.Context()) })
			if err == nil {
				remember(app, completion.Subscriptions, resp)
			}
			return resp, err
		})
	addAPITokenFlag(list.Flags(), &useToken)

	var createData, updateData string
	create := endpointCmd("create", "Create a subscription", "", cobra.NoArgs,
		func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
			body, err := requireData(cmd, createData)
			if err != nil {
				return nil, err
			}
			return app.MP.Subscribe().Create(cmd.Context(), body)
		})
	create.Flags().StringVarP(&createData, "data", "d", "", `Subscription: {"name":"...","type":"电影","tmdbid":123,...}`)

	update := endpointCmd("update", "Update a subscription", "", cobra.NoArgs,
		func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
			body, err := requireData(cmd, updateData)
			if err != nil {
				return nil, err
			}
			return app.MP.Subscribe().Update(cmd.Context(), body)
		})
	update.Flags().StringVarP(&updateData, "data", "d", "", "Full subscription including its id")

	var season int
	var title string
	byMedia := endpointCmd("media <media-id>", "Find the subscription for a media ID (e.g. tmdb:123)", "", cobra.ExactArgs(1),
		func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
			return app.MP.Subscribe().ByMedia(cmd.Context(), args[0], season, title)
		})
	byMedia.Flags().IntVar(&season, "season", 0, "Season number")
	byMedia.Flags().StringVar(&title, "title", "", "Title")

	var hPage, hCount int
	history := endpointCmd("history <movie|tv>", "List finished subscriptions", "subscription", cobra.ExactArgs(1),
		func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
			mtype := strings.ToLower(args[0])
			if mtype != "movie" && mtype != "tv" {
				return nil, output.ErrUsage("media type must be movie or tv")
			}
			return app.MP.Subscribe().History(cmd.Context(), mtype, hPage, hCount)
		})
	history.Flags().IntVar(&hPage, "page", 1, "Page number")
	history.Flags().IntVar(&hCount, "count", 30, "Records per page")

	var pPage, pCount, minSub int
	popular := endpointCmd("popular <stype>", "List the most-subscribed media", "item", cobra.ExactArgs(1),
		func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
			return app.MP.Subscribe().Popular(cmd.Context(), args[0], pPage, pCount, minSub)
		})
	popular.Flags().IntVar(&pPage, "page", 1, "Page number")
	popular.Flags().IntVar(&pCount, "count", 30, "Items per page")
	popular.Flags().IntVar(&minSub, "min-sub", 0, "Minimum number of subscribers")

	cmd.AddCommand(
		list,
		create,
		update,
		subscriptionCmd("show <id>", "Show a subscription",
			func(cmd *cobra.Command, app *appctx.App, id int) (*api.Response, error) {
				return app.MP.Subscribe().Get(cmd.Context(), id)
			}),
		subscriptionCmd("delete <id>", "Delete a subscription",
			func(cmd *cobra.Command, app *appctx.App, id int) (*api.Response, error) {
				return app.MP.Subscribe().Delete(cmd.Context(), id)
			}),
		newSubscribeStateCmd("pause", "S", "Pause a subscription"),
		newSubscribeStateCmd("resume", "R", "Resume a paused subscription"),
		byMedia,
		endpointCmd("refresh", "Refresh subscription metadata", "", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.Subscribe().Refresh(cmd.Context())
			}),
		subscriptionCmd("reset <id>", "Reset a subscription's progress",
			func(cmd *cobra.Command, app *appctx.App, id int) (*api.Response, error) {
				return app.MP.Subscribe().Reset(cmd.Context(), id)
			}),
		endpointCmd("check", "Check subscriptions for new episodes", "", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.Subscribe().Check(cmd.Context())
			}),
		endpointCmd("search-all", "Search for every subscription", "", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.Subscribe().SearchAll(cmd.Context())
			}),
		subscriptionCmd("search <id>", "Search for one subscription",
			func(cmd *cobra.Command, app *appctx.App, id int) (*api.Response, error) {
				return app.MP.Subscribe().Search(cmd.Context(), id)
			}),
		history,
		popular,
		endpointCmd("user <name>", "List a user's subscriptions", "subscription", cobra.ExactArgs(1),
			func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
				return app.MP.Subscribe().User(cmd.Context(), args[0])
			}),
		subscriptionCmd("files <id>", "List the files of a subscription",
			func(cmd *cobra.Command, app *appctx.App, id int) (*api.Response, error) {
				return app.MP.Subscribe().Files(cmd.Context(), id)
			}),
	)

	return cmd
}

func newSubscribeStateCmd(use, state, short string) *cobra.Command {
	return subscriptionCmd(use+" <id>", short,
		func(cmd *cobra.Command, app *appctx.App, id int) (*api.Response, error) {
			return app.MP.Subscribe().SetState(cmd.Context(), id, state)
		})
}

// subscriptionCmd takes one subscription id, completed from the cache.
func subscriptionCmd(use, short string, fn func(cmd *cobra.Command, app *appctx.App, id int) (*api.Response, error)) *cobra.Command {
	return completeWith(byID(use, short, "subscription ID", fn), completion.Subscriptions)
}
