package commands

import (
	"github.com/spf13/cobra"

	"github.com/moviepilot/mp-cli/internal/api"
	"github.com/moviepilot/mp-cli/internal/appctx"
	"github.com/moviepilot/mp-cli/internal/completion"
	"github.com/moviepilot/mp-cli/internal/dateparse"
	"github.com/moviepilot/mp-cli/internal/output"
)

// NewSitesCmd creates the sites command group.
func NewSitesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sites",
		Aliases: []string{"site"},
		Short:   "Manage indexer sites",
	}

	var createData, updateData string
	create := endpointCmd("create", "Add a site", "", cobra.NoArgs,
		func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
			body, err := requireData(cmd, createData)
			if err != nil {
				return nil, err
			}
			return app.MP.Site().Create(cmd.Context(), body)
		})
	create.Flags().StringVarP(&createData, "data", "d", "", "Site definition as JSON")

	update := endpointCmd("update", "Update a site", "", cobra.NoArgs,
		func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
			body, err := requireData(cmd, updateData)
			if err != nil {
				return nil, err
			}
			return app.MP.Site().Update(cmd.Context(), body)
		})
	update.Flags().StringVarP(&updateData, "data", "d", "", "Full site definition including its id")

	var workdate string
	userdata := siteCmd("userdata <id>", "Show recorded account statistics", "site ID",
		func(cmd *cobra.Command, app *appctx.App, id int) (*api.Response, error) {
			day := ""
			if workdate != "" {
				d, err := dateparse.Parse(workdate)
				if err != nil {
					return nil, output.ErrUsage(err.Error())
				}
				day = d
			}
			return app.MP.Site().UserData(cmd.Context(), id, day)
		})
	userdata.Flags().StringVar(&workdate, "workdate", "", "Day to show: YYYY-MM-DD, today, yesterday, monday, -3, 2 weeks ago")

	var keyword, category string
	var page int
	resource := siteCmd("resource <id>", "Browse a site's torrents", "site ID",
		func(cmd *cobra.Command, app *appctx.App, id int) (*api.Response, error) {
			return app.MP.Site().Resource(cmd.Context(), id, keyword, category, page)
		})
	resource.Flags().StringVar(&keyword, "keyword", "", "Search keyword")
	resource.Flags().StringVar(&category, "cat", "", "Category")
	resource.Flags().IntVar(&page, "page", 0, "Page number")

	cmd.AddCommand(
		endpointCmd("list", "List sites", "site", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				resp, err := app.MP.Site().List(cmd.Context())
				if err == nil {
					remember(app, completion.Sites, resp)
				}
				return resp, err
			}),
		create,
		update,
		siteCmd("show <id>", "Show a site", "site ID",
			func(cmd *cobra.Command, app *appctx.App, id int) (*api.Response, error) {
				return app.MP.Site().Get(cmd.Context(), id)
			}),
		siteCmd("delete <id>", "Delete a site", "site ID",
			func(cmd *cobra.Command, app *appctx.App, id int) (*api.Response, error) {
				return app.MP.Site().Delete(cmd.Context(), id)
			}),
		siteCmd("test <id>", "Test site connectivity", "site ID",
			func(cmd *cobra.Command, app *appctx.App, id int) (*api.Response, error) {
				return app.MP.Site().Test(cmd.Context(), id)
			}),
		userdata,
		siteCmd("refresh-userdata <id>", "Fetch fresh account statistics", "site ID",
			func(cmd *cobra.Command, app *appctx.App, id int) (*api.Response, error) {
				return app.MP.Site().RefreshUserData(cmd.Context(), id)
			}),
		endpointCmd("latest-userdata", "Show the latest statistics of every site", "site", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.Site().LatestUserData(cmd.Context())
			}),
		endpointCmd("cookiecloud", "Sync cookies from CookieCloud", "", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.Site().CookieCloud(cmd.Context())
			}),
		endpointCmd("reset", "Reset all sites", "", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.Site().Reset(cmd.Context())
			}),
		endpointCmd("rss", "List RSS-enabled sites", "site", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.Site().RSS(cmd.Context())
			}),
		resource,
	)

	return cmd
}

// siteCmd is byID with site id completion.
func siteCmd(use, short, what string, fn func(cmd *cobra.Command, app *appctx.App, id int) (*api.Response, error)) *cobra.Command {
	return completeWith(byID(use, short, what, fn), completion.Sites)
}
