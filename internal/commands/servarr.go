package commands

import (
	"github.com/spf13/cobra"

	"github.com/moviepilot/mp-cli/internal/api"
	"github.com/moviepilot/mp-cli/internal/appctx"
)

// NewServarrCmd creates the servarr command group.
func NewServarrCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "servarr",
		Short: "Radarr/Sonarr-compatible endpoints",
		Long: `Use the Radarr and Sonarr emulation under /api/v3. These are the
endpoints *arr clients such as Overseerr call to manage subscriptions.`,
	}

	cmd.AddCommand(
		endpointCmd("status", "Show the emulated system status", "", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.Servarr().SystemStatus(cmd.Context())
			}),
		endpointCmd("profiles", "List quality profiles", "profile", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.Servarr().QualityProfiles(cmd.Context())
			}),
		endpointCmd("rootfolders", "List root folders", "root folder", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.Servarr().RootFolders(cmd.Context())
			}),
		endpointCmd("tags", "List tags", "tag", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.Servarr().Tags(cmd.Context())
			}),
		endpointCmd("languages", "List language profiles", "", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.Servarr().LanguageProfiles(cmd.Context())
			}),
		newServarrMoviesCmd(),
		newServarrSeriesCmd(),
	)
	return cmd
}

func newServarrMoviesCmd() *cobra.Command {
	var useToken bool

	cmd := &cobra.Command{
		Use:   "movies",
		Short: "Movie subscriptions (Radarr)",
	}

	list := endpointCmd("list", "List movie subscriptions", "movie", cobra.NoArgs,
		func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
			s := app.MP.Servarr()
			return pick(useToken,
				func() (*api.Response, error) { return s.Movies(cmd.Context()) },
				func() (*api.Response, error) { return s.Movies2(cmd.Context()) })
		})
	addAPITokenFlag(list.Flags(), &useToken)

	var addData string
	add := endpointCmd("add", "Subscribe to a movie", "", cobra.NoArgs,
		func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
			body, err := requireData(cmd, addData)
			if err != nil {
				return nil, err
			}
			return app.MP.Servarr().AddMovie(cmd.Context(), body)
		})
	add.Flags().StringVarP(&addData, "data", "d", "", `Movie: {"title":"...","year":2021,"tmdbId":438631}`)

	cmd.AddCommand(
		list,
		endpointCmd("lookup <term>", "Look up a movie (e.g. tmdb:438631)", "movie", cobra.ExactArgs(1),
			func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
				return app.MP.Servarr().LookupMovie(cmd.Context(), args[0])
			}),
		byID("show <id>", "Show a movie subscription", "movie ID",
			func(cmd *cobra.Command, app *appctx.App, id int) (*api.Response, error) {
				return app.MP.Servarr().Movie(cmd.Context(), id)
			}),
		add,
		byID("delete <id>", "Delete a movie subscription", "movie ID",
			func(cmd *cobra.Command, app *appctx.App, id int) (*api.Response, error) {
				return app.MP.Servarr().DeleteMovie(cmd.Context(), id)
			}),
	)
	return cmd
}

func newServarrSeriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "series",
		Short: "TV subscriptions (Sonarr)",
	}

	var addData, updateData string
	add := endpointCmd("add", "Subscribe to a series", "", cobra.NoArgs,
		func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
			body, err := requireData(cmd, addData)
			if err != nil {
				return nil, err
			}
			return app.MP.Servarr().AddSeries(cmd.Context(), body)
		})
	add.Flags().StringVarP(&addData, "data", "d", "", `Series: {"title":"...","tvdbId":123,"seasons":[...]}`)

	update := endpointCmd("update", "Update a series subscription", "", cobra.NoArgs,
		func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
			body, err := requireData(cmd, updateData)
			if err != nil {
				return nil, err
			}
			return app.MP.Servarr().UpdateSeries(cmd.Context(), body)
		})
	update.Flags().StringVarP(&updateData, "data", "d", "", "Full series including its id")

	cmd.AddCommand(
		endpointCmd("list", "List series subscriptions", "", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.Servarr().Series(cmd.Context())
			}),
		endpointCmd("lookup <term>", "Look up a series (tvdb:<id> or a title)", "", cobra.ExactArgs(1),
			func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
				return app.MP.Servarr().LookupSeries(cmd.Context(), args[0])
			}),
		byID("show <id>", "Show a series subscription", "series ID",
			func(cmd *cobra.Command, app *appctx.App, id int) (*api.Response, error) {
				return app.MP.Servarr().SeriesDetail(cmd.Context(), id)
			}),
		add,
		update,
		byID("delete <id>", "Delete a series subscription", "series ID",
			func(cmd *cobra.Command, app *appctx.App, id int) (*api.Response, error) {
				return app.MP.Servarr().DeleteSeries(cmd.Context(), id)
			}),
	)
	return cmd
}
