package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/moviepilot/mp-cli/internal/api"
	"github.com/moviepilot/mp-cli/internal/appctx"
	"github.com/moviepilot/mp-cli/internal/output"
)

// Media type names as the server spells them.
const (
	typeMovie = "电影"
	typeTV    = "电视剧"
)

// NewMediaCmd creates the media command group.
func NewMediaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Recognize and look up media",
	}

	var subtitle string
	var recognizeToken bool
	recognize := endpointCmd("recognize <title>", "Parse a release title into media info", "", cobra.ExactArgs(1),
		func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
			m := app.MP.Media()
			return pick(recognizeToken,
				func() (*api.Response, error) { return m.Recognize(cmd.Context(), args[0], subtitle) },
				func() (*api.Response, error) { return m.Recognize2(cmd.Context(), args[0], subtitle) })
		})
	recognize.Flags().StringVar(&subtitle, "subtitle", "", "Release subtitle")
	addAPITokenFlag(recognize.Flags(), &recognizeToken)

	var fileToken bool
	recognizeFile := endpointCmd("recognize-file <path>", "Recognize media from a file path on the server", "", cobra.ExactArgs(1),
		func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
			m := app.MP.Media()
			return pick(fileToken,
				func() (*api.Response, error) { return m.RecognizeFile(cmd.Context(), args[0]) },
				func() (*api.Response, error) { return m.RecognizeFile2(cmd.Context(), args[0]) })
		})
	addAPITokenFlag(recognizeFile.Flags(), &fileToken)

	var kind string
	var page, count int
	search := endpointCmd("search <title>", "Search media by title", "result", cobra.ExactArgs(1),
		func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
			if kind != "media" && kind != "person" {
				return nil, output.ErrUsage("--type must be media or person")
			}
			return app.MP.Media().Search(cmd.Context(), args[0], kind, page, count)
		})
	search.Flags().StringVar(&kind, "type", "media", "What to search: media or person")
	search.Flags().IntVar(&page, "page", 1, "Page number")
	search.Flags().IntVar(&count, "count", 8, "Results per page")

	var detailType, title, year string
	detail := endpointCmd("show <media-id>", "Show media details (e.g. tmdb:603)", "", cobra.ExactArgs(1),
		func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
			typeName, err := mediaTypeName(detailType)
			if err != nil {
				return nil, err
			}
			return app.MP.Media().Detail(cmd.Context(), args[0], typeName, title, year)
		})
	detail.Flags().StringVar(&detailType, "type", "movie", "Media type: movie or tv")
	detail.Flags().StringVar(&title, "title", "", "Title, for sources without IDs")
	detail.Flags().StringVar(&year, "year", "", "Release year")

	var sTitle, sYear string
	var season int
	seasons := endpointCmd("seasons <media-id>", "List the seasons of a TV show", "season", cobra.ExactArgs(1),
		func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
			return app.MP.Media().Seasons(cmd.Context(), args[0], sTitle, sYear, season)
		})
	seasons.Flags().StringVar(&sTitle, "title", "", "Title")
	seasons.Flags().StringVar(&sYear, "year", "", "Year")
	seasons.Flags().IntVar(&season, "season", 0, "Season number")

	cmd.AddCommand(
		recognize,
		recognizeFile,
		search,
		detail,
		seasons,
		endpointCmd("category", "Show the category configuration", "", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.Media().Category(cmd.Context())
			}),
		byID("groups <tmdb-id>", "List episode groups of a TMDB show", "TMDB ID",
			func(cmd *cobra.Command, app *appctx.App, id int) (*api.Response, error) {
				return app.MP.Media().Groups(cmd.Context(), id)
			}),
	)

	return cmd
}

// mediaTypeName maps movie/tv to the server's type names. Server names pass through.
func mediaTypeName(t string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "movie", typeMovie:
		return typeMovie, nil
	case "tv", typeTV:
		return typeTV, nil
	}
	return "", output.ErrUsage("--type must be movie or tv")
}
