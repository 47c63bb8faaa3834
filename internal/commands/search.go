package commands

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moviepilot/mp-cli/internal/api"
	"github.com/moviepilot/mp-cli/internal/appctx"
)

// NewSearchCmd creates the search command group.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search indexer sites for torrents",
	}

	var mtype, area string
	var season int
	var mediaSites []string
	byMedia := endpointCmd("media <media-id>", "Search by media ID (e.g. tmdb:603)", "torrent", cobra.ExactArgs(1),
		func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
			extra := url.Values{}
			if mtype != "" {
				typeName, err := mediaTypeName(mtype)
				if err != nil {
					return nil, err
				}
				extra.Set("mtype", typeName)
			}
			if area != "" {
				extra.Set("area", area)
			}
			if season > 0 {
				extra.Set("season", strconv.Itoa(season))
			}
			if len(mediaSites) > 0 {
				extra.Set("sites", strings.Join(mediaSites, ","))
			}
			if len(extra) == 0 {
				extra = nil
			}
			return app.MP.Search().ByMediaID(cmd.Context(), args[0], extra)
		})
	byMedia.Flags().StringVar(&mtype, "type", "", "Media type: movie or tv")
	byMedia.Flags().StringVar(&area, "area", "", "Search area: title or imdbid")
	byMedia.Flags().IntVar(&season, "season", 0, "Season number")
	byMedia.Flags().StringSliceVar(&mediaSites, "sites", nil, "Site IDs to search (default: all)")

	var page int
	var titleSites []string
	byTitle := endpointCmd("title [keyword]", "Search by keyword", "torrent", cobra.MaximumNArgs(1),
		func(cmd *cobra.Command, app *appctx.App, args []string) (*api.Response, error) {
			keyword := ""
			if len(args) == 1 {
				keyword = args[0]
			}
			return app.MP.Search().ByTitle(cmd.Context(), keyword, page, strings.Join(titleSites, ","))
		})
	byTitle.Flags().IntVar(&page, "page", 0, "Page number")
	byTitle.Flags().StringSliceVar(&titleSites, "sites", nil, "Site IDs to search (default: all)")

	cmd.AddCommand(
		endpointCmd("last", "Show the results of the last search", "torrent", cobra.NoArgs,
			func(cmd *cobra.Command, app *appctx.App, _ []string) (*api.Response, error) {
				return app.MP.Search().Last(cmd.Context())
			}),
		byMedia,
		byTitle,
	)

	return cmd
}
