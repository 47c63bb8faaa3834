package moviepilot

import (
	"context"
	"net/url"

	"github.com/moviepilot/mp-cli/internal/api"
)

// SearchService searches indexer sites for torrents.
type SearchService struct{ service }

// Last returns the results of the most recent search.
func (s *SearchService) Last(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "Last", "/search/last", nil)
}

// ByMediaID searches for a media ID such as "tmdb:603". extra carries
// optional filters (mtype, area, season, sites) passed through as-is.
func (s *SearchService) ByMediaID(ctx context.Context, mediaID string, extra url.Values) (*api.Response, error) {
	return s.call(ctx, "ByMediaID", api.Request{Method: "GET", Path: "/search/media/" + seg(mediaID), Query: extra})
}

// ByTitle searches by keyword. sites is a comma-separated list of site IDs;
// an empty keyword returns the sites' front pages.
func (s *SearchService) ByTitle(ctx context.Context, keyword string, page int, sites string) (*api.Response, error) {
	q := query().str("keyword", keyword).always("page", segInt(max(page, 0))).str("sites", sites)
	return s.get(ctx, "ByTitle", "/search/title", q)
}
