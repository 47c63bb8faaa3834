package moviepilot

import (
	"context"

	"github.com/moviepilot/mp-cli/internal/api"
)

// MediaService recognizes and looks up media metadata.
type MediaService struct{ service }

// Recognize parses a release title (and optional subtitle) into media info.
func (s *MediaService) Recognize(ctx context.Context, title, subtitle string) (*api.Response, error) {
	return s.get(ctx, "Recognize", "/media/recognize", query().str("title", title).str("subtitle", subtitle))
}

// Recognize2 is Recognize authenticated with the API token.
func (s *MediaService) Recognize2(ctx context.Context, title, subtitle string) (*api.Response, error) {
	return s.getToken(ctx, "Recognize2", "/media/recognize2", query().str("title", title).str("subtitle", subtitle))
}

func (s *MediaService) RecognizeFile(ctx context.Context, path string) (*api.Response, error) {
	return s.get(ctx, "RecognizeFile", "/media/recognize_file", query().str("path", path))
}

func (s *MediaService) RecognizeFile2(ctx context.Context, path string) (*api.Response, error) {
	return s.getToken(ctx, "RecognizeFile2", "/media/recognize_file2", query().str("path", path))
}

// Search finds media by title. kind is "media" or "person"; default "media".
func (s *MediaService) Search(ctx context.Context, title, kind string, page, count int) (*api.Response, error) {
	if kind == "" {
		kind = "media"
	}
	q := query().str("title", title).str("type", kind)
	for k, v := range pageQuery(page, count, 8) {
		q[k] = v
	}
	return s.get(ctx, "Search", "/media/search", q)
}

// Detail returns media details for an ID such as "tmdb:603". typeName is
// "电影" (movie) or "电视剧" (TV) as the server expects.
func (s *MediaService) Detail(ctx context.Context, mediaID, typeName, title, year string) (*api.Response, error) {
	q := query().always("type_name", typeName).str("title", title).str("year", year)
	return s.get(ctx, "Detail", "/media/"+seg(mediaID), q)
}

func (s *MediaService) Seasons(ctx context.Context, mediaID, title, year string, season int) (*api.Response, error) {
	q := query().str("mediaid", mediaID).str("title", title).str("year", year).num("season", season)
	return s.get(ctx, "Seasons", "/media/seasons", q)
}

func (s *MediaService) Category(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "Category", "/media/category", nil)
}

func (s *MediaService) Groups(ctx context.Context, tmdbID int) (*api.Response, error) {
	return s.get(ctx, "Groups", "/media/groups/"+segInt(tmdbID), nil)
}
