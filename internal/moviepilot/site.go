package moviepilot

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/moviepilot/mp-cli/internal/api"
)

// SiteService manages indexer sites.
type SiteService struct{ service }

func (s *SiteService) List(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "List", "/site/", nil)
}

func (s *SiteService) Create(ctx context.Context, body json.RawMessage) (*api.Response, error) {
	return s.call(ctx, "Create", api.Request{Method: "POST", Path: "/site/", Body: body})
}

func (s *SiteService) Update(ctx context.Context, body json.RawMessage) (*api.Response, error) {
	return s.call(ctx, "Update", api.Request{Method: "PUT", Path: "/site/", Body: body})
}

func (s *SiteService) Get(ctx context.Context, id int) (*api.Response, error) {
	return s.get(ctx, "Get", "/site/"+segInt(id), nil)
}

func (s *SiteService) Delete(ctx context.Context, id int) (*api.Response, error) {
	return s.call(ctx, "Delete", api.Request{Method: "DELETE", Path: "/site/" + segInt(id)})
}

// Test checks that the site is reachable with its stored cookie.
func (s *SiteService) Test(ctx context.Context, id int) (*api.Response, error) {
	return s.get(ctx, "Test", "/site/test/"+segInt(id), nil)
}

// UserData returns the account statistics recorded for a site, optionally
// for one work date (YYYY-MM-DD).
func (s *SiteService) UserData(ctx context.Context, id int, workdate string) (*api.Response, error) {
	return s.get(ctx, "UserData", "/site/userdata/"+segInt(id), query().str("workdate", workdate))
}

// RefreshUserData asks the server to fetch fresh statistics from the site.
func (s *SiteService) RefreshUserData(ctx context.Context, id int) (*api.Response, error) {
	return s.call(ctx, "RefreshUserData", api.Request{Method: "POST", Path: "/site/userdata/" + segInt(id)})
}

func (s *SiteService) LatestUserData(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "LatestUserData", "/site/userdata/latest", nil)
}

// CookieCloud syncs site cookies from CookieCloud.
func (s *SiteService) CookieCloud(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "CookieCloud", "/site/cookiecloud", nil)
}

func (s *SiteService) Reset(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "Reset", "/site/reset", nil)
}

func (s *SiteService) RSS(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "RSS", "/site/rss", nil)
}

func (s *SiteService) Resource(ctx context.Context, id int, keyword, cat string, page int) (*api.Response, error) {
	q := query().str("keyword", keyword).str("cat", cat).num("page", page)
	return s.get(ctx, "Resource", "/site/resource/"+segInt(id), q)
}
