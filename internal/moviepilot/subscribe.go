package moviepilot

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/moviepilot/mp-cli/internal/api"
)

// SubscribeService manages media subscriptions.
type SubscribeService struct{ service }

func (s *SubscribeService) List(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "List", "/subscribe/", nil)
}

// List2 lists subscriptions using the API token.
func (s *SubscribeService) List2(ctx context.Context) (*api.Response, error) {
	return s.getToken(ctx, "List2", "/subscribe/list", nil)
}

func (s *SubscribeService) Create(ctx context.Context, body json.RawMessage) (*api.Response, error) {
	return s.call(ctx, "Create", api.Request{Method: "POST", Path: "/subscribe/", Body: body})
}

func (s *SubscribeService) Update(ctx context.Context, body json.RawMessage) (*api.Response, error) {
	return s.call(ctx, "Update", api.Request{Method: "PUT", Path: "/subscribe/", Body: body})
}

func (s *SubscribeService) Get(ctx context.Context, id int) (*api.Response, error) {
	return s.get(ctx, "Get", "/subscribe/"+segInt(id), nil)
}

func (s *SubscribeService) Delete(ctx context.Context, id int) (*api.Response, error) {
	return s.call(ctx, "Delete", api.Request{Method: "DELETE", Path: "/subscribe/" + segInt(id)})
}

// SetState changes a subscription's state, e.g. "R" (running) or "S" (paused).
func (s *SubscribeService) SetState(ctx context.Context, id int, state string) (*api.Response, error) {
	return s.call(ctx, "SetState", api.Request{
		Method: "PUT",
		Path:   "/subscribe/status/" + segInt(id),
		Query:  query().str("state", state).values(),
	})
}

// ByMedia looks up the subscription for a media ID such as "tmdb:123".
func (s *SubscribeService) ByMedia(ctx context.Context, mediaID string, season int, title string) (*api.Response, error) {
	return s.get(ctx, "ByMedia", "/subscribe/media/"+seg(mediaID), query().num("season", season).str("title", title))
}

func (s *SubscribeService) Refresh(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "Refresh", "/subscribe/refresh", nil)
}

func (s *SubscribeService) Reset(ctx context.Context, id int) (*api.Response, error) {
	return s.get(ctx, "Reset", "/subscribe/reset/"+segInt(id), nil)
}

func (s *SubscribeService) Check(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "Check", "/subscribe/check", nil)
}

// SearchAll triggers a search for every subscription.
func (s *SubscribeService) SearchAll(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "SearchAll", "/subscribe/search", nil)
}

func (s *SubscribeService) Search(ctx context.Context, id int) (*api.Response, error) {
	return s.get(ctx, "Search", "/subscribe/search/"+segInt(id), nil)
}

// History lists finished subscriptions of mtype ("movie" or "tv").
func (s *SubscribeService) History(ctx context.Context, mtype string, page, count int) (*api.Response, error) {
	return s.get(ctx, "History", "/subscribe/history/"+seg(mtype), pageQuery(page, count, 30))
}

// Popular lists the most-subscribed media of stype. minSub 0 means no
// minimum.
func (s *SubscribeService) Popular(ctx context.Context, stype string, page, count, minSub int) (*api.Response, error) {
	q := query().str("stype", stype)
	for k, v := range pageQuery(page, count, 30) {
		q[k] = v
	}
	return s.get(ctx, "Popular", "/subscribe/popular", q.num("min_sub", minSub))
}

func (s *SubscribeService) User(ctx context.Context, name string) (*api.Response, error) {
	return s.get(ctx, "User", "/subscribe/user/"+seg(name), nil)
}

func (s *SubscribeService) Files(ctx context.Context, id int) (*api.Response, error) {
	return s.get(ctx, "Files", "/subscribe/files/"+segInt(id), nil)
}
