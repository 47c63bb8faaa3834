package moviepilot

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviepilot/mp-cli/internal/api"
	"github.com/moviepilot/mp-cli/internal/auth"
	"github.com/moviepilot/mp-cli/internal/observability"
	"github.com/moviepilot/mp-cli/internal/output"
)

type recorder struct {
	mu   sync.Mutex
	reqs []*api.TransportRequest
}

func (r *recorder) Send(_ context.Context, req *api.TransportRequest) (*api.TransportResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	return &api.TransportResponse{StatusCode: http.StatusOK, Header: http.Header{}, Body: []byte(`{"success":true}`)}, nil
}

type opRecorder struct {
	observability.NopHooks
	ops []observability.OperationInfo
}

func (h *opRecorder) OnOperationStart(ctx context.Context, op observability.OperationInfo) context.Context {
	h.ops = append(h.ops, op)
	return ctx
}

func newTestClient(t *testing.T) (*Client, *recorder, *opRecorder) {
	t.Helper()
	m := auth.NewManager(auth.NewMemoryStore())
	require.NoError(t, m.Store().Save(&auth.Session{
		AccessToken: "abc",
		TokenType:   "bearer",
		ServerURL:   "http://mp:3000",
	}))
	rec := &recorder{}
	hooks := &opRecorder{}
	gw := api.NewGateway(m, api.WithTransport(rec), api.WithHooks(hooks), api.WithAPIToken("apitoken"))
	return NewClient(gw), rec, hooks
}

func TestEndpoints(t *testing.T) {
	raw := json.RawMessage(`{"id":1}`)

	tests := []struct {
		name   string
		call   func(context.Context, *Client) (*api.Response, error)
		method string
		url    string
		token  bool
		body   string
	}{
		// Dashboard
		{"statistic", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Dashboard().Statistic(ctx, "") },
			"GET", "/api/v1/dashboard/statistic", false, ""},
		{"statistic named", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Dashboard().Statistic(ctx, "emby") },
			"GET", "/api/v1/dashboard/statistic?name=emby", false, ""},
		{"statistic2", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Dashboard().Statistic2(ctx) },
			"GET", "/api/v1/dashboard/statistic2?token=apitoken", true, ""},
		{"storage2", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Dashboard().Storage2(ctx) },
			"GET", "/api/v1/dashboard/storage2?token=apitoken", true, ""},
		{"downloader", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Dashboard().Downloader(ctx, "qb") },
			"GET", "/api/v1/dashboard/downloader?name=qb", false, ""},
		{"transfer default days", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Dashboard().Transfer(ctx, 0) },
			"GET", "/api/v1/dashboard/transfer?days=7", false, ""},
		{"cpu", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Dashboard().CPU(ctx) },
			"GET", "/api/v1/dashboard/cpu", false, ""},
		{"memory2", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Dashboard().Memory2(ctx) },
			"GET", "/api/v1/dashboard/memory2?token=apitoken", true, ""},
		{"network2", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Dashboard().Network2(ctx) },
			"GET", "/api/v1/dashboard/network2?token=apitoken", true, ""},

		// System
		{"logging defaults", func(ctx context.Context, c *Client) (*api.Response, error) { return c.System().Logging(ctx, 0, "") },
			"GET", "/api/v1/system/logging?length=50&logfile=moviepilot.log", false, ""},
		{"message default role", func(ctx context.Context, c *Client) (*api.Response, error) { return c.System().Message(ctx, "") },
			"GET", "/api/v1/system/message?role=system", false, ""},
		{"nettest", func(ctx context.Context, c *Client) (*api.Response, error) {
			return c.System().NetTest(ctx, "https://api.themoviedb.org", true)
		}, "GET", "/api/v1/system/nettest?proxy=true&url=https%3A%2F%2Fapi.themoviedb.org", false, ""},
		{"setting", func(ctx context.Context, c *Client) (*api.Response, error) { return c.System().Setting(ctx, "Downloaders") },
			"GET", "/api/v1/system/setting/Downloaders", false, ""},
		{"set setting", func(ctx context.Context, c *Client) (*api.Response, error) {
			return c.System().SetSetting(ctx, "X", []string{"a"})
		}, "POST", "/api/v1/system/setting/X", false, `["a"]`},
		{"runscheduler", func(ctx context.Context, c *Client) (*api.Response, error) { return c.System().RunScheduler(ctx, "subscribe_refresh") },
			"GET", "/api/v1/system/runscheduler?jobid=subscribe_refresh", false, ""},
		{"runscheduler2", func(ctx context.Context, c *Client) (*api.Response, error) { return c.System().RunScheduler2(ctx, "cookiecloud") },
			"GET", "/api/v1/system/runscheduler2?jobid=cookiecloud&token=apitoken", true, ""},

		// Download
		{"downloads", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Download().List(ctx, "") },
			"GET", "/api/v1/download/", false, ""},
		{"download start", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Download().Start(ctx, "abc123", "qb") },
			"GET", "/api/v1/download/start/abc123?name=qb", false, ""},
		{"download delete", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Download().Delete(ctx, "abc123", "") },
			"DELETE", "/api/v1/download/abc123", false, ""},
		{"download add", func(ctx context.Context, c *Client) (*api.Response, error) {
			return c.Download().Add(ctx, map[string]any{"torrent_in": map[string]any{"enclosure": "x"}})
		}, "POST", "/api/v1/download/add", false, `{"torrent_in":{"enclosure":"x"}}`},
		{"download add with media", func(ctx context.Context, c *Client) (*api.Response, error) {
			return c.Download().Add(ctx, map[string]any{"media_in": map[string]any{}, "torrent_in": map[string]any{}})
		}, "POST", "/api/v1/download/", false, `{"media_in":{},"torrent_in":{}}`},

		// History
		{"download history", func(ctx context.Context, c *Client) (*api.Response, error) { return c.History().Downloads(ctx, 0, 0) },
			"GET", "/api/v1/history/download?count=30&page=1", false, ""},
		{"transfer history", func(ctx context.Context, c *Client) (*api.Response, error) {
			return c.History().Transfers(ctx, 2, 10, "Dune")
		}, "GET", "/api/v1/history/transfer?count=10&page=2&title=Dune", false, ""},
		{"delete transfer", func(ctx context.Context, c *Client) (*api.Response, error) {
			return c.History().DeleteTransfer(ctx, raw, true, false)
		}, "DELETE", "/api/v1/history/transfer?deletedest=false&deletesrc=true", false, `{"id":1}`},
		{"empty transfers", func(ctx context.Context, c *Client) (*api.Response, error) { return c.History().EmptyTransfers(ctx) },
			"GET", "/api/v1/history/empty/transfer", false, ""},

		// Subscribe
		{"subscribes", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Subscribe().List(ctx) },
			"GET", "/api/v1/subscribe/", false, ""},
		{"subscribes2", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Subscribe().List2(ctx) },
			"GET", "/api/v1/subscribe/list?token=apitoken", true, ""},
		{"subscribe create", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Subscribe().Create(ctx, raw) },
			"POST", "/api/v1/subscribe/", false, `{"id":1}`},
		{"subscribe state", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Subscribe().SetState(ctx, 5, "S") },
			"PUT", "/api/v1/subscribe/status/5?state=S", false, ""},
		{"subscribe delete", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Subscribe().Delete(ctx, 5) },
			"DELETE", "/api/v1/subscribe/5", false, ""},
		{"subscribe by media", func(ctx context.Context, c *Client) (*api.Response, error) {
			return c.Subscribe().ByMedia(ctx, "tmdb:1399", 2, "")
		}, "GET", "/api/v1/subscribe/media/tmdb:1399?season=2", false, ""},
		{"subscribe history", func(ctx context.Context, c *Client) (*api.Response, error) {
			return c.Subscribe().History(ctx, "movie", 1, 30)
		}, "GET", "/api/v1/subscribe/history/movie?count=30&page=1", false, ""},
		{"popular", func(ctx context.Context, c *Client) (*api.Response, error) {
			return c.Subscribe().Popular(ctx, "电影", 1, 20, 3)
		}, "GET", "/api/v1/subscribe/popular?count=20&min_sub=3&page=1&stype=%E7%94%B5%E5%BD%B1", false, ""},

		// Site
		{"sites", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Site().List(ctx) },
			"GET", "/api/v1/site/", false, ""},
		{"site userdata", func(ctx context.Context, c *Client) (*api.Response, error) {
			return c.Site().UserData(ctx, 3, "2026-01-01")
		}, "GET", "/api/v1/site/userdata/3?workdate=2026-01-01", false, ""},
		{"site refresh userdata", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Site().RefreshUserData(ctx, 3) },
			"POST", "/api/v1/site/userdata/3", false, ""},
		{"site test", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Site().Test(ctx, 3) },
			"GET", "/api/v1/site/test/3", false, ""},

		// Media
		{"recognize", func(ctx context.Context, c *Client) (*api.Response, error) {
			return c.Media().Recognize(ctx, "Dune.2021.2160p", "")
		}, "GET", "/api/v1/media/recognize?title=Dune.2021.2160p", false, ""},
		{"recognize2", func(ctx context.Context, c *Client) (*api.Response, error) {
			return c.Media().Recognize2(ctx, "Dune", "sub")
		}, "GET", "/api/v1/media/recognize2?subtitle=sub&title=Dune&token=apitoken", true, ""},
		{"media search", func(ctx context.Context, c *Client) (*api.Response, error) {
			return c.Media().Search(ctx, "Dune", "", 0, 0)
		}, "GET", "/api/v1/media/search?count=8&page=1&title=Dune&type=media", false, ""},
		{"media detail", func(ctx context.Context, c *Client) (*api.Response, error) {
			return c.Media().Detail(ctx, "tmdb:438631", "电影", "", "")
		}, "GET", "/api/v1/media/tmdb:438631?type_name=%E7%94%B5%E5%BD%B1", false, ""},

		// Search
		{"search last", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Search().Last(ctx) },
			"GET", "/api/v1/search/last", false, ""},
		{"search title", func(ctx context.Context, c *Client) (*api.Response, error) {
			return c.Search().ByTitle(ctx, "Dune", 0, "1,2")
		}, "GET", "/api/v1/search/title?keyword=Dune&page=0&sites=1%2C2", false, ""},
		{"search media", func(ctx context.Context, c *Client) (*api.Response, error) {
			return c.Search().ByMediaID(ctx, "tmdb:1", url.Values{"mtype": {"movie"}})
		}, "GET", "/api/v1/search/media/tmdb:1?mtype=movie", false, ""},

		// User
		{"current user", func(ctx context.Context, c *Client) (*api.Response, error) { return c.User().Current(ctx) },
			"GET", "/api/v1/user/current", false, ""},
		{"user by name", func(ctx context.Context, c *Client) (*api.Response, error) { return c.User().Get(ctx, "a b") },
			"GET", "/api/v1/user/a%20b", false, ""},
		{"delete user", func(ctx context.Context, c *Client) (*api.Response, error) { return c.User().DeleteByName(ctx, "bob") },
			"DELETE", "/api/v1/user/name/bob", false, ""},

		// Plugin
		{"plugins", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Plugin().List(ctx, "", false) },
			"GET", "/api/v1/plugin/?force=false&state=all", false, ""},
		{"plugin install", func(ctx context.Context, c *Client) (*api.Response, error) {
			return c.Plugin().Install(ctx, "AutoSignIn", "", true)
		}, "GET", "/api/v1/plugin/install/AutoSignIn?force=true&repo_url=", false, ""},
		{"plugin uninstall", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Plugin().Uninstall(ctx, "AutoSignIn") },
			"DELETE", "/api/v1/plugin/AutoSignIn", false, ""},

		// Message
		{"messages", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Message().Web(ctx, 0, 0) },
			"GET", "/api/v1/message/web?count=20&page=1", false, ""},
		{"send message", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Message().SendWeb(ctx, "hello world") },
			"POST", "/api/v1/message/web?text=hello+world", false, ""},

		// Transfer
		{"transfer queue", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Transfer().Queue(ctx) },
			"GET", "/api/v1/transfer/queue", false, ""},
		{"transfer name", func(ctx context.Context, c *Client) (*api.Response, error) {
			return c.Transfer().Name(ctx, "/downloads/a.mkv", "")
		}, "GET", "/api/v1/transfer/name?path=%2Fdownloads%2Fa.mkv", false, ""},
		{"transfer now", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Transfer().Now(ctx) },
			"GET", "/api/v1/transfer/now?token=apitoken", true, ""},

		// Servarr
		{"servarr status", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Servarr().SystemStatus(ctx) },
			"GET", "/api/v3/system/status", false, ""},
		{"servarr movies", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Servarr().Movies(ctx) },
			"GET", "/api/v3/movie", false, ""},
		{"servarr movies2", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Servarr().Movies2(ctx) },
			"GET", "/api/v3/movie?token=apitoken", true, ""},
		{"servarr movie lookup", func(ctx context.Context, c *Client) (*api.Response, error) {
			return c.Servarr().LookupMovie(ctx, "tmdb:438631")
		}, "GET", "/api/v3/movie/lookup?term=tmdb%3A438631", false, ""},
		{"servarr delete movie", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Servarr().DeleteMovie(ctx, 5) },
			"DELETE", "/api/v3/movie/5", false, ""},
		{"servarr add series", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Servarr().AddSeries(ctx, raw) },
			"POST", "/api/v3/series", false, `{"id":1}`},
		{"servarr update series", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Servarr().UpdateSeries(ctx, raw) },
			"PUT", "/api/v3/series", false, `{"id":1}`},
		{"servarr series detail", func(ctx context.Context, c *Client) (*api.Response, error) { return c.Servarr().SeriesDetail(ctx, 9) },
			"GET", "/api/v3/series/9", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec, hooks := newTestClient(t)

			resp, err := tt.call(context.Background(), c)
			require.NoError(t, err)
			assert.JSONEq(t, `{"success":true}`, string(resp.Data))

			require.Len(t, rec.reqs, 1)
			req := rec.reqs[0]
			assert.Equal(t, tt.method, req.Method)
			assert.Equal(t, "http://mp:3000"+tt.url, req.URL)
			if tt.token {
				assert.Empty(t, req.Header.Values("Authorization"))
			} else {
				assert.Equal(t, "Bearer abc", req.Header.Get("Authorization"))
			}
			if tt.body != "" {
				assert.JSONEq(t, tt.body, string(req.Body))
			} else {
				assert.Empty(t, req.Body)
			}

			require.Len(t, hooks.ops, 1)
			assert.Equal(t, tt.token, hooks.ops[0].TokenMode)
			assert.NotEmpty(t, hooks.ops[0].Service)
			assert.NotEmpty(t, hooks.ops[0].Operation)
		})
	}
}

func TestOperationNames(t *testing.T) {
	c, _, hooks := newTestClient(t)

	_, err := c.Dashboard().CPU2(context.Background())
	require.NoError(t, err)
	_, err = c.Subscribe().Refresh(context.Background())
	require.NoError(t, err)

	require.Len(t, hooks.ops, 2)
	assert.Equal(t, observability.OperationInfo{Service: "Dashboard", Operation: "CPU2", TokenMode: true}, hooks.ops[0])
	assert.Equal(t, observability.OperationInfo{Service: "Subscribe", Operation: "Refresh"}, hooks.ops[1])
}

func TestServicesRequireSession(t *testing.T) {
	rec := &recorder{}
	gw := api.NewGateway(auth.NewManager(nil), api.WithTransport(rec))
	c := NewClient(gw)

	_, err := c.User().Current(context.Background())
	assert.True(t, output.IsCode(err, output.CodeUnauthenticated))

	_, err = c.Transfer().Now(context.Background())
	assert.True(t, output.IsCode(err, output.CodeUnauthenticated))

	assert.Empty(t, rec.reqs)
}
