package commands

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviepilot/mp-cli/internal/api"
	"github.com/moviepilot/mp-cli/internal/appctx"
	"github.com/moviepilot/mp-cli/internal/auth"
	"github.com/moviepilot/mp-cli/internal/completion"
	"github.com/moviepilot/mp-cli/internal/config"
	"github.com/moviepilot/mp-cli/internal/output"
)

// fakeTransport answers by URL path and records every request.
type fakeTransport struct {
	mu     sync.Mutex
	reqs   []*api.TransportRequest
	routes map[string]route
}

type route struct {
	status int
	body   string
}

func (f *fakeTransport) Send(_ context.Context, req *api.TransportRequest) (*api.TransportResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)

	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, err
	}
	if r, ok := f.routes[u.Path]; ok {
		status := r.status
		if status == 0 {
			status = http.StatusOK
		}
		return &api.TransportResponse{StatusCode: status, Header: http.Header{}, Body: []byte(r.body)}, nil
	}
	return &api.TransportResponse{StatusCode: http.StatusOK, Header: http.Header{}, Body: []byte(`{"success":true}`)}, nil
}

func (f *fakeTransport) last(t *testing.T) *api.TransportRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.reqs, "no request was sent")
	return f.reqs[len(f.reqs)-1]
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

type testEnv struct {
	app       *appctx.App
	transport *fakeTransport
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
}

const testServer = "http://mp:3000"

// newEnv builds an App over a memory store and a fake transport. loggedIn
// seeds a session for testServer.
func newEnv(t *testing.T, loggedIn bool, routes map[string]route) *testEnv {
	t.Helper()
	t.Setenv("MP_DEBUG", "")
	t.Setenv("MP_CACHE_DIR", t.TempDir())

	store := auth.NewMemoryStore()
	if loggedIn {
		require.NoError(t, store.Save(&auth.Session{
			AccessToken: "tok",
			TokenType:   "bearer",
			UserID:      1,
			UserName:    "admin",
			ServerURL:   testServer,
		}))
	}

	cfg := config.Default()
	ft := &fakeTransport{routes: routes}
	var stdout, stderr bytes.Buffer
	app := appctx.NewApp(cfg,
		appctx.WithStore(store),
		appctx.WithTransport(ft),
		appctx.WithWriters(&stdout, &stderr),
	)
	return &testEnv{app: app, transport: ft, stdout: &stdout, stderr: &stderr}
}

// run executes cmd with args against the env's App.
func (e *testEnv) run(cmd *cobra.Command, args ...string) error {
	return e.runWithInput(cmd, nil, args...)
}

func (e *testEnv) runWithInput(cmd *cobra.Command, in io.Reader, args ...string) error {
	cmd.SetArgs(args)
	cmd.SetOut(e.stdout)
	cmd.SetErr(e.stderr)
	if in != nil {
		cmd.SetIn(in)
	}
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd.ExecuteContext(appctx.WithApp(context.Background(), e.app))
}

type envelope struct {
	OK          bool               `json:"ok"`
	Data        json.RawMessage    `json:"data"`
	Summary     string             `json:"summary"`
	Breadcrumbs []output.Breadcrumb `json:"breadcrumbs"`
}

func (e *testEnv) envelope(t *testing.T) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(e.stdout.Bytes(), &env), "stdout: %s", e.stdout.String())
	return env
}

func (e *testEnv) data(t *testing.T) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(e.envelope(t).Data, &m))
	return m
}

func TestCommandWithoutSessionMakesNoRequest(t *testing.T) {
	env := newEnv(t, false, nil)

	err := env.run(NewSubscribesCmd(), "list")
	require.Error(t, err)
	assert.True(t, output.IsCode(err, output.CodeUnauthenticated))
	assert.Zero(t, env.transport.count())
}

func TestSitesListSummarizesAndCaches(t *testing.T) {
	env := newEnv(t, true, map[string]route{
		"/api/v1/site/": {body: `[{"id":1,"name":"One"},{"id":2,"name":"Two"}]`},
	})

	require.NoError(t, env.run(NewSitesCmd(), "list"))

	req := env.transport.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, testServer+"/api/v1/site/", req.URL)
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))

	out := env.envelope(t)
	assert.True(t, out.OK)
	assert.Equal(t, "2 sites", out.Summary)

	items := completion.NewStore("").Items(completion.Sites)
	assert.Equal(t, []completion.Item{{ID: "1", Name: "One"}, {ID: "2", Name: "Two"}}, items)
}

func TestRequestFailedCarriesStatus(t *testing.T) {
	env := newEnv(t, true, map[string]route{
		"/api/v1/site/": {status: http.StatusInternalServerError, body: `{"detail":"database locked"}`},
	})

	err := env.run(NewSitesCmd(), "list")
	require.Error(t, err)
	e := output.AsError(err)
	assert.Equal(t, output.CodeRequestFailed, e.Code)
	assert.Equal(t, http.StatusInternalServerError, e.HTTPStatus)
	assert.Contains(t, e.Message, "500")
	assert.Empty(t, env.stdout.String())
}

func TestSubscribePause(t *testing.T) {
	env := newEnv(t, true, nil)

	require.NoError(t, env.run(NewSubscribesCmd(), "pause", "12"))

	req := env.transport.last(t)
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, testServer+"/api/v1/subscribe/status/12?state=S", req.URL)
}

func TestInvalidIDIsUsageError(t *testing.T) {
	env := newEnv(t, true, nil)

	err := env.run(NewSubscribesCmd(), "show", "abc")
	assert.True(t, output.IsCode(err, output.CodeUsage))
	assert.Zero(t, env.transport.count())
}

func TestSubscribeHistoryValidatesType(t *testing.T) {
	env := newEnv(t, true, nil)

	err := env.run(NewSubscribesCmd(), "history", "music")
	assert.True(t, output.IsCode(err, output.CodeUsage))

	require.NoError(t, env.run(NewSubscribesCmd(), "history", "TV", "--page", "2"))
	assert.Contains(t, env.transport.last(t).URL, "/api/v1/subscribe/history/tv")
}

func TestAPITokenFlag(t *testing.T) {
	t.Run("variant endpoint", func(t *testing.T) {
		env := newEnv(t, false, nil)
		env.app.Config.ServerURL = testServer
		env.app.Config.APIToken = "apikey"
		env.app.ApplyFlags()

		require.NoError(t, env.run(NewDashboardCmd(), "cpu", "--api-token"))
		req := env.transport.last(t)
		assert.Equal(t, testServer+"/api/v1/dashboard/cpu2?token=apikey", req.URL)
		assert.Empty(t, req.Header.Get("Authorization"))
	})

	t.Run("no variant", func(t *testing.T) {
		env := newEnv(t, true, nil)

		err := env.run(NewDashboardCmd(), "processes", "--api-token")
		require.Error(t, err)
		assert.True(t, output.IsCode(err, output.CodeUsage))
		assert.Contains(t, err.Error(), "--api-token")
		assert.Zero(t, env.transport.count())
	})
}

func TestServarr(t *testing.T) {
	t.Run("movies with api token", func(t *testing.T) {
		env := newEnv(t, false, map[string]route{"/api/v3/movie": {body: `[{"id":1},{"id":2}]`}})
		env.app.Config.ServerURL = testServer
		env.app.Config.APIToken = "apikey"
		env.app.ApplyFlags()

		require.NoError(t, env.run(NewServarrCmd(), "movies", "list", "--api-token"))
		req := env.transport.last(t)
		assert.Equal(t, testServer+"/api/v3/movie?token=apikey", req.URL)
		assert.Empty(t, req.Header.Get("Authorization"))
		assert.Equal(t, "2 movies", env.envelope(t).Summary)
	})

	t.Run("series delete", func(t *testing.T) {
		env := newEnv(t, true, nil)

		require.NoError(t, env.run(NewServarrCmd(), "series", "delete", "9"))
		req := env.transport.last(t)
		assert.Equal(t, http.MethodDelete, req.Method)
		assert.Equal(t, testServer+"/api/v3/series/9", req.URL)
		assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	})

	t.Run("movie add needs data", func(t *testing.T) {
		env := newEnv(t, true, nil)

		err := env.run(NewServarrCmd(), "movies", "add")
		assert.True(t, output.IsCode(err, output.CodeUsage))
		assert.Zero(t, env.transport.count())
	})
}

func TestSitesUserdataWorkdate(t *testing.T) {
	env := newEnv(t, true, nil)

	require.NoError(t, env.run(NewSitesCmd(), "userdata", "3", "--workdate", "2024-01-02"))
	assert.Equal(t, testServer+"/api/v1/site/userdata/3?workdate=2024-01-02", env.transport.last(t).URL)

	err := env.run(NewSitesCmd(), "userdata", "3", "--workdate", "someday")
	assert.True(t, output.IsCode(err, output.CodeUsage))
}

func TestSitesUserdataRelativeWorkdate(t *testing.T) {
	env := newEnv(t, true, nil)

	require.NoError(t, env.run(NewSitesCmd(), "userdata", "3", "--workdate", "yesterday"))
	want := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	assert.Equal(t, testServer+"/api/v1/site/userdata/3?workdate="+want, env.transport.last(t).URL)
}

func TestPluginsListState(t *testing.T) {
	env := newEnv(t, true, map[string]route{
		"/api/v1/plugin/": {body: `[{"id":"AutoSignIn","plugin_name":"Sign in"}]`},
	})

	err := env.run(NewPluginsCmd(), "list", "--state", "broken")
	assert.True(t, output.IsCode(err, output.CodeUsage))
	assert.Zero(t, env.transport.count())

	require.NoError(t, env.run(NewPluginsCmd(), "list", "--state", "installed"))
	assert.Equal(t, testServer+"/api/v1/plugin/?state=installed", env.transport.last(t).URL)
	assert.Equal(t, []completion.Item{{ID: "AutoSignIn", Name: "Sign in"}},
		completion.NewStore("").Items(completion.Plugins))
}

func TestDownloadsAddInjectsDownloader(t *testing.T) {
	env := newEnv(t, true, nil)

	require.NoError(t, env.run(NewDownloadsCmd(), "add", "--downloader", "qb",
		"--data", `{"torrent_in":{"enclosure":"magnet:?xt=1"}}`))

	req := env.transport.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	var body map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, "qb", body["downloader"])

	err := env.run(NewDownloadsCmd(), "add", "--data", `[1,2]`)
	assert.True(t, output.IsCode(err, output.CodeUsage))
}

func TestMessagesSendJoinsWords(t *testing.T) {
	env := newEnv(t, true, nil)

	require.NoError(t, env.run(NewMessagesCmd(), "send", "hello", "world"))
	req := env.transport.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	u, err := url.Parse(req.URL)
	require.NoError(t, err)
	assert.Equal(t, "hello world", u.Query().Get("text"))

	err = env.run(NewMessagesCmd(), "send", "  ")
	assert.True(t, output.IsCode(err, output.CodeUsage))
}

func TestTextPayloadIsPrintedAsString(t *testing.T) {
	env := newEnv(t, true, map[string]route{
		"/api/v1/system/logging": {body: "line one\nline two\n"},
	})

	require.NoError(t, env.run(NewSystemCmd(), "logging"))
	var s string
	require.NoError(t, json.Unmarshal(env.envelope(t).Data, &s))
	assert.Equal(t, "line one\nline two\n", s)
}

func TestAPICommand(t *testing.T) {
	t.Run("get with query and header", func(t *testing.T) {
		env := newEnv(t, true, map[string]route{
			"/api/v1/system/versions": {body: `["v2.0","v1.9"]`},
		})

		require.NoError(t, env.run(NewAPICmd(), "get", "system/versions", "-Q", "page=2", "-H", "X-Trace: 1"))
		req := env.transport.last(t)
		assert.Equal(t, testServer+"/api/v1/system/versions?page=2", req.URL)
		assert.Equal(t, "1", req.Header.Get("X-Trace"))
		assert.Equal(t, "GET /api/v1/system/versions: 2 items", env.envelope(t).Summary)
	})

	t.Run("post body from stdin", func(t *testing.T) {
		env := newEnv(t, true, nil)

		require.NoError(t, env.runWithInput(NewAPICmd(), strings.NewReader(`{"name":"Dune"}`),
			"post", "/api/v1/subscribe/", "--data", "-"))
		req := env.transport.last(t)
		assert.Equal(t, http.MethodPost, req.Method)
		assert.JSONEq(t, `{"name":"Dune"}`, string(req.Body))
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	})

	t.Run("invalid json", func(t *testing.T) {
		env := newEnv(t, true, nil)

		err := env.run(NewAPICmd(), "put", "/x", "--data", "{nope")
		assert.True(t, output.IsCode(err, output.CodeUsage))
		assert.Zero(t, env.transport.count())
	})

	t.Run("caller header wins", func(t *testing.T) {
		env := newEnv(t, true, nil)

		require.NoError(t, env.run(NewAPICmd(), "get", "/user/current", "-H", "Authorization: Basic xyz"))
		assert.Equal(t, "Basic xyz", env.transport.last(t).Header.Get("Authorization"))
	})
}

func TestAuthLogin(t *testing.T) {
	loginRoutes := map[string]route{
		"/api/v1/login/access-token": {body: `{"access_token":"new-tok","token_type":"bearer","user_name":"admin","user_id":7,"super_user":true}`},
	}

	t.Run("flags", func(t *testing.T) {
		env := newEnv(t, false, loginRoutes)

		require.NoError(t, env.run(NewAuthCmd(), "login", "--server", "nas.local:3000", "-u", "admin", "-p", "pw"))

		req := env.transport.last(t)
		assert.Equal(t, "http://nas.local:3000/api/v1/login/access-token", req.URL)
		form, err := url.ParseQuery(string(req.Body))
		require.NoError(t, err)
		assert.Equal(t, "admin", form.Get("username"))
		assert.Equal(t, "pw", form.Get("password"))

		sess := env.app.Auth.Session()
		require.NotNil(t, sess)
		assert.Equal(t, "new-tok", sess.AccessToken)
		assert.Equal(t, "http://nas.local:3000", sess.ServerURL)
		assert.Equal(t, "Logged in to http://nas.local:3000 as admin", env.envelope(t).Summary)
	})

	t.Run("password from stdin", func(t *testing.T) {
		env := newEnv(t, false, loginRoutes)

		require.NoError(t, env.runWithInput(NewAuthCmd(), strings.NewReader("s3cret\n"),
			"login", "-s", testServer, "-u", "admin", "--password-stdin"))
		form, err := url.ParseQuery(string(env.transport.last(t).Body))
		require.NoError(t, err)
		assert.Equal(t, "s3cret", form.Get("password"))
	})

	t.Run("rejected", func(t *testing.T) {
		env := newEnv(t, false, map[string]route{
			"/api/v1/login/access-token": {status: http.StatusUnauthorized, body: `{"detail":"Incorrect"}`},
		})

		err := env.run(NewAuthCmd(), "login", "-s", testServer, "-u", "admin", "-p", "bad")
		assert.True(t, output.IsCode(err, output.CodeLoginFailed))
		assert.Nil(t, env.app.Auth.Session())
	})

	t.Run("missing input when not interactive", func(t *testing.T) {
		env := newEnv(t, false, loginRoutes)

		err := env.run(NewAuthCmd(), "login", "-s", testServer)
		assert.True(t, output.IsCode(err, output.CodeUsage))
		assert.Zero(t, env.transport.count())
	})
}

func TestAuthStatus(t *testing.T) {
	t.Run("logged out", func(t *testing.T) {
		env := newEnv(t, false, nil)

		require.NoError(t, env.run(NewAuthCmd(), "status"))
		data := env.data(t)
		assert.Equal(t, false, data["authenticated"])
		assert.Equal(t, "memory", data["store"])
	})

	t.Run("token expiry", func(t *testing.T) {
		env := newEnv(t, false, nil)
		exp := time.Now().Add(2 * time.Hour)
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix(), "sub": "1"}).
			SignedString([]byte("key"))
		require.NoError(t, err)
		require.NoError(t, env.app.Auth.Store().Save(&auth.Session{AccessToken: token, ServerURL: testServer, UserName: "admin"}))

		require.NoError(t, env.run(NewAuthCmd(), "status"))
		data := env.data(t)
		assert.Equal(t, true, data["authenticated"])
		assert.Equal(t, false, data["expired"])
		assert.Equal(t, exp.UTC().Format(time.RFC3339), data["expires_at"])
		assert.Equal(t, "Bearer", data["token_type"])
		assert.NotContains(t, env.stdout.String(), token)
	})
}

func TestAuthToken(t *testing.T) {
	env := newEnv(t, true, nil)

	require.NoError(t, env.run(NewAuthCmd(), "token"))
	assert.Equal(t, "tok\n", env.stdout.String())

	env = newEnv(t, false, nil)
	err := env.run(NewAuthCmd(), "token")
	assert.True(t, output.IsCode(err, output.CodeUnauthenticated))
}

func TestAuthLogout(t *testing.T) {
	env := newEnv(t, true, nil)

	require.NoError(t, env.run(NewAuthCmd(), "logout"))
	assert.Nil(t, env.app.Auth.Session())
	assert.Equal(t, "logged_out", env.data(t)["status"])
}

func TestAuthWallpaper(t *testing.T) {
	env := newEnv(t, false, map[string]route{
		"/api/v1/login/wallpapers": {body: `["https://img/1.jpg","https://img/2.jpg"]`},
	})

	require.NoError(t, env.run(NewAuthCmd(), "wallpaper", "--all", "--server", testServer))
	req := env.transport.last(t)
	assert.Equal(t, testServer+"/api/v1/login/wallpapers", req.URL)
	assert.Empty(t, req.Header.Get("Authorization"))
	assert.Equal(t, "2 wallpapers", env.envelope(t).Summary)

	env = newEnv(t, false, nil)
	err := env.run(NewAuthCmd(), "wallpaper")
	assert.True(t, output.IsCode(err, output.CodeUsage), "no server anywhere")
}

func TestConfigSet(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	env := newEnv(t, false, nil)

	err := env.run(NewConfigCmd(), "set", "colour", "blue")
	assert.True(t, output.IsCode(err, output.CodeUsage))

	require.NoError(t, env.run(NewConfigCmd(), "set", "api_token", "abcdef123456"))
	data := env.data(t)
	assert.Equal(t, "****3456", data["value"])
	assert.Equal(t, filepath.Join(dir, "moviepilot", "config.yaml"), data["path"])

	raw, err := os.ReadFile(filepath.Join(dir, "moviepilot", "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "abcdef123456")
}

func TestConfigShowMasksToken(t *testing.T) {
	env := newEnv(t, false, nil)
	env.app.Config.APIToken = "supersecret"
	env.app.Config.Sources["api_token"] = "env"

	require.NoError(t, env.run(NewConfigCmd()))
	assert.NotContains(t, env.stdout.String(), "supersecret")

	var values map[string]map[string]string
	require.NoError(t, json.Unmarshal(env.envelope(t).Data, &values))
	assert.Equal(t, map[string]string{"value": "****cret", "source": "env"}, values["api_token"])
	assert.Equal(t, map[string]string{"value": "auto", "source": "default"}, values["format"])
}

func TestCommandsCatalog(t *testing.T) {
	env := newEnv(t, false, nil)
	root := &cobra.Command{Use: "mp"}
	root.AddCommand(All()...)

	require.NoError(t, env.run(root, "commands"))
	var cats []CommandCategory
	require.NoError(t, json.Unmarshal(env.envelope(t).Data, &cats))

	names := map[string]bool{}
	for _, c := range cats {
		for _, cmd := range c.Commands {
			names[cmd.Name] = true
		}
	}
	for _, c := range All() {
		assert.True(t, names[c.Name()], "%s missing from the catalog", c.Name())
	}
}

func TestCompletionRefresh(t *testing.T) {
	env := newEnv(t, true, map[string]route{
		"/api/v1/site/":      {body: `[{"id":1,"name":"One"}]`},
		"/api/v1/subscribe/": {body: `[]`},
		"/api/v1/plugin/":    {status: http.StatusInternalServerError, body: `{}`},
	})

	require.NoError(t, env.run(NewCompletionCmd(), "refresh"))
	data := env.data(t)
	assert.EqualValues(t, 1, data["sites"])
	assert.EqualValues(t, 0, data["subscriptions"])
	assert.Contains(t, data, "plugins_error")

	env = newEnv(t, false, nil)
	err := env.run(NewCompletionCmd(), "refresh")
	assert.True(t, output.IsCode(err, output.CodeUnauthenticated))
}

func TestCompletionScript(t *testing.T) {
	env := newEnv(t, false, nil)
	root := &cobra.Command{Use: "mp"}
	root.AddCommand(NewCompletionCmd())

	require.NoError(t, env.run(root, "completion", "bash"))
	assert.Contains(t, env.stdout.String(), "bash completion")

	err := env.run(root, "completion", "tcsh")
	assert.Error(t, err)
}
