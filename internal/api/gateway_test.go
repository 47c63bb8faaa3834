package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviepilot/mp-cli/internal/auth"
	"github.com/moviepilot/mp-cli/internal/observability"
	"github.com/moviepilot/mp-cli/internal/output"
)

// spyTransport records requests and replies with a canned response.
type spyTransport struct {
	mu       sync.Mutex
	requests []*TransportRequest
	status   int
	body     string
	err      error
}

func (s *spyTransport) Send(_ context.Context, req *TransportRequest) (*TransportResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	status := s.status
	if status == 0 {
		status = http.StatusOK
	}
	return &TransportResponse{StatusCode: status, Header: http.Header{}, Body: []byte(s.body)}, nil
}

func (s *spyTransport) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *spyTransport) last() *TransportRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

// recordingHooks counts hook invocations.
type recordingHooks struct {
	observability.NopHooks
	mu       sync.Mutex
	ops      []string
	opErrs   []error
	requests []observability.RequestInfo
	results  []observability.RequestResult
}

func (h *recordingHooks) OnOperationEnd(_ context.Context, op observability.OperationInfo, err error, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ops = append(h.ops, op.Service+"."+op.Operation)
	h.opErrs = append(h.opErrs, err)
}

func (h *recordingHooks) OnRequestStart(ctx context.Context, info observability.RequestInfo) context.Context {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests = append(h.requests, info)
	return ctx
}

func (h *recordingHooks) OnRequestEnd(_ context.Context, _ observability.RequestInfo, r observability.RequestResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.results = append(h.results, r)
}

type badBody struct{}

func (badBody) MarshalJSON() ([]byte, error) { return nil, errors.New("cannot encode") }

func loggedIn(t *testing.T, tokenType string) *auth.Manager {
	t.Helper()
	m := auth.NewManager(auth.NewMemoryStore())
	require.NoError(t, m.Store().Save(&auth.Session{
		AccessToken: "abc",
		TokenType:   tokenType,
		UserName:    "admin",
		ServerURL:   "http://host:3000/",
	}))
	return m
}

func TestDoWithoutSessionMakesNoRequest(t *testing.T) {
	spy := &spyTransport{}
	g := NewGateway(auth.NewManager(auth.NewMemoryStore()), WithTransport(spy))

	_, err := g.Do(context.Background(), Request{Path: "/api/v1/user/current"})
	require.Error(t, err)
	assert.True(t, output.IsCode(err, output.CodeUnauthenticated))
	assert.Equal(t, 0, spy.calls())
}

func TestDoWithEmptyServerURLMakesNoRequest(t *testing.T) {
	spy := &spyTransport{}
	m := auth.NewManager(auth.NewMemoryStore())
	require.NoError(t, m.Store().Save(&auth.Session{AccessToken: "abc"}))
	g := NewGateway(m, WithTransport(spy))

	_, err := g.Do(context.Background(), Request{Path: "/api/v1/x"})
	assert.True(t, output.IsCode(err, output.CodeUnauthenticated))
	assert.Equal(t, 0, spy.calls())
}

func TestDoBuildsURLAndHeaders(t *testing.T) {
	spy := &spyTransport{body: `{"a":1}`}
	g := NewGateway(loggedIn(t, "bearer"), WithTransport(spy))

	resp, err := g.Do(context.Background(), Request{Path: "/api/v1/x"})
	require.NoError(t, err)

	req := spy.last()
	assert.Equal(t, "http://host:3000/api/v1/x", req.URL)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "Bearer abc", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Nil(t, req.Body)

	assert.Equal(t, `{"a":1}`, string(resp.Data))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDoTokenTypeDefaultsToBearer(t *testing.T) {
	spy := &spyTransport{body: `{}`}
	g := NewGateway(loggedIn(t, ""), WithTransport(spy))

	_, err := g.Do(context.Background(), Request{Path: "/api/v1/x"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", spy.last().Header.Get("Authorization"))
}

func TestDoSessionWithoutTokenSendsNoAuthorization(t *testing.T) {
	spy := &spyTransport{body: `{}`}
	m := auth.NewManager(auth.NewMemoryStore())
	require.NoError(t, m.Store().Save(&auth.Session{ServerURL: "http://host:3000"}))
	g := NewGateway(m, WithTransport(spy))

	_, err := g.Do(context.Background(), Request{Path: "/api/v1/x"})
	require.NoError(t, err)
	assert.Empty(t, spy.last().Header.Values("Authorization"))
}

func TestDoDropsTokenRemovedFromStore(t *testing.T) {
	spy := &spyTransport{body: `{}`}
	m := loggedIn(t, "bearer")
	g := NewGateway(m, WithTransport(spy))

	_, err := g.Do(context.Background(), Request{Path: "/api/v1/x"})
	require.NoError(t, err)
	require.Equal(t, "Bearer abc", spy.last().Header.Get("Authorization"))

	require.NoError(t, m.Store().Save(&auth.Session{ServerURL: "http://host:3000"}))

	_, err = g.Do(context.Background(), Request{Path: "/api/v1/x"})
	require.NoError(t, err)
	assert.Empty(t, spy.last().Header.Values("Authorization"))
	token, _ := m.Token()
	assert.Empty(t, token)
}

func TestDoMethodDefaultsToGet(t *testing.T) {
	spy := &spyTransport{body: `[]`}
	g := NewGateway(loggedIn(t, "Bearer"), WithTransport(spy))

	_, err := g.Do(context.Background(), Request{Path: "/api/v1/x"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, spy.last().Method)
}

func TestDoQueryAndCallerHeaders(t *testing.T) {
	spy := &spyTransport{body: `{}`}
	g := NewGateway(loggedIn(t, "Bearer"), WithTransport(spy))

	_, err := g.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/api/v1/message/web",
		Query:  url.Values{"text": {"hi there"}},
		Header: http.Header{"Content-Type": {"text/plain"}, "X-Extra": {"1"}},
		Body:   []byte("raw"),
	})
	require.NoError(t, err)

	req := spy.last()
	assert.Equal(t, "http://host:3000/api/v1/message/web?text=hi+there", req.URL)
	assert.Equal(t, []string{"text/plain"}, req.Header.Values("Content-Type"))
	assert.Equal(t, "1", req.Header.Get("X-Extra"))
	assert.Equal(t, "Bearer abc", req.Header.Get("Authorization"))
	assert.Equal(t, "raw", string(req.Body))
}

func TestDoQueryAppendsToExistingQuery(t *testing.T) {
	spy := &spyTransport{body: `{}`}
	g := NewGateway(loggedIn(t, "Bearer"), WithTransport(spy))

	_, err := g.Do(context.Background(), Request{Path: "/api/v1/x?a=1", Query: url.Values{"b": {"2"}}})
	require.NoError(t, err)
	assert.Equal(t, "http://host:3000/api/v1/x?a=1&b=2", spy.last().URL)
}

func TestDoBodyEncoding(t *testing.T) {
	tests := []struct {
		name        string
		body        any
		want        string
		contentType string
	}{
		{"struct", map[string]any{"name": "x"}, `{"name":"x"}`, "application/json"},
		{"raw message", json.RawMessage(`{"id":1}`), `{"id":1}`, "application/json"},
		{"form", url.Values{"a": {"1"}}, "a=1", "application/x-www-form-urlencoded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &spyTransport{body: `{}`}
			g := NewGateway(loggedIn(t, "Bearer"), WithTransport(spy))

			_, err := g.Do(context.Background(), Request{Method: http.MethodPost, Path: "/api/v1/x", Body: tt.body})
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(spy.last().Body))
			assert.Equal(t, tt.contentType, spy.last().Header.Get("Content-Type"))
		})
	}
}

func TestDoUnencodableBody(t *testing.T) {
	spy := &spyTransport{}
	g := NewGateway(loggedIn(t, "Bearer"), WithTransport(spy))

	_, err := g.Do(context.Background(), Request{Method: http.MethodPost, Path: "/api/v1/x", Body: badBody{}})
	assert.True(t, output.IsCode(err, output.CodeUsage))
	assert.Equal(t, 0, spy.calls())
}

func TestDoPayloadUnchanged(t *testing.T) {
	body := "{\"b\": [1, 2],\n \"a\":1}"
	spy := &spyTransport{body: body}
	g := NewGateway(loggedIn(t, "Bearer"), WithTransport(spy))

	resp, err := g.Do(context.Background(), Request{Path: "/api/v1/x"})
	require.NoError(t, err)
	assert.Equal(t, body, string(resp.Data))

	var v struct {
		A int `json:"a"`
	}
	require.NoError(t, resp.UnmarshalData(&v))
	assert.Equal(t, 1, v.A)
}

func TestDoNon200IsRequestFailedWithoutRetry(t *testing.T) {
	for _, status := range []int{201, 204, 401, 404, 500, 503} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			spy := &spyTransport{status: status, body: `{"detail":"nope"}`}
			g := NewGateway(loggedIn(t, "Bearer"), WithTransport(spy))

			_, err := g.Do(context.Background(), Request{Path: "/api/v1/x"})
			require.Error(t, err)

			e := output.AsError(err)
			assert.Equal(t, output.CodeRequestFailed, e.Code)
			assert.Contains(t, e.Message, strconv.Itoa(status))
			assert.Equal(t, status, e.HTTPStatus)
			assert.Equal(t, "nope", e.Hint)
			assert.Equal(t, 1, spy.calls())
		})
	}
}

func TestDoTransportErrorIsRequestFailed(t *testing.T) {
	spy := &spyTransport{err: errors.New("connection refused")}
	g := NewGateway(loggedIn(t, "Bearer"), WithTransport(spy))

	_, err := g.Do(context.Background(), Request{Path: "/api/v1/x"})
	e := output.AsError(err)
	assert.Equal(t, output.CodeRequestFailed, e.Code)
	assert.Contains(t, e.Message, "connection refused")
	assert.Equal(t, 1, spy.calls())
}

func TestDoAfterLogoutIsUnauthenticated(t *testing.T) {
	spy := &spyTransport{body: `{}`}
	g := NewGateway(loggedIn(t, "Bearer"), WithTransport(spy))

	_, err := g.Do(context.Background(), Request{Path: "/api/v1/x"})
	require.NoError(t, err)

	g.Logout()
	_, err = g.Do(context.Background(), Request{Path: "/api/v1/x"})
	assert.True(t, output.IsCode(err, output.CodeUnauthenticated))
	assert.Equal(t, 1, spy.calls())
}

func TestDoPicksUpSessionChanges(t *testing.T) {
	spy := &spyTransport{body: `{}`}
	m := loggedIn(t, "Bearer")
	g := NewGateway(m, WithTransport(spy))

	require.NoError(t, m.Store().Save(&auth.Session{AccessToken: "new", ServerURL: "http://other:3001"}))
	_, err := g.Do(context.Background(), Request{Path: "/api/v1/x"})
	require.NoError(t, err)
	assert.Equal(t, "http://other:3001/api/v1/x", spy.last().URL)
	assert.Equal(t, "Bearer new", spy.last().Header.Get("Authorization"))
}

func TestDoWithAPIToken(t *testing.T) {
	spy := &spyTransport{body: `{"ok":true}`}
	g := NewGateway(loggedIn(t, "Bearer"), WithTransport(spy), WithAPIToken("secret"))

	resp, err := g.DoWithAPIToken(context.Background(), Request{Path: "/api/v1/dashboard/cpu2", Query: url.Values{"x": {"1"}}})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(resp.Data))

	req := spy.last()
	assert.Equal(t, "http://host:3000/api/v1/dashboard/cpu2?token=secret&x=1", req.URL)
	assert.Empty(t, req.Header.Values("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
}

func TestDoWithAPITokenFallsBackToConfiguredServer(t *testing.T) {
	spy := &spyTransport{body: `{}`}
	g := NewGateway(auth.NewManager(nil), WithTransport(spy),
		WithAPIToken("secret"), WithServerURL("https://mp.example/"))

	_, err := g.DoWithAPIToken(context.Background(), Request{Path: "/api/v1/transfer/now"})
	require.NoError(t, err)
	assert.Equal(t, "https://mp.example/api/v1/transfer/now?token=secret", spy.last().URL)
}

func TestDoWithAPITokenMissingConfig(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		spy := &spyTransport{}
		g := NewGateway(loggedIn(t, "Bearer"), WithTransport(spy))
		_, err := g.DoWithAPIToken(context.Background(), Request{Path: "/api/v1/x"})
		assert.True(t, output.IsCode(err, output.CodeUnauthenticated))
		assert.Contains(t, output.AsError(err).Hint, "api_token")
		assert.Equal(t, 0, spy.calls())
	})

	t.Run("no server", func(t *testing.T) {
		spy := &spyTransport{}
		g := NewGateway(auth.NewManager(nil), WithTransport(spy), WithAPIToken("secret"))
		_, err := g.DoWithAPIToken(context.Background(), Request{Path: "/api/v1/x"})
		assert.True(t, output.IsCode(err, output.CodeUnauthenticated))
		assert.Equal(t, 0, spy.calls())
	})
}

func TestDoWithAPITokenDoesNotMutateCallerQuery(t *testing.T) {
	spy := &spyTransport{body: `{}`}
	g := NewGateway(loggedIn(t, "Bearer"), WithTransport(spy), WithAPIToken("secret"))

	q := url.Values{"name": {"a"}}
	_, err := g.DoWithAPIToken(context.Background(), Request{Path: "/api/v1/x", Query: q})
	require.NoError(t, err)
	assert.Equal(t, url.Values{"name": {"a"}}, q)
}

func TestTransportErrorRedactsToken(t *testing.T) {
	spy := &spyTransport{err: &url.Error{Op: "Get", URL: "http://host:3000/api/v1/x?token=secret", Err: errors.New("timeout")}}
	g := NewGateway(loggedIn(t, "Bearer"), WithTransport(spy), WithAPIToken("secret"))

	_, err := g.DoWithAPIToken(context.Background(), Request{Path: "/api/v1/x"})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret")
	assert.Contains(t, err.Error(), "REDACTED")
}

func TestCallRunsHooks(t *testing.T) {
	spy := &spyTransport{body: `{}`}
	hooks := &recordingHooks{}
	g := NewGateway(loggedIn(t, "Bearer"), WithTransport(spy), WithHooks(hooks), WithAPIToken("secret"))

	op := observability.OperationInfo{Service: "Dashboard", Operation: "CPU"}
	_, err := g.Call(context.Background(), op, Request{Path: "/api/v1/dashboard/cpu"})
	require.NoError(t, err)

	op2 := observability.OperationInfo{Service: "Dashboard", Operation: "CPU2", TokenMode: true}
	_, err = g.Call(context.Background(), op2, Request{Path: "/api/v1/dashboard/cpu2"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Dashboard.CPU", "Dashboard.CPU2"}, hooks.ops)
	require.Len(t, hooks.requests, 2)
	assert.NotEmpty(t, hooks.requests[0].ID)
	assert.NotEqual(t, hooks.requests[0].ID, hooks.requests[1].ID)
	assert.NotContains(t, hooks.requests[1].URL, "secret")
	assert.Equal(t, http.StatusOK, hooks.results[0].StatusCode)
	assert.Equal(t, "Bearer abc", spy.requests[0].Header.Get("Authorization"))
	assert.True(t, strings.Contains(spy.requests[1].URL, "token=secret"))
}

func TestCallReportsOperationError(t *testing.T) {
	hooks := &recordingHooks{}
	g := NewGateway(auth.NewManager(nil), WithTransport(&spyTransport{}), WithHooks(hooks))

	_, err := g.Call(context.Background(), observability.OperationInfo{Service: "User", Operation: "Current"}, Request{Path: "/x"})
	require.Error(t, err)
	require.Len(t, hooks.opErrs, 1)
	assert.Equal(t, err, hooks.opErrs[0])
	assert.Empty(t, hooks.requests)
}

func TestHTTPTransport(t *testing.T) {
	var got *http.Request
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		buf := new(strings.Builder)
		_, _ = io.Copy(buf, r.Body)
		gotBody = buf.String()
		w.Header().Set("X-Test", "1")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"detail":"tea"}`))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(5 * time.Second)
	resp, err := tr.Send(context.Background(), &TransportRequest{
		Method: http.MethodPut,
		URL:    srv.URL + "/api/v1/x?y=1",
		Header: http.Header{"Authorization": {"Bearer abc"}},
		Body:   []byte(`{"a":1}`),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
	assert.Equal(t, `{"detail":"tea"}`, string(resp.Body))
	assert.Equal(t, "1", resp.Header.Get("X-Test"))

	assert.Equal(t, http.MethodPut, got.Method)
	assert.Equal(t, "/api/v1/x", got.URL.Path)
	assert.Equal(t, "1", got.URL.Query().Get("y"))
	assert.Equal(t, "Bearer abc", got.Header.Get("Authorization"))
	assert.True(t, strings.HasPrefix(got.Header.Get("User-Agent"), "mp-cli/"))
	assert.Equal(t, `{"a":1}`, gotBody)
}

func TestGatewayOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"name":"admin"}`))
	}))
	defer srv.Close()

	m := auth.NewManager(auth.NewMemoryStore())
	require.NoError(t, m.Store().Save(&auth.Session{AccessToken: "abc", ServerURL: srv.URL + "/"}))
	g := NewGateway(m)

	resp, err := g.Do(context.Background(), Request{Path: "/api/v1/user/current"})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"admin"}`, string(resp.Data))

	require.NoError(t, m.Store().Save(&auth.Session{AccessToken: "expired", ServerURL: srv.URL}))
	_, err = g.Do(context.Background(), Request{Path: "/api/v1/user/current"})
	e := output.AsError(err)
	assert.Equal(t, output.CodeRequestFailed, e.Code)
	assert.Equal(t, http.StatusUnauthorized, e.HTTPStatus)
	assert.Contains(t, e.Message, "401")
}
