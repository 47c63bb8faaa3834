// Package api sends authenticated requests to a MoviePilot server.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/moviepilot/mp-cli/internal/auth"
	"github.com/moviepilot/mp-cli/internal/config"
	"github.com/moviepilot/mp-cli/internal/observability"
	"github.com/moviepilot/mp-cli/internal/output"
)

// Request describes one call relative to the server base URL.
type Request struct {
	// Method defaults to GET.
	Method string
	// Path is appended to the server URL verbatim, e.g. "/api/v1/user/current".
	Path  string
	Query url.Values
	// Body is sent as-is for []byte and json.RawMessage, form-encoded for
	// url.Values and JSON-encoded otherwise.
	Body any
	// Header values replace the defaults key by key.
	Header http.Header
}

// Response wraps a successful (200) response.
type Response struct {
	Data       json.RawMessage
	StatusCode int
	Headers    http.Header
}

// UnmarshalData unmarshals the response data into the given value.
func (r *Response) UnmarshalData(v any) error {
	return json.Unmarshal(r.Data, v)
}

// Gateway sends requests on behalf of the logged-in user. It holds no
// session state of its own: every call reads the credential store.
type Gateway struct {
	auth      *auth.Manager
	transport Transport
	hooks     observability.Hooks
	log       zerolog.Logger

	serverURL string
	apiToken  string
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithTransport replaces the default HTTP transport.
func WithTransport(t Transport) Option {
	return func(g *Gateway) { g.transport = t }
}

// WithHooks sets the observability hooks.
func WithHooks(h observability.Hooks) Option {
	return func(g *Gateway) {
		if h != nil {
			g.hooks = h
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Gateway) { g.log = l }
}

// WithServerURL sets the base URL API-token calls use when there is no
// session.
func WithServerURL(u string) Option {
	return func(g *Gateway) { g.serverURL = config.NormalizeServerURL(u) }
}

// WithAPIToken sets the token sent as ?token= by API-token calls.
func WithAPIToken(token string) Option {
	return func(g *Gateway) { g.apiToken = token }
}

// NewGateway creates a gateway over the given auth manager.
func NewGateway(m *auth.Manager, opts ...Option) *Gateway {
	g := &Gateway{
		auth:      m,
		transport: NewHTTPTransport(config.DefaultTimeout),
		hooks:     observability.NopHooks{},
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Auth returns the auth manager backing the gateway.
func (g *Gateway) Auth() *auth.Manager {
	return g.auth
}

// Do sends req with the stored session's bearer token.
func (g *Gateway) Do(ctx context.Context, req Request) (*Response, error) {
	sess := g.auth.Session()
	if sess == nil || sess.ServerURL == "" {
		return nil, output.ErrUnauthenticated("not logged in")
	}
	g.auth.SetToken(sess.AccessToken, sess.TokenType)

	return g.send(ctx, sess.ServerURL, req, g.auth.Headers(), req.Query)
}

// DoWithAPIToken sends req authenticated by the configured API token in the
// token query parameter. No Authorization header is sent.
func (g *Gateway) DoWithAPIToken(ctx context.Context, req Request) (*Response, error) {
	base := g.serverURL
	if sess := g.auth.Session(); sess != nil && sess.ServerURL != "" {
		base = sess.ServerURL
	}
	if base == "" {
		e := output.ErrUnauthenticated("no server configured")
		e.Hint = "Run: mp auth login, or set MP_SERVER_URL"
		return nil, e
	}
	if g.apiToken == "" {
		e := output.ErrUnauthenticated("no API token configured")
		e.Hint = "Run: mp config set api_token <token>, or set MP_API_TOKEN"
		return nil, e
	}

	query := url.Values{}
	for k, v := range req.Query {
		query[k] = append([]string(nil), v...)
	}
	query.Set("token", g.apiToken)

	return g.send(ctx, base, req, auth.BuildHeaders("", ""), query)
}

// Operation runs fn between the operation hooks.
func (g *Gateway) Operation(ctx context.Context, op observability.OperationInfo, fn func(context.Context) error) error {
	ctx = g.hooks.OnOperationStart(ctx, op)
	start := time.Now()
	err := fn(ctx)
	g.hooks.OnOperationEnd(ctx, op, err, time.Since(start))
	return err
}

// Call runs req as the named operation, in API-token mode when
// op.TokenMode is set.
func (g *Gateway) Call(ctx context.Context, op observability.OperationInfo, req Request) (*Response, error) {
	var resp *Response
	err := g.Operation(ctx, op, func(ctx context.Context) error {
		var err error
		if op.TokenMode {
			resp, err = g.DoWithAPIToken(ctx, req)
		} else {
			resp, err = g.Do(ctx, req)
		}
		return err
	})
	return resp, err
}

// send builds the URL and headers, performs the request and maps the status.
func (g *Gateway) send(ctx context.Context, base string, req Request, header http.Header, query url.Values) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, output.ErrUsage(fmt.Sprintf("invalid request body: %v", err))
	}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	for k, v := range req.Header {
		header.Del(k)
		for _, val := range v {
			header.Add(k, val)
		}
	}

	tresp, err := g.roundTrip(ctx, &TransportRequest{
		Method: method,
		URL:    buildURL(base, req.Path, query),
		Header: header,
		Body:   body,
	})
	if err != nil {
		return nil, output.ErrTransport(err)
	}
	if tresp.StatusCode != http.StatusOK {
		e := output.ErrRequestFailed(tresp.StatusCode)
		e.Hint = errorDetail(tresp.Body)
		return nil, e
	}

	return &Response{
		Data:       tresp.Body,
		StatusCode: tresp.StatusCode,
		Headers:    tresp.Header,
	}, nil
}

// roundTrip sends one request through the transport with hooks and logging.
// Errors have sensitive query values redacted.
func (g *Gateway) roundTrip(ctx context.Context, treq *TransportRequest) (*TransportResponse, error) {
	info := observability.RequestInfo{
		ID:     uuid.NewString(),
		Method: treq.Method,
		URL:    observability.ScrubURL(treq.URL),
	}
	ctx = g.hooks.OnRequestStart(ctx, info)
	g.log.Debug().
		Str("request_id", info.ID).
		Str("method", info.Method).
		Str("url", info.URL).
		Msg("request")

	start := time.Now()
	tresp, err := g.transport.Send(ctx, treq)
	duration := time.Since(start)

	if err != nil {
		err = scrubError(err)
		g.hooks.OnRequestEnd(ctx, info, observability.RequestResult{Duration: duration, Error: err})
		g.log.Debug().
			Str("request_id", info.ID).
			Err(err).
			Dur("duration", duration).
			Msg("request failed")
		return nil, err
	}

	g.hooks.OnRequestEnd(ctx, info, observability.RequestResult{StatusCode: tresp.StatusCode, Duration: duration})
	g.log.Debug().
		Str("request_id", info.ID).
		Int("status", tresp.StatusCode).
		Dur("duration", duration).
		Msg("response")
	return tresp, nil
}

func buildURL(base, path string, query url.Values) string {
	u := base + path
	if len(query) == 0 {
		return u
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return u + sep + query.Encode()
}

func encodeBody(body any) ([]byte, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return b, "", nil
	case json.RawMessage:
		return b, "", nil
	case url.Values:
		return []byte(b.Encode()), "application/x-www-form-urlencoded", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", err
		}
		return data, "", nil
	}
}

// scrubError redacts credentials from the URL carried by net/http errors.
func scrubError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = observability.ScrubURL(ue.URL)
	}
	return err
}

// errorDetail extracts the server's explanation from an error body.
func errorDetail(body []byte) string {
	var payload struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if s, ok := payload.Detail.(string); ok && s != "" {
		return s
	}
	return payload.Message
}
