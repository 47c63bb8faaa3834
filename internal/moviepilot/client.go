// Package moviepilot wraps the MoviePilot REST endpoints. Every method goes
// through the request gateway and returns the raw JSON payload.
package moviepilot

import (
	"context"
	"net/url"
	"strconv"

	"github.com/moviepilot/mp-cli/internal/api"
	"github.com/moviepilot/mp-cli/internal/observability"
)

const (
	apiPrefix     = "/api/v1"
	servarrPrefix = "/api/v3"
)

// Client groups the endpoint services.
type Client struct {
	gw *api.Gateway
}

// NewClient returns a client over gw.
func NewClient(gw *api.Gateway) *Client {
	return &Client{gw: gw}
}

// Gateway returns the underlying request gateway.
func (c *Client) Gateway() *api.Gateway { return c.gw }

func (c *Client) Dashboard() *DashboardService { return &DashboardService{c.svc("Dashboard")} }
func (c *Client) System() *SystemService { return &SystemService{c.svc("System")} }
func (c *Client) Download() *DownloadService { return &DownloadService{c.svc("Download")} }
func (c *Client) History() *HistoryService { return &HistoryService{c.svc("History")} }
func (c *Client) Subscribe() *SubscribeService { return &SubscribeService{c.svc("Subscribe")} }
func (c *Client) Site() *SiteService { return &SiteService{c.svc("Site")} }
func (c *Client) Media() *MediaService { return &MediaService{c.svc("Media")} }
func (c *Client) Search() *SearchService { return &SearchService{c.svc("Search")} }
func (c *Client) User() *UserService { return &UserService{c.svc("User")} }
func (c *Client) Plugin() *PluginService { return &PluginService{c.svc("Plugin")} }
func (c *Client) Message() *MessageService { return &MessageService{c.svc("Message")} }
func (c *Client) Transfer() *TransferService { return &TransferService{c.svc("Transfer")} }

// Servarr returns the Radarr/Sonarr-compatible endpoints, which live under
// /api/v3 instead of /api/v1.
func (c *Client) Servarr() *ServarrService {
	return &ServarrService{service{gw: c.gw, name: "Servarr", prefix: servarrPrefix}}
}

func (c *Client) svc(name string) service {
	return service{gw: c.gw, name: name, prefix: apiPrefix}
}

// service carries what every endpoint method needs.
type service struct {
	gw     *api.Gateway
	name   string
	prefix string
}

// call runs req with the session token.
func (s service) call(ctx context.Context, op string, req api.Request) (*api.Response, error) {
	req.Path = s.prefix + req.Path
	return s.gw.Call(ctx, observability.OperationInfo{Service: s.name, Operation: op}, req)
}

// callToken runs req with the configured API token.
func (s service) callToken(ctx context.Context, op string, req api.Request) (*api.Response, error) {
	req.Path = s.prefix + req.Path
	return s.gw.Call(ctx, observability.OperationInfo{Service: s.name, Operation: op, TokenMode: true}, req)
}

func (s service) get(ctx context.Context, op, path string, q params) (*api.Response, error) {
	return s.call(ctx, op, api.Request{Method: "GET", Path: path, Query: q.values()})
}

func (s service) getToken(ctx context.Context, op, path string, q params) (*api.Response, error) {
	return s.callToken(ctx, op, api.Request{Method: "GET", Path: path, Query: q.values()})
}

// params builds a query string, skipping zero values.
type params url.Values

func query() params { return params{} }

func (p params) str(key, v string) params {
	if v != "" {
		url.Values(p).Set(key, v)
	}
	return p
}

func (p params) num(key string, v int) params {
	if v != 0 {
		url.Values(p).Set(key, strconv.Itoa(v))
	}
	return p
}

// always sets key, even to a zero value.
func (p params) always(key, v string) params {
	url.Values(p).Set(key, v)
	return p
}

func (p params) flag(key string, v bool) params {
	return p.always(key, strconv.FormatBool(v))
}

func (p params) values() url.Values {
	if len(p) == 0 {
		return nil
	}
	return url.Values(p)
}

// seg escapes a value used as a path segment.
func seg(v string) string {
	return url.PathEscape(v)
}

func segInt(v int) string {
	return strconv.Itoa(v)
}
