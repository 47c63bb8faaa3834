package moviepilot

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/moviepilot/mp-cli/internal/api"
)

// UserService manages MoviePilot user accounts.
type UserService struct{ service }

func (s *UserService) Current(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "Current", "/user/current", nil)
}

func (s *UserService) List(ctx context.Context) (*api.Response, error) {
	return s.get(ctx, "List", "/user/", nil)
}

func (s *UserService) Get(ctx context.Context, name string) (*api.Response, error) {
	return s.get(ctx, "Get", "/user/"+seg(name), nil)
}

func (s *UserService) Create(ctx context.Context, body json.RawMessage) (*api.Response, error) {
	return s.call(ctx, "Create", api.Request{Method: "POST", Path: "/user/", Body: body})
}

func (s *UserService) Update(ctx context.Context, body json.RawMessage) (*api.Response, error) {
	return s.call(ctx, "Update", api.Request{Method: "PUT", Path: "/user/", Body: body})
}

func (s *UserService) DeleteByID(ctx context.Context, id int) (*api.Response, error) {
	return s.call(ctx, "DeleteByID", api.Request{Method: "DELETE", Path: "/user/id/" + segInt(id)})
}

func (s *UserService) DeleteByName(ctx context.Context, name string) (*api.Response, error) {
	return s.call(ctx, "DeleteByName", api.Request{Method: "DELETE", Path: "/user/name/" + seg(name)})
}

// Config reads a per-user setting.
func (s *UserService) Config(ctx context.Context, key string) (*api.Response, error) {
	return s.get(ctx, "Config", "/user/config/"+seg(key), nil)
}

func (s *UserService) SetConfig(ctx context.Context, key string, value json.RawMessage) (*api.Response, error) {
	return s.call(ctx, "SetConfig", api.Request{Method: "POST", Path: "/user/config/" + seg(key), Body: value})
}

// OTPStatus reports whether two-factor login is enabled for the user.
func (s *UserService) OTPStatus(ctx context.Context, userID int) (*api.Response, error) {
	return s.get(ctx, "OTPStatus", "/user/otp/"+segInt(userID), nil)
}
