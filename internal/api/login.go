package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/moviepilot/mp-cli/internal/auth"
	"github.com/moviepilot/mp-cli/internal/config"
	"github.com/moviepilot/mp-cli/internal/output"
)

const (
	loginPath      = "/api/v1/login/access-token"
	wallpapersPath = "/api/v1/login/wallpapers"
	wallpaperPath  = "/api/v1/login/wallpaper"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type loginInput struct {
	ServerURL string `validate:"required,url"`
	Username  string `validate:"required"`
	Password  string `validate:"required"`
}

// profileFields are copied from the password grant response into the
// session. A field whose type does not match is dropped on its own.
func profileFields(sess *auth.Session) map[string]any {
	return map[string]any{
		"super_user":  &sess.SuperUser,
		"user_id":     &sess.UserID,
		"user_name":   &sess.UserName,
		"avatar":      &sess.Avatar,
		"level":       &sess.Level,
		"permissions": &sess.Permissions,
	}
}

// decodeToken builds a session from a password grant response body.
func (g *Gateway) decodeToken(body []byte) (*auth.Session, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, output.ErrLoginFailed("login failed: response is not a JSON object")
	}

	sess := &auth.Session{}
	if raw, ok := fields["access_token"]; ok {
		_ = json.Unmarshal(raw, &sess.AccessToken)
	}
	if sess.AccessToken == "" {
		return nil, output.ErrLoginFailed("login failed: response carried no access token")
	}
	if raw, ok := fields["token_type"]; ok {
		_ = json.Unmarshal(raw, &sess.TokenType)
	}
	if sess.TokenType == "" {
		sess.TokenType = auth.DefaultTokenType
	}

	for name, dst := range profileFields(sess) {
		raw, ok := fields[name]
		if !ok || string(raw) == "null" {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			g.log.Debug().Err(err).Str("field", name).Msg("ignoring login profile field")
		}
	}
	return sess, nil
}

// Login exchanges a username and password for a session and saves it. On
// any failure nothing is written to the credential store.
func (g *Gateway) Login(ctx context.Context, serverURL, username, password string) (*auth.Session, error) {
	serverURL = config.NormalizeServerURL(strings.TrimSpace(serverURL))
	in := loginInput{ServerURL: serverURL, Username: username, Password: password}
	if err := validate.Struct(in); err != nil {
		return nil, loginUsageError(err)
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", username)
	form.Set("password", password)
	form.Set("scope", "")
	form.Set("client_id", "")
	form.Set("client_secret", "")

	header := http.Header{}
	header.Set("Content-Type", "application/x-www-form-urlencoded")

	tresp, err := g.roundTrip(ctx, &TransportRequest{
		Method: http.MethodPost,
		URL:    serverURL + loginPath,
		Header: header,
		Body:   []byte(form.Encode()),
	})
	if err != nil {
		e := output.ErrLoginFailed(fmt.Sprintf("login failed: %v", err))
		e.Cause = err
		return nil, e
	}
	if tresp.StatusCode != http.StatusOK {
		return nil, output.ErrLoginFailedStatus(tresp.StatusCode)
	}

	sess, err := g.decodeToken(tresp.Body)
	if err != nil {
		return nil, err
	}
	sess.ServerURL = serverURL
	if err := g.auth.Save(sess); err != nil {
		e := output.ErrLoginFailed(fmt.Sprintf("login failed: %v", err))
		e.Hint = "The session could not be stored; try credential_store: file"
		e.Cause = err
		return nil, e
	}

	g.log.Debug().Str("user", sess.UserName).Msg("logged in")
	return sess, nil
}

// Logout forgets the stored session and the in-memory token.
func (g *Gateway) Logout() {
	g.auth.Logout()
}

// Wallpapers fetches the login-page poster URLs. No session is needed.
func (g *Gateway) Wallpapers(ctx context.Context, serverURL string) ([]json.RawMessage, error) {
	data, err := g.anonymousGet(ctx, serverURL, wallpapersPath)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil || items == nil {
		return nil, &output.Error{
			Code:       output.CodeRequestFailed,
			Message:    "request failed: wallpapers response is not a list",
			HTTPStatus: http.StatusOK,
		}
	}
	return items, nil
}

// Wallpaper fetches the current login-page poster. No session is needed.
func (g *Gateway) Wallpaper(ctx context.Context, serverURL string) (json.RawMessage, error) {
	return g.anonymousGet(ctx, serverURL, wallpaperPath)
}

func (g *Gateway) anonymousGet(ctx context.Context, serverURL, path string) (json.RawMessage, error) {
	serverURL = config.NormalizeServerURL(strings.TrimSpace(serverURL))
	if serverURL == "" {
		return nil, output.ErrUsage("server URL is required")
	}

	tresp, err := g.roundTrip(ctx, &TransportRequest{
		Method: http.MethodGet,
		URL:    serverURL + path,
		Header: auth.BuildHeaders("", ""),
	})
	if err != nil {
		return nil, output.ErrTransport(err)
	}
	if tresp.StatusCode != http.StatusOK {
		return nil, output.ErrRequestFailed(tresp.StatusCode)
	}
	return tresp.Body, nil
}

func loginUsageError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return output.ErrUsage(err.Error())
	}
	names := map[string]string{"ServerURL": "server URL", "Username": "username", "Password": "password"}
	fe := verrs[0]
	name := names[fe.Field()]
	if fe.Tag() == "url" {
		return output.ErrUsageHint(fmt.Sprintf("invalid %s %q", name, fe.Value()), "Use a full URL such as http://nas.local:3000")
	}
	return output.ErrUsage(name + " is required")
}
