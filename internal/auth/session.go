// Package auth holds the persisted login session, the credential store
// backends and the in-memory token state used to build request headers.
package auth

import (
	"github.com/goccy/go-json"
)

// Session is the record saved after a successful login. Everything except
// ServerURL, AccessToken and TokenType is carried through untouched.
type Session struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	SuperUser   bool            `json:"super_user"`
	UserID      int64           `json:"user_id"`
	UserName    string          `json:"user_name"`
	Avatar      string          `json:"avatar"`
	Level       int             `json:"level"`
	Permissions json.RawMessage `json:"permissions,omitempty"`
	ServerURL   string          `json:"server_url"`
}

// Clone returns a copy that shares nothing mutable with s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Permissions != nil {
		c.Permissions = append(json.RawMessage(nil), s.Permissions...)
	}
	return &c
}
