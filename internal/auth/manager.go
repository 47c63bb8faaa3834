package auth

import (
	"errors"
	"net/http"
	"sync"
)

// Manager owns the credential store and the in-memory token used to build
// authorization headers. Safe for concurrent use.
type Manager struct {
	store *Store

	mu        sync.RWMutex
	token     string
	tokenType string
}

// NewManager wraps store. A nil store falls back to an in-memory one.
func NewManager(store *Store) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Manager{store: store}
}

// Store returns the underlying credential store.
func (m *Manager) Store() *Store {
	return m.store
}

// Session reads the stored session. Every call goes to the backend so that a
// login or logout from another process is picked up.
func (m *Manager) Session() *Session {
	return m.store.Load()
}

// SetToken replaces the in-memory token. An empty token removes it.
func (m *Manager) SetToken(token, tokenType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.tokenType = tokenType
}

// Token returns the in-memory token and its type.
func (m *Manager) Token() (string, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.tokenType
}

// Headers builds request headers from the in-memory token.
func (m *Manager) Headers() http.Header {
	token, tokenType := m.Token()
	return BuildHeaders(token, tokenType)
}

// Save persists sess and makes its token current.
func (m *Manager) Save(sess *Session) error {
	if sess == nil {
		return errors.New("nil session")
	}
	if err := m.store.Save(sess); err != nil {
		return err
	}
	m.SetToken(sess.AccessToken, NormalizeTokenType(sess.TokenType))
	return nil
}

// Logout clears the stored session and the in-memory token.
func (m *Manager) Logout() {
	m.store.Clear()
	m.SetToken("", "")
}
