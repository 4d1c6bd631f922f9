package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"chapak/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// session is the persisted login session, the file analogue of the web
// console's token + user localStorage entries.
type session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user,omitempty"`
}

// TokenStore keeps the bearer token and operator identity across restarts.
// It satisfies api.TokenProvider.
type TokenStore struct {
	mu   sync.RWMutex
	path string
	s    session
}

// NewTokenStore loads any saved session from path. A missing or unreadable
// file starts an anonymous session; that is not an error.
func NewTokenStore(path string) *TokenStore {
	store := &TokenStore{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return store
	}
	_ = json.Unmarshal(data, &store.s)
	return store
}

// Token returns the current bearer token, or "" when logged out.
func (t *TokenStore) Token() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.s.Token
}

// User returns the logged-in operator, or nil.
func (t *TokenStore) User() *models.User {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.s.User
}

// Save stores the session and persists it to disk.
func (t *TokenStore) Save(token string, user *models.User) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s = session{Token: token, User: user}
	return t.persist()
}

// Clear forgets the session (logout) and removes the file.
func (t *TokenStore) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s = session{}
	if t.path == "" {
		return nil
	}
	if err := os.Remove(t.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (t *TokenStore) persist() error {
	if t.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	data, err := json.Marshal(t.s)
	if err != nil {
		return err
	}
	return os.WriteFile(t.path, data, 0o600)
}

// ExpiresAt reads the exp claim of the stored token without verifying the
// signature; verification is the server's job. Returns zero time when there
// is no token or no exp claim.
func (t *TokenStore) ExpiresAt() time.Time {
	token := t.Token()
	if token == "" {
		return time.Time{}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// Expired reports whether the stored token carries an exp claim in the past.
func (t *TokenStore) Expired() bool {
	exp := t.ExpiresAt()
	return !exp.IsZero() && exp.Before(time.Now())
}
