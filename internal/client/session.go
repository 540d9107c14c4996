package client

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Claims is the decoded token payload. Timestamps are Unix seconds, the way
// they appear on the wire.
type Claims struct {
	UserID    int64  `json:"userId"`
	Email     string `json:"email"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// Decode extracts the claims from a token without verifying its signature.
// Verification is the server's job; the client only needs to inspect expiry.
// Returns nil on any malformed input, never an error or a panic.
func Decode(token string) *Claims {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return nil
	}

	claims := new(Claims)
	if err := json.Unmarshal(payload, claims); err != nil {
		return nil
	}

	return claims
}

// IsExpired reports whether the claims are unusable: absent, missing an
// expiry, or expired.
func IsExpired(claims *Claims) bool {
	if claims == nil || claims.ExpiresAt == 0 {
		return true
	}
	return claims.ExpiresAt <= time.Now().Unix()
}

// TokenStore persists the access token between runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileTokenStore keeps the token in a file under the user's config directory.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore returns a store rooted at path. When path is empty the
// default location under os.UserConfigDir is used.
func NewFileTokenStore(path string) (*FileTokenStore, error) {
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(configDir, "schoolctl", "token")
	}
	return &FileTokenStore{path: path}, nil
}

func (s *FileTokenStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileTokenStore) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(token), 0o600)
}

func (s *FileTokenStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Session tracks the current token. It is a pure function over the stored
// token bytes: nothing is cached, so a check never sees stale state.
type Session struct {
	mu    sync.Mutex
	store TokenStore
}

func NewSession(store TokenStore) *Session {
	return &Session{store: store}
}

// Store persists the token. Subsequent requests built through the client's
// transport pick it up automatically.
func (s *Session) Store(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Save(token)
}

// Token returns the stored token, or "" when none exists. Storage failures
// are swallowed: an unreadable token means unauthenticated, not an error.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, err := s.store.Load()
	if err != nil {
		return ""
	}
	return token
}

// Authenticated returns the claims when a valid, unexpired token is stored.
// An expired token is cleaned up before returning nil.
func (s *Session) Authenticated() *Claims {
	token := s.Token()
	if token == "" {
		return nil
	}

	claims := Decode(token)
	if claims == nil {
		return nil
	}

	if IsExpired(claims) {
		_ = s.Logout()
		return nil
	}

	return claims
}

// Logout clears the stored token.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Clear()
}
