// Package auth keeps the administrator session between CLI invocations.
package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pesio-ai/be-tbc-triage/internal/platform/errors"
)

// Storage keys
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Session is a logged-in administrator
type Session struct {
	Token     string          `json:"token"`
	User      json.RawMessage `json:"user,omitempty"`
	ExpiresAt *time.Time      `json:"expiresAt,omitempty"`
}

// Store persists the access token and user under fixed keys in a JSON
// file.
type Store struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// NewStore creates a store backed by path
func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// DefaultPath is the session file under the user's config directory
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to locate config directory")
	}
	return filepath.Join(dir, "tbc-triage", "session.json"), nil
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

// Save stores a token and the user returned with it
func (s *Store) Save(token string, user json.RawMessage) error {
	if token == "" {
		return errors.InvalidInput("token", "token is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	values[KeyToken] = token
	if len(user) > 0 {
		values[KeyUser] = string(user)
	} else {
		delete(values, KeyUser)
	}
	return s.write(values)
}

// Logout removes both keys
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	delete(values, KeyToken)
	delete(values, KeyUser)
	if len(values) == 0 {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, errors.ErrCodeInternal, "failed to remove session file")
		}
		return nil
	}
	return s.write(values)
}

// Token returns the stored token, or "" when there is no usable session.
// It fits httpclient.TokenSource.
func (s *Store) Token() string {
	sess, err := s.Session()
	if err != nil || sess == nil {
		return ""
	}
	return sess.Token
}

// Session returns the stored session, or nil when nobody is logged in or
// the token has expired.
func (s *Store) Session() (*Session, error) {
	s.mu.Lock()
	values, err := s.read()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	token := values[KeyToken]
	if token == "" {
		return nil, nil
	}
	sess := &Session{Token: token}
	if user := values[KeyUser]; user != "" && json.Valid([]byte(user)) {
		sess.User = json.RawMessage(user)
	}

	exp, ok := expiry(token)
	if ok {
		if !exp.After(s.now()) {
			return nil, nil
		}
		sess.ExpiresAt = &exp
	}
	return sess, nil
}

// expiry reads the exp claim without verifying the signature; the
// backend verifies it on every request.
func expiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (s *Store) read() (map[string]string, error) {
	values := map[string]string{}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return values, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to read session file")
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "corrupt session file")
	}
	return values, nil
}

func (s *Store) write(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create session directory")
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to encode session")
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to write session file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to write session file")
	}
	return nil
}
