package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v3/jwt"
)

// Session is the persisted sign-in state.
type Session struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// Store keeps the session in a JSON file. Safe for concurrent use; the HTTP
// client reads the token from request goroutines.
type Store struct {
	path string
	now  func() time.Time

	mu     sync.Mutex
	loaded bool
	sess   Session
}

func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

func (s *Store) Path() string { return s.path }

func (s *Store) load() {
	if s.loaded {
		return
	}
	s.loaded = true
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var sess Session
	if json.Unmarshal(data, &sess) == nil {
		s.sess = sess
	}
}

// Token returns the stored bearer token, or "".
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
	return s.sess.Token
}

// Save persists token, replacing any previous session.
func (s *Store) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("empty token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := Session{Token: token, SavedAt: s.now().UTC()}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	s.sess = sess
	s.loaded = true
	return nil
}

// Clear removes the session file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = Session{}
	s.loaded = true
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Expiry returns the exp claim when the token is a JWT that carries one.
func (s *Store) Expiry() (time.Time, bool) {
	return tokenExpiry(s.Token())
}

// IsAuthenticated holds when a token is stored and, if it is a JWT with an
// exp claim, that claim is still in the future. Signatures are not verified;
// the backend does that.
func (s *Store) IsAuthenticated() bool {
	tok := s.Token()
	if tok == "" {
		return false
	}
	if exp, ok := tokenExpiry(tok); ok {
		return s.now().Before(exp)
	}
	return true
}

func tokenExpiry(raw string) (time.Time, bool) {
	if strings.Count(raw, ".") != 2 {
		return time.Time{}, false
	}
	tok, err := jwt.ParseSigned(raw)
	if err != nil {
		return time.Time{}, false
	}
	var claims jwt.Claims
	if err := tok.UnsafeClaimsWithoutVerification(&claims); err != nil || claims.Expiry == nil {
		return time.Time{}, false
	}
	return claims.Expiry.Time(), true
}
