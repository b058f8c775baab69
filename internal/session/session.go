package session

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Clock supplies the current time; tests inject a fixed one.
type Clock func() time.Time

// Session holds the operator's bearer token and persists it across restarts.
// An empty token means unauthenticated. The backend remains the authority on
// token validity: a 401 invalidates the session regardless of what Valid
// reports, but when the token is a JWT carrying an exp claim the session can
// notice expiry without a round trip.
type Session struct {
	mu     sync.RWMutex
	token  string
	path   string
	now    Clock
	logger *zap.Logger
}

type Option func(*Session)

func WithClock(now Clock) Option {
	return func(s *Session) {
		s.now = now
	}
}

// New loads any persisted token from path. A missing or unreadable file just
// starts the session unauthenticated.
func New(path string, logger *zap.Logger, opts ...Option) *Session {
	s := &Session{
		path:   path,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := os.ReadFile(path)
	if err == nil {
		s.token = strings.TrimSpace(string(data))
	} else if !os.IsNotExist(err) {
		logger.Warn("reading persisted session", zap.Error(err))
	}

	return s
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken stores the token and persists it for reload survival.
func (s *Session) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token

	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		s.logger.Warn("persisting session token", zap.Error(err))
		return err
	}
	return nil
}

// Clear logs the operator out and removes the persisted token.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("removing persisted session token", zap.Error(err))
		return err
	}
	return nil
}

// Authenticated reports token presence only, the gate the views render by.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Valid reports whether the session is authenticated and, when the token is a
// JWT with an exp claim, not yet expired. Opaque tokens pass on presence
// alone.
func (s *Session) Valid() bool {
	token := s.Token()
	if token == "" {
		return false
	}

	expiry, ok := s.expiresAt(token)
	if !ok {
		return true
	}
	return s.now().Before(expiry)
}

// expiresAt reads the exp claim without verifying the signature; the
// dashboard never holds the signing key.
func (s *Session) expiresAt(token string) (time.Time, bool) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
