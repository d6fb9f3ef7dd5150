// Package session keeps one view controller per browser page load. Each page
// carries a signed token naming its session and sends it back in a header (or
// a query parameter for the websocket). The cookie holds the token of the most
// recent page load and is only consulted when a request carries no token.
// Sessions idle for longer than the TTL are dropped by Cleanup.
package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/dukerupert/chorecal/internal/view"
)

const (
	CookieName = "chorecal_session"
	HeaderName = "X-Chorecal-Session"
	QueryParam = "session"
	DefaultTTL = 2 * time.Hour
	keySize    = 32
)

var (
	ErrNoSession  = errors.New("no session token")
	ErrBadCookie  = errors.New("session token signature mismatch")
	ErrNotFound   = errors.New("session not found")
	ErrKeyTooLong = fmt.Errorf("session key longer than %d bytes", blake2b.Size)
)

// Session is one page load's view state.
type Session struct {
	ID         string
	Controller *view.Controller

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

type Config struct {
	// Key signs session cookies. A random key is generated when empty.
	Key []byte
	TTL time.Duration
	// Secure marks the cookie as HTTPS-only.
	Secure bool
	// NewController builds the controller for a fresh session id.
	NewController func(id string) *view.Controller
	Now           func() time.Time
	Logger        *slog.Logger
}

type Manager struct {
	key           []byte
	ttl           time.Duration
	secure        bool
	newController func(id string) *view.Controller
	now           func() time.Time
	logger        *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(cfg Config) (*Manager, error) {
	key := cfg.Key
	if len(key) == 0 {
		key = make([]byte, keySize)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate session key: %w", err)
		}
	}
	if len(key) > blake2b.Size {
		return nil, ErrKeyTooLong
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.NewController == nil {
		return nil, errors.New("session: NewController is required")
	}
	return &Manager{
		key:           key,
		ttl:           cfg.TTL,
		secure:        cfg.Secure,
		newController: cfg.NewController,
		now:           cfg.Now,
		logger:        cfg.Logger.With("component", "session"),
		sessions:      make(map[string]*Session),
	}, nil
}

// Create starts a session with a fresh identifier and controller.
func (m *Manager) Create() *Session {
	now := m.now()
	id := view.NewSessionID(now)
	s := &Session{
		ID:         id,
		Controller: m.newController(id),
		lastSeen:   now,
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	m.logger.Debug("session created", "session", id)
	return s
}

// Get returns a live session and marks it as used.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	s.touch(m.now())
	return s, true
}

// Token returns the signed value that names s.
func (m *Manager) Token(s *Session) string {
	return s.ID + "." + m.sign(s.ID)
}

// Cookie returns the signed cookie that names s.
func (m *Manager) Cookie(s *Session) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    m.Token(s),
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// FromRequest resolves the session named by the request's token. The header
// wins over the query parameter, which wins over the cookie.
func (m *Manager) FromRequest(r *http.Request) (*Session, error) {
	token := RequestToken(r)
	if token == "" {
		return nil, ErrNoSession
	}
	id, sig, ok := strings.Cut(token, ".")
	if !ok || subtle.ConstantTimeCompare([]byte(sig), []byte(m.sign(id))) != 1 {
		return nil, ErrBadCookie
	}
	s, ok := m.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// RequestToken returns the unverified session token carried by r.
func RequestToken(r *http.Request) string {
	if v := r.Header.Get(HeaderName); v != "" {
		return v
	}
	if v := r.URL.Query().Get(QueryParam); v != "" {
		return v
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// Cleanup drops sessions idle for longer than the TTL and returns how many
// were removed.
func (m *Manager) Cleanup() int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("expired sessions removed", "count", removed)
	}
	return removed
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) sign(id string) string {
	h, err := blake2b.New256(m.key)
	if err != nil {
		// NewManager rejects keys blake2b cannot use.
		panic(err)
	}
	h.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
