package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/chorecal/internal/backend"
	"github.com/dukerupert/chorecal/internal/view"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestManager(t *testing.T, clock *fakeClock) *Manager {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := backend.New(backend.Config{BaseURL: "http://127.0.0.1:1"})
	m, err := NewManager(Config{
		Key: []byte("0123456789abcdef0123456789abcdef"),
		TTL: time.Hour,
		NewController: func(id string) *view.Controller {
			return view.New(client, view.Options{SessionID: id, Logger: logger})
		},
		Now:    clock.Now,
		Logger: logger,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func requestWithCookie(c *http.Cookie) *http.Request {
	r := httptest.NewRequest("GET", "/partials/app", nil)
	if c != nil {
		r.AddCookie(c)
	}
	return r
}

func TestCreateAndResolve(t *testing.T) {
	m := newTestManager(t, &fakeClock{now: time.Unix(1700000000, 0)})

	s := m.Create()
	if !strings.HasPrefix(s.ID, "session-1700000000000-") {
		t.Errorf("ID = %q, want session-<ms>- prefix", s.ID)
	}
	if got := s.Controller.State().SessionID; got != s.ID {
		t.Errorf("controller session = %q, want %q", got, s.ID)
	}

	cookie := m.Cookie(s)
	if !cookie.HttpOnly || cookie.Path != "/" {
		t.Errorf("cookie = %+v, want HttpOnly at /", cookie)
	}

	got, err := m.FromRequest(requestWithCookie(cookie))
	if err != nil {
		t.Fatalf("FromRequest: %v", err)
	}
	if got != s {
		t.Error("resolved a different session")
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	m := newTestManager(t, &fakeClock{now: time.Unix(1700000000, 0)})

	a, b := m.Create(), m.Create()
	if a.ID == b.ID {
		t.Fatal("two page loads share an id")
	}
	a.Controller.ToggleChat()
	if b.Controller.State().Modals.Chat {
		t.Error("chat toggle leaked across sessions")
	}
	if m.Len() != 2 {
		t.Errorf("Len = %d, want 2", m.Len())
	}
}

func TestFromRequestRejects(t *testing.T) {
	m := newTestManager(t, &fakeClock{now: time.Unix(1700000000, 0)})
	s := m.Create()
	valid := m.Cookie(s)

	tests := []struct {
		name   string
		cookie *http.Cookie
		want   error
	}{
		{"no cookie", nil, ErrNoSession},
		{"empty", &http.Cookie{Name: CookieName}, ErrNoSession},
		{"unsigned", &http.Cookie{Name: CookieName, Value: s.ID}, ErrBadCookie},
		{"forged", &http.Cookie{Name: CookieName, Value: "session-1-aaaaaaa." + strings.Split(valid.Value, ".")[1]}, ErrBadCookie},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.FromRequest(requestWithCookie(tt.cookie))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

// Two tabs share one cookie jar; each tab's token still names its own
// session, and the cookie only answers requests that carry no token.
func TestFromRequestPrefersPageToken(t *testing.T) {
	m := newTestManager(t, &fakeClock{now: time.Unix(1700000000, 0)})
	first := m.Create()
	second := m.Create()
	cookie := m.Cookie(second)

	withHeader := requestWithCookie(cookie)
	withHeader.Header.Set(HeaderName, m.Token(first))

	withQuery := httptest.NewRequest("GET", "/ws?"+QueryParam+"="+m.Token(first), nil)
	withQuery.AddCookie(cookie)

	both := httptest.NewRequest("GET", "/ws?"+QueryParam+"="+m.Token(second), nil)
	both.Header.Set(HeaderName, m.Token(first))

	tests := []struct {
		name string
		r    *http.Request
		want *Session
	}{
		{"header over cookie", withHeader, first},
		{"query over cookie", withQuery, first},
		{"header over query", both, first},
		{"cookie alone", requestWithCookie(cookie), second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.FromRequest(tt.r)
			if err != nil {
				t.Fatalf("FromRequest: %v", err)
			}
			if got != tt.want {
				t.Errorf("resolved %s, want %s", got.ID, tt.want.ID)
			}
		})
	}
}

func TestFromRequestRejectsForgedHeader(t *testing.T) {
	m := newTestManager(t, &fakeClock{now: time.Unix(1700000000, 0)})
	s := m.Create()

	r := requestWithCookie(m.Cookie(s))
	r.Header.Set(HeaderName, s.ID+".not-a-signature")
	if _, err := m.FromRequest(r); !errors.Is(err, ErrBadCookie) {
		t.Errorf("err = %v, want ErrBadCookie", err)
	}
}

func TestCookieFromAnotherKey(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	m := newTestManager(t, clock)
	other, err := NewManager(Config{NewController: m.newController})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	s := other.Create()
	if _, err := m.FromRequest(requestWithCookie(other.Cookie(s))); !errors.Is(err, ErrBadCookie) {
		t.Errorf("err = %v, want ErrBadCookie", err)
	}
}

func TestCleanupExpiresIdleSessions(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	m := newTestManager(t, clock)

	idle := m.Create()
	active := m.Create()
	cookie := m.Cookie(idle)

	clock.Advance(45 * time.Minute)
	if _, ok := m.Get(active.ID); !ok {
		t.Fatal("active session missing")
	}
	clock.Advance(30 * time.Minute)

	if n := m.Cleanup(); n != 1 {
		t.Errorf("Cleanup removed %d, want 1", n)
	}
	if _, err := m.FromRequest(requestWithCookie(cookie)); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, ok := m.Get(active.ID); !ok {
		t.Error("recently used session was removed")
	}
}

func TestNewManagerValidation(t *testing.T) {
	if _, err := NewManager(Config{}); err == nil {
		t.Error("expected error without NewController")
	}
	_, err := NewManager(Config{
		Key:           make([]byte, 65),
		NewController: func(string) *view.Controller { return nil },
	})
	if !errors.Is(err, ErrKeyTooLong) {
		t.Errorf("err = %v, want ErrKeyTooLong", err)
	}
}

func TestContext(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Error("expected no session in empty context")
	}
	if ID(context.Background()) != "" {
		t.Error("expected empty id")
	}

	s := &Session{ID: "session-1-abcdefg"}
	ctx := WithSession(context.Background(), s)
	got, ok := FromContext(ctx)
	if !ok || got != s {
		t.Fatal("session not found in context")
	}
	if ID(ctx) != s.ID {
		t.Errorf("ID = %q, want %q", ID(ctx), s.ID)
	}
}
