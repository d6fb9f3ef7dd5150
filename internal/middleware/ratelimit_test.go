package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukerupert/chorecal/internal/session"
)

type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time { return c.t }

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)

	for i := 0; i < 5; i++ {
		if !rl.Allow("key") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	if rl.Allow("key") {
		t.Error("6th request should be denied")
	}
	if !rl.Allow("other") {
		t.Error("keys should not share a budget")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	clock := &stepClock{t: time.Unix(1700000000, 0)}
	rl := NewRateLimiter(3, 10*time.Second)
	rl.now = clock.now

	for i := 0; i < 3; i++ {
		rl.Allow("key")
	}
	if rl.Allow("key") {
		t.Error("should be blocked within window")
	}

	clock.t = clock.t.Add(10 * time.Second)
	if !rl.Allow("key") {
		t.Error("should be allowed after window expires")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute)
	for i := 0; i < 100; i++ {
		if !rl.Allow("key") {
			t.Fatal("zero limit should disable limiting")
		}
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	clock := &stepClock{t: time.Unix(1700000000, 0)}
	rl := NewRateLimiter(5, time.Minute)
	rl.now = clock.now

	rl.Allow("expired")
	clock.t = clock.t.Add(2 * time.Minute)
	rl.Allow("active")

	if n := rl.Cleanup(); n != 1 {
		t.Errorf("Cleanup removed %d, want 1", n)
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.windows["expired"]; ok {
		t.Error("expired entry should have been cleaned up")
	}
	if _, ok := rl.windows["active"]; !ok {
		t.Error("active entry should still exist")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	keyFunc := func(r *http.Request) string { return "test" }

	handler := RateLimit(rl, keyFunc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/partials/chat", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}

	req := httptest.NewRequest("POST", "/partials/chat", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("3rd request: status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if rec.Header().Get("HX-Reswap") != "none" {
		t.Error("HTMX request should not swap the error body")
	}
}

func TestSessionOrIP(t *testing.T) {
	r := httptest.NewRequest("POST", "/", nil)
	r.RemoteAddr = "192.0.2.7:5000"
	if got := SessionOrIP(r); got != "ip:192.0.2.7" {
		t.Errorf("key = %q, want ip:192.0.2.7", got)
	}

	r = r.WithContext(session.WithSession(r.Context(), &session.Session{ID: "session-1-abcdefg"}))
	if got := SessionOrIP(r); got != "session:session-1-abcdefg" {
		t.Errorf("key = %q", got)
	}
}

func TestRealIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		remote string
		want   string
	}{
		{"remote addr", "", "198.51.100.4:1234", "198.51.100.4"},
		{"forwarded chain", "203.0.113.9, 10.0.0.1", "10.0.0.1:80", "203.0.113.9"},
		{"single forwarded", " 203.0.113.10 ", "10.0.0.1:80", "203.0.113.10"},
		{"no port", "", "pipe", "pipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := RealIP(r); got != tt.want {
				t.Errorf("RealIP = %q, want %q", got, tt.want)
			}
		})
	}
}
