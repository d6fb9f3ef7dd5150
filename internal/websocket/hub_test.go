package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/chorecal/internal/session"
)

func testHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, sessionID string) *Client {
	return &Client{
		hub:     hub,
		session: sessionID,
		send:    make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := testHub()

	c1 := mockClient(hub, "a")
	c2 := mockClient(hub, "a")
	c3 := mockClient(hub, "b")

	hub.Register(c1)
	hub.Register(c2)
	hub.Register(c3)

	if got := hub.ClientCount(); got != 3 {
		t.Fatalf("expected 3 clients, got %d", got)
	}

	hub.Unregister(c1)
	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients after unregister, got %d", got)
	}

	hub.Unregister(c2)
	hub.Unregister(c3)
	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
	if len(hub.clients) != 0 {
		t.Errorf("empty session sets were not removed")
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := testHub()
	c := mockClient(hub, "a")
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestNotifyOnlyTargetsSession(t *testing.T) {
	hub := testHub()

	mine := mockClient(hub, "session-1-aaaaaaa")
	other := mockClient(hub, "session-2-bbbbbbb")
	hub.Register(mine)
	hub.Register(other)

	hub.Notify("session-1-aaaaaaa")

	select {
	case data := <-mine.send:
		var got Message
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Type != TypeStateChanged {
			t.Errorf("type = %q, want %q", got.Type, TypeStateChanged)
		}
		if got.Session != "session-1-aaaaaaa" {
			t.Errorf("session = %q", got.Session)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
	}

	select {
	case <-other.send:
		t.Error("other session received a notification")
	default:
	}

	hub.Unregister(mine)
	hub.Unregister(other)
}

func TestNotifyUnknownSession(t *testing.T) {
	hub := testHub()
	// Should not panic
	hub.Notify("nobody")
}

func TestNotifyFullBuffer(t *testing.T) {
	hub := testHub()

	c := mockClient(hub, "a")
	hub.Register(c)

	for i := 0; i < sendBufferSize+3; i++ {
		hub.Notify("a")
	}

	count := 0
	for {
		select {
		case <-c.send:
			count++
			continue
		default:
		}
		break
	}
	if count != sendBufferSize {
		t.Errorf("expected %d messages, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestConcurrentAccess(t *testing.T) {
	hub := testHub()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub, "shared")
			hub.Register(c)
			hub.Notify("shared")
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}()
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}

func TestHandleWebSocketRequiresSession(t *testing.T) {
	hub := testHub()
	rec := httptest.NewRecorder()
	HandleWebSocket(hub)(rec, httptest.NewRequest("GET", "/ws", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestHandleWebSocketDelivers(t *testing.T) {
	hub := testHub()
	sess := &session.Session{ID: "session-9-ccccccc"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HandleWebSocket(hub)(w, r.WithContext(session.WithSession(r.Context(), sess)))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Notify(sess.ID)

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != TypeStateChanged || got.Session != sess.ID {
		t.Errorf("message = %+v", got)
	}
}
