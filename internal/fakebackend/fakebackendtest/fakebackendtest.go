// Package fakebackendtest serves a fakebackend over HTTP for the length of
// a test.
package fakebackendtest

import (
	"net/http/httptest"
	"testing"

	"github.com/dukerupert/chorecal/internal/fakebackend"
)

// Server is a running fake backend.
type Server struct {
	*fakebackend.Server
	ts *httptest.Server
}

// Start opens an in-memory database and serves the API on a local port
// until the test ends.
func Start(tb testing.TB) *Server {
	tb.Helper()
	db, err := fakebackend.OpenDB(":memory:")
	if err != nil {
		tb.Fatalf("open fake backend db: %v", err)
	}
	fb := fakebackend.New(db)
	s := &Server{Server: fb, ts: httptest.NewServer(fb.Handler())}
	tb.Cleanup(func() {
		s.ts.Close()
		db.Close()
	})
	return s
}

// URL is the API base URL to hand to the client.
func (s *Server) URL() string {
	return s.ts.URL + fakebackend.BasePath
}
