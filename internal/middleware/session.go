package middleware

import (
	"net/http"

	"github.com/dukerupert/chorecal/internal/session"
)

// RequireSession resolves the view session named by the request's page token
// (header, query parameter, then cookie) and stores it in the request context. A missing or expired session sends the
// browser back to / for a fresh page load. HTMX requests get an HX-Redirect
// header instead of a 303.
func RequireSession(m *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := m.FromRequest(r)
			if err != nil {
				redirectToStart(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), s)))
		})
	}
}

func redirectToStart(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
