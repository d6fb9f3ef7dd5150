package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/chorecal/internal/session"
)

// HandleWebSocket upgrades the connection and subscribes it to the request's
// view session. It must run behind the session middleware.
func HandleWebSocket(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := session.ID(r.Context())
		if id == "" {
			http.Error(w, "no session", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			hub.logger.Warn("accept failed", "session", id, "error", err)
			return
		}

		NewClient(hub, conn, id).Run(r.Context())
	}
}
