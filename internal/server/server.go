package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/chorecal/internal/handler"
	"github.com/dukerupert/chorecal/internal/middleware"
	"github.com/dukerupert/chorecal/internal/session"
	"github.com/dukerupert/chorecal/internal/view"
	ws "github.com/dukerupert/chorecal/internal/websocket"
)

type Options struct {
	Location   *time.Location
	ReplyDelay time.Duration
	SessionTTL time.Duration
	SessionKey []byte
	// ChatRateLimit is messages per session per minute. Zero disables it.
	ChatRateLimit int
	SecureCookie  bool
}

type Server struct {
	hub         *ws.Hub
	sessions    *session.Manager
	appH        *handler.Handler
	chatLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(b view.Backend, opts Options, logger *slog.Logger) (*Server, error) {
	hub := ws.NewHub(logger)

	sessions, err := session.NewManager(session.Config{
		Key:    opts.SessionKey,
		TTL:    opts.SessionTTL,
		Secure: opts.SecureCookie,
		NewController: func(id string) *view.Controller {
			return view.New(b, view.Options{
				SessionID:  id,
				Location:   opts.Location,
				ReplyDelay: opts.ReplyDelay,
				Logger:     logger,
				OnChange:   func() { hub.Notify(id) },
			})
		},
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	return &Server{
		hub:         hub,
		sessions:    sessions,
		appH:        handler.New(sessions, opts.Location, logger.With("component", "handler")),
		chatLimiter: middleware.NewRateLimiter(opts.ChatRateLimit, time.Minute),
		logger:      logger,
	}, nil
}

// Cleanup drops idle view sessions and expired rate-limit windows.
func (s *Server) Cleanup() {
	s.sessions.Cleanup()
	s.chatLimiter.Cleanup()
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	outerMux.HandleFunc("GET /{$}", s.appH.Index)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	sessionMux := http.NewServeMux()
	s.registerSessionRoutes(sessionMux)
	outerMux.Handle("/", middleware.RequireSession(s.sessions)(sessionMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.Handler {
	return middleware.RateLimit(s.chatLimiter, middleware.SessionOrIP)(h)
}

func (s *Server) registerSessionRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	// Whole-app and push-refresh partials
	mux.HandleFunc("GET /partials/app", s.appH.App)
	mux.HandleFunc("GET /partials/live", s.appH.Live)

	// Date navigation
	mux.HandleFunc("POST /partials/day/{direction}", s.appH.Day)

	// Chores
	mux.HandleFunc("GET /partials/chores/new", s.appH.ChoreNewForm)
	mux.HandleFunc("POST /partials/chores", s.appH.ChoreCreate)
	mux.HandleFunc("GET /partials/chores/{id}/edit", s.appH.ChoreEditForm)
	mux.HandleFunc("PUT /partials/chores/{id}", s.appH.ChoreUpdate)
	mux.HandleFunc("DELETE /partials/chores/{id}", s.appH.ChoreDelete)

	// Users
	mux.HandleFunc("GET /partials/users/new", s.appH.UserNewForm)
	mux.HandleFunc("POST /partials/users", s.appH.UserCreate)
	mux.HandleFunc("GET /partials/users/{id}/edit", s.appH.UserEditForm)
	mux.HandleFunc("PUT /partials/users/{id}", s.appH.UserUpdate)
	mux.HandleFunc("DELETE /partials/users/{id}", s.appH.UserDelete)

	// Modals, chat and alert
	mux.HandleFunc("POST /partials/modals/{modal}/close", s.appH.CloseModal)
	mux.HandleFunc("POST /partials/chat/toggle", s.appH.ChatToggle)
	mux.Handle("POST /partials/chat", s.rateLimitedHandler(s.appH.ChatSend))
	mux.HandleFunc("POST /partials/alert/dismiss", s.appH.DismissAlert)
}
