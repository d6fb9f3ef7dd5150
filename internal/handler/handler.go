// Package handler serves the web front-end. Every interaction goes through
// the request's view session and answers with the re-rendered app region.
package handler

import (
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/chorecal/internal/model"
	"github.com/dukerupert/chorecal/internal/session"
	"github.com/dukerupert/chorecal/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

type Handler struct {
	sessions  *session.Manager
	templates *template.Template
	loc       *time.Location
	logger    *slog.Logger
}

func New(sessions *session.Manager, loc *time.Location, logger *slog.Logger) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		sessions:  sessions,
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
		loc:       loc,
		logger:    logger,
	}
}

// Index starts a new view session for this page load.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	if err := s.Controller.Load(r.Context()); err != nil {
		h.logger.Warn("initial load incomplete", "session", s.ID, "error", err)
	}
	http.SetCookie(w, h.sessions.Cookie(s))
	p := newPage(s.Controller.State())
	p.SessionToken = h.sessions.Token(s)
	h.render(w, "layout.html", p)
}

// App re-renders the whole app region.
func (h *Handler) App(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	h.renderApp(w, c)
}

// Live re-renders the header, grid and chat panel after a push
// notification. Open forms are left alone.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	h.render(w, "live", newPage(c.State()))
}

func (h *Handler) Day(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}

	var err error
	switch r.PathValue("direction") {
	case "previous":
		err = c.PreviousDay(r.Context())
	case "next":
		err = c.NextDay(r.Context())
	case "today":
		err = c.Today(r.Context())
	default:
		http.Error(w, "unknown direction", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Warn("day change reload failed", "error", err)
	}
	h.renderApp(w, c)
}

func (h *Handler) CloseModal(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	m, ok := view.ParseModal(r.PathValue("modal"))
	if !ok {
		http.Error(w, "unknown modal", http.StatusNotFound)
		return
	}
	c.CloseModal(m)
	h.renderApp(w, c)
}

func (h *Handler) DismissAlert(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	c.DismissAlert()
	h.renderApp(w, c)
}

func (h *Handler) controller(w http.ResponseWriter, r *http.Request) (*view.Controller, bool) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		http.Error(w, "no session", http.StatusUnauthorized)
		return nil, false
	}
	return s.Controller, true
}

// finish logs a mutation error that the state does not already show.
// Validation and backend failures are rendered from state.
func (h *Handler) finish(w http.ResponseWriter, c *view.Controller, op string, err error) {
	var ve *view.ValidationError
	if err != nil && !errors.As(err, &ve) {
		h.logger.Debug(op+" failed", "error", err)
	}
	h.renderApp(w, c)
}

func (h *Handler) renderApp(w http.ResponseWriter, c *view.Controller) {
	h.render(w, "app", newPage(c.State()))
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("template error", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (h *Handler) notFound(w http.ResponseWriter, what string) {
	http.Error(w, what+" not found", http.StatusNotFound)
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

// formInt64 returns 0 for a missing or malformed value.
func formInt64(r *http.Request, name string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(r.FormValue(name)), 10, 64)
	return n
}

// formDate returns the zero time for a missing or malformed date.
func (h *Handler) formDate(r *http.Request, name string) time.Time {
	d, err := time.ParseInLocation(model.DateLayout, strings.TrimSpace(r.FormValue(name)), h.loc)
	if err != nil {
		return time.Time{}
	}
	return d
}
