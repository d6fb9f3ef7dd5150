// Package fakebackend is an in-process implementation of the chores REST
// backend used by tests. It stores users and chores in SQLite and answers
// assistant turns with a scripted function.
package fakebackend

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// BasePath is where the API is mounted, matching the production default.
const BasePath = "/api/v1"

// AssistantFunc produces the assistant's reply for one chat turn.
type AssistantFunc func(sessionID, message string) (string, error)

// ChatCall records one assistant request.
type ChatCall struct {
	SessionID string
	Message   string
}

type Server struct {
	store *store

	// FailAll makes every endpoint answer 500.
	FailAll atomic.Bool
	// FailAssistant makes only the assistant endpoint answer 500.
	FailAssistant atomic.Bool

	mu           sync.Mutex
	assistant    AssistantFunc
	chats        []ChatCall
	onListChores func(date string)
}

// New wraps an already migrated database.
func New(db *sql.DB) *Server {
	return &Server{
		store: &store{db: db},
		assistant: func(_, message string) (string, error) {
			return "You said: " + message, nil
		},
	}
}

func (s *Server) SetAssistant(f AssistantFunc) {
	s.mu.Lock()
	s.assistant = f
	s.mu.Unlock()
}

// OnListChores registers a hook that runs before every chores listing.
func (s *Server) OnListChores(f func(date string)) {
	s.mu.Lock()
	s.onListChores = f
	s.mu.Unlock()
}

// Chats returns the assistant calls received so far.
func (s *Server) Chats() []ChatCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ChatCall(nil), s.chats...)
}

func (s *Server) SeedUser(name, color string) (User, error) {
	u, err := s.store.createUser(name, color)
	if err != nil {
		return User{}, err
	}
	return *u, nil
}

func (s *Server) SeedChore(c Chore) (Chore, error) {
	created, err := s.store.createChore(c)
	if err != nil {
		return Chore{}, err
	}
	return *created, nil
}

func (s *Server) Users() ([]User, error) {
	return s.store.listUsers()
}

func (s *Server) Chores(date string) ([]Chore, error) {
	return s.store.listChores(date)
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+BasePath+"/users", s.listUsers)
	mux.HandleFunc("POST "+BasePath+"/users", s.createUser)
	mux.HandleFunc("PUT "+BasePath+"/users/{id}", s.updateUser)
	mux.HandleFunc("DELETE "+BasePath+"/users/{id}", s.deleteUser)

	mux.HandleFunc("GET "+BasePath+"/chores", s.listChores)
	mux.HandleFunc("GET "+BasePath+"/chores/user/{userId}", s.listUserChores)
	mux.HandleFunc("POST "+BasePath+"/chores", s.createChore)
	mux.HandleFunc("PUT "+BasePath+"/chores/{id}", s.updateChore)
	mux.HandleFunc("DELETE "+BasePath+"/chores/{id}", s.deleteChore)

	mux.HandleFunc("POST "+BasePath+"/assistant/chat", s.chat)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.FailAll.Load() {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "backend unavailable"})
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.listUsers()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list users"})
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type userRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	u, err := s.store.createUser(req.Name, req.Color)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create user"})
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	existing, err := s.store.getUser(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get user"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	u, err := s.store.updateUser(id, strings.TrimSpace(req.Name), req.Color)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update user"})
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := s.store.deleteUser(id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete user"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listChores(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")

	s.mu.Lock()
	hook := s.onListChores
	s.mu.Unlock()
	if hook != nil {
		hook(date)
	}

	chores, err := s.store.listChores(date)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list chores"})
		return
	}
	writeJSON(w, http.StatusOK, chores)
}

func (s *Server) listUserChores(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r, "userId")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}
	chores, err := s.store.listUserChores(userID, r.URL.Query().Get("date"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list chores"})
		return
	}
	writeJSON(w, http.StatusOK, chores)
}

func decodeChore(r *http.Request) (Chore, string) {
	var c Chore
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		return c, "invalid JSON"
	}
	c.Description = strings.TrimSpace(c.Description)
	switch {
	case c.Description == "":
		return c, "description is required"
	case c.Date == "" || c.Time == "":
		return c, "date and time are required"
	case c.UserID == 0:
		return c, "userId is required"
	}
	return c, ""
}

func (s *Server) createChore(w http.ResponseWriter, r *http.Request) {
	c, msg := decodeChore(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}
	created, err := s.store.createChore(c)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create chore"})
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateChore(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	c, msg := decodeChore(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}
	updated, err := s.store.updateChore(id, c)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update chore"})
		return
	}
	if updated == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "chore not found"})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteChore(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if err := s.store.deleteChore(id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete chore"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	s.mu.Lock()
	s.chats = append(s.chats, ChatCall{SessionID: req.SessionID, Message: req.Message})
	assistant := s.assistant
	s.mu.Unlock()

	if s.FailAssistant.Load() {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "assistant unavailable"})
		return
	}

	reply, err := assistant(req.SessionID, req.Message)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": reply})
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
