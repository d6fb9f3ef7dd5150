package handler

import (
	"net/http"
	"strings"

	"github.com/dukerupert/chorecal/internal/view"
)

func (h *Handler) UserNewForm(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	c.OpenAddUser()
	h.renderApp(w, c)
}

func (h *Handler) UserCreate(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	h.finish(w, c, "add user", c.AddUser(r.Context(), r.FormValue("name")))
}

func (h *Handler) UserEditForm(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	id, err := parseIDParam(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := c.OpenEditUser(id); err != nil {
		h.notFound(w, "user")
		return
	}
	h.renderApp(w, c)
}

func (h *Handler) UserUpdate(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	id, err := parseIDParam(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	err = c.UpdateUser(r.Context(), view.UserDraft{
		ID:    id,
		Name:  r.FormValue("name"),
		Color: strings.TrimSpace(r.FormValue("color")),
	})
	h.finish(w, c, "update user", err)
}

func (h *Handler) UserDelete(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	id, err := parseIDParam(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	h.finish(w, c, "delete user", c.DeleteUser(r.Context(), id))
}
