package handler

import (
	"net/http"

	"github.com/dukerupert/chorecal/internal/view"
)

func (h *Handler) ChoreNewForm(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	c.OpenCreateChore(formInt64(r, "user_id"))
	h.renderApp(w, c)
}

func (h *Handler) ChoreCreate(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	err := c.CreateChore(r.Context(), view.ChoreForm{
		Date:        h.formDate(r, "date"),
		Time:        r.FormValue("time"),
		UserID:      formInt64(r, "user_id"),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	})
	h.finish(w, c, "create chore", err)
}

func (h *Handler) ChoreEditForm(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	id, err := parseIDParam(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := c.OpenEditChore(id); err != nil {
		h.notFound(w, "chore")
		return
	}
	h.renderApp(w, c)
}

func (h *Handler) ChoreUpdate(w http.ResponseWriter, r *http.Request) {
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

	err = c.UpdateChore(r.Context(), view.ChoreDraft{
		ID:          id,
		Date:        h.formDate(r, "date"),
		Time:        r.FormValue("time"),
		UserID:      formInt64(r, "user_id"),
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	})
	h.finish(w, c, "update chore", err)
}

func (h *Handler) ChoreDelete(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	id, err := parseIDParam(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	h.finish(w, c, "delete chore", c.DeleteChore(r.Context(), id))
}
