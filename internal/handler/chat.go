package handler

import "net/http"

func (h *Handler) ChatToggle(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	c.ToggleChat()
	h.renderApp(w, c)
}

// ChatSend answers once the user's message is in the transcript. The bot
// reply arrives later and is pushed over the WebSocket.
func (h *Handler) ChatSend(w http.ResponseWriter, r *http.Request) {
	c, ok := h.controller(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}
	c.SendChat(r.Context(), r.FormValue("message"))
	h.renderApp(w, c)
}
