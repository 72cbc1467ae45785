package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// SSEHandler streams the logged-in user's new notifications as server-sent
// events, backed by the Redis notification channel. Events for other users
// are filtered out before writing.
func (h *Handler) SSEHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, _ := GetCurrentUser(r)

	if h.Cache == nil {
		http.Error(w, "Live updates not available", http.StatusServiceUnavailable)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events, stop := h.Cache.Subscribe(r.Context())
	defer stop()

	fmt.Fprintf(w, "data: %s\n\n", "connected")
	flusher.Flush()

	for {
		select {
		case n, open := <-events:
			if !open {
				return
			}
			if n.UserID != userID {
				continue
			}
			data, err := json.Marshal(n)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
