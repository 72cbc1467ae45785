package handlers

import (
	"encoding/json"
	"html/template"
	"log"
	"net/http"

	"perf-rating-go/internal/service"
	"perf-rating-go/internal/store"
)

type Handler struct {
	Users         store.UserStore
	Ratings       store.RatingStore
	Notifications *service.NotificationService
	Cache         store.NotificationCache
	Tmpl          map[string]*template.Template
}

func NewHandler(users store.UserStore, ratings store.RatingStore, notifications *service.NotificationService, cache store.NotificationCache, tmpl map[string]*template.Template) *Handler {
	return &Handler{
		Users:         users,
		Ratings:       ratings,
		Notifications: notifications,
		Cache:         cache,
		Tmpl:          tmpl,
	}
}

func (h *Handler) RenderPage(w http.ResponseWriter, page string, data any) {
	if tmpl, ok := h.Tmpl[page]; ok {
		if err := tmpl.Execute(w, data); err != nil {
			log.Println("Template error:", err)
			http.Error(w, "Template error", http.StatusInternalServerError)
		}
	} else {
		http.Error(w, "Page not found", http.StatusNotFound)
	}
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.RenderPage(w, "login", nil)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Println("Failed to encode response:", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
