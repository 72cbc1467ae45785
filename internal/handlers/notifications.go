package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"perf-rating-go/internal/service"
)

// NotificationsPage renders the notification inbox for the logged-in user.
func (h *Handler) NotificationsPage(w http.ResponseWriter, r *http.Request) {
	userID, username, _ := GetCurrentUser(r)

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}

	notifications, err := h.Notifications.ListForUser(r.Context(), userID, limit)
	if err != nil {
		log.Println("Failed to get notifications:", err)
		http.Error(w, "Failed to get notifications", http.StatusInternalServerError)
		return
	}

	unread, err := h.Notifications.UnreadCount(r.Context(), userID)
	if err != nil {
		log.Println("Failed to count unread notifications:", err)
	}

	session, _ := sessionStore.Get(r, sessionName)
	flashes := session.Flashes()
	session.Save(r, w)

	h.RenderPage(w, "notifications", map[string]any{
		"Username":      username,
		"Notifications": notifications,
		"UnreadCount":   unread,
		"Flashes":       flashes,
	})
}

// NotificationActionHandler handles the inbox form actions
// (mark_read, mark_all_read, delete) with a redirect after post.
func (h *Handler) NotificationActionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, _, _ := GetCurrentUser(r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	var err error
	var flash string

	switch r.PostFormValue("action") {
	case "mark_read":
		id, convErr := strconv.Atoi(r.PostFormValue("id"))
		if convErr != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}
		err = h.Notifications.MarkRead(r.Context(), userID, id)
		flash = "Notification marked as read"

	case "mark_all_read":
		err = h.Notifications.MarkAllRead(r.Context(), userID)
		flash = "All notifications marked as read"

	case "delete":
		id, convErr := strconv.Atoi(r.PostFormValue("id"))
		if convErr != nil {
			http.Error(w, "Invalid ID", http.StatusBadRequest)
			return
		}
		err = h.Notifications.Delete(r.Context(), userID, id)
		flash = "Notification deleted"

	default:
		http.Error(w, "Invalid action", http.StatusBadRequest)
		return
	}

	switch {
	case errors.Is(err, service.ErrForbidden):
		flash = "You cannot modify that notification"
	case errors.Is(err, service.ErrNotFound):
		flash = "Notification not found"
	case err != nil:
		log.Println("Notification action failed:", err)
		flash = "Something went wrong, please try again"
	}

	session, _ := sessionStore.Get(r, sessionName)
	session.AddFlash(flash)
	session.Save(r, w)

	http.Redirect(w, r, "/notifications", http.StatusSeeOther)
}

// GetNotificationsHandler returns the caller's notifications as JSON.
func (h *Handler) GetNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, _ := GetCurrentUser(r)

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}

	notifications, err := h.Notifications.ListForUser(r.Context(), userID, limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to get notifications")
		return
	}

	unread, err := h.Notifications.UnreadCount(r.Context(), userID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to count unread notifications")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// UnreadCountHandler returns the caller's unread notification count.
// Polled by the navbar badge.
func (h *Handler) UnreadCountHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, _ := GetCurrentUser(r)

	unread, err := h.Notifications.UnreadCount(r.Context(), userID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to count unread notifications")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"unread_count": unread})
}
