package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"perf-rating-go/internal/models"
)

// CreateRatingHandler lets a manager or admin submit a performance rating.
// The rated employee gets an inbox notification and a web push.
func (h *Handler) CreateRatingHandler(w http.ResponseWriter, r *http.Request) {
	reviewerID, reviewerName, role := GetCurrentUser(r)
	if role != "admin" && role != "manager" {
		writeJSONError(w, http.StatusForbidden, "Only managers can submit ratings")
		return
	}

	var req struct {
		EmployeeID int    `json:"employee_id"`
		Score      int    `json:"score"`
		Comments   string `json:"comments"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if err := models.ValidateScore(req.Score); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	employee, err := h.Users.GetUser(r.Context(), req.EmployeeID)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Employee not found")
		return
	}

	rating, err := h.Ratings.CreateRating(r.Context(), employee.ID, reviewerID, req.Score, req.Comments)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to save rating")
		return
	}
	ratingsSubmitted.Inc()

	message := fmt.Sprintf("You received a new performance rating (%d/5) from %s", rating.Score, reviewerName)
	if _, err := h.Notifications.Notify(r.Context(), employee.ID, message); err != nil {
		// Rating is saved; the missing notification is not worth a 500
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "rating": rating})
		return
	}
	notificationsCreated.Inc()

	go h.SendPushNotification(context.Background(), employee.ID, message)

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "rating": rating})
}

// GetRatingsHandler returns the ratings received by the logged-in user.
func (h *Handler) GetRatingsHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, _ := GetCurrentUser(r)

	ratings, err := h.Ratings.GetRatingsForEmployee(r.Context(), userID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to get ratings")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ratings": ratings})
}
