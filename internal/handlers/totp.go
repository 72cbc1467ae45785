package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"perf-rating-go/internal/models"
)

const totpIssuer = "Performance Ratings"

// Generate2FAHandler generates a new TOTP secret and QR code for the
// logged-in user.
func (h *Handler) Generate2FAHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	_, username, _ := GetCurrentUser(r)

	key, err := models.NewTOTPKey(username, totpIssuer)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to generate secret")
		return
	}

	qrCode, err := models.TOTPQRCodePNG(key)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"secret":  key.Secret(),
		"qr_code": "data:image/png;base64," + qrCode,
		"issuer":  totpIssuer,
		"account": username,
	})
}

// Enable2FAHandler verifies the TOTP code and enables 2FA for the
// logged-in user.
func (h *Handler) Enable2FAHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, _, _ := GetCurrentUser(r)

	var req struct {
		Secret string `json:"secret"`
		Code   string `json:"code"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if !models.VerifyTOTPCode(req.Secret, req.Code) {
		writeJSONError(w, http.StatusUnauthorized, "Invalid verification code")
		return
	}

	if err := h.Users.UpdateUser2FA(r.Context(), userID, req.Secret, true); err != nil {
		log.Printf("Failed to enable 2FA: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to enable 2FA")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "2FA enabled successfully"})
}

// Disable2FAHandler disables 2FA for the logged-in user.
func (h *Handler) Disable2FAHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, _, _ := GetCurrentUser(r)

	if err := h.Users.Disable2FA(r.Context(), userID); err != nil {
		log.Printf("Failed to disable 2FA: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to disable 2FA")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "2FA disabled successfully"})
}

// Verify2FALoginHandler completes a login for a 2FA-enabled account.
func (h *Handler) Verify2FALoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req struct {
		UserID int    `json:"user_id"`
		Code   string `json:"code"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	user, err := h.Users.GetUser(r.Context(), req.UserID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "User not found")
		return
	}

	if !models.VerifyTOTPCode(user.TOTPSecret, req.Code) {
		writeJSONError(w, http.StatusUnauthorized, "Invalid verification code")
		return
	}

	// Create session after successful 2FA
	session, _ := sessionStore.Get(r, sessionName)
	session.Values["user_id"] = user.ID
	session.Values["username"] = user.Username
	session.Values["role"] = user.Role
	session.Save(r, w)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"user":     user,
		"redirect": "/notifications",
	})
}
