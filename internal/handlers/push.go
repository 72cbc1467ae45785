package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"

	"perf-rating-go/internal/service"

	"github.com/SherClockHolmes/webpush-go"
)

var (
	vapidPrivateKey string
	vapidPublicKey  string
)

func init() {
	// Check for VAPID keys in env, or generate them
	vapidPrivateKey = os.Getenv("VAPID_PRIVATE_KEY")
	vapidPublicKey = os.Getenv("VAPID_PUBLIC_KEY")

	if vapidPrivateKey == "" || vapidPublicKey == "" {
		log.Println("VAPID keys not found in environment. Generating new keys...")
		privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
		if err != nil {
			log.Fatal("Failed to generate VAPID keys:", err)
		}
		vapidPrivateKey = privateKey
		vapidPublicKey = publicKey
		log.Printf("Generated VAPID Keys:\nVAPID_PRIVATE_KEY=%s\nVAPID_PUBLIC_KEY=%s\n(Add these to your .env file to persist them)", privateKey, publicKey)
	}
}

// pushAction is the closed set of operations accepted by the push endpoint.
type pushAction int

const (
	actionSubscribe pushAction = iota
	actionUnsubscribe
)

func parsePushAction(s string) (pushAction, bool) {
	switch s {
	case "subscribe":
		return actionSubscribe, true
	case "unsubscribe":
		return actionUnsubscribe, true
	default:
		return 0, false
	}
}

// GetVAPIDKeyHandler returns the public VAPID key
func (h *Handler) GetVAPIDKeyHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"publicKey": vapidPublicKey,
	})
}

type pushRequest struct {
	Action       string `json:"action"`
	Subscription *struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	} `json:"subscription"`
}

// PushAPIHandler manages the caller's push subscription.
// POST /api/push with {"action":"subscribe"|"unsubscribe"}.
func (h *Handler) PushAPIHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	session, _ := sessionStore.Get(r, sessionName)
	userID, ok := session.Values["user_id"].(int)
	if !ok || userID == 0 {
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req pushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	action, ok := parsePushAction(req.Action)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "Invalid action")
		return
	}

	switch action {
	case actionSubscribe:
		if req.Subscription == nil || req.Subscription.Endpoint == "" {
			writeJSONError(w, http.StatusBadRequest, "Missing subscription data")
			return
		}

		err := h.Notifications.Subscribe(r.Context(), userID, req.Subscription.Endpoint, req.Subscription.Keys.P256dh, req.Subscription.Keys.Auth)
		if err != nil {
			log.Printf("Failed to save subscription: %v", err)
			writeJSONError(w, http.StatusInternalServerError, "Failed to save subscription")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Subscribed to push notifications",
		})

	case actionUnsubscribe:
		if err := h.Notifications.Unsubscribe(r.Context(), userID); err != nil {
			log.Printf("Failed to delete subscription: %v", err)
			writeJSONError(w, http.StatusInternalServerError, "Failed to delete subscription")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Unsubscribed from push notifications",
		})
	}
}

// SendPushNotification sends a web push message to a user's stored
// subscription. Failures are logged, never retried. A 4xx response from the
// push service means the subscription is dead, so the row is dropped.
func (h *Handler) SendPushNotification(ctx context.Context, userID int, message string) {
	sub, err := h.Notifications.GetSubscription(ctx, userID)
	if err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			log.Printf("Failed to get subscription for user %d: %v", userID, err)
		}
		return
	}

	s := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}

	resp, err := webpush.SendNotification([]byte(message), s, &webpush.Options{
		Subscriber:      subscriberEmail(),
		VAPIDPublicKey:  vapidPublicKey,
		VAPIDPrivateKey: vapidPrivateKey,
		TTL:             30,
	})
	if err != nil {
		pushFailed.Inc()
		log.Printf("Failed to send push to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		pushFailed.Inc()
		log.Printf("Push service rejected subscription for user %d (status %d), dropping it", userID, resp.StatusCode)
		if err := h.Notifications.DropSubscription(ctx, userID); err != nil {
			log.Printf("Failed to drop subscription for user %d: %v", userID, err)
		}
		return
	}

	pushSent.Inc()
}

func subscriberEmail() string {
	if email := os.Getenv("VAPID_SUBSCRIBER"); email != "" {
		return email
	}
	return "mailto:admin@example.com"
}
