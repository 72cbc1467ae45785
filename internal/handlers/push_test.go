package handlers

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"perf-rating-go/internal/service"
	"perf-rating-go/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	svc := service.NewNotificationService(mem, mem, nil)
	return NewHandler(mem, mem, svc, nil, nil), mem
}

// authenticatedRequest builds a request carrying a valid session cookie.
func authenticatedRequest(t *testing.T, method, target string, body io.Reader, userID int, username, role string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()

	session, err := sessionStore.Get(req, sessionName)
	require.NoError(t, err)
	session.Values["user_id"] = userID
	session.Values["username"] = username
	session.Values["role"] = role
	require.NoError(t, session.Save(req, rec))

	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestPushAPIRejectsNonPost(t *testing.T) {
	h, _ := newTestHandler(t)

	req := authenticatedRequest(t, http.MethodGet, "/api/push", nil, 1, "alice", "employee")
	rec := httptest.NewRecorder()
	h.PushAPIHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPushAPIRequiresSession(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/push", strings.NewReader(`{"action":"subscribe"}`))
	rec := httptest.NewRecorder()
	h.PushAPIHandler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPushAPIMalformedBody(t *testing.T) {
	h, _ := newTestHandler(t)

	req := authenticatedRequest(t, http.MethodPost, "/api/push", strings.NewReader("not json"), 1, "alice", "employee")
	rec := httptest.NewRecorder()
	h.PushAPIHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPushAPIEmptyBody(t *testing.T) {
	h, _ := newTestHandler(t)

	req := authenticatedRequest(t, http.MethodPost, "/api/push", strings.NewReader(""), 1, "alice", "employee")
	rec := httptest.NewRecorder()
	h.PushAPIHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPushAPIInvalidAction(t *testing.T) {
	h, _ := newTestHandler(t)

	req := authenticatedRequest(t, http.MethodPost, "/api/push", strings.NewReader(`{"action":"bogus"}`), 1, "alice", "employee")
	rec := httptest.NewRecorder()
	h.PushAPIHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Invalid action", body["error"])
}

func TestPushAPIMissingAction(t *testing.T) {
	h, _ := newTestHandler(t)

	req := authenticatedRequest(t, http.MethodPost, "/api/push", strings.NewReader(`{}`), 1, "alice", "employee")
	rec := httptest.NewRecorder()
	h.PushAPIHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Invalid action", body["error"])
}

func TestPushAPISubscribeWithoutSubscription(t *testing.T) {
	h, _ := newTestHandler(t)

	req := authenticatedRequest(t, http.MethodPost, "/api/push", strings.NewReader(`{"action":"subscribe"}`), 1, "alice", "employee")
	rec := httptest.NewRecorder()
	h.PushAPIHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Missing subscription data", body["error"])
}

func TestPushAPISubscribe(t *testing.T) {
	h, _ := newTestHandler(t)

	payload := `{
		"action": "subscribe",
		"subscription": {
			"endpoint": "https://push.example.com/send/abc",
			"keys": {"p256dh": "p256dh-key", "auth": "auth-key"}
		}
	}`

	req := authenticatedRequest(t, http.MethodPost, "/api/push", strings.NewReader(payload), 1, "alice", "employee")
	rec := httptest.NewRecorder()
	h.PushAPIHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])

	sub, err := h.Notifications.GetSubscription(req.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, "https://push.example.com/send/abc", sub.Endpoint)
	assert.Equal(t, "p256dh-key", sub.P256dh)
	assert.Equal(t, "auth-key", sub.Auth)
}

func TestPushAPIResubscribeOverwrites(t *testing.T) {
	h, _ := newTestHandler(t)

	for _, endpoint := range []string{"https://push.example.com/a", "https://push.example.com/b"} {
		payload := `{"action":"subscribe","subscription":{"endpoint":"` + endpoint + `","keys":{"p256dh":"p","auth":"a"}}}`
		req := authenticatedRequest(t, http.MethodPost, "/api/push", strings.NewReader(payload), 1, "alice", "employee")
		rec := httptest.NewRecorder()
		h.PushAPIHandler(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	sub, err := h.Notifications.GetSubscription(httptest.NewRequest(http.MethodGet, "/", nil).Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, "https://push.example.com/b", sub.Endpoint)
}

func TestPushAPIUnsubscribe(t *testing.T) {
	h, _ := newTestHandler(t)

	// Unsubscribe with no stored subscription still succeeds
	req := authenticatedRequest(t, http.MethodPost, "/api/push", strings.NewReader(`{"action":"unsubscribe"}`), 1, "alice", "employee")
	rec := httptest.NewRecorder()
	h.PushAPIHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
}

// testSubscriptionKeys builds a real P-256 key pair and auth secret so the
// web push library can encrypt a payload for a local test server.
func testSubscriptionKeys(t *testing.T) (p256dh, auth string) {
	t.Helper()

	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)

	authSecret := make([]byte, 16)
	_, err = rand.Read(authSecret)
	require.NoError(t, err)

	return base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes()),
		base64.RawURLEncoding.EncodeToString(authSecret)
}

func TestSendPushDropsSubscriptionWhenEndpointGone(t *testing.T) {
	h, _ := newTestHandler(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	ctx := context.Background()
	p256dh, auth := testSubscriptionKeys(t)
	require.NoError(t, h.Notifications.Subscribe(ctx, 1, srv.URL, p256dh, auth))

	h.SendPushNotification(ctx, 1, "hello")

	// The push service said the endpoint is dead, so the row is gone
	_, err := h.Notifications.GetSubscription(ctx, 1)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestSendPushKeepsSubscriptionOnServerError(t *testing.T) {
	h, _ := newTestHandler(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx := context.Background()
	p256dh, auth := testSubscriptionKeys(t)
	require.NoError(t, h.Notifications.Subscribe(ctx, 1, srv.URL, p256dh, auth))

	h.SendPushNotification(ctx, 1, "hello")

	sub, err := h.Notifications.GetSubscription(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, srv.URL, sub.Endpoint)
}

func TestSendPushAcceptedKeepsSubscription(t *testing.T) {
	h, _ := newTestHandler(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	ctx := context.Background()
	p256dh, auth := testSubscriptionKeys(t)
	require.NoError(t, h.Notifications.Subscribe(ctx, 1, srv.URL, p256dh, auth))

	h.SendPushNotification(ctx, 1, "hello")

	_, err := h.Notifications.GetSubscription(ctx, 1)
	assert.NoError(t, err)
}

func TestSendPushWithoutSubscriptionIsNoop(t *testing.T) {
	h, _ := newTestHandler(t)

	// No subscription stored; nothing to send, nothing to panic on
	h.SendPushNotification(context.Background(), 1, "hello")
}

func TestGetVAPIDKey(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/push/key", nil)
	rec := httptest.NewRecorder()
	h.GetVAPIDKeyHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["publicKey"])
}
