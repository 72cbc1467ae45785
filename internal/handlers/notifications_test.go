package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postAction(t *testing.T, h *Handler, userID int, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := authenticatedRequest(t, http.MethodPost, "/notifications/action", strings.NewReader(form.Encode()), userID, "user", "employee")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.NotificationActionHandler(rec, req)
	return rec
}

func TestNotificationActionMarkRead(t *testing.T) {
	h, mem := newTestHandler(t)
	ctx := context.Background()

	n, err := mem.CreateNotification(ctx, 1, "hello")
	require.NoError(t, err)

	rec := postAction(t, h, 1, url.Values{
		"action": {"mark_read"},
		"id":     {strconv.Itoa(n.ID)},
	})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/notifications", rec.Header().Get("Location"))

	got, err := mem.GetNotification(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)
}

func TestNotificationActionMarkAllRead(t *testing.T) {
	h, mem := newTestHandler(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := mem.CreateNotification(ctx, 1, "unread")
		require.NoError(t, err)
	}
	other, err := mem.CreateNotification(ctx, 2, "someone else's")
	require.NoError(t, err)

	rec := postAction(t, h, 1, url.Values{"action": {"mark_all_read"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	count, err := mem.CountUnreadNotifications(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Other user's notifications are untouched
	got, err := mem.GetNotification(ctx, other.ID)
	require.NoError(t, err)
	assert.False(t, got.IsRead)
}

func TestNotificationActionDeleteForeignRecord(t *testing.T) {
	h, mem := newTestHandler(t)
	ctx := context.Background()

	n, err := mem.CreateNotification(ctx, 1, "belongs to user one")
	require.NoError(t, err)

	// User 2 tries to delete user 1's notification; record survives
	rec := postAction(t, h, 2, url.Values{
		"action": {"delete"},
		"id":     {strconv.Itoa(n.ID)},
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	_, err = mem.GetNotification(ctx, n.ID)
	assert.NoError(t, err)
}

func TestNotificationActionInvalid(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := postAction(t, h, 1, url.Values{"action": {"bogus"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationActionRejectsGet(t *testing.T) {
	h, _ := newTestHandler(t)

	req := authenticatedRequest(t, http.MethodGet, "/notifications/action", nil, 1, "user", "employee")
	rec := httptest.NewRecorder()
	h.NotificationActionHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGetNotificationsHandlerScoped(t *testing.T) {
	h, mem := newTestHandler(t)
	ctx := context.Background()

	_, err := mem.CreateNotification(ctx, 1, "mine")
	require.NoError(t, err)
	_, err = mem.CreateNotification(ctx, 2, "not mine")
	require.NoError(t, err)

	req := authenticatedRequest(t, http.MethodGet, "/api/notifications", nil, 1, "alice", "employee")
	rec := httptest.NewRecorder()
	h.GetNotificationsHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)

	notifications, ok := body["notifications"].([]any)
	require.True(t, ok)
	require.Len(t, notifications, 1)

	first, ok := notifications[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "mine", first["message"])
	assert.Equal(t, float64(1), first["user_id"])
	assert.Equal(t, float64(1), body["unread_count"])
}

func TestUnreadCountHandler(t *testing.T) {
	h, mem := newTestHandler(t)
	ctx := context.Background()

	n, err := mem.CreateNotification(ctx, 1, "one")
	require.NoError(t, err)
	_, err = mem.CreateNotification(ctx, 1, "two")
	require.NoError(t, err)
	require.NoError(t, mem.MarkNotificationRead(ctx, n.ID))

	req := authenticatedRequest(t, http.MethodGet, "/api/notifications/unread", nil, 1, "alice", "employee")
	rec := httptest.NewRecorder()
	h.UnreadCountHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["unread_count"])
}

func TestAuthMiddlewareBlocksAnonymous(t *testing.T) {
	called := false
	next := func(w http.ResponseWriter, r *http.Request) { called = true }

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	rec := httptest.NewRecorder()
	AuthMiddleware(next)(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestAuthMiddlewarePassesSession(t *testing.T) {
	called := false
	next := func(w http.ResponseWriter, r *http.Request) { called = true }

	req := authenticatedRequest(t, http.MethodGet, "/notifications", nil, 1, "alice", "employee")
	rec := httptest.NewRecorder()
	AuthMiddleware(next)(rec, req)

	assert.True(t, called)
}
