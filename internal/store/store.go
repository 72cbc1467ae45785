package store

import (
	"context"
	"errors"

	"perf-rating-go/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// UserStore handles account operations (PostgreSQL)
type UserStore interface {
	CreateUser(ctx context.Context, username, fullName, password, role string) (models.User, error)
	GetUser(ctx context.Context, id int) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	UpdateUser2FA(ctx context.Context, userID int, totpSecret string, enabled bool) error
	Disable2FA(ctx context.Context, userID int) error
}

// NotificationStore handles per-user notification rows (PostgreSQL)
type NotificationStore interface {
	CreateNotification(ctx context.Context, userID int, message string) (models.Notification, error)
	GetNotification(ctx context.Context, id int) (models.Notification, error)
	GetNotifications(ctx context.Context, userID, limit int) ([]models.Notification, error)
	CountUnreadNotifications(ctx context.Context, userID int) (int, error)
	MarkNotificationRead(ctx context.Context, id int) error
	MarkAllNotificationsRead(ctx context.Context, userID int) error
	DeleteNotification(ctx context.Context, id int) error
}

// SubscriptionStore handles push subscription rows (PostgreSQL)
type SubscriptionStore interface {
	SavePushSubscription(ctx context.Context, userID int, endpoint, p256dh, auth string) error
	GetPushSubscription(ctx context.Context, userID int) (models.PushSubscription, error)
	DeletePushSubscription(ctx context.Context, userID int) error
}

// RatingStore handles performance rating rows (PostgreSQL)
type RatingStore interface {
	CreateRating(ctx context.Context, employeeID, reviewerID, score int, comments string) (models.Rating, error)
	GetRatingsForEmployee(ctx context.Context, employeeID int) ([]models.Rating, error)
}

// NotificationCache caches unread counts and fans notification events out to
// SSE listeners (Redis). All methods are best-effort: callers fall back to
// the database when the cache misses or errors.
type NotificationCache interface {
	GetCachedUnreadCount(ctx context.Context, userID int) (int, bool)
	SetCachedUnreadCount(ctx context.Context, userID, count int)
	InvalidateUnreadCount(ctx context.Context, userID int)
	PublishNotification(ctx context.Context, n models.Notification) error
	// Subscribe returns a stream of decoded notification events and a stop
	// function releasing the underlying subscription. The channel is closed
	// when the subscription ends.
	Subscribe(ctx context.Context) (<-chan models.Notification, func())
}
