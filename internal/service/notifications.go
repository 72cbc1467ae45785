// Package service mediates between the HTTP layer and the stores. Every
// operation takes the authenticated user id explicitly, so per-user scoping
// is enforced here rather than trusted to callers or the store.
package service

import (
	"context"
	"errors"
	"log"

	"perf-rating-go/internal/models"
	"perf-rating-go/internal/store"
)

// ErrForbidden is returned when a user operates on a notification owned by
// someone else. The record is left unchanged.
var ErrForbidden = errors.New("forbidden")

// ErrNotFound mirrors the store sentinel so handlers only import this package.
var ErrNotFound = store.ErrNotFound

const defaultListLimit = 50

type NotificationService struct {
	notifications store.NotificationStore
	subscriptions store.SubscriptionStore
	cache         store.NotificationCache
}

// NewNotificationService wires the service to its stores. cache may be nil;
// unread counts then always hit the database.
func NewNotificationService(n store.NotificationStore, s store.SubscriptionStore, cache store.NotificationCache) *NotificationService {
	return &NotificationService{
		notifications: n,
		subscriptions: s,
		cache:         cache,
	}
}

// ListForUser returns the user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.notifications.GetNotifications(ctx, userID, limit)
}

// UnreadCount returns the number of unread notifications for a user,
// served from Redis when the cache is warm.
func (s *NotificationService) UnreadCount(ctx context.Context, userID int) (int, error) {
	if s.cache != nil {
		if count, ok := s.cache.GetCachedUnreadCount(ctx, userID); ok {
			return count, nil
		}
	}

	count, err := s.notifications.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		s.cache.SetCachedUnreadCount(ctx, userID, count)
	}
	return count, nil
}

// MarkRead marks a single notification as read. The notification must belong
// to userID.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID int) error {
	n, err := s.notifications.GetNotification(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return ErrForbidden
	}

	if err := s.notifications.MarkNotificationRead(ctx, notificationID); err != nil {
		return err
	}

	s.invalidate(ctx, userID)
	return nil
}

// MarkAllRead marks every notification owned by userID as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int) error {
	if err := s.notifications.MarkAllNotificationsRead(ctx, userID); err != nil {
		return err
	}

	s.invalidate(ctx, userID)
	return nil
}

// Delete removes a single notification. The notification must belong to userID.
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID int) error {
	n, err := s.notifications.GetNotification(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return ErrForbidden
	}

	if err := s.notifications.DeleteNotification(ctx, notificationID); err != nil {
		return err
	}

	s.invalidate(ctx, userID)
	return nil
}

// Notify creates a notification for a user and publishes it for live delivery.
func (s *NotificationService) Notify(ctx context.Context, userID int, message string) (models.Notification, error) {
	n, err := s.notifications.CreateNotification(ctx, userID, message)
	if err != nil {
		return models.Notification{}, err
	}

	s.invalidate(ctx, userID)

	if s.cache != nil {
		if err := s.cache.PublishNotification(ctx, n); err != nil {
			log.Println("Failed to publish notification event:", err)
		}
	}
	return n, nil
}

// Subscribe upserts the user's push subscription. Re-subscribing overwrites
// the previous endpoint.
func (s *NotificationService) Subscribe(ctx context.Context, userID int, endpoint, p256dh, auth string) error {
	if endpoint == "" {
		return errors.New("subscription endpoint is required")
	}
	return s.subscriptions.SavePushSubscription(ctx, userID, endpoint, p256dh, auth)
}

// Unsubscribe removes the user's push subscription. Succeeds when none exists.
func (s *NotificationService) Unsubscribe(ctx context.Context, userID int) error {
	return s.subscriptions.DeletePushSubscription(ctx, userID)
}

// GetSubscription returns the user's stored push subscription, used by the
// delivery path.
func (s *NotificationService) GetSubscription(ctx context.Context, userID int) (models.PushSubscription, error) {
	return s.subscriptions.GetPushSubscription(ctx, userID)
}

// DropSubscription removes a subscription the push service reported dead.
func (s *NotificationService) DropSubscription(ctx context.Context, userID int) error {
	return s.subscriptions.DeletePushSubscription(ctx, userID)
}

func (s *NotificationService) invalidate(ctx context.Context, userID int) {
	if s.cache != nil {
		s.cache.InvalidateUnreadCount(ctx, userID)
	}
}
