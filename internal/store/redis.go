package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"perf-rating-go/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	unreadCountTTL      = 30 * time.Second
	notificationChannel = "notification_events"
)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(opts *redis.Options) *RedisStore {
	rdb := redis.NewClient(opts)
	return &RedisStore{client: rdb}
}

func unreadKey(userID int) string {
	return fmt.Sprintf("notifications:unread:%d", userID)
}

// GetCachedUnreadCount returns the cached unread count for a user. The second
// return value is false on a miss or any Redis error; callers fall through to
// the database.
func (s *RedisStore) GetCachedUnreadCount(ctx context.Context, userID int) (int, bool) {
	val, err := s.client.Get(ctx, unreadKey(userID)).Result()
	if err != nil {
		return 0, false
	}

	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return count, true
}

func (s *RedisStore) SetCachedUnreadCount(ctx context.Context, userID, count int) {
	if err := s.client.Set(ctx, unreadKey(userID), count, unreadCountTTL).Err(); err != nil {
		log.Println("Failed to cache unread count:", err)
	}
}

func (s *RedisStore) InvalidateUnreadCount(ctx context.Context, userID int) {
	if err := s.client.Del(ctx, unreadKey(userID)).Err(); err != nil {
		log.Println("Failed to invalidate unread count:", err)
	}
}

// PublishNotification publishes a new notification for SSE delivery.
func (s *RedisStore) PublishNotification(ctx context.Context, n models.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, notificationChannel, data).Err()
}

// Subscribe streams decoded notification events from the Redis channel.
// The returned stop function releases the subscription; the channel is
// closed once the subscription ends.
func (s *RedisStore) Subscribe(ctx context.Context) (<-chan models.Notification, func()) {
	pubsub := s.client.Subscribe(ctx, notificationChannel)
	out := make(chan models.Notification)

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var n models.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				log.Println("Failed to decode notification event:", err)
				continue
			}
			select {
			case out <- n:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, func() { pubsub.Close() }
}
