package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"perf-rating-go/internal/models"
)

// MemoryStore is an in-memory implementation of the Postgres-backed store
// interfaces, used by tests and local development without a database.
type MemoryStore struct {
	mu            sync.Mutex
	users         map[int]models.User
	notifications map[int]models.Notification
	subscriptions map[int]models.PushSubscription // keyed by user id
	ratings       map[int]models.Rating
	nextUserID    int
	nextNotifID   int
	nextSubID     int
	nextRatingID  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[int]models.User),
		notifications: make(map[int]models.Notification),
		subscriptions: make(map[int]models.PushSubscription),
		ratings:       make(map[int]models.Rating),
	}
}

// User methods

func (s *MemoryStore) CreateUser(ctx context.Context, username, fullName, password, role string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	passwordHash, err := models.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	s.nextUserID++
	user := models.User{
		ID:           s.nextUserID,
		Username:     username,
		FullName:     fullName,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id int) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (s *MemoryStore) GetUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	return users, nil
}

func (s *MemoryStore) UpdateUser2FA(ctx context.Context, userID int, totpSecret string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.TOTPSecret = totpSecret
	user.TOTPEnabled = enabled
	s.users[userID] = user
	return nil
}

func (s *MemoryStore) Disable2FA(ctx context.Context, userID int) error {
	return s.UpdateUser2FA(ctx, userID, "", false)
}

// Notification methods

func (s *MemoryStore) CreateNotification(ctx context.Context, userID int, message string) (models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextNotifID++
	n := models.Notification{
		ID:        s.nextNotifID,
		UserID:    userID,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	s.notifications[n.ID] = n
	return n, nil
}

func (s *MemoryStore) GetNotification(ctx context.Context, id int) (models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok {
		return models.Notification{}, ErrNotFound
	}
	return n, nil
}

func (s *MemoryStore) GetNotifications(ctx context.Context, userID, limit int) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var notifications []models.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			notifications = append(notifications, n)
		}
	}

	// Newest first
	sort.Slice(notifications, func(i, j int) bool {
		if notifications[i].CreatedAt.Equal(notifications[j].CreatedAt) {
			return notifications[i].ID > notifications[j].ID
		}
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})

	if limit > 0 && len(notifications) > limit {
		notifications = notifications[:limit]
	}
	return notifications, nil
}

func (s *MemoryStore) CountUnreadNotifications(ctx context.Context, userID int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) MarkNotificationRead(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok {
		return ErrNotFound
	}
	n.IsRead = true
	s.notifications[id] = n
	return nil
}

func (s *MemoryStore) MarkAllNotificationsRead(ctx context.Context, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, n := range s.notifications {
		if n.UserID == userID {
			n.IsRead = true
			s.notifications[id] = n
		}
	}
	return nil
}

func (s *MemoryStore) DeleteNotification(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notifications[id]; !ok {
		return ErrNotFound
	}
	delete(s.notifications, id)
	return nil
}

// Push subscription methods

func (s *MemoryStore) SavePushSubscription(ctx context.Context, userID int, endpoint, p256dh, auth string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subscriptions[userID]
	if !ok {
		s.nextSubID++
		sub = models.PushSubscription{ID: s.nextSubID, UserID: userID}
	}
	sub.Endpoint = endpoint
	sub.P256dh = p256dh
	sub.Auth = auth
	sub.CreatedAt = time.Now().UTC()
	s.subscriptions[userID] = sub
	return nil
}

func (s *MemoryStore) GetPushSubscription(ctx context.Context, userID int) (models.PushSubscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subscriptions[userID]
	if !ok {
		return models.PushSubscription{}, ErrNotFound
	}
	return sub, nil
}

func (s *MemoryStore) DeletePushSubscription(ctx context.Context, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.subscriptions, userID)
	return nil
}

// Rating methods

func (s *MemoryStore) CreateRating(ctx context.Context, employeeID, reviewerID, score int, comments string) (models.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextRatingID++
	rating := models.Rating{
		ID:         s.nextRatingID,
		EmployeeID: employeeID,
		ReviewerID: reviewerID,
		Score:      score,
		Comments:   comments,
		CreatedAt:  time.Now().UTC(),
	}
	s.ratings[rating.ID] = rating
	return rating, nil
}

func (s *MemoryStore) GetRatingsForEmployee(ctx context.Context, employeeID int) ([]models.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ratings []models.Rating
	for _, rating := range s.ratings {
		if rating.EmployeeID == employeeID {
			ratings = append(ratings, rating)
		}
	}

	sort.Slice(ratings, func(i, j int) bool {
		return ratings[i].ID > ratings[j].ID
	})
	return ratings, nil
}
