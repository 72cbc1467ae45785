package store

import (
	"context"
	"database/sql"

	"perf-rating-go/internal/models"
)

// Notification methods

func (s *PostgresStore) CreateNotification(ctx context.Context, userID int, message string) (models.Notification, error) {
	var n models.Notification
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO notifications (user_id, message, is_read, created_at)
		 VALUES ($1, $2, FALSE, NOW())
		 RETURNING id, user_id, message, is_read, created_at`,
		userID, message,
	).Scan(&n.ID, &n.UserID, &n.Message, &n.IsRead, &n.CreatedAt)

	return n, err
}

func (s *PostgresStore) GetNotification(ctx context.Context, id int) (models.Notification, error) {
	var n models.Notification
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, message, is_read, created_at FROM notifications WHERE id = $1`,
		id,
	).Scan(&n.ID, &n.UserID, &n.Message, &n.IsRead, &n.CreatedAt)

	if err == sql.ErrNoRows {
		return models.Notification{}, ErrNotFound
	}
	return n, err
}

func (s *PostgresStore) GetNotifications(ctx context.Context, userID, limit int) ([]models.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, message, is_read, created_at FROM notifications
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			continue
		}
		notifications = append(notifications, n)
	}

	return notifications, nil
}

func (s *PostgresStore) CountUnreadNotifications(ctx context.Context, userID int) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`,
		userID,
	).Scan(&count)
	return count, err
}

func (s *PostgresStore) MarkNotificationRead(ctx context.Context, id int) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresStore) MarkAllNotificationsRead(ctx context.Context, userID int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`,
		userID,
	)
	return err
}

func (s *PostgresStore) DeleteNotification(ctx context.Context, id int) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Push subscription methods

func (s *PostgresStore) SavePushSubscription(ctx context.Context, userID int, endpoint, p256dh, auth string) error {
	// One subscription per user. Concurrent subscribes race on this upsert;
	// last write wins.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth, created_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (user_id) DO UPDATE
		 SET endpoint = EXCLUDED.endpoint, p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth, created_at = NOW()`,
		userID, endpoint, p256dh, auth,
	)
	return err
}

func (s *PostgresStore) GetPushSubscription(ctx context.Context, userID int) (models.PushSubscription, error) {
	var sub models.PushSubscription
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, endpoint, p256dh, auth, created_at FROM push_subscriptions WHERE user_id = $1`,
		userID,
	).Scan(&sub.ID, &sub.UserID, &sub.Endpoint, &sub.P256dh, &sub.Auth, &sub.CreatedAt)

	if err == sql.ErrNoRows {
		return models.PushSubscription{}, ErrNotFound
	}
	return sub, err
}

func (s *PostgresStore) DeletePushSubscription(ctx context.Context, userID int) error {
	// No-op when the user has no subscription
	_, err := s.db.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE user_id = $1`, userID)
	return err
}

// Rating methods

func (s *PostgresStore) CreateRating(ctx context.Context, employeeID, reviewerID, score int, comments string) (models.Rating, error) {
	var rating models.Rating
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO ratings (employee_id, reviewer_id, score, comments, created_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 RETURNING id, employee_id, reviewer_id, score, comments, created_at`,
		employeeID, reviewerID, score, comments,
	).Scan(&rating.ID, &rating.EmployeeID, &rating.ReviewerID, &rating.Score, &rating.Comments, &rating.CreatedAt)

	return rating, err
}

func (s *PostgresStore) GetRatingsForEmployee(ctx context.Context, employeeID int) ([]models.Rating, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, employee_id, reviewer_id, score, comments, created_at FROM ratings
		 WHERE employee_id = $1
		 ORDER BY created_at DESC`,
		employeeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []models.Rating
	for rows.Next() {
		var rating models.Rating
		if err := rows.Scan(&rating.ID, &rating.EmployeeID, &rating.ReviewerID, &rating.Score, &rating.Comments, &rating.CreatedAt); err != nil {
			continue
		}
		ratings = append(ratings, rating)
	}

	return ratings, nil
}
