package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
)

// NotificationRepository persists per-user notification rows.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository constructs the repository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `id, user_id, title, content, type, teaching_schedule_id,
	notification_time, is_read, created_at, updated_at`

// FindByID returns a single notification or sql.ErrNoRows.
func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	query := fmt.Sprintf(`SELECT %s FROM notifications WHERE id = $1`, notificationColumns)
	var notification models.Notification
	if err := r.db.GetContext(ctx, &notification, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find notification: %w", err)
	}
	return &notification, nil
}

// ListByUser returns a user's notifications, newest first, with the
// total and unread counts for the same user.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.Notification, int, int, error) {
	const countQuery = `SELECT COUNT(*), COUNT(*) FILTER (WHERE is_read = false)
		FROM notifications WHERE user_id = $1`
	var total, unread int
	if err := r.db.QueryRowxContext(ctx, countQuery, userID).Scan(&total, &unread); err != nil {
		return nil, 0, 0, fmt.Errorf("count notifications: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM notifications
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, notificationColumns)
	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, userID, pageSize, (page-1)*pageSize); err != nil {
		return nil, 0, 0, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, total, unread, nil
}

// CreateBatch inserts one row per recipient inside a single transaction.
func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin notification batch: %w", err)
	}
	defer tx.Rollback()

	const query = `INSERT INTO notifications (id, user_id, title, content, type,
			teaching_schedule_id, notification_time, is_read, created_at, updated_at)
		VALUES (:id, :user_id, :title, :content, :type, :teaching_schedule_id,
			:notification_time, :is_read, :created_at, :updated_at)`
	now := time.Now().UTC()
	for _, notification := range notifications {
		if notification.ID == "" {
			notification.ID = uuid.NewString()
		}
		notification.CreatedAt = now
		notification.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, query, notification); err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit notification batch: %w", err)
	}
	return nil
}

// MarkAsRead flips one notification of one user to read.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id, userID string) error {
	const query = `UPDATE notifications SET is_read = true, updated_at = $1
		WHERE id = $2 AND user_id = $3`
	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check read rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkAllAsRead flips every unread notification of one user and returns
// how many rows changed.
func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID string) (int, error) {
	const query = `UPDATE notifications SET is_read = true, updated_at = $1
		WHERE user_id = $2 AND is_read = false`
	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check read rows: %w", err)
	}
	return int(affected), nil
}

// Delete removes one notification belonging to one user.
func (r *NotificationRepository) Delete(ctx context.Context, id, userID string) error {
	const query = `DELETE FROM notifications WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted notification rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
