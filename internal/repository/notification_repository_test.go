package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-api/internal/models"
)

func newNotificationMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestNotificationRepositoryCreateBatch(t *testing.T) {
	db, mock, cleanup := newNotificationMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO notifications").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO notifications").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	notifications := []*models.Notification{
		{UserID: "user-1", Title: "Class added", Content: "A new session was scheduled", Type: models.NotificationSchedule},
		{UserID: "user-2", Title: "Class added", Content: "A new session was scheduled", Type: models.NotificationSchedule},
	}
	require.NoError(t, repo.CreateBatch(context.Background(), notifications))
	assert.NotEmpty(t, notifications[0].ID)
	assert.NotEmpty(t, notifications[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryCreateBatchEmpty(t *testing.T) {
	db, _, cleanup := newNotificationMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	require.NoError(t, repo.CreateBatch(context.Background(), nil))
}

func TestNotificationRepositoryCreateBatchRollsBack(t *testing.T) {
	db, mock, cleanup := newNotificationMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO notifications").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.CreateBatch(context.Background(), []*models.Notification{
		{UserID: "user-1", Title: "Class added", Content: "body", Type: models.NotificationSchedule},
	})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryListByUser(t *testing.T) {
	db, mock, cleanup := newNotificationMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\), COUNT\\(\\*\\) FILTER").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count", "unread"}).AddRow(5, 2))

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "title", "content", "type", "teaching_schedule_id",
		"notification_time", "is_read", "created_at", "updated_at",
	}).AddRow("notif-1", "user-1", "Reminder", "Session starts soon", "schedule", "sched-1", now, false, now, now)
	mock.ExpectQuery("SELECT (.+) FROM notifications").
		WithArgs("user-1", 20, 0).
		WillReturnRows(rows)

	notifications, total, unread, err := repo.ListByUser(context.Background(), "user-1", 1, 20)
	require.NoError(t, err)
	assert.Len(t, notifications, 1)
	assert.Equal(t, 5, total)
	assert.Equal(t, 2, unread)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryMarkAsReadNotFound(t *testing.T) {
	db, mock, cleanup := newNotificationMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec("UPDATE notifications SET is_read = true").
		WithArgs(sqlmock.AnyArg(), "missing", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkAsRead(context.Background(), "missing", "user-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestNotificationRepositoryMarkAllAsRead(t *testing.T) {
	db, mock, cleanup := newNotificationMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec("UPDATE notifications SET is_read = true").
		WithArgs(sqlmock.AnyArg(), "user-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	updated, err := repo.MarkAllAsRead(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, updated)
}
