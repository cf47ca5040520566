package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/jobs"
	"github.com/noah-isme/lms-api/pkg/mailer"
)

type notificationRepoStub struct {
	batches  [][]*models.Notification
	byUser   []models.Notification
	total    int
	unread   int
	readIDs  []string
	allRead  []string
	deleted  []string
	batchErr error
}

func (s *notificationRepoStub) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	return nil, sql.ErrNoRows
}

func (s *notificationRepoStub) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.Notification, int, int, error) {
	return s.byUser, s.total, s.unread, nil
}

func (s *notificationRepoStub) CreateBatch(ctx context.Context, notifications []*models.Notification) error {
	if s.batchErr != nil {
		return s.batchErr
	}
	s.batches = append(s.batches, notifications)
	return nil
}

func (s *notificationRepoStub) MarkAsRead(ctx context.Context, id, userID string) error {
	if id == "missing" {
		return sql.ErrNoRows
	}
	s.readIDs = append(s.readIDs, id)
	return nil
}

func (s *notificationRepoStub) MarkAllAsRead(ctx context.Context, userID string) (int, error) {
	s.allRead = append(s.allRead, userID)
	return 4, nil
}

func (s *notificationRepoStub) Delete(ctx context.Context, id, userID string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type classUsersStub struct {
	userIDs []string
}

func (s *classUsersStub) ListUserIDsByClass(ctx context.Context, classID string) ([]string, error) {
	return s.userIDs, nil
}

type mailerStub struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (s *mailerStub) Send(ctx context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type queueStub struct {
	deferred []jobs.Job
	delays   []time.Duration
}

func (s *queueStub) EnqueueAfter(job jobs.Job, delay time.Duration) error {
	s.deferred = append(s.deferred, job)
	s.delays = append(s.delays, delay)
	return nil
}

type metricsStub struct {
	mu       sync.Mutex
	sent     int
	failed   int
	observed []string
}

func (s *metricsStub) EmailSent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent++
}

func (s *metricsStub) EmailFailed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed++
}

func (s *metricsStub) ObserveDBQuery(label string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observed = append(s.observed, label)
}

func newNotificationFixture() (*notificationRepoStub, *classUsersStub, *mailerStub, *queueStub, *metricsStub, *NotificationService) {
	repo := &notificationRepoStub{}
	schedules := &scheduleRepoStub{items: map[string]*models.TeachingSchedule{
		"sched-1": {ID: "sched-1", AcademicClassID: "class-1", Title: "Week 1"},
	}}
	students := &classUsersStub{userIDs: []string{"user-1", "user-2"}}
	users := &userReaderStub{users: []models.User{
		{ID: "user-1", FullName: "User One", Email: "one@example.com"},
		{ID: "user-2", FullName: "User Two", Email: "two@example.com"},
	}}
	mail := &mailerStub{}
	queue := &queueStub{}
	metrics := &metricsStub{}
	svc := NewNotificationService(repo, schedules, students, users, mail, queue, metrics, nil, nil)
	return repo, students, mail, queue, metrics, svc
}

func TestNotificationServiceCreateFansOut(t *testing.T) {
	repo, _, mail, _, metrics, svc := newNotificationFixture()

	notifications, err := svc.Create(context.Background(), CreateNotificationRequest{
		UserIDs: []string{"user-1", "user-2"},
		Title:   "New session scheduled",
		Content: "Week 1 starts Monday.",
		Type:    models.NotificationSchedule,
	})
	require.NoError(t, err)
	assert.Len(t, notifications, 2)
	require.Len(t, repo.batches, 1)
	for _, notification := range repo.batches[0] {
		assert.False(t, notification.IsRead)
	}
	assert.Len(t, mail.sent, 2)
	assert.Equal(t, 2, metrics.sent)
	assert.Equal(t, 0, metrics.failed)
}

func TestNotificationServiceCreateWithoutEmail(t *testing.T) {
	repo, _, mail, queue, metrics, svc := newNotificationFixture()
	sendEmail := false

	notifications, err := svc.Create(context.Background(), CreateNotificationRequest{
		UserIDs:   []string{"user-1", "user-2"},
		Title:     "New session scheduled",
		Content:   "Week 1 starts Monday.",
		Type:      models.NotificationSchedule,
		SendEmail: &sendEmail,
	})
	require.NoError(t, err)
	assert.Len(t, notifications, 2)
	require.Len(t, repo.batches, 1)
	assert.Empty(t, mail.sent)
	assert.Empty(t, queue.deferred)
	assert.Equal(t, 0, metrics.sent)
}

func TestNotificationServiceCreateUnknownSchedule(t *testing.T) {
	repo, _, mail, _, _, svc := newNotificationFixture()
	scheduleID := "missing"

	_, err := svc.Create(context.Background(), CreateNotificationRequest{
		UserIDs:            []string{"user-1"},
		Title:              "New session scheduled",
		Content:            "Week 1 starts Monday.",
		Type:               models.NotificationSchedule,
		TeachingScheduleID: &scheduleID,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.batches)
	assert.Empty(t, mail.sent)
}

func TestNotificationServiceCreateInvalidType(t *testing.T) {
	_, _, _, _, _, svc := newNotificationFixture()

	_, err := svc.Create(context.Background(), CreateNotificationRequest{
		UserIDs: []string{"user-1"},
		Title:   "x",
		Content: "y",
		Type:    models.NotificationType("broadcast"),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestNotificationServiceCreateDefersFutureDelivery(t *testing.T) {
	_, _, mail, queue, _, svc := newNotificationFixture()
	future := time.Now().Add(2 * time.Hour)

	_, err := svc.Create(context.Background(), CreateNotificationRequest{
		UserIDs:          []string{"user-1"},
		Title:            "Session reminder",
		Content:          "Starts in two hours.",
		Type:             models.NotificationSchedule,
		NotificationTime: &future,
	})
	require.NoError(t, err)
	assert.Empty(t, mail.sent)
	require.Len(t, queue.deferred, 1)
	assert.Equal(t, "notification.email", queue.deferred[0].Type)
	assert.InDelta(t, (2 * time.Hour).Seconds(), queue.delays[0].Seconds(), 5)
}

func TestNotificationServiceCreatePastTimeDeliversNow(t *testing.T) {
	_, _, mail, queue, _, svc := newNotificationFixture()
	past := time.Now().Add(-time.Hour)

	_, err := svc.Create(context.Background(), CreateNotificationRequest{
		UserIDs:          []string{"user-1", "user-2"},
		Title:            "Session reminder",
		Content:          "Already started.",
		Type:             models.NotificationSchedule,
		NotificationTime: &past,
	})
	require.NoError(t, err)
	assert.Empty(t, queue.deferred)
	assert.Len(t, mail.sent, 2)
}

func TestNotificationServiceEmailFailureDoesNotFailCreate(t *testing.T) {
	_, _, mail, _, metrics, svc := newNotificationFixture()
	mail.err = assert.AnError

	_, err := svc.Create(context.Background(), CreateNotificationRequest{
		UserIDs: []string{"user-1", "user-2"},
		Title:   "New session scheduled",
		Content: "Week 1 starts Monday.",
		Type:    models.NotificationSchedule,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, metrics.failed)
	assert.Equal(t, 0, metrics.sent)
}

func TestNotificationServiceHandleEmailJob(t *testing.T) {
	_, _, mail, _, _, svc := newNotificationFixture()

	err := svc.HandleEmailJob(context.Background(), jobs.Job{
		Type: "notification.email",
		Payload: emailDelivery{
			UserIDs: []string{"user-1", "user-2"},
			Title:   "Session reminder",
			Content: "Starts soon.",
			Type:    models.NotificationSchedule,
		},
	})
	require.NoError(t, err)
	assert.Len(t, mail.sent, 2)

	err = svc.HandleEmailJob(context.Background(), jobs.Job{Payload: "bogus"})
	require.Error(t, err)
}

func TestNotificationServiceNotifyScheduleCreated(t *testing.T) {
	repo, _, mail, _, _, svc := newNotificationFixture()
	schedule := &models.TeachingSchedule{
		ID:              "sched-1",
		AcademicClassID: "class-1",
		Title:           "Week 1",
		StartTime:       time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}

	require.NoError(t, svc.NotifyScheduleCreated(context.Background(), schedule, nil))
	require.Len(t, repo.batches, 1)
	assert.Len(t, repo.batches[0], 2)
	for _, notification := range repo.batches[0] {
		assert.Equal(t, models.NotificationSchedule, notification.Type)
		require.NotNil(t, notification.TeachingScheduleID)
		assert.Equal(t, "sched-1", *notification.TeachingScheduleID)
	}
	assert.Len(t, mail.sent, 2)
}

func TestNotificationServiceNotifyScheduleCreatedWithReminderTime(t *testing.T) {
	repo, _, mail, queue, _, svc := newNotificationFixture()
	schedule := &models.TeachingSchedule{
		ID:              "sched-1",
		AcademicClassID: "class-1",
		Title:           "Week 1",
		StartTime:       time.Now().Add(3 * time.Hour),
	}
	notifyAt := time.Now().Add(2 * time.Hour)

	require.NoError(t, svc.NotifyScheduleCreated(context.Background(), schedule, &notifyAt))
	require.Len(t, repo.batches, 1)
	for _, notification := range repo.batches[0] {
		require.NotNil(t, notification.NotificationTime)
		assert.True(t, notification.NotificationTime.Equal(notifyAt))
	}
	assert.Empty(t, mail.sent)
	require.Len(t, queue.deferred, 1)
}

func TestNotificationServiceNotifyScheduleCreatedNoRecipients(t *testing.T) {
	repo, students, _, _, _, svc := newNotificationFixture()
	students.userIDs = nil

	require.NoError(t, svc.NotifyScheduleCreated(context.Background(), &models.TeachingSchedule{
		ID: "sched-1", AcademicClassID: "class-1", Title: "Week 1", StartTime: time.Now(),
	}, nil))
	assert.Empty(t, repo.batches)
}

func TestNotificationServiceListForUser(t *testing.T) {
	repo, _, _, _, metrics, svc := newNotificationFixture()
	repo.byUser = []models.Notification{{ID: "notif-1"}}
	repo.total = 7
	repo.unread = 3

	notifications, pagination, unread, err := svc.ListForUser(context.Background(), "user-1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, notifications, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 7, pagination.TotalCount)
	assert.Equal(t, 3, unread)
	assert.Equal(t, []string{"notifications_list"}, metrics.observed)
}

func TestNotificationServiceMarkAsRead(t *testing.T) {
	repo, _, _, _, _, svc := newNotificationFixture()

	require.NoError(t, svc.MarkAsRead(context.Background(), "notif-1", "user-1"))
	assert.Equal(t, []string{"notif-1"}, repo.readIDs)

	err := svc.MarkAsRead(context.Background(), "missing", "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestNotificationServiceMarkAllAsRead(t *testing.T) {
	repo, _, _, _, _, svc := newNotificationFixture()

	updated, err := svc.MarkAllAsRead(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 4, updated)
	assert.Equal(t, []string{"user-1"}, repo.allRead)
}
