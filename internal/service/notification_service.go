package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/jobs"
	"github.com/noah-isme/lms-api/pkg/mailer"
)

type notificationRepository interface {
	FindByID(ctx context.Context, id string) (*models.Notification, error)
	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]models.Notification, int, int, error)
	CreateBatch(ctx context.Context, notifications []*models.Notification) error
	MarkAsRead(ctx context.Context, id, userID string) error
	MarkAllAsRead(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, id, userID string) error
}

type notificationStudentReader interface {
	ListUserIDsByClass(ctx context.Context, classID string) ([]string, error)
}

type notificationUserReader interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

type notificationScheduleReader interface {
	FindByID(ctx context.Context, id string) (*models.TeachingSchedule, error)
}

// emailQueue delays reminder delivery until the notification time.
type emailQueue interface {
	EnqueueAfter(job jobs.Job, delay time.Duration) error
}

// notificationMetrics counts outbound emails and times the heavier
// list queries.
type notificationMetrics interface {
	EmailSent()
	EmailFailed()
	ObserveDBQuery(label string, duration time.Duration)
}

// CreateNotificationRequest fans one notification out to a set of users.
// Each recipient gets their own row. A future notification time defers
// email delivery until then; the rows are stored immediately either way.
// SendEmail defaults to true when omitted.
type CreateNotificationRequest struct {
	UserIDs            []string                `json:"user_ids" validate:"required,min=1,dive,required"`
	Title              string                  `json:"title" validate:"required"`
	Content            string                  `json:"content" validate:"required"`
	Type               models.NotificationType `json:"type" validate:"required"`
	TeachingScheduleID *string                 `json:"teaching_schedule_id"`
	NotificationTime   *time.Time              `json:"notification_time"`
	SendEmail          *bool                   `json:"send_email"`
}

// emailDelivery is the payload carried by deferred reminder jobs.
type emailDelivery struct {
	UserIDs []string
	Title   string
	Content string
	Type    models.NotificationType
}

// NotificationService stores notifications and delivers emails to the
// recipients. Email delivery is best effort; persistence failures are
// the only errors surfaced to callers.
type NotificationService struct {
	repo      notificationRepository
	schedules notificationScheduleReader
	students  notificationStudentReader
	users     notificationUserReader
	mail      mailer.Mailer
	queue     emailQueue
	metrics   notificationMetrics
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewNotificationService instantiates NotificationService. The queue and
// metrics may be nil; reminders then deliver immediately and counts are
// dropped.
func NewNotificationService(
	repo notificationRepository,
	schedules notificationScheduleReader,
	students notificationStudentReader,
	users notificationUserReader,
	mail mailer.Mailer,
	queue emailQueue,
	metrics notificationMetrics,
	validate *validator.Validate,
	logger *zap.Logger,
) *NotificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		repo:      repo,
		schedules: schedules,
		students:  students,
		users:     users,
		mail:      mail,
		queue:     queue,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Create stores one notification row per recipient and delivers the
// matching emails, deferring them when the notification time is in the
// future.
func (s *NotificationService) Create(ctx context.Context, req CreateNotificationRequest) ([]*models.Notification, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notification payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid notification type")
	}
	if req.TeachingScheduleID != nil {
		if _, err := s.schedules.FindByID(ctx, *req.TeachingScheduleID); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "teaching schedule not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teaching schedule")
		}
	}

	notifications := make([]*models.Notification, 0, len(req.UserIDs))
	for _, userID := range req.UserIDs {
		notifications = append(notifications, &models.Notification{
			UserID:             userID,
			Title:              req.Title,
			Content:            req.Content,
			Type:               req.Type,
			TeachingScheduleID: req.TeachingScheduleID,
			NotificationTime:   req.NotificationTime,
			IsRead:             false,
		})
	}
	if err := s.repo.CreateBatch(ctx, notifications); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notifications")
	}
	if req.SendEmail != nil && !*req.SendEmail {
		return notifications, nil
	}

	delivery := emailDelivery{
		UserIDs: req.UserIDs,
		Title:   req.Title,
		Content: req.Content,
		Type:    req.Type,
	}
	if req.NotificationTime != nil {
		if delay := req.NotificationTime.Sub(s.now()); delay > 0 && s.queue != nil {
			job := jobs.Job{Type: "notification.email", Payload: delivery}
			if err := s.queue.EnqueueAfter(job, delay); err != nil {
				s.logger.Warn("failed to defer notification emails", zap.Error(err))
			}
			return notifications, nil
		}
	}
	s.deliverEmails(ctx, delivery)
	return notifications, nil
}

// HandleEmailJob is the worker entry point for deferred reminders.
func (s *NotificationService) HandleEmailJob(ctx context.Context, job jobs.Job) error {
	delivery, ok := job.Payload.(emailDelivery)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}
	s.deliverEmails(ctx, delivery)
	return nil
}

// ListForUser returns a user's notifications with pagination metadata
// and the unread count.
func (s *NotificationService) ListForUser(ctx context.Context, userID string, page, pageSize int) ([]models.Notification, *models.Pagination, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	start := s.now()
	notifications, total, unread, err := s.repo.ListByUser(ctx, userID, page, pageSize)
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("notifications_list", time.Since(start))
	}
	if err != nil {
		return nil, nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	pagination := &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
	return notifications, pagination, unread, nil
}

// Get returns one notification owned by the user.
func (s *NotificationService) Get(ctx context.Context, id, userID string) (*models.Notification, error) {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notification")
	}
	if notification.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	return notification, nil
}

// MarkAsRead flips one notification of the user to read.
func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkAsRead(ctx, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}

// MarkAllAsRead flips every unread notification of the user and returns
// how many were updated.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) (int, error) {
	updated, err := s.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notifications read")
	}
	return updated, nil
}

// Delete removes one notification of the user.
func (s *NotificationService) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notification")
	}
	return nil
}

// NotifyScheduleCreated announces a new session to the enrolled students.
// A notifyAt in the future defers the announcement emails until then.
func (s *NotificationService) NotifyScheduleCreated(ctx context.Context, schedule *models.TeachingSchedule, notifyAt *time.Time) error {
	content := fmt.Sprintf("A new session %q is scheduled for %s.",
		schedule.Title, schedule.StartTime.Format("Mon, 02 Jan 2006 15:04"))
	return s.notifyClass(ctx, schedule, "New session scheduled", content, notifyAt)
}

// NotifyScheduleUpdated announces changed session details.
func (s *NotificationService) NotifyScheduleUpdated(ctx context.Context, schedule *models.TeachingSchedule) error {
	content := fmt.Sprintf("The session %q was updated. It now runs from %s to %s.",
		schedule.Title,
		schedule.StartTime.Format("Mon, 02 Jan 2006 15:04"),
		schedule.EndTime.Format("15:04"))
	return s.notifyClass(ctx, schedule, "Session updated", content, nil)
}

// NotifyScheduleCancelled announces a cancelled session.
func (s *NotificationService) NotifyScheduleCancelled(ctx context.Context, schedule *models.TeachingSchedule) error {
	content := fmt.Sprintf("The session %q on %s has been cancelled.",
		schedule.Title, schedule.StartTime.Format("Mon, 02 Jan 2006 15:04"))
	return s.notifyClass(ctx, schedule, "Session cancelled", content, nil)
}

func (s *NotificationService) notifyClass(ctx context.Context, schedule *models.TeachingSchedule, title, content string, notifyAt *time.Time) error {
	userIDs, err := s.students.ListUserIDsByClass(ctx, schedule.AcademicClassID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve class recipients")
	}
	if len(userIDs) == 0 {
		return nil
	}
	_, err = s.Create(ctx, CreateNotificationRequest{
		UserIDs:            userIDs,
		Title:              title,
		Content:            content,
		Type:               models.NotificationSchedule,
		TeachingScheduleID: &schedule.ID,
		NotificationTime:   notifyAt,
	})
	return err
}

// deliverEmails sends one email per recipient concurrently. Individual
// failures are logged and counted, never propagated.
func (s *NotificationService) deliverEmails(ctx context.Context, delivery emailDelivery) {
	if s.mail == nil {
		return
	}
	users, err := s.users.ListByIDs(ctx, delivery.UserIDs)
	if err != nil {
		s.logger.Warn("failed to resolve notification recipients", zap.Error(err))
		return
	}

	html, err := mailer.RenderNotificationEmail(delivery.Title, delivery.Content, string(delivery.Type))
	if err != nil {
		s.logger.Warn("failed to render notification email", zap.Error(err))
		return
	}

	var wg sync.WaitGroup
	for _, user := range users {
		if user.Email == "" {
			continue
		}
		wg.Add(1)
		go func(user models.User) {
			defer wg.Done()
			msg := mailer.Message{
				To:      mailer.Recipient{Name: user.FullName, Email: user.Email},
				Subject: delivery.Title,
				Text:    delivery.Content,
				HTML:    html,
			}
			if err := s.mail.Send(ctx, msg); err != nil {
				if s.metrics != nil {
					s.metrics.EmailFailed()
				}
				s.logger.Warn("notification email failed",
					zap.String("user_id", user.ID),
					zap.Error(err))
				return
			}
			if s.metrics != nil {
				s.metrics.EmailSent()
			}
		}(user)
	}
	wg.Wait()
}
