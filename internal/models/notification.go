package models

import "time"

// NotificationType categorises notification events.
type NotificationType string

const (
	NotificationCourse     NotificationType = "course"
	NotificationAssignment NotificationType = "assignment"
	NotificationQuiz       NotificationType = "quiz"
	NotificationSystem     NotificationType = "system"
	NotificationMessage    NotificationType = "message"
	NotificationSchedule   NotificationType = "schedule"
)

// Valid reports whether the type is a known value.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationCourse, NotificationAssignment, NotificationQuiz,
		NotificationSystem, NotificationMessage, NotificationSchedule:
		return true
	}
	return false
}

// Notification is one persisted notification row for a single user. A
// logical notification event creates one row per recipient.
type Notification struct {
	ID                 string           `db:"id" json:"id"`
	UserID             string           `db:"user_id" json:"user_id"`
	Title              string           `db:"title" json:"title"`
	Content            string           `db:"content" json:"content"`
	Type               NotificationType `db:"type" json:"type"`
	TeachingScheduleID *string          `db:"teaching_schedule_id" json:"teaching_schedule_id,omitempty"`
	NotificationTime   *time.Time       `db:"notification_time" json:"notification_time,omitempty"`
	IsRead             bool             `db:"is_read" json:"is_read"`
	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at" json:"updated_at"`
}
