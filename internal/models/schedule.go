package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ScheduleStatus enumerates teaching schedule lifecycle states.
// scheduled is the only non-terminal state.
type ScheduleStatus string

const (
	ScheduleStatusScheduled ScheduleStatus = "scheduled"
	ScheduleStatusCompleted ScheduleStatus = "completed"
	ScheduleStatusCancelled ScheduleStatus = "cancelled"
)

// Valid reports whether the status is a known value.
func (s ScheduleStatus) Valid() bool {
	switch s {
	case ScheduleStatusScheduled, ScheduleStatusCompleted, ScheduleStatusCancelled:
		return true
	}
	return false
}

// RawJSON holds an optional JSON document column. SQL NULL scans to a
// nil value and a nil value stores as NULL.
type RawJSON json.RawMessage

// Value implements driver.Valuer.
func (j RawJSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return []byte(j), nil
}

// Scan implements sql.Scanner.
func (j *RawJSON) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = RawJSON(v)
	default:
		return fmt.Errorf("cannot scan %T into RawJSON", src)
	}
	return nil
}

// MarshalJSON renders the stored document, or null when empty.
func (j RawJSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON stores the document verbatim.
func (j *RawJSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return fmt.Errorf("RawJSON: UnmarshalJSON on nil pointer")
	}
	*j = append((*j)[:0], data...)
	return nil
}

// TeachingSchedule represents a single teaching session of an academic class.
type TeachingSchedule struct {
	ID                        string          `db:"id" json:"id"`
	AcademicClassID           string          `db:"academic_class_id" json:"academic_class_id"`
	AcademicClassInstructorID string          `db:"academic_class_instructor_id" json:"academic_class_instructor_id"`
	AcademicClassCourseID     *string         `db:"academic_class_course_id" json:"academic_class_course_id,omitempty"`
	Title                     string          `db:"title" json:"title"`
	Description               *string         `db:"description" json:"description,omitempty"`
	StartTime                 time.Time       `db:"start_time" json:"start_time"`
	EndTime                   time.Time       `db:"end_time" json:"end_time"`
	MeetingLink               *string         `db:"meeting_link" json:"meeting_link,omitempty"`
	MeetingID                 *string         `db:"meeting_id" json:"meeting_id,omitempty"`
	MeetingPassword           *string         `db:"meeting_password" json:"meeting_password,omitempty"`
	Status                    ScheduleStatus  `db:"status" json:"status"`
	IsRecurring               bool            `db:"is_recurring" json:"is_recurring"`
	RecurringPattern          RawJSON         `db:"recurring_pattern" json:"recurring_pattern,omitempty"`
	RecordingURL              *string         `db:"recording_url" json:"recording_url,omitempty"`
	CreatedAt                 time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt                 time.Time       `db:"updated_at" json:"updated_at"`
}

// TeachingScheduleDetail carries a schedule with its attendance records.
type TeachingScheduleDetail struct {
	TeachingSchedule
	Attendances []SessionAttendance `json:"attendances"`
}

// TeachingScheduleFilter describes query params for listing schedules.
// InstructorID filters through the class-instructor assignment relation.
type TeachingScheduleFilter struct {
	AcademicClassID           string
	AcademicClassInstructorID string
	InstructorID              string
	StartDate                 *time.Time
	EndDate                   *time.Time
	Status                    *ScheduleStatus
}
