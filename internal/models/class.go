package models

import "time"

// AcademicClassStatus enumerates class lifecycle states.
type AcademicClassStatus string

const (
	ClassStatusActive    AcademicClassStatus = "active"
	ClassStatusCompleted AcademicClassStatus = "completed"
	ClassStatusCancelled AcademicClassStatus = "cancelled"
)

// Valid reports whether the status is a known value.
func (s AcademicClassStatus) Valid() bool {
	switch s {
	case ClassStatusActive, ClassStatusCompleted, ClassStatusCancelled:
		return true
	}
	return false
}

// AcademicClass represents an academic class (cohort) for a semester.
type AcademicClass struct {
	ID        string              `db:"id" json:"id"`
	ClassCode string              `db:"class_code" json:"class_code"`
	ClassName string              `db:"class_name" json:"class_name"`
	Semester  string              `db:"semester" json:"semester"`
	Status    AcademicClassStatus `db:"status" json:"status"`
	CreatedAt time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt time.Time           `db:"updated_at" json:"updated_at"`
}

// AcademicClassFilter defines filter criteria for listing classes.
type AcademicClassFilter struct {
	Semester string
	Status   *AcademicClassStatus
	Search   string
	Page     int
	PageSize int
}

// AcademicClassCourse maps a course onto an academic class.
type AcademicClassCourse struct {
	ID        string    `db:"id" json:"id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// StudentAcademic is a student's enrollment record in an academic class.
type StudentAcademic struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	ClassID     string    `db:"academic_class_id" json:"academic_class_id"`
	StudentCode string    `db:"student_code" json:"student_code"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
