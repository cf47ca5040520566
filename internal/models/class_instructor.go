package models

import "time"

// AcademicClassInstructor joins an instructor to an academic class.
// An assignment cannot be deleted while teaching schedules reference it.
type AcademicClassInstructor struct {
	ID           string    `db:"id" json:"id"`
	ClassID      string    `db:"class_id" json:"class_id"`
	InstructorID string    `db:"instructor_id" json:"instructor_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// AcademicClassInstructorDetail enriches an assignment with display names.
type AcademicClassInstructorDetail struct {
	AcademicClassInstructor
	ClassName      string `db:"class_name" json:"class_name"`
	InstructorName string `db:"instructor_name" json:"instructor_name"`
}
