package models

import "time"

// AttendanceStatus enumerates session attendance states.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// Valid reports whether the status is a known value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

// SessionAttendance records a student's participation in one teaching
// session. Unique per (schedule, student) pair.
type SessionAttendance struct {
	ID                string           `db:"id" json:"id"`
	ScheduleID        string           `db:"schedule_id" json:"schedule_id"`
	StudentAcademicID string           `db:"student_academic_id" json:"student_academic_id"`
	Status            AttendanceStatus `db:"status" json:"status"`
	JoinTime          *time.Time       `db:"join_time" json:"join_time,omitempty"`
	LeaveTime         *time.Time       `db:"leave_time" json:"leave_time,omitempty"`
	DurationMinutes   *int             `db:"duration_minutes" json:"duration_minutes,omitempty"`
	Notes             *string          `db:"notes" json:"notes,omitempty"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time        `db:"updated_at" json:"updated_at"`
}

// ScheduleAttendanceStats aggregates attendance counts for one schedule.
type ScheduleAttendanceStats struct {
	TotalStudents int `json:"total_students"`
	Present       int `json:"present"`
	Absent        int `json:"absent"`
	Late          int `json:"late"`
	Excused       int `json:"excused"`
}

// StudentAttendanceStats aggregates a student's attendance across all
// their sessions. Present and late both count toward the percentage.
type StudentAttendanceStats struct {
	TotalSessions        int `json:"total_sessions"`
	Attended             int `json:"attended"`
	Absent               int `json:"absent"`
	Late                 int `json:"late"`
	Excused              int `json:"excused"`
	AttendancePercentage int `json:"attendance_percentage"`
}
