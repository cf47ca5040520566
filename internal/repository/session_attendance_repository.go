package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/lms-api/internal/models"
)

// ErrDuplicate signals a unique constraint violation on insert.
var ErrDuplicate = errors.New("duplicate record")

// SessionAttendanceRepository persists attendance records for sessions.
type SessionAttendanceRepository struct {
	db *sqlx.DB
}

// NewSessionAttendanceRepository constructs the repository.
func NewSessionAttendanceRepository(db *sqlx.DB) *SessionAttendanceRepository {
	return &SessionAttendanceRepository{db: db}
}

const attendanceColumns = `id, schedule_id, student_academic_id, status, join_time,
	leave_time, duration_minutes, notes, created_at, updated_at`

// FindByID returns a single attendance record or sql.ErrNoRows.
func (r *SessionAttendanceRepository) FindByID(ctx context.Context, id string) (*models.SessionAttendance, error) {
	query := fmt.Sprintf(`SELECT %s FROM session_attendances WHERE id = $1`, attendanceColumns)
	var attendance models.SessionAttendance
	if err := r.db.GetContext(ctx, &attendance, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find session attendance: %w", err)
	}
	return &attendance, nil
}

// FindByScheduleAndStudent returns the record for one student in one session.
func (r *SessionAttendanceRepository) FindByScheduleAndStudent(ctx context.Context, scheduleID, studentAcademicID string) (*models.SessionAttendance, error) {
	query := fmt.Sprintf(`SELECT %s FROM session_attendances
		WHERE schedule_id = $1 AND student_academic_id = $2`, attendanceColumns)
	var attendance models.SessionAttendance
	if err := r.db.GetContext(ctx, &attendance, query, scheduleID, studentAcademicID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find attendance by schedule and student: %w", err)
	}
	return &attendance, nil
}

// ListBySchedule returns every attendance record for one session.
func (r *SessionAttendanceRepository) ListBySchedule(ctx context.Context, scheduleID string) ([]models.SessionAttendance, error) {
	query := fmt.Sprintf(`SELECT %s FROM session_attendances
		WHERE schedule_id = $1 ORDER BY created_at ASC`, attendanceColumns)
	var attendances []models.SessionAttendance
	if err := r.db.SelectContext(ctx, &attendances, query, scheduleID); err != nil {
		return nil, fmt.Errorf("list schedule attendances: %w", err)
	}
	return attendances, nil
}

// ListByStudent returns a student's attendance history, newest session first.
func (r *SessionAttendanceRepository) ListByStudent(ctx context.Context, studentAcademicID string) ([]models.SessionAttendance, error) {
	const query = `SELECT a.id, a.schedule_id, a.student_academic_id, a.status, a.join_time,
		       a.leave_time, a.duration_minutes, a.notes, a.created_at, a.updated_at
		FROM session_attendances a
		JOIN teaching_schedules s ON s.id = a.schedule_id
		WHERE a.student_academic_id = $1
		ORDER BY s.start_time DESC`
	var attendances []models.SessionAttendance
	if err := r.db.SelectContext(ctx, &attendances, query, studentAcademicID); err != nil {
		return nil, fmt.Errorf("list student attendances: %w", err)
	}
	return attendances, nil
}

// Create inserts a new attendance record. A duplicate schedule/student pair
// maps to ErrDuplicate via the unique index.
func (r *SessionAttendanceRepository) Create(ctx context.Context, attendance *models.SessionAttendance) error {
	if attendance.ID == "" {
		attendance.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	attendance.CreatedAt = now
	attendance.UpdatedAt = now
	const query = `INSERT INTO session_attendances (id, schedule_id, student_academic_id,
			status, join_time, leave_time, duration_minutes, notes, created_at, updated_at)
		VALUES (:id, :schedule_id, :student_academic_id, :status, :join_time,
			:leave_time, :duration_minutes, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, attendance); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("create session attendance: %w", err)
	}
	return nil
}

// Update overwrites mutable attendance fields.
func (r *SessionAttendanceRepository) Update(ctx context.Context, attendance *models.SessionAttendance) error {
	attendance.UpdatedAt = time.Now().UTC()
	const query = `UPDATE session_attendances
		SET status = :status, join_time = :join_time, leave_time = :leave_time,
		    duration_minutes = :duration_minutes, notes = :notes, updated_at = :updated_at
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, attendance)
	if err != nil {
		return fmt.Errorf("update session attendance: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated attendance rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an attendance record.
func (r *SessionAttendanceRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM session_attendances WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete session attendance: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted attendance rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
