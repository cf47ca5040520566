package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
)

// TeachingScheduleRepository persists teaching schedules.
type TeachingScheduleRepository struct {
	db *sqlx.DB
}

// NewTeachingScheduleRepository constructs the repository.
func NewTeachingScheduleRepository(db *sqlx.DB) *TeachingScheduleRepository {
	return &TeachingScheduleRepository{db: db}
}

const scheduleColumns = `id, academic_class_id, academic_class_instructor_id, academic_class_course_id,
	title, description, start_time, end_time, meeting_link, meeting_id, meeting_password,
	status, is_recurring, recurring_pattern, recording_url, created_at, updated_at`

// FindByID returns a single schedule or sql.ErrNoRows.
func (r *TeachingScheduleRepository) FindByID(ctx context.Context, id string) (*models.TeachingSchedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM teaching_schedules WHERE id = $1`, scheduleColumns)
	var schedule models.TeachingSchedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find teaching schedule: %w", err)
	}
	return &schedule, nil
}

// List returns schedules matching the filter ordered by start time.
func (r *TeachingScheduleRepository) List(ctx context.Context, filter models.TeachingScheduleFilter) ([]models.TeachingSchedule, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	idx := 1

	if filter.AcademicClassID != "" {
		conditions = append(conditions, fmt.Sprintf("s.academic_class_id = $%d", idx))
		args = append(args, filter.AcademicClassID)
		idx++
	}
	if filter.AcademicClassInstructorID != "" {
		conditions = append(conditions, fmt.Sprintf("s.academic_class_instructor_id = $%d", idx))
		args = append(args, filter.AcademicClassInstructorID)
		idx++
	}
	if filter.InstructorID != "" {
		conditions = append(conditions, fmt.Sprintf("ci.instructor_id = $%d", idx))
		args = append(args, filter.InstructorID)
		idx++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", idx))
		args = append(args, *filter.Status)
		idx++
	}
	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("s.start_time >= $%d", idx))
		args = append(args, *filter.StartDate)
		idx++
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("s.start_time <= $%d", idx))
		args = append(args, *filter.EndDate)
		idx++
	}

	cols := make([]string, 0, 17)
	for _, col := range strings.Split(scheduleColumns, ",") {
		cols = append(cols, "s."+strings.TrimSpace(col))
	}
	query := fmt.Sprintf(`SELECT %s FROM teaching_schedules s
		JOIN academic_class_instructors ci ON ci.id = s.academic_class_instructor_id
		WHERE %s ORDER BY s.start_time ASC`, strings.Join(cols, ", "), strings.Join(conditions, " AND "))

	var schedules []models.TeachingSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, fmt.Errorf("list teaching schedules: %w", err)
	}
	return schedules, nil
}

// ListByInstructorOnDay returns the instructor's non-cancelled schedules
// overlapping the [dayStart, dayEnd) window, used for conflict checks.
func (r *TeachingScheduleRepository) ListByInstructorOnDay(ctx context.Context, instructorID string, dayStart, dayEnd time.Time) ([]models.TeachingSchedule, error) {
	cols := make([]string, 0, 17)
	for _, col := range strings.Split(scheduleColumns, ",") {
		cols = append(cols, "s."+strings.TrimSpace(col))
	}
	query := fmt.Sprintf(`SELECT %s FROM teaching_schedules s
		JOIN academic_class_instructors ci ON ci.id = s.academic_class_instructor_id
		WHERE ci.instructor_id = $1 AND s.status <> $2
		  AND s.start_time < $3 AND s.end_time > $4
		ORDER BY s.start_time ASC`, strings.Join(cols, ", "))

	var schedules []models.TeachingSchedule
	err := r.db.SelectContext(ctx, &schedules, query, instructorID, models.ScheduleStatusCancelled, dayEnd, dayStart)
	if err != nil {
		return nil, fmt.Errorf("list instructor day schedules: %w", err)
	}
	return schedules, nil
}

// CountByAssignment counts schedules referencing one class-instructor assignment.
func (r *TeachingScheduleRepository) CountByAssignment(ctx context.Context, assignmentID string) (int, error) {
	const query = `SELECT COUNT(*) FROM teaching_schedules WHERE academic_class_instructor_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, assignmentID); err != nil {
		return 0, fmt.Errorf("count assignment schedules: %w", err)
	}
	return count, nil
}

// Create inserts a new schedule.
func (r *TeachingScheduleRepository) Create(ctx context.Context, schedule *models.TeachingSchedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now
	const query = `INSERT INTO teaching_schedules (id, academic_class_id, academic_class_instructor_id,
			academic_class_course_id, title, description, start_time, end_time,
			meeting_link, meeting_id, meeting_password, status, is_recurring,
			recurring_pattern, recording_url, created_at, updated_at)
		VALUES (:id, :academic_class_id, :academic_class_instructor_id, :academic_class_course_id,
			:title, :description, :start_time, :end_time, :meeting_link, :meeting_id,
			:meeting_password, :status, :is_recurring, :recurring_pattern, :recording_url,
			:created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("create teaching schedule: %w", err)
	}
	return nil
}

// Update overwrites mutable schedule fields.
func (r *TeachingScheduleRepository) Update(ctx context.Context, schedule *models.TeachingSchedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teaching_schedules
		SET academic_class_course_id = :academic_class_course_id, title = :title,
		    description = :description, start_time = :start_time, end_time = :end_time,
		    meeting_link = :meeting_link, meeting_id = :meeting_id,
		    meeting_password = :meeting_password, status = :status,
		    is_recurring = :is_recurring, recurring_pattern = :recurring_pattern,
		    recording_url = :recording_url, updated_at = :updated_at
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, schedule)
	if err != nil {
		return fmt.Errorf("update teaching schedule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated schedule rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus transitions the lifecycle status only.
func (r *TeachingScheduleRepository) UpdateStatus(ctx context.Context, id string, status models.ScheduleStatus) error {
	const query = `UPDATE teaching_schedules SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update schedule status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check status rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateRecordingURL attaches a session recording link.
func (r *TeachingScheduleRepository) UpdateRecordingURL(ctx context.Context, id, recordingURL string) error {
	const query = `UPDATE teaching_schedules SET recording_url = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, recordingURL, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update schedule recording: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check recording rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a schedule. Attendance rows cascade at the database level.
func (r *TeachingScheduleRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM teaching_schedules WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete teaching schedule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted schedule rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
