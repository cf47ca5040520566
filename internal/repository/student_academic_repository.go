package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
)

// StudentAcademicRepository reads student enrollment records.
type StudentAcademicRepository struct {
	db *sqlx.DB
}

// NewStudentAcademicRepository constructs the repository.
func NewStudentAcademicRepository(db *sqlx.DB) *StudentAcademicRepository {
	return &StudentAcademicRepository{db: db}
}

// FindByID returns a single enrollment or sql.ErrNoRows.
func (r *StudentAcademicRepository) FindByID(ctx context.Context, id string) (*models.StudentAcademic, error) {
	const query = `SELECT id, user_id, academic_class_id, student_code, created_at, updated_at
		FROM student_academics WHERE id = $1`
	var student models.StudentAcademic
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student academic: %w", err)
	}
	return &student, nil
}

// FindByUserAndClass returns a user's enrollment in one class.
func (r *StudentAcademicRepository) FindByUserAndClass(ctx context.Context, userID, classID string) (*models.StudentAcademic, error) {
	const query = `SELECT id, user_id, academic_class_id, student_code, created_at, updated_at
		FROM student_academics WHERE user_id = $1 AND academic_class_id = $2`
	var student models.StudentAcademic
	if err := r.db.GetContext(ctx, &student, query, userID, classID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &student, nil
}

// ListByClass returns every enrollment of one class.
func (r *StudentAcademicRepository) ListByClass(ctx context.Context, classID string) ([]models.StudentAcademic, error) {
	const query = `SELECT id, user_id, academic_class_id, student_code, created_at, updated_at
		FROM student_academics WHERE academic_class_id = $1 ORDER BY student_code ASC`
	var students []models.StudentAcademic
	if err := r.db.SelectContext(ctx, &students, query, classID); err != nil {
		return nil, fmt.Errorf("list class students: %w", err)
	}
	return students, nil
}

// ListUserIDsByClass returns the user ids enrolled in one class, used
// to fan notifications out to a whole class.
func (r *StudentAcademicRepository) ListUserIDsByClass(ctx context.Context, classID string) ([]string, error) {
	const query = `SELECT user_id FROM student_academics WHERE academic_class_id = $1`
	var userIDs []string
	if err := r.db.SelectContext(ctx, &userIDs, query, classID); err != nil {
		return nil, fmt.Errorf("list class user ids: %w", err)
	}
	return userIDs, nil
}
