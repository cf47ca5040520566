package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
)

// ClassInstructorRepository persists class-instructor assignments.
type ClassInstructorRepository struct {
	db *sqlx.DB
}

// NewClassInstructorRepository constructs the repository.
func NewClassInstructorRepository(db *sqlx.DB) *ClassInstructorRepository {
	return &ClassInstructorRepository{db: db}
}

// FindByID returns a single assignment or sql.ErrNoRows.
func (r *ClassInstructorRepository) FindByID(ctx context.Context, id string) (*models.AcademicClassInstructor, error) {
	const query = `SELECT id, class_id, instructor_id, created_at, updated_at
		FROM academic_class_instructors WHERE id = $1`
	var assignment models.AcademicClassInstructor
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find class instructor: %w", err)
	}
	return &assignment, nil
}

// ListByClass returns every assignment of one class, newest first.
func (r *ClassInstructorRepository) ListByClass(ctx context.Context, classID string) ([]models.AcademicClassInstructorDetail, error) {
	const query = `SELECT ci.id, ci.class_id, ci.instructor_id, ci.created_at, ci.updated_at,
		       c.class_name, u.full_name AS instructor_name
		FROM academic_class_instructors ci
		JOIN academic_classes c ON c.id = ci.class_id
		JOIN users u ON u.id = ci.instructor_id
		WHERE ci.class_id = $1
		ORDER BY ci.created_at DESC`
	var assignments []models.AcademicClassInstructorDetail
	if err := r.db.SelectContext(ctx, &assignments, query, classID); err != nil {
		return nil, fmt.Errorf("list class instructors: %w", err)
	}
	return assignments, nil
}

// ListByInstructor returns every assignment held by one instructor.
func (r *ClassInstructorRepository) ListByInstructor(ctx context.Context, instructorID string) ([]models.AcademicClassInstructorDetail, error) {
	const query = `SELECT ci.id, ci.class_id, ci.instructor_id, ci.created_at, ci.updated_at,
		       c.class_name, u.full_name AS instructor_name
		FROM academic_class_instructors ci
		JOIN academic_classes c ON c.id = ci.class_id
		JOIN users u ON u.id = ci.instructor_id
		WHERE ci.instructor_id = $1
		ORDER BY ci.created_at DESC`
	var assignments []models.AcademicClassInstructorDetail
	if err := r.db.SelectContext(ctx, &assignments, query, instructorID); err != nil {
		return nil, fmt.Errorf("list instructor assignments: %w", err)
	}
	return assignments, nil
}

// Exists checks for a duplicate class/instructor pair, excluding one id.
func (r *ClassInstructorRepository) Exists(ctx context.Context, classID, instructorID, excludeID string) (bool, error) {
	const query = `SELECT 1 FROM academic_class_instructors
		WHERE class_id = $1 AND instructor_id = $2 AND id <> $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, classID, instructorID, excludeID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check class instructor: %w", err)
	}
	return true, nil
}

// Create inserts a new assignment.
func (r *ClassInstructorRepository) Create(ctx context.Context, assignment *models.AcademicClassInstructor) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now
	const query = `INSERT INTO academic_class_instructors (id, class_id, instructor_id, created_at, updated_at)
		VALUES (:id, :class_id, :instructor_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create class instructor: %w", err)
	}
	return nil
}

// Update re-points an assignment at another instructor.
func (r *ClassInstructorRepository) Update(ctx context.Context, assignment *models.AcademicClassInstructor) error {
	assignment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE academic_class_instructors
		SET instructor_id = :instructor_id, updated_at = :updated_at
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, assignment)
	if err != nil {
		return fmt.Errorf("update class instructor: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated assignment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an assignment.
func (r *ClassInstructorRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM academic_class_instructors WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete class instructor: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted assignment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
