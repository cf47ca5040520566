package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lms-api/internal/models"
)

// ClassCourseRepository reads the class-course catalog links.
type ClassCourseRepository struct {
	db *sqlx.DB
}

// NewClassCourseRepository constructs the repository.
func NewClassCourseRepository(db *sqlx.DB) *ClassCourseRepository {
	return &ClassCourseRepository{db: db}
}

// FindByID returns a single class-course link or sql.ErrNoRows.
func (r *ClassCourseRepository) FindByID(ctx context.Context, id string) (*models.AcademicClassCourse, error) {
	const query = `SELECT id, class_id, course_id, created_at
		FROM academic_class_courses WHERE id = $1`
	var course models.AcademicClassCourse
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find class course: %w", err)
	}
	return &course, nil
}

// ListByClass returns the courses linked to one class.
func (r *ClassCourseRepository) ListByClass(ctx context.Context, classID string) ([]models.AcademicClassCourse, error) {
	const query = `SELECT id, class_id, course_id, created_at
		FROM academic_class_courses WHERE class_id = $1 ORDER BY created_at ASC`
	var courses []models.AcademicClassCourse
	if err := r.db.SelectContext(ctx, &courses, query, classID); err != nil {
		return nil, fmt.Errorf("list class courses: %w", err)
	}
	return courses, nil
}
