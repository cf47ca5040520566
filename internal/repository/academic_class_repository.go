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

// AcademicClassRepository persists academic classes.
type AcademicClassRepository struct {
	db *sqlx.DB
}

// NewAcademicClassRepository constructs the repository.
func NewAcademicClassRepository(db *sqlx.DB) *AcademicClassRepository {
	return &AcademicClassRepository{db: db}
}

// FindByID returns a single class or sql.ErrNoRows.
func (r *AcademicClassRepository) FindByID(ctx context.Context, id string) (*models.AcademicClass, error) {
	const query = `SELECT id, class_code, class_name, semester, status, created_at, updated_at
		FROM academic_classes WHERE id = $1`
	var class models.AcademicClass
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find academic class: %w", err)
	}
	return &class, nil
}

// List returns classes matching the filter with a total count.
func (r *AcademicClassRepository) List(ctx context.Context, filter models.AcademicClassFilter) ([]models.AcademicClass, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	idx := 1

	if filter.Semester != "" {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", idx))
		args = append(args, filter.Semester)
		idx++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", idx))
		args = append(args, *filter.Status)
		idx++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(class_code ILIKE $%d OR class_name ILIKE $%d)", idx, idx))
		args = append(args, "%"+filter.Search+"%")
		idx++
	}

	where := strings.Join(conditions, " AND ")

	countQuery := "SELECT COUNT(*) FROM academic_classes WHERE " + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count academic classes: %w", err)
	}

	query := fmt.Sprintf(`SELECT id, class_code, class_name, semester, status, created_at, updated_at
		FROM academic_classes WHERE %s ORDER BY class_code ASC LIMIT $%d OFFSET $%d`, where, idx, idx+1)
	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)

	var classes []models.AcademicClass
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list academic classes: %w", err)
	}
	return classes, total, nil
}

// ExistsByCode checks for a duplicate class code, excluding one id.
func (r *AcademicClassRepository) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	const query = `SELECT 1 FROM academic_classes WHERE class_code = $1 AND id <> $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, code, excludeID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check class code: %w", err)
	}
	return true, nil
}

// Create inserts a new class.
func (r *AcademicClassRepository) Create(ctx context.Context, class *models.AcademicClass) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now
	const query = `INSERT INTO academic_classes (id, class_code, class_name, semester, status, created_at, updated_at)
		VALUES (:id, :class_code, :class_name, :semester, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create academic class: %w", err)
	}
	return nil
}

// Update overwrites mutable class fields.
func (r *AcademicClassRepository) Update(ctx context.Context, class *models.AcademicClass) error {
	class.UpdatedAt = time.Now().UTC()
	const query = `UPDATE academic_classes
		SET class_code = :class_code, class_name = :class_name, semester = :semester,
		    status = :status, updated_at = :updated_at
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, class)
	if err != nil {
		return fmt.Errorf("update academic class: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated class rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a class.
func (r *AcademicClassRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM academic_classes WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete academic class: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted class rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
