package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-api/internal/models"
)

func newClassMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAcademicClassRepositoryList(t *testing.T) {
	db, mock, cleanup := newClassMock(t)
	defer cleanup()
	repo := NewAcademicClassRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM academic_classes").
		WithArgs("2026-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "class_code", "class_name", "semester", "status", "created_at", "updated_at",
	}).AddRow("class-1", "BE-101", "Backend 101", "2026-1", "active", now, now)
	mock.ExpectQuery("SELECT (.+) FROM academic_classes").
		WithArgs("2026-1", 20, 0).
		WillReturnRows(rows)

	classes, total, err := repo.List(context.Background(), models.AcademicClassFilter{
		Semester: "2026-1",
		Page:     1,
		PageSize: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, classes, 1)
	assert.Equal(t, "BE-101", classes[0].ClassCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcademicClassRepositoryExistsByCode(t *testing.T) {
	db, mock, cleanup := newClassMock(t)
	defer cleanup()
	repo := NewAcademicClassRepository(db)

	mock.ExpectQuery("SELECT 1 FROM academic_classes").
		WithArgs("BE-101", "").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByCode(context.Background(), "BE-101", "")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery("SELECT 1 FROM academic_classes").
		WithArgs("FE-200", "").
		WillReturnError(sql.ErrNoRows)

	exists, err = repo.ExistsByCode(context.Background(), "FE-200", "")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAcademicClassRepositoryCreateUpdate(t *testing.T) {
	db, mock, cleanup := newClassMock(t)
	defer cleanup()
	repo := NewAcademicClassRepository(db)

	mock.ExpectExec("INSERT INTO academic_classes").
		WillReturnResult(sqlmock.NewResult(1, 1))

	class := &models.AcademicClass{
		ClassCode: "BE-101",
		ClassName: "Backend 101",
		Semester:  "2026-1",
		Status:    models.ClassStatusActive,
	}
	require.NoError(t, repo.Create(context.Background(), class))
	assert.NotEmpty(t, class.ID)

	mock.ExpectExec("UPDATE academic_classes").
		WillReturnResult(sqlmock.NewResult(1, 1))
	class.ClassName = "Backend Fundamentals"
	require.NoError(t, repo.Update(context.Background(), class))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcademicClassRepositoryDeleteNotFound(t *testing.T) {
	db, mock, cleanup := newClassMock(t)
	defer cleanup()
	repo := NewAcademicClassRepository(db)

	mock.ExpectExec("DELETE FROM academic_classes").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
