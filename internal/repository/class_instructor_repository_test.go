package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-api/internal/models"
)

func newClassInstructorMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestClassInstructorRepositoryListByClass(t *testing.T) {
	db, mock, cleanup := newClassInstructorMock(t)
	defer cleanup()
	repo := NewClassInstructorRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "class_id", "instructor_id", "created_at", "updated_at", "class_name", "instructor_name",
	}).AddRow("assign-1", "class-1", "instructor-1", now, now, "Backend 101", "Jane Instructor")
	mock.ExpectQuery("SELECT (.+) FROM academic_class_instructors ci").
		WithArgs("class-1").
		WillReturnRows(rows)

	assignments, err := repo.ListByClass(context.Background(), "class-1")
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, "Jane Instructor", assignments[0].InstructorName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassInstructorRepositoryExists(t *testing.T) {
	db, mock, cleanup := newClassInstructorMock(t)
	defer cleanup()
	repo := NewClassInstructorRepository(db)

	mock.ExpectQuery("SELECT 1 FROM academic_class_instructors").
		WithArgs("class-1", "instructor-1", "").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.Exists(context.Background(), "class-1", "instructor-1", "")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery("SELECT 1 FROM academic_class_instructors").
		WithArgs("class-1", "instructor-2", "").
		WillReturnError(sql.ErrNoRows)

	exists, err = repo.Exists(context.Background(), "class-1", "instructor-2", "")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestClassInstructorRepositoryCreateUpdateDelete(t *testing.T) {
	db, mock, cleanup := newClassInstructorMock(t)
	defer cleanup()
	repo := NewClassInstructorRepository(db)

	mock.ExpectExec("INSERT INTO academic_class_instructors").
		WillReturnResult(sqlmock.NewResult(1, 1))

	assignment := &models.AcademicClassInstructor{ClassID: "class-1", InstructorID: "instructor-1"}
	require.NoError(t, repo.Create(context.Background(), assignment))
	assert.NotEmpty(t, assignment.ID)

	mock.ExpectExec("UPDATE academic_class_instructors").
		WillReturnResult(sqlmock.NewResult(1, 1))
	assignment.InstructorID = "instructor-2"
	require.NoError(t, repo.Update(context.Background(), assignment))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM academic_class_instructors WHERE id = $1")).
		WithArgs(assignment.ID).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Delete(context.Background(), assignment.ID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassInstructorRepositoryDeleteNotFound(t *testing.T) {
	db, mock, cleanup := newClassInstructorMock(t)
	defer cleanup()
	repo := NewClassInstructorRepository(db)

	mock.ExpectExec("DELETE FROM academic_class_instructors").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
