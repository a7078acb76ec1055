package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/uniportal-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestGradeRepositoryUpsertOnConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectExec(`INSERT INTO grades .*ON CONFLICT \(enrollment_id\)`).
		WithArgs(sqlmock.AnyArg(), "e1", "A", 4.00, nil, "t1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	grade := &models.Grade{EnrollmentID: "e1", GradeLetter: "A", GradePointValue: 4.00, GradedBy: "t1"}
	require.NoError(t, repo.Upsert(context.Background(), grade))
	assert.NotEmpty(t, grade.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryUpsertSecondSubmissionSameRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	// The conflict clause means a resubmission is still one statement,
	// updating in place rather than inserting a second row.
	mock.ExpectExec(`INSERT INTO grades .*ON CONFLICT \(enrollment_id\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO grades .*ON CONFLICT \(enrollment_id\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	first := &models.Grade{EnrollmentID: "e1", GradeLetter: "B", GradePointValue: 3.00, GradedBy: "t1"}
	require.NoError(t, repo.Upsert(context.Background(), first))
	second := &models.Grade{EnrollmentID: "e1", GradeLetter: "A", GradePointValue: 4.00, GradedBy: "t1"}
	require.NoError(t, repo.Upsert(context.Background(), second))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryFindByEnrollment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	rows := sqlmock.NewRows([]string{"id", "enrollment_id", "grade_letter", "grade_point", "remarks", "graded_by", "created_at", "updated_at"}).
		AddRow("g1", "e1", "A", 4.00, nil, "t1", time.Now(), time.Now())
	mock.ExpectQuery(`SELECT .* FROM grades WHERE enrollment_id = \$1`).
		WithArgs("e1").
		WillReturnRows(rows)

	grade, err := repo.FindByEnrollment(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "A", grade.GradeLetter)
	assert.Equal(t, 4.00, grade.GradePointValue)
	assert.NoError(t, mock.ExpectationsWereMet())
}
