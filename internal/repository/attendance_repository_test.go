package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/uniportal-api/internal/models"
)

func TestAttendanceRepositoryUpsertOnConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "enrollment_id", "date", "status", "remarks", "created_at", "updated_at"}).
		AddRow("a1", "e1", date, "PRESENT", nil, time.Now(), time.Now())
	mock.ExpectQuery(`INSERT INTO attendance .*ON CONFLICT \(enrollment_id, date\).*RETURNING`).
		WithArgs(sqlmock.AnyArg(), "e1", date, models.AttendanceStatusPresent, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	stored, err := repo.Upsert(context.Background(), &models.Attendance{
		EnrollmentID: "e1",
		Date:         date,
		Status:       models.AttendanceStatusPresent,
	})
	require.NoError(t, err)
	assert.Equal(t, "a1", stored.ID)
	assert.Equal(t, models.AttendanceStatusPresent, stored.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryBulkUpsertSingleTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO attendance .*ON CONFLICT \(enrollment_id, date\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO attendance .*ON CONFLICT \(enrollment_id, date\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.BulkUpsert(context.Background(), []models.Attendance{
		{EnrollmentID: "e1", Date: date, Status: models.AttendanceStatusPresent},
		{EnrollmentID: "e2", Date: date, Status: models.AttendanceStatusAbsent},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryBulkUpsertRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO attendance`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO attendance`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.BulkUpsert(context.Background(), []models.Attendance{
		{EnrollmentID: "e1", Date: date, Status: models.AttendanceStatusPresent},
		{EnrollmentID: "e2", Date: date, Status: models.AttendanceStatusLate},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryBulkUpsertEmptyBatchNoop(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	require.NoError(t, repo.BulkUpsert(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryEnrollmentSummary(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	rows := sqlmock.NewRows([]string{"present", "absent", "late", "total"}).AddRow(8, 1, 1, 10)
	mock.ExpectQuery(`SELECT .*FROM attendance WHERE enrollment_id = \$1`).
		WithArgs("e1").
		WillReturnRows(rows)

	summary, err := repo.EnrollmentSummary(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, 8, summary.Present)
	assert.Equal(t, 10, summary.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
