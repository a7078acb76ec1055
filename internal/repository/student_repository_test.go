package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/uniportal-api/internal/models"
)

func TestStudentRepositoryCreateWithUserCommits(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO students").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	user := &models.User{Username: "astudent", Email: "a@campus.edu", PasswordHash: "hash", FullName: "A Student", Role: models.RoleStudent, Active: true}
	student := &models.Student{RegistrationNo: "REG-1001", Department: "CS", Program: "BSc"}
	require.NoError(t, repo.CreateWithUser(context.Background(), user, student))
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, user.ID, student.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateWithUserRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO students").
		WillReturnError(errors.New("duplicate key value violates unique constraint"))
	mock.ExpectRollback()

	user := &models.User{Username: "astudent", Email: "a@campus.edu", PasswordHash: "hash", FullName: "A Student", Role: models.RoleStudent, Active: true}
	student := &models.Student{RegistrationNo: "REG-1001", Department: "CS", Program: "BSc"}
	err := repo.CreateWithUser(context.Background(), user, student)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeleteWithUserCommits(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id FROM students WHERE id = \$1`).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u1"))
	mock.ExpectExec(`DELETE FROM students WHERE id = \$1`).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteWithUser(context.Background(), "s1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeleteWithUserMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT user_id FROM students WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.DeleteWithUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Student{ID: "ghost", RegistrationNo: "REG-1"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByRegistrationNo(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(`SELECT 1 FROM students WHERE registration_no = \$1`).
		WithArgs("REG-1001").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	taken, err := repo.ExistsByRegistrationNo(context.Background(), "REG-1001", "")
	require.NoError(t, err)
	assert.True(t, taken)

	mock.ExpectQuery(`SELECT 1 FROM students WHERE registration_no = \$1`).
		WithArgs("REG-9999").
		WillReturnError(sql.ErrNoRows)
	taken, err = repo.ExistsByRegistrationNo(context.Background(), "REG-9999", "")
	require.NoError(t, err)
	assert.False(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}
