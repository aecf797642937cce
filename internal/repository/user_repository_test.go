package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/apperr"
	"expensetracker/internal/models"
)

var userCols = []string{"id", "email", "name", "password_hash", "created_at", "updated_at"}

func TestUserGetByEmail(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, email, name, password_hash, created_at, updated_at\s+FROM users\s+WHERE email = \$1`).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "alice@example.com", nil, "hash", now, now))

	u, err := NewUserRepository(conn).GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Nil(t, u.Name)
	assert.Equal(t, "hash", u.PasswordHash)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByEmailNotFound(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery(`FROM users`).WithArgs("nobody@example.com").WillReturnRows(sqlmock.NewRows(userCols))

	_, err = NewUserRepository(conn).GetByEmail(context.Background(), "nobody@example.com")
	apperr.AssertCode(t, err, apperr.CodeNotFound)
}

func TestUserGetByIDStorageError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery(`FROM users`).WithArgs("u1").WillReturnError(errors.New("connection reset"))

	_, err = NewUserRepository(conn).GetByID(context.Background(), "u1")
	apperr.AssertCode(t, err, apperr.CodeInternal)
}

func TestUserCreate(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	now := time.Now().UTC()
	name := "Alice"
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("u1", "alice@example.com", "Alice", "hash", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	u := &models.User{ID: "u1", Email: "alice@example.com", Name: &name, PasswordHash: "hash"}
	require.NoError(t, NewUserRepository(conn).Create(context.Background(), u))
	assert.Equal(t, now, u.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateIsConflict(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery(`INSERT INTO users`).WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	err = NewUserRepository(conn).Create(context.Background(), &models.User{ID: "u1", Email: "a@b.com", PasswordHash: "h"})
	apperr.AssertCode(t, err, apperr.CodeConflict)
	assert.Equal(t, "User with this email already exists", apperr.PublicMessage(err))
}

func TestUserUpdatePasswordHashMissingUser(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec(`UPDATE users SET password_hash`).WithArgs("h2", "u9").WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewUserRepository(conn).UpdatePasswordHash(context.Background(), "u9", "h2")
	apperr.AssertCode(t, err, apperr.CodeNotFound)
}
