package repository

import (
	"context"
	"database/sql"
	"time"

	"expensetracker/internal/apperr"
	"expensetracker/internal/db"
	"expensetracker/internal/interfaces"
	"expensetracker/internal/models"
)

const userColumns = `id, email, name, password_hash, created_at, updated_at`

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(conn *sql.DB) interfaces.UserRepository {
	return &userRepository{db: conn}
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var name sql.NullString
	if err := row.Scan(&u.ID, &u.Email, &name, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Name = nullString(name)
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE email = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal(err, "get user by email")
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal(err, "get user by id", "user_id", id)
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (id, email, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING created_at, updated_at
	`

	now := u.CreatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	err := r.db.QueryRowContext(ctx, query, u.ID, u.Email, u.Name, u.PasswordHash, now).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("User with this email already exists")
		}
		return apperr.Internal(err, "create user")
	}
	return nil
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, userID string, hash string) error {
	return updatePasswordHash(ctx, r.db, userID, hash)
}

func updatePasswordHash(ctx context.Context, q db.DBTX, userID, hash string) error {
	res, err := q.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		hash, userID,
	)
	if err != nil {
		return apperr.Internal(err, "update password hash", "user_id", userID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Internal(err, "update password hash", "user_id", userID)
	}
	if n == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}
