package interfaces

import (
	"context"
	"errors"
	"time"

	"expensetracker/internal/models"
)

// UserRepository persists accounts. Lookups of a missing user return a
// NOT_FOUND coded error; a duplicate email on Create returns CONFLICT.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePasswordHash(ctx context.Context, userID string, hash string) error
}

// PasswordResetRepository persists reset requests.
type PasswordResetRepository interface {
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)
	Create(ctx context.Context, reset *models.PasswordReset) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordReset, error)
	// Consume marks the request used and replaces the user's password hash in
	// one transaction. It returns ErrResetConsumed when the request was
	// already used by a concurrent caller.
	Consume(ctx context.Context, resetID, userID, passwordHash string) error
	DeleteExpiredOrUsed(ctx context.Context, now time.Time) (int64, error)
}

// ErrResetConsumed is returned by Consume when another caller used the
// request first.
var ErrResetConsumed = errors.New("password reset already consumed")
