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

type passwordResetRepository struct {
	db *sql.DB
}

func NewPasswordResetRepository(conn *sql.DB) interfaces.PasswordResetRepository {
	return &passwordResetRepository{db: conn}
}

func (r *passwordResetRepository) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM password_resets WHERE user_id = $1 AND created_at >= $2`,
		userID, since,
	).Scan(&n)
	if err != nil {
		return 0, apperr.Internal(err, "count password resets", "user_id", userID)
	}
	return n, nil
}

func (r *passwordResetRepository) Create(ctx context.Context, p *models.PasswordReset) error {
	query := `
		INSERT INTO password_resets (id, user_id, token_hash, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query, p.ID, p.UserID, p.TokenHash, p.ExpiresAt, p.Used, p.CreatedAt).
		Scan(&p.CreatedAt)
	if err != nil {
		return apperr.Internal(err, "create password reset", "user_id", p.UserID)
	}
	return nil
}

func (r *passwordResetRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordReset, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, used, created_at
		FROM password_resets
		WHERE token_hash = $1
	`

	var p models.PasswordReset
	err := r.db.QueryRowContext(ctx, query, tokenHash).
		Scan(&p.ID, &p.UserID, &p.TokenHash, &p.ExpiresAt, &p.Used, &p.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound("Reset request not found")
		}
		return nil, apperr.Internal(err, "get password reset")
	}
	return &p, nil
}

// Consume flips used with a conditional update and writes the new hash in
// the same transaction, so two callers holding the same token cannot both
// succeed.
func (r *passwordResetRepository) Consume(ctx context.Context, resetID, userID, passwordHash string) error {
	return db.WithTx(ctx, r.db, nil, func(ctx context.Context, tx db.DBTX) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE password_resets SET used = TRUE WHERE id = $1 AND user_id = $2 AND used = FALSE`,
			resetID, userID,
		)
		if err != nil {
			return apperr.Internal(err, "mark password reset used", "reset_id", resetID)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return apperr.Internal(err, "mark password reset used", "reset_id", resetID)
		}
		if n == 0 {
			return interfaces.ErrResetConsumed
		}
		return updatePasswordHash(ctx, tx, userID, passwordHash)
	})
}

func (r *passwordResetRepository) DeleteExpiredOrUsed(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM password_resets WHERE expires_at < $1 OR used = TRUE`,
		now,
	)
	if err != nil {
		return 0, apperr.Internal(err, "delete expired password resets")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Internal(err, "delete expired password resets")
	}
	return n, nil
}
