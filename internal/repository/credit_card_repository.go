package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"expensetracker/internal/apperr"
	"expensetracker/internal/interfaces"
	"expensetracker/internal/models"
)

type creditCardRepository struct {
	db *sql.DB
}

func NewCreditCardRepository(conn *sql.DB) interfaces.CreditCardRepository {
	return &creditCardRepository{db: conn}
}

func (r *creditCardRepository) Create(ctx context.Context, c *models.CreditCard) error {
	query := `
		INSERT INTO credit_cards (id, user_id, name, color)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	if err := r.db.QueryRowContext(ctx, query, c.ID, c.UserID, c.Name, c.Color).Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		return apperr.Internal(err, "create credit card", "user_id", c.UserID)
	}
	return nil
}

func (r *creditCardRepository) GetByID(ctx context.Context, id string) (*models.CreditCard, error) {
	query := `
		SELECT id, user_id, name, color, created_at, updated_at
		FROM credit_cards
		WHERE id = $1
	`
	var c models.CreditCard
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound(fmt.Sprintf("Credit card with ID %s not found", id))
		}
		return nil, apperr.Internal(err, "get credit card", "credit_card_id", id)
	}
	return &c, nil
}

func (r *creditCardRepository) List(ctx context.Context, userID string) ([]models.CreditCard, error) {
	query := `
		SELECT id, user_id, name, color, created_at, updated_at
		FROM credit_cards
		WHERE user_id = $1
		ORDER BY name ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperr.Internal(err, "list credit cards", "user_id", userID)
	}
	defer rows.Close()

	cards := []models.CreditCard{}
	for rows.Next() {
		var c models.CreditCard
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, apperr.Internal(err, "scan credit card")
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "iterate credit cards")
	}
	return cards, nil
}

func (r *creditCardRepository) Update(ctx context.Context, id string, req *models.UpdateCreditCardRequest) error {
	setValues := []string{}
	args := []any{}
	argID := 1

	if req.Name != nil {
		setValues = append(setValues, fmt.Sprintf("name = $%d", argID))
		args = append(args, *req.Name)
		argID++
	}
	if req.Color != nil {
		setValues = append(setValues, fmt.Sprintf("color = $%d", argID))
		args = append(args, *req.Color)
		argID++
	}
	if len(setValues) == 0 {
		return apperr.BadRequest("No fields to update")
	}

	setValues = append(setValues, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf("UPDATE credit_cards SET %s WHERE id = $%d", strings.Join(setValues, ", "), argID)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperr.Internal(err, "update credit card", "credit_card_id", id)
	}
	return expectOneRow(res, "Credit card", id)
}

func (r *creditCardRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM credit_cards WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal(err, "delete credit card", "credit_card_id", id)
	}
	return expectOneRow(res, "Credit card", id)
}
