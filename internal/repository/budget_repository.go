package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"expensetracker/internal/apperr"
	"expensetracker/internal/interfaces"
	"expensetracker/internal/models"
)

const budgetItemSelect = `
	SELECT bi.id, bi.budget_id, bi.item, bi.amount, bi.category_id, bi.created_at, bi.updated_at,
		c.name, c.color, c.text_color
	FROM budget_items bi
	LEFT JOIN categories c ON c.id = bi.category_id
`

type budgetRepository struct {
	db *sql.DB
}

func NewBudgetRepository(conn *sql.DB) interfaces.BudgetRepository {
	return &budgetRepository{db: conn}
}

func (r *budgetRepository) Ensure(ctx context.Context, userID string) (*models.Budget, error) {
	query := `
		INSERT INTO budgets (id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, created_at, updated_at
	`
	var b models.Budget
	err := r.db.QueryRowContext(ctx, query, uuid.NewString(), userID).
		Scan(&b.ID, &b.UserID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, apperr.Internal(err, "ensure budget", "user_id", userID)
	}
	b.Items = []models.BudgetItem{}
	return &b, nil
}

func scanBudgetItem(row rowScanner) (*models.BudgetItem, error) {
	var it models.BudgetItem
	var categoryID, name, color, textColor sql.NullString
	if err := row.Scan(
		&it.ID,
		&it.BudgetID,
		&it.Item,
		&it.Amount,
		&categoryID,
		&it.CreatedAt,
		&it.UpdatedAt,
		&name,
		&color,
		&textColor,
	); err != nil {
		return nil, err
	}
	it.CategoryID = nullString(categoryID)
	if categoryID.Valid && name.Valid {
		it.Category = &models.BudgetItemCategory{
			ID:        categoryID.String,
			Name:      name.String,
			Color:     color.String,
			TextColor: textColor.String,
		}
	}
	return &it, nil
}

func (r *budgetRepository) ListItems(ctx context.Context, budgetID string) ([]models.BudgetItem, error) {
	rows, err := r.db.QueryContext(ctx, budgetItemSelect+` WHERE bi.budget_id = $1 ORDER BY bi.created_at ASC`, budgetID)
	if err != nil {
		return nil, apperr.Internal(err, "list budget items", "budget_id", budgetID)
	}
	defer rows.Close()

	items := []models.BudgetItem{}
	for rows.Next() {
		it, err := scanBudgetItem(rows)
		if err != nil {
			return nil, apperr.Internal(err, "scan budget item")
		}
		items = append(items, *it)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "iterate budget items")
	}
	return items, nil
}

func (r *budgetRepository) CreateItem(ctx context.Context, it *models.BudgetItem) error {
	query := `
		INSERT INTO budget_items (id, budget_id, item, amount, category_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, it.ID, it.BudgetID, it.Item, it.Amount, it.CategoryID).
		Scan(&it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.BadRequest("Referenced category does not exist")
		}
		return apperr.Internal(err, "create budget item", "budget_id", it.BudgetID)
	}
	return nil
}

func (r *budgetRepository) GetItem(ctx context.Context, id string) (*models.BudgetItem, string, error) {
	query := `
		SELECT bi.id, bi.budget_id, bi.item, bi.amount, bi.category_id, bi.created_at, bi.updated_at,
			c.name, c.color, c.text_color, b.user_id
		FROM budget_items bi
		JOIN budgets b ON b.id = bi.budget_id
		LEFT JOIN categories c ON c.id = bi.category_id
		WHERE bi.id = $1
	`
	var owner string
	row := r.db.QueryRowContext(ctx, query, id)
	it, err := scanBudgetItem(scanWithTail{row: row, tail: &owner})
	if err != nil {
		if isNoRows(err) {
			return nil, "", apperr.NotFound(fmt.Sprintf("Budget item with ID %s not found", id))
		}
		return nil, "", apperr.Internal(err, "get budget item", "budget_item_id", id)
	}
	return it, owner, nil
}

// scanWithTail appends extra destinations after the ones a scan helper
// passes, so shared scanners can serve joined queries.
type scanWithTail struct {
	row  rowScanner
	tail *string
}

func (s scanWithTail) Scan(dest ...any) error {
	return s.row.Scan(append(dest, s.tail)...)
}

func (r *budgetRepository) UpdateItem(ctx context.Context, id string, req *models.UpdateBudgetItemRequest) error {
	setValues := []string{}
	args := []any{}
	argID := 1

	if req.Item != nil {
		setValues = append(setValues, fmt.Sprintf("item = $%d", argID))
		args = append(args, *req.Item)
		argID++
	}
	if req.Amount != nil {
		setValues = append(setValues, fmt.Sprintf("amount = $%d", argID))
		args = append(args, *req.Amount)
		argID++
	}
	if req.CategoryID.Set {
		setValues = append(setValues, fmt.Sprintf("category_id = $%d", argID))
		args = append(args, req.CategoryID.Value)
		argID++
	}
	if len(setValues) == 0 {
		return apperr.BadRequest("No fields to update")
	}

	setValues = append(setValues, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf("UPDATE budget_items SET %s WHERE id = $%d", strings.Join(setValues, ", "), argID)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.BadRequest("Referenced category does not exist")
		}
		return apperr.Internal(err, "update budget item", "budget_item_id", id)
	}
	return expectOneRow(res, "Budget item", id)
}

func (r *budgetRepository) DeleteItem(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budget_items WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal(err, "delete budget item", "budget_item_id", id)
	}
	return expectOneRow(res, "Budget item", id)
}
