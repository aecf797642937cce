package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"expensetracker/internal/apperr"
	"expensetracker/internal/interfaces"
	"expensetracker/internal/models"
)

const expenseColumns = `id, user_id, type, amount, description, date, credit_card_id, category_id, receipt_key, created_at, updated_at`

type expenseRepository struct {
	db *sql.DB
}

func NewExpenseRepository(conn *sql.DB) interfaces.ExpenseRepository {
	return &expenseRepository{db: conn}
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	var e models.Expense
	var card, category, receipt sql.NullString
	if err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.Type,
		&e.Amount,
		&e.Description,
		&e.Date,
		&card,
		&category,
		&receipt,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	e.CreditCardID = nullString(card)
	e.CategoryID = nullString(category)
	e.ReceiptKey = nullString(receipt)
	return &e, nil
}

func (r *expenseRepository) Create(ctx context.Context, e *models.Expense) error {
	query := `
		INSERT INTO expenses (id, user_id, type, amount, description, date, credit_card_id, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		e.ID, e.UserID, e.Type, e.Amount, e.Description, e.Date, e.CreditCardID, e.CategoryID,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.BadRequest("Referenced credit card or category does not exist")
		}
		return apperr.Internal(err, "create expense", "user_id", e.UserID)
	}
	return nil
}

func (r *expenseRepository) GetByID(ctx context.Context, id string) (*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`

	e, err := scanExpense(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound(fmt.Sprintf("Expense with ID %s not found", id))
		}
		return nil, apperr.Internal(err, "get expense", "expense_id", id)
	}
	return e, nil
}

// expenseWhere renders the filter as a WHERE clause with positional args.
func expenseWhere(f interfaces.ExpenseFilter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{f.UserID}
	argID := 2

	add := func(cond string, v any) {
		conds = append(conds, fmt.Sprintf(cond, argID))
		args = append(args, v)
		argID++
	}

	if f.Type != "" {
		add("type = $%d", f.Type)
	}
	if f.WithoutCreditCard {
		conds = append(conds, "credit_card_id IS NULL")
	} else if f.CreditCardID != "" {
		add("credit_card_id = $%d", f.CreditCardID)
	}
	if f.CategoryID != "" {
		add("category_id = $%d", f.CategoryID)
	}
	if !f.From.IsZero() {
		add("date >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("date <= $%d", f.To)
	}
	if !f.Before.IsZero() {
		add("date < $%d", f.Before)
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func (r *expenseRepository) List(ctx context.Context, filter interfaces.ExpenseFilter) ([]models.Expense, error) {
	where, args := expenseWhere(filter)
	query := `SELECT ` + expenseColumns + ` FROM expenses ` + where + ` ORDER BY date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Internal(err, "list expenses", "user_id", filter.UserID)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, apperr.Internal(err, "scan expense")
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "iterate expenses")
	}
	return expenses, nil
}

func (r *expenseRepository) Summary(ctx context.Context, filter interfaces.ExpenseFilter) (*models.ExpenseSummary, error) {
	where, args := expenseWhere(filter)
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0) AS income,
			COALESCE(SUM(CASE WHEN type = 'outcome' THEN amount ELSE 0 END), 0) AS outcome,
			COUNT(*) AS count
		FROM expenses
	` + where

	var s models.ExpenseSummary
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&s.Income, &s.Outcome, &s.Count); err != nil {
		return nil, apperr.Internal(err, "summarize expenses", "user_id", filter.UserID)
	}
	s.Balance = s.Income - s.Outcome
	return &s, nil
}

func (r *expenseRepository) Update(ctx context.Context, id string, p *models.ExpensePatch) error {
	setValues := []string{}
	args := []any{}
	argID := 1

	set := func(column string, v any) {
		setValues = append(setValues, fmt.Sprintf("%s = $%d", column, argID))
		args = append(args, v)
		argID++
	}

	if p.Type != nil {
		set("type", *p.Type)
	}
	if p.Amount != nil {
		set("amount", *p.Amount)
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.Date != nil {
		set("date", *p.Date)
	}
	if p.CreditCardID.Set {
		set("credit_card_id", p.CreditCardID.Value)
	}
	if p.CategoryID.Set {
		set("category_id", p.CategoryID.Value)
	}

	if len(setValues) == 0 {
		return apperr.BadRequest("No fields to update")
	}
	setValues = append(setValues, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE expenses SET %s WHERE id = $%d", strings.Join(setValues, ", "), argID)
	return r.execOne(ctx, "update expense", id, query, args...)
}

func (r *expenseRepository) SetReceipt(ctx context.Context, id string, key string) error {
	return r.execOne(ctx, "set expense receipt", id,
		`UPDATE expenses SET receipt_key = $1, updated_at = $2 WHERE id = $3`,
		key, time.Now().UTC(), id,
	)
}

func (r *expenseRepository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, "delete expense", id, `DELETE FROM expenses WHERE id = $1`, id)
}

func (r *expenseRepository) execOne(ctx context.Context, op, id, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.BadRequest("Referenced credit card or category does not exist")
		}
		return apperr.Internal(err, op, "expense_id", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Internal(err, op, "expense_id", id)
	}
	if n == 0 {
		return apperr.NotFound(fmt.Sprintf("Expense with ID %s not found", id))
	}
	return nil
}
