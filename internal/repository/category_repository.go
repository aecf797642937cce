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

type categoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(conn *sql.DB) interfaces.CategoryRepository {
	return &categoryRepository{db: conn}
}

func (r *categoryRepository) Create(ctx context.Context, c *models.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, color, text_color)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query, c.ID, c.UserID, c.Name, c.Color, c.TextColor).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return apperr.Internal(err, "create category", "user_id", c.UserID)
	}
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	query := `
		SELECT id, user_id, name, color, text_color, created_at, updated_at
		FROM categories
		WHERE id = $1
	`
	var c models.Category
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.TextColor, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, apperr.NotFound(fmt.Sprintf("Category with ID %s not found", id))
		}
		return nil, apperr.Internal(err, "get category", "category_id", id)
	}
	return &c, nil
}

func (r *categoryRepository) List(ctx context.Context, userID string) ([]models.Category, error) {
	query := `
		SELECT id, user_id, name, color, text_color, created_at, updated_at
		FROM categories
		WHERE user_id = $1
		ORDER BY name ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperr.Internal(err, "list categories", "user_id", userID)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.TextColor, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, apperr.Internal(err, "scan category")
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(err, "iterate categories")
	}
	return categories, nil
}

func (r *categoryRepository) Update(ctx context.Context, id string, req *models.UpdateCategoryRequest) error {
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
	if req.TextColor != nil {
		setValues = append(setValues, fmt.Sprintf("text_color = $%d", argID))
		args = append(args, *req.TextColor)
		argID++
	}
	if len(setValues) == 0 {
		return apperr.BadRequest("No fields to update")
	}

	setValues = append(setValues, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf("UPDATE categories SET %s WHERE id = $%d", strings.Join(setValues, ", "), argID)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return apperr.Internal(err, "update category", "category_id", id)
	}
	return expectOneRow(res, "Category", id)
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal(err, "delete category", "category_id", id)
	}
	return expectOneRow(res, "Category", id)
}

func expectOneRow(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Internal(err, "rows affected", "entity", entity, "id", id)
	}
	if n == 0 {
		return apperr.NotFound(fmt.Sprintf("%s with ID %s not found", entity, id))
	}
	return nil
}
