package interfaces

import (
	"context"
	"time"

	"expensetracker/internal/models"
)

// ExpenseFilter narrows List and Summary. Zero values mean "any".
type ExpenseFilter struct {
	UserID       string
	Type         models.ExpenseType
	CreditCardID string
	// WithoutCreditCard selects rows whose card is NULL.
	WithoutCreditCard bool
	CategoryID        string
	From              time.Time
	To                time.Time
	// Before is an exclusive upper bound, used for date-only "to" values.
	Before time.Time
}

type ExpenseRepository interface {
	Create(ctx context.Context, expense *models.Expense) error
	GetByID(ctx context.Context, id string) (*models.Expense, error)
	List(ctx context.Context, filter ExpenseFilter) ([]models.Expense, error)
	Summary(ctx context.Context, filter ExpenseFilter) (*models.ExpenseSummary, error)
	Update(ctx context.Context, id string, patch *models.ExpensePatch) error
	SetReceipt(ctx context.Context, id string, key string) error
	Delete(ctx context.Context, id string) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id string) (*models.Category, error)
	List(ctx context.Context, userID string) ([]models.Category, error)
	Update(ctx context.Context, id string, req *models.UpdateCategoryRequest) error
	Delete(ctx context.Context, id string) error
}

type CreditCardRepository interface {
	Create(ctx context.Context, card *models.CreditCard) error
	GetByID(ctx context.Context, id string) (*models.CreditCard, error)
	List(ctx context.Context, userID string) ([]models.CreditCard, error)
	Update(ctx context.Context, id string, req *models.UpdateCreditCardRequest) error
	Delete(ctx context.Context, id string) error
}

type BudgetRepository interface {
	// Ensure returns the user's budget, creating an empty one if needed.
	Ensure(ctx context.Context, userID string) (*models.Budget, error)
	ListItems(ctx context.Context, budgetID string) ([]models.BudgetItem, error)
	CreateItem(ctx context.Context, item *models.BudgetItem) error
	// GetItem returns the item and the id of the user owning its budget.
	GetItem(ctx context.Context, id string) (*models.BudgetItem, string, error)
	UpdateItem(ctx context.Context, id string, req *models.UpdateBudgetItemRequest) error
	DeleteItem(ctx context.Context, id string) error
}
