package models

import "time"

type ExpenseType string

const (
	ExpenseIncome  ExpenseType = "income"
	ExpenseOutcome ExpenseType = "outcome"
)

func (t ExpenseType) Valid() bool {
	return t == ExpenseIncome || t == ExpenseOutcome
}

type Expense struct {
	ID           string      `json:"id"`
	UserID       string      `json:"userId"`
	Type         ExpenseType `json:"type"`
	Amount       float64     `json:"amount"`
	Description  string      `json:"description"`
	Date         time.Time   `json:"date"`
	CreditCardID *string     `json:"creditCardId"`
	CategoryID   *string     `json:"categoryId"`
	ReceiptKey   *string     `json:"receiptKey,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

type CreateExpenseRequest struct {
	Type         ExpenseType `json:"type" validate:"required,oneof=income outcome"`
	Amount       float64     `json:"amount" validate:"required,gte=0.01"`
	Description  string      `json:"description" validate:"required,min=1"`
	Date         string      `json:"date" validate:"required"`
	CreditCardID *string     `json:"creditCardId,omitempty" validate:"omitempty,uuid"`
	CategoryID   *string     `json:"categoryId,omitempty" validate:"omitempty,uuid"`
}

// UpdateExpenseRequest is a partial update. Card and category accept null to
// clear the reference.
type UpdateExpenseRequest struct {
	Type         *ExpenseType   `json:"type,omitempty" validate:"omitempty,oneof=income outcome"`
	Amount       *float64       `json:"amount,omitempty" validate:"omitempty,gte=0.01"`
	Description  *string        `json:"description,omitempty" validate:"omitempty,min=1"`
	Date         *string        `json:"date,omitempty"`
	CreditCardID NullableString `json:"creditCardId"`
	CategoryID   NullableString `json:"categoryId"`
}

// ExpensePatch is the validated form of UpdateExpenseRequest handed to the
// repository.
type ExpensePatch struct {
	Type         *ExpenseType
	Amount       *float64
	Description  *string
	Date         *time.Time
	CreditCardID NullableString
	CategoryID   NullableString
}

func (p *ExpensePatch) Empty() bool {
	return p.Type == nil && p.Amount == nil && p.Description == nil && p.Date == nil &&
		!p.CreditCardID.Set && !p.CategoryID.Set
}

type ExpenseSummary struct {
	Income  float64 `json:"income"`
	Outcome float64 `json:"outcome"`
	Balance float64 `json:"balance"`
	Count   int64   `json:"count"`
}
