package models

import "time"

type Budget struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	Items     []BudgetItem `json:"items"`
	Total     float64      `json:"total"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// BudgetItemCategory is the category projection embedded in budget items.
type BudgetItemCategory struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	TextColor string `json:"textColor"`
}

type BudgetItem struct {
	ID         string              `json:"id"`
	BudgetID   string              `json:"budgetId"`
	Item       string              `json:"item"`
	Amount     float64             `json:"amount"`
	CategoryID *string             `json:"categoryId"`
	Category   *BudgetItemCategory `json:"category"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

type CreateBudgetItemRequest struct {
	Item       string  `json:"item" validate:"required,min=1"`
	Amount     float64 `json:"amount" validate:"required,gte=0.01"`
	CategoryID *string `json:"categoryId,omitempty" validate:"omitempty,uuid"`
}

type UpdateBudgetItemRequest struct {
	Item       *string        `json:"item,omitempty" validate:"omitempty,min=1"`
	Amount     *float64       `json:"amount,omitempty" validate:"omitempty,gte=0.01"`
	CategoryID NullableString `json:"categoryId"`
}

// Recalculate sets Total from the item amounts.
func (b *Budget) Recalculate() {
	var total float64
	for _, it := range b.Items {
		total += it.Amount
	}
	b.Total = total
}
