package models

import "time"

const DefaultCategoryTextColor = "#FFFFFF"

type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	TextColor string    `json:"textColor"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateCategoryRequest struct {
	Name      string  `json:"name" validate:"required,min=1,max=50"`
	Color     string  `json:"color" validate:"required,hexcolor3or6"`
	TextColor *string `json:"textColor,omitempty" validate:"omitempty,hexcolor3or6"`
}

type UpdateCategoryRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=50"`
	Color     *string `json:"color,omitempty" validate:"omitempty,hexcolor3or6"`
	TextColor *string `json:"textColor,omitempty" validate:"omitempty,hexcolor3or6"`
}
