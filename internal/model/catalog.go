package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products on the menu. OrderIndex decides display order
// among active categories.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	OrderIndex  int       `json:"orderIndex"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Product represents a menu item. OrderIndex decides display order within
// its category.
type Product struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	ImageURL        *string         `json:"imageUrl,omitempty"`
	CategoryID      string          `json:"categoryId"`
	IsAvailable     bool            `json:"isAvailable"`
	IsFeatured      bool            `json:"isFeatured"`
	PreparationTime *int            `json:"preparationTime,omitempty"` // minutes
	OrderIndex      int             `json:"orderIndex"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// NewCategory holds the fields supplied when creating a category.
// A zero OrderIndex asks the store to assign one.
type NewCategory struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	OrderIndex  int     `json:"orderIndex"`
	IsActive    bool    `json:"isActive"`
}

// Validate checks the required fields of a new category.
func (c NewCategory) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrInvalidInput("category name is required")
	}
	return nil
}

// CategoryPatch is a partial category update. Nil fields are left unchanged;
// an empty Description clears it.
type CategoryPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	OrderIndex  *int    `json:"orderIndex,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// Validate rejects patches that would break category invariants.
func (p CategoryPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrInvalidInput("category name cannot be empty")
	}
	return nil
}

// NewProduct holds the fields supplied when creating a product.
// A zero OrderIndex asks the store to assign one.
type NewProduct struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	ImageURL        *string         `json:"imageUrl,omitempty"`
	CategoryID      string          `json:"categoryId"`
	IsAvailable     bool            `json:"isAvailable"`
	IsFeatured      bool            `json:"isFeatured"`
	PreparationTime *int            `json:"preparationTime,omitempty"`
	OrderIndex      int             `json:"orderIndex"`
}

// Validate checks the required fields of a new product.
func (p NewProduct) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidInput("product name is required")
	}
	if !p.Price.IsPositive() {
		return ErrInvalidInput("product price must be positive")
	}
	if p.CategoryID == "" {
		return ErrInvalidInput("product category is required")
	}
	if p.PreparationTime != nil && *p.PreparationTime < 0 {
		return ErrInvalidInput("preparation time cannot be negative")
	}
	return nil
}

// ProductPatch is a partial product update. Nil fields are left unchanged;
// an empty ImageURL clears it.
type ProductPatch struct {
	Name            *string          `json:"name,omitempty"`
	Description     *string          `json:"description,omitempty"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	ImageURL        *string          `json:"imageUrl,omitempty"`
	CategoryID      *string          `json:"categoryId,omitempty"`
	IsAvailable     *bool            `json:"isAvailable,omitempty"`
	IsFeatured      *bool            `json:"isFeatured,omitempty"`
	PreparationTime *int             `json:"preparationTime,omitempty"` // 0 clears
	OrderIndex      *int             `json:"orderIndex,omitempty"`
}

// Validate rejects patches that would break product invariants.
func (p ProductPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrInvalidInput("product name cannot be empty")
	}
	if p.Price != nil && !p.Price.IsPositive() {
		return ErrInvalidInput("product price must be positive")
	}
	if p.CategoryID != nil && *p.CategoryID == "" {
		return ErrInvalidInput("product category cannot be empty")
	}
	if p.PreparationTime != nil && *p.PreparationTime < 0 {
		return ErrInvalidInput("preparation time cannot be negative")
	}
	return nil
}
