package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The backend expects plain JSON numbers for prices and totals.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a product in the store.
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name" validate:"required,min=3,max=100"`
	Description string          `json:"description" validate:"omitempty,max=500"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	CategoryID  int             `json:"categoryId" validate:"required,gt=0"`
	Category    *Category       `json:"category,omitempty"`
	Image       Binary          `json:"image,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Category groups products on the storefront.
type Category struct {
	ID          int       `json:"id"`
	Name        string    `json:"name" validate:"required,min=2,max=100"`
	Description string    `json:"description" validate:"omitempty,max=500"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Catalog is a category with its products, as served by the public catalog endpoint.
type Catalog struct {
	Category
	Products []Product `json:"products"`
}
