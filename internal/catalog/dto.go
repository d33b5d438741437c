package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductSummary is the public shape returned by catalog reads.
type ProductSummary struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	FileName    string          `json:"file_name"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ProductList wraps the paginated catalog plus the next page cursor.
type ProductList struct {
	Products   []ProductSummary `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// CreateProductInput carries the fields accepted when adding a product.
type CreateProductInput struct {
	Title       string
	Description *string
	Price       decimal.Decimal
	FilePath    string
	FileName    string
}

// UpdateProductInput carries the optional fields for an admin update.
type UpdateProductInput struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
	FilePath    *string
	FileName    *string
	IsActive    *bool
}
