package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fitlabhq/fitstore-backend/pkg/enums"
)

// CreateOrderInput carries the purchase request fields.
type CreateOrderInput struct {
	ProductID     uuid.UUID
	CustomerName  string
	CustomerEmail string
}

// OrderProductSummary is the product metadata joined into order reads.
type OrderProductSummary struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	FileName    string    `json:"file_name"`
}

// OrderSummary is the API shape for a single order.
type OrderSummary struct {
	ID                 uuid.UUID           `json:"id"`
	Product            OrderProductSummary `json:"product"`
	CustomerName       string              `json:"customer_name"`
	CustomerEmail      string              `json:"customer_email"`
	AmountPaid         decimal.Decimal     `json:"amount_paid"`
	OrderStatus        enums.OrderStatus   `json:"order_status"`
	DownloadCount      int                 `json:"download_count"`
	MaxDownloads       int                 `json:"max_downloads"`
	RemainingDownloads int                 `json:"remaining_downloads"`
	ExpiresAt          time.Time           `json:"expires_at"`
	CreatedAt          time.Time           `json:"created_at"`
}

// OrderList wraps paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// OrderCreatedEvent is the outbox payload for a new purchase.
type OrderCreatedEvent struct {
	OrderID       uuid.UUID         `json:"order_id"`
	ProductID     uuid.UUID         `json:"product_id"`
	CustomerEmail string            `json:"customer_email"`
	AmountPaid    decimal.Decimal   `json:"amount_paid"`
	OrderStatus   enums.OrderStatus `json:"order_status"`
	ExpiresAt     time.Time         `json:"expires_at"`
}
