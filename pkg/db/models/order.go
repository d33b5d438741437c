package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fitlabhq/fitstore-backend/pkg/enums"
)

// Order represents a purchase and the download entitlement it grants.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID     uuid.UUID         `gorm:"column:product_id;type:uuid;not null"`
	Product       *DigitalProduct   `gorm:"foreignKey:ProductID"`
	CustomerName  string            `gorm:"column:customer_name;not null"`
	CustomerEmail string            `gorm:"column:customer_email;not null"`
	AmountPaid    decimal.Decimal   `gorm:"column:amount_paid;type:numeric(10,2);not null"`
	OrderStatus   enums.OrderStatus `gorm:"column:order_status;type:order_status;not null;default:'pending'"`
	DownloadCount int               `gorm:"column:download_count;not null;default:0"`
	MaxDownloads  int               `gorm:"column:max_downloads;not null"`
	ExpiresAt     time.Time         `gorm:"column:expires_at;not null"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name for GORM.
func (Order) TableName() string {
	return "orders"
}

// RemainingDownloads reports how many downloads the order still allows.
func (o Order) RemainingDownloads() int {
	remaining := o.MaxDownloads - o.DownloadCount
	if remaining < 0 {
		return 0
	}
	return remaining
}
