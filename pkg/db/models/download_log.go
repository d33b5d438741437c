package models

import (
	"time"

	"github.com/google/uuid"
)

// DownloadLog is an append-only record of a served download.
type DownloadLog struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	IPAddress    *string   `gorm:"column:ip_address"`
	UserAgent    *string   `gorm:"column:user_agent"`
	DownloadedAt time.Time `gorm:"column:downloaded_at;autoCreateTime"`
}

// TableName pins the table name for GORM.
func (DownloadLog) TableName() string {
	return "download_logs"
}
