package auditlog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitlabhq/fitstore-backend/pkg/db/models"
)

// Repository defines persistence operations for the download audit trail.
type Repository interface {
	Insert(ctx context.Context, entry *models.DownloadLog) error
	ListByOrder(ctx context.Context, orderID uuid.UUID, limit int) ([]models.DownloadLog, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an audit log repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, entry *models.DownloadLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID, limit int) ([]models.DownloadLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.DownloadLog
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("downloaded_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
