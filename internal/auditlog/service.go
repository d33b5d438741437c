package auditlog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fitlabhq/fitstore-backend/pkg/db/models"
	"github.com/fitlabhq/fitstore-backend/pkg/logger"
)

// Recorder is the write surface the download workflow depends on.
type Recorder interface {
	Record(ctx context.Context, orderID uuid.UUID, ip, userAgent string)
}

// Service appends download audit entries. Writes are best-effort: a failed
// audit insert is logged and swallowed, never surfaced to the customer.
type Service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the audit log service.
func NewService(repo Repository, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit log repository required")
	}
	return &Service{repo: repo, logg: logg}, nil
}

func (s *Service) Record(ctx context.Context, orderID uuid.UUID, ip, userAgent string) {
	entry := &models.DownloadLog{OrderID: orderID}
	if ip != "" {
		entry.IPAddress = &ip
	}
	if userAgent != "" {
		entry.UserAgent = &userAgent
	}

	if err := s.repo.Insert(ctx, entry); err != nil && s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, orderID.String())
		s.logg.Error(logCtx, "audit log write failed", err)
	}
}
