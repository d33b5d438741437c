package downloads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitlabhq/fitstore-backend/internal/auditlog"
	"github.com/fitlabhq/fitstore-backend/internal/orders"
	"github.com/fitlabhq/fitstore-backend/pkg/db/models"
	"github.com/fitlabhq/fitstore-backend/pkg/enums"
	pkgerrors "github.com/fitlabhq/fitstore-backend/pkg/errors"
	"github.com/fitlabhq/fitstore-backend/pkg/logger"
	"github.com/fitlabhq/fitstore-backend/pkg/metrics"
	"github.com/fitlabhq/fitstore-backend/pkg/outbox"
	"github.com/fitlabhq/fitstore-backend/pkg/storage/gcs"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service dispatches entitled downloads and answers entitlement checks.
type Service interface {
	CheckEntitlement(ctx context.Context, orderID uuid.UUID) (Decision, error)
	Download(ctx context.Context, req DownloadRequest) (*FileStream, error)
}

type service struct {
	repo    orders.Repository
	store   gcs.ObjectStore
	audit   auditlog.Recorder
	tx      txRunner
	outbox  outbox.Emitter
	metrics *metrics.StoreMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the download dispatcher with the required dependencies.
func NewService(
	repo orders.Repository,
	store gcs.ObjectStore,
	audit auditlog.Recorder,
	tx txRunner,
	emitter outbox.Emitter,
	storeMetrics *metrics.StoreMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if audit == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		repo:    repo,
		store:   store,
		audit:   audit,
		tx:      tx,
		outbox:  emitter,
		metrics: storeMetrics,
		logg:    logg,
		now:     time.Now,
	}, nil
}

// CheckEntitlement evaluates the order against the download invariants.
// The decision is advisory: the authoritative guard is the conditional
// update inside Download, which re-checks the same predicates atomically.
func (s *service) CheckEntitlement(ctx context.Context, orderID uuid.UUID) (Decision, error) {
	if orderID == uuid.Nil {
		return Decision{}, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Decision{Reason: enums.DenialOrderNotFound}, nil
		}
		return Decision{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	return decide(order, s.now()), nil
}

// Download serves one entitled download. Side effects are ordered so a
// failure never strands the customer: the object is fetched from storage
// first, and only then is one download spent via the conditional update.
// A storage failure therefore costs nothing, and a lost claim race after a
// successful read denies cleanly without touching the counter. Once the
// claim commits the download counts as spent, even if response delivery
// fails afterwards.
func (s *service) Download(ctx context.Context, req DownloadRequest) (*FileStream, error) {
	if req.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindByID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.deny(enums.DenialOrderNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.Product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order missing product reference")
	}

	// Fast-path denial before touching storage.
	if decision := decide(order, s.now()); !decision.Allowed {
		return nil, s.deny(decision.Reason)
	}

	data, info, err := s.store.ReadObject(ctx, order.Product.FilePath)
	if err != nil {
		s.metrics.IncStorageReadError()
		if errors.Is(err, gcs.ErrObjectNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "File not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read product file")
	}

	claimed := false
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ok, claimErr := repo.ClaimDownload(ctx, order.ID, s.now())
		if claimErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, claimErr, "claim download")
		}
		if !ok {
			return nil
		}
		claimed = true
		// Re-read inside the transaction so the event carries the count
		// the claim actually committed, not the stale pre-claim value.
		fresh, readErr := repo.FindByID(ctx, order.ID)
		if readErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, readErr, "reload claimed order")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDownloadCompleted,
			AggregateType: enums.AggregateDownload,
			AggregateID:   order.ID,
			Version:       1,
			Data: DownloadCompletedEvent{
				OrderID:       order.ID,
				ProductID:     order.ProductID,
				DownloadCount: fresh.DownloadCount,
				MaxDownloads:  fresh.MaxDownloads,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if !claimed {
		// Lost the race or the order changed underneath us. Re-read to
		// report the accurate denial reason.
		reason := enums.DenialLimitReached
		if fresh, readErr := s.repo.FindByID(ctx, order.ID); readErr == nil {
			if decision := decide(fresh, s.now()); !decision.Allowed {
				reason = decision.Reason
			}
		}
		return nil, s.deny(reason)
	}

	s.audit.Record(ctx, order.ID, req.IP, req.UserAgent)

	s.metrics.IncDownloadAllowed()
	s.metrics.AddDownloadBytes(info.Size)

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":   order.ID.String(),
			"product_id": order.ProductID.String(),
			"bytes":      info.Size,
		})
		s.logg.Info(logCtx, "download served")
	}

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &FileStream{
		Data:        data,
		FileName:    order.Product.FileName,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

func (s *service) deny(reason enums.DownloadDenialReason) error {
	s.metrics.IncDownloadDenied(reason.String())
	switch reason {
	case enums.DenialOrderNotFound, enums.DenialOrderNotComplete:
		return pkgerrors.New(pkgerrors.CodeNotFound, "Order not found or not completed")
	case enums.DenialOrderExpired:
		return pkgerrors.New(pkgerrors.CodeForbidden, "Download link has expired")
	case enums.DenialLimitReached:
		return pkgerrors.New(pkgerrors.CodeForbidden, "Download limit exceeded")
	default:
		return pkgerrors.New(pkgerrors.CodeInternal, "entitlement check failed")
	}
}

func decide(order *models.Order, now time.Time) Decision {
	switch {
	case order.OrderStatus != enums.OrderStatusCompleted:
		return Decision{Reason: enums.DenialOrderNotComplete}
	case now.After(order.ExpiresAt):
		return Decision{Reason: enums.DenialOrderExpired}
	case order.DownloadCount >= order.MaxDownloads:
		return Decision{Reason: enums.DenialLimitReached}
	default:
		return Decision{Allowed: true}
	}
}
