package orders

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitlabhq/fitstore-backend/internal/catalog"
	"github.com/fitlabhq/fitstore-backend/pkg/config"
	"github.com/fitlabhq/fitstore-backend/pkg/db/models"
	"github.com/fitlabhq/fitstore-backend/pkg/enums"
	pkgerrors "github.com/fitlabhq/fitstore-backend/pkg/errors"
	"github.com/fitlabhq/fitstore-backend/pkg/metrics"
	"github.com/fitlabhq/fitstore-backend/pkg/outbox"
	"github.com/fitlabhq/fitstore-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// productFinder is the slice of the catalog the order ledger needs.
type productFinder interface {
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.DigitalProduct, error)
	WithTx(tx *gorm.DB) catalog.Repository
}

// Service exposes the order ledger operations.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderSummary, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*OrderSummary, error)
	ListOrdersByEmail(ctx context.Context, email string, params pagination.Params) (*OrderList, error)
}

type service struct {
	repo     Repository
	products productFinder
	tx       txRunner
	outbox   outbox.Emitter
	metrics  *metrics.StoreMetrics
	cfg      config.OrdersConfig
	now      func() time.Time
}

// NewService builds the order ledger service with the required dependencies.
func NewService(
	repo Repository,
	products productFinder,
	tx txRunner,
	emitter outbox.Emitter,
	storeMetrics *metrics.StoreMetrics,
	cfg config.OrdersConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if cfg.MaxDownloads <= 0 {
		return nil, fmt.Errorf("max downloads must be positive")
	}
	if cfg.ExpiryDays <= 0 {
		return nil, fmt.Errorf("expiry days must be positive")
	}
	return &service{
		repo:     repo,
		products: products,
		tx:       tx,
		outbox:   emitter,
		metrics:  storeMetrics,
		cfg:      cfg,
		now:      time.Now,
	}, nil
}

// CreateOrder records a purchase. There is no payment gateway in front of
// the ledger, so the order lands already completed with its entitlement
// window fixed at creation time.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderSummary, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		products := s.products.WithTx(tx)
		product, err := products.FindActiveByID(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		now := s.now()
		row := &models.Order{
			ProductID:     product.ID,
			CustomerName:  strings.TrimSpace(input.CustomerName),
			CustomerEmail: normalizeEmail(input.CustomerEmail),
			AmountPaid:    product.Price,
			OrderStatus:   enums.OrderStatusCompleted,
			DownloadCount: 0,
			MaxDownloads:  s.cfg.MaxDownloads,
			ExpiresAt:     now.Add(s.cfg.ExpiryWindow()),
		}

		repo := s.repo.WithTx(tx)
		created, err := repo.Create(ctx, row)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		created.Product = product
		order = created

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: OrderCreatedEvent{
				OrderID:       order.ID,
				ProductID:     order.ProductID,
				CustomerEmail: order.CustomerEmail,
				AmountPaid:    order.AmountPaid,
				OrderStatus:   order.OrderStatus,
				ExpiresAt:     order.ExpiresAt,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncOrdersCreated()

	summary := toSummary(*order)
	return &summary, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*OrderSummary, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	summary := toSummary(*order)
	return &summary, nil
}

func (s *service) ListOrdersByEmail(ctx context.Context, email string, params pagination.Params) (*OrderList, error) {
	normalized := normalizeEmail(email)
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email address")
	}

	rows, nextCursor, err := s.repo.ListByEmail(ctx, normalized, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	summaries := make([]OrderSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, toSummary(row))
	}
	return &OrderList{Orders: summaries, NextCursor: nextCursor}, nil
}

func validateCreateInput(input CreateOrderInput) error {
	if input.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if strings.TrimSpace(input.CustomerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	email := normalizeEmail(input.CustomerEmail)
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer email required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid email address")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toSummary(order models.Order) OrderSummary {
	summary := OrderSummary{
		ID:                 order.ID,
		CustomerName:       order.CustomerName,
		CustomerEmail:      order.CustomerEmail,
		AmountPaid:         order.AmountPaid,
		OrderStatus:        order.OrderStatus,
		DownloadCount:      order.DownloadCount,
		MaxDownloads:       order.MaxDownloads,
		RemainingDownloads: order.RemainingDownloads(),
		ExpiresAt:          order.ExpiresAt,
		CreatedAt:          order.CreatedAt,
	}
	summary.Product.ID = order.ProductID
	if order.Product != nil {
		summary.Product.Title = order.Product.Title
		summary.Product.FileName = order.Product.FileName
		if order.Product.Description != nil {
			summary.Product.Description = *order.Product.Description
		}
	}
	return summary
}
