package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fitlabhq/fitstore-backend/pkg/db/models"
	"github.com/fitlabhq/fitstore-backend/pkg/enums"
	pkgerrors "github.com/fitlabhq/fitstore-backend/pkg/errors"
	"github.com/fitlabhq/fitstore-backend/pkg/outbox"
	"github.com/fitlabhq/fitstore-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes catalog reads plus the admin write surface.
type Service interface {
	ListProducts(ctx context.Context, params pagination.Params) (*ProductList, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductSummary, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductSummary, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductSummary, error)
	DeactivateProduct(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outbox.Emitter
}

// ProductChangedEvent is emitted for admin catalog writes.
type ProductChangedEvent struct {
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title"`
	IsActive  bool      `json:"is_active"`
}

// NewService builds the catalog service with the required dependencies.
func NewService(repo Repository, tx txRunner, emitter outbox.Emitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{repo: repo, tx: tx, outbox: emitter}, nil
}

func (s *service) ListProducts(ctx context.Context, params pagination.Params) (*ProductList, error) {
	rows, nextCursor, err := s.repo.ListActive(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	summaries := make([]ProductSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, toSummary(row))
	}
	return &ProductList{Products: summaries, NextCursor: nextCursor}, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductSummary, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	summary := toSummary(*product)
	return &summary, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductSummary, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	product := &models.DigitalProduct{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Price:       input.Price,
		FilePath:    strings.TrimSpace(input.FilePath),
		FileName:    strings.TrimSpace(input.FileName),
		IsActive:    true,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.Create(ctx, product)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
		}
		product = created

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventProductCreated,
			AggregateType: enums.AggregateProduct,
			AggregateID:   product.ID,
			Version:       1,
			Data: ProductChangedEvent{
				ProductID: product.ID,
				Title:     product.Title,
				IsActive:  product.IsActive,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	summary := toSummary(*product)
	return &summary, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductSummary, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	updates, err := buildUpdates(input)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	var updated *models.DigitalProduct
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		if err := repo.Update(ctx, id, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}

		reloaded, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
		}
		updated = reloaded

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventProductUpdated,
			AggregateType: enums.AggregateProduct,
			AggregateID:   updated.ID,
			Version:       1,
			Data: ProductChangedEvent{
				ProductID: updated.ID,
				Title:     updated.Title,
				IsActive:  updated.IsActive,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	summary := toSummary(*updated)
	return &summary, nil
}

func (s *service) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if !product.IsActive {
			return nil
		}

		if err := repo.Update(ctx, id, map[string]any{"is_active": false}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate product")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventProductDeactivated,
			AggregateType: enums.AggregateProduct,
			AggregateID:   product.ID,
			Version:       1,
			Data: ProductChangedEvent{
				ProductID: product.ID,
				Title:     product.Title,
				IsActive:  false,
			},
		})
	})
}

func validateCreateInput(input CreateProductInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if strings.TrimSpace(input.FilePath) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "file path required")
	}
	if strings.TrimSpace(input.FileName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "file name required")
	}
	return nil
}

func buildUpdates(input UpdateProductInput) (map[string]any, error) {
	updates := map[string]any{}
	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title must not be empty")
		}
		updates["title"] = trimmed
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		updates["price"] = *input.Price
	}
	if input.FilePath != nil {
		trimmed := strings.TrimSpace(*input.FilePath)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "file path must not be empty")
		}
		updates["file_path"] = trimmed
	}
	if input.FileName != nil {
		trimmed := strings.TrimSpace(*input.FileName)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "file name must not be empty")
		}
		updates["file_name"] = trimmed
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	return updates, nil
}

func toSummary(product models.DigitalProduct) ProductSummary {
	return ProductSummary{
		ID:          product.ID,
		Title:       product.Title,
		Description: product.Description,
		Price:       product.Price,
		FileName:    product.FileName,
		CreatedAt:   product.CreatedAt,
	}
}
