package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/fitlabhq/fitstore-backend/pkg/db/models"
	"github.com/fitlabhq/fitstore-backend/pkg/enums"
	pkgerrors "github.com/fitlabhq/fitstore-backend/pkg/errors"
	"github.com/fitlabhq/fitstore-backend/pkg/outbox"
	"github.com/fitlabhq/fitstore-backend/pkg/pagination"
)

type stubCatalogRepo struct {
	products map[uuid.UUID]*models.DigitalProduct
	updates  map[string]any
	listErr  error
}

func newStubCatalogRepo() *stubCatalogRepo {
	return &stubCatalogRepo{products: make(map[uuid.UUID]*models.DigitalProduct)}
}

func (s *stubCatalogRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubCatalogRepo) Create(ctx context.Context, product *models.DigitalProduct) (*models.DigitalProduct, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	s.products[product.ID] = product
	return product, nil
}

func (s *stubCatalogRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.DigitalProduct, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *product
	return &copied, nil
}

func (s *stubCatalogRepo) FindActiveByID(ctx context.Context, id uuid.UUID) (*models.DigitalProduct, error) {
	product, ok := s.products[id]
	if !ok || !product.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *product
	return &copied, nil
}

func (s *stubCatalogRepo) ListActive(ctx context.Context, params pagination.Params) ([]models.DigitalProduct, string, error) {
	if s.listErr != nil {
		return nil, "", s.listErr
	}
	var rows []models.DigitalProduct
	for _, product := range s.products {
		if product.IsActive {
			rows = append(rows, *product)
		}
	}
	return rows, "", nil
}

func (s *stubCatalogRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	product, ok := s.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if title, ok := updates["title"].(string); ok {
		product.Title = title
	}
	if active, ok := updates["is_active"].(bool); ok {
		product.IsActive = active
	}
	return nil
}

type stubEmitter struct {
	events []outbox.DomainEvent
	err    error
}

func (s *stubEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func TestCreateProduct(t *testing.T) {
	repo := newStubCatalogRepo()
	emitter := &stubEmitter{}
	svc, err := NewService(repo, stubTxRunner{}, emitter)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	summary, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Title:    "12 Week Strength Plan",
		Price:    decimal.NewFromFloat(39.99),
		FilePath: "plans/strength-12wk.pdf",
		FileName: "strength-12wk.pdf",
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if summary.ID == uuid.Nil {
		t.Fatal("expected product id assigned")
	}
	if len(emitter.events) != 1 {
		t.Fatalf("expected 1 outbox event, got %d", len(emitter.events))
	}
	if emitter.events[0].EventType != enums.EventProductCreated {
		t.Fatalf("unexpected event type %s", emitter.events[0].EventType)
	}
}

func TestCreateProduct_Validation(t *testing.T) {
	svc, _ := NewService(newStubCatalogRepo(), stubTxRunner{}, &stubEmitter{})

	cases := []struct {
		name  string
		input CreateProductInput
	}{
		{"missing title", CreateProductInput{Price: decimal.NewFromInt(10), FilePath: "a", FileName: "a"}},
		{"negative price", CreateProductInput{Title: "t", Price: decimal.NewFromInt(-1), FilePath: "a", FileName: "a"}},
		{"missing file path", CreateProductInput{Title: "t", Price: decimal.NewFromInt(10), FileName: "a"}},
		{"missing file name", CreateProductInput{Title: "t", Price: decimal.NewFromInt(10), FilePath: "a"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestGetProduct_HidesInactive(t *testing.T) {
	repo := newStubCatalogRepo()
	inactive := &models.DigitalProduct{ID: uuid.New(), Title: "Retired Plan", IsActive: false}
	repo.products[inactive.ID] = inactive

	svc, _ := NewService(repo, stubTxRunner{}, &stubEmitter{})
	_, err := svc.GetProduct(context.Background(), inactive.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for inactive product, got %v", err)
	}
}

func TestUpdateProduct(t *testing.T) {
	repo := newStubCatalogRepo()
	product := &models.DigitalProduct{ID: uuid.New(), Title: "Old Title", IsActive: true}
	repo.products[product.ID] = product

	emitter := &stubEmitter{}
	svc, _ := NewService(repo, stubTxRunner{}, emitter)

	title := "New Title"
	summary, err := svc.UpdateProduct(context.Background(), product.ID, UpdateProductInput{Title: &title})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if summary.Title != "New Title" {
		t.Fatalf("expected updated title, got %q", summary.Title)
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventProductUpdated {
		t.Fatalf("expected product_updated event")
	}
}

func TestUpdateProduct_NoFields(t *testing.T) {
	svc, _ := NewService(newStubCatalogRepo(), stubTxRunner{}, &stubEmitter{})
	_, err := svc.UpdateProduct(context.Background(), uuid.New(), UpdateProductInput{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeactivateProduct_Idempotent(t *testing.T) {
	repo := newStubCatalogRepo()
	product := &models.DigitalProduct{ID: uuid.New(), Title: "Plan", IsActive: true}
	repo.products[product.ID] = product

	emitter := &stubEmitter{}
	svc, _ := NewService(repo, stubTxRunner{}, emitter)

	if err := svc.DeactivateProduct(context.Background(), product.ID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if product.IsActive {
		t.Fatal("expected product deactivated")
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventProductDeactivated {
		t.Fatalf("expected product_deactivated event")
	}

	// second call is a no-op and emits nothing new
	if err := svc.DeactivateProduct(context.Background(), product.ID); err != nil {
		t.Fatalf("second deactivate failed: %v", err)
	}
	if len(emitter.events) != 1 {
		t.Fatalf("expected no extra event, got %d", len(emitter.events))
	}
}
