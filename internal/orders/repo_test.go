package orders

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fitlabhq/fitstore-backend/pkg/db/models"
	"github.com/fitlabhq/fitstore-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	digitalProducts := `
CREATE TABLE IF NOT EXISTS digital_products (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL,
  file_path TEXT NOT NULL,
  file_name TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  customer_name TEXT NOT NULL,
  customer_email TEXT NOT NULL,
  amount_paid NUMERIC NOT NULL,
  order_status TEXT NOT NULL DEFAULT 'pending',
  download_count INTEGER NOT NULL DEFAULT 0,
  max_downloads INTEGER NOT NULL,
  expires_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(digitalProducts).Error)
	require.NoError(t, db.Exec(orders).Error)
	t.Cleanup(func() {
		require.NoError(t, db.Exec("DELETE FROM orders").Error)
		require.NoError(t, db.Exec("DELETE FROM digital_products").Error)
	})
	return db
}

func createProduct(t *testing.T, db *gorm.DB) *models.DigitalProduct {
	t.Helper()

	product := &models.DigitalProduct{
		ID:       uuid.New(),
		Title:    "12 Week Strength Plan",
		Price:    decimal.NewFromInt(49),
		FilePath: "plans/strength-12wk.pdf",
		FileName: "strength-12wk.pdf",
		IsActive: true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func createOrder(t *testing.T, db *gorm.DB, product *models.DigitalProduct, downloadCount int, status enums.OrderStatus, expiresAt time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		ProductID:     product.ID,
		CustomerName:  "Jane Doe",
		CustomerEmail: "jane@example.com",
		AmountPaid:    product.Price,
		OrderStatus:   status,
		DownloadCount: downloadCount,
		MaxDownloads:  5,
		ExpiresAt:     expiresAt,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestClaimDownload_SpendsOne(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := createOrder(t, db, createProduct(t, db), 0, enums.OrderStatusCompleted, time.Now().Add(time.Hour))

	ok, err := repo.ClaimDownload(context.Background(), order.ID, time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	fresh, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.DownloadCount)
	require.NotNil(t, fresh.Product)
	assert.Equal(t, "strength-12wk.pdf", fresh.Product.FileName)
}

func TestClaimDownload_ConcurrentAttemptsNeverOversell(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := createOrder(t, db, createProduct(t, db), 3, enums.OrderStatusCompleted, time.Now().Add(time.Hour))

	// Two downloads remain; fire four claims at once.
	const attempts = 4
	var wg sync.WaitGroup
	claims := make([]bool, attempts)
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			claims[i], errs[i] = repo.ClaimDownload(context.Background(), order.ID, time.Now())
		}(i)
	}
	wg.Wait()

	successes := 0
	for i := 0; i < attempts; i++ {
		require.NoError(t, errs[i])
		if claims[i] {
			successes++
		}
	}
	assert.Equal(t, 2, successes)

	fresh, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, fresh.DownloadCount)

	ok, err := repo.ClaimDownload(context.Background(), order.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClaimDownload_Denials(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name          string
		downloadCount int
		status        enums.OrderStatus
		expiresAt     time.Time
	}{
		{name: "expired order", downloadCount: 0, status: enums.OrderStatusCompleted, expiresAt: now.Add(-time.Minute)},
		{name: "pending order", downloadCount: 0, status: enums.OrderStatusPending, expiresAt: now.Add(time.Hour)},
		{name: "limit reached", downloadCount: 5, status: enums.OrderStatusCompleted, expiresAt: now.Add(time.Hour)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := setupOrdersTestDB(t)
			repo := NewRepository(db)
			order := createOrder(t, db, createProduct(t, db), tc.downloadCount, tc.status, tc.expiresAt)

			ok, err := repo.ClaimDownload(context.Background(), order.ID, now)
			require.NoError(t, err)
			assert.False(t, ok)

			fresh, err := repo.FindByID(context.Background(), order.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.downloadCount, fresh.DownloadCount)
		})
	}
}

func TestClaimDownload_MissingOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	ok, err := repo.ClaimDownload(context.Background(), uuid.New(), time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
}
