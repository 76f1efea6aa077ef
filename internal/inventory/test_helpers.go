package inventory

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/metrics"
	"github.com/stockroomhq/stockroom-backend/pkg/outbox"
)

type sqliteTxRunner struct {
	db *gorm.DB
}

func (r sqliteTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.InventoryItem{},
		&models.StockLevel{},
		&models.Reservation{},
		&models.StockAdjustment{},
		&models.OutboxEvent{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB, ttl time.Duration) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "inventory-test", Output: io.Discard})
	outboxSvc := outbox.NewService(outbox.NewRepository(db), logg)
	invMetrics := metrics.NewInventoryMetrics(prometheus.NewRegistry())

	svc, err := NewService(NewRepository(db), sqliteTxRunner{db: db}, outboxSvc, invMetrics, logg, ttl)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func mustCreateItem(t *testing.T, svc Service, tenantID uuid.UUID, sku string, initialQty int) *ItemDTO {
	t.Helper()
	item, err := svc.CreateItem(context.Background(), tenantID, CreateItemInput{
		SKU:             sku,
		Name:            "Test " + sku,
		Unit:            "each",
		InitialQuantity: initialQty,
		Actor:           "seeder",
	})
	if err != nil {
		t.Fatalf("create item %s: %v", sku, err)
	}
	return item
}

func mustReserve(t *testing.T, svc Service, tenantID, itemID uuid.UUID, qty int) *ReservationDTO {
	t.Helper()
	reservation, err := svc.Reserve(context.Background(), tenantID, ReserveInput{
		ItemID:   itemID,
		Quantity: qty,
		Source:   "pos",
	})
	if err != nil {
		t.Fatalf("reserve %d: %v", qty, err)
	}
	return reservation
}

func mustStockLevel(t *testing.T, svc Service, tenantID, itemID uuid.UUID) *StockLevelDTO {
	t.Helper()
	level, err := svc.GetStockLevel(context.Background(), tenantID, itemID, nil)
	if err != nil {
		t.Fatalf("get stock level: %v", err)
	}
	return level
}
