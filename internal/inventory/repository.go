package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
)

// ItemStore defines persistence for catalog entries.
type ItemStore interface {
	CreateItem(ctx context.Context, item *models.InventoryItem) error
	GetItem(ctx context.Context, tenantID, itemID uuid.UUID) (*models.InventoryItem, error)
	GetItemBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*models.InventoryItem, error)
	ListItems(ctx context.Context, tenantID uuid.UUID, filter ItemFilter, cursor *pagination.Cursor, limit int) ([]models.InventoryItem, error)
}

// StockStore defines persistence for per-bucket stock counts.
type StockStore interface {
	GetStockLevel(ctx context.Context, tenantID, itemID uuid.UUID, locationID string) (*models.StockLevel, error)
	ListStockLevels(ctx context.Context, tenantID uuid.UUID, itemID *uuid.UUID) ([]models.StockLevel, error)
	SaveStockLevel(ctx context.Context, level *models.StockLevel) error
}

// ReservationStore defines persistence for holds.
type ReservationStore interface {
	CreateReservation(ctx context.Context, reservation *models.Reservation) error
	GetReservation(ctx context.Context, tenantID, reservationID uuid.UUID) (*models.Reservation, error)
	ListReservations(ctx context.Context, tenantID uuid.UUID, filter ReservationFilter, cursor *pagination.Cursor, limit int) ([]models.Reservation, error)
	ListExpiredActive(ctx context.Context, cutoff time.Time, limit int) ([]models.Reservation, error)
}

// AdjustmentStore defines persistence for the audit trail.
type AdjustmentStore interface {
	CreateAdjustment(ctx context.Context, adjustment *models.StockAdjustment) error
	ListAdjustments(ctx context.Context, tenantID, itemID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.StockAdjustment, error)
}

// ItemFilter narrows catalog listings. SKU matches as a substring;
// Name matches as a case-insensitive substring.
type ItemFilter struct {
	SKU  *string
	Name *string
}

// ReservationFilter narrows reservation listings.
type ReservationFilter struct {
	ItemID *uuid.UUID
	Status *enums.ReservationStatus
}

// Repository wires together all inventory persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) CreateItem(ctx context.Context, item *models.InventoryItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *Repository) GetItem(ctx context.Context, tenantID, itemID uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		First(&item, "tenant_id = ? AND id = ?", tenantID, itemID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) GetItemBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		First(&item, "tenant_id = ? AND sku = ?", tenantID, sku).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) ListItems(ctx context.Context, tenantID uuid.UUID, filter ItemFilter, cursor *pagination.Cursor, limit int) ([]models.InventoryItem, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit)
	if filter.SKU != nil {
		query = query.Where("sku LIKE ?", "%"+*filter.SKU+"%")
	}
	if filter.Name != nil {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(*filter.Name)+"%")
	}
	if cursor != nil {
		query = query.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var items []models.InventoryItem
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repository) GetStockLevel(ctx context.Context, tenantID, itemID uuid.UUID, locationID string) (*models.StockLevel, error) {
	var level models.StockLevel
	err := r.db.WithContext(ctx).
		First(&level, "tenant_id = ? AND inventory_item_id = ? AND location_id = ?", tenantID, itemID, locationID).Error
	if err != nil {
		return nil, err
	}
	return &level, nil
}

func (r *Repository) ListStockLevels(ctx context.Context, tenantID uuid.UUID, itemID *uuid.UUID) ([]models.StockLevel, error) {
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if itemID != nil {
		query = query.Where("inventory_item_id = ?", *itemID)
	}
	var levels []models.StockLevel
	if err := query.Order("inventory_item_id ASC").Order("location_id ASC").Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

func (r *Repository) SaveStockLevel(ctx context.Context, level *models.StockLevel) error {
	if level.ID == uuid.Nil {
		level.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Save(level).Error
}

func (r *Repository) CreateReservation(ctx context.Context, reservation *models.Reservation) error {
	if reservation.ID == uuid.Nil {
		reservation.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(reservation).Error
}

func (r *Repository) GetReservation(ctx context.Context, tenantID, reservationID uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		First(&reservation, "tenant_id = ? AND id = ?", tenantID, reservationID).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// SaveReservation persists a status transition.
func (r *Repository) SaveReservation(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Save(reservation).Error
}

func (r *Repository) ListReservations(ctx context.Context, tenantID uuid.UUID, filter ReservationFilter, cursor *pagination.Cursor, limit int) ([]models.Reservation, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit)
	if filter.ItemID != nil {
		query = query.Where("inventory_item_id = ?", *filter.ItemID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var reservations []models.Reservation
	if err := query.Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// ListExpiredActive returns active reservations whose expiry has passed,
// oldest first, across all tenants. The sweep job drains these in batches.
func (r *Repository) ListExpiredActive(ctx context.Context, cutoff time.Time, limit int) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at <= ?", enums.ReservationStatusActive, cutoff).
		Order("expires_at ASC").
		Limit(limit).
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *Repository) CreateAdjustment(ctx context.Context, adjustment *models.StockAdjustment) error {
	if adjustment.ID == uuid.Nil {
		adjustment.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(adjustment).Error
}

func (r *Repository) ListAdjustments(ctx context.Context, tenantID, itemID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.StockAdjustment, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND inventory_item_id = ?", tenantID, itemID).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit)
	if cursor != nil {
		query = query.Where("(created_at, id) > (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var adjustments []models.StockAdjustment
	if err := query.Find(&adjustments).Error; err != nil {
		return nil, err
	}
	return adjustments, nil
}
