package models

import (
	"time"

	"github.com/google/uuid"
)

// StockLevel tracks on-hand and reserved counts for one (tenant, item, location)
// bucket. LocationID is the empty string for the tenant-wide default bucket so
// the composite unique index stays enforceable.
type StockLevel struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TenantID         uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:idx_stock_levels_bucket"`
	InventoryItemID  uuid.UUID `gorm:"column:inventory_item_id;type:uuid;not null;uniqueIndex:idx_stock_levels_bucket"`
	LocationID       string    `gorm:"column:location_id;not null;default:'';uniqueIndex:idx_stock_levels_bucket"`
	QuantityOnHand   int       `gorm:"column:quantity_on_hand;not null;default:0"`
	QuantityReserved int       `gorm:"column:quantity_reserved;not null;default:0"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
