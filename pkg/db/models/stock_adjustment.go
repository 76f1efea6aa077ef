package models

import (
	"time"

	"github.com/google/uuid"
)

// StockAdjustment is the append-only audit trail for on-hand mutations.
type StockAdjustment struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TenantID        uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index:idx_stock_adjustments_tenant_item"`
	InventoryItemID uuid.UUID `gorm:"column:inventory_item_id;type:uuid;not null;index:idx_stock_adjustments_tenant_item"`
	LocationID      string    `gorm:"column:location_id;not null;default:''"`
	Delta           int       `gorm:"column:delta;not null"`
	Reason          string    `gorm:"column:reason;not null"`
	Actor           string    `gorm:"column:actor;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}
