package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/pkg/types"
)

// InventoryItem is the catalog entry stock is tracked against.
// SKUs are unique per tenant, never globally.
type InventoryItem struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	TenantID  uuid.UUID      `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:idx_inventory_items_tenant_sku"`
	SKU       string         `gorm:"column:sku;not null;uniqueIndex:idx_inventory_items_tenant_sku"`
	Name      string         `gorm:"column:name;not null"`
	Unit      string         `gorm:"column:unit;not null"`
	Metadata  types.Metadata `gorm:"column:metadata;type:jsonb"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
