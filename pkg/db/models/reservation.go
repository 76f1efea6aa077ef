package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// Reservation is a hold against a specific stock bucket. It records the
// location it was placed against so release and fulfill settle the same bucket.
type Reservation struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	TenantID        uuid.UUID               `gorm:"column:tenant_id;type:uuid;not null;index:idx_reservations_tenant_item"`
	InventoryItemID uuid.UUID               `gorm:"column:inventory_item_id;type:uuid;not null;index:idx_reservations_tenant_item"`
	LocationID      string                  `gorm:"column:location_id;not null;default:''"`
	Quantity        int                     `gorm:"column:quantity;not null"`
	Status          enums.ReservationStatus `gorm:"column:status;type:reservation_status;not null;default:'active';index:idx_reservations_status_expiry"`
	Source          enums.ReservationSource `gorm:"column:source;type:reservation_source;not null"`
	ExpiresAt       time.Time               `gorm:"column:expires_at;not null;index:idx_reservations_status_expiry"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
