package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	"github.com/stockroomhq/stockroom-backend/pkg/types"
)

// ItemDTO is the API shape for a catalog entry.
type ItemDTO struct {
	ID        uuid.UUID      `json:"id"`
	TenantID  uuid.UUID      `json:"tenantId"`
	SKU       string         `json:"sku"`
	Name      string         `json:"name"`
	Unit      string         `json:"unit"`
	Metadata  types.Metadata `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// StockLevelDTO is the API shape for one stock bucket. Availability is
// derived, never stored, and can go negative after downward adjustments.
type StockLevelDTO struct {
	InventoryItemID   uuid.UUID `json:"inventoryItemId"`
	TenantID          uuid.UUID `json:"tenantId"`
	LocationID        *string   `json:"locationId"`
	QuantityOnHand    int       `json:"quantityOnHand"`
	QuantityReserved  int       `json:"quantityReserved"`
	QuantityAvailable int       `json:"quantityAvailable"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// AvailabilityDTO is the derived availability snapshot for one bucket.
type AvailabilityDTO struct {
	InventoryItemID   uuid.UUID `json:"inventoryItemId"`
	LocationID        *string   `json:"locationId"`
	QuantityOnHand    int       `json:"quantityOnHand"`
	QuantityReserved  int       `json:"quantityReserved"`
	QuantityAvailable int       `json:"quantityAvailable"`
}

// ReservationDTO is the API shape for a hold.
type ReservationDTO struct {
	ID              uuid.UUID               `json:"id"`
	InventoryItemID uuid.UUID               `json:"inventoryItemId"`
	TenantID        uuid.UUID               `json:"tenantId"`
	LocationID      *string                 `json:"locationId"`
	Quantity        int                     `json:"quantity"`
	Status          enums.ReservationStatus `json:"status"`
	Source          enums.ReservationSource `json:"source"`
	ExpiresAt       time.Time               `json:"expiresAt"`
	CreatedAt       time.Time               `json:"createdAt"`
}

// AdjustmentDTO is the API shape for one audit trail row.
type AdjustmentDTO struct {
	ID              uuid.UUID `json:"id"`
	InventoryItemID uuid.UUID `json:"inventoryItemId"`
	TenantID        uuid.UUID `json:"tenantId"`
	LocationID      *string   `json:"locationId"`
	Delta           int       `json:"delta"`
	Reason          string    `json:"reason"`
	Actor           string    `json:"actor"`
	Timestamp       time.Time `json:"timestamp"`
}

// ItemListResult carries one page of items plus the next cursor.
type ItemListResult struct {
	Items      []ItemDTO `json:"items"`
	NextCursor *string   `json:"nextCursor"`
}

// ReservationListResult carries one page of reservations plus the next cursor.
type ReservationListResult struct {
	Reservations []ReservationDTO `json:"reservations"`
	NextCursor   *string          `json:"nextCursor"`
}

// AdjustmentListResult carries one page of adjustments plus the next cursor.
type AdjustmentListResult struct {
	Adjustments []AdjustmentDTO `json:"adjustments"`
	NextCursor  *string         `json:"nextCursor"`
}

func itemToDTO(item *models.InventoryItem) *ItemDTO {
	return &ItemDTO{
		ID:        item.ID,
		TenantID:  item.TenantID,
		SKU:       item.SKU,
		Name:      item.Name,
		Unit:      item.Unit,
		Metadata:  item.Metadata,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

func stockLevelToDTO(level *models.StockLevel) *StockLevelDTO {
	return &StockLevelDTO{
		InventoryItemID:   level.InventoryItemID,
		TenantID:          level.TenantID,
		LocationID:        locationOut(level.LocationID),
		QuantityOnHand:    level.QuantityOnHand,
		QuantityReserved:  level.QuantityReserved,
		QuantityAvailable: level.QuantityOnHand - level.QuantityReserved,
		UpdatedAt:         level.UpdatedAt,
	}
}

func reservationToDTO(reservation *models.Reservation) *ReservationDTO {
	return &ReservationDTO{
		ID:              reservation.ID,
		InventoryItemID: reservation.InventoryItemID,
		TenantID:        reservation.TenantID,
		LocationID:      locationOut(reservation.LocationID),
		Quantity:        reservation.Quantity,
		Status:          reservation.Status,
		Source:          reservation.Source,
		ExpiresAt:       reservation.ExpiresAt,
		CreatedAt:       reservation.CreatedAt,
	}
}

func adjustmentToDTO(adjustment *models.StockAdjustment) *AdjustmentDTO {
	return &AdjustmentDTO{
		ID:              adjustment.ID,
		InventoryItemID: adjustment.InventoryItemID,
		TenantID:        adjustment.TenantID,
		LocationID:      locationOut(adjustment.LocationID),
		Delta:           adjustment.Delta,
		Reason:          adjustment.Reason,
		Actor:           adjustment.Actor,
		Timestamp:       adjustment.CreatedAt,
	}
}

// locationIn maps the optional API location to the stored bucket key. The
// default bucket is stored as the empty string.
func locationIn(locationID *string) string {
	if locationID == nil {
		return ""
	}
	return *locationID
}

// locationOut maps the stored bucket key back to the optional API shape.
func locationOut(locationID string) *string {
	if locationID == "" {
		return nil
	}
	return &locationID
}
