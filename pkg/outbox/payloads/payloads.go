// Package payloads defines the typed event bodies carried inside outbox envelopes.
package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// ItemCreatedEvent announces a new catalog entry.
type ItemCreatedEvent struct {
	ItemID   uuid.UUID `json:"itemId"`
	TenantID uuid.UUID `json:"tenantId"`
	SKU      string    `json:"sku"`
	Name     string    `json:"name"`
}

// StockAdjustedEvent records an on-hand mutation and the resulting level.
type StockAdjustedEvent struct {
	ItemID         uuid.UUID `json:"itemId"`
	TenantID       uuid.UUID `json:"tenantId"`
	LocationID     *string   `json:"locationId,omitempty"`
	Delta          int       `json:"delta"`
	Reason         string    `json:"reason"`
	Actor          string    `json:"actor"`
	QuantityOnHand int       `json:"quantityOnHand"`
}

// ReservationCreatedEvent announces a successful hold.
type ReservationCreatedEvent struct {
	ReservationID uuid.UUID               `json:"reservationId"`
	ItemID        uuid.UUID               `json:"itemId"`
	TenantID      uuid.UUID               `json:"tenantId"`
	LocationID    *string                 `json:"locationId,omitempty"`
	Quantity      int                     `json:"quantity"`
	Source        enums.ReservationSource `json:"source"`
	ExpiresAt     time.Time               `json:"expiresAt"`
}

// ReservationSettledEvent is shared by release, fulfill and expiry events.
type ReservationSettledEvent struct {
	ReservationID uuid.UUID               `json:"reservationId"`
	ItemID        uuid.UUID               `json:"itemId"`
	TenantID      uuid.UUID               `json:"tenantId"`
	LocationID    *string                 `json:"locationId,omitempty"`
	Quantity      int                     `json:"quantity"`
	Status        enums.ReservationStatus `json:"status"`
}
