package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateInventoryItem OutboxAggregateType = "inventory_item"
	AggregateStockLevel    OutboxAggregateType = "stock_level"
	AggregateReservation   OutboxAggregateType = "reservation"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateInventoryItem,
	AggregateStockLevel,
	AggregateReservation,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventItemCreated         OutboxEventType = "inventory.item.created"
	EventStockAdjusted       OutboxEventType = "inventory.stock.adjusted"
	EventReservationCreated  OutboxEventType = "inventory.reservation.created"
	EventReservationReleased OutboxEventType = "inventory.reservation.released"
	EventReservationFulfill  OutboxEventType = "inventory.reservation.fulfilled"
	EventReservationExpired  OutboxEventType = "inventory.reservation.expired"
)

var validOutboxEventTypes = []OutboxEventType{
	EventItemCreated,
	EventStockAdjusted,
	EventReservationCreated,
	EventReservationReleased,
	EventReservationFulfill,
	EventReservationExpired,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

// OutboxEventStatus tracks delivery state for outbox rows.
type OutboxEventStatus string

const (
	OutboxStatusPending   OutboxEventStatus = "pending"
	OutboxStatusPublished OutboxEventStatus = "published"
	OutboxStatusFailed    OutboxEventStatus = "failed"
)

var validOutboxEventStatuses = []OutboxEventStatus{
	OutboxStatusPending,
	OutboxStatusPublished,
	OutboxStatusFailed,
}

// IsValid reports whether the value matches the canonical outbox status enum.
func (s OutboxEventStatus) IsValid() bool {
	for _, candidate := range validOutboxEventStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}
