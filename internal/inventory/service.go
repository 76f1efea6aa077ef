package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/metrics"
	"github.com/stockroomhq/stockroom-backend/pkg/outbox"
	"github.com/stockroomhq/stockroom-backend/pkg/outbox/payloads"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
	"github.com/stockroomhq/stockroom-backend/pkg/types"
)

const payloadVersion = 1

// Service exposes the stock ledger and reservation state machine.
type Service interface {
	CreateItem(ctx context.Context, tenantID uuid.UUID, input CreateItemInput) (*ItemDTO, error)
	GetItem(ctx context.Context, tenantID, itemID uuid.UUID) (*ItemDTO, error)
	ListItems(ctx context.Context, tenantID uuid.UUID, input ListItemsInput) (*ItemListResult, error)

	GetStockLevel(ctx context.Context, tenantID, itemID uuid.UUID, locationID *string) (*StockLevelDTO, error)
	GetAvailability(ctx context.Context, tenantID, itemID uuid.UUID, locationID *string) (*AvailabilityDTO, error)
	ListStockLevels(ctx context.Context, tenantID uuid.UUID, itemID *uuid.UUID) ([]StockLevelDTO, error)
	AdjustStock(ctx context.Context, tenantID uuid.UUID, input AdjustStockInput) (*StockLevelDTO, error)
	ListAdjustments(ctx context.Context, tenantID, itemID uuid.UUID, params pagination.Params) (*AdjustmentListResult, error)

	Reserve(ctx context.Context, tenantID uuid.UUID, input ReserveInput) (*ReservationDTO, error)
	GetReservation(ctx context.Context, tenantID, reservationID uuid.UUID) (*ReservationDTO, error)
	ListReservations(ctx context.Context, tenantID uuid.UUID, input ListReservationsInput) (*ReservationListResult, error)
	ReleaseReservation(ctx context.Context, tenantID, reservationID uuid.UUID) (*ReservationDTO, error)
	FulfillReservation(ctx context.Context, tenantID, reservationID uuid.UUID) (*ReservationDTO, error)

	ReleaseExpired(ctx context.Context, now time.Time, batchSize int) (int, error)
}

// CreateItemInput holds the validated payload to create a catalog entry.
type CreateItemInput struct {
	SKU             string
	Name            string
	Unit            string
	Metadata        types.Metadata
	LocationID      *string
	InitialQuantity int
	Actor           string
}

// AdjustStockInput holds one on-hand mutation.
type AdjustStockInput struct {
	ItemID     uuid.UUID
	LocationID *string
	Delta      int
	Reason     string
	Actor      string
}

// ReserveInput holds one reservation request.
type ReserveInput struct {
	ItemID     uuid.UUID
	LocationID *string
	Quantity   int
	Source     enums.ReservationSource
	ExpiresAt  *time.Time
	Actor      string
}

// ListItemsInput narrows and pages catalog listings.
type ListItemsInput struct {
	SKU    *string
	Name   *string
	Params pagination.Params
}

// ListReservationsInput narrows and pages reservation listings.
type ListReservationsInput struct {
	ItemID *uuid.UUID
	Status *enums.ReservationStatus
	Params pagination.Params
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// service implements the inventory service.
type service struct {
	repo           *Repository
	dbClient       txRunner
	outboxSvc      *outbox.Service
	invMetrics     *metrics.InventoryMetrics
	logg           *logger.Logger
	locks          *keyLock
	reservationTTL time.Duration
}

// NewService constructs an inventory service instance.
func NewService(repo *Repository, dbClient txRunner, outboxSvc *outbox.Service, invMetrics *metrics.InventoryMetrics, logg *logger.Logger, reservationTTL time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if reservationTTL <= 0 {
		reservationTTL = 15 * time.Minute
	}
	return &service{
		repo:           repo,
		dbClient:       dbClient,
		outboxSvc:      outboxSvc,
		invMetrics:     invMetrics,
		logg:           logg,
		locks:          newKeyLock(),
		reservationTTL: reservationTTL,
	}, nil
}

func (s *service) CreateItem(ctx context.Context, tenantID uuid.UUID, input CreateItemInput) (*ItemDTO, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeTenantScope, "tenant id is required")
	}
	if input.SKU == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Unit == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit is required")
	}
	if input.InitialQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial quantity must not be negative")
	}

	item := &models.InventoryItem{
		ID:       uuid.New(),
		TenantID: tenantID,
		SKU:      input.SKU,
		Name:     input.Name,
		Unit:     input.Unit,
		Metadata: input.Metadata,
	}
	level := &models.StockLevel{
		ID:              uuid.New(),
		TenantID:        tenantID,
		InventoryItemID: item.ID,
		LocationID:      locationIn(input.LocationID),
		QuantityOnHand:  input.InitialQuantity,
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.GetItemBySKU(ctx, tenantID, input.SKU); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("sku %q already exists for tenant", input.SKU))
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking sku uniqueness")
		}
		if err := txRepo.CreateItem(ctx, item); err != nil {
			// backstop for inserts racing past the pre-check
			if dbpkg.IsUniqueViolation(err, "idx_inventory_items_tenant_sku") {
				return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("sku %q already exists for tenant", input.SKU))
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating inventory item")
		}
		if err := txRepo.SaveStockLevel(ctx, level); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating stock level")
		}
		return s.outboxSvc.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventItemCreated,
			AggregateType: enums.AggregateInventoryItem,
			AggregateID:   item.ID,
			TenantID:      tenantID,
			Actor:         actorRef(tenantID, input.Actor, ""),
			Version:       payloadVersion,
			Data: payloads.ItemCreatedEvent{
				ItemID:   item.ID,
				TenantID: tenantID,
				SKU:      item.SKU,
				Name:     item.Name,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithTenantID(ctx, tenantID.String())
	logCtx = s.logg.WithItemID(logCtx, item.ID.String())
	s.logg.Info(logCtx, "inventory item created")
	return itemToDTO(item), nil
}

func (s *service) GetItem(ctx context.Context, tenantID, itemID uuid.UUID) (*ItemDTO, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeTenantScope, "tenant id is required")
	}
	item, err := s.repo.GetItem(ctx, tenantID, itemID)
	if err != nil {
		return nil, mapLookupError(err, "inventory item")
	}
	return itemToDTO(item), nil
}

func (s *service) ListItems(ctx context.Context, tenantID uuid.UUID, input ListItemsInput) (*ItemListResult, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeTenantScope, "tenant id is required")
	}
	params := input.Params
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	filter := ItemFilter{SKU: input.SKU, Name: input.Name}
	rows, err := s.repo.ListItems(ctx, tenantID, filter, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing items")
	}

	result := &ItemListResult{Items: make([]ItemDTO, 0, len(rows))}
	for i := range rows {
		if i == limit {
			break
		}
		result.Items = append(result.Items, *itemToDTO(&rows[i]))
	}
	if len(rows) > limit {
		last := result.Items[len(result.Items)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		result.NextCursor = &next
	}
	return result, nil
}

func (s *service) GetStockLevel(ctx context.Context, tenantID, itemID uuid.UUID, locationID *string) (*StockLevelDTO, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeTenantScope, "tenant id is required")
	}
	level, err := s.repo.GetStockLevel(ctx, tenantID, itemID, locationIn(locationID))
	if err != nil {
		return nil, mapLookupError(err, "stock level")
	}
	return stockLevelToDTO(level), nil
}

// GetAvailability derives on-hand minus reserved for one bucket. The result
// can be negative after a downward adjustment.
func (s *service) GetAvailability(ctx context.Context, tenantID, itemID uuid.UUID, locationID *string) (*AvailabilityDTO, error) {
	level, err := s.GetStockLevel(ctx, tenantID, itemID, locationID)
	if err != nil {
		return nil, err
	}
	return &AvailabilityDTO{
		InventoryItemID:   level.InventoryItemID,
		LocationID:        level.LocationID,
		QuantityOnHand:    level.QuantityOnHand,
		QuantityReserved:  level.QuantityReserved,
		QuantityAvailable: level.QuantityAvailable,
	}, nil
}

func (s *service) ListStockLevels(ctx context.Context, tenantID uuid.UUID, itemID *uuid.UUID) ([]StockLevelDTO, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeTenantScope, "tenant id is required")
	}
	rows, err := s.repo.ListStockLevels(ctx, tenantID, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing stock levels")
	}
	levels := make([]StockLevelDTO, 0, len(rows))
	for i := range rows {
		levels = append(levels, *stockLevelToDTO(&rows[i]))
	}
	return levels, nil
}

func (s *service) AdjustStock(ctx context.Context, tenantID uuid.UUID, input AdjustStockInput) (*StockLevelDTO, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeTenantScope, "tenant id is required")
	}
	if input.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason is required")
	}
	if input.Actor == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor is required")
	}

	location := locationIn(input.LocationID)
	unlock := s.locks.Acquire(bucketKey(tenantID, input.ItemID, location))
	defer unlock()

	var level *models.StockLevel
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.GetItem(ctx, tenantID, input.ItemID); err != nil {
			return mapLookupError(err, "inventory item")
		}

		existing, err := txRepo.GetStockLevel(ctx, tenantID, input.ItemID, location)
		switch {
		case err == nil:
			level = existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			// First adjustment against this bucket creates it from zero.
			level = &models.StockLevel{
				ID:              uuid.New(),
				TenantID:        tenantID,
				InventoryItemID: input.ItemID,
				LocationID:      location,
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading stock level")
		}

		level.QuantityOnHand += input.Delta
		if err := txRepo.SaveStockLevel(ctx, level); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving stock level")
		}

		adjustment := &models.StockAdjustment{
			ID:              uuid.New(),
			TenantID:        tenantID,
			InventoryItemID: input.ItemID,
			LocationID:      location,
			Delta:           input.Delta,
			Reason:          input.Reason,
			Actor:           input.Actor,
		}
		if err := txRepo.CreateAdjustment(ctx, adjustment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording adjustment")
		}

		return s.outboxSvc.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventStockAdjusted,
			AggregateType: enums.AggregateStockLevel,
			AggregateID:   level.ID,
			TenantID:      tenantID,
			Actor:         actorRef(tenantID, input.Actor, ""),
			Version:       payloadVersion,
			Data: payloads.StockAdjustedEvent{
				ItemID:         input.ItemID,
				TenantID:       tenantID,
				LocationID:     input.LocationID,
				Delta:          input.Delta,
				Reason:         input.Reason,
				Actor:          input.Actor,
				QuantityOnHand: level.QuantityOnHand,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.invMetrics.IncAdjustment(input.Delta)
	if level.QuantityOnHand < level.QuantityReserved {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"tenant_id":         tenantID.String(),
			"item_id":           input.ItemID.String(),
			"location_id":       location,
			"quantity_on_hand":  level.QuantityOnHand,
			"quantity_reserved": level.QuantityReserved,
		})
		s.logg.Warn(logCtx, "stock adjustment drove availability negative")
	}
	return stockLevelToDTO(level), nil
}

func (s *service) ListAdjustments(ctx context.Context, tenantID, itemID uuid.UUID, params pagination.Params) (*AdjustmentListResult, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeTenantScope, "tenant id is required")
	}
	if _, err := s.repo.GetItem(ctx, tenantID, itemID); err != nil {
		return nil, mapLookupError(err, "inventory item")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListAdjustments(ctx, tenantID, itemID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing adjustments")
	}

	result := &AdjustmentListResult{Adjustments: make([]AdjustmentDTO, 0, len(rows))}
	for i := range rows {
		if i == limit {
			break
		}
		result.Adjustments = append(result.Adjustments, *adjustmentToDTO(&rows[i]))
	}
	if len(rows) > limit {
		last := result.Adjustments[len(result.Adjustments)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.Timestamp, ID: last.ID})
		result.NextCursor = &next
	}
	return result, nil
}

func (s *service) Reserve(ctx context.Context, tenantID uuid.UUID, input ReserveInput) (*ReservationDTO, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeTenantScope, "tenant id is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if !input.Source.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid reservation source %q", input.Source))
	}

	location := locationIn(input.LocationID)
	unlock := s.locks.Acquire(bucketKey(tenantID, input.ItemID, location))
	defer unlock()

	var reservation *models.Reservation
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.GetItem(ctx, tenantID, input.ItemID); err != nil {
			return mapLookupError(err, "inventory item")
		}
		level, err := txRepo.GetStockLevel(ctx, tenantID, input.ItemID, location)
		if err != nil {
			return mapLookupError(err, "stock level")
		}

		available := level.QuantityOnHand - level.QuantityReserved
		if input.Quantity > available {
			return pkgerrors.InsufficientStock(input.ItemID.String(), input.Quantity, available)
		}

		now := time.Now().UTC()
		expiresAt := now.Add(s.reservationTTL)
		if input.ExpiresAt != nil {
			expiresAt = input.ExpiresAt.UTC()
		}
		reservation = &models.Reservation{
			ID:              uuid.New(),
			TenantID:        tenantID,
			InventoryItemID: input.ItemID,
			LocationID:      location,
			Quantity:        input.Quantity,
			Status:          enums.ReservationStatusActive,
			Source:          input.Source,
			ExpiresAt:       expiresAt,
		}
		if err := txRepo.CreateReservation(ctx, reservation); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating reservation")
		}

		level.QuantityReserved += input.Quantity
		if err := txRepo.SaveStockLevel(ctx, level); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving stock level")
		}

		return s.outboxSvc.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReservationCreated,
			AggregateType: enums.AggregateReservation,
			AggregateID:   reservation.ID,
			TenantID:      tenantID,
			Actor:         actorRef(tenantID, input.Actor, input.Source),
			Version:       payloadVersion,
			Data: payloads.ReservationCreatedEvent{
				ReservationID: reservation.ID,
				ItemID:        input.ItemID,
				TenantID:      tenantID,
				LocationID:    input.LocationID,
				Quantity:      input.Quantity,
				Source:        input.Source,
				ExpiresAt:     reservation.ExpiresAt,
			},
		})
	})
	if err != nil {
		if pkgerrors.As(err) != nil && pkgerrors.As(err).Code() == pkgerrors.CodeInsufficientStock {
			s.invMetrics.IncReservationOutcome("insufficient_stock")
		}
		return nil, err
	}

	s.invMetrics.IncReservationOutcome("created")
	logCtx := s.logg.WithTenantID(ctx, tenantID.String())
	logCtx = s.logg.WithReservationID(logCtx, reservation.ID.String())
	s.logg.Info(logCtx, "stock reserved")
	return reservationToDTO(reservation), nil
}

func (s *service) GetReservation(ctx context.Context, tenantID, reservationID uuid.UUID) (*ReservationDTO, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeTenantScope, "tenant id is required")
	}
	reservation, err := s.repo.GetReservation(ctx, tenantID, reservationID)
	if err != nil {
		return nil, mapLookupError(err, "reservation")
	}
	return reservationToDTO(reservation), nil
}

func (s *service) ListReservations(ctx context.Context, tenantID uuid.UUID, input ListReservationsInput) (*ReservationListResult, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeTenantScope, "tenant id is required")
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid reservation status %q", *input.Status))
	}
	cursor, err := pagination.ParseCursor(input.Params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Params.Limit)

	rows, err := s.repo.ListReservations(ctx, tenantID, ReservationFilter{ItemID: input.ItemID, Status: input.Status}, cursor, pagination.LimitWithBuffer(input.Params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing reservations")
	}

	result := &ReservationListResult{Reservations: make([]ReservationDTO, 0, len(rows))}
	for i := range rows {
		if i == limit {
			break
		}
		result.Reservations = append(result.Reservations, *reservationToDTO(&rows[i]))
	}
	if len(rows) > limit {
		last := result.Reservations[len(result.Reservations)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		result.NextCursor = &next
	}
	return result, nil
}

func (s *service) ReleaseReservation(ctx context.Context, tenantID, reservationID uuid.UUID) (*ReservationDTO, error) {
	dto, err := s.settle(ctx, tenantID, reservationID, enums.ReservationStatusReleased, enums.EventReservationReleased)
	if err != nil {
		return nil, err
	}
	s.invMetrics.IncReservationOutcome("released")
	return dto, nil
}

func (s *service) FulfillReservation(ctx context.Context, tenantID, reservationID uuid.UUID) (*ReservationDTO, error) {
	dto, err := s.settle(ctx, tenantID, reservationID, enums.ReservationStatusFulfilled, enums.EventReservationFulfill)
	if err != nil {
		return nil, err
	}
	s.invMetrics.IncReservationOutcome("fulfilled")
	return dto, nil
}

// settle moves an active reservation to a terminal status and returns the
// reserved quantity to the bucket it was taken from. Fulfillment additionally
// consumes on-hand stock.
func (s *service) settle(ctx context.Context, tenantID, reservationID uuid.UUID, target enums.ReservationStatus, eventType enums.OutboxEventType) (*ReservationDTO, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeTenantScope, "tenant id is required")
	}

	// The bucket key lives on the reservation, so resolve it before locking.
	existing, err := s.repo.GetReservation(ctx, tenantID, reservationID)
	if err != nil {
		return nil, mapLookupError(err, "reservation")
	}

	unlock := s.locks.Acquire(bucketKey(tenantID, existing.InventoryItemID, existing.LocationID))
	defer unlock()

	var reservation *models.Reservation
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		// Re-read under the lock; a concurrent settle may have won.
		current, err := txRepo.GetReservation(ctx, tenantID, reservationID)
		if err != nil {
			return mapLookupError(err, "reservation")
		}
		if current.Status != enums.ReservationStatusActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("reservation is %s, only active reservations can transition", current.Status)).
				WithDetails(map[string]any{"status": current.Status})
		}

		current.Status = target
		if err := txRepo.SaveReservation(ctx, current); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving reservation")
		}

		level, err := txRepo.GetStockLevel(ctx, tenantID, current.InventoryItemID, current.LocationID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading stock level")
		}

		newReserved := level.QuantityReserved - current.Quantity
		if newReserved < 0 {
			// Reserved counts never go negative; hitting this floor means the
			// ledger drifted, so flag it loudly instead of failing the settle.
			newReserved = 0
			s.invMetrics.IncReservedClamped()
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"tenant_id":      tenantID.String(),
				"item_id":        current.InventoryItemID.String(),
				"reservation_id": current.ID.String(),
			})
			s.logg.Warn(logCtx, "reserved count clamped at zero during settle")
		}
		level.QuantityReserved = newReserved
		if target == enums.ReservationStatusFulfilled {
			level.QuantityOnHand -= current.Quantity
		}
		if err := txRepo.SaveStockLevel(ctx, level); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving stock level")
		}

		reservation = current
		return s.outboxSvc.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateReservation,
			AggregateID:   current.ID,
			TenantID:      tenantID,
			Version:       payloadVersion,
			Data: payloads.ReservationSettledEvent{
				ReservationID: current.ID,
				ItemID:        current.InventoryItemID,
				TenantID:      tenantID,
				LocationID:    locationOut(current.LocationID),
				Quantity:      current.Quantity,
				Status:        target,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithTenantID(ctx, tenantID.String())
	logCtx = s.logg.WithReservationID(logCtx, reservation.ID.String())
	s.logg.Info(logCtx, fmt.Sprintf("reservation %s", target))
	return reservationToDTO(reservation), nil
}

// ReleaseExpired releases active reservations whose expiry passed before now.
// Each reservation settles through the same per-bucket discipline as a manual
// release; races with a concurrent release or fulfill are skipped, not failed.
func (s *service) ReleaseExpired(ctx context.Context, now time.Time, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 100
	}
	expired, err := s.repo.ListExpiredActive(ctx, now, batchSize)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing expired reservations")
	}

	released := 0
	for i := range expired {
		reservation := &expired[i]
		_, err := s.settle(ctx, reservation.TenantID, reservation.ID, enums.ReservationStatusReleased, enums.EventReservationExpired)
		if err != nil {
			typed := pkgerrors.As(err)
			if typed != nil && (typed.Code() == pkgerrors.CodeStateConflict || typed.Code() == pkgerrors.CodeNotFound) {
				continue
			}
			return released, err
		}
		released++
	}

	s.invMetrics.AddReservationsExpired(released)
	if released > 0 {
		logCtx := s.logg.WithField(ctx, "released", released)
		s.logg.Info(logCtx, "expired reservations released")
	}
	return released, nil
}

func actorRef(tenantID uuid.UUID, actor string, source enums.ReservationSource) *outbox.ActorRef {
	return &outbox.ActorRef{TenantID: tenantID, Actor: actor, Source: source}
}

// mapLookupError folds missing rows into NotFound. Cross-tenant rows are
// filtered by the tenant-scoped queries, so they surface identically to rows
// that never existed.
func mapLookupError(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s not found", resource))
	}
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("loading %s", resource))
}
