package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/api/middleware"
	"github.com/stockroomhq/stockroom-backend/api/responses"
	"github.com/stockroomhq/stockroom-backend/api/validators"
	"github.com/stockroomhq/stockroom-backend/internal/inventory"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

type createReservationRequest struct {
	ItemID     string     `json:"itemId" validate:"required,uuid"`
	LocationID *string    `json:"locationId,omitempty" validate:"omitempty,max=128"`
	Quantity   int        `json:"quantity" validate:"required,gt=0"`
	Source     string     `json:"source,omitempty" validate:"omitempty,oneof=pos svm mvm system"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

// CreateReservation places a hold on available stock.
func CreateReservation(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := requireTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createReservationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := uuid.Parse(payload.ItemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid itemId"))
			return
		}

		source := enums.ReservationSource(strings.TrimSpace(payload.Source))
		if source == "" {
			// Fall back to the channel baked into the caller's token.
			source = enums.ReservationSource(middleware.SourceFromContext(r.Context()))
		}
		if source == "" {
			source = enums.ReservationSourceSystem
		}

		reservation, err := svc.Reserve(r.Context(), tenantID, inventory.ReserveInput{
			ItemID:     itemID,
			LocationID: payload.LocationID,
			Quantity:   payload.Quantity,
			Source:     source,
			ExpiresAt:  payload.ExpiresAt,
			Actor:      middleware.ActorFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, reservation)
	}
}

// GetReservation fetches one reservation within the caller's tenant.
func GetReservation(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := requireTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservationID, err := pathUUID(r, "reservationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservation, err := svc.GetReservation(r.Context(), tenantID, reservationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, reservation)
	}
}

// ListReservations pages reservations, optionally narrowed by item or status.
func ListReservations(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := requireTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := validators.ParseQueryUUID(r, "item_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var status *enums.ReservationStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed, parseErr := enums.ParseReservationStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status"))
				return
			}
			status = &parsed
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListReservations(r.Context(), tenantID, inventory.ListReservationsInput{
			ItemID: itemID,
			Status: status,
			Params: params,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ReleaseReservation returns a hold's quantity to the available pool.
func ReleaseReservation(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return settleHandler(logg, func(r *http.Request, tenantID, reservationID uuid.UUID) (*inventory.ReservationDTO, error) {
		return svc.ReleaseReservation(r.Context(), tenantID, reservationID)
	})
}

// FulfillReservation consumes a hold, deducting on-hand stock.
func FulfillReservation(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return settleHandler(logg, func(r *http.Request, tenantID, reservationID uuid.UUID) (*inventory.ReservationDTO, error) {
		return svc.FulfillReservation(r.Context(), tenantID, reservationID)
	})
}

func settleHandler(logg *logger.Logger, settle func(*http.Request, uuid.UUID, uuid.UUID) (*inventory.ReservationDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, err := requireTenant(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservationID, err := pathUUID(r, "reservationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservation, err := settle(r, tenantID, reservationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, reservation)
	}
}
