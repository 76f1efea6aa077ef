package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/internal/inventory"
	pkgAuth "github.com/stockroomhq/stockroom-backend/pkg/auth"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
	"github.com/stockroomhq/stockroom-backend/pkg/redis"
	"github.com/stockroomhq/stockroom-backend/pkg/types"
)

type stubInventoryService struct {
	createdItems []inventory.CreateItemInput
	reserveCalls []inventory.ReserveInput
}

func (s *stubInventoryService) CreateItem(_ context.Context, tenantID uuid.UUID, input inventory.CreateItemInput) (*inventory.ItemDTO, error) {
	s.createdItems = append(s.createdItems, input)
	return &inventory.ItemDTO{ID: uuid.New(), TenantID: tenantID, SKU: input.SKU, Name: input.Name}, nil
}

func (s *stubInventoryService) GetItem(context.Context, uuid.UUID, uuid.UUID) (*inventory.ItemDTO, error) {
	return &inventory.ItemDTO{}, nil
}

func (s *stubInventoryService) ListItems(context.Context, uuid.UUID, inventory.ListItemsInput) (*inventory.ItemListResult, error) {
	return &inventory.ItemListResult{}, nil
}

func (s *stubInventoryService) GetStockLevel(context.Context, uuid.UUID, uuid.UUID, *string) (*inventory.StockLevelDTO, error) {
	return &inventory.StockLevelDTO{}, nil
}

func (s *stubInventoryService) GetAvailability(context.Context, uuid.UUID, uuid.UUID, *string) (*inventory.AvailabilityDTO, error) {
	return &inventory.AvailabilityDTO{}, nil
}

func (s *stubInventoryService) ListStockLevels(context.Context, uuid.UUID, *uuid.UUID) ([]inventory.StockLevelDTO, error) {
	return nil, nil
}

func (s *stubInventoryService) AdjustStock(context.Context, uuid.UUID, inventory.AdjustStockInput) (*inventory.StockLevelDTO, error) {
	return &inventory.StockLevelDTO{}, nil
}

func (s *stubInventoryService) ListAdjustments(context.Context, uuid.UUID, uuid.UUID, pagination.Params) (*inventory.AdjustmentListResult, error) {
	return &inventory.AdjustmentListResult{}, nil
}

func (s *stubInventoryService) Reserve(_ context.Context, _ uuid.UUID, input inventory.ReserveInput) (*inventory.ReservationDTO, error) {
	s.reserveCalls = append(s.reserveCalls, input)
	return &inventory.ReservationDTO{ID: uuid.New(), Status: enums.ReservationStatusActive}, nil
}

func (s *stubInventoryService) GetReservation(context.Context, uuid.UUID, uuid.UUID) (*inventory.ReservationDTO, error) {
	return &inventory.ReservationDTO{}, nil
}

func (s *stubInventoryService) ListReservations(context.Context, uuid.UUID, inventory.ListReservationsInput) (*inventory.ReservationListResult, error) {
	return &inventory.ReservationListResult{}, nil
}

func (s *stubInventoryService) ReleaseReservation(context.Context, uuid.UUID, uuid.UUID) (*inventory.ReservationDTO, error) {
	return &inventory.ReservationDTO{Status: enums.ReservationStatusReleased}, nil
}

func (s *stubInventoryService) FulfillReservation(context.Context, uuid.UUID, uuid.UUID) (*inventory.ReservationDTO, error) {
	return &inventory.ReservationDTO{Status: enums.ReservationStatusFulfilled}, nil
}

func (s *stubInventoryService) ReleaseExpired(context.Context, time.Time, int) (int, error) {
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "stockroom-test",
			ExpirationMinutes: 15,
		},
	}
}

func newTestRouter(t *testing.T, svc inventory.Service) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	return NewRouter(testConfig(), logg, (*db.Client)(nil), (*redis.Client)(nil), svc)
}

func bearerToken(t *testing.T, cfg *config.Config, tenantID uuid.UUID) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		TenantID: tenantID,
		Actor:    "router-test",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestRouterHealthAndPublicRoutesSkipAuth(t *testing.T) {
	router := newTestRouter(t, &stubInventoryService{})

	for _, path := range []string{"/health/live", "/api/public/ping"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
	}
}

func TestRouterRequiresAuthForAPIRoutes(t *testing.T) {
	router := newTestRouter(t, &stubInventoryService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", w.Code)
	}
}

func TestRouterCreateItemRoundTrip(t *testing.T) {
	svc := &stubInventoryService{}
	router := newTestRouter(t, svc)
	tenantID := uuid.New()

	body := `{"sku":"WID-1","name":"Widget","unit":"each","initialQuantity":10}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, testConfig(), tenantID))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(svc.createdItems) != 1 {
		t.Fatalf("expected 1 create call, got %d", len(svc.createdItems))
	}
	if svc.createdItems[0].SKU != "WID-1" || svc.createdItems[0].InitialQuantity != 10 {
		t.Fatalf("unexpected input: %+v", svc.createdItems[0])
	}

	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data == nil {
		t.Fatal("expected item payload")
	}
}

func TestRouterRejectsUnknownBodyFields(t *testing.T) {
	router := newTestRouter(t, &stubInventoryService{})
	tenantID := uuid.New()

	body := `{"sku":"WID-1","name":"Widget","surprise":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, testConfig(), tenantID))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRouterReservationSettleRoutes(t *testing.T) {
	svc := &stubInventoryService{}
	router := newTestRouter(t, svc)
	tenantID := uuid.New()
	token := bearerToken(t, testConfig(), tenantID)
	reservationID := uuid.New()

	for _, action := range []string{"release", "fulfill"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations/"+reservationID.String()+"/"+action, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", action, w.Code, w.Body.String())
		}
	}
}
