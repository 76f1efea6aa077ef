package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	"github.com/stockroomhq/stockroom-backend/pkg/pagination"
)

func seedReservation(t *testing.T, db *gorm.DB, tenantID, itemID uuid.UUID, status enums.ReservationStatus, expiresAt time.Time) *models.Reservation {
	t.Helper()
	reservation := &models.Reservation{
		ID:              uuid.New(),
		TenantID:        tenantID,
		InventoryItemID: itemID,
		Quantity:        1,
		Status:          status,
		Source:          enums.ReservationSourceSystem,
		ExpiresAt:       expiresAt,
	}
	require.NoError(t, db.Create(reservation).Error)
	return reservation
}

func TestRepositoryListExpiredActive(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	itemID := uuid.New()
	now := time.Now().UTC()

	oldest := seedReservation(t, db, tenantID, itemID, enums.ReservationStatusActive, now.Add(-2*time.Hour))
	newer := seedReservation(t, db, tenantID, itemID, enums.ReservationStatusActive, now.Add(-time.Hour))
	// neither terminal nor future rows qualify for the sweep
	seedReservation(t, db, tenantID, itemID, enums.ReservationStatusReleased, now.Add(-3*time.Hour))
	seedReservation(t, db, tenantID, itemID, enums.ReservationStatusActive, now.Add(time.Hour))

	expired, err := repo.ListExpiredActive(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, expired, 2)
	assert.Equal(t, oldest.ID, expired[0].ID)
	assert.Equal(t, newer.ID, expired[1].ID)

	limited, err := repo.ListExpiredActive(ctx, now, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, oldest.ID, limited[0].ID)
}

func TestRepositoryListReservationsFilter(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	itemA := uuid.New()
	itemB := uuid.New()
	future := time.Now().UTC().Add(time.Hour)

	active := seedReservation(t, db, tenantID, itemA, enums.ReservationStatusActive, future)
	seedReservation(t, db, tenantID, itemA, enums.ReservationStatusReleased, future)
	seedReservation(t, db, tenantID, itemB, enums.ReservationStatusActive, future)
	seedReservation(t, db, uuid.New(), itemA, enums.ReservationStatusActive, future)

	statusActive := enums.ReservationStatusActive
	rows, err := repo.ListReservations(ctx, tenantID, ReservationFilter{ItemID: &itemA, Status: &statusActive}, nil, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, active.ID, rows[0].ID)

	rows, err = repo.ListReservations(ctx, tenantID, ReservationFilter{}, nil, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestRepositoryListItemsCursor(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)

	var created []models.InventoryItem
	for i := 0; i < 3; i++ {
		item := models.InventoryItem{
			ID:        uuid.New(),
			TenantID:  tenantID,
			SKU:       "CUR-" + uuid.NewString()[:8],
			Name:      "cursor item",
			Unit:      "each",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&item).Error)
		created = append(created, item)
	}

	first, err := repo.ListItems(ctx, tenantID, ItemFilter{}, nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, created[0].ID, first[0].ID)
	assert.Equal(t, created[1].ID, first[1].ID)

	cursor := &pagination.Cursor{CreatedAt: first[1].CreatedAt, ID: first[1].ID}
	rest, err := repo.ListItems(ctx, tenantID, ItemFilter{}, cursor, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, created[2].ID, rest[0].ID)
}

func TestRepositoryGetStockLevelMissing(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := NewRepository(db)

	_, err := repo.GetStockLevel(context.Background(), uuid.New(), uuid.New(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
