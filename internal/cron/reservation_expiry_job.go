package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

const defaultExpiryBatchSize = 200

// expiredReleaser releases reservations whose hold window has lapsed.
type expiredReleaser interface {
	ReleaseExpired(ctx context.Context, now time.Time, batchSize int) (int, error)
}

// ReservationExpiryJobParams configure the expiry sweep.
type ReservationExpiryJobParams struct {
	Logger    *logger.Logger
	Inventory expiredReleaser
	BatchSize int
}

// NewReservationExpiryJob builds the cron job that releases lapsed reservations.
func NewReservationExpiryJob(params ReservationExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultExpiryBatchSize
	}
	return &reservationExpiryJob{
		logg:      params.Logger,
		inventory: params.Inventory,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

type reservationExpiryJob struct {
	logg      *logger.Logger
	inventory expiredReleaser
	batchSize int
	now       func() time.Time
}

func (j *reservationExpiryJob) Name() string { return "reservation-expiry" }

// Run drains expired reservations in batches until a sweep comes back short,
// so a backlog larger than one batch clears in a single cycle.
func (j *reservationExpiryJob) Run(ctx context.Context) error {
	total := 0
	for {
		released, err := j.inventory.ReleaseExpired(ctx, j.now().UTC(), j.batchSize)
		total += released
		if err != nil {
			return fmt.Errorf("release expired reservations: %w", err)
		}
		if released < j.batchSize {
			break
		}
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"released": total})
	j.logg.Info(logCtx, "reservation expiry sweep complete")
	return nil
}
