package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

type fakeReleaser struct {
	batches []int
	calls   int
	err     error
}

func (f *fakeReleaser) ReleaseExpired(ctx context.Context, now time.Time, batchSize int) (int, error) {
	defer func() { f.calls++ }()
	if f.err != nil {
		return 0, f.err
	}
	if f.calls >= len(f.batches) {
		return 0, nil
	}
	return f.batches[f.calls], nil
}

func newExpiryJob(t *testing.T, releaser *fakeReleaser, batchSize int) Job {
	t.Helper()
	job, err := NewReservationExpiryJob(ReservationExpiryJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "cron-test"}),
		Inventory: releaser,
		BatchSize: batchSize,
	})
	if err != nil {
		t.Fatalf("NewReservationExpiryJob: %v", err)
	}
	return job
}

func TestReservationExpiryJobDrainsBacklog(t *testing.T) {
	// Two full batches followed by a short one ends the sweep.
	releaser := &fakeReleaser{batches: []int{10, 10, 3}}
	job := newExpiryJob(t, releaser, 10)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if releaser.calls != 3 {
		t.Fatalf("expected 3 sweeps, got %d", releaser.calls)
	}
}

func TestReservationExpiryJobStopsOnShortBatch(t *testing.T) {
	releaser := &fakeReleaser{batches: []int{4}}
	job := newExpiryJob(t, releaser, 10)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if releaser.calls != 1 {
		t.Fatalf("expected a single sweep, got %d", releaser.calls)
	}
}

func TestReservationExpiryJobSurfacesError(t *testing.T) {
	releaser := &fakeReleaser{err: errors.New("db down")}
	job := newExpiryJob(t, releaser, 10)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
