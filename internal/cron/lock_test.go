package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeRedisStore struct {
	values map[string]string
	sets   int
}

func newFakeRedisStore() *fakeRedisStore {
	return &fakeRedisStore{values: map[string]string{}}
}

func (f *fakeRedisStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeRedisStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.sets++
	f.values[key] = value.(string)
	return nil
}

func (f *fakeRedisStore) Get(_ context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeRedisStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func TestRedisLockAcquireRefreshRelease(t *testing.T) {
	store := newFakeRedisStore()
	lock, err := NewRedisLock(store, "sweeps", time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}
	ctx := context.Background()

	ok, err := lock.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("expected to acquire lock, ok=%v err=%v", ok, err)
	}
	if err := lock.Refresh(ctx); err != nil {
		t.Fatalf("refresh while held: %v", err)
	}
	if store.sets != 1 {
		t.Fatalf("expected one lease extension, got %d", store.sets)
	}
	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, ok := store.values["sweeps"]; ok {
		t.Fatalf("lock key still present after release")
	}
}

func TestRedisLockRefreshFailsWhenKeyExpired(t *testing.T) {
	store := newFakeRedisStore()
	lock, err := NewRedisLock(store, "sweeps", time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}
	ctx := context.Background()

	if ok, err := lock.Acquire(ctx); err != nil || !ok {
		t.Fatalf("expected to acquire lock, ok=%v err=%v", ok, err)
	}
	delete(store.values, "sweeps")
	if err := lock.Refresh(ctx); err == nil {
		t.Fatalf("expected refresh to fail after expiry")
	}
	// ownership is dropped, so release must not delete another holder's key
	store.values["sweeps"] = "other-owner"
	if err := lock.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if store.values["sweeps"] != "other-owner" {
		t.Fatalf("release removed a lock owned elsewhere")
	}
}

func TestRedisLockRefreshFailsWhenTakenOver(t *testing.T) {
	store := newFakeRedisStore()
	lock, err := NewRedisLock(store, "sweeps", time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}
	ctx := context.Background()

	if ok, err := lock.Acquire(ctx); err != nil || !ok {
		t.Fatalf("expected to acquire lock, ok=%v err=%v", ok, err)
	}
	store.values["sweeps"] = "other-owner"
	if err := lock.Refresh(ctx); err == nil {
		t.Fatalf("expected refresh to fail after takeover")
	}
	if store.sets != 0 {
		t.Fatalf("refresh extended a lock owned elsewhere")
	}
}
