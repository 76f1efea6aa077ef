package inventory

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestKeyLockSerializesSameKey(t *testing.T) {
	locks := newKeyLock()
	key := bucketKey(uuid.New(), uuid.New(), "")

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Acquire(key)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Fatalf("expected 50 serialized increments, got %d", counter)
	}
}

func TestKeyLockIndependentKeysDoNotBlock(t *testing.T) {
	locks := newKeyLock()
	first := locks.Acquire("a")
	defer first()

	done := make(chan struct{})
	go func() {
		unlock := locks.Acquire("b")
		unlock()
		close(done)
	}()
	<-done
}

func TestBucketKeyDistinguishesLocations(t *testing.T) {
	tenant, item := uuid.New(), uuid.New()
	if bucketKey(tenant, item, "") == bucketKey(tenant, item, "warehouse-1") {
		t.Fatal("default and named location buckets must not share a lock key")
	}
}
