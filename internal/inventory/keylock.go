package inventory

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// keyLock serializes writers per stock bucket. Check-and-reserve must see a
// settled view of (tenant, item, location), so every mutation of a bucket
// acquires its lock before opening a transaction.
//
// Locks are never evicted; the map is bounded by bucket cardinality, which
// grows with the catalog rather than with traffic.
type keyLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyLock() *keyLock {
	return &keyLock{locks: make(map[string]*sync.Mutex)}
}

// Acquire blocks until the bucket lock is held and returns the release func.
func (k *keyLock) Acquire(key string) func() {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// bucketKey canonicalizes the lock key for one stock bucket. The empty
// location string is the tenant-wide default bucket.
func bucketKey(tenantID, itemID uuid.UUID, locationID string) string {
	return fmt.Sprintf("%s|%s|%s", tenantID, itemID, locationID)
}
