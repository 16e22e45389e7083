package holdstore

import (
	"time"

	"github.com/sparklewash/booking-service/model"
)

// HoldStore is the shared store for in-flight reservation holds. One live
// hold may exist per (date, startMinute) slot; PutIfAbsent is the atomic
// claim that enforces it. Entries vanish on their own at the TTL, and every
// read must also treat a record whose expires_at has passed as absent, so
// correctness does not depend on the store's cleanup having run.
type HoldStore interface {
	// PutIfAbsent stores the hold under its slot key only if no live hold
	// occupies that slot. Returns false (and no error) when the slot is
	// already claimed. An error means the store could not be reached and
	// the claim must be treated as NOT granted.
	PutIfAbsent(hold *model.Hold, ttl time.Duration) (bool, error)

	// GetBySlot returns the live hold on a slot, or nil if none. Expired
	// records are never returned here.
	GetBySlot(date string, startMinute int) (*model.Hold, error)

	// GetByID returns the hold with the given token, or nil if unknown.
	// Unlike GetBySlot this may return an already-expired hold: the token
	// index is kept around a while longer so confirmation after the
	// deadline can be reported as "expired" rather than "never existed".
	GetByID(holdID string) (*model.Hold, error)

	// Remove deletes the hold. Removing an already-gone hold is not an
	// error; expiry may have beaten the caller to it.
	Remove(hold *model.Hold) error

	// Ping reports whether the store is reachable.
	Ping() error
}
