package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/sparklewash/booking-service/model"
)

// MemoryHoldStore keeps holds in process memory. It backs the service when
// Redis is unreachable at startup (holds then only survive as long as the
// process, which is acceptable because booking creation re-checks overlap
// in its own transaction) and serves as the test double.
type MemoryHoldStore struct {
	mu      sync.Mutex
	bySlot  map[string]*model.Hold
	byID    map[string]*model.Hold
	nowFunc func() time.Time
}

func NewMemoryHoldStore() *MemoryHoldStore {
	return &MemoryHoldStore{
		bySlot:  make(map[string]*model.Hold),
		byID:    make(map[string]*model.Hold),
		nowFunc: time.Now,
	}
}

// NewMemoryHoldStoreAt uses the given clock instead of time.Now, so tests
// can step time across the expiry boundary.
func NewMemoryHoldStoreAt(nowFunc func() time.Time) *MemoryHoldStore {
	s := NewMemoryHoldStore()
	s.nowFunc = nowFunc
	return s
}

func slotKey(date string, startMinute int) string {
	return fmt.Sprintf("%s:%04d", date, startMinute)
}

// PutIfAbsent claims the slot under the store mutex; expired occupants are
// evicted rather than blocking the claim.
func (s *MemoryHoldStore) PutIfAbsent(hold *model.Hold, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := slotKey(hold.Date, hold.StartMinute)
	if existing, ok := s.bySlot[key]; ok {
		if !existing.Expired(s.nowFunc()) {
			return false, nil
		}
		delete(s.byID, existing.ID)
	}

	stored := *hold
	if stored.ExpiresAt.IsZero() {
		stored.ExpiresAt = s.nowFunc().Add(ttl)
	}
	s.bySlot[key] = &stored
	s.byID[stored.ID] = &stored
	return true, nil
}

func (s *MemoryHoldStore) GetBySlot(date string, startMinute int) (*model.Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveCopy(s.bySlot[slotKey(date, startMinute)]), nil
}

// GetByID returns the hold with the token even after its deadline, so the
// coordinator can tell an expired hold apart from an unknown one.
func (s *MemoryHoldStore) GetByID(holdID string) (*model.Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hold, ok := s.byID[holdID]
	if !ok {
		return nil, nil
	}
	copied := *hold
	return &copied, nil
}

// liveCopy returns a copy of the hold, or nil when the hold is missing or
// past its deadline. Callers hold the mutex.
func (s *MemoryHoldStore) liveCopy(hold *model.Hold) *model.Hold {
	if hold == nil || hold.Expired(s.nowFunc()) {
		return nil
	}
	copied := *hold
	return &copied
}

func (s *MemoryHoldStore) Remove(hold *model.Hold) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := slotKey(hold.Date, hold.StartMinute)
	if existing, ok := s.bySlot[key]; ok && existing.ID == hold.ID {
		delete(s.bySlot, key)
	}
	delete(s.byID, hold.ID)
	return nil
}

func (s *MemoryHoldStore) Ping() error {
	return nil
}
