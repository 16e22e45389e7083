package reservation

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sparklewash/booking-service/holdstore/memory"
	"github.com/sparklewash/booking-service/model"
)

const testDate = "2025-06-02"

type fakeChecker struct {
	err error
}

func (f *fakeChecker) CheckSlot(date string, startMinute int, serviceID string, holderID string) (*model.TimeSlot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.TimeSlot{
		StartMinute: startMinute,
		EndMinute:   startMinute + 45,
		StartTime:   model.ClockFromMinutes(startMinute),
		EndTime:     model.ClockFromMinutes(startMinute + 45),
	}, nil
}

// countingChecker fails its first failures calls with err, then behaves
// like fakeChecker.
type countingChecker struct {
	calls    int
	failures int
	err      error
}

func (f *countingChecker) CheckSlot(date string, startMinute int, serviceID string, holderID string) (*model.TimeSlot, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return (&fakeChecker{}).CheckSlot(date, startMinute, serviceID, holderID)
}

type fakeBookings struct {
	byHold         map[string]*model.Booking
	createErr      error
	created        []model.CreateBookingRequest
	lookupCalls    int
	lookupFailures int
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{byHold: map[string]*model.Booking{}}
}

func (f *fakeBookings) GetBookingByHoldID(holdID string) (*model.Booking, error) {
	f.lookupCalls++
	if f.lookupFailures > 0 {
		f.lookupFailures--
		return nil, errors.New("connection reset")
	}
	booking, ok := f.byHold[holdID]
	if !ok {
		return nil, model.ErrBookingNotFound
	}
	return booking, nil
}

func (f *fakeBookings) CreateBookingIfNoOverlap(req model.CreateBookingRequest, maxConcurrent int) (*model.Booking, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	booking := &model.Booking{
		ID:            uuid.New().String(),
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		ServiceID:     req.ServiceID,
		ServiceName:   req.ServiceName,
		Date:          req.Date,
		StartMinute:   req.StartMinute,
		EndMinute:     req.EndMinute,
		AddOnIDs:      req.AddOnIDs,
		TotalCents:    req.TotalCents,
		Status:        model.BookingStatusConfirmed,
		HoldID:        req.HoldID,
		CreatedAt:     time.Now(),
	}
	f.byHold[req.HoldID] = booking
	return booking, nil
}

func (f *fakeBookings) CancelBooking(bookingID string) (*model.Booking, error) {
	for _, booking := range f.byHold {
		if booking.ID == bookingID {
			booking.Status = model.BookingStatusCancelled
			return booking, nil
		}
	}
	return nil, model.ErrBookingNotFound
}

type fakeServices struct {
	services map[string]*model.Service
}

func (f *fakeServices) GetService(serviceID string) (*model.Service, error) {
	service, ok := f.services[serviceID]
	if !ok {
		return nil, model.ErrServiceNotFound
	}
	return service, nil
}

type fakeNotifier struct {
	published []model.NotificationRequest
}

func (f *fakeNotifier) Notify(req model.NotificationRequest) error {
	f.published = append(f.published, req)
	return nil
}

// failingStore simulates a hold store that cannot be reached.
type failingStore struct{}

func (failingStore) PutIfAbsent(*model.Hold, time.Duration) (bool, error) {
	return false, errors.New("connection refused")
}
func (failingStore) GetBySlot(string, int) (*model.Hold, error) {
	return nil, errors.New("connection refused")
}
func (failingStore) GetByID(string) (*model.Hold, error) {
	return nil, errors.New("connection refused")
}
func (failingStore) Remove(*model.Hold) error { return errors.New("connection refused") }
func (failingStore) Ping() error              { return errors.New("connection refused") }

type fixture struct {
	coordinator *Coordinator
	holds       *memory.MemoryHoldStore
	bookings    *fakeBookings
	notifier    *fakeNotifier
	now         time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		bookings: newFakeBookings(),
		notifier: &fakeNotifier{},
		now:      time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC),
	}
	// Store and coordinator share the fixture clock so tests can step time.
	f.holds = memory.NewMemoryHoldStoreAt(func() time.Time { return f.now })
	services := &fakeServices{services: map[string]*model.Service{
		"wash-45": {ID: "wash-45", Name: "Premium Wash", DurationMinutes: 45, PriceCents: 4500, IsActive: true},
		"wax":     {ID: "wax", Name: "Hand Wax", DurationMinutes: 0, PriceCents: 1500, IsActive: true},
	}}

	f.coordinator = NewCoordinator(&fakeChecker{}, f.holds, f.bookings, services, f.notifier, 5*time.Minute, 2)
	f.coordinator.nowFunc = func() time.Time { return f.now }
	return f
}

func TestAttemptHold(t *testing.T) {
	f := newFixture(t)

	hold, err := f.coordinator.AttemptHold(testDate, 600, "wash-45", "session-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hold.ID == "" || hold.HolderID != "session-a" || hold.StartMinute != 600 {
		t.Errorf("unexpected hold: %+v", hold)
	}
	if want := f.now.Add(5 * time.Minute); !hold.ExpiresAt.Equal(want) {
		t.Errorf("expires at %v, want %v", hold.ExpiresAt, want)
	}

	stored, err := f.holds.GetBySlot(testDate, 600)
	if err != nil || stored == nil || stored.ID != hold.ID {
		t.Errorf("hold not persisted: %+v err=%v", stored, err)
	}
}

func TestAttemptHoldConflictThenReleaseThenReclaim(t *testing.T) {
	f := newFixture(t)

	first, err := f.coordinator.AttemptHold(testDate, 600, "wash-45", "session-a")
	if err != nil {
		t.Fatalf("first claim failed: %v", err)
	}

	if _, err := f.coordinator.AttemptHold(testDate, 600, "wash-45", "session-b"); !errors.Is(err, model.ErrSlotHeld) {
		t.Fatalf("competing claim: got %v, want ErrSlotHeld", err)
	}

	if err := f.coordinator.ReleaseHold(first.ID, "session-a"); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	second, err := f.coordinator.AttemptHold(testDate, 600, "wash-45", "session-b")
	if err != nil {
		t.Fatalf("claim after release failed: %v", err)
	}
	if second.HolderID != "session-b" {
		t.Errorf("hold belongs to %s, want session-b", second.HolderID)
	}
}

func TestAttemptHoldReentrant(t *testing.T) {
	f := newFixture(t)

	first, err := f.coordinator.AttemptHold(testDate, 600, "wash-45", "session-a")
	if err != nil {
		t.Fatalf("first claim failed: %v", err)
	}

	again, err := f.coordinator.AttemptHold(testDate, 600, "wash-45", "session-a")
	if err != nil {
		t.Fatalf("re-claim by the same holder failed: %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("re-claim returned a new hold %s, want existing %s", again.ID, first.ID)
	}
}

func TestAttemptHoldAfterExpiry(t *testing.T) {
	f := newFixture(t)

	if _, err := f.coordinator.AttemptHold(testDate, 600, "wash-45", "session-a"); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}

	f.now = f.now.Add(5*time.Minute + time.Second)

	hold, err := f.coordinator.AttemptHold(testDate, 600, "wash-45", "session-b")
	if err != nil {
		t.Fatalf("claim on expired slot failed: %v", err)
	}
	if hold.HolderID != "session-b" {
		t.Errorf("hold belongs to %s, want session-b", hold.HolderID)
	}
}

func TestAttemptHoldFailsClosedOnStoreOutage(t *testing.T) {
	f := newFixture(t)
	f.coordinator.holds = failingStore{}

	if _, err := f.coordinator.AttemptHold(testDate, 600, "wash-45", "session-a"); !errors.Is(err, model.ErrStoreUnavailable) {
		t.Errorf("store outage: got %v, want ErrStoreUnavailable", err)
	}
}

func TestAttemptHoldRetriesTransientLedgerFailure(t *testing.T) {
	f := newFixture(t)
	checker := &countingChecker{
		failures: retryAttempts,
		err:      fmt.Errorf("%w: connection refused", model.ErrStoreUnavailable),
	}
	f.coordinator.engine = checker

	if _, err := f.coordinator.AttemptHold(testDate, 600, "wash-45", "session-a"); !errors.Is(err, model.ErrStoreUnavailable) {
		t.Fatalf("got %v, want ErrStoreUnavailable", err)
	}
	if checker.calls != retryAttempts {
		t.Errorf("slot check tried %d times, want %d", checker.calls, retryAttempts)
	}
}

func TestAttemptHoldRecoversFromLedgerBlip(t *testing.T) {
	f := newFixture(t)
	checker := &countingChecker{
		failures: 1,
		err:      fmt.Errorf("%w: connection refused", model.ErrStoreUnavailable),
	}
	f.coordinator.engine = checker

	hold, err := f.coordinator.AttemptHold(testDate, 600, "wash-45", "session-a")
	if err != nil {
		t.Fatalf("claim should survive a momentary ledger failure: %v", err)
	}
	if hold.HolderID != "session-a" {
		t.Errorf("hold belongs to %s, want session-a", hold.HolderID)
	}
	if checker.calls != 2 {
		t.Errorf("slot check tried %d times, want 2", checker.calls)
	}
}

func TestAttemptHoldDoesNotRetryConflicts(t *testing.T) {
	f := newFixture(t)
	checker := &countingChecker{failures: retryAttempts, err: model.ErrSlotHeld}
	f.coordinator.engine = checker

	if _, err := f.coordinator.AttemptHold(testDate, 600, "wash-45", "session-a"); !errors.Is(err, model.ErrSlotHeld) {
		t.Fatalf("got %v, want ErrSlotHeld", err)
	}
	if checker.calls != 1 {
		t.Errorf("conflict re-checked %d times, want 1", checker.calls)
	}
}

func TestAttemptHoldPropagatesEngineRejection(t *testing.T) {
	f := newFixture(t)
	f.coordinator.engine = &fakeChecker{err: model.ErrSlotUnavailable}

	if _, err := f.coordinator.AttemptHold(testDate, 600, "wash-45", "session-a"); !errors.Is(err, model.ErrSlotUnavailable) {
		t.Errorf("got %v, want ErrSlotUnavailable", err)
	}
}

func confirmRequest() model.ConfirmHoldRequest {
	return model.ConfirmHoldRequest{
		CustomerName:  "Dana Reyes",
		CustomerEmail: "dana@example.com",
		Vehicle:       "blue sedan",
	}
}

func TestConfirmHold(t *testing.T) {
	f := newFixture(t)

	hold, err := f.coordinator.AttemptHold(testDate, 600, "wash-45", "session-a")
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	req := confirmRequest()
	req.AddOnIDs = []string{"wax"}

	booking, err := f.coordinator.ConfirmHold(hold.ID, req)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if booking.Status != model.BookingStatusConfirmed {
		t.Errorf("status = %s, want confirmed", booking.Status)
	}
	if booking.StartMinute != 600 || booking.EndMinute != 645 {
		t.Errorf("booking window %d-%d, want 600-645", booking.StartMinute, booking.EndMinute)
	}
	if booking.TotalCents != 4500+1500 {
		t.Errorf("total = %d, want 6000 (service plus add-on)", booking.TotalCents)
	}

	// The hold is consumed and the confirmation published.
	if got, _ := f.holds.GetBySlot(testDate, 600); got != nil {
		t.Error("hold should be removed after confirmation")
	}
	if len(f.notifier.published) != 1 || f.notifier.published[0].Type != model.NotificationBookingConfirmed {
		t.Errorf("expected one confirmation notification, got %+v", f.notifier.published)
	}
}

func TestConfirmHoldIdempotent(t *testing.T) {
	f := newFixture(t)

	hold, err := f.coordinator.AttemptHold(testDate, 600, "wash-45", "session-a")
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	first, err := f.coordinator.ConfirmHold(hold.ID, confirmRequest())
	if err != nil {
		t.Fatalf("first confirm failed: %v", err)
	}
	second, err := f.coordinator.ConfirmHold(hold.ID, confirmRequest())
	if err != nil {
		t.Fatalf("repeat confirm failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("repeat confirm created a second booking: %s vs %s", second.ID, first.ID)
	}
	if len(f.bookings.created) != 1 {
		t.Errorf("expected one insert, got %d", len(f.bookings.created))
	}
}

func TestConfirmHoldRetriesTransientLookupFailure(t *testing.T) {
	f := newFixture(t)

	hold, err := f.coordinator.AttemptHold(testDate, 600, "wash-45", "session-a")
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	// One transient failure on the idempotency lookup must not fail the
	// confirmation.
	f.bookings.lookupFailures = 1

	if _, err := f.coordinator.ConfirmHold(hold.ID, confirmRequest()); err != nil {
		t.Fatalf("confirm should survive a momentary ledger failure: %v", err)
	}
	if f.bookings.lookupCalls != 2 {
		t.Errorf("hold lookup tried %d times, want 2", f.bookings.lookupCalls)
	}
}

func TestConfirmHoldUnknownToken(t *testing.T) {
	f := newFixture(t)

	if _, err := f.coordinator.ConfirmHold(uuid.New().String(), confirmRequest()); !errors.Is(err, model.ErrHoldNotFound) {
		t.Errorf("got %v, want ErrHoldNotFound", err)
	}
}

func TestConfirmHoldExpired(t *testing.T) {
	f := newFixture(t)

	hold, err := f.coordinator.AttemptHold(testDate, 600, "wash-45", "session-a")
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	f.now = f.now.Add(5*time.Minute + time.Second)

	if _, err := f.coordinator.ConfirmHold(hold.ID, confirmRequest()); !errors.Is(err, model.ErrHoldExpired) {
		t.Errorf("got %v, want ErrHoldExpired", err)
	}
	if len(f.bookings.created) != 0 {
		t.Error("expired hold must not produce a booking")
	}
}

func TestConfirmHoldOverlapKeepsHold(t *testing.T) {
	f := newFixture(t)

	hold, err := f.coordinator.AttemptHold(testDate, 600, "wash-45", "session-a")
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	f.bookings.createErr = model.ErrBookingOverlap

	if _, err := f.coordinator.ConfirmHold(hold.ID, confirmRequest()); !errors.Is(err, model.ErrBookingOverlap) {
		t.Fatalf("got %v, want ErrBookingOverlap", err)
	}

	// The customer still owns the slot and may retry.
	if got, _ := f.holds.GetByID(hold.ID); got == nil {
		t.Error("hold should survive a failed insert")
	}

	f.bookings.createErr = nil
	if _, err := f.coordinator.ConfirmHold(hold.ID, confirmRequest()); err != nil {
		t.Errorf("retry after failure should succeed, got %v", err)
	}
}

func TestCancelBooking(t *testing.T) {
	f := newFixture(t)

	hold, err := f.coordinator.AttemptHold(testDate, 600, "wash-45", "session-a")
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	booking, err := f.coordinator.ConfirmHold(hold.ID, confirmRequest())
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	cancelled, err := f.coordinator.CancelBooking(booking.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != model.BookingStatusCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}

	last := f.notifier.published[len(f.notifier.published)-1]
	if last.Type != model.NotificationBookingCancelled {
		t.Errorf("last notification = %s, want cancellation", last.Type)
	}

	if _, err := f.coordinator.CancelBooking(uuid.New().String()); !errors.Is(err, model.ErrBookingNotFound) {
		t.Errorf("unknown booking: got %v, want ErrBookingNotFound", err)
	}
}

func TestReleaseHold(t *testing.T) {
	f := newFixture(t)

	hold, err := f.coordinator.AttemptHold(testDate, 600, "wash-45", "session-a")
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}

	// A different session cannot release someone else's hold.
	if err := f.coordinator.ReleaseHold(hold.ID, "session-b"); !errors.Is(err, model.ErrHoldNotFound) {
		t.Errorf("foreign release: got %v, want ErrHoldNotFound", err)
	}
	if got, _ := f.holds.GetByID(hold.ID); got == nil {
		t.Fatal("foreign release must not remove the hold")
	}

	if err := f.coordinator.ReleaseHold(hold.ID, "session-a"); err != nil {
		t.Fatalf("owner release failed: %v", err)
	}
	if err := f.coordinator.ReleaseHold(hold.ID, "session-a"); !errors.Is(err, model.ErrHoldNotFound) {
		t.Errorf("repeat release: got %v, want ErrHoldNotFound", err)
	}

	if err := f.coordinator.ReleaseHold(uuid.New().String(), "session-a"); !errors.Is(err, model.ErrHoldNotFound) {
		t.Errorf("unknown token: got %v, want ErrHoldNotFound", err)
	}
}
