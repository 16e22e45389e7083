package reservation

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/sparklewash/booking-service/holdstore"
	"github.com/sparklewash/booking-service/model"
)

// SlotChecker is the availability engine operation the coordinator uses to
// re-validate a slot at claim time.
type SlotChecker interface {
	CheckSlot(date string, startMinute int, serviceID string, holderID string) (*model.TimeSlot, error)
}

// ServiceReader resolves service definitions at confirmation time.
type ServiceReader interface {
	GetService(serviceID string) (*model.Service, error)
}

// BookingWriter is the slice of the booking repository the coordinator
// writes through.
type BookingWriter interface {
	GetBookingByHoldID(holdID string) (*model.Booking, error)
	CreateBookingIfNoOverlap(req model.CreateBookingRequest, maxConcurrent int) (*model.Booking, error)
	CancelBooking(bookingID string) (*model.Booking, error)
}

// Coordinator owns the hold lifecycle: claim a momentarily-available slot,
// convert a live hold into a booking, or release it. Holds are a courtesy
// to the customer filling in checkout; the booking insert's transactional
// overlap check remains the final double-booking authority even if the
// hold store misbehaves.
type Coordinator struct {
	engine   SlotChecker
	holds    holdstore.HoldStore
	bookings BookingWriter
	services ServiceReader
	notifier Notifier

	holdTTL time.Duration
	bays    int
	nowFunc func() time.Time
}

func NewCoordinator(engine SlotChecker, holds holdstore.HoldStore, bookings BookingWriter, services ServiceReader, notifier Notifier, holdTTL time.Duration, bays int) *Coordinator {
	return &Coordinator{
		engine:   engine,
		holds:    holds,
		bookings: bookings,
		services: services,
		notifier: notifier,
		holdTTL:  holdTTL,
		bays:     bays,
		nowFunc:  time.Now,
	}
}

// AttemptHold claims a slot for a holder. Availability is re-checked at
// claim time, then the hold store's atomic put decides the race; whichever
// caller wins gets the token, losers get ErrSlotHeld immediately. A holder
// re-claiming a slot they already hold gets their existing hold back.
// Transient ledger failures during the re-check are retried the same way
// as hold-store failures; conflicts surface on the first attempt.
func (c *Coordinator) AttemptHold(date string, startMinute int, serviceID string, holderID string) (*model.Hold, error) {
	if err := withRetry(func() error {
		_, checkErr := c.engine.CheckSlot(date, startMinute, serviceID, holderID)
		return checkErr
	}); err != nil {
		return nil, err
	}

	now := c.nowFunc()
	hold := &model.Hold{
		ID:          uuid.New().String(),
		Date:        date,
		StartMinute: startMinute,
		ServiceID:   serviceID,
		HolderID:    holderID,
		ExpiresAt:   now.Add(c.holdTTL),
		CreatedAt:   now,
	}

	var claimed bool
	err := withRetry(func() error {
		var putErr error
		claimed, putErr = c.holds.PutIfAbsent(hold, c.holdTTL)
		return putErr
	})
	if err != nil {
		// Could not secure the hold; never treat that as granted.
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	if claimed {
		return hold, nil
	}

	existing, err := c.holds.GetBySlot(date, startMinute)
	if err == nil && existing != nil && existing.HolderID == holderID {
		// Same holder re-claiming their slot, e.g. after a page refresh.
		return existing, nil
	}
	return nil, model.ErrSlotHeld
}

// ConfirmHold converts a live hold into a persisted booking. The call is
// idempotent on the hold token. On a persistence failure the hold is kept
// so the caller may retry; once the booking row exists the hold is only
// cleanup, so removing it is best-effort.
func (c *Coordinator) ConfirmHold(holdID string, req model.ConfirmHoldRequest) (*model.Booking, error) {
	var existing *model.Booking
	err := withRetry(func() error {
		var getErr error
		existing, getErr = c.bookings.GetBookingByHoldID(holdID)
		return getErr
	})
	if err == nil && existing != nil {
		return existing, nil
	}
	if err != nil && !errors.Is(err, model.ErrBookingNotFound) {
		return nil, err
	}

	var hold *model.Hold
	err = withRetry(func() error {
		var getErr error
		hold, getErr = c.holds.GetByID(holdID)
		return getErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	if hold == nil {
		return nil, model.ErrHoldNotFound
	}
	if hold.Expired(c.nowFunc()) {
		return nil, model.ErrHoldExpired
	}

	service, err := c.services.GetService(hold.ServiceID)
	if err != nil {
		return nil, err
	}

	total := service.PriceCents
	for _, addOnID := range req.AddOnIDs {
		addOn, err := c.services.GetService(addOnID)
		if err != nil {
			return nil, err
		}
		total += addOn.PriceCents
	}

	booking, err := c.bookings.CreateBookingIfNoOverlap(model.CreateBookingRequest{
		CustomerName:     req.CustomerName,
		CustomerEmail:    req.CustomerEmail,
		CustomerPhone:    req.CustomerPhone,
		Vehicle:          req.Vehicle,
		ServiceID:        service.ID,
		ServiceName:      service.Name,
		Date:             hold.Date,
		StartMinute:      hold.StartMinute,
		EndMinute:        hold.StartMinute + service.DurationMinutes,
		AddOnIDs:         req.AddOnIDs,
		TotalCents:       total,
		HoldID:           hold.ID,
		PaymentReference: req.PaymentReference,
	}, c.bays)
	if err != nil {
		// The hold stays in place; the customer still owns the slot and
		// may retry the confirmation.
		return nil, err
	}

	if err := c.holds.Remove(hold); err != nil {
		log.Printf("Failed to release hold %s after booking %s: %v", hold.ID, booking.ID, err)
	}

	if err := c.notifier.Notify(booking.ToNotification(model.NotificationBookingConfirmed)); err != nil {
		log.Printf("Failed to publish confirmation for booking %s: %v", booking.ID, err)
	}

	return booking, nil
}

// CancelBooking marks a booking cancelled and publishes the cancellation
// for the notification worker. The repository makes the status update
// idempotent; the freed capacity shows up in availability on the next read.
func (c *Coordinator) CancelBooking(bookingID string) (*model.Booking, error) {
	booking, err := c.bookings.CancelBooking(bookingID)
	if err != nil {
		return nil, err
	}

	if err := c.notifier.Notify(booking.ToNotification(model.NotificationBookingCancelled)); err != nil {
		log.Printf("Failed to publish cancellation for booking %s: %v", booking.ID, err)
	}

	return booking, nil
}

// ReleaseHold removes a holder's claim on a slot. Unknown tokens, expired
// holds, and tokens owned by someone else all report ErrHoldNotFound.
func (c *Coordinator) ReleaseHold(holdID string, holderID string) error {
	var hold *model.Hold
	err := withRetry(func() error {
		var getErr error
		hold, getErr = c.holds.GetByID(holdID)
		return getErr
	})
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	if hold == nil || hold.Expired(c.nowFunc()) || hold.HolderID != holderID {
		return model.ErrHoldNotFound
	}

	if err := c.holds.Remove(hold); err != nil {
		return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return nil
}
