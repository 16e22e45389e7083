package model

import "errors"

var (
	// Invalid input
	ErrServiceNotFound = errors.New("service not found")
	ErrServiceInactive = errors.New("service is not active")

	// Conflicts (expected, not logged as failures)
	ErrSlotUnavailable = errors.New("slot is not available")
	ErrSlotHeld        = errors.New("slot is held by another customer")
	ErrBookingOverlap  = errors.New("slot was booked by another customer")

	// Hold lifecycle
	ErrHoldNotFound = errors.New("hold not found")
	ErrHoldExpired  = errors.New("hold expired")

	// Transient infrastructure failures; the coordinator retries these
	// with backoff before surfacing them.
	ErrStoreUnavailable = errors.New("reservation store unavailable")

	// Schedule administration
	ErrHoursNotFound       = errors.New("business hours not configured")
	ErrHolidayNotFound     = errors.New("holiday not found")
	ErrMaintenanceNotFound = errors.New("maintenance block not found")
	ErrBookingNotFound     = errors.New("booking not found")
)
