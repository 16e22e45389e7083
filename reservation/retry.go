package reservation

import (
	"errors"
	"time"

	"github.com/sparklewash/booking-service/model"
)

const (
	retryAttempts = 3
	retryBaseWait = 100 * time.Millisecond
)

// retryable classifies errors the way the coordinator treats them:
// conflicts, expiry, and lookup misses are legitimate outcomes and must
// surface immediately; anything else is assumed to be a connectivity-class
// failure worth another attempt.
func retryable(err error) bool {
	permanent := []error{
		model.ErrSlotUnavailable,
		model.ErrSlotHeld,
		model.ErrBookingOverlap,
		model.ErrHoldNotFound,
		model.ErrHoldExpired,
		model.ErrServiceNotFound,
		model.ErrServiceInactive,
		model.ErrBookingNotFound,
	}
	for _, p := range permanent {
		if errors.Is(err, p) {
			return false
		}
	}
	return true
}

// withRetry runs op with bounded exponential backoff, stopping early on
// permanent errors. The last error is returned when attempts exhaust.
func withRetry(op func() error) error {
	var err error
	wait := retryBaseWait
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		if attempt < retryAttempts-1 {
			time.Sleep(wait)
			wait *= 2
		}
	}
	return err
}
