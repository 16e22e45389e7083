package model

import "time"

// Slot conflict types surfaced to the storefront so the UI can say why a
// slot is blocked instead of a bare "unavailable".
const (
	ConflictHeld        = "held"
	ConflictMaintenance = "maintenance"
	ConflictCapacity    = "capacity"
)

// SlotConflict explains one reason a slot cannot be booked.
type SlotConflict struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// TimeSlot is a computed candidate interval for one (date, service) query.
// Slots are recomputed on every availability request and never persisted.
type TimeSlot struct {
	StartMinute       int            `json:"-"`
	EndMinute         int            `json:"-"`
	StartTime         string         `json:"start_time"`
	EndTime           string         `json:"end_time"`
	MaxCapacity       int            `json:"max_capacity"`
	CurrentBookings   int            `json:"current_bookings"`
	AvailableCapacity int            `json:"available_capacity"`
	IsAvailable       bool           `json:"is_available"`
	Conflicts         []SlotConflict `json:"conflicts,omitempty"`
}

// Hold is a short-lived claim on one (date, startMinute) slot while a
// customer completes checkout. At most one live hold may exist per slot;
// the store's atomic put enforces that.
type Hold struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	StartMinute int       `json:"start_minute"`
	ServiceID   string    `json:"service_id"`
	HolderID    string    `json:"holder_id"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Expired reports whether the hold's deadline has passed at the given
// instant. Reads must treat expired records as absent even when the
// store's own TTL cleanup has not run yet.
func (h *Hold) Expired(now time.Time) bool {
	return !now.Before(h.ExpiresAt)
}

// ============================================================================
// API DATA TRANSFER OBJECTS (External - JSON tags for HTTP)
// ============================================================================

// AvailabilityResponse is the availability query envelope.
type AvailabilityResponse struct {
	Date         string     `json:"date"`
	ServiceID    string     `json:"service_id"`
	Open         bool       `json:"open"`
	ClosedReason string     `json:"closed_reason,omitempty"`
	Slots        []TimeSlot `json:"slots"`
}

// CreateHoldRequest is the API request to claim a slot.
type CreateHoldRequest struct {
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time" binding:"required"`
	ServiceID string `json:"service_id" binding:"required"`
}

// HoldResponse is returned when a hold is granted.
type HoldResponse struct {
	HoldID    string    `json:"hold_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	ServiceID string    `json:"service_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ToResponse converts a Hold to its wire form.
func (h *Hold) ToResponse() HoldResponse {
	return HoldResponse{
		HoldID:    h.ID,
		Date:      h.Date,
		StartTime: ClockFromMinutes(h.StartMinute),
		ServiceID: h.ServiceID,
		ExpiresAt: h.ExpiresAt,
	}
}
