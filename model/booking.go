package model

import (
	"time"

	"github.com/lib/pq"
)

// Booking status values. Cancelled and no-show bookings release capacity;
// every other status occupies it.
const (
	BookingStatusPending    = "pending"
	BookingStatusConfirmed  = "confirmed"
	BookingStatusInProgress = "in_progress"
	BookingStatusCompleted  = "completed"
	BookingStatusCancelled  = "cancelled"
	BookingStatusNoShow     = "no_show"
)

// ============================================================================
// DATABASE ENTITIES (Internal - GORM only, no JSON tags)
// ============================================================================

// Booking represents the database model for appointments.
type Booking struct {
	ID               string         `gorm:"primary_key;default:gen_random_uuid()"`
	CustomerName     string         `gorm:"type:varchar(255);not null"`
	CustomerEmail    string         `gorm:"type:varchar(255);not null"`
	CustomerPhone    string         `gorm:"type:varchar(50)"`
	Vehicle          string         `gorm:"type:varchar(255)"`
	ServiceID        string         `gorm:"not null;index"`
	ServiceName      string         `gorm:"type:varchar(255);not null"`
	Date             string         `gorm:"type:varchar(10);not null;index"`
	StartMinute      int            `gorm:"not null"`
	EndMinute        int            `gorm:"not null"`
	AddOnIDs         pq.StringArray `gorm:"type:text[]"`
	TotalCents       int            `gorm:"not null"`
	Status           string         `gorm:"type:varchar(20);not null;default:'confirmed';index"`
	HoldID           string         `gorm:"type:varchar(64);index"`
	PaymentReference string         `gorm:"type:varchar(255)"`
	CreatedAt        time.Time      `gorm:"default:CURRENT_TIMESTAMP"`
	CancelledAt      *time.Time
	CompletedAt      *time.Time
}

// TableName sets the table name for GORM
func (Booking) TableName() string {
	return "bookings"
}

// ============================================================================
// REPOSITORY DATA TRANSFER OBJECTS (Internal - no JSON tags)
// ============================================================================

// BookingInterval is the occupancy view the availability engine consumes:
// the half-open time range a non-cancelled booking occupies.
type BookingInterval struct {
	StartMinute int
	EndMinute   int
}

// CreateBookingRequest represents the data needed to persist a booking.
type CreateBookingRequest struct {
	CustomerName     string
	CustomerEmail    string
	CustomerPhone    string
	Vehicle          string
	ServiceID        string
	ServiceName      string
	Date             string
	StartMinute      int
	EndMinute        int
	AddOnIDs         []string
	TotalCents       int
	HoldID           string
	PaymentReference string
}

// BookingFilter represents filtering options for admin booking queries.
type BookingFilter struct {
	Date   string
	Status string
	Limit  int
	Offset int
}

// ============================================================================
// API DATA TRANSFER OBJECTS (External - JSON tags for HTTP)
// ============================================================================

// ConfirmHoldRequest carries checkout details when converting a hold.
type ConfirmHoldRequest struct {
	CustomerName     string   `json:"customer_name" binding:"required"`
	CustomerEmail    string   `json:"customer_email" binding:"required,email"`
	CustomerPhone    string   `json:"customer_phone"`
	Vehicle          string   `json:"vehicle"`
	AddOnIDs         []string `json:"add_on_ids"`
	PaymentReference string   `json:"payment_reference"`
}

// BookingResponse is the wire form of a booking.
type BookingResponse struct {
	BookingID     string     `json:"booking_id"`
	Status        string     `json:"status"`
	CustomerName  string     `json:"customer_name"`
	CustomerEmail string     `json:"customer_email"`
	ServiceID     string     `json:"service_id"`
	ServiceName   string     `json:"service_name"`
	Date          string     `json:"date"`
	StartTime     string     `json:"start_time"`
	EndTime       string     `json:"end_time"`
	AddOnIDs      []string   `json:"add_on_ids,omitempty"`
	TotalCents    int        `json:"total_cents"`
	CreatedAt     time.Time  `json:"created_at"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
}

// BookingListResponse is the admin listing envelope.
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse represents error response structure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ============================================================================
// KAFKA MESSAGE STRUCTURES
// ============================================================================

// Notification types published to the notification topic.
const (
	NotificationBookingConfirmed = "booking_confirmation"
	NotificationBookingCancelled = "booking_cancellation"
)

// NotificationRequest represents the message sent to the notification topic.
type NotificationRequest struct {
	Type           string                  `json:"type"`
	RecipientEmail string                  `json:"recipient_email"`
	RecipientPhone string                  `json:"recipient_phone,omitempty"`
	BookingData    NotificationBookingData `json:"booking_data"`
	Timestamp      time.Time               `json:"timestamp"`
}

// NotificationBookingData represents booking data for notifications.
type NotificationBookingData struct {
	BookingID    string `json:"booking_id"`
	CustomerName string `json:"customer_name"`
	ServiceName  string `json:"service_name"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	TotalCents   int    `json:"total_cents"`
}

// ============================================================================
// CONVERSION METHODS
// ============================================================================

// ToResponse converts a Booking entity to its wire form.
func (b *Booking) ToResponse() BookingResponse {
	return BookingResponse{
		BookingID:     b.ID,
		Status:        b.Status,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		ServiceID:     b.ServiceID,
		ServiceName:   b.ServiceName,
		Date:          b.Date,
		StartTime:     ClockFromMinutes(b.StartMinute),
		EndTime:       ClockFromMinutes(b.EndMinute),
		AddOnIDs:      b.AddOnIDs,
		TotalCents:    b.TotalCents,
		CreatedAt:     b.CreatedAt,
		CancelledAt:   b.CancelledAt,
	}
}

// ToNotification builds the notification payload for this booking.
func (b *Booking) ToNotification(notificationType string) NotificationRequest {
	return NotificationRequest{
		Type:           notificationType,
		RecipientEmail: b.CustomerEmail,
		RecipientPhone: b.CustomerPhone,
		BookingData: NotificationBookingData{
			BookingID:    b.ID,
			CustomerName: b.CustomerName,
			ServiceName:  b.ServiceName,
			Date:         b.Date,
			StartTime:    ClockFromMinutes(b.StartMinute),
			TotalCents:   b.TotalCents,
		},
		Timestamp: time.Now(),
	}
}
