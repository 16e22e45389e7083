package model

import (
	"time"
)

// ============================================================================
// DATABASE ENTITIES (Internal - GORM only, no JSON tags)
// ============================================================================

// BusinessHours holds the opening configuration for one weekday.
// Times are stored as minute-of-day values. A weekday with no row, or with
// IsOpen false, generates no slots.
type BusinessHours struct {
	Weekday     int  `gorm:"primary_key"`
	IsOpen      bool `gorm:"not null;default:false"`
	OpenMinute  int  `gorm:"not null;default:0"`
	CloseMinute int  `gorm:"not null;default:0"`
	BreakStart  *int
	BreakEnd    *int
	UpdatedAt   time.Time
}

func (BusinessHours) TableName() string {
	return "business_hours"
}

// HasBreak reports whether a midday break is configured.
func (h *BusinessHours) HasBreak() bool {
	return h.BreakStart != nil && h.BreakEnd != nil
}

// Holiday marks a whole date as closed regardless of weekday configuration.
type Holiday struct {
	Date      string `gorm:"primary_key;type:varchar(10)"`
	Name      string `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time
}

func (Holiday) TableName() string {
	return "holidays"
}

// MaintenanceBlock takes a time range on one date out of service
// (bay repairs, equipment checks). Slots overlapping a block are reported
// as unavailable with a maintenance conflict.
type MaintenanceBlock struct {
	ID          string `gorm:"primary_key;default:gen_random_uuid()"`
	Date        string `gorm:"type:varchar(10);not null;index"`
	StartMinute int    `gorm:"not null"`
	EndMinute   int    `gorm:"not null"`
	Reason      string `gorm:"type:varchar(255)"`
	CreatedAt   time.Time
}

func (MaintenanceBlock) TableName() string {
	return "maintenance_blocks"
}

// Service is one entry of the wash catalog. DurationMinutes determines how
// much of the day a booking occupies; only active services can be scheduled.
type Service struct {
	ID              string `gorm:"primary_key;default:gen_random_uuid()"`
	Name            string `gorm:"type:varchar(255);not null"`
	Description     string `gorm:"type:text"`
	DurationMinutes int    `gorm:"not null"`
	PriceCents      int    `gorm:"not null"`
	IsActive        bool   `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Service) TableName() string {
	return "services"
}

// ============================================================================
// API DATA TRANSFER OBJECTS (External - JSON tags for HTTP)
// ============================================================================

// UpsertBusinessHoursRequest configures one weekday.
type UpsertBusinessHoursRequest struct {
	IsOpen     bool    `json:"is_open"`
	OpenTime   string  `json:"open_time"`
	CloseTime  string  `json:"close_time"`
	BreakStart *string `json:"break_start,omitempty"`
	BreakEnd   *string `json:"break_end,omitempty"`
}

// BusinessHoursResponse is the wire form of one weekday's configuration.
type BusinessHoursResponse struct {
	Weekday    int     `json:"weekday"`
	IsOpen     bool    `json:"is_open"`
	OpenTime   string  `json:"open_time,omitempty"`
	CloseTime  string  `json:"close_time,omitempty"`
	BreakStart *string `json:"break_start,omitempty"`
	BreakEnd   *string `json:"break_end,omitempty"`
}

// CreateHolidayRequest marks a date as closed.
type CreateHolidayRequest struct {
	Date string `json:"date" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// CreateMaintenanceRequest blocks a time range on a date.
type CreateMaintenanceRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Reason    string `json:"reason"`
}

// CreateServiceRequest adds a catalog entry.
type CreateServiceRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,gt=0"`
	PriceCents      int    `json:"price_cents" binding:"required,gt=0"`
}

// UpdateServiceRequest modifies a catalog entry.
type UpdateServiceRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,gt=0"`
	PriceCents      int    `json:"price_cents" binding:"required,gt=0"`
	IsActive        bool   `json:"is_active"`
}

// ServiceResponse is the wire form of a catalog entry.
type ServiceResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	DurationMinutes int    `json:"duration_minutes"`
	PriceCents      int    `json:"price_cents"`
	IsActive        bool   `json:"is_active"`
}

// ============================================================================
// CONVERSION METHODS
// ============================================================================

// ToResponse converts a BusinessHours entity to its wire form.
func (h *BusinessHours) ToResponse() BusinessHoursResponse {
	resp := BusinessHoursResponse{
		Weekday: h.Weekday,
		IsOpen:  h.IsOpen,
	}
	if h.IsOpen {
		resp.OpenTime = ClockFromMinutes(h.OpenMinute)
		resp.CloseTime = ClockFromMinutes(h.CloseMinute)
	}
	if h.HasBreak() {
		bs := ClockFromMinutes(*h.BreakStart)
		be := ClockFromMinutes(*h.BreakEnd)
		resp.BreakStart = &bs
		resp.BreakEnd = &be
	}
	return resp
}

// ToResponse converts a Service entity to its wire form.
func (s *Service) ToResponse() ServiceResponse {
	return ServiceResponse{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		DurationMinutes: s.DurationMinutes,
		PriceCents:      s.PriceCents,
		IsActive:        s.IsActive,
	}
}
