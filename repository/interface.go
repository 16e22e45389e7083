package repository

import (
	"time"

	"github.com/sparklewash/booking-service/model"
	"gorm.io/gorm"
)

// ScheduleRepository defines the interface for schedule configuration reads
// and admin writes (business hours, holidays, maintenance, service catalog).
type ScheduleRepository interface {
	// Calendar reads
	GetBusinessHours(weekday time.Weekday) (*model.BusinessHours, error)
	ListBusinessHours() ([]model.BusinessHours, error)
	GetHoliday(date string) (*model.Holiday, error)
	ListMaintenanceBlocks(date string) ([]model.MaintenanceBlock, error)

	// Service catalog
	GetService(serviceID string) (*model.Service, error)
	ListServices(activeOnly bool) ([]model.Service, error)

	// Admin writes
	UpsertBusinessHours(hours model.BusinessHours) error
	CreateHoliday(holiday model.Holiday) error
	DeleteHoliday(date string) error
	CreateMaintenanceBlock(block model.MaintenanceBlock) (*model.MaintenanceBlock, error)
	DeleteMaintenanceBlock(blockID string) error
	CreateService(service model.Service) (*model.Service, error)
	UpdateService(service model.Service) (*model.Service, error)
}

// BookingRepository defines the interface for booking data operations.
type BookingRepository interface {
	// ListOccupancy returns the time ranges of all capacity-occupying
	// (non-cancelled, non-no-show) bookings on a date, optionally
	// filtered to one service.
	ListOccupancy(date string, serviceID string) ([]model.BookingInterval, error)

	// CreateBookingIfNoOverlap inserts a booking only if the count of
	// occupying bookings overlapping its time range stays within
	// maxConcurrent. The check and the insert run in one transaction;
	// this is the final authority against double-booking regardless of
	// what the hold store said.
	CreateBookingIfNoOverlap(req model.CreateBookingRequest, maxConcurrent int) (*model.Booking, error)

	GetBookingByID(bookingID string) (*model.Booking, error)
	GetBookingByHoldID(holdID string) (*model.Booking, error)
	CancelBooking(bookingID string) (*model.Booking, error)
	ListBookings(filter model.BookingFilter) ([]model.Booking, int, error)

	// Health check
	GetDB() *gorm.DB
}
