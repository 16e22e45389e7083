package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sparklewash/booking-service/availability"
	"github.com/sparklewash/booking-service/holdstore"
	"github.com/sparklewash/booking-service/model"
	"github.com/sparklewash/booking-service/repository"
	"github.com/sparklewash/booking-service/reservation"
)

type BookingHandler struct {
	engine      *availability.Engine
	coordinator *reservation.Coordinator
	schedule    repository.ScheduleRepository
	bookings    repository.BookingRepository
	holds       holdstore.HoldStore
}

func NewBookingHandler(engine *availability.Engine, coordinator *reservation.Coordinator, schedule repository.ScheduleRepository, bookings repository.BookingRepository, holds holdstore.HoldStore) *BookingHandler {
	return &BookingHandler{
		engine:      engine,
		coordinator: coordinator,
		schedule:    schedule,
		bookings:    bookings,
		holds:       holds,
	}
}

// respondError maps the error taxonomy onto HTTP statuses one to one, so
// the storefront can branch on what happened instead of a generic failure.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrServiceNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Error:   "service_not_found",
			Message: "Service not found",
		})
	case errors.Is(err, model.ErrServiceInactive):
		c.JSON(http.StatusUnprocessableEntity, model.ErrorResponse{
			Error:   "service_inactive",
			Message: "This service is no longer offered",
		})
	case errors.Is(err, model.ErrSlotHeld):
		c.JSON(http.StatusConflict, model.ErrorResponse{
			Error:   "slot_held",
			Message: "This slot was just taken, please pick another time",
		})
	case errors.Is(err, model.ErrSlotUnavailable), errors.Is(err, model.ErrBookingOverlap):
		c.JSON(http.StatusConflict, model.ErrorResponse{
			Error:   "slot_unavailable",
			Message: "This slot is no longer available, please pick another time",
		})
	case errors.Is(err, model.ErrHoldExpired):
		c.JSON(http.StatusGone, model.ErrorResponse{
			Error:   "hold_expired",
			Message: "Your reservation expired, please pick a time again",
		})
	case errors.Is(err, model.ErrHoldNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Error:   "hold_not_found",
			Message: "Hold not found",
		})
	case errors.Is(err, model.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Error:   "booking_not_found",
			Message: "Booking not found",
		})
	case errors.Is(err, model.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{
			Error:   "service_unavailable",
			Message: "Please try again in a moment",
		})
	default:
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}
}

// ListServices returns the active wash catalog for the storefront
func (h *BookingHandler) ListServices(c *gin.Context) {
	services, err := h.schedule.ListServices(true)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]model.ServiceResponse, 0, len(services))
	for _, service := range services {
		responses = append(responses, service.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"services": responses})
}

// GetAvailability returns the computed slot list for a date and service
func (h *BookingHandler) GetAvailability(c *gin.Context) {
	date := c.Query("date")
	serviceID := c.Query("service_id")
	if date == "" || serviceID == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: "date and service_id query parameters are required",
		})
		return
	}

	resp, err := h.engine.ComputeSlots(date, serviceID, c.GetString("session_id"))
	if err != nil {
		if _, parseErr := model.ParseDate(date); parseErr != nil {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{
				Error:   "validation_failed",
				Message: parseErr.Error(),
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CreateHold claims a slot while the customer completes checkout
func (h *BookingHandler) CreateHold(c *gin.Context) {
	var req model.CreateHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
		return
	}

	startMinute, err := model.MinutesFromClock(req.Time)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
		return
	}
	if _, err := model.ParseDate(req.Date); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
		return
	}

	hold, err := h.coordinator.AttemptHold(req.Date, startMinute, req.ServiceID, c.GetString("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, hold.ToResponse())
}

// ReleaseHold lets a customer give a claimed slot back
func (h *BookingHandler) ReleaseHold(c *gin.Context) {
	err := h.coordinator.ReleaseHold(c.Param("holdId"), c.GetString("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ConfirmHold converts a live hold into a booking after checkout
func (h *BookingHandler) ConfirmHold(c *gin.Context) {
	var req model.ConfirmHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
		return
	}

	booking, err := h.coordinator.ConfirmHold(c.Param("holdId"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking.ToResponse())
}

// GetBooking returns one booking for the storefront status page
func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.bookings.GetBookingByID(c.Param("bookingId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking.ToResponse())
}

// CancelBooking cancels a booking, releasing its slot capacity
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	booking, err := h.coordinator.CancelBooking(c.Param("bookingId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking.ToResponse())
}

// HealthCheck handles health check endpoint
func (h *BookingHandler) HealthCheck(c *gin.Context) {
	sqlDB, err := h.bookings.GetDB().DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{
			Error:   "service_unavailable",
			Message: "Database connection failed",
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{
			Error:   "service_unavailable",
			Message: "Database ping failed",
		})
		return
	}

	if err := h.holds.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{
			Error:   "service_unavailable",
			Message: "Hold store ping failed",
		})
		return
	}

	response := model.HealthResponse{
		Status:    "healthy",
		Service:   "carwash-booking-service",
		Timestamp: time.Now(),
	}

	c.JSON(http.StatusOK, response)
}
