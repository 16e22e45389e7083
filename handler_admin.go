package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sparklewash/booking-service/model"
)

// Admin handlers for the schedule configuration the availability engine
// reads: business hours, holidays, maintenance blocks, service catalog.

// ListBusinessHours returns all configured weekdays
func (h *BookingHandler) ListBusinessHours(c *gin.Context) {
	hours, err := h.schedule.ListBusinessHours()
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]model.BusinessHoursResponse, 0, len(hours))
	for _, entry := range hours {
		responses = append(responses, entry.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"hours": responses})
}

// UpsertBusinessHours configures one weekday
func (h *BookingHandler) UpsertBusinessHours(c *gin.Context) {
	weekday, err := strconv.Atoi(c.Param("weekday"))
	if err != nil || weekday < 0 || weekday > 6 {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: "weekday must be 0 (Sunday) through 6 (Saturday)",
		})
		return
	}

	var req model.UpsertBusinessHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
		return
	}

	hours := model.BusinessHours{Weekday: weekday, IsOpen: req.IsOpen}

	if req.IsOpen {
		open, err := model.MinutesFromClock(req.OpenTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "validation_failed", Message: err.Error()})
			return
		}
		closeMin, err := model.MinutesFromClock(req.CloseTime)
		if err != nil {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "validation_failed", Message: err.Error()})
			return
		}
		if open >= closeMin {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{
				Error:   "validation_failed",
				Message: "open_time must be before close_time",
			})
			return
		}
		hours.OpenMinute = open
		hours.CloseMinute = closeMin

		if req.BreakStart != nil && req.BreakEnd != nil {
			bs, err := model.MinutesFromClock(*req.BreakStart)
			if err != nil {
				c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "validation_failed", Message: err.Error()})
				return
			}
			be, err := model.MinutesFromClock(*req.BreakEnd)
			if err != nil {
				c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "validation_failed", Message: err.Error()})
				return
			}
			if bs >= be || be > closeMin || bs < open {
				c.JSON(http.StatusBadRequest, model.ErrorResponse{
					Error:   "validation_failed",
					Message: "break must lie within opening hours with break_start before break_end",
				})
				return
			}
			hours.BreakStart = &bs
			hours.BreakEnd = &be
		}
	}

	if err := h.schedule.UpsertBusinessHours(hours); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, hours.ToResponse())
}

// CreateHoliday marks a date as closed
func (h *BookingHandler) CreateHoliday(c *gin.Context) {
	var req model.CreateHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
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

	holiday := model.Holiday{Date: req.Date, Name: req.Name}
	if err := h.schedule.CreateHoliday(holiday); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"date": holiday.Date, "name": holiday.Name})
}

// DeleteHoliday reopens a date
func (h *BookingHandler) DeleteHoliday(c *gin.Context) {
	if err := h.schedule.DeleteHoliday(c.Param("date")); err != nil {
		if err == model.ErrHolidayNotFound {
			c.JSON(http.StatusNotFound, model.ErrorResponse{
				Error:   "holiday_not_found",
				Message: "Holiday not found",
			})
			return
		}
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateMaintenanceBlock takes a time range out of service
func (h *BookingHandler) CreateMaintenanceBlock(c *gin.Context) {
	var req model.CreateMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
		return
	}

	if _, err := model.ParseDate(req.Date); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "validation_failed", Message: err.Error()})
		return
	}
	start, err := model.MinutesFromClock(req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "validation_failed", Message: err.Error()})
		return
	}
	end, err := model.MinutesFromClock(req.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "validation_failed", Message: err.Error()})
		return
	}
	if start >= end {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: "start_time must be before end_time",
		})
		return
	}

	block, err := h.schedule.CreateMaintenanceBlock(model.MaintenanceBlock{
		Date:        req.Date,
		StartMinute: start,
		EndMinute:   end,
		Reason:      req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         block.ID,
		"date":       block.Date,
		"start_time": model.ClockFromMinutes(block.StartMinute),
		"end_time":   model.ClockFromMinutes(block.EndMinute),
		"reason":     block.Reason,
	})
}

// DeleteMaintenanceBlock removes a maintenance block
func (h *BookingHandler) DeleteMaintenanceBlock(c *gin.Context) {
	if err := h.schedule.DeleteMaintenanceBlock(c.Param("id")); err != nil {
		if err == model.ErrMaintenanceNotFound {
			c.JSON(http.StatusNotFound, model.ErrorResponse{
				Error:   "maintenance_not_found",
				Message: "Maintenance block not found",
			})
			return
		}
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateService adds a catalog entry
func (h *BookingHandler) CreateService(c *gin.Context) {
	var req model.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
		return
	}

	service, err := h.schedule.CreateService(model.Service{
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		PriceCents:      req.PriceCents,
		IsActive:        true,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, service.ToResponse())
}

// UpdateService modifies a catalog entry, including deactivation
func (h *BookingHandler) UpdateService(c *gin.Context) {
	var req model.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
		})
		return
	}

	service, err := h.schedule.UpdateService(model.Service{
		ID:              c.Param("id"),
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		PriceCents:      req.PriceCents,
		IsActive:        req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, service.ToResponse())
}

// ListBookings returns bookings for the admin dashboard
func (h *BookingHandler) ListBookings(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	filter := model.BookingFilter{
		Date:   c.Query("date"),
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	}

	bookings, total, err := h.bookings.ListBookings(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]model.BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		responses = append(responses, booking.ToResponse())
	}

	c.JSON(http.StatusOK, model.BookingListResponse{
		Bookings: responses,
		Total:    total,
	})
}
