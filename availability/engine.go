package availability

import (
	"fmt"
	"time"

	"github.com/sparklewash/booking-service/holdstore"
	"github.com/sparklewash/booking-service/model"
)

// ScheduleReader is the slice of the schedule repository the engine needs.
type ScheduleReader interface {
	GetBusinessHours(weekday time.Weekday) (*model.BusinessHours, error)
	GetHoliday(date string) (*model.Holiday, error)
	ListMaintenanceBlocks(date string) ([]model.MaintenanceBlock, error)
	GetService(serviceID string) (*model.Service, error)
}

// OccupancyReader is the booking ledger view the engine needs.
type OccupancyReader interface {
	ListOccupancy(date string, serviceID string) ([]model.BookingInterval, error)
}

// Engine computes bookable time slots for a (date, service) pair from
// business hours, existing bookings, live holds, and maintenance blocks.
// It is the single owner of slot logic; the claim path and the storefront
// availability endpoint both go through it.
type Engine struct {
	schedule ScheduleReader
	bookings OccupancyReader
	holds    holdstore.HoldStore

	granularityMinutes int
	bays               int
}

func NewEngine(schedule ScheduleReader, bookings OccupancyReader, holds holdstore.HoldStore, granularityMinutes, bays int) *Engine {
	return &Engine{
		schedule:           schedule,
		bookings:           bookings,
		holds:              holds,
		granularityMinutes: granularityMinutes,
		bays:               bays,
	}
}

// ComputeSlots returns the chronological slot list for a date and service.
// A closed day (unconfigured weekday, is_open=false, or holiday) yields an
// Open=false response with an empty slot list, not an error. Ledger and
// schedule read failures are returned as errors so availability never
// claims a slot is free when the data could not be read.
func (e *Engine) ComputeSlots(date string, serviceID string, holderID string) (*model.AvailabilityResponse, error) {
	weekday, err := model.ParseDate(date)
	if err != nil {
		return nil, err
	}

	service, err := e.schedule.GetService(serviceID)
	if err != nil {
		return nil, err
	}
	if !service.IsActive {
		return nil, model.ErrServiceInactive
	}

	resp := &model.AvailabilityResponse{
		Date:      date,
		ServiceID: serviceID,
		Slots:     []model.TimeSlot{},
	}

	holiday, err := e.schedule.GetHoliday(date)
	if err != nil {
		return nil, err
	}
	if holiday != nil {
		resp.ClosedReason = fmt.Sprintf("closed for %s", holiday.Name)
		return resp, nil
	}

	hours, err := e.schedule.GetBusinessHours(weekday)
	if err != nil {
		if err == model.ErrHoursNotFound {
			resp.ClosedReason = "closed"
			return resp, nil
		}
		return nil, err
	}
	if !hours.IsOpen {
		resp.ClosedReason = "closed"
		return resp, nil
	}

	occupancy, err := e.bookings.ListOccupancy(date, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	blocks, err := e.schedule.ListMaintenanceBlocks(date)
	if err != nil {
		return nil, err
	}

	resp.Open = true
	for _, start := range e.candidateStarts(hours, service.DurationMinutes) {
		resp.Slots = append(resp.Slots, e.buildSlot(date, start, start+service.DurationMinutes, holderID, occupancy, blocks))
	}

	return resp, nil
}

// CheckSlot recomputes availability for a single slot at claim time. It
// returns ErrSlotUnavailable when the start time is not a valid candidate
// for the service on that date, or when the slot has no free capacity, and
// ErrSlotHeld when another customer's hold blocks it.
func (e *Engine) CheckSlot(date string, startMinute int, serviceID string, holderID string) (*model.TimeSlot, error) {
	resp, err := e.ComputeSlots(date, serviceID, holderID)
	if err != nil {
		return nil, err
	}
	if !resp.Open {
		return nil, model.ErrSlotUnavailable
	}

	for i := range resp.Slots {
		slot := &resp.Slots[i]
		if slot.StartMinute != startMinute {
			continue
		}
		if slot.IsAvailable {
			return slot, nil
		}
		for _, c := range slot.Conflicts {
			if c.Type == model.ConflictHeld {
				return nil, model.ErrSlotHeld
			}
		}
		return nil, model.ErrSlotUnavailable
	}

	return nil, model.ErrSlotUnavailable
}

// candidateStarts generates slot start times on the granularity grid.
// A candidate must fit the full service duration before closing time
// (start + duration <= close) and must not cross the break; filtering here
// instead of only at overlap-check time is what keeps a near-closing start
// from being offered for a long service.
func (e *Engine) candidateStarts(hours *model.BusinessHours, durationMinutes int) []int {
	var starts []int
	for start := hours.OpenMinute; start+durationMinutes <= hours.CloseMinute; start += e.granularityMinutes {
		if hours.HasBreak() && model.Overlaps(start, start+durationMinutes, *hours.BreakStart, *hours.BreakEnd) {
			continue
		}
		starts = append(starts, start)
	}
	return starts
}

func (e *Engine) buildSlot(date string, start, end int, holderID string, occupancy []model.BookingInterval, blocks []model.MaintenanceBlock) model.TimeSlot {
	slot := model.TimeSlot{
		StartMinute: start,
		EndMinute:   end,
		StartTime:   model.ClockFromMinutes(start),
		EndTime:     model.ClockFromMinutes(end),
		MaxCapacity: e.bays,
	}

	for _, interval := range occupancy {
		if model.Overlaps(start, end, interval.StartMinute, interval.EndMinute) {
			slot.CurrentBookings++
		}
	}
	if slot.AvailableCapacity = e.bays - slot.CurrentBookings; slot.AvailableCapacity < 0 {
		slot.AvailableCapacity = 0
	}

	blocking := false
	if slot.AvailableCapacity == 0 {
		slot.Conflicts = append(slot.Conflicts, model.SlotConflict{
			Type:    model.ConflictCapacity,
			Message: "all bays are booked at this time",
		})
		blocking = true
	}

	for _, block := range blocks {
		if model.Overlaps(start, end, block.StartMinute, block.EndMinute) {
			msg := "bay maintenance scheduled at this time"
			if block.Reason != "" {
				msg = block.Reason
			}
			slot.Conflicts = append(slot.Conflicts, model.SlotConflict{
				Type:    model.ConflictMaintenance,
				Message: msg,
			})
			blocking = true
		}
	}

	// A hold-store read failure is deliberately treated as "no hold" here:
	// this path only renders availability, and the claim path's atomic put
	// is what actually decides who gets the slot.
	hold, err := e.holds.GetBySlot(date, start)
	if err == nil && hold != nil && hold.HolderID != holderID {
		slot.Conflicts = append(slot.Conflicts, model.SlotConflict{
			Type:    model.ConflictHeld,
			Message: "another customer is completing checkout for this time",
		})
		blocking = true
	}

	slot.IsAvailable = !blocking
	return slot
}
