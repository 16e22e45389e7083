package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/sparklewash/booking-service/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type PostgresBookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(databaseURL string) (*PostgresBookingRepository, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate the booking table
	if err := db.AutoMigrate(&model.Booking{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &PostgresBookingRepository{db: db}, nil
}

// NewBookingRepositoryWithDB wraps an existing connection, used when the
// schedule repository already opened one.
func NewBookingRepositoryWithDB(db *gorm.DB) (*PostgresBookingRepository, error) {
	if err := db.AutoMigrate(&model.Booking{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &PostgresBookingRepository{db: db}, nil
}

// ListOccupancy returns the occupied time ranges on a date. The status
// filter matches the capacity rule: cancelled and no-show rows do not
// occupy a bay.
func (r *PostgresBookingRepository) ListOccupancy(date string, serviceID string) ([]model.BookingInterval, error) {
	var intervals []model.BookingInterval

	query := `
		SELECT start_minute, end_minute FROM bookings
		WHERE date = ?
		AND status NOT IN ('cancelled', 'no_show')
	`
	args := []interface{}{date}
	if serviceID != "" {
		query += " AND service_id = ?"
		args = append(args, serviceID)
	}
	query += " ORDER BY start_minute"

	if err := r.db.Raw(query, args...).Scan(&intervals).Error; err != nil {
		return nil, fmt.Errorf("failed to load occupancy: %w", err)
	}

	return intervals, nil
}

// CreateBookingIfNoOverlap performs the transactional overlap check before
// insert. Writers for the same date are serialized with a per-date advisory
// lock so two concurrent inserts cannot both pass the count; writers for
// other dates are unaffected. The SQL overlap condition is the same
// half-open predicate as model.Overlaps.
func (r *PostgresBookingRepository) CreateBookingIfNoOverlap(req model.CreateBookingRequest, maxConcurrent int) (*model.Booking, error) {
	booking := &model.Booking{
		CustomerName:     req.CustomerName,
		CustomerEmail:    req.CustomerEmail,
		CustomerPhone:    req.CustomerPhone,
		Vehicle:          req.Vehicle,
		ServiceID:        req.ServiceID,
		ServiceName:      req.ServiceName,
		Date:             req.Date,
		StartMinute:      req.StartMinute,
		EndMinute:        req.EndMinute,
		AddOnIDs:         req.AddOnIDs,
		TotalCents:       req.TotalCents,
		Status:           model.BookingStatusConfirmed,
		HoldID:           req.HoldID,
		PaymentReference: req.PaymentReference,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", req.Date).Error; err != nil {
			return fmt.Errorf("failed to acquire date lock: %w", err)
		}

		var overlapping int64
		err := tx.Raw(`
			SELECT COUNT(*) FROM bookings
			WHERE date = ?
			AND status NOT IN ('cancelled', 'no_show')
			AND start_minute < ? AND end_minute > ?
		`, req.Date, req.EndMinute, req.StartMinute).Count(&overlapping).Error
		if err != nil {
			return fmt.Errorf("failed to check overlap: %w", err)
		}

		if overlapping >= int64(maxConcurrent) {
			return model.ErrBookingOverlap
		}

		if err := tx.Create(booking).Error; err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return booking, nil
}

// GetBookingByID retrieves a booking by its ID
func (r *PostgresBookingRepository) GetBookingByID(bookingID string) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.Where("id = ?", bookingID).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return &booking, nil
}

// GetBookingByHoldID retrieves a booking by the hold that created it.
// Used to make hold confirmation idempotent.
func (r *PostgresBookingRepository) GetBookingByHoldID(holdID string) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.Where("hold_id = ?", holdID).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking by hold ID: %w", err)
	}

	return &booking, nil
}

// CancelBooking marks a booking cancelled, releasing its capacity.
// Cancelling an already-cancelled booking is a no-op.
func (r *PostgresBookingRepository) CancelBooking(bookingID string) (*model.Booking, error) {
	var booking model.Booking

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", bookingID).First(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ErrBookingNotFound
			}
			return fmt.Errorf("failed to get booking: %w", err)
		}

		if booking.Status == model.BookingStatusCancelled {
			return nil
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":       model.BookingStatusCancelled,
			"cancelled_at": now,
		}
		if err := tx.Model(&booking).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to cancel booking: %w", err)
		}

		booking.Status = model.BookingStatusCancelled
		booking.CancelledAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &booking, nil
}

// ListBookings retrieves bookings with filtering for the admin dashboard
func (r *PostgresBookingRepository) ListBookings(filter model.BookingFilter) ([]model.Booking, int, error) {
	var bookings []model.Booking
	var total int64

	query := r.db.Model(&model.Booking{})

	if filter.Date != "" {
		query = query.Where("date = ?", filter.Date)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	// Get total count
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	// Apply pagination and ordering
	err := query.Order("date DESC, start_minute ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&bookings).Error

	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return bookings, int(total), nil
}

// GetDB returns the database instance for health checks
func (r *PostgresBookingRepository) GetDB() *gorm.DB {
	return r.db
}
