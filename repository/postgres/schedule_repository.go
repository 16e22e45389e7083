package postgres

import (
	"errors"
	"fmt"
	"time"

	"github.com/sparklewash/booking-service/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type PostgresScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(databaseURL string) (*PostgresScheduleRepository, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all schedule models
	if err := db.AutoMigrate(&model.BusinessHours{}, &model.Holiday{}, &model.MaintenanceBlock{}, &model.Service{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &PostgresScheduleRepository{db: db}, nil
}

// GetBusinessHours returns the configuration for one weekday, or
// ErrHoursNotFound when the weekday has never been configured. Callers
// treat an unconfigured weekday as closed.
func (r *PostgresScheduleRepository) GetBusinessHours(weekday time.Weekday) (*model.BusinessHours, error) {
	var hours model.BusinessHours
	err := r.db.Where("weekday = ?", int(weekday)).First(&hours).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrHoursNotFound
		}
		return nil, fmt.Errorf("failed to get business hours: %w", err)
	}

	return &hours, nil
}

func (r *PostgresScheduleRepository) ListBusinessHours() ([]model.BusinessHours, error) {
	var hours []model.BusinessHours
	if err := r.db.Order("weekday").Find(&hours).Error; err != nil {
		return nil, fmt.Errorf("failed to list business hours: %w", err)
	}
	return hours, nil
}

// GetHoliday returns the holiday on a date, or nil when the date is a
// regular working day.
func (r *PostgresScheduleRepository) GetHoliday(date string) (*model.Holiday, error) {
	var holiday model.Holiday
	err := r.db.Where("date = ?", date).First(&holiday).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get holiday: %w", err)
	}

	return &holiday, nil
}

func (r *PostgresScheduleRepository) ListMaintenanceBlocks(date string) ([]model.MaintenanceBlock, error) {
	var blocks []model.MaintenanceBlock
	if err := r.db.Where("date = ?", date).Order("start_minute").Find(&blocks).Error; err != nil {
		return nil, fmt.Errorf("failed to list maintenance blocks: %w", err)
	}
	return blocks, nil
}

// Service catalog

func (r *PostgresScheduleRepository) GetService(serviceID string) (*model.Service, error) {
	var service model.Service
	err := r.db.Where("id = ?", serviceID).First(&service).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	return &service, nil
}

func (r *PostgresScheduleRepository) ListServices(activeOnly bool) ([]model.Service, error) {
	var services []model.Service
	query := r.db.Order("name")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&services).Error; err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

// Admin writes

func (r *PostgresScheduleRepository) UpsertBusinessHours(hours model.BusinessHours) error {
	err := r.db.Save(&hours).Error
	if err != nil {
		return fmt.Errorf("failed to save business hours: %w", err)
	}
	return nil
}

func (r *PostgresScheduleRepository) CreateHoliday(holiday model.Holiday) error {
	if err := r.db.Create(&holiday).Error; err != nil {
		return fmt.Errorf("failed to create holiday: %w", err)
	}
	return nil
}

func (r *PostgresScheduleRepository) DeleteHoliday(date string) error {
	result := r.db.Where("date = ?", date).Delete(&model.Holiday{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete holiday: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrHolidayNotFound
	}
	return nil
}

func (r *PostgresScheduleRepository) CreateMaintenanceBlock(block model.MaintenanceBlock) (*model.MaintenanceBlock, error) {
	if err := r.db.Create(&block).Error; err != nil {
		return nil, fmt.Errorf("failed to create maintenance block: %w", err)
	}
	return &block, nil
}

func (r *PostgresScheduleRepository) DeleteMaintenanceBlock(blockID string) error {
	result := r.db.Where("id = ?", blockID).Delete(&model.MaintenanceBlock{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete maintenance block: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrMaintenanceNotFound
	}
	return nil
}

func (r *PostgresScheduleRepository) CreateService(service model.Service) (*model.Service, error) {
	if err := r.db.Create(&service).Error; err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	return &service, nil
}

func (r *PostgresScheduleRepository) UpdateService(service model.Service) (*model.Service, error) {
	var existing model.Service
	if err := r.db.Where("id = ?", service.ID).First(&existing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	existing.Name = service.Name
	existing.Description = service.Description
	existing.DurationMinutes = service.DurationMinutes
	existing.PriceCents = service.PriceCents
	existing.IsActive = service.IsActive

	if err := r.db.Save(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}

	return &existing, nil
}

// GetDB returns the database instance so the booking repository can share
// the connection.
func (r *PostgresScheduleRepository) GetDB() *gorm.DB {
	return r.db
}
