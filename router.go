package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/kafka-go"
	"github.com/sparklewash/booking-service/availability"
	"github.com/sparklewash/booking-service/config"
	"github.com/sparklewash/booking-service/holdstore"
	"github.com/sparklewash/booking-service/holdstore/memory"
	redisstore "github.com/sparklewash/booking-service/holdstore/redis"
	"github.com/sparklewash/booking-service/repository/postgres"
	"github.com/sparklewash/booking-service/reservation"
)

func SetupRouter(cfg *config.Config) *gin.Engine {
	// Initialize repositories on a shared connection
	scheduleRepo, err := postgres.NewScheduleRepository(cfg.Database.GetDatabaseURL())
	if err != nil {
		log.Fatal("Failed to initialize schedule repository:", err)
	}

	bookingRepo, err := postgres.NewBookingRepositoryWithDB(scheduleRepo.GetDB())
	if err != nil {
		log.Fatal("Failed to initialize booking repository:", err)
	}

	// Initialize hold store. Holds degrade to process memory when Redis is
	// unreachable; the booking insert's transactional overlap check still
	// prevents double-booking, holds just stop surviving restarts.
	var holds holdstore.HoldStore
	holds, err = redisstore.NewRedisHoldStore(cfg.Redis.GetRedisURL(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("Redis unavailable, falling back to in-memory holds: %v", err)
		holds = memory.NewMemoryHoldStore()
	}

	// Initialize Kafka writer for notification events
	kafkaWriter := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Kafka.Brokers...),
		Topic:    cfg.Kafka.NotificationTopic,
		Balancer: &kafka.LeastBytes{},
	}

	// Initialize the availability engine and reservation coordinator
	engine := availability.NewEngine(scheduleRepo, bookingRepo, holds, cfg.Booking.SlotGranularityMinutes, cfg.Booking.Bays)
	coordinator := reservation.NewCoordinator(engine, holds, bookingRepo, scheduleRepo, reservation.NewKafkaNotifier(kafkaWriter), cfg.Booking.HoldTTL(), cfg.Booking.Bays)

	// Initialize JWT service for admin authentication
	jwtService := NewJWTService(cfg.JWTSecret)

	// Initialize handlers
	handler := NewBookingHandler(engine, coordinator, scheduleRepo, bookingRepo, holds)

	// Setup Gin router
	r := gin.Default()

	// Add middleware
	r.Use(CORSMiddleware())

	// Health check endpoint (no auth required)
	r.GET("/health", handler.HealthCheck)

	// API routes
	api := r.Group("/api")

	// Storefront endpoints (session identified via X-Session-ID)
	public := api.Group("")
	public.Use(SessionMiddleware())

	public.GET("/services", handler.ListServices)
	public.GET("/availability", handler.GetAvailability)
	public.POST("/holds", handler.CreateHold)
	public.DELETE("/holds/:holdId", handler.ReleaseHold)
	public.POST("/holds/:holdId/confirm", handler.ConfirmHold)
	public.GET("/bookings/:bookingId", handler.GetBooking)
	public.POST("/bookings/:bookingId/cancel", handler.CancelBooking)

	// Admin endpoints (require authentication)
	admin := api.Group("/admin")
	admin.Use(AuthMiddleware(jwtService))

	admin.GET("/hours", handler.ListBusinessHours)
	admin.PUT("/hours/:weekday", handler.UpsertBusinessHours)
	admin.POST("/holidays", handler.CreateHoliday)
	admin.DELETE("/holidays/:date", handler.DeleteHoliday)
	admin.POST("/maintenance", handler.CreateMaintenanceBlock)
	admin.DELETE("/maintenance/:id", handler.DeleteMaintenanceBlock)
	admin.POST("/services", handler.CreateService)
	admin.PUT("/services/:id", handler.UpdateService)
	admin.GET("/bookings", handler.ListBookings)

	return r
}
