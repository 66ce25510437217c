package main // entry point

import (
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/office-room-booking/internal/booking"
	"github.com/iliyamo/office-room-booking/internal/config"
	"github.com/iliyamo/office-room-booking/internal/database"
	"github.com/iliyamo/office-room-booking/internal/handler"
	"github.com/iliyamo/office-room-booking/internal/logging"
	appmw "github.com/iliyamo/office-room-booking/internal/middleware"
	"github.com/iliyamo/office-room-booking/internal/queue"
	"github.com/iliyamo/office-room-booking/internal/repository"
	"github.com/iliyamo/office-room-booking/internal/router"
	"github.com/iliyamo/office-room-booking/internal/service/publisher"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()
	logger := logging.New(cfg.Env)
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	// Redis is optional: with no client the cache and limiter become
	// pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unreachable, response cache and rate limiting disabled")
	}

	// Repositories
	companies := repository.NewCompanyRepo(db)
	employees := repository.NewEmployeeRepo(db)
	rooms := repository.NewRoomRepo(db)
	timeslots := repository.NewTimeslotRepo(db)
	reservations := repository.NewReservationRepo(db)
	events := repository.NewEventRepo(db)
	reviews := repository.NewReviewRepo(db)
	achievements := repository.NewAchievementRepo(db)
	tokens := repository.NewTokenRepo(db)

	// Booking arbiter + event publishing
	pub := publisher.New(logger)
	arbiter := booking.NewService(employees, rooms, timeslots, reservations, pub, logger, nil)

	// Handlers
	authH := handler.NewAuthHandler(cfg, companies, employees, tokens)
	attendanceH := handler.NewAttendanceHandler(arbiter, reservations)
	browseH := handler.NewBrowseHandler(rooms, timeslots, events, reviews, achievements)
	adminH := handler.NewAdminHandler(cfg, companies, employees, rooms, timeslots, events, reservations)

	e := echo.New()
	e.HideBanner = true
	e.Use(appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(appmw.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterEmployee(e, attendanceH, browseH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	// Achievement consumer runs for the life of the process and
	// reconnects on its own; a broker outage never blocks bookings.
	go func() {
		if err := queue.StartAchievementConsumer(db, logger); err != nil {
			logger.Warn("achievement consumer stopped", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
