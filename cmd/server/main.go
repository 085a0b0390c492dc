package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/estudiofit/studio-booking/internal/config"
	"github.com/estudiofit/studio-booking/internal/database"
	"github.com/estudiofit/studio-booking/internal/handler"
	"github.com/estudiofit/studio-booking/internal/middleware"
	"github.com/estudiofit/studio-booking/internal/queue"
	"github.com/estudiofit/studio-booking/internal/repository"
	"github.com/estudiofit/studio-booking/internal/router"
	"github.com/estudiofit/studio-booking/internal/schedule"
	queue_publisher "github.com/estudiofit/studio-booking/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	// Redis powers the response cache and the rate limiter. A nil client
	// disables both and the API still works.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, cache and rate limiting disabled")
	}

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	slots := repository.NewSlotRepo(db)
	windows := repository.NewWindowRepo(db)
	sessions := repository.NewSessionRepo(db)
	reservations := repository.NewReservationRepo(db)
	assignments := repository.NewAssignmentRepo(db)
	waitlist := repository.NewWaitlistRepo(db)
	plans := repository.NewPlanRepo(db)

	// Scheduling core over the transactional store.
	store := repository.NewScheduleStore(db)
	svc, err := schedule.NewService(store, schedule.WithLogger(logger))
	if err != nil {
		logger.Fatal("schedule service init failed", zap.Error(err))
	}

	events := queue_publisher.NewPublisher(cfg.AMQPURL, logger)
	if cfg.AMQPURL != "" {
		go func() {
			if err := queue.StartPromotionConsumer(cfg.AMQPURL); err != nil {
				logger.Error("promotion consumer stopped", zap.Error(err))
			}
		}()
	} else {
		logger.Warn("AMQP_URL not set, event publishing disabled")
	}

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users, tokens)
	memberH := handler.NewMemberHandler(sessions, reservations, waitlist, assignments, plans, svc, events)
	adminH := handler.NewAdminHandler(slots, windows, sessions, users, plans, assignments, waitlist, svc, events, logger)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	var cacheMW echo.MiddlewareFunc
	if rdb != nil {
		cacheMW = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterMember(e, memberH, cfg.JWTSecret, cacheMW)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// newLogger picks a console logger for dev and JSON for everything else.
func newLogger(env string) (*zap.Logger, error) {
	if env == "dev" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
