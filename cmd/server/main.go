package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/salonflow-backend/config"
	"github.com/ikkim/salonflow-backend/internal/app/controller"
	"github.com/ikkim/salonflow-backend/internal/app/repository"
	"github.com/ikkim/salonflow-backend/internal/app/service"
	"github.com/ikkim/salonflow-backend/internal/db"
	"github.com/ikkim/salonflow-backend/internal/middleware"
	"github.com/ikkim/salonflow-backend/internal/realtime"
	"github.com/ikkim/salonflow-backend/internal/reservation"
	"github.com/ikkim/salonflow-backend/internal/router"
	"github.com/ikkim/salonflow-backend/internal/scheduler"
	"github.com/ikkim/salonflow-backend/internal/storage"
	"github.com/ikkim/salonflow-backend/internal/websocket"
	"github.com/ikkim/salonflow-backend/pkg/logger"
	"github.com/ikkim/salonflow-backend/pkg/redis"
	"github.com/ikkim/salonflow-backend/pkg/sms"
)

const kafkaQueueSize = 256

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logger.Initialize(logger.Config{
		Level:       cfg.Server.LogLevel,
		Format:      cfg.Server.LogFormat,
		EnableColor: cfg.Server.Environment == "development",
	})

	logger.Info("Starting salonflow backend", logger.Fields{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"time_zone":   cfg.Booking.TimeZone,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	shopRepo := repository.NewShopRepository(db.GetDB())
	menuRepo := repository.NewMenuRepository(db.GetDB())

	hub := websocket.NewHub()
	go hub.Run(ctx)

	var (
		sessions  reservation.SessionStore
		blacklist service.TokenBlacklist
		publisher service.MenuEventPublisher = hub
	)

	if cfg.Redis.Addr != "" {
		client, err := redis.Init(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", err)
		}
		defer redis.Close()

		sessions = reservation.NewRedisStore(client)
		blacklist = redis.NewTokenBlacklist(client)

		relay := realtime.NewRedisRelay(client, hub)
		publisher = relay
		go func() {
			if err := relay.Run(ctx); err != nil {
				logger.Error("Menu event relay stopped", err)
			}
		}()
	} else {
		memory := reservation.NewMemoryStore()
		sessions = memory

		sweeper := scheduler.NewSessionSweeper(memory, cfg.Booking.SweepSchedule)
		if err := sweeper.Start(); err != nil {
			logger.Fatal("Failed to start session sweeper", err)
		}
		defer sweeper.Stop()
		logger.Warn("Redis not configured; sessions, realtime and sign-out stay on this instance")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := realtime.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, kafkaQueueSize)
		kafkaPublisher.Start(ctx)
		defer kafkaPublisher.WaitClosed()
		publisher = service.FanoutPublisher{publisher, kafkaPublisher}
		logger.Info("Menu events are streamed to Kafka", logger.Fields{"topic": cfg.Kafka.Topic})
	}

	opts := service.ReservationOptions{
		SessionTTL: cfg.Booking.SessionTTL,
		Location:   cfg.Booking.Location(),
	}
	if cfg.S3.Enabled() {
		opts.Artifacts = storage.NewS3Storage(&cfg.S3)
	}
	if cfg.Twilio.Enabled() {
		opts.SMS = sms.NewTwilioSender(&cfg.Twilio)
	}

	shopService := service.NewShopService(db.GetDB(), shopRepo, menuRepo)
	menuService := service.NewMenuService(shopRepo, menuRepo, publisher)
	reservationService := service.NewReservationService(shopRepo, menuRepo, sessions, opts)
	authService := service.NewAuthService(blacklist)
	analyticsService := service.NewAnalyticsService(shopRepo, menuRepo, hub)

	var revocation middleware.RevocationChecker
	if blacklist != nil {
		revocation = authService
	}
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.Booking.AdminEmail, revocation)

	r := router.NewRouter(
		controller.NewAuthController(authService, cfg.Booking.AdminEmail),
		controller.NewShopController(shopService),
		controller.NewMenuController(menuService),
		controller.NewReservationController(reservationService),
		controller.NewAnalyticsController(analyticsService),
		controller.NewRealtimeController(hub, shopService, cfg.CORS.AllowedOrigins),
		authMiddleware,
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", logger.Fields{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", err)
	}
	logger.Info("Server stopped successfully")
}
