package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/brils-gym/booking-api/internal/config"
	"github.com/brils-gym/booking-api/internal/handler"
	appointmentHandler "github.com/brils-gym/booking-api/internal/handler/appointment"
	scheduleHandler "github.com/brils-gym/booking-api/internal/handler/schedule"
	"github.com/brils-gym/booking-api/internal/middleware"
	"github.com/brils-gym/booking-api/internal/repository/postgres"
	"github.com/brils-gym/booking-api/internal/router"
	bookingService "github.com/brils-gym/booking-api/internal/service/booking"
	"github.com/brils-gym/booking-api/internal/service/capacity"
	notificationService "github.com/brils-gym/booking-api/internal/service/notification"
	scheduleService "github.com/brils-gym/booking-api/internal/service/schedule"
	"github.com/brils-gym/booking-api/pkg/auth"
	"github.com/brils-gym/booking-api/pkg/logger"
	"github.com/brils-gym/booking-api/pkg/messaging"
	redisBroker "github.com/brils-gym/booking-api/pkg/messaging/redis"
	"github.com/brils-gym/booking-api/pkg/metrics"
)

func main() {
	appLogger := logger.NewLogger(nil)
	log.Logger = *appLogger.Zerolog()

	cfg, err := config.LoadConfig()
	if err != nil {
		appLogger.Fatal(err, "failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		appLogger.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	// Repositories
	appointmentRepo := postgres.NewAppointmentRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	typeRepo := postgres.NewAppointmentTypeRepository(db)

	// Booking events are best-effort; the API still runs without Redis.
	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		broker, err = redisBroker.NewRedisBroker(redisBroker.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, appLogger.Zerolog())
		if err != nil {
			appLogger.Warn("redis unavailable, events disabled", "error", err.Error())
			broker = nil
		} else {
			defer broker.Close()
		}
	}

	var notifier notificationService.Notifier
	if cfg.SMTP.Host != "" {
		notifier = notificationService.NewService(notificationService.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	m := metrics.New("booking")

	// Services
	scheduleSvc := scheduleService.NewService(scheduleRepo)
	aggregator := capacity.NewAggregator(appointmentRepo, m)
	bookingSvc := bookingService.NewService(appointmentRepo, aggregator, broker, notifier, m)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(auth.NewJWTService(cfg.JWT.Secret))
	h := handler.NewHandler(db)
	appointmentH := appointmentHandler.NewHandler(bookingSvc, scheduleSvc, aggregator, typeRepo)
	scheduleH := scheduleHandler.NewHandler(scheduleSvc, aggregator)

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Security.AllowedOrigins
	}

	r := router.NewRouter(authMiddleware, appointmentH, scheduleH, h, router.Config{
		RateLimit:     rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:     cfg.RateLimit.Burst,
		CORSConfig:    corsConfig,
		MetricsPrefix: "booking_api",
		Timeout:       cfg.Server.RequestTimeout,
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
