package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AnshRaj112/frontline-fury-backend/internal/config"
	"github.com/AnshRaj112/frontline-fury-backend/internal/database"
	"github.com/AnshRaj112/frontline-fury-backend/internal/handlers"
	"github.com/AnshRaj112/frontline-fury-backend/internal/logger"
	"github.com/AnshRaj112/frontline-fury-backend/internal/metrics"
	"github.com/AnshRaj112/frontline-fury-backend/internal/models"
	"github.com/AnshRaj112/frontline-fury-backend/internal/repository"
	"github.com/AnshRaj112/frontline-fury-backend/internal/routes"
	"github.com/AnshRaj112/frontline-fury-backend/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load env
	envErr := godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.IsProduction())
	if envErr != nil {
		log.Info().Msg("No .env file found")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.MustRegister(registry)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// MongoDB: connect in the background, requests get 503 until ready
	log.Info().Str("uri", cfg.MaskedMongoURI()).Str("database", cfg.MongoDatabase).Msg("MongoDB configured")
	mgr := database.NewManager(database.Options{
		URI:                    cfg.MongoURI,
		Database:               cfg.MongoDatabase,
		MinPoolSize:            cfg.MongoMinPoolSize,
		MaxPoolSize:            cfg.MongoMaxPoolSize,
		ServerSelectionTimeout: cfg.MongoServerSelectionTimeout,
		SocketTimeout:          cfg.MongoSocketTimeout,
		RetryDelay:             cfg.MongoRetryDelay,
	}, log)

	feedbacks := repository.NewCollection[models.Feedback](mgr, handlers.FeedbackResource.Collection)
	prebookings := repository.NewCollection[models.PreBooking](mgr, handlers.PreBookingResource.Collection)
	mgr.OnConnected(func(ctx context.Context, db *mongo.Database) error {
		if err := feedbacks.EnsureIndexes(ctx, db); err != nil {
			return err
		}
		if err := prebookings.EnsureIndexes(ctx, db); err != nil {
			return err
		}
		log.Info().Msg("MongoDB indexes ensured")
		return nil
	})

	// Redis list cache is optional
	cache := services.NewListCache(nil, cfg.CacheTTL, log)
	if cfg.RedisURI != "" {
		client, err := database.ConnectRedis(ctx, cfg.RedisURI)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, list cache disabled")
		} else {
			cache = services.NewListCache(client, cfg.CacheTTL, log)
			log.Info().Dur("ttl", cfg.CacheTTL).Msg("Redis list cache enabled")
		}
	}

	r := routes.NewRouter(routes.Deps{
		Config:      cfg,
		Log:         log,
		DB:          mgr,
		Feedbacks:   feedbacks,
		PreBookings: prebookings,
		Cache:       cache,
		Gatherer:    registry,
	})

	if cfg.IsProduction() {
		log.Info().
			Float64("rps", cfg.RateLimitRPS).
			Int("burst", cfg.RateLimitBurst).
			Msg("Production security enabled (security headers, per-IP rate limiting)")
	}

	// Log registered routes for debugging
	if registered, err := routes.Walk(r); err != nil {
		log.Warn().Err(err).Msg("could not list routes")
	} else {
		log.Info().Strs("routes", registered).Msg("Registered routes")
	}

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		mgr.Run(ctx)
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("environment", cfg.Environment).Msg("Frontline Fury backend running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("Failed to start server")
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	shutdown(shutdownCtx, log, srv, stop, runDone, mgr, cache)
}
