package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/userdir-be/internal/api"
	"github.com/isdelr/userdir-be/internal/auth"
	"github.com/isdelr/userdir-be/internal/cache"
	"github.com/isdelr/userdir-be/internal/config"
	"github.com/isdelr/userdir-be/internal/database"
	"github.com/isdelr/userdir-be/internal/logger"
	"github.com/isdelr/userdir-be/internal/metrics"
	"github.com/isdelr/userdir-be/internal/monitoring"
	"github.com/isdelr/userdir-be/internal/services"
	"github.com/isdelr/userdir-be/internal/store"
	"github.com/isdelr/userdir-be/internal/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Set up the document store
	userStore, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("Failed to initialize store")
	}
	defer closeStore()

	// Set up metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	// Set up Redis
	redisCache := cache.NewRedis(cfg.RedisAddr)
	defer redisCache.Close()

	userService := services.NewUserService(userStore, cache.Instrumented(redisCache, collector))

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	// Set up and run the dependency health checks
	health := monitoring.NewHealthChecker(map[string]monitoring.Pinger{
		"store": userStore,
		"cache": redisCache,
	}, collector)
	if err := health.Start(cfg.HealthCheckSchedule); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.HealthCheckSchedule).Msg("Invalid health check schedule")
	}

	limiter := api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// Set up router
	router := api.NewRouter(api.Options{
		Issuer:         auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		UserService:    userService,
		Hub:            hub,
		Health:         health,
		Metrics:        metrics.Handler(registry),
		Recorder:       collector,
		RateLimiter:    limiter,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("store", cfg.StoreDriver).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	health.Stop()
	limiter.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	stopHub()
	<-hub.Done()

	log.Info().Msg("Server exiting")
}

// openStore connects the configured backend and returns a func that releases it.
func openStore(ctx context.Context, cfg *config.Config) (services.UserStore, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		db, err := database.New(cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to apply database migrations: %w", err)
		}
		return store.NewSQLiteStore(db), closeSQL(db), nil
	default:
		client, err := database.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		s := store.NewMongoStore(client.Database(cfg.MongoDatabase))
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("failed to create indexes: %w", err)
		}
		return s, disconnectMongo(client), nil
	}
}

func closeSQL(db *sql.DB) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}
}

func disconnectMongo(client *mongo.Client) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to disconnect from mongo")
		}
	}
}
