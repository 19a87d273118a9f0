package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"occupancy-service/internal/domain/entity"
	"occupancy-service/internal/infrastructure/config"
	"occupancy-service/internal/infrastructure/persistence"
	"occupancy-service/internal/infrastructure/scheduler"
	"occupancy-service/internal/interface/repository"
	"occupancy-service/internal/usecase"
	"occupancy-service/pkg/logger"
	"occupancy-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	domainRepo "occupancy-service/internal/domain/repository"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	defer log.Sync()
	log.Info("Starting Occupancy Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	gormDB, err := gorm.Open(postgres.Open(cfg.PostgresURI), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}

	appMetrics := metrics.NewMetrics("occupancy")

	// Reference catalogs live in PostgreSQL
	facilityRepo := repository.NewGormFacilityRepository(gormDB)

	// Append-only logs live in MongoDB
	occupancyRepo := repository.NewMongoOccupancyRepository(db)
	errorRepo := repository.NewMongoPredictionErrorRepository(db)
	snapshotRepo := repository.NewMongoDailySnapshotRepository(db)

	weatherRepo := repository.NewOpenWeatherRepository(cfg.WeatherAPIKey, cfg.WeatherLat, cfg.WeatherLon, cfg.WeatherTimeout, log)

	var predictor domainRepo.Predictor = repository.NewModelServiceRepository(cfg.ModelServiceURL, log)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		predictor = repository.NewCachedPredictor(predictor, redisClient, cfg.PredictionTTL, log)
		log.Info("Prediction cache enabled", "addr", cfg.RedisAddr)
	}

	// Background services; the request-driven usecases (aggregation,
	// ranking, reservations) are consumed as a library by callers that
	// bring their own transport
	errorTracker := usecase.NewErrorTracker(errorRepo, occupancyRepo, predictor, log, appMetrics)
	scanLogger := usecase.NewScanLogger(facilityRepo, occupancyRepo, snapshotRepo, weatherRepo, predictor, cfg.RetrainEvery, log, appMetrics)

	// Compare predictions against the last day of actuals on a timer
	if cfg.CompareInterval > 0 {
		go func() {
			compareTicker := time.NewTicker(cfg.CompareInterval)
			defer compareTicker.Stop()

			for {
				select {
				case <-ctx.Done():
					log.Info("Compare loop stopped")
					return
				case <-compareTicker.C:
					if _, err := errorTracker.CompareWindow(ctx, nil); err != nil && !errors.Is(err, entity.ErrNoData) {
						log.Error("Comparison run failed", "error", err)
					}
				}
			}
		}()
	}

	// Snapshot and reset the daily counters at local midnight
	midnight := scheduler.NewMidnight(scanLogger.Rollover, log)
	midnight.Start()

	// Set up HTTP server for metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	midnight.Stop()
	cancel() // Cancel the context to stop all goroutines

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("Occupancy Service stopped")
}
