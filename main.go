// main.go
package main

import (
	"context"
	"fmt"
	"log"

	"cinema-reservation/cmd"
	"cinema-reservation/internal/data/memory"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/pricing"
	"cinema-reservation/internal/reservation"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/internal/wire"
	"cinema-reservation/internal/worker"
	"cinema-reservation/pkg/database"
	"cinema-reservation/pkg/queue"
	"cinema-reservation/pkg/telemetry"
	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
		zap.String("storage", config.App.StorageDriver),
		zap.String("lock", config.Reservation.LockDriver),
	)

	ctx := context.Background()

	shutdownTracer, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:       config.Telemetry.Enabled,
		ServiceName:   config.App.Name,
		Environment:   config.Telemetry.Environment,
		CollectorAddr: config.Telemetry.CollectorAddr,
	})
	if err != nil {
		logger.Fatal("Failed to init tracing", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	store, closeStore, err := initStore(ctx, config, logger)
	if err != nil {
		logger.Fatal("Failed to init storage", zap.Error(err))
	}
	defer closeStore()

	premiums := pricing.DefaultPremiums()
	if config.Reservation.SeatPremiums != "" {
		if premiums, err = pricing.ParsePremiums(config.Reservation.SeatPremiums); err != nil {
			logger.Fatal("Invalid SEAT_PREMIUMS", zap.Error(err))
		}
	}
	resolver := pricing.NewResolver(premiums)

	locker, closeLocker, err := initLocker(ctx, config, logger)
	if err != nil {
		logger.Fatal("Failed to init seat locker", zap.Error(err))
	}
	defer closeLocker()

	publisher, closePublisher := initPublisher(config, logger)
	defer closePublisher()

	engine := reservation.NewEngine(store, logger,
		reservation.WithLocker(locker),
		reservation.WithPublisher(publisher),
		reservation.WithHoldTTL(config.Reservation.DefaultHoldTTL, config.Reservation.MaxHoldTTL),
		reservation.WithSweepSize(config.Reservation.SweepBatchSize),
	)

	expiry := worker.NewExpiryWorker(engine, &worker.ExpiryWorkerConfig{
		ScanInterval: config.Reservation.SweepInterval,
	}, logger)
	if err := expiry.Start(ctx); err != nil {
		logger.Fatal("Failed to start expiry worker", zap.Error(err))
	}
	defer expiry.Stop()

	// Wire all dependencies
	service := usecase.NewService(store, engine, resolver, logger)
	app := wire.Wiring(service, expiry, logger)

	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))
	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Error("HTTP server stopped with error", zap.Error(err))
	}
}

func initStore(ctx context.Context, config *utils.Config, logger *zap.Logger) (repository.Store, func(), error) {
	switch config.App.StorageDriver {
	case "memory":
		logger.Warn("Using in-memory storage, data is lost on restart")
		return memory.NewStore(), func() {}, nil

	case "postgres", "":
		db, err := database.InitDB(config.Database)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Database connected successfully")

		if config.Database.Migrate {
			if err := database.Migrate(ctx, db); err != nil {
				db.Close()
				return nil, nil, err
			}
			logger.Info("Database schema applied")
		}
		return repository.NewStore(db, logger), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORAGE_DRIVER %q", config.App.StorageDriver)
	}
}

func initLocker(ctx context.Context, config *utils.Config, logger *zap.Logger) (reservation.Locker, func(), error) {
	switch config.Reservation.LockDriver {
	case "memory", "":
		return reservation.NewMemoryLocker(), func() {}, nil

	case "redis":
		client, err := database.InitRedis(ctx, config.Redis)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Redis connected", zap.String("addr", config.Redis.Addr))
		return reservation.NewRedisLocker(client, config.Reservation.LockTTL), func() { client.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown LOCK_DRIVER %q", config.Reservation.LockDriver)
	}
}

// initPublisher falls back to logging events when the broker is unset or
// unreachable; bookings must not depend on it.
func initPublisher(config *utils.Config, logger *zap.Logger) (reservation.Publisher, func()) {
	if config.RabbitMQ.URL == "" {
		return reservation.NewLogPublisher(logger), func() {}
	}

	publisher, err := queue.NewPublisher(config.RabbitMQ.URL, config.RabbitMQ.Exchange, logger)
	if err != nil {
		logger.Warn("RabbitMQ unavailable, logging booking events instead", zap.Error(err))
		return reservation.NewLogPublisher(logger), func() {}
	}
	logger.Info("RabbitMQ connected", zap.String("exchange", config.RabbitMQ.Exchange))

	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("Failed to close RabbitMQ publisher", zap.Error(err))
		}
	}
}
