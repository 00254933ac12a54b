package utils

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Reservation ReservationConfig
	Redis       RedisConfig
	RabbitMQ    RabbitMQConfig
	Telemetry   TelemetryConfig
}

type AppConfig struct {
	Name          string
	Port          string
	Debug         bool
	LogPath       string
	StorageDriver string // postgres | memory
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
	Migrate  bool
}

type ReservationConfig struct {
	DefaultHoldTTL time.Duration
	MaxHoldTTL     time.Duration
	SweepInterval  time.Duration
	SweepBatchSize int
	SeatPremiums   string // vip:0.5,golden:0.1
	LockDriver     string // memory | redis
	LockTTL        time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

type TelemetryConfig struct {
	Enabled       bool
	CollectorAddr string
	Environment   string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "cinema-reservation")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("STORAGE_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("DB_MIGRATE", true)
	viper.SetDefault("HOLD_DEFAULT_TTL", "10m")
	viper.SetDefault("HOLD_MAX_TTL", "30m")
	viper.SetDefault("SWEEP_INTERVAL", "5s")
	viper.SetDefault("SWEEP_BATCH_SIZE", 100)
	viper.SetDefault("LOCK_DRIVER", "memory")
	viper.SetDefault("LOCK_TTL", "10s")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("EVENTS_EXCHANGE", "booking.events")
	viper.SetDefault("OTEL_ENABLED", false)
	viper.SetDefault("OTEL_COLLECTOR_ADDR", "localhost:4317")
	viper.SetDefault("ENVIRONMENT", "development")

	// .env boleh tidak ada, environment variable tetap dipakai
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:          viper.GetString("APP_NAME"),
			Port:          viper.GetString("PORT"),
			Debug:         viper.GetBool("DEBUG"),
			LogPath:       viper.GetString("LOG_PATH"),
			StorageDriver: viper.GetString("STORAGE_DRIVER"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
			Migrate:  viper.GetBool("DB_MIGRATE"),
		},
		Reservation: ReservationConfig{
			DefaultHoldTTL: viper.GetDuration("HOLD_DEFAULT_TTL"),
			MaxHoldTTL:     viper.GetDuration("HOLD_MAX_TTL"),
			SweepInterval:  viper.GetDuration("SWEEP_INTERVAL"),
			SweepBatchSize: viper.GetInt("SWEEP_BATCH_SIZE"),
			SeatPremiums:   viper.GetString("SEAT_PREMIUMS"),
			LockDriver:     viper.GetString("LOCK_DRIVER"),
			LockTTL:        viper.GetDuration("LOCK_TTL"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      viper.GetString("RABBITMQ_URL"),
			Exchange: viper.GetString("EVENTS_EXCHANGE"),
		},
		Telemetry: TelemetryConfig{
			Enabled:       viper.GetBool("OTEL_ENABLED"),
			CollectorAddr: viper.GetString("OTEL_COLLECTOR_ADDR"),
			Environment:   viper.GetString("ENVIRONMENT"),
		},
	}

	return config, nil
}
