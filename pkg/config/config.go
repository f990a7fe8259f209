package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfiguration holds the listening addresses.
type ServerConfiguration struct {
	Port     string
	GrpcPort string
}

// DatabaseConfiguration holds the database connection values.
type DatabaseConfiguration struct {
	DSN            string
	Database       string
	MigrationsPath string
}

// Redis configuration struct.
type RedisConfiguration struct {
	Host     string
	Port     string
	Password string
}

// BucketConfiguration is the S3 compatible bucket used for the battle audit logs.
type BucketConfiguration struct {
	Region       string
	AccessKey    string
	AccessSecret string
	Endpoint     string
	LogBucket    string
}

// Enabled reports if every value needed for an upload was provided.
func (b BucketConfiguration) Enabled() bool {
	return b.LogBucket != "" && b.AccessKey != "" && b.AccessSecret != "" && b.Endpoint != ""
}

// PvPConfiguration holds the tunable values of the duel system.
type PvPConfiguration struct {
	MaxBattlesPerHour int
	RateWindow        time.Duration
	ChallengeLockTTL  time.Duration
}

// Config is the full application configuration.
type Config struct {
	Environment string
	LogLevel    string

	Server   ServerConfiguration
	Database DatabaseConfiguration
	Redis    RedisConfiguration
	Bucket   BucketConfiguration
	PvP      PvPConfiguration
}

// Load the variables.
// The .env file is only read when not running on Docker.
func Load() (*Config, error) {
	environment := os.Getenv("ENVIRONMENT")
	if environment != "docker" {
		// A missing file is fine, the values can come from the environment itself.
		_ = godotenv.Load()
	}

	maxBattles, err := getEnvInt("PVP_MAX_BATTLES_PER_HOUR", 20)
	if err != nil {
		return nil, err
	}

	rateWindow, err := getEnvDuration("PVP_RATE_WINDOW", time.Hour)
	if err != nil {
		return nil, err
	}

	lockTTL, err := getEnvDuration("PVP_CHALLENGE_LOCK_TTL", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Environment: environment,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Server: ServerConfiguration{
			Port:     getEnv("SERVER_PORT", "8080"),
			GrpcPort: getEnv("GRPC_PORT", "50051"),
		},
		Database: DatabaseConfiguration{
			DSN:            os.Getenv("DATABASE_URL"),
			Database:       getEnv("POSTGRES_DB", "garage"),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfiguration{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Bucket: BucketConfiguration{
			Region:       getEnv("BUCKET_REGION", "us-east-1"),
			AccessKey:    os.Getenv("BUCKET_ACCESS_KEY"),
			AccessSecret: os.Getenv("BUCKET_ACCESS_SECRET"),
			Endpoint:     os.Getenv("BUCKET_ENDPOINT"),
			LogBucket:    os.Getenv("BUCKET_LOG_BUCKET"),
		},
		PvP: PvPConfiguration{
			MaxBattlesPerHour: maxBattles,
			RateWindow:        rateWindow,
			ChallengeLockTTL:  lockTTL,
		},
	}

	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.PvP.MaxBattlesPerHour <= 0 {
		return nil, fmt.Errorf("PVP_MAX_BATTLES_PER_HOUR must be positive, got %d", cfg.PvP.MaxBattlesPerHour)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return parsed, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return parsed, nil
}
