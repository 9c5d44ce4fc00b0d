package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DebugModeEnv is the environment variable for debug mode.
	DebugModeEnv = "DEBUG_MODE"

	// LogFileEnv is the environment variable for an optional log file the JSON logger appends to.
	LogFileEnv = "LOG_FILE"

	// DBDriverEnv is the environment variable for the database/sql driver name ("pgx" or "postgres").
	DBDriverEnv = "DB_DRIVER"

	// DBHostEnv is the environment variable for database host.
	DBHostEnv = "DB_HOST"

	// DBPortEnv is the environment variable for database port.
	DBPortEnv = "DB_PORT"

	// DBUserEnv is the environment variable for database user.
	DBUserEnv = "DB_USER"

	// DBPassEnv is the environment variable for database password.
	DBPassEnv = "DB_PASS"

	// DBNameEnv is the environment variable for database name.
	DBNameEnv = "DB_NAME"

	// DBSSLModeEnv is the environment variable for the postgres sslmode.
	DBSSLModeEnv = "DB_SSLMODE"

	// DBMaxOpenConnsEnv is the environment variable for the connection pool ceiling.
	DBMaxOpenConnsEnv = "DB_MAX_OPEN_CONNS"

	// HTTPServerPortEnv is the environment variable for HTTP server port.
	HTTPServerPortEnv = "HTTP_SERVER_PORT"

	// MetricsServerPortEnv is the environment variable for metrics server port.
	MetricsServerPortEnv = "METRICS_SERVER_PORT"

	// LowStockThresholdEnv is the environment variable for the low-stock threshold.
	LowStockThresholdEnv = "LOW_STOCK_THRESHOLD"

	// OutboxIntervalEnv is the environment variable for the outbox polling interval (Go duration).
	OutboxIntervalEnv = "OUTBOX_INTERVAL"

	// EnvFilePath is the environment variable for .env file path (only for local/test environment).
	EnvFilePath = "ENV_PATH"

	// DefaultEnvFilePath is the default path to the .env file.
	DefaultEnvFilePath = ".env"

	// AWSRegionEnv is the environment variable for AWS region.
	AWSRegionEnv = "AWS_REGION"

	// AWSEndpointEnv is the environment variable for AWS endpoint.
	AWSEndpointEnv = "AWS_ENDPOINT"

	// SQSQueueURLEnv is the environment variable for SQS queue URL.
	SQSQueueURLEnv = "SQS_QUEUE_URL"
)

const (
	DefaultDBDriver          = "pgx"
	DefaultDBSSLMode         = "disable"
	DefaultMaxOpenConns      = 10
	DefaultLowStockThreshold = 10
	DefaultOutboxInterval    = 2 * time.Second
)

var (
	// ErrMissingConfig is returned when required configuration values are missing.
	ErrMissingConfig = errors.New("missing config data")
)

// Config represents the application configuration.
type Config struct {
	DebugMode     bool
	LogFile       string
	Database      DB
	HTTPServer    Server
	MetricsServer Server
	Inventory     Inventory
	AWS           AWSConfig
}

// AWSConfig represents AWS-specific configuration settings.
type AWSConfig struct {
	Region      string
	Endpoint    string
	SQSQueueURL string
}

// DB represents database configuration settings.
type DB struct {
	Driver       string
	Host         string
	User         string
	Password     string
	Name         string
	Port         string
	SSLMode      string
	MaxOpenConns int
}

// DSN builds a key/value connection string understood by both pgx and lib/pq.
func (d DB) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

// Server represents server configuration settings.
type Server struct {
	Port string
}

// Inventory holds the settings of the inventory logic module.
type Inventory struct {
	LowStockThreshold int
	OutboxInterval    time.Duration
}

func allNonEmpty(keyValues map[string]string) error {
	for key, value := range keyValues {
		if value == "" {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("error", "value is empty"))
			return fmt.Errorf("%w for key: %s", ErrMissingConfig, key)
		}
	}
	return nil
}

func allNumbers(keyValues map[string]string) error {
	for key, value := range keyValues {
		_, err := strconv.Atoi(value)
		if err != nil {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("value", value), slog.String("error", err.Error()))
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	if err := allNonEmpty(map[string]string{
		DBHostEnv: c.Database.Host,
		DBUserEnv: c.Database.User,
		DBNameEnv: c.Database.Name,
	}); err != nil {
		return fmt.Errorf("database configuration incomplete: %w", err)
	}

	if err := allNonEmpty(map[string]string{
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("server port configuration incomplete: %w", err)
	}

	if err := allNumbers(map[string]string{
		DBPortEnv:            c.Database.Port,
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}

	switch c.Database.Driver {
	case "pgx", "postgres":
	default:
		return fmt.Errorf("unsupported %s %q", DBDriverEnv, c.Database.Driver)
	}

	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("%s must be positive, got %d", DBMaxOpenConnsEnv, c.Database.MaxOpenConns)
	}

	if c.Inventory.LowStockThreshold < 0 {
		return fmt.Errorf("%s cannot be negative, got %d", LowStockThresholdEnv, c.Inventory.LowStockThreshold)
	}

	return nil
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if val, err := strconv.ParseBool(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if val, err := strconv.Atoi(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultValue time.Duration) time.Duration {
	if val, err := time.ParseDuration(os.Getenv(name)); err == nil && val > 0 {
		return val
	}
	return defaultValue
}

func getEnv(name, defaultValue string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}
	return defaultValue
}

// ApplyEnvFile loads environment variables from the specified .env files.
func ApplyEnvFile(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables and validates it.
func LoadFromEnv() (*Config, error) {
	envPath := os.Getenv(EnvFilePath)
	if envPath == "" {
		envPath = DefaultEnvFilePath
	}
	err := ApplyEnvFile(envPath)
	if err != nil {
		// just log the error, maybe all envs are set in another way
		slog.Info("failed to load from .env", slog.Any("err", err))
	}

	conf := &Config{
		DebugMode: getEnvAsBool(DebugModeEnv, false),
		LogFile:   os.Getenv(LogFileEnv),
		Database: DB{
			Driver:       getEnv(DBDriverEnv, DefaultDBDriver),
			Host:         os.Getenv(DBHostEnv),
			User:         os.Getenv(DBUserEnv),
			Password:     os.Getenv(DBPassEnv),
			Name:         os.Getenv(DBNameEnv),
			Port:         os.Getenv(DBPortEnv),
			SSLMode:      getEnv(DBSSLModeEnv, DefaultDBSSLMode),
			MaxOpenConns: getEnvAsInt(DBMaxOpenConnsEnv, DefaultMaxOpenConns),
		},
		HTTPServer: Server{
			Port: os.Getenv(HTTPServerPortEnv),
		},
		MetricsServer: Server{
			Port: os.Getenv(MetricsServerPortEnv),
		},
		Inventory: Inventory{
			LowStockThreshold: getEnvAsInt(LowStockThresholdEnv, DefaultLowStockThreshold),
			OutboxInterval:    getEnvAsDuration(OutboxIntervalEnv, DefaultOutboxInterval),
		},
		AWS: AWSConfig{
			Region:      os.Getenv(AWSRegionEnv),
			Endpoint:    os.Getenv(AWSEndpointEnv),
			SQSQueueURL: os.Getenv(SQSQueueURLEnv),
		},
	}

	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}

// LoadConsumerFromEnv loads the subset of configuration the notification service needs.
func LoadConsumerFromEnv() (*Config, error) {
	envPath := os.Getenv(EnvFilePath)
	if envPath == "" {
		envPath = DefaultEnvFilePath
	}
	if err := ApplyEnvFile(envPath); err != nil {
		slog.Info("failed to load from .env", slog.Any("err", err))
	}

	conf := &Config{
		DebugMode: getEnvAsBool(DebugModeEnv, false),
		LogFile:   os.Getenv(LogFileEnv),
		AWS: AWSConfig{
			Region:      os.Getenv(AWSRegionEnv),
			Endpoint:    os.Getenv(AWSEndpointEnv),
			SQSQueueURL: os.Getenv(SQSQueueURLEnv),
		},
	}

	if err := allNonEmpty(map[string]string{
		SQSQueueURLEnv: conf.AWS.SQSQueueURL,
	}); err != nil {
		return nil, fmt.Errorf("AWS configuration incomplete: %w", err)
	}
	return conf, nil
}
