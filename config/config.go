package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/database"

	"github.com/joho/godotenv"
)

// Storage backends selectable through STORAGE_BACKEND
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// Config holds all application configuration
type Config struct {
	// HTTP server
	HTTPAddr  string
	JWTSecret string

	// AdminUserIDs may read platform-wide statistics
	AdminUserIDs []string

	// Storage configuration
	StorageBackend string
	DatabaseURL    string
	DatabaseName   string
	RedisURL       string
	CASMaxRetries  int

	// Arena economy
	StartingBalance    int64
	MinEntryFee        int64
	MinTopUp           int64
	PlatformFeePercent int64

	// Settlement reconciler
	ReconcileInterval time.Duration

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated), empty disables

	// Discord notifications
	DiscordToken     string
	DiscordChannelID string

	// OpenTelemetry configuration
	OTelEnabled              bool
	OTelExporterType         string // "console", "otlp" or "none"
	OTelOTLPEndpoint         string
	OTelServiceName          string
	OTelExportIntervalMillis int

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// load loads configuration from the environment, reading a .env file first when present
func load() (*Config, error) {
	// A missing .env file is normal outside local development
	_ = godotenv.Load()

	config := &Config{
		HTTPAddr:  getEnvWithDefault("HTTP_ADDR", ":8080"),
		JWTSecret: os.Getenv("JWT_SECRET"),

		AdminUserIDs: getEnvList("ADMIN_USER_IDS"),

		StorageBackend: strings.ToLower(getEnvWithDefault("STORAGE_BACKEND", StorageMemory)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DatabaseName:   os.Getenv("DATABASE_NAME"),
		RedisURL:       os.Getenv("REDIS_URL"),
		CASMaxRetries:  getEnvInt("CAS_MAX_RETRIES", 16),

		StartingBalance:    getEnvInt64("STARTING_BALANCE", 100),
		MinEntryFee:        getEnvInt64("MIN_ENTRY_FEE", 10),
		MinTopUp:           getEnvInt64("MIN_TOP_UP", 10),
		PlatformFeePercent: getEnvInt64("PLATFORM_FEE_PERCENT", 20),

		ReconcileInterval: getEnvDuration("RECONCILE_INTERVAL", 30*time.Second),

		NATSServers: os.Getenv("NATS_SERVERS"),

		DiscordToken:     os.Getenv("DISCORD_TOKEN"),
		DiscordChannelID: os.Getenv("DISCORD_CHANNEL_ID"),

		OTelEnabled:              os.Getenv("OTEL_ENABLED") == "true",
		OTelExporterType:         getEnvWithDefault("OTEL_EXPORTER_TYPE", "console"),
		OTelOTLPEndpoint:         getEnvWithDefault("OTEL_OTLP_ENDPOINT", "otel-collector:4317"),
		OTelServiceName:          getEnvWithDefault("OTEL_SERVICE_NAME", "clash-cash-arena"),
		OTelExportIntervalMillis: getEnvInt("OTEL_EXPORT_INTERVAL_MS", 30000),

		LogLevel: getEnvWithDefault("LOG_LEVEL", "info"),

		Environment: os.Getenv("ENVIRONMENT"),
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks that required settings are present for the selected environment and backend
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s storage backend", c.StorageBackend)
		}
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the %s storage backend", c.StorageBackend)
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND: %s", c.StorageBackend)
	}

	if c.PlatformFeePercent < 0 || c.PlatformFeePercent >= 100 {
		return fmt.Errorf("PLATFORM_FEE_PERCENT must be in [0, 100), got %d", c.PlatformFeePercent)
	}
	if c.MinEntryFee <= 0 {
		return fmt.Errorf("MIN_ENTRY_FEE must be positive, got %d", c.MinEntryFee)
	}
	if c.StartingBalance < 0 {
		return fmt.Errorf("STARTING_BALANCE cannot be negative, got %d", c.StartingBalance)
	}

	if c.Environment != "test" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping empty entries
func getEnvList(key string) []string {
	var values []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		HTTPAddr:           ":0",
		JWTSecret:          "test-secret",
		AdminUserIDs:       []string{"admin"},
		StorageBackend:     StorageMemory,
		CASMaxRetries:      16,
		StartingBalance:    100,
		MinEntryFee:        10,
		MinTopUp:           10,
		PlatformFeePercent: 20,
		ReconcileInterval:  time.Second,
		OTelExporterType:   "none",
		OTelServiceName:    "clash-cash-arena-test",
		LogLevel:           "debug",
		Environment:        "test",
	}
}
