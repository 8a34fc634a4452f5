package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"ustbills/internal/logger"
)

// Config holds application configuration
type Config struct {
	// Server
	Env      string
	Port     string
	LogLevel string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Identity
	JWTSecret       string
	AdminIdentities []string
	PipelineAPIKey  string

	// Rate oracle
	TreasuryAPIURL         string
	TreasuryRequestTimeout time.Duration

	// Redis mirror of the rate cache; disabled when RedisAddr is empty.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RateCacheTTL  time.Duration

	// Scheduler
	SchedulerEnabled bool

	// Seed values for the platform config row on first start.
	Defaults PlatformDefaults
}

// PlatformDefaults are the initial trading parameters.
type PlatformDefaults struct {
	MinimumInvestment          int64
	MaximumInvestment          int64
	PlatformFeePercentage      decimal.Decimal
	KYCExpiryDays              int
	YieldDistributionFrequency int
	TreasuryAPIRefreshInterval int
}

// DefaultTreasuryAPIURL is the fiscal data endpoint for treasury bill rates.
const DefaultTreasuryAPIURL = "https://api.fiscaldata.treasury.gov/services/api/fiscal_service/v2/accounting/od/avg_interest_rates?filter=security_desc:eq:Treasury%20Bills&sort=-record_date&page[size]=100"

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: os.Getenv("LOG_LEVEL"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "ustbills"),
		DBPassword: getEnv("DB_PASSWORD", "ustbills"),
		DBName:     getEnv("DB_NAME", "ustbills"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "ustbills.db"),

		JWTSecret:       getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),
		AdminIdentities: splitList(os.Getenv("ADMIN_IDENTITIES")),
		PipelineAPIKey:  os.Getenv("PIPELINE_API_KEY"),

		TreasuryAPIURL: getEnv("TREASURY_API_URL", DefaultTreasuryAPIURL),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}

	if config.DBDriver != "postgres" && config.DBDriver != "sqlite" {
		return nil, fmt.Errorf("invalid DB_DRIVER %q: must be postgres or sqlite", config.DBDriver)
	}

	if _, err := logger.ParseLevel(config.LogLevel); err != nil {
		return nil, err
	}

	var err error
	if config.TreasuryRequestTimeout, err = parseDuration("TREASURY_REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if config.RateCacheTTL, err = parseDuration("RATE_CACHE_TTL", 2*time.Hour); err != nil {
		return nil, err
	}
	if config.RedisDB, err = parseInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if config.SchedulerEnabled, err = parseBool(os.Getenv("SCHEDULER_ENABLED"), true); err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_ENABLED value: %w", err)
	}
	if config.Defaults, err = loadDefaults(); err != nil {
		return nil, err
	}

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

func loadDefaults() (PlatformDefaults, error) {
	d := PlatformDefaults{}
	var err error

	minInv, err := parseInt("DEFAULT_MINIMUM_INVESTMENT", 1)
	if err != nil {
		return d, err
	}
	maxInv, err := parseInt("DEFAULT_MAXIMUM_INVESTMENT", 10000)
	if err != nil {
		return d, err
	}
	d.MinimumInvestment, d.MaximumInvestment = int64(minInv), int64(maxInv)

	fee := getEnv("DEFAULT_PLATFORM_FEE_PERCENTAGE", "0.005")
	if d.PlatformFeePercentage, err = decimal.NewFromString(fee); err != nil {
		return d, fmt.Errorf("invalid DEFAULT_PLATFORM_FEE_PERCENTAGE %q: %w", fee, err)
	}
	if d.KYCExpiryDays, err = parseInt("DEFAULT_KYC_EXPIRY_DAYS", 365); err != nil {
		return d, err
	}
	if d.YieldDistributionFrequency, err = parseInt("DEFAULT_YIELD_DISTRIBUTION_FREQUENCY", 1); err != nil {
		return d, err
	}
	if d.TreasuryAPIRefreshInterval, err = parseInt("DEFAULT_TREASURY_API_REFRESH_INTERVAL", 3600); err != nil {
		return d, err
	}
	return d, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", key, d)
	}
	return d, nil
}

func parseInt(key string, defaultVal int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func parseBool(s string, defaultVal bool) (bool, error) {
	if s == "" {
		return defaultVal, nil
	}
	switch strings.ToLower(s) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("must be true, false, 1, or 0, got %q", s)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
