package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port        int
	APIKey      string // API key guarding the ops/admin endpoints
	Environment string
	ServiceName string
	Version     string
	LogLevel    string
	LogFormat   string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	OpenF1BaseURL   string
	ErgastBaseURL   string
	ProviderTimeout time.Duration
	HealthCacheTTL  time.Duration

	SchedulerEnabled       bool
	StartupDelay           time.Duration
	SessionStateInterval   time.Duration
	ProviderHealthInterval time.Duration
	AutoFinalizeInterval   time.Duration

	ConfidenceCreditsTotal int
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		APIKey:      getEnv("API_KEY", ""),
		Environment: getEnv("ENVIRONMENT", "dev"),
		ServiceName: getEnv("SERVICE_NAME", "gridstake"),
		Version:     getEnv("VERSION", "dev"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),

		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", "gridstake"),

		OpenF1BaseURL: getEnv("OPENF1_BASE_URL", DefaultOpenF1BaseURL),
		ErgastBaseURL: getEnv("ERGAST_BASE_URL", DefaultErgastBaseURL),
	}

	port, err := getEnvInt("PORT", DefaultPort)
	if err != nil {
		return nil, err
	}
	cfg.Port = port

	creditsTotal, err := getEnvInt("CONFIDENCE_CREDITS_TOTAL", DefaultConfidenceCreditsTotal)
	if err != nil {
		return nil, err
	}
	cfg.ConfidenceCreditsTotal = creditsTotal

	cfg.ProviderTimeout, err = getEnvDuration("PROVIDER_TIMEOUT", DefaultProviderTimeout)
	if err != nil {
		return nil, err
	}
	cfg.HealthCacheTTL, err = getEnvDuration("PROVIDER_HEALTH_CACHE_TTL", DefaultHealthCacheTTL)
	if err != nil {
		return nil, err
	}

	cfg.SchedulerEnabled = getEnv("SCHEDULER_ENABLED", "true") == "true"
	cfg.StartupDelay, err = getEnvDuration("SCHEDULER_STARTUP_DELAY", DefaultStartupDelay)
	if err != nil {
		return nil, err
	}
	cfg.SessionStateInterval, err = getEnvDuration("SESSION_STATE_INTERVAL", DefaultSessionStateInterval)
	if err != nil {
		return nil, err
	}
	cfg.ProviderHealthInterval, err = getEnvDuration("PROVIDER_HEALTH_INTERVAL", DefaultProviderHealthInterval)
	if err != nil {
		return nil, err
	}
	cfg.AutoFinalizeInterval, err = getEnvDuration("AUTO_FINALIZE_INTERVAL", DefaultAutoFinalizeInterval)
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY environment variable must be set for security")
	}
	if c.ConfidenceCreditsTotal <= 0 {
		return fmt.Errorf("CONFIDENCE_CREDITS_TOTAL must be positive, got %d", c.ConfidenceCreditsTotal)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return value, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return value, nil
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
