package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/gosuda/aquabill/internal/domain"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Server   ServerConfig
	Billing  BillingConfig
	Log      LogConfig
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings. An empty Addr disables
// event publishing.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// Enabled reports whether a Redis address is configured.
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

// BillingConfig holds billing defaults used when settings are absent.
type BillingConfig struct {
	DueDays         int
	DefaultRate     decimal.Decimal
	DefaultCurrency string
	CheckRegression bool
}

// LogConfig selects the zerolog level and output format.
type LogConfig struct {
	Level  zerolog.Level
	Format string
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("AQUABILL_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("AQUABILL_DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("AQUABILL_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("AQUABILL_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("AQUABILL_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rps, err := getEnvFloat("AQUABILL_RATE_LIMIT_RPS", 20)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	burst, err := getEnvInt("AQUABILL_RATE_LIMIT_BURST", 40)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dueDays, err := getEnvInt("AQUABILL_BILL_DUE_DAYS", 30)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	defaultRate, err := getEnvDecimal("AQUABILL_DEFAULT_RATE", decimal.RequireFromString("2.50"))
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	checkRegression, err := getEnvBool("AQUABILL_CHECK_REGRESSION", true)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	level, err := zerolog.ParseLevel(getEnv("AQUABILL_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("config.Load: parsing AQUABILL_LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("AQUABILL_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("AQUABILL_DB_USER", "aquabill"),
			Password: getEnv("AQUABILL_DB_PASSWORD", ""),
			DBName:   getEnv("AQUABILL_DB_NAME", "aquabill"),
			SSLMode:  getEnv("AQUABILL_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("AQUABILL_REDIS_ADDR", ""),
			Password: getEnv("AQUABILL_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Server: ServerConfig{
			Addr:           getEnv("AQUABILL_SERVER_ADDR", ":8080"),
			ReadTimeout:    readTimeout,
			WriteTimeout:   writeTimeout,
			CORSOrigins:    getEnvList("AQUABILL_CORS_ORIGINS", []string{"http://localhost:5173"}),
			RateLimitRPS:   rps,
			RateLimitBurst: burst,
		},
		Billing: BillingConfig{
			DueDays:         dueDays,
			DefaultRate:     defaultRate,
			DefaultCurrency: getEnv("AQUABILL_DEFAULT_CURRENCY", "USD"),
			CheckRegression: checkRegression,
		},
		Log: LogConfig{
			Level:  level,
			Format: getEnv("AQUABILL_LOG_FORMAT", "json"),
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	if c.Database.SSLMode == "disable" && c.Database.Host != "localhost" && c.Database.Host != "127.0.0.1" {
		log.Warn().Msg("AQUABILL_DB_SSLMODE=disable against a remote host; set to 'require' or 'verify-full'")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("AQUABILL_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("AQUABILL_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("AQUABILL_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("AQUABILL_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Server.RateLimitRPS <= 0 {
		return fmt.Errorf("AQUABILL_RATE_LIMIT_RPS must be positive, got %g", c.Server.RateLimitRPS)
	}
	if c.Server.RateLimitBurst < 1 {
		return fmt.Errorf("AQUABILL_RATE_LIMIT_BURST must be >= 1, got %d", c.Server.RateLimitBurst)
	}
	if c.Billing.DueDays < 1 {
		return fmt.Errorf("AQUABILL_BILL_DUE_DAYS must be >= 1, got %d", c.Billing.DueDays)
	}
	if err := domain.ValidateRate(c.Billing.DefaultRate); err != nil {
		return fmt.Errorf("AQUABILL_DEFAULT_RATE: %w", err)
	}
	if err := domain.ValidateCurrency(c.Billing.DefaultCurrency); err != nil {
		return fmt.Errorf("AQUABILL_DEFAULT_CURRENCY: %w", err)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("AQUABILL_LOG_FORMAT must be json or text, got %q", c.Log.Format)
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
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
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvDecimal(key string, fallback decimal.Decimal) (decimal.Decimal, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing %s=%q as decimal: %w", key, v, err)
	}
	return d, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
