package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	Log      LogConfig
	Pricing  PricingConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	Migrate  bool
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level string
}

// PricingConfig holds fare calculation settings.
type PricingConfig struct {
	// TimeZone is the IANA zone transit times are classified in. Empty keeps
	// each timestamp's own location.
	TimeZone               string
	AllowCancelledEstimate bool
	ReportCacheTTL         time.Duration
}

var defaults = map[string]any{
	"SERVER_PORT":          "8080",
	"SERVER_READ_TIMEOUT":  10 * time.Second,
	"SERVER_WRITE_TIMEOUT": 10 * time.Second,

	"DB_HOST":     "localhost",
	"DB_PORT":     "5432",
	"DB_USER":     "postgres",
	"DB_PASSWORD": "postgres",
	"DB_NAME":     "cabs",
	"DB_SSLMODE":  "disable",
	"DB_MIGRATE":  true,

	"REDIS_ADDR":     "localhost:6379",
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,

	"NEW_RELIC_APP_NAME":    "cabs-pricing-service",
	"NEW_RELIC_LICENSE_KEY": "",
	"NEW_RELIC_ENABLED":     false,

	"LOG_LEVEL": "info",

	"PRICING_TIMEZONE":                 "",
	"PRICING_ALLOW_CANCELLED_ESTIMATE": true,
	"REPORT_CACHE_TTL":                 time.Minute,
}

// Load loads configuration from the environment, falling back to an optional
// .env file in the working directory and then to defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read .env: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			Migrate:  v.GetBool("DB_MIGRATE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		NewRelic: NewRelicConfig{
			AppName:    v.GetString("NEW_RELIC_APP_NAME"),
			LicenseKey: v.GetString("NEW_RELIC_LICENSE_KEY"),
			Enabled:    v.GetBool("NEW_RELIC_ENABLED"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Pricing: PricingConfig{
			TimeZone:               v.GetString("PRICING_TIMEZONE"),
			AllowCancelledEstimate: v.GetBool("PRICING_ALLOW_CANCELLED_ESTIMATE"),
			ReportCacheTTL:         v.GetDuration("REPORT_CACHE_TTL"),
		},
	}

	if cfg.Server.Port == "" {
		return nil, errors.New("SERVER_PORT must not be empty")
	}
	if cfg.Pricing.ReportCacheTTL < 0 {
		return nil, errors.New("REPORT_CACHE_TTL must not be negative")
	}

	return cfg, nil
}

// Location resolves the pricing time zone. A nil location means no override.
func (c PricingConfig) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("PRICING_TIMEZONE: %w", err)
	}
	return loc, nil
}
