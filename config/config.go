package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Backend  BackendConfig
	Calendar CalendarConfig
	Metrics  MetricsConfig
}

type AppConfig struct {
	Port       string
	Env        string
	LogLevel   string
	CORSOrigin string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	TimeZone string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// BackendConfig points at the service that owns the appointment query endpoint
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type CalendarConfig struct {
	PageSize       int
	MaxPages       int
	SearchDebounce time.Duration
	Timezone       string
	SessionIdleTTL time.Duration
}

type MetricsConfig struct {
	Enabled bool
}

// Location resolves the calendar time zone
func (c CalendarConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid CALENDAR_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGIN", "*")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "clinic")
	v.SetDefault("DB_TIMEZONE", "Asia/Jakarta")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ACCESS_EXPIRY", "15m")

	v.SetDefault("BACKEND_BASE_URL", "http://localhost:8080")
	v.SetDefault("BACKEND_TIMEOUT", "10s")

	v.SetDefault("CALENDAR_PAGE_SIZE", 1000)
	v.SetDefault("CALENDAR_MAX_PAGES", 10)
	v.SetDefault("CALENDAR_SEARCH_DEBOUNCE", "1s")
	v.SetDefault("CALENDAR_TIMEZONE", "Asia/Jakarta")
	v.SetDefault("CALENDAR_SESSION_IDLE_TTL", "30m")

	v.SetDefault("METRICS_ENABLED", true)
}

// LoadConfig reads configuration from the given .env file (if present) and
// the environment. Environment variables take precedence over the file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	config := &Config{
		App: AppConfig{
			Port:       v.GetString("APP_PORT"),
			Env:        v.GetString("APP_ENV"),
			LogLevel:   v.GetString("LOG_LEVEL"),
			CORSOrigin: v.GetString("CORS_ALLOWED_ORIGIN"),
		},
		DB: DBConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			TimeZone: v.GetString("DB_TIMEZONE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       v.GetString("JWT_SECRET"),
			AccessExpiry: v.GetDuration("JWT_ACCESS_EXPIRY"),
		},
		Backend: BackendConfig{
			BaseURL: v.GetString("BACKEND_BASE_URL"),
			Timeout: v.GetDuration("BACKEND_TIMEOUT"),
		},
		Calendar: CalendarConfig{
			PageSize:       v.GetInt("CALENDAR_PAGE_SIZE"),
			MaxPages:       v.GetInt("CALENDAR_MAX_PAGES"),
			SearchDebounce: v.GetDuration("CALENDAR_SEARCH_DEBOUNCE"),
			Timezone:       v.GetString("CALENDAR_TIMEZONE"),
			SessionIdleTTL: v.GetDuration("CALENDAR_SESSION_IDLE_TTL"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Backend.BaseURL == "" {
		return errors.New("BACKEND_BASE_URL is required")
	}
	if c.Calendar.PageSize <= 0 || c.Calendar.PageSize > 2000 {
		return fmt.Errorf("CALENDAR_PAGE_SIZE must be between 1 and 2000, got %d", c.Calendar.PageSize)
	}
	if c.Calendar.MaxPages <= 0 {
		return fmt.Errorf("CALENDAR_MAX_PAGES must be positive, got %d", c.Calendar.MaxPages)
	}
	if c.Calendar.SearchDebounce <= 0 {
		return fmt.Errorf("CALENDAR_SEARCH_DEBOUNCE must be positive, got %s", c.Calendar.SearchDebounce)
	}
	if _, err := c.Calendar.Location(); err != nil {
		return err
	}
	return nil
}
