package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "WORKDAY_CALENDAR"

// Config represents application configuration
type Config struct {
	Calendar CalendarConfig `mapstructure:"calendar"`
	Redis    RedisConfig    `mapstructure:"redis"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Log      LogConfig      `mapstructure:"log"`
}

// CalendarConfig represents calendar data source configuration
type CalendarConfig struct {
	SourceURL       string  `mapstructure:"source_url" validate:"required,url"`
	FallbackPath    string  `mapstructure:"fallback_path"`
	Timeout         string  `mapstructure:"timeout"`
	CacheTTL        string  `mapstructure:"cache_ttl"`
	Timezone        string  `mapstructure:"timezone"`
	RateLimit       float64 `mapstructure:"rate_limit" validate:"gte=0"`
	RateBurst       int     `mapstructure:"rate_burst" validate:"gte=0"`
	RefreshInterval string  `mapstructure:"refresh_interval"`
}

// RedisConfig represents the optional shared cache
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
	TTL      string `mapstructure:"ttl"`
}

// HTTPConfig represents the API server configuration
type HTTPConfig struct {
	Addr         string `mapstructure:"addr" validate:"required"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
	ReleaseMode  bool   `mapstructure:"release_mode"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json console"`
	File   string `mapstructure:"file"`
}

// Load loads configuration from file, environment and .env. A missing config
// file is not an error; defaults cover every key.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.workday-calendar")
		v.AddConfigPath("/etc/workday-calendar")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("calendar.source_url", "https://cdn.jsdelivr.net/gh/ruyut/TaiwanCalendar/data/{year}.json")
	v.SetDefault("calendar.fallback_path", "")
	v.SetDefault("calendar.timeout", "10s")
	v.SetDefault("calendar.cache_ttl", "24h")
	v.SetDefault("calendar.timezone", "")
	v.SetDefault("calendar.rate_limit", 0)
	v.SetDefault("calendar.rate_burst", 1)
	v.SetDefault("calendar.refresh_interval", "12h")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "24h")

	v.SetDefault("http.addr", ":8000")
	v.SetDefault("http.read_timeout", "10s")
	v.SetDefault("http.write_timeout", "15s")
	v.SetDefault("http.release_mode", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if !strings.Contains(c.Calendar.SourceURL, "{year}") {
		return fmt.Errorf("calendar.source_url must contain a {year} placeholder")
	}
	if c.Calendar.FallbackPath != "" && !strings.Contains(c.Calendar.FallbackPath, "{year}") {
		return fmt.Errorf("calendar.fallback_path must contain a {year} placeholder")
	}
	if _, err := c.Calendar.Location(); err != nil {
		return err
	}

	return nil
}

// GetTimeout returns the upstream request timeout
func (c *CalendarConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 10*time.Second)
}

// GetCacheTTL returns cache TTL duration
func (c *CalendarConfig) GetCacheTTL() time.Duration {
	return parseDuration(c.CacheTTL, 24*time.Hour)
}

// GetRefreshInterval returns the cache warm-up interval. Zero disables
// background refresh.
func (c *CalendarConfig) GetRefreshInterval() time.Duration {
	return parseDuration(c.RefreshInterval, 12*time.Hour)
}

// Location returns the time zone "today" is computed in. Empty means the
// process local zone.
func (c *CalendarConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("calendar.timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// GetTTL returns how long year data lives in Redis
func (c *RedisConfig) GetTTL() time.Duration {
	return parseDuration(c.TTL, 24*time.Hour)
}

// GetReadTimeout returns the server read timeout
func (c *HTTPConfig) GetReadTimeout() time.Duration {
	return parseDuration(c.ReadTimeout, 10*time.Second)
}

// GetWriteTimeout returns the server write timeout
func (c *HTTPConfig) GetWriteTimeout() time.Duration {
	return parseDuration(c.WriteTimeout, 15*time.Second)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return duration
}
