package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage types
const (
	StorageFile   = "file"
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// DefaultYearURL is the holiday-cn year document location; {year} is substituted
const DefaultYearURL = "https://raw.githubusercontent.com/NateScarlet/holiday-cn/master/{year}.json"

// Config represents application configuration
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	Server   ServerConfig   `mapstructure:"server"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
	Log      LogConfig      `mapstructure:"log"`
}

// StorageConfig selects and configures the blob backend
type StorageConfig struct {
	Type       string      `mapstructure:"type"` // file, memory, sqlite or redis
	Dir        string      `mapstructure:"dir"`
	SQLitePath string      `mapstructure:"sqlite_path"`
	Redis      RedisConfig `mapstructure:"redis"`
}

// RedisConfig represents redis connection settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// CalendarConfig represents holiday calendar configuration
type CalendarConfig struct {
	YearURL      string `mapstructure:"year_url"`      // empty disables downloads
	CacheTTL     string `mapstructure:"cache_ttl"`     // for downloaded years
	CacheDir     string `mapstructure:"cache_dir"`     // downloaded years survive restarts here, empty disables
	FallbackFile string `mapstructure:"fallback_file"` // extra chinese-days records for years before 2018
}

// ServerConfig represents the HTTP API and preview server
type ServerConfig struct {
	Addr         string   `mapstructure:"addr"`
	StaticDir    string   `mapstructure:"static_dir"`
	AllowOrigins []string `mapstructure:"allow_origins"`
	RateLimit    float64  `mapstructure:"rate_limit"` // requests per second per client IP, 0 disables
	RateBurst    int      `mapstructure:"rate_burst"`
	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For is honoured; empty trusts none
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// DaemonConfig represents the daily maintenance schedule
type DaemonConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	DailyTime string `mapstructure:"daily_time"` // HH:MM, local time
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Load loads configuration from an optional file, WORKTIME_* environment variables and defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.worktime")
	}

	v.SetEnvPrefix("WORKTIME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.ExpandEnvVars()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	v.SetDefault("storage.type", StorageFile)
	v.SetDefault("storage.dir", home+"/.worktime")
	v.SetDefault("storage.sqlite_path", home+"/.worktime/worktime.db")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.prefix", "worktime:")

	v.SetDefault("calendar.year_url", DefaultYearURL)
	v.SetDefault("calendar.cache_ttl", "24h")
	v.SetDefault("calendar.cache_dir", home+"/.worktime/calendar")
	v.SetDefault("calendar.fallback_file", "")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 10.0)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("daemon.enabled", true)
	v.SetDefault("daemon.daily_time", "03:00")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageFile:
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir is required for file storage")
		}
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required for sqlite storage")
		}
	case StorageRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr is required for redis storage")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("storage.type must be one of file, memory, sqlite, redis, got '%s'", c.Storage.Type)
	}

	if c.Calendar.CacheTTL != "" {
		if _, err := time.ParseDuration(c.Calendar.CacheTTL); err != nil {
			return fmt.Errorf("calendar.cache_ttl: %w", err)
		}
	}
	if c.Calendar.YearURL != "" && !strings.Contains(c.Calendar.YearURL, "{year}") {
		return fmt.Errorf("calendar.year_url must contain a {year} placeholder")
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative")
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst <= 0 {
		return fmt.Errorf("server.rate_burst must be positive when rate limiting is enabled")
	}
	for _, proxy := range c.Server.TrustedProxies {
		if !validProxy(proxy) {
			return fmt.Errorf("server.trusted_proxies: '%s' is not an IP address or CIDR", proxy)
		}
	}

	if c.Daemon.DailyTime != "" {
		if _, _, err := parseClock(c.Daemon.DailyTime); err != nil {
			return fmt.Errorf("daemon.daily_time: %w", err)
		}
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got '%s'", c.Log.Level)
	}

	return nil
}

// GetCacheTTL returns cache TTL duration
func (c *CalendarConfig) GetCacheTTL() time.Duration {
	if c.CacheTTL == "" {
		return 24 * time.Hour
	}
	duration, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return duration
}

// GetDailyTime returns the configured maintenance time.
// Returns hour and minute (0-23, 0-59). Default: 03:00
func (c *DaemonConfig) GetDailyTime() (hour, minute int) {
	if c.DailyTime == "" {
		return 3, 0
	}

	h, m, err := parseClock(c.DailyTime)
	if err != nil {
		return 3, 0
	}
	return h, m
}

func parseClock(s string) (hour, minute int, err error) {
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("expected HH:MM, got '%s'", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time out of range: '%s'", s)
	}
	return hour, minute, nil
}

// ExpandEnvVars expands environment variables in config strings
func (c *Config) ExpandEnvVars() {
	c.Storage.Dir = os.ExpandEnv(c.Storage.Dir)
	c.Storage.SQLitePath = os.ExpandEnv(c.Storage.SQLitePath)
	c.Storage.Redis.Password = os.ExpandEnv(c.Storage.Redis.Password)
	c.Calendar.CacheDir = os.ExpandEnv(c.Calendar.CacheDir)
	c.Server.StaticDir = os.ExpandEnv(c.Server.StaticDir)
	c.Log.File = os.ExpandEnv(c.Log.File)
}

func validProxy(s string) bool {
	if strings.Contains(s, "/") {
		_, _, err := net.ParseCIDR(s)
		return err == nil
	}
	return net.ParseIP(s) != nil
}
