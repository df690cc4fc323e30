package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, StorageFile, cfg.Storage.Type)
	assert.Equal(t, filepath.Join(home, ".worktime"), filepath.Clean(cfg.Storage.Dir))
	assert.Equal(t, DefaultYearURL, cfg.Calendar.YearURL)
	assert.Equal(t, filepath.Join(home, ".worktime", "calendar"), filepath.Clean(cfg.Calendar.CacheDir))
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowOrigins)
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.True(t, cfg.Daemon.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
storage:
  type: sqlite
  sqlite_path: /tmp/worktime-test.db
calendar:
  year_url: http://localhost:9999/{year}.json
  cache_ttl: 2h
server:
  addr: 127.0.0.1:9090
  rate_limit: 0
daemon:
  daily_time: "04:30"
log:
  level: debug
`)
	t.Setenv("WORKTIME_SERVER_ADDR", ":7070")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, StorageSQLite, cfg.Storage.Type)
	assert.Equal(t, "/tmp/worktime-test.db", cfg.Storage.SQLitePath)
	assert.Equal(t, 2*time.Hour, cfg.Calendar.GetCacheTTL())
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 0.0, cfg.Server.RateLimit)
	assert.Equal(t, "debug", cfg.Log.Level)

	hour, minute := cfg.Daemon.GetDailyTime()
	assert.Equal(t, 4, hour)
	assert.Equal(t, 30, minute)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeConfig(t, "storage:\n  type: floppy\n")
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.type")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Storage:  StorageConfig{Type: StorageMemory},
			Calendar: CalendarConfig{YearURL: DefaultYearURL, CacheTTL: "1h"},
			Server:   ServerConfig{Addr: ":8080", RateLimit: 5, RateBurst: 10},
			Daemon:   DaemonConfig{DailyTime: "03:00"},
			Log:      LogConfig{Level: "info"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"file storage without dir", func(c *Config) { c.Storage = StorageConfig{Type: StorageFile} }, "storage.dir"},
		{"redis without addr", func(c *Config) { c.Storage = StorageConfig{Type: StorageRedis} }, "storage.redis.addr"},
		{"bad cache ttl", func(c *Config) { c.Calendar.CacheTTL = "soon" }, "calendar.cache_ttl"},
		{"url without placeholder", func(c *Config) { c.Calendar.YearURL = "http://x/2024.json" }, "{year}"},
		{"downloads disabled", func(c *Config) { c.Calendar.YearURL = "" }, ""},
		{"negative rate", func(c *Config) { c.Server.RateLimit = -1 }, "server.rate_limit"},
		{"missing burst", func(c *Config) { c.Server.RateBurst = 0 }, "server.rate_burst"},
		{"trusted proxies", func(c *Config) { c.Server.TrustedProxies = []string{"10.0.0.1", "172.16.0.0/12"} }, ""},
		{"bad trusted proxy", func(c *Config) { c.Server.TrustedProxies = []string{"proxy.local"} }, "server.trusted_proxies"},
		{"bad daily time", func(c *Config) { c.Daemon.DailyTime = "25:00" }, "daemon.daily_time"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDaemonConfig_GetDailyTime(t *testing.T) {
	tests := []struct {
		value      string
		wantHour   int
		wantMinute int
	}{
		{"", 3, 0},
		{"20:15", 20, 15},
		{"7:05", 7, 5},
		{"24:00", 3, 0},
		{"noon", 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			c := DaemonConfig{DailyTime: tt.value}
			hour, minute := c.GetDailyTime()
			assert.Equal(t, tt.wantHour, hour)
			assert.Equal(t, tt.wantMinute, minute)
		})
	}
}
