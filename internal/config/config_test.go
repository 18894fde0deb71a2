package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_SQLiteDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", "test.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Providers.TimeoutSeconds)
	assert.Equal(t, "world", cfg.Tariff.WorldCountryName)
	assert.Equal(t, "developing", cfg.Tariff.DevelopingCountryName)
	assert.Contains(t, cfg.Tariff.CustomsDifferentiated, 156)
	assert.Contains(t, cfg.Tariff.CustomsDifferentiated, 840)
	assert.Equal(t, "local", cfg.Lock.Backend)
	assert.Equal(t, "none", cfg.Archive.Type)
}

func TestLoad_PostgresRequiresPassword(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_PASSWORD")
}

func TestLoad_InvalidCustomsList(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("CUSTOMS_DIFFERENTIATED_COUNTRIES", "156,abc")

	_, err := Load()
	assert.ErrorContains(t, err, "CUSTOMS_DIFFERENTIATED_COUNTRIES")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database:  DatabaseConfig{Driver: "sqlite", SQLitePath: "x.db"},
			Providers: ProvidersConfig{TimeoutSeconds: 8, RatePerSecond: 1, Burst: 1},
			Tariff:    TariffConfig{WorldCountryName: "world", DevelopingCountryName: "developing"},
			Lock:      LockConfig{Backend: "local"},
			Archive:   ArchiveConfig{Type: "none"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "Valid", mutate: func(c *Config) {}},
		{name: "UnknownDriver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "DB_DRIVER"},
		{name: "TimeoutTooLarge", mutate: func(c *Config) { c.Providers.TimeoutSeconds = 120 }, wantErr: "PROVIDER_TIMEOUT_SECONDS"},
		{name: "TimeoutZero", mutate: func(c *Config) { c.Providers.TimeoutSeconds = 0 }, wantErr: "PROVIDER_TIMEOUT_SECONDS"},
		{name: "RedisWithoutAddr", mutate: func(c *Config) { c.Lock.Backend = "redis"; c.Lock.TTLSeconds = 5 }, wantErr: "REDIS_ADDR"},
		{name: "UnknownArchive", mutate: func(c *Config) { c.Archive.Type = "ftp" }, wantErr: "ARCHIVE_TYPE"},
		{name: "MissingSentinelName", mutate: func(c *Config) { c.Tariff.WorldCountryName = "" }, wantErr: "WORLD_COUNTRY_NAME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5432, Username: "user", Password: "p@ss word", Name: "tariff_db", SSLMode: "disable"}
	assert.Equal(t, "postgres://user:p%40ss%20word@db:5432/tariff_db?sslmode=disable", cfg.DSN())
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, (&Config{LogLevel: "DEBUG"}).SlogLevel())
	assert.Equal(t, slog.LevelWarn, (&Config{LogLevel: "warn"}).SlogLevel())
	assert.Equal(t, slog.LevelError, (&Config{LogLevel: "error"}).SlogLevel())
	assert.Equal(t, slog.LevelInfo, (&Config{LogLevel: "verbose"}).SlogLevel())
}
