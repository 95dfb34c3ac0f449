package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, "venda", cfg.Database)
	require.NoError(t, cfg.Validate())
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("VENDA_DB_HOST", "db.internal")
	t.Setenv("VENDA_DB_PORT", "5433")
	t.Setenv("VENDA_DB_NAME", "venda_test")
	t.Setenv("VENDA_DB_USER", "tester")
	t.Setenv("VENDA_DB_PASSWORD", "s3cret")
	t.Setenv("VENDA_DB_SSLMODE", "require")

	cfg := ConfigFromEnv()
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 5433, cfg.Port)
	assert.Equal(t, "venda_test", cfg.Database)
	assert.Equal(t, "tester", cfg.User)
	assert.Equal(t, "s3cret", cfg.Password)
	assert.Equal(t, "require", cfg.SSLMode)
}

func TestConfigFromEnvIgnoresBadPort(t *testing.T) {
	t.Setenv("VENDA_DB_PORT", "not-a-number")
	cfg := ConfigFromEnv()
	assert.Equal(t, 5432, cfg.Port)
}

func TestConnectionString(t *testing.T) {
	cfg := &Config{
		Host:           "localhost",
		Port:           5432,
		Database:       "venda",
		User:           "user with space",
		Password:       "p@ss/word",
		SSLMode:        "disable",
		ConnectTimeout: 10 * time.Second,
	}

	got := cfg.ConnectionString()
	assert.Contains(t, got, "postgres://")
	assert.Contains(t, got, "user+with+space")
	assert.Contains(t, got, "sslmode=disable")
	assert.Contains(t, got, "connect_timeout=10")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty host", func(c *Config) { c.Host = "" }, true},
		{"bad port", func(c *Config) { c.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Port = 70000 }, true},
		{"empty database", func(c *Config) { c.Database = "" }, true},
		{"empty user", func(c *Config) { c.User = "" }, true},
		{"max < min conns", func(c *Config) { c.MaxConns = 1; c.MinConns = 5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPingNilPool(t *testing.T) {
	assert.Error(t, Ping(t.Context(), nil))
}

func TestCloseNilPool(t *testing.T) {
	// Must not panic.
	Close(nil)
}
