package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "postgres", cfg.Storage.SequenceDriver, "la secuencia sigue al driver de storage")
	assert.Equal(t, "atomic", cfg.Stock.ValidationMode)
	assert.Equal(t, 3, cfg.Stock.MaxRetries)
	assert.Equal(t, 20*time.Millisecond, cfg.Stock.RetryBackoff)
	assert.Equal(t, int64(10), cfg.Stock.LowStockThreshold)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 5*time.Second, cfg.DB.LockTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.DB.SlowQuery)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("SEQUENCE_DRIVER", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("STOCK_VALIDATION_MODE", "PER_LINE")
	t.Setenv("ENGINE_MAX_RETRIES", "5")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, "redis", cfg.Storage.SequenceDriver)
	assert.Equal(t, "per_line", cfg.Stock.ValidationMode)
	assert.Equal(t, 5, cfg.Stock.MaxRetries)
	assert.Equal(t, 9090, cfg.HTTP.Port)
}

func TestLoad_Invalidos(t *testing.T) {
	cases := map[string]map[string]string{
		"driver desconocido":        {"STORAGE_DRIVER": "mongo"},
		"modo desconocido":          {"STOCK_VALIDATION_MODE": "lazy"},
		"redis sin dirección":       {"SEQUENCE_DRIVER": "redis"},
		"secuencia postgres sin db": {"STORAGE_DRIVER": "memory", "SEQUENCE_DRIVER": "postgres"},
		"reintentos negativos":      {"ENGINE_MAX_RETRIES": "-1"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "stock", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/stock?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
