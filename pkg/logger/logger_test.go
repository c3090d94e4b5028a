package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func TestLogger_JSONConServicioYComponente(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter(logger.Config{Env: "production", Level: "info", Service: "stock-ledger"}, &buf)

	c := l.Component("engine")
	c.Info().Str("op", "receive").Msg("movimiento")

	var ev map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &ev))
	assert.Equal(t, "stock-ledger", ev["service"])
	assert.Equal(t, "engine", ev["component"])
	assert.Equal(t, "receive", ev["op"])
	assert.Equal(t, "info", ev["level"])
}

func TestLogger_NivelFiltra(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter(logger.Config{Level: "warn"}, &buf)

	l.Info().Msg("no se escribe")
	assert.Zero(t, buf.Len())

	l.Warn().Msg("sí se escribe")
	assert.NotZero(t, buf.Len())
}

func TestLogger_NivelInvalidoUsaInfoYDisabledSilencia(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter(logger.Config{Level: "verbose"}, &buf)
	l.Debug().Msg("no se escribe")
	assert.Zero(t, buf.Len())
	l.Info().Msg("sí se escribe")
	assert.NotZero(t, buf.Len())

	buf.Reset()
	l = logger.NewWithWriter(logger.Config{Level: "DISABLED"}, &buf)
	l.Error().Msg("nada")
	assert.Zero(t, buf.Len())
}

func TestLogger_DevelopmentIncluyeCaller(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewWithWriter(logger.Config{Env: "development", Level: "info"}, &buf)
	l.Info().Msg("con caller")

	var ev map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &ev))
	assert.Contains(t, ev["caller"], "logger_test.go")
}
