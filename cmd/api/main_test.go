package main

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func TestRun_ConfiguracionInvalidaDevuelveError(t *testing.T) {
	log := logger.NewWithWriter(logger.Config{Level: "error"}, io.Discard)

	cases := map[string]func(c *config.Config){
		"sin secreto JWT": func(c *config.Config) { c.JWT.Secret = "" },
		"modo desconocido": func(c *config.Config) {
			c.JWT.Secret = "s"
			c.Stock.ValidationMode = "lazy"
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := &config.Config{Storage: config.StorageConfig{Driver: "memory", SequenceDriver: "memory"}}
			mutate(cfg)
			assert.Error(t, run(cfg, log))
		})
	}
}
