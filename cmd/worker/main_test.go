package main

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func TestRun_RequierePostgresYRedis(t *testing.T) {
	log := logger.NewWithWriter(logger.Config{Level: "error"}, io.Discard)

	err := run(&config.Config{Storage: config.StorageConfig{Driver: "memory"}}, log)
	assert.ErrorContains(t, err, "STORAGE_DRIVER=postgres")

	err = run(&config.Config{Storage: config.StorageConfig{Driver: "postgres"}}, log)
	assert.ErrorContains(t, err, "REDIS_ADDR")
}
