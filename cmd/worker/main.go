package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/stock-ledger/internal/application/alerts"
	"github.com/jhoicas/stock-ledger/internal/bootstrap"
	"github.com/jhoicas/stock-ledger/internal/jobs"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name + "-worker",
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("worker finalizado con error")
	}
	log.Info().Msg("worker detenido")
}

func run(cfg *config.Config, log *logger.Logger) error {
	// El worker comparte datos con la API: con storage en memoria no vería nada.
	if cfg.Storage.Driver != "postgres" {
		return fmt.Errorf("el worker requiere STORAGE_DRIVER=postgres (actual %q)", cfg.Storage.Driver)
	}
	if !cfg.Redis.Enabled() {
		return errors.New("el worker requiere REDIS_ADDR")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.Open(ctx, cfg, log.Component("storage"))
	if err != nil {
		return fmt.Errorf("inicializar storage: %w", err)
	}
	defer stores.Close()

	alertSvc := alerts.NewService(stores.Products, stores.Warehouses, stores.Balances, stores.Alerts, log.Component("alerts"))

	var cron []jobs.CronRegistration
	if cfg.Worker.LowStockCron != "" {
		task, err := jobs.NewLowStockCheckTask(nil)
		if err != nil {
			return fmt.Errorf("tarea de chequeo periódico: %w", err)
		}
		cron = append(cron, jobs.CronRegistration{Spec: cfg.Worker.LowStockCron, Task: task})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   bootstrap.AsynqRedisOpt(cfg.Redis),
		Concurrency: cfg.Worker.Concurrency,
		Logger:      log.Component("worker"),
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLowStockCheck, Handler: jobs.LowStockCheckHandler(alertSvc, log.Component("low-stock"))},
		},
		Cron: cron,
	})
	if err != nil {
		return fmt.Errorf("configurar worker: %w", err)
	}

	log.Info().
		Int("concurrency", cfg.Worker.Concurrency).
		Str("low_stock_cron", cfg.Worker.LowStockCron).
		Msg("iniciando worker")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
