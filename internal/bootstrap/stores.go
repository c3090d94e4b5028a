// Package bootstrap arma los backends (Postgres o memoria, Redis) a partir de la configuración.
// Lo comparten cmd/api y cmd/worker.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/documents"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/redisseq"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

// Stores repositorios y runner de transacciones del backend elegido.
type Stores struct {
	TxRunner   inventory.TxRunner
	Balances   repository.StockBalanceRepository
	Ledger     repository.LedgerRepository
	Documents  repository.DocumentRepository
	Products   repository.ProductRepository
	Warehouses repository.WarehouseRepository
	Users      repository.UserRepository
	Alerts     repository.StockAlertRepository
	Sequence   repository.SequenceGenerator
	// Redis nil si REDIS_ADDR está vacío.
	Redis redis.UniversalClient

	closers []func()
}

// Open conecta el storage y la secuencia según STORAGE_DRIVER / SEQUENCE_DRIVER.
// Con Postgres y DB_AUTO_MIGRATE aplica las migraciones embebidas.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Stores, error) {
	s := &Stores{}
	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DB, log)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool, log); err != nil {
				s.Close()
				return nil, fmt.Errorf("migraciones: %w", err)
			}
		}
		store := postgres.NewStore(pool)
		s.TxRunner = store.TxRunner()
		s.Balances = store.Balances()
		s.Ledger = store.Ledger()
		s.Documents = store.Documents()
		s.Products = store.Products()
		s.Warehouses = store.Warehouses()
		s.Users = store.Users()
		s.Alerts = store.Alerts()
		s.Sequence = store.Sequence()
	case "memory":
		store := memory.New()
		s.TxRunner = memory.NewTxRunner(store)
		s.Balances = store.Balances()
		s.Ledger = store.Ledger()
		s.Documents = store.Documents()
		s.Products = store.Products()
		s.Warehouses = store.Warehouses()
		s.Users = store.Users()
		s.Alerts = store.Alerts()
		s.Sequence = store.Sequence()
		log.Warn().Msg("storage en memoria: los datos se pierden al reiniciar")
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER desconocido: %q", cfg.Storage.Driver)
	}

	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			s.Close()
			return nil, fmt.Errorf("conexión a Redis: %w", err)
		}
		s.Redis = client
		s.closers = append(s.closers, func() { _ = client.Close() })
	}
	if cfg.Storage.SequenceDriver == "redis" {
		if s.Redis == nil {
			s.Close()
			return nil, fmt.Errorf("SEQUENCE_DRIVER=redis requiere REDIS_ADDR")
		}
		seq := redisseq.New(s.Redis, redisseq.DefaultPrefix)
		// Con Postgres los contadores de Redis arrancan donde quedaron las secuencias nativas
		// para no repetir números (documents.number es único).
		if pg, ok := s.Sequence.(*postgres.Sequence); ok {
			if err := seedFromPostgres(ctx, pg, seq); err != nil {
				s.Close()
				return nil, err
			}
		}
		s.Sequence = seq
	}
	return s, nil
}

func seedFromPostgres(ctx context.Context, pg *postgres.Sequence, seq *redisseq.Sequence) error {
	for _, t := range entity.DocumentTypes() {
		name := documents.SequenceName(t)
		cur, err := pg.Current(ctx, name)
		if err != nil {
			return fmt.Errorf("leer secuencia %s: %w", name, err)
		}
		if err := seq.Seed(ctx, name, cur); err != nil {
			return fmt.Errorf("sembrar secuencia %s en Redis: %w", name, err)
		}
	}
	return nil
}

// Close libera conexiones en orden inverso de apertura.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// AsynqRedisOpt opciones de conexión de asynq a partir de la configuración de Redis.
func AsynqRedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
}
