package redisseq

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.SequenceGenerator = (*Sequence)(nil)

// DefaultPrefix prefijo de las claves de secuencia.
const DefaultPrefix = "stock-ledger:seq:"

// Sequence numeración de documentos con INCR de Redis: compartida entre réplicas
// cuando el storage es memoria o cuando se quiere sacar la numeración de la base.
type Sequence struct {
	client redis.UniversalClient
	prefix string
}

// New construye el generador. prefix vacío usa DefaultPrefix.
func New(client redis.UniversalClient, prefix string) *Sequence {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Sequence{client: client, prefix: prefix}
}

// Next incrementa y devuelve la secuencia name.
func (s *Sequence) Next(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, domain.Invalid("sequence", "es requerido")
	}
	n, err := s.client.Incr(ctx, s.prefix+name).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", name, err)
	}
	return n, nil
}

// Seed fija el valor actual si es menor que min (p. ej. al migrar desde otra numeración).
func (s *Sequence) Seed(ctx context.Context, name string, min int64) error {
	key := s.prefix + name
	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, key).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if cur >= min {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, min, 0)
			return nil
		})
		return err
	}, key)
}
