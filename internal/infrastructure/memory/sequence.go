package memory

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.SequenceGenerator = (*Sequence)(nil)

// Sequence contador por nombre protegido por el mutex del store.
type Sequence struct{ s *Store }

// Sequence devuelve el generador de números de documento.
func (s *Store) Sequence() *Sequence { return &Sequence{s: s} }

func (q *Sequence) Next(ctx context.Context, name string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	q.s.sequences[name]++
	return q.s.sequences[name], nil
}
