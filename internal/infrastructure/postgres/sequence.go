package postgres

import (
	"context"
	"regexp"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.SequenceGenerator = (*Sequence)(nil)

var validSequenceName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Sequence numeración de documentos con secuencias nativas (nextval no participa del rollback).
type Sequence struct {
	q Querier
}

// NewSequence construye el generador sobre el pool.
func NewSequence(q Querier) *Sequence {
	return &Sequence{q: q}
}

// Next devuelve el siguiente valor de la secuencia name.
func (s *Sequence) Next(ctx context.Context, name string) (int64, error) {
	if !validSequenceName.MatchString(name) {
		return 0, domain.Invalid("sequence", "nombre inválido")
	}
	var n int64
	if err := s.q.QueryRow(ctx, `SELECT nextval($1::regclass)`, name).Scan(&n); err != nil {
		return 0, mapError("nextval "+name, err)
	}
	return n, nil
}

// Current último valor entregado por la secuencia (0 si nunca se usó). No la avanza.
func (s *Sequence) Current(ctx context.Context, name string) (int64, error) {
	if !validSequenceName.MatchString(name) {
		return 0, domain.Invalid("sequence", "nombre inválido")
	}
	var n int64
	// name ya validado: los identificadores no admiten parámetros.
	err := s.q.QueryRow(ctx, `SELECT CASE WHEN is_called THEN last_value ELSE 0 END FROM `+name).Scan(&n)
	if err != nil {
		return 0, mapError("last_value "+name, err)
	}
	return n, nil
}
