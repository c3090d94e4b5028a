package repository

import "context"

// SequenceGenerator entrega números monótonos por nombre de secuencia.
// Implementaciones: secuencia PostgreSQL, INCR de Redis o contador atómico en memoria.
type SequenceGenerator interface {
	Next(ctx context.Context, name string) (int64, error)
}
