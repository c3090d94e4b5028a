package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// LedgerFilter filtros del libro de movimientos. Campos vacíos/nil no filtran.
type LedgerFilter struct {
	ProductID    string
	WarehouseID  string
	DocumentType entity.DocumentType
	DocumentID   string
	UserID       string
	From         *time.Time
	To           *time.Time
	Ascending    bool // por defecto más recientes primero
	Limit        int
	Offset       int
}

// LedgerRepository define el puerto del libro de movimientos (append-only).
// No existen Update ni Delete.
type LedgerRepository interface {
	Append(ctx context.Context, entry *entity.LedgerEntry) error
	GetByID(ctx context.Context, id string) (*entity.LedgerEntry, error)
	// List devuelve la página pedida y el total de entradas que cumplen el filtro.
	List(ctx context.Context, filter LedgerFilter) ([]*entity.LedgerEntry, int, error)
}
