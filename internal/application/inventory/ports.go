package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando la unidad de trabajo
// con los repositorios atados a esa tx. Commit si fn devuelve nil, Rollback en cualquier otro caso
// (incluido panic o cancelación del contexto).
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error
}

// StockCardReport datos de la tarjeta de kardex de un producto (opcionalmente en una bodega).
type StockCardReport struct {
	Product     *entity.Product
	Warehouse   *entity.Warehouse // nil = todas las bodegas
	From, To    *time.Time
	Entries     []*entity.LedgerEntry
	GeneratedAt time.Time
}

// StockCardRenderer genera la representación imprimible del kardex (PDF).
type StockCardRenderer interface {
	RenderStockCard(ctx context.Context, report StockCardReport) ([]byte, error)
}
