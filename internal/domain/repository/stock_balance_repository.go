package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// BalanceFilter filtros para listar saldos. Campos vacíos no filtran.
type BalanceFilter struct {
	ProductID   string
	WarehouseID string
	Limit       int
	Offset      int
}

// StockBalanceRepository define el puerto del Balance Store.
// Dentro de una transacción GetOrCreate bloquea la fila hasta el Commit/Rollback.
type StockBalanceRepository interface {
	// GetOrCreate devuelve el saldo del par; si no existe lo crea con cantidad 0.
	// Llamarlo dos veces en la misma transacción no crea duplicados.
	GetOrCreate(ctx context.Context, productID, warehouseID string) (*entity.StockBalance, error)
	// Get devuelve nil si el par nunca tuvo movimientos.
	Get(ctx context.Context, productID, warehouseID string) (*entity.StockBalance, error)
	// Save persiste Quantity si Version coincide con la almacenada; incrementa Version.
	// Devuelve domain.ErrConcurrencyConflict si otro escritor ganó la carrera.
	Save(ctx context.Context, balance *entity.StockBalance) error
	List(ctx context.Context, filter BalanceFilter) ([]*entity.StockBalance, error)
	// CountAtOrBelow cuenta los saldos con cantidad <= threshold (KPI de stock bajo).
	CountAtOrBelow(ctx context.Context, threshold decimal.Decimal) (int, error)
}
