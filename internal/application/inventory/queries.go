package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// StockQueryUseCase lado de lectura: saldos y libro de movimientos.
type StockQueryUseCase struct {
	balances repository.StockBalanceRepository
	ledger   repository.LedgerRepository
}

// NewStockQueryUseCase construye el caso de uso con repos fuera de transacción.
func NewStockQueryUseCase(balances repository.StockBalanceRepository, ledger repository.LedgerRepository) *StockQueryUseCase {
	return &StockQueryUseCase{balances: balances, ledger: ledger}
}

// GetBalance devuelve el saldo del par. Un par sin movimientos se reporta en cero (sin crear fila).
func (uc *StockQueryUseCase) GetBalance(ctx context.Context, productID, warehouseID string) (*entity.StockBalance, error) {
	if productID == "" {
		return nil, domain.Invalid("product_id", "es requerido")
	}
	if warehouseID == "" {
		return nil, domain.Invalid("warehouse_id", "es requerido")
	}
	b, err := uc.balances.Get(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return &entity.StockBalance{
			ProductID:   productID,
			WarehouseID: warehouseID,
			Quantity:    decimal.Zero,
			ReservedQty: decimal.Zero,
		}, nil
	}
	return b, nil
}

// ListBalances lista saldos filtrando por producto y/o bodega.
func (uc *StockQueryUseCase) ListBalances(ctx context.Context, filter repository.BalanceFilter) ([]*entity.StockBalance, error) {
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)
	return uc.balances.List(ctx, filter)
}

// ListLedger consulta el libro; por defecto del más reciente al más antiguo.
func (uc *StockQueryUseCase) ListLedger(ctx context.Context, filter repository.LedgerFilter) ([]*entity.LedgerEntry, int, error) {
	if filter.DocumentType != "" && !filter.DocumentType.Valid() {
		return nil, 0, domain.Invalid("document_type", "no es válido")
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, 0, domain.Invalid("to", "debe ser posterior a from")
	}
	filter.Limit, filter.Offset = normalizePage(filter.Limit, filter.Offset)
	return uc.ledger.List(ctx, filter)
}

// GetLedgerEntry obtiene un asiento por ID.
func (uc *StockQueryUseCase) GetLedgerEntry(ctx context.Context, id string) (*entity.LedgerEntry, error) {
	e, err := uc.ledger.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

// StockCard devuelve todos los asientos de un par en orden cronológico (kárdex).
func (uc *StockQueryUseCase) StockCard(ctx context.Context, productID, warehouseID string, from, to *time.Time) ([]*entity.LedgerEntry, error) {
	if productID == "" {
		return nil, domain.Invalid("product_id", "es requerido")
	}
	entries, _, err := uc.ledger.List(ctx, repository.LedgerFilter{
		ProductID:   productID,
		WarehouseID: warehouseID,
		From:        from,
		To:          to,
		Ascending:   true,
	})
	return entries, err
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
