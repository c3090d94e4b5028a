package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// QuantityScale decimales que persisten las columnas NUMERIC(18, 4) de saldos y asientos.
const QuantityScale int32 = 4

// CheckScale rechaza cantidades que el almacenamiento redondearía.
// Los ceros a la derecha no cuentan: 1.50000 es válido.
func CheckScale(q decimal.Decimal) error {
	if !q.Equal(q.Truncate(QuantityScale)) {
		return domain.Invalid("quantity", fmt.Sprintf("admite como máximo %d decimales", QuantityScale))
	}
	return nil
}

// ApplyDelta calcula el nuevo saldo de una transición (servicio de dominio).
// NuevoSaldo = SaldoActual + Delta; si el resultado es negativo devuelve un *domain.StockError
// de tipo kind (ErrInsufficientStock o ErrNegativeStockResult) sin tocar nada.
func ApplyDelta(productID, warehouseID string, before, delta decimal.Decimal, kind error) (decimal.Decimal, error) {
	after := before.Add(delta)
	if after.IsNegative() {
		requested := delta
		if kind == domain.ErrInsufficientStock {
			requested = delta.Neg()
		}
		return before, &domain.StockError{
			Kind:        kind,
			ProductID:   productID,
			WarehouseID: warehouseID,
			Available:   before,
			Requested:   requested,
		}
	}
	return after, nil
}
