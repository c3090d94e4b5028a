package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockBalance representa el saldo actual de un producto en una bodega.
// Es una proyección materializada del ledger: Quantity = suma de los deltas del par.
// Existe a lo sumo una fila por (ProductID, WarehouseID).
type StockBalance struct {
	ID          string
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal // >= 0 en reposo
	ReservedQty decimal.Decimal // se registra pero el motor no lo consume
	Version     int64           // se incrementa en cada escritura
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StockPair identifica un saldo: producto en bodega.
type StockPair struct {
	ProductID   string
	WarehouseID string
}
