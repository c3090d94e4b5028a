package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockAlert alerta de stock bajo para un producto en una bodega.
// A lo sumo una alerta activa (no resuelta) por par.
type StockAlert struct {
	ID            string
	ProductID     string
	WarehouseID   string
	CurrentStock  decimal.Decimal
	MinStockLevel decimal.Decimal
	AlertDate     time.Time
	IsResolved    bool
	ResolvedBy    string // vacío si la resolvió el chequeo automático
	ResolvedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
