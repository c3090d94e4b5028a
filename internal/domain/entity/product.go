package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del inventario.
// El stock se maneja por bodega en StockBalance; MinStockLevel alimenta las alertas.
type Product struct {
	ID            string
	SKU           string // único, en mayúsculas
	Name          string
	Category      string
	Unit          string // pcs, kg, ...
	MinStockLevel decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
