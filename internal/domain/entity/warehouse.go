package entity

import "time"

// Warehouse representa una bodega donde se almacena inventario (multi-bodega).
type Warehouse struct {
	ID        string
	Name      string
	Code      string // único, en mayúsculas
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
