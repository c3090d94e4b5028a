package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockAlertRepository define el puerto de persistencia para alertas de stock bajo.
type StockAlertRepository interface {
	Create(ctx context.Context, alert *entity.StockAlert) error
	Update(ctx context.Context, alert *entity.StockAlert) error
	GetByID(ctx context.Context, id string) (*entity.StockAlert, error)
	// GetActive devuelve la alerta no resuelta del par o nil.
	GetActive(ctx context.Context, productID, warehouseID string) (*entity.StockAlert, error)
	// ResolveActive marca como resueltas las alertas activas del par; devuelve cuántas.
	ResolveActive(ctx context.Context, productID, warehouseID string, at time.Time) (int, error)
	ListActive(ctx context.Context) ([]*entity.StockAlert, error)
}
