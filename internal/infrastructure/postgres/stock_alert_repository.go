package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockAlertRepository = (*StockAlertRepo)(nil)

// StockAlertRepo alertas de stock bajo. El índice único parcial
// (product_id, warehouse_id) WHERE NOT is_resolved garantiza una alerta activa por par.
type StockAlertRepo struct {
	q Querier
}

// NewStockAlertRepository construye el repositorio de alertas.
func NewStockAlertRepository(q Querier) *StockAlertRepo {
	return &StockAlertRepo{q: q}
}

const alertColumns = `id, product_id, warehouse_id, current_stock, min_stock_level, alert_date,
	is_resolved, COALESCE(resolved_by::text, ''), resolved_at, created_at, updated_at`

func scanAlert(row pgx.Row) (*entity.StockAlert, error) {
	var a entity.StockAlert
	err := row.Scan(&a.ID, &a.ProductID, &a.WarehouseID, &a.CurrentStock, &a.MinStockLevel, &a.AlertDate,
		&a.IsResolved, &a.ResolvedBy, &a.ResolvedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserta una alerta; ErrDuplicate si el par ya tiene una activa.
func (r *StockAlertRepo) Create(ctx context.Context, a *entity.StockAlert) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_alerts (id, product_id, warehouse_id, current_stock, min_stock_level, alert_date,
			is_resolved, resolved_by, resolved_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.ProductID, a.WarehouseID, a.CurrentStock, a.MinStockLevel, a.AlertDate,
		a.IsResolved, nullIfEmpty(a.ResolvedBy), a.ResolvedAt, a.CreatedAt, a.UpdatedAt,
	)
	return mapError("insert stock alert", err)
}

// Update persiste stock actual y estado de resolución.
func (r *StockAlertRepo) Update(ctx context.Context, a *entity.StockAlert) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_alerts
		SET current_stock = $2, min_stock_level = $3, alert_date = $4, is_resolved = $5,
			resolved_by = $6, resolved_at = $7, updated_at = $8
		WHERE id = $1`,
		a.ID, a.CurrentStock, a.MinStockLevel, a.AlertDate, a.IsResolved,
		nullIfEmpty(a.ResolvedBy), a.ResolvedAt, a.UpdatedAt,
	)
	if err != nil {
		return mapError("update stock alert", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene una alerta; nil si no existe.
func (r *StockAlertRepo) GetByID(ctx context.Context, id string) (*entity.StockAlert, error) {
	return r.findOne(ctx, "get stock alert", `id = $1`, id)
}

// GetActive devuelve la alerta no resuelta del par.
func (r *StockAlertRepo) GetActive(ctx context.Context, productID, warehouseID string) (*entity.StockAlert, error) {
	return r.findOne(ctx, "get active stock alert",
		`product_id = $1 AND warehouse_id = $2 AND NOT is_resolved`, productID, warehouseID)
}

func (r *StockAlertRepo) findOne(ctx context.Context, op, cond string, args ...any) (*entity.StockAlert, error) {
	a, err := scanAlert(r.q.QueryRow(ctx, `SELECT `+alertColumns+` FROM stock_alerts WHERE `+cond, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return a, nil
}

// ResolveActive cierra las alertas activas del par.
func (r *StockAlertRepo) ResolveActive(ctx context.Context, productID, warehouseID string, at time.Time) (int, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_alerts
		SET is_resolved = TRUE, resolved_at = $3, updated_at = $3
		WHERE product_id = $1 AND warehouse_id = $2 AND NOT is_resolved`,
		productID, warehouseID, at,
	)
	if err != nil {
		return 0, mapError("resolve stock alerts", err)
	}
	return int(tag.RowsAffected()), nil
}

// ListActive alertas abiertas, más recientes primero.
func (r *StockAlertRepo) ListActive(ctx context.Context) ([]*entity.StockAlert, error) {
	rows, err := r.q.Query(ctx, `SELECT `+alertColumns+` FROM stock_alerts WHERE NOT is_resolved ORDER BY alert_date DESC`)
	if err != nil {
		return nil, mapError("list stock alerts", err)
	}
	defer rows.Close()
	var list []*entity.StockAlert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock alert: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
