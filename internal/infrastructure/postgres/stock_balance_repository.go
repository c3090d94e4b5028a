package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockBalanceRepository = (*StockBalanceRepo)(nil)

// StockBalanceRepo implementación del Balance Store sobre la tabla stock_balances.
type StockBalanceRepo struct {
	q Querier
}

// NewStockBalanceRepository construye el repositorio sobre un pool o una tx.
func NewStockBalanceRepository(q Querier) *StockBalanceRepo {
	return &StockBalanceRepo{q: q}
}

const balanceColumns = `id, product_id, warehouse_id, quantity, reserved_qty, version, created_at, updated_at`

func scanBalance(row pgx.Row) (*entity.StockBalance, error) {
	var b entity.StockBalance
	err := row.Scan(&b.ID, &b.ProductID, &b.WarehouseID, &b.Quantity, &b.ReservedQty, &b.Version, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetOrCreate inserta la fila en cero si falta y la relee con FOR UPDATE.
// Dentro de una tx el bloqueo dura hasta el Commit; ON CONFLICT absorbe la carrera de creación.
func (r *StockBalanceRepo) GetOrCreate(ctx context.Context, productID, warehouseID string) (*entity.StockBalance, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_balances (id, product_id, warehouse_id, quantity, reserved_qty, version, created_at, updated_at)
		VALUES ($1, $2, $3, 0, 0, 0, NOW(), NOW())
		ON CONFLICT (product_id, warehouse_id) DO NOTHING`,
		uuid.New().String(), productID, warehouseID,
	)
	if err != nil {
		return nil, mapError("insert stock balance", err)
	}
	b, err := scanBalance(r.q.QueryRow(ctx, `
		SELECT `+balanceColumns+`
		FROM stock_balances
		WHERE product_id = $1 AND warehouse_id = $2
		FOR UPDATE`, productID, warehouseID))
	if err != nil {
		return nil, mapError("lock stock balance", err)
	}
	return b, nil
}

// Get obtiene el saldo sin bloquear; nil si el par no existe.
func (r *StockBalanceRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.StockBalance, error) {
	b, err := scanBalance(r.q.QueryRow(ctx, `
		SELECT `+balanceColumns+`
		FROM stock_balances
		WHERE product_id = $1 AND warehouse_id = $2`, productID, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get stock balance", err)
	}
	return b, nil
}

// Save escribe la cantidad con control optimista de versión.
func (r *StockBalanceRepo) Save(ctx context.Context, b *entity.StockBalance) error {
	var (
		version int64
		updated = b.UpdatedAt
	)
	err := r.q.QueryRow(ctx, `
		UPDATE stock_balances
		SET quantity = $1, reserved_qty = $2, version = version + 1, updated_at = NOW()
		WHERE product_id = $3 AND warehouse_id = $4 AND version = $5
		RETURNING version, updated_at`,
		b.Quantity, b.ReservedQty, b.ProductID, b.WarehouseID, b.Version,
	).Scan(&version, &updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrConcurrencyConflict
		}
		return mapError("update stock balance", err)
	}
	b.Version = version
	b.UpdatedAt = updated
	return nil
}

// List lista saldos por producto y bodega.
func (r *StockBalanceRepo) List(ctx context.Context, f repository.BalanceFilter) ([]*entity.StockBalance, error) {
	var (
		where []string
		args  []any
	)
	if f.ProductID != "" {
		args = append(args, f.ProductID)
		where = append(where, fmt.Sprintf("product_id = $%d", len(args)))
	}
	if f.WarehouseID != "" {
		args = append(args, f.WarehouseID)
		where = append(where, fmt.Sprintf("warehouse_id = $%d", len(args)))
	}
	query := `SELECT ` + balanceColumns + ` FROM stock_balances`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY product_id, warehouse_id`
	query += limitOffset(&args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list stock balances", err)
	}
	defer rows.Close()
	var list []*entity.StockBalance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock balance: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// CountAtOrBelow cuenta saldos con quantity <= threshold.
func (r *StockBalanceRepo) CountAtOrBelow(ctx context.Context, threshold decimal.Decimal) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_balances WHERE quantity <= $1`, threshold).Scan(&n)
	if err != nil {
		return 0, mapError("count low stock", err)
	}
	return n, nil
}

// limitOffset agrega LIMIT/OFFSET parametrizados cuando limit > 0.
func limitOffset(args *[]any, limit, offset int) string {
	if limit <= 0 {
		return ""
	}
	*args = append(*args, limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(*args)-1, len(*args))
}
