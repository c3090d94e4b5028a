package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo libro de movimientos sobre ledger_entries.
// La tabla tiene un trigger que rechaza UPDATE y DELETE.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el repositorio del ledger.
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

const ledgerColumns = `id, product_id, warehouse_id, document_type, document_id, quantity,
	balance_before, balance_after, COALESCE(user_id::text, ''), COALESCE(notes, ''), created_at`

func scanEntry(row pgx.Row) (*entity.LedgerEntry, error) {
	var (
		e       entity.LedgerEntry
		docType string
	)
	err := row.Scan(&e.ID, &e.ProductID, &e.WarehouseID, &docType, &e.DocumentID, &e.Quantity,
		&e.BalanceBefore, &e.BalanceAfter, &e.UserID, &e.Notes, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.DocumentType = entity.DocumentType(docType)
	return &e, nil
}

// Append inserta un asiento. El CHECK de la tabla repite la invariante before + qty = after.
func (r *LedgerRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	if e.ID == "" {
		return domain.Invalid("id", "es requerido")
	}
	if !e.Consistent() {
		return domain.Invalid("balance_after", "no coincide con balance_before + quantity")
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO ledger_entries (id, product_id, warehouse_id, document_type, document_id, quantity,
			balance_before, balance_after, user_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.ProductID, e.WarehouseID, string(e.DocumentType), e.DocumentID, e.Quantity,
		e.BalanceBefore, e.BalanceAfter, nullIfEmpty(e.UserID), nullIfEmpty(e.Notes), e.CreatedAt,
	)
	if err != nil {
		return mapError("insert ledger entry", err)
	}
	return nil
}

// GetByID obtiene un asiento por ID; nil si no existe.
func (r *LedgerRepo) GetByID(ctx context.Context, id string) (*entity.LedgerEntry, error) {
	e, err := scanEntry(r.q.QueryRow(ctx, `SELECT `+ledgerColumns+` FROM ledger_entries WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get ledger entry", err)
	}
	return e, nil
}

// List filtra, ordena por (created_at, seq) y pagina; el total ignora la paginación.
func (r *LedgerRepo) List(ctx context.Context, f repository.LedgerFilter) ([]*entity.LedgerEntry, int, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.WarehouseID != "" {
		add("warehouse_id = $%d", f.WarehouseID)
	}
	if f.DocumentType != "" {
		add("document_type = $%d", string(f.DocumentType))
	}
	if f.DocumentID != "" {
		add("document_id = $%d", f.DocumentID)
	}
	if f.UserID != "" {
		add("user_id::text = $%d", f.UserID)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM ledger_entries`+cond, args...).Scan(&total); err != nil {
		return nil, 0, mapError("count ledger entries", err)
	}

	order := " ORDER BY created_at DESC, seq DESC"
	if f.Ascending {
		order = " ORDER BY created_at ASC, seq ASC"
	}
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries` + cond + order + limitOffset(&args, f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError("list ledger entries", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
