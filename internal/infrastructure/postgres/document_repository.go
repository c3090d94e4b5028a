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

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo documentos de stock (cabecera en documents, líneas en document_lines).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el repositorio de documentos.
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

const documentColumns = `id, number, type, status, warehouse_id, COALESCE(to_warehouse_id::text, ''),
	COALESCE(partner, ''), schedule_date, COALESCE(notes, ''), COALESCE(created_by::text, ''),
	COALESCE(validated_by::text, ''), validated_at, created_at, updated_at`

func scanDocument(row pgx.Row) (*entity.Document, error) {
	var (
		d       entity.Document
		docType string
	)
	err := row.Scan(&d.ID, &d.Number, &docType, &d.Status, &d.WarehouseID, &d.ToWarehouseID,
		&d.Partner, &d.ScheduleDate, &d.Notes, &d.CreatedBy,
		&d.ValidatedBy, &d.ValidatedAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.Type = entity.DocumentType(docType)
	return &d, nil
}

// Create inserta cabecera y líneas en una misma (sub)transacción.
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	return r.inTx(ctx, "create document", func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO documents (id, number, type, status, warehouse_id, to_warehouse_id, partner,
				schedule_date, notes, created_by, validated_by, validated_at, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			doc.ID, doc.Number, string(doc.Type), doc.Status, doc.WarehouseID, nullIfEmpty(doc.ToWarehouseID),
			nullIfEmpty(doc.Partner), doc.ScheduleDate, nullIfEmpty(doc.Notes), nullIfEmpty(doc.CreatedBy),
			nullIfEmpty(doc.ValidatedBy), doc.ValidatedAt, doc.CreatedAt, doc.UpdatedAt,
		)
		if err != nil {
			return err
		}
		return insertLines(ctx, tx, doc)
	})
}

// GetByID obtiene el documento con sus líneas; nil si no existe.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate bloquea la cabecera: una segunda validación concurrente espera y luego ve Validated.
func (r *DocumentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Document, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *DocumentRepo) get(ctx context.Context, id, lock string) (*entity.Document, error) {
	d, err := scanDocument(r.q.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`+lock, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get document", err)
	}
	if err := r.attachLines(ctx, []*entity.Document{d}); err != nil {
		return nil, err
	}
	return d, nil
}

// Update reemplaza la cabecera y todas las líneas.
func (r *DocumentRepo) Update(ctx context.Context, doc *entity.Document) error {
	return r.inTx(ctx, "update document", func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE documents
			SET status = $2, warehouse_id = $3, to_warehouse_id = $4, partner = $5, schedule_date = $6,
				notes = $7, validated_by = $8, validated_at = $9, updated_at = $10
			WHERE id = $1`,
			doc.ID, doc.Status, doc.WarehouseID, nullIfEmpty(doc.ToWarehouseID), nullIfEmpty(doc.Partner),
			doc.ScheduleDate, nullIfEmpty(doc.Notes), nullIfEmpty(doc.ValidatedBy), doc.ValidatedAt, doc.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM document_lines WHERE document_id = $1`, doc.ID); err != nil {
			return err
		}
		return insertLines(ctx, tx, doc)
	})
}

// Delete elimina el documento; las líneas caen por ON DELETE CASCADE.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return mapError("delete document", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List devuelve los documentos más recientes primero.
func (r *DocumentRepo) List(ctx context.Context, f repository.DocumentFilter) ([]*entity.Document, error) {
	var (
		where []string
		args  []any
	)
	if f.Type != "" {
		args = append(args, string(f.Type))
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.WarehouseID != "" {
		args = append(args, f.WarehouseID)
		where = append(where, fmt.Sprintf("(warehouse_id = $%d OR to_warehouse_id = $%d)", len(args), len(args)))
	}
	query := `SELECT ` + documentColumns + ` FROM documents`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, number DESC` + limitOffset(&args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list documents", err)
	}
	var list []*entity.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan document: %w", err)
		}
		list = append(list, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// CountByStatus cuenta documentos de un tipo en un estado (KPIs de pendientes).
func (r *DocumentRepo) CountByStatus(ctx context.Context, docType entity.DocumentType, status string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM documents WHERE type = $1 AND status = $2`,
		string(docType), status).Scan(&n)
	if err != nil {
		return 0, mapError("count documents", err)
	}
	return n, nil
}

// attachLines carga las líneas de varios documentos en una sola consulta.
func (r *DocumentRepo) attachLines(ctx context.Context, docs []*entity.Document) error {
	if len(docs) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Document, len(docs))
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
		ids = append(ids, d.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, document_id::text, product_id, quantity, unit_price, COALESCE(reason, '')
		FROM document_lines
		WHERE document_id::text = ANY($1)
		ORDER BY document_id, line_no`, ids)
	if err != nil {
		return mapError("list document lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			l     entity.DocumentLine
			docID string
		)
		if err := rows.Scan(&l.ID, &docID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.Reason); err != nil {
			return fmt.Errorf("scan document line: %w", err)
		}
		if d := byID[docID]; d != nil {
			d.Lines = append(d.Lines, l)
		}
	}
	return rows.Err()
}

// inTx abre una tx (o savepoint si q ya es una tx) para escrituras de varias sentencias.
func (r *DocumentRepo) inTx(ctx context.Context, op string, fn func(tx pgx.Tx) error) error {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return mapError(op, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := fn(tx); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return mapError(op, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError(op, err)
	}
	return nil
}

func insertLines(ctx context.Context, tx pgx.Tx, doc *entity.Document) error {
	if len(doc.Lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, l := range doc.Lines {
		batch.Queue(`
			INSERT INTO document_lines (id, document_id, line_no, product_id, quantity, unit_price, reason)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			l.ID, doc.ID, i+1, l.ProductID, l.Quantity, l.UnitPrice, nullIfEmpty(l.Reason),
		)
	}
	return tx.SendBatch(ctx, batch).Close()
}
