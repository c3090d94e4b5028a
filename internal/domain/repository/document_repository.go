package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// DocumentFilter filtros para listar documentos.
type DocumentFilter struct {
	Type        entity.DocumentType
	Status      string
	WarehouseID string // coincide con origen o destino
	Limit       int
	Offset      int
}

// DocumentRepository define el puerto de persistencia de documentos de stock.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	GetByID(ctx context.Context, id string) (*entity.Document, error)
	// GetForUpdate bloquea el documento dentro de la transacción (evita doble validación).
	GetForUpdate(ctx context.Context, id string) (*entity.Document, error)
	// Update reemplaza cabecera y líneas.
	Update(ctx context.Context, doc *entity.Document) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter DocumentFilter) ([]*entity.Document, error)
	CountByStatus(ctx context.Context, docType entity.DocumentType, status string) (int, error)
}
