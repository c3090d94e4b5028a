package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de un documento.
// Validating marca un documento reclamado por una validación per_line en curso.
const (
	DocumentStatusDraft      = "Draft"
	DocumentStatusValidating = "Validating"
	DocumentStatusValidated  = "Validated"
)

// DocumentLine línea de un documento de stock.
// En Receipt/DeliveryOrder/Transfer Quantity es una magnitud positiva; en Adjustment lleva signo.
type DocumentLine struct {
	ID        string
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal // informativo (recepciones/entregas)
	Reason    string          // solo ajustes
}

// Document representa una recepción, orden de entrega, traslado o ajuste.
// WarehouseID es la bodega afectada (origen en traslados); ToWarehouseID solo aplica a traslados.
type Document struct {
	ID            string
	Number        string // REC-000001, DO-000001, TRF-000001, ADJ-000001
	Type          DocumentType
	Status        string
	WarehouseID   string
	ToWarehouseID string
	Partner       string // proveedor (recepción) o cliente (entrega)
	ScheduleDate  *time.Time
	Notes         string
	Lines         []DocumentLine
	CreatedBy     string
	ValidatedBy   string
	ValidatedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsDraft indica si el documento aún puede editarse.
func (d *Document) IsDraft() bool { return d.Status == DocumentStatusDraft }
