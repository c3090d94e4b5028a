package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentLineRequest línea de un documento.
// En ajustes Quantity lleva signo; en los demás tipos debe ser >= 0.
type DocumentLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Reason    string          `json:"reason" validate:"max=200"`
}

// CreateDocumentRequest body para POST /api/{receipts,delivery-orders,transfers,adjustments}.
// ToWarehouseID solo aplica a traslados.
type CreateDocumentRequest struct {
	WarehouseID   string                `json:"warehouse_id" validate:"required"`
	ToWarehouseID string                `json:"to_warehouse_id"`
	Partner       string                `json:"partner" validate:"max=200"`
	ScheduleDate  *time.Time            `json:"schedule_date"`
	Notes         string                `json:"notes" validate:"max=1000"`
	Lines         []DocumentLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// UpdateDocumentRequest body para PUT (solo Draft). Campos nil no se modifican.
type UpdateDocumentRequest struct {
	WarehouseID   *string               `json:"warehouse_id" validate:"omitempty,min=1"`
	ToWarehouseID *string               `json:"to_warehouse_id"`
	Partner       *string               `json:"partner" validate:"omitempty,max=200"`
	ScheduleDate  *time.Time            `json:"schedule_date"`
	Notes         *string               `json:"notes" validate:"omitempty,max=1000"`
	Lines         []DocumentLineRequest `json:"lines" validate:"omitempty,min=1,dive"`
}

// DocumentLineResponse línea en la salida.
type DocumentLineResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Reason    string          `json:"reason,omitempty"`
}

// DocumentResponse salida de un documento.
type DocumentResponse struct {
	ID            string                 `json:"id"`
	Number        string                 `json:"number"`
	Type          string                 `json:"type"`
	Status        string                 `json:"status"`
	WarehouseID   string                 `json:"warehouse_id"`
	ToWarehouseID string                 `json:"to_warehouse_id,omitempty"`
	Partner       string                 `json:"partner,omitempty"`
	ScheduleDate  *time.Time             `json:"schedule_date,omitempty"`
	Notes         string                 `json:"notes,omitempty"`
	Lines         []DocumentLineResponse `json:"lines"`
	CreatedBy     string                 `json:"created_by"`
	ValidatedBy   string                 `json:"validated_by,omitempty"`
	ValidatedAt   *time.Time             `json:"validated_at,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
	// Movements asientos generados por la validación (solo en la respuesta de validate).
	Movements []LedgerEntryResponse `json:"movements,omitempty"`
}

// DocumentListResponse lista paginada de documentos.
type DocumentListResponse struct {
	Items []DocumentResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// DocumentListQuery parámetros de listado de documentos.
type DocumentListQuery struct {
	Status      string `query:"status" validate:"omitempty,oneof=Draft Validating Validated"`
	WarehouseID string `query:"warehouse_id"`
	PageRequest
}
