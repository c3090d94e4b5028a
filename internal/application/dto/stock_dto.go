package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceResponse saldo de un producto en una bodega.
type BalanceResponse struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	ReservedQty decimal.Decimal `json:"reserved_qty"`
	Version     int64           `json:"version"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

// BalanceListResponse lista paginada de saldos.
type BalanceListResponse struct {
	Items []BalanceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// LedgerQuery parámetros de GET /api/ledger. From/To en RFC3339.
type LedgerQuery struct {
	ProductID    string `query:"product_id"`
	WarehouseID  string `query:"warehouse_id"`
	DocumentType string `query:"document_type" validate:"omitempty,oneof=Receipt DeliveryOrder Transfer Adjustment"`
	DocumentID   string `query:"document_id"`
	UserID       string `query:"user_id"`
	From         string `query:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To           string `query:"to" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Order        string `query:"order" validate:"omitempty,oneof=asc desc"`
	PageRequest
}

// LedgerEntryResponse asiento del libro de movimientos.
type LedgerEntryResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	WarehouseID   string          `json:"warehouse_id"`
	DocumentType  string          `json:"document_type"`
	DocumentID    string          `json:"document_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	UserID        string          `json:"user_id"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// LedgerListResponse lista paginada de asientos.
type LedgerListResponse struct {
	Items []LedgerEntryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// StockAlertResponse alerta de stock bajo.
type StockAlertResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	WarehouseID   string          `json:"warehouse_id"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
	AlertDate     time.Time       `json:"alert_date"`
	IsResolved    bool            `json:"is_resolved"`
	ResolvedBy    string          `json:"resolved_by,omitempty"`
	ResolvedAt    *time.Time      `json:"resolved_at,omitempty"`
}

// LowStockCheckResponse resumen de una corrida del chequeo de stock bajo.
type LowStockCheckResponse struct {
	Created  int `json:"created"`
	Updated  int `json:"updated"`
	Resolved int `json:"resolved"`
}

// DashboardResponse KPIs de GET /api/dashboard.
type DashboardResponse struct {
	TotalProducts      int             `json:"total_products"`
	LowStockCount      int             `json:"low_stock_count"`
	LowStockThreshold  decimal.Decimal `json:"low_stock_threshold"`
	ActiveAlerts       int             `json:"active_alerts"`
	PendingReceipts    int             `json:"pending_receipts"`
	PendingDeliveries  int             `json:"pending_deliveries"`
	PendingTransfers   int             `json:"pending_transfers"`
	PendingAdjustments int             `json:"pending_adjustments"`
}
