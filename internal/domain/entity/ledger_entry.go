package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType tipo de documento que origina un movimiento de stock.
type DocumentType string

// Tipos de documento.
const (
	DocumentTypeReceipt       DocumentType = "Receipt"
	DocumentTypeDeliveryOrder DocumentType = "DeliveryOrder"
	DocumentTypeTransfer      DocumentType = "Transfer"
	DocumentTypeAdjustment    DocumentType = "Adjustment"
)

// DocumentTypes todos los tipos conocidos.
func DocumentTypes() []DocumentType {
	return []DocumentType{DocumentTypeReceipt, DocumentTypeDeliveryOrder, DocumentTypeTransfer, DocumentTypeAdjustment}
}

// Valid indica si el tipo pertenece al catálogo conocido.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentTypeReceipt, DocumentTypeDeliveryOrder, DocumentTypeTransfer, DocumentTypeAdjustment:
		return true
	}
	return false
}

// LedgerEntry registra una transición de saldo causada por una línea de documento.
// Inmutable: nunca se actualiza ni se elimina. BalanceAfter = BalanceBefore + Quantity.
type LedgerEntry struct {
	ID            string
	ProductID     string
	WarehouseID   string
	DocumentType  DocumentType
	DocumentID    string
	Quantity      decimal.Decimal // delta con signo: positivo entrada, negativo salida
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	UserID        string
	Notes         string
	CreatedAt     time.Time
}

// Consistent verifica la invariante de la transición.
func (e *LedgerEntry) Consistent() bool {
	return e.BalanceBefore.Add(e.Quantity).Equal(e.BalanceAfter)
}
