package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas salvo decimal).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")

	// Errores del motor de stock.
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrInvalidTransfer     = errors.New("bodega origen y destino deben ser distintas")
	ErrNegativeStockResult = errors.New("el ajuste dejaría el stock en negativo")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia sobre el saldo")

	// Errores del ciclo de vida de documentos.
	ErrAlreadyValidated     = errors.New("el documento ya está validado")
	ErrValidationInProgress = errors.New("el documento se está validando")
)

// StockError detalla un rechazo del motor de stock con los datos necesarios para
// construir un mensaje accionable. errors.Is(err, ErrInsufficientStock) sigue funcionando
// porque Unwrap devuelve el error centinela.
type StockError struct {
	Kind        error
	ProductID   string
	WarehouseID string
	Available   decimal.Decimal
	Requested   decimal.Decimal
}

func (e *StockError) Error() string {
	switch e.Kind {
	case ErrNegativeStockResult:
		return fmt.Sprintf("%s: actual %s, ajuste %s (producto %s, bodega %s)",
			e.Kind, e.Available, e.Requested, e.ProductID, e.WarehouseID)
	default:
		return fmt.Sprintf("%s: disponible %s, solicitado %s (producto %s, bodega %s)",
			e.Kind, e.Available, e.Requested, e.ProductID, e.WarehouseID)
	}
}

func (e *StockError) Unwrap() error { return e.Kind }

// ValidationError indica una entrada mal formada; Field nombra el campo culpable.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// LineError envuelve el fallo de una línea de documento indicando su posición (base 0).
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("línea %d: %v", e.Line+1, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }
