package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// stockErrorDetails datos estructurados de un error de stock para el cliente.
type stockErrorDetails struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Available   string `json:"available"`
	Requested   string `json:"requested"`
	Line        *int   `json:"line,omitempty"`
}

// writeError traduce errores de dominio a status + dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	status, body := errorResponse(err)
	return c.Status(status).JSON(body)
}

func errorResponse(err error) (int, dto.ErrorResponse) {
	var (
		stockErr *domain.StockError
		lineErr  *domain.LineError
		valErr   *domain.ValidationError
	)
	var line *int
	if errors.As(err, &lineErr) {
		n := lineErr.Line
		line = &n
	}

	switch {
	case errors.As(err, &stockErr):
		details := stockErrorDetails{
			ProductID:   stockErr.ProductID,
			WarehouseID: stockErr.WarehouseID,
			Available:   stockErr.Available.String(),
			Requested:   stockErr.Requested.String(),
			Line:        line,
		}
		if errors.Is(err, domain.ErrInsufficientStock) {
			return fiber.StatusConflict, dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error(), Details: details}
		}
		return fiber.StatusUnprocessableEntity, dto.ErrorResponse{Code: "NEGATIVE_STOCK_RESULT", Message: err.Error(), Details: details}
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()}
	case errors.Is(err, domain.ErrNegativeStockResult):
		return fiber.StatusUnprocessableEntity, dto.ErrorResponse{Code: "NEGATIVE_STOCK_RESULT", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidTransfer):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_TRANSFER", Message: err.Error()}
	case errors.As(err, &valErr):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error(),
			Details: fiber.Map{"field": valErr.Field, "reason": valErr.Reason, "line": line}}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: "cuenta inactiva o acceso denegado"}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "EMAIL_EXISTS", Message: "el email ya está registrado"}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()}
	case errors.Is(err, domain.ErrAlreadyValidated):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "ALREADY_VALIDATED", Message: err.Error()}
	case errors.Is(err, domain.ErrValidationInProgress):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "VALIDATION_IN_PROGRESS", Message: err.Error()}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()}
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONCURRENCY_CONFLICT", Message: "el saldo cambió durante la operación, reintente"}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()}
}
