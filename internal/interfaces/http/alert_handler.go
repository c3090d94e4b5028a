package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/alerts"
)

// AlertHandler alertas de stock bajo.
type AlertHandler struct {
	svc *alerts.Service
}

// NewAlertHandler construye el handler.
func NewAlertHandler(svc *alerts.Service) *AlertHandler {
	return &AlertHandler{svc: svc}
}

// ListActive godoc
// @Summary      Alertas activas
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StockAlertResponse
// @Router       /api/stock-alerts/active [get]
func (h *AlertHandler) ListActive(c *fiber.Ctx) error {
	out, err := h.svc.ListActive(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Check godoc
// @Summary      Ejecutar chequeo de stock bajo
// @Description  Recorre todos los saldos: crea, actualiza o resuelve alertas. Solo manager.
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.LowStockCheckResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/stock-alerts/check [post]
func (h *AlertHandler) Check(c *fiber.Ctx) error {
	out, err := h.svc.CheckLowStock(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Resolve godoc
// @Summary      Resolver alerta
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la alerta"
// @Success      200  {object}  dto.StockAlertResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock-alerts/{id}/resolve [put]
func (h *AlertHandler) Resolve(c *fiber.Ctx) error {
	out, err := h.svc.Resolve(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
