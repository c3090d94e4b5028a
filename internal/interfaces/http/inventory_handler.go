package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// InventoryHandler consultas de saldos y del libro de movimientos (protegido).
type InventoryHandler struct {
	queries *inventory.StockQueryUseCase
	reports *inventory.ReportUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(queries *inventory.StockQueryUseCase, reports *inventory.ReportUseCase) *InventoryHandler {
	return &InventoryHandler{queries: queries, reports: reports}
}

// GetBalance godoc
// @Summary      Saldo de un producto en una bodega
// @Description  Un par sin movimientos devuelve cantidad 0.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id    path  string  true  "ID del producto"
// @Param        warehouse_id  path  string  true  "ID de la bodega"
// @Success      200  {object}  dto.BalanceResponse
// @Router       /api/stock/balances/{product_id}/{warehouse_id} [get]
func (h *InventoryHandler) GetBalance(c *fiber.Ctx) error {
	b, err := h.queries.GetBalance(c.Context(), c.Params("product_id"), c.Params("warehouse_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toBalanceResponse(b))
}

// ListBalances godoc
// @Summary      Listar saldos
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "filtrar por producto"
// @Param        warehouse_id  query  string  false  "filtrar por bodega"
// @Param        limit         query  int     false  "default 50"
// @Param        offset        query  int     false  "default 0"
// @Success      200  {object}  dto.BalanceListResponse
// @Router       /api/stock/balances [get]
func (h *InventoryHandler) ListBalances(c *fiber.Ctx) error {
	var page dto.PageRequest
	if ok, err := bindQuery(c, &page); !ok {
		return err
	}
	page.DefaultPage()
	list, err := h.queries.ListBalances(c.Context(), repository.BalanceFilter{
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
		Limit:       page.Limit,
		Offset:      page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.BalanceResponse, 0, len(list))
	for _, b := range list {
		items = append(items, toBalanceResponse(b))
	}
	return c.JSON(dto.BalanceListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}})
}

// ListLedger godoc
// @Summary      Libro de movimientos
// @Description  Más recientes primero (order=asc para orden cronológico).
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        product_id     query  string  false  "producto"
// @Param        warehouse_id   query  string  false  "bodega"
// @Param        document_type  query  string  false  "Receipt | DeliveryOrder | Transfer | Adjustment"
// @Param        document_id    query  string  false  "documento origen"
// @Param        user_id        query  string  false  "usuario"
// @Param        from           query  string  false  "RFC3339"
// @Param        to             query  string  false  "RFC3339"
// @Param        order          query  string  false  "asc | desc"
// @Param        limit          query  int     false  "default 50, máx 500"
// @Param        offset         query  int     false  "default 0"
// @Success      200  {object}  dto.LedgerListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/ledger [get]
func (h *InventoryHandler) ListLedger(c *fiber.Ctx) error {
	var q dto.LedgerQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	filter := repository.LedgerFilter{
		ProductID:    q.ProductID,
		WarehouseID:  q.WarehouseID,
		DocumentType: entity.DocumentType(q.DocumentType),
		DocumentID:   q.DocumentID,
		UserID:       q.UserID,
		From:         parseTime(q.From),
		To:           parseTime(q.To),
		Ascending:    q.Order == "asc",
		Limit:        q.Limit,
		Offset:       q.Offset,
	}
	entries, total, err := h.queries.ListLedger(c.Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, ToLedgerEntryResponse(e))
	}
	q.DefaultPage()
	return c.JSON(dto.LedgerListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	})
}

// GetLedgerEntry godoc
// @Summary      Obtener asiento
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del asiento"
// @Success      200  {object}  dto.LedgerEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ledger/{id} [get]
func (h *InventoryHandler) GetLedgerEntry(c *fiber.Ctx) error {
	e, err := h.queries.GetLedgerEntry(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(ToLedgerEntryResponse(e))
}

// StockCardPDF godoc
// @Summary      Kardex en PDF
// @Tags         ledger
// @Security     Bearer
// @Produce      application/pdf
// @Param        product_id    query  string  true   "producto"
// @Param        warehouse_id  query  string  false  "bodega (vacío = todas)"
// @Param        from          query  string  false  "RFC3339"
// @Param        to            query  string  false  "RFC3339"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ledger/report.pdf [get]
func (h *InventoryHandler) StockCardPDF(c *fiber.Ctx) error {
	var q dto.LedgerQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	out, err := h.reports.StockCardPDF(c.Context(), q.ProductID, q.WarehouseID, parseTime(q.From), parseTime(q.To))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="kardex.pdf"`)
	return c.Send(out)
}

// parseTime ya validado por el tag datetime; vacío = sin filtro.
func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

func toBalanceResponse(b *entity.StockBalance) dto.BalanceResponse {
	out := dto.BalanceResponse{
		ProductID:   b.ProductID,
		WarehouseID: b.WarehouseID,
		Quantity:    b.Quantity,
		ReservedQty: b.ReservedQty,
		Version:     b.Version,
	}
	if !b.UpdatedAt.IsZero() {
		t := b.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

// ToLedgerEntryResponse mapea un asiento a su DTO.
func ToLedgerEntryResponse(e *entity.LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:            e.ID,
		ProductID:     e.ProductID,
		WarehouseID:   e.WarehouseID,
		DocumentType:  string(e.DocumentType),
		DocumentID:    e.DocumentID,
		Quantity:      e.Quantity,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		UserID:        e.UserID,
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt,
	}
}
