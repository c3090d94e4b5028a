package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/documents"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// DocumentHandler CRUD + validación de un tipo de documento (recepciones, entregas, traslados o ajustes).
// Se instancia una vez por tipo y se monta bajo su propio prefijo.
type DocumentHandler struct {
	uc      *documents.UseCase
	docType entity.DocumentType
}

// NewDocumentHandler construye el handler para docType.
func NewDocumentHandler(uc *documents.UseCase, docType entity.DocumentType) *DocumentHandler {
	return &DocumentHandler{uc: uc, docType: docType}
}

// Create godoc
// @Summary      Crear documento en Draft
// @Description  Asigna número (REC-, DO-, TRF-, ADJ-) y valida que bodegas y productos existan.
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        kind  path  string  true  "receipts | delivery-orders | transfers | adjustments"
// @Param        body  body  dto.CreateDocumentRequest  true  "cabecera + líneas"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/{kind} [post]
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDocumentRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.Context(), h.docType, GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar documentos
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        kind          path   string  true   "receipts | delivery-orders | transfers | adjustments"
// @Param        status        query  string  false  "Draft | Validating | Validated"
// @Param        warehouse_id  query  string  false  "origen o destino"
// @Param        limit         query  int     false  "default 50"
// @Param        offset        query  int     false  "default 0"
// @Success      200  {object}  dto.DocumentListResponse
// @Router       /api/{kind} [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	var q dto.DocumentListQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	out, err := h.uc.List(c.Context(), h.docType, q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener documento
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        kind  path  string  true  "receipts | delivery-orders | transfers | adjustments"
// @Param        id    path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/{kind}/{id} [get]
func (h *DocumentHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), h.docType, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Modificar documento (solo Draft)
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        kind  path  string  true  "receipts | delivery-orders | transfers | adjustments"
// @Param        id    path  string  true  "ID del documento"
// @Param        body  body  dto.UpdateDocumentRequest  true  "campos a modificar"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/{kind}/{id} [put]
func (h *DocumentHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateDocumentRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Update(c.Context(), h.docType, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar documento (solo Draft)
// @Tags         documents
// @Security     Bearer
// @Param        kind  path  string  true  "receipts | delivery-orders | transfers | adjustments"
// @Param        id    path  string  true  "ID del documento"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/{kind}/{id} [delete]
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), h.docType, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Validate godoc
// @Summary      Validar documento
// @Description  Aplica las líneas al stock a través del motor y marca el documento como Validated.
// @Description  Solo manager. Stock insuficiente responde 409 con disponible/solicitado en details.
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        kind  path  string  true  "receipts | delivery-orders | transfers | adjustments"
// @Param        id    path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/{kind}/{id}/validate [post]
func (h *DocumentHandler) Validate(c *fiber.Ctx) error {
	out, err := h.uc.Validate(c.Context(), h.docType, c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
