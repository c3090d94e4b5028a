package documents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	stock "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ValidationMode define la unidad de atomicidad al validar documentos multi-línea.
type ValidationMode string

const (
	// ValidationAtomic: todas las líneas y el cambio de estado en una sola transacción.
	ValidationAtomic ValidationMode = "atomic"
	// ValidationPerLine: cada línea es su propia transacción; un fallo deja las anteriores aplicadas.
	ValidationPerLine ValidationMode = "per_line"
)

// ParseValidationMode interpreta STOCK_VALIDATION_MODE (vacío = atomic).
func ParseValidationMode(s string) (ValidationMode, error) {
	switch ValidationMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ValidationAtomic:
		return ValidationAtomic, nil
	case ValidationPerLine:
		return ValidationPerLine, nil
	}
	return "", fmt.Errorf("modo de validación desconocido %q", s)
}

// StockMutator es el subconjunto del motor de stock que usan los documentos.
type StockMutator interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error
	ReceiveInTx(ctx context.Context, uow repository.UnitOfWork, in inventory.MovementInput) (*inventory.MovementResult, error)
	DeliverInTx(ctx context.Context, uow repository.UnitOfWork, in inventory.MovementInput) (*inventory.MovementResult, error)
	AdjustInTx(ctx context.Context, uow repository.UnitOfWork, in inventory.MovementInput) (*inventory.MovementResult, error)
	TransferInTx(ctx context.Context, uow repository.UnitOfWork, in inventory.TransferInput) (*inventory.TransferResult, error)
}

// StockNotifier recibe los pares cuyo saldo cambió tras una validación (chequeo de stock bajo).
type StockNotifier interface {
	NotifyStockChanged(ctx context.Context, pairs []entity.StockPair) error
}

// Deps dependencias del caso de uso.
type Deps struct {
	Documents  repository.DocumentRepository
	Products   repository.ProductRepository
	Warehouses repository.WarehouseRepository
	Sequence   repository.SequenceGenerator
	Engine     StockMutator
	Notifier   StockNotifier // opcional
	Logger     zerolog.Logger
}

// UseCase ciclo de vida de documentos de stock: Draft -> Validated.
type UseCase struct {
	docs       repository.DocumentRepository
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	seq        repository.SequenceGenerator
	engine     StockMutator
	notifier   StockNotifier
	log        zerolog.Logger
	mode       ValidationMode
	now        func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(d Deps, mode ValidationMode) *UseCase {
	if mode == "" {
		mode = ValidationAtomic
	}
	return &UseCase{
		docs:       d.Documents,
		products:   d.Products,
		warehouses: d.Warehouses,
		seq:        d.Sequence,
		engine:     d.Engine,
		notifier:   d.Notifier,
		log:        d.Logger,
		mode:       mode,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Mode devuelve el modo de validación configurado.
func (uc *UseCase) Mode() ValidationMode { return uc.mode }

var numberPrefixes = map[entity.DocumentType]string{
	entity.DocumentTypeReceipt:       "REC",
	entity.DocumentTypeDeliveryOrder: "DO",
	entity.DocumentTypeTransfer:      "TRF",
	entity.DocumentTypeAdjustment:    "ADJ",
}

// SequenceName nombre de la secuencia de numeración de cada tipo.
func SequenceName(t entity.DocumentType) string {
	switch t {
	case entity.DocumentTypeReceipt:
		return "receipt_number_seq"
	case entity.DocumentTypeDeliveryOrder:
		return "delivery_order_number_seq"
	case entity.DocumentTypeTransfer:
		return "transfer_number_seq"
	default:
		return "adjustment_number_seq"
	}
}

func (uc *UseCase) nextNumber(ctx context.Context, t entity.DocumentType) (string, error) {
	n, err := uc.seq.Next(ctx, SequenceName(t))
	if err != nil {
		return "", fmt.Errorf("numeración %s: %w", t, err)
	}
	return fmt.Sprintf("%s-%06d", numberPrefixes[t], n), nil
}

// Create registra un documento en Draft con número consecutivo.
func (uc *UseCase) Create(ctx context.Context, docType entity.DocumentType, userID string, in dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	if !docType.Valid() {
		return nil, domain.Invalid("type", "no es válido")
	}
	now := uc.now()
	doc := &entity.Document{
		ID:           uuid.New().String(),
		Type:         docType,
		Status:       entity.DocumentStatusDraft,
		WarehouseID:  in.WarehouseID,
		Partner:      in.Partner,
		ScheduleDate: in.ScheduleDate,
		Notes:        in.Notes,
		Lines:        toLines(in.Lines),
		CreatedBy:    userID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if docType == entity.DocumentTypeTransfer {
		doc.ToWarehouseID = in.ToWarehouseID
	}
	if err := uc.checkDocument(ctx, doc); err != nil {
		return nil, err
	}
	number, err := uc.nextNumber(ctx, docType)
	if err != nil {
		return nil, err
	}
	doc.Number = number
	if err := uc.docs.Create(ctx, doc); err != nil {
		return nil, err
	}
	return toDocumentResponse(doc, nil), nil
}

// Get devuelve el documento si existe y es del tipo pedido.
func (uc *UseCase) Get(ctx context.Context, docType entity.DocumentType, id string) (*dto.DocumentResponse, error) {
	doc, err := uc.load(ctx, uc.docs, docType, id)
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(doc, nil), nil
}

// List lista documentos del tipo, más recientes primero.
func (uc *UseCase) List(ctx context.Context, docType entity.DocumentType, q dto.DocumentListQuery) (*dto.DocumentListResponse, error) {
	q.DefaultPage()
	list, err := uc.docs.List(ctx, repository.DocumentFilter{
		Type:        docType,
		Status:      q.Status,
		WarehouseID: q.WarehouseID,
		Limit:       q.Limit,
		Offset:      q.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.DocumentResponse, 0, len(list))
	for _, d := range list {
		items = append(items, *toDocumentResponse(d, nil))
	}
	return &dto.DocumentListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	}, nil
}

// Update modifica un documento en Draft. Validado devuelve ErrAlreadyValidated y en
// validación ErrValidationInProgress.
func (uc *UseCase) Update(ctx context.Context, docType entity.DocumentType, id string, in dto.UpdateDocumentRequest) (*dto.DocumentResponse, error) {
	var doc *entity.Document
	err := uc.engine.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		d, err := uc.lockDraft(ctx, uow, docType, id)
		if err != nil {
			return err
		}
		if in.WarehouseID != nil {
			d.WarehouseID = *in.WarehouseID
		}
		if in.ToWarehouseID != nil && docType == entity.DocumentTypeTransfer {
			d.ToWarehouseID = *in.ToWarehouseID
		}
		if in.Partner != nil {
			d.Partner = *in.Partner
		}
		if in.ScheduleDate != nil {
			d.ScheduleDate = in.ScheduleDate
		}
		if in.Notes != nil {
			d.Notes = *in.Notes
		}
		if in.Lines != nil {
			d.Lines = toLines(in.Lines)
		}
		if err := uc.checkDocument(ctx, d); err != nil {
			return err
		}
		d.UpdatedAt = uc.now()
		if err := uow.Documents().Update(ctx, d); err != nil {
			return err
		}
		doc = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(doc, nil), nil
}

// Delete elimina un documento en Draft.
func (uc *UseCase) Delete(ctx context.Context, docType entity.DocumentType, id string) error {
	return uc.engine.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		if _, err := uc.lockDraft(ctx, uow, docType, id); err != nil {
			return err
		}
		return uow.Documents().Delete(ctx, id)
	})
}

func (uc *UseCase) load(ctx context.Context, repo repository.DocumentRepository, docType entity.DocumentType, id string) (*entity.Document, error) {
	doc, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.Type != docType {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

// checkDocument valida forma y referencias: bodegas y productos deben existir.
func (uc *UseCase) checkDocument(ctx context.Context, doc *entity.Document) error {
	if doc.WarehouseID == "" {
		return domain.Invalid("warehouse_id", "es requerido")
	}
	if len(doc.Lines) == 0 {
		return domain.Invalid("lines", "debe tener al menos una línea")
	}
	if doc.Type == entity.DocumentTypeTransfer {
		if doc.ToWarehouseID == "" {
			return domain.Invalid("to_warehouse_id", "es requerido")
		}
		if doc.ToWarehouseID == doc.WarehouseID {
			return domain.ErrInvalidTransfer
		}
	}
	for i, l := range doc.Lines {
		if l.ProductID == "" {
			return &domain.LineError{Line: i, Err: domain.Invalid("product_id", "es requerido")}
		}
		if doc.Type != entity.DocumentTypeAdjustment && l.Quantity.IsNegative() {
			return &domain.LineError{Line: i, Err: domain.Invalid("quantity", "debe ser positiva")}
		}
		if err := stock.CheckScale(l.Quantity); err != nil {
			return &domain.LineError{Line: i, Err: err}
		}
	}
	return uc.checkReferences(ctx, doc)
}

func (uc *UseCase) checkReferences(ctx context.Context, doc *entity.Document) error {
	for _, whID := range []string{doc.WarehouseID, doc.ToWarehouseID} {
		if whID == "" {
			continue
		}
		w, err := uc.warehouses.GetByID(ctx, whID)
		if err != nil {
			return err
		}
		if w == nil {
			return fmt.Errorf("bodega %s: %w", whID, domain.ErrNotFound)
		}
	}
	seen := make(map[string]bool, len(doc.Lines))
	for i, l := range doc.Lines {
		if seen[l.ProductID] {
			continue
		}
		seen[l.ProductID] = true
		p, err := uc.products.GetByID(ctx, l.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return &domain.LineError{Line: i, Err: fmt.Errorf("producto %s: %w", l.ProductID, domain.ErrNotFound)}
		}
	}
	return nil
}
