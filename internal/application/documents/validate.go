package documents

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Validate aplica el efecto de stock de cada línea y marca el documento como Validated.
//
// En modo atomic todas las líneas y el cambio de estado comparten una transacción: si una
// línea falla no queda nada aplicado. En modo per_line el documento se reclama primero
// (Validating) y cada línea se confirma por separado; si una falla, las anteriores quedan
// aplicadas, el documento vuelve a Draft y el error (*domain.LineError) indica la línea.
func (uc *UseCase) Validate(ctx context.Context, docType entity.DocumentType, id, userID string) (*dto.DocumentResponse, error) {
	if userID == "" {
		return nil, domain.Invalid("user_id", "es requerido")
	}
	var (
		doc     *entity.Document
		entries []*entity.LedgerEntry
		err     error
	)
	if uc.mode == ValidationPerLine {
		doc, entries, err = uc.validatePerLine(ctx, docType, id, userID)
	} else {
		doc, entries, err = uc.validateAtomic(ctx, docType, id, userID)
	}
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("document_id", doc.ID).
		Str("number", doc.Number).
		Str("mode", string(uc.mode)).
		Int("movements", len(entries)).
		Msg("documento validado")

	uc.notify(ctx, doc, doc.Lines)
	return toDocumentResponse(doc, entries), nil
}

func (uc *UseCase) validateAtomic(ctx context.Context, docType entity.DocumentType, id, userID string) (*entity.Document, []*entity.LedgerEntry, error) {
	var (
		doc     *entity.Document
		entries []*entity.LedgerEntry
	)
	err := uc.engine.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		entries = nil
		d, err := uc.lockDraft(ctx, uow, docType, id)
		if err != nil {
			return err
		}
		if err := uc.checkReferences(ctx, d); err != nil {
			return err
		}
		for i, line := range d.Lines {
			es, err := uc.applyLine(ctx, uow, d, line, userID)
			if err != nil {
				return &domain.LineError{Line: i, Err: err}
			}
			entries = append(entries, es...)
		}
		uc.markValidated(d, userID)
		if err := uow.Documents().Update(ctx, d); err != nil {
			return err
		}
		doc = d
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return doc, entries, nil
}

func (uc *UseCase) validatePerLine(ctx context.Context, docType entity.DocumentType, id, userID string) (*entity.Document, []*entity.LedgerEntry, error) {
	doc, err := uc.claim(ctx, docType, id)
	if err != nil {
		return nil, nil, err
	}
	if err := uc.checkReferences(ctx, doc); err != nil {
		uc.release(ctx, doc.ID)
		return nil, nil, err
	}

	var entries []*entity.LedgerEntry
	for i, line := range doc.Lines {
		var lineEntries []*entity.LedgerEntry
		err := uc.engine.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
			es, err := uc.applyLine(ctx, uow, doc, line, userID)
			lineEntries = es
			return err
		})
		if err != nil {
			uc.log.Warn().
				Err(err).
				Str("document_id", doc.ID).
				Int("line", i+1).
				Int("applied_lines", i).
				Msg("validación parcial: líneas previas quedan aplicadas")
			uc.release(ctx, doc.ID)
			uc.notify(ctx, doc, doc.Lines[:i])
			return nil, nil, &domain.LineError{Line: i, Err: err}
		}
		entries = append(entries, lineEntries...)
	}

	var validated *entity.Document
	err = uc.engine.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		d, err := uc.lockDocument(ctx, uow, docType, id)
		if err != nil {
			return err
		}
		if d.Status != entity.DocumentStatusValidating {
			return fmt.Errorf("documento %s en estado %s: %w", d.ID, d.Status, domain.ErrConflict)
		}
		uc.markValidated(d, userID)
		if err := uow.Documents().Update(ctx, d); err != nil {
			return err
		}
		validated = d
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return validated, entries, nil
}

// claim pasa el documento de Draft a Validating bajo bloqueo. Una segunda validación
// concurrente recibe ErrValidationInProgress antes de tocar stock.
func (uc *UseCase) claim(ctx context.Context, docType entity.DocumentType, id string) (*entity.Document, error) {
	var doc *entity.Document
	err := uc.engine.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		d, err := uc.lockDraft(ctx, uow, docType, id)
		if err != nil {
			return err
		}
		d.Status = entity.DocumentStatusValidating
		d.UpdatedAt = uc.now()
		if err := uow.Documents().Update(ctx, d); err != nil {
			return err
		}
		doc = d
		return nil
	})
	return doc, err
}

// release devuelve a Draft un documento reclamado. Corre aunque ctx esté cancelado.
func (uc *UseCase) release(ctx context.Context, id string) {
	ctx = context.WithoutCancel(ctx)
	err := uc.engine.WithinTx(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		d, err := uow.Documents().GetForUpdate(ctx, id)
		if err != nil || d == nil || d.Status != entity.DocumentStatusValidating {
			return err
		}
		d.Status = entity.DocumentStatusDraft
		d.UpdatedAt = uc.now()
		return uow.Documents().Update(ctx, d)
	})
	if err != nil {
		uc.log.Error().Err(err).Str("document_id", id).Msg("no se pudo liberar el documento; queda en Validating")
	}
}

func (uc *UseCase) lockDocument(ctx context.Context, uow repository.UnitOfWork, docType entity.DocumentType, id string) (*entity.Document, error) {
	d, err := uow.Documents().GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil || d.Type != docType {
		return nil, domain.ErrNotFound
	}
	return d, nil
}

func (uc *UseCase) lockDraft(ctx context.Context, uow repository.UnitOfWork, docType entity.DocumentType, id string) (*entity.Document, error) {
	d, err := uc.lockDocument(ctx, uow, docType, id)
	if err != nil {
		return nil, err
	}
	if err := draftOnly(d); err != nil {
		return nil, err
	}
	return d, nil
}

// draftOnly rechaza documentos que ya no admiten cambios.
func draftOnly(d *entity.Document) error {
	switch d.Status {
	case entity.DocumentStatusDraft:
		return nil
	case entity.DocumentStatusValidating:
		return domain.ErrValidationInProgress
	default:
		return domain.ErrAlreadyValidated
	}
}

func (uc *UseCase) markValidated(d *entity.Document, userID string) {
	now := uc.now()
	d.Status = entity.DocumentStatusValidated
	d.ValidatedBy = userID
	d.ValidatedAt = &now
	d.UpdatedAt = now
}

// notify avisa los pares tocados por las líneas dadas; un fallo solo se registra.
func (uc *UseCase) notify(ctx context.Context, d *entity.Document, lines []entity.DocumentLine) {
	if uc.notifier == nil || len(lines) == 0 {
		return
	}
	if err := uc.notifier.NotifyStockChanged(ctx, affectedPairs(d, lines)); err != nil {
		uc.log.Warn().Err(err).Str("document_id", d.ID).Msg("no se pudo notificar cambio de stock")
	}
}

// applyLine traduce una línea en la operación del motor que le corresponde.
func (uc *UseCase) applyLine(ctx context.Context, uow repository.UnitOfWork, d *entity.Document, line entity.DocumentLine, userID string) ([]*entity.LedgerEntry, error) {
	in := inventory.MovementInput{
		ProductID:    line.ProductID,
		WarehouseID:  d.WarehouseID,
		Quantity:     line.Quantity,
		UserID:       userID,
		DocumentType: d.Type,
		DocumentID:   d.ID,
		Notes:        lineNotes(d, line),
	}
	var (
		res *inventory.MovementResult
		err error
	)
	switch d.Type {
	case entity.DocumentTypeReceipt:
		res, err = uc.engine.ReceiveInTx(ctx, uow, in)
	case entity.DocumentTypeDeliveryOrder:
		res, err = uc.engine.DeliverInTx(ctx, uow, in)
	case entity.DocumentTypeAdjustment:
		res, err = uc.engine.AdjustInTx(ctx, uow, in)
	case entity.DocumentTypeTransfer:
		tr, terr := uc.engine.TransferInTx(ctx, uow, inventory.TransferInput{
			ProductID:       line.ProductID,
			FromWarehouseID: d.WarehouseID,
			ToWarehouseID:   d.ToWarehouseID,
			Quantity:        line.Quantity,
			UserID:          userID,
			DocumentType:    d.Type,
			DocumentID:      d.ID,
			Notes:           in.Notes,
		})
		if terr != nil {
			return nil, terr
		}
		return []*entity.LedgerEntry{tr.From.Entry, tr.To.Entry}, nil
	default:
		return nil, domain.Invalid("type", "no es válido")
	}
	if err != nil {
		return nil, err
	}
	return []*entity.LedgerEntry{res.Entry}, nil
}

func lineNotes(d *entity.Document, line entity.DocumentLine) string {
	switch d.Type {
	case entity.DocumentTypeReceipt:
		return "Receipt " + d.Number
	case entity.DocumentTypeDeliveryOrder:
		return "Delivery Order " + d.Number
	case entity.DocumentTypeTransfer:
		return "Transfer " + d.Number
	default:
		return fmt.Sprintf("Adjustment %s: %s", d.Number, line.Reason)
	}
}

// affectedPairs pares (producto, bodega) tocados por las líneas del documento, sin repetir.
func affectedPairs(d *entity.Document, lines []entity.DocumentLine) []entity.StockPair {
	seen := make(map[entity.StockPair]bool)
	var out []entity.StockPair
	add := func(p entity.StockPair) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, l := range lines {
		add(entity.StockPair{ProductID: l.ProductID, WarehouseID: d.WarehouseID})
		if d.ToWarehouseID != "" {
			add(entity.StockPair{ProductID: l.ProductID, WarehouseID: d.ToWarehouseID})
		}
	}
	return out
}
