package documents

import (
	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func toLines(in []dto.DocumentLineRequest) []entity.DocumentLine {
	lines := make([]entity.DocumentLine, 0, len(in))
	for _, l := range in {
		lines = append(lines, entity.DocumentLine{
			ID:        uuid.New().String(),
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Reason:    l.Reason,
		})
	}
	return lines
}

func toDocumentResponse(d *entity.Document, entries []*entity.LedgerEntry) *dto.DocumentResponse {
	lines := make([]dto.DocumentLineResponse, 0, len(d.Lines))
	for _, l := range d.Lines {
		lines = append(lines, dto.DocumentLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Reason:    l.Reason,
		})
	}
	resp := &dto.DocumentResponse{
		ID:            d.ID,
		Number:        d.Number,
		Type:          string(d.Type),
		Status:        d.Status,
		WarehouseID:   d.WarehouseID,
		ToWarehouseID: d.ToWarehouseID,
		Partner:       d.Partner,
		ScheduleDate:  d.ScheduleDate,
		Notes:         d.Notes,
		Lines:         lines,
		CreatedBy:     d.CreatedBy,
		ValidatedBy:   d.ValidatedBy,
		ValidatedAt:   d.ValidatedAt,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	for _, e := range entries {
		resp.Movements = append(resp.Movements, dto.LedgerEntryResponse{
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
		})
	}
	return resp
}
