package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

type ledgerRepo struct {
	u *unitOfWork
}

func cloneEntry(e *entity.LedgerEntry) *entity.LedgerEntry {
	c := *e
	return &c
}

func (r *ledgerRepo) Append(ctx context.Context, entry *entity.LedgerEntry) error {
	if entry.ID == "" {
		return domain.Invalid("id", "es requerido")
	}
	if !entry.Consistent() {
		return domain.Invalid("balance_after", "no coincide con balance_before + quantity")
	}
	r.u.ledger = append(r.u.ledger, cloneEntry(entry))
	return nil
}

// visible devuelve los asientos en orden de inserción (confirmados y luego pendientes).
func (r *ledgerRepo) visible() []*entity.LedgerEntry {
	r.u.store.mu.RLock()
	out := make([]*entity.LedgerEntry, 0, len(r.u.store.ledger)+len(r.u.ledger))
	out = append(out, r.u.store.ledger...)
	r.u.store.mu.RUnlock()
	return append(out, r.u.ledger...)
}

func (r *ledgerRepo) GetByID(ctx context.Context, id string) (*entity.LedgerEntry, error) {
	for _, e := range r.visible() {
		if e.ID == id {
			return cloneEntry(e), nil
		}
	}
	return nil, nil
}

func (r *ledgerRepo) List(ctx context.Context, f repository.LedgerFilter) ([]*entity.LedgerEntry, int, error) {
	var matched []*entity.LedgerEntry
	for _, e := range r.visible() {
		if f.ProductID != "" && e.ProductID != f.ProductID {
			continue
		}
		if f.WarehouseID != "" && e.WarehouseID != f.WarehouseID {
			continue
		}
		if f.DocumentType != "" && e.DocumentType != f.DocumentType {
			continue
		}
		if f.DocumentID != "" && e.DocumentID != f.DocumentID {
			continue
		}
		if f.UserID != "" && e.UserID != f.UserID {
			continue
		}
		if f.From != nil && e.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && e.CreatedAt.After(*f.To) {
			continue
		}
		matched = append(matched, e)
	}
	// Estable: a igual CreatedAt se conserva el orden de inserción.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	if !f.Ascending {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}
	page := paginate(matched, f.Limit, f.Offset)
	out := make([]*entity.LedgerEntry, len(page))
	for i, e := range page {
		out[i] = cloneEntry(e)
	}
	return out, len(matched), nil
}

type autoLedger struct {
	s *Store
}

// Ledger devuelve el libro de movimientos sin transacción externa.
func (s *Store) Ledger() repository.LedgerRepository { return &autoLedger{s: s} }

func (a *autoLedger) Append(ctx context.Context, entry *entity.LedgerEntry) error {
	return a.s.update(func(u *unitOfWork) error {
		return u.Ledger().Append(ctx, entry)
	})
}

func (a *autoLedger) GetByID(ctx context.Context, id string) (*entity.LedgerEntry, error) {
	return a.s.view().Ledger().GetByID(ctx, id)
}

func (a *autoLedger) List(ctx context.Context, f repository.LedgerFilter) ([]*entity.LedgerEntry, int, error) {
	return a.s.view().Ledger().List(ctx, f)
}
