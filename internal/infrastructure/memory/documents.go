package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

type documentRepo struct {
	u *unitOfWork
}

func cloneDocument(d *entity.Document) *entity.Document {
	c := *d
	c.Lines = append([]entity.DocumentLine(nil), d.Lines...)
	if d.ScheduleDate != nil {
		t := *d.ScheduleDate
		c.ScheduleDate = &t
	}
	if d.ValidatedAt != nil {
		t := *d.ValidatedAt
		c.ValidatedAt = &t
	}
	return &c
}

// current devuelve el documento visible para la tx; ok=false si no existe o fue eliminado.
func (r *documentRepo) current(id string) (*entity.Document, bool) {
	if d, staged := r.u.documents[id]; staged {
		return d, d != nil
	}
	r.u.store.mu.RLock()
	defer r.u.store.mu.RUnlock()
	d, ok := r.u.store.documents[id]
	return d, ok
}

func (r *documentRepo) Create(ctx context.Context, doc *entity.Document) error {
	if _, exists := r.current(doc.ID); exists {
		return domain.ErrDuplicate
	}
	for _, d := range r.visible() {
		if d.Number == doc.Number {
			return domain.ErrDuplicate
		}
	}
	r.u.documents[doc.ID] = cloneDocument(doc)
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	d, ok := r.current(id)
	if !ok {
		return nil, nil
	}
	return cloneDocument(d), nil
}

// GetForUpdate equivale a GetByID: la tx ya tiene acceso exclusivo al store.
func (r *documentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Document, error) {
	return r.GetByID(ctx, id)
}

func (r *documentRepo) Update(ctx context.Context, doc *entity.Document) error {
	if _, ok := r.current(doc.ID); !ok {
		return domain.ErrNotFound
	}
	r.u.documents[doc.ID] = cloneDocument(doc)
	return nil
}

func (r *documentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.current(id); !ok {
		return domain.ErrNotFound
	}
	r.u.documents[id] = nil
	return nil
}

func (r *documentRepo) visible() []*entity.Document {
	r.u.store.mu.RLock()
	merged := make(map[string]*entity.Document, len(r.u.store.documents))
	for id, d := range r.u.store.documents {
		merged[id] = d
	}
	r.u.store.mu.RUnlock()
	for id, d := range r.u.documents {
		if d == nil {
			delete(merged, id)
			continue
		}
		merged[id] = d
	}
	out := make([]*entity.Document, 0, len(merged))
	for _, d := range merged {
		out = append(out, d)
	}
	// Más recientes primero, como el listado en PostgreSQL.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Number > out[j].Number
	})
	return out
}

func (r *documentRepo) List(ctx context.Context, f repository.DocumentFilter) ([]*entity.Document, error) {
	var matched []*entity.Document
	for _, d := range r.visible() {
		if f.Type != "" && d.Type != f.Type {
			continue
		}
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		if f.WarehouseID != "" && d.WarehouseID != f.WarehouseID && d.ToWarehouseID != f.WarehouseID {
			continue
		}
		matched = append(matched, d)
	}
	page := paginate(matched, f.Limit, f.Offset)
	out := make([]*entity.Document, len(page))
	for i, d := range page {
		out[i] = cloneDocument(d)
	}
	return out, nil
}

func (r *documentRepo) CountByStatus(ctx context.Context, docType entity.DocumentType, status string) (int, error) {
	n := 0
	for _, d := range r.visible() {
		if d.Type == docType && d.Status == status {
			n++
		}
	}
	return n, nil
}

type autoDocuments struct {
	s *Store
}

// Documents devuelve el repositorio de documentos sin transacción externa.
func (s *Store) Documents() repository.DocumentRepository { return &autoDocuments{s: s} }

func (a *autoDocuments) Create(ctx context.Context, doc *entity.Document) error {
	return a.s.update(func(u *unitOfWork) error { return u.Documents().Create(ctx, doc) })
}

func (a *autoDocuments) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	return a.s.view().Documents().GetByID(ctx, id)
}

func (a *autoDocuments) GetForUpdate(ctx context.Context, id string) (*entity.Document, error) {
	return a.s.view().Documents().GetForUpdate(ctx, id)
}

func (a *autoDocuments) Update(ctx context.Context, doc *entity.Document) error {
	return a.s.update(func(u *unitOfWork) error { return u.Documents().Update(ctx, doc) })
}

func (a *autoDocuments) Delete(ctx context.Context, id string) error {
	return a.s.update(func(u *unitOfWork) error { return u.Documents().Delete(ctx, id) })
}

func (a *autoDocuments) List(ctx context.Context, f repository.DocumentFilter) ([]*entity.Document, error) {
	return a.s.view().Documents().List(ctx, f)
}

func (a *autoDocuments) CountByStatus(ctx context.Context, docType entity.DocumentType, status string) (int, error) {
	return a.s.view().Documents().CountByStatus(ctx, docType, status)
}
