package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockAlertRepository = (*AlertRepo)(nil)

// AlertRepo alertas de stock bajo en memoria.
type AlertRepo struct{ s *Store }

// Alerts devuelve el repositorio de alertas.
func (s *Store) Alerts() *AlertRepo { return &AlertRepo{s: s} }

func cloneAlert(a *entity.StockAlert) *entity.StockAlert {
	c := *a
	if a.ResolvedAt != nil {
		t := *a.ResolvedAt
		c.ResolvedAt = &t
	}
	return &c
}

func (r *AlertRepo) Create(ctx context.Context, alert *entity.StockAlert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.alerts[alert.ID]; ok {
		return domain.ErrDuplicate
	}
	if !alert.IsResolved {
		for _, a := range r.s.alerts {
			if !a.IsResolved && a.ProductID == alert.ProductID && a.WarehouseID == alert.WarehouseID {
				return domain.ErrDuplicate
			}
		}
	}
	r.s.alerts[alert.ID] = cloneAlert(alert)
	return nil
}

func (r *AlertRepo) Update(ctx context.Context, alert *entity.StockAlert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.alerts[alert.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.alerts[alert.ID] = cloneAlert(alert)
	return nil
}

func (r *AlertRepo) GetByID(ctx context.Context, id string) (*entity.StockAlert, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.alerts[id]
	if !ok {
		return nil, nil
	}
	return cloneAlert(a), nil
}

func (r *AlertRepo) GetActive(ctx context.Context, productID, warehouseID string) (*entity.StockAlert, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.alerts {
		if !a.IsResolved && a.ProductID == productID && a.WarehouseID == warehouseID {
			return cloneAlert(a), nil
		}
	}
	return nil, nil
}

func (r *AlertRepo) ResolveActive(ctx context.Context, productID, warehouseID string, at time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, a := range r.s.alerts {
		if !a.IsResolved && a.ProductID == productID && a.WarehouseID == warehouseID {
			resolvedAt := at
			a.IsResolved = true
			a.ResolvedAt = &resolvedAt
			a.UpdatedAt = at
			n++
		}
	}
	return n, nil
}

func (r *AlertRepo) ListActive(ctx context.Context) ([]*entity.StockAlert, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.StockAlert
	for _, a := range r.s.alerts {
		if !a.IsResolved {
			out = append(out, cloneAlert(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AlertDate.After(out[j].AlertDate) })
	return out, nil
}
