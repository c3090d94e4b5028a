package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

type balanceRepo struct {
	u *unitOfWork
}

func cloneBalance(b *entity.StockBalance) *entity.StockBalance {
	c := *b
	return &c
}

// current devuelve el saldo visible para la tx (pendiente o confirmado) o nil.
func (r *balanceRepo) current(k pairKey) *entity.StockBalance {
	if b, ok := r.u.balances[k]; ok {
		return b
	}
	r.u.store.mu.RLock()
	defer r.u.store.mu.RUnlock()
	return r.u.store.balances[k]
}

func (r *balanceRepo) GetOrCreate(ctx context.Context, productID, warehouseID string) (*entity.StockBalance, error) {
	k := pairKey{ProductID: productID, WarehouseID: warehouseID}
	b := r.current(k)
	if b == nil {
		now := time.Now().UTC()
		b = &entity.StockBalance{
			ID:          uuid.New().String(),
			ProductID:   productID,
			WarehouseID: warehouseID,
			Quantity:    decimal.Zero,
			ReservedQty: decimal.Zero,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		r.u.balances[k] = b
	}
	return cloneBalance(b), nil
}

func (r *balanceRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.StockBalance, error) {
	b := r.current(pairKey{ProductID: productID, WarehouseID: warehouseID})
	if b == nil {
		return nil, nil
	}
	return cloneBalance(b), nil
}

func (r *balanceRepo) Save(ctx context.Context, balance *entity.StockBalance) error {
	k := pairKey{ProductID: balance.ProductID, WarehouseID: balance.WarehouseID}
	stored := r.current(k)
	if stored == nil {
		return domain.ErrNotFound
	}
	if stored.Version != balance.Version {
		return domain.ErrConcurrencyConflict
	}
	balance.Version++
	r.u.balances[k] = cloneBalance(balance)
	return nil
}

// visible combina lo confirmado con lo pendiente de la tx.
func (r *balanceRepo) visible() []*entity.StockBalance {
	r.u.store.mu.RLock()
	merged := make(map[pairKey]*entity.StockBalance, len(r.u.store.balances)+len(r.u.balances))
	for k, b := range r.u.store.balances {
		merged[k] = b
	}
	r.u.store.mu.RUnlock()
	for k, b := range r.u.balances {
		merged[k] = b
	}
	out := make([]*entity.StockBalance, 0, len(merged))
	for _, b := range merged {
		out = append(out, cloneBalance(b))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WarehouseID != out[j].WarehouseID {
			return out[i].WarehouseID < out[j].WarehouseID
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out
}

func (r *balanceRepo) List(ctx context.Context, filter repository.BalanceFilter) ([]*entity.StockBalance, error) {
	var out []*entity.StockBalance
	for _, b := range r.visible() {
		if filter.ProductID != "" && b.ProductID != filter.ProductID {
			continue
		}
		if filter.WarehouseID != "" && b.WarehouseID != filter.WarehouseID {
			continue
		}
		out = append(out, b)
	}
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (r *balanceRepo) CountAtOrBelow(ctx context.Context, threshold decimal.Decimal) (int, error) {
	n := 0
	for _, b := range r.visible() {
		if b.Quantity.LessThanOrEqual(threshold) {
			n++
		}
	}
	return n, nil
}

// autoBalances expone el Balance Store fuera de una transacción explícita.
type autoBalances struct {
	s *Store
}

// Balances devuelve el repositorio de saldos sin transacción externa.
func (s *Store) Balances() repository.StockBalanceRepository { return &autoBalances{s: s} }

func (a *autoBalances) GetOrCreate(ctx context.Context, productID, warehouseID string) (b *entity.StockBalance, err error) {
	err = a.s.update(func(u *unitOfWork) error {
		b, err = u.Balances().GetOrCreate(ctx, productID, warehouseID)
		return err
	})
	return b, err
}

func (a *autoBalances) Get(ctx context.Context, productID, warehouseID string) (*entity.StockBalance, error) {
	return a.s.view().Balances().Get(ctx, productID, warehouseID)
}

func (a *autoBalances) Save(ctx context.Context, balance *entity.StockBalance) error {
	return a.s.update(func(u *unitOfWork) error {
		return u.Balances().Save(ctx, balance)
	})
}

func (a *autoBalances) List(ctx context.Context, filter repository.BalanceFilter) ([]*entity.StockBalance, error) {
	return a.s.view().Balances().List(ctx, filter)
}

func (a *autoBalances) CountAtOrBelow(ctx context.Context, threshold decimal.Decimal) (int, error) {
	return a.s.view().Balances().CountAtOrBelow(ctx, threshold)
}
