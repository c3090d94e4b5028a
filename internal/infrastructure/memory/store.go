// Package memory implementa todos los puertos de repositorio en proceso (dev/test).
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

type pairKey struct {
	ProductID   string
	WarehouseID string
}

// Store guarda el estado confirmado. Las transacciones se serializan con txMu y
// escriben sobre un overlay propio que se aplica completo en Commit o se descarta.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	balances   map[pairKey]*entity.StockBalance
	ledger     []*entity.LedgerEntry
	documents  map[string]*entity.Document
	products   map[string]*entity.Product
	warehouses map[string]*entity.Warehouse
	users      map[string]*entity.User
	alerts     map[string]*entity.StockAlert
	sequences  map[string]int64
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		balances:   make(map[pairKey]*entity.StockBalance),
		documents:  make(map[string]*entity.Document),
		products:   make(map[string]*entity.Product),
		warehouses: make(map[string]*entity.Warehouse),
		users:      make(map[string]*entity.User),
		alerts:     make(map[string]*entity.StockAlert),
		sequences:  make(map[string]int64),
	}
}

// TxRunner ejecuta callbacks con una UnitOfWork transaccional sobre el Store.
type TxRunner struct {
	store *Store
}

// NewTxRunner crea el runner.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{store: s}
}

// Run abre la transacción, ejecuta fn y confirma si no hubo error.
// Si fn devuelve error (o hace panic) nada de lo escrito queda visible.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()

	u := newUnitOfWork(r.store)
	if err := fn(ctx, u); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	u.commit()
	return nil
}

// update ejecuta una escritura suelta como transacción propia.
func (s *Store) update(fn func(u *unitOfWork) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	u := newUnitOfWork(s)
	if err := fn(u); err != nil {
		return err
	}
	u.commit()
	return nil
}

// view devuelve una unidad de trabajo sin cambios pendientes: solo ve lo confirmado.
func (s *Store) view() *unitOfWork {
	return newUnitOfWork(s)
}

// unitOfWork acumula cambios pendientes de una transacción.
type unitOfWork struct {
	store *Store

	balances  map[pairKey]*entity.StockBalance
	ledger    []*entity.LedgerEntry
	documents map[string]*entity.Document // nil = eliminado en esta tx
}

func newUnitOfWork(s *Store) *unitOfWork {
	return &unitOfWork{
		store:     s,
		balances:  make(map[pairKey]*entity.StockBalance),
		documents: make(map[string]*entity.Document),
	}
}

func (u *unitOfWork) Balances() repository.StockBalanceRepository { return &balanceRepo{u: u} }
func (u *unitOfWork) Ledger() repository.LedgerRepository         { return &ledgerRepo{u: u} }
func (u *unitOfWork) Documents() repository.DocumentRepository    { return &documentRepo{u: u} }

func (u *unitOfWork) commit() {
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, b := range u.balances {
		s.balances[k] = b
	}
	s.ledger = append(s.ledger, u.ledger...)
	for id, d := range u.documents {
		if d == nil {
			delete(s.documents, id)
			continue
		}
		s.documents[id] = d
	}
}

// paginate aplica offset/limit (limit <= 0 = sin límite).
func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
