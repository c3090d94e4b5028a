package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store agrupa los repositorios atados al pool (fuera de transacción).
type Store struct {
	pool *pgxpool.Pool
}

// NewStore construye el store sobre un pool ya abierto.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) TxRunner() *TxRunner         { return NewTxRunner(s.pool) }
func (s *Store) Balances() *StockBalanceRepo { return NewStockBalanceRepository(s.pool) }
func (s *Store) Ledger() *LedgerRepo         { return NewLedgerRepository(s.pool) }
func (s *Store) Documents() *DocumentRepo    { return NewDocumentRepository(s.pool) }
func (s *Store) Products() *ProductRepo      { return NewProductRepository(s.pool) }
func (s *Store) Warehouses() *WarehouseRepo  { return NewWarehouseRepository(s.pool) }
func (s *Store) Users() *UserRepo            { return NewUserRepository(s.pool) }
func (s *Store) Alerts() *StockAlertRepo     { return NewStockAlertRepository(s.pool) }
func (s *Store) Sequence() *Sequence         { return NewSequence(s.pool) }
