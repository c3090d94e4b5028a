package repository

// UnitOfWork agrupa los repositorios atados a una misma transacción.
// Lo abre un TxRunner y es válido solo durante el callback.
type UnitOfWork interface {
	Balances() StockBalanceRepository
	Ledger() LedgerRepository
	Documents() DocumentRepository
}
