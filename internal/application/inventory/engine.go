package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Prefijos de notas en los asientos de traslado.
const (
	transferOutPrefix = "Transfer out: "
	transferInPrefix  = "Transfer in: "
)

// MovementInput entrada para Receive, Deliver y Adjust.
// En Receive/Deliver Quantity es una magnitud (>= 0); en Adjust lleva signo.
type MovementInput struct {
	ProductID    string
	WarehouseID  string
	Quantity     decimal.Decimal
	UserID       string
	DocumentType entity.DocumentType
	DocumentID   string
	Notes        string
}

// TransferInput entrada para Transfer.
type TransferInput struct {
	ProductID       string
	FromWarehouseID string
	ToWarehouseID   string
	Quantity        decimal.Decimal
	UserID          string
	DocumentType    entity.DocumentType
	DocumentID      string
	Notes           string
}

// MovementResult saldo antes/después de una transición y el asiento que la registra.
type MovementResult struct {
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Entry         *entity.LedgerEntry
}

// TransferResult resultado de ambos lados de un traslado.
type TransferResult struct {
	From MovementResult
	To   MovementResult
}

// EngineConfig opciones del motor.
type EngineConfig struct {
	// MaxRetries reintentos ante domain.ErrConcurrencyConflict (0 = sin reintentos).
	MaxRetries   int
	RetryBackoff time.Duration
	// Now permite fijar el reloj en tests.
	Now func() time.Time
}

// StockEngine es el único punto de entrada autorizado para cambiar stock.
// Cada operación combina Balance Store + Ledger en una sola unidad atómica:
// o se escriben saldo(s) y asiento(s) juntos o no se escribe nada.
type StockEngine struct {
	txRunner TxRunner
	log      zerolog.Logger
	cfg      EngineConfig
}

// NewStockEngine construye el motor.
func NewStockEngine(txRunner TxRunner, log zerolog.Logger, cfg EngineConfig) *StockEngine {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 20 * time.Millisecond
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &StockEngine{txRunner: txRunner, log: log, cfg: cfg}
}

// Receive suma Quantity al saldo de la bodega en su propia transacción.
func (e *StockEngine) Receive(ctx context.Context, in MovementInput) (*MovementResult, error) {
	if err := validateMovement(in, false); err != nil {
		return nil, err
	}
	var res *MovementResult
	err := e.runWithRetry(ctx, "receive", func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		res, err = e.receive(ctx, uow, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.logCommitted("receive", res.Entry)
	return res, nil
}

// Deliver resta Quantity del saldo; falla con ErrInsufficientStock si no alcanza.
func (e *StockEngine) Deliver(ctx context.Context, in MovementInput) (*MovementResult, error) {
	if err := validateMovement(in, false); err != nil {
		return nil, err
	}
	var res *MovementResult
	err := e.runWithRetry(ctx, "deliver", func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		res, err = e.deliver(ctx, uow, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.logCommitted("deliver", res.Entry)
	return res, nil
}

// Adjust aplica Quantity (con signo) al saldo; falla con ErrNegativeStockResult si queda negativo.
func (e *StockEngine) Adjust(ctx context.Context, in MovementInput) (*MovementResult, error) {
	if err := validateMovement(in, true); err != nil {
		return nil, err
	}
	var res *MovementResult
	err := e.runWithRetry(ctx, "adjust", func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		res, err = e.adjust(ctx, uow, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.logCommitted("adjust", res.Entry)
	return res, nil
}

// Transfer mueve Quantity de FromWarehouseID a ToWarehouseID: dos saldos y dos asientos en la misma tx.
func (e *StockEngine) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if err := validateTransfer(in); err != nil {
		return nil, err
	}
	var res *TransferResult
	err := e.runWithRetry(ctx, "transfer", func(ctx context.Context, uow repository.UnitOfWork) error {
		var err error
		res, err = e.transfer(ctx, uow, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.logCommitted("transfer", res.From.Entry)
	e.logCommitted("transfer", res.To.Entry)
	return res, nil
}

// WithinTx abre una unidad de trabajo para combinar varias operaciones *InTx en una sola
// transacción. fn se reejecuta completa ante ErrConcurrencyConflict, así que no debe
// acumular estado fuera de la transacción sin reiniciarlo.
func (e *StockEngine) WithinTx(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error {
	return e.runWithRetry(ctx, "within_tx", fn)
}

// ReceiveInTx ejecuta Receive usando la unidad de trabajo del caller (misma transacción).
// No reintenta: el caller es dueño de la transacción.
func (e *StockEngine) ReceiveInTx(ctx context.Context, uow repository.UnitOfWork, in MovementInput) (*MovementResult, error) {
	if err := validateMovement(in, false); err != nil {
		return nil, err
	}
	return e.receive(ctx, uow, in)
}

// DeliverInTx ejecuta Deliver dentro de la transacción del caller.
func (e *StockEngine) DeliverInTx(ctx context.Context, uow repository.UnitOfWork, in MovementInput) (*MovementResult, error) {
	if err := validateMovement(in, false); err != nil {
		return nil, err
	}
	return e.deliver(ctx, uow, in)
}

// AdjustInTx ejecuta Adjust dentro de la transacción del caller.
func (e *StockEngine) AdjustInTx(ctx context.Context, uow repository.UnitOfWork, in MovementInput) (*MovementResult, error) {
	if err := validateMovement(in, true); err != nil {
		return nil, err
	}
	return e.adjust(ctx, uow, in)
}

// TransferInTx ejecuta Transfer dentro de la transacción del caller.
func (e *StockEngine) TransferInTx(ctx context.Context, uow repository.UnitOfWork, in TransferInput) (*TransferResult, error) {
	if err := validateTransfer(in); err != nil {
		return nil, err
	}
	return e.transfer(ctx, uow, in)
}

func (e *StockEngine) receive(ctx context.Context, uow repository.UnitOfWork, in MovementInput) (*MovementResult, error) {
	bal, err := uow.Balances().GetOrCreate(ctx, in.ProductID, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	return e.apply(ctx, uow, bal, in, in.Quantity, domain.ErrInsufficientStock, in.Notes)
}

func (e *StockEngine) deliver(ctx context.Context, uow repository.UnitOfWork, in MovementInput) (*MovementResult, error) {
	bal, err := uow.Balances().GetOrCreate(ctx, in.ProductID, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	return e.apply(ctx, uow, bal, in, in.Quantity.Neg(), domain.ErrInsufficientStock, in.Notes)
}

func (e *StockEngine) adjust(ctx context.Context, uow repository.UnitOfWork, in MovementInput) (*MovementResult, error) {
	bal, err := uow.Balances().GetOrCreate(ctx, in.ProductID, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	return e.apply(ctx, uow, bal, in, in.Quantity, domain.ErrNegativeStockResult, in.Notes)
}

func (e *StockEngine) transfer(ctx context.Context, uow repository.UnitOfWork, in TransferInput) (*TransferResult, error) {
	// Bloquea ambas filas siempre en el mismo orden para evitar deadlocks entre traslados cruzados.
	first, second := in.FromWarehouseID, in.ToWarehouseID
	if second < first {
		first, second = second, first
	}
	locked := make(map[string]*entity.StockBalance, 2)
	for _, wh := range []string{first, second} {
		bal, err := uow.Balances().GetOrCreate(ctx, in.ProductID, wh)
		if err != nil {
			return nil, err
		}
		locked[wh] = bal
	}

	out := MovementInput{
		ProductID:    in.ProductID,
		WarehouseID:  in.FromWarehouseID,
		Quantity:     in.Quantity,
		UserID:       in.UserID,
		DocumentType: in.DocumentType,
		DocumentID:   in.DocumentID,
	}
	fromRes, err := e.apply(ctx, uow, locked[in.FromWarehouseID], out, in.Quantity.Neg(), domain.ErrInsufficientStock, transferOutPrefix+in.Notes)
	if err != nil {
		return nil, err
	}
	dest := out
	dest.WarehouseID = in.ToWarehouseID
	toRes, err := e.apply(ctx, uow, locked[in.ToWarehouseID], dest, in.Quantity, domain.ErrInsufficientStock, transferInPrefix+in.Notes)
	if err != nil {
		return nil, err
	}
	return &TransferResult{From: *fromRes, To: *toRes}, nil
}

// apply calcula el nuevo saldo, lo persiste y escribe el asiento correspondiente.
// bal debe estar bloqueado en la transacción actual.
func (e *StockEngine) apply(
	ctx context.Context,
	uow repository.UnitOfWork,
	bal *entity.StockBalance,
	in MovementInput,
	delta decimal.Decimal,
	kind error,
	notes string,
) (*MovementResult, error) {
	before := bal.Quantity
	after, err := inventory.ApplyDelta(in.ProductID, in.WarehouseID, before, delta, kind)
	if err != nil {
		return nil, err
	}
	now := e.cfg.Now()
	bal.Quantity = after
	bal.UpdatedAt = now
	if err := uow.Balances().Save(ctx, bal); err != nil {
		return nil, err
	}
	entry := &entity.LedgerEntry{
		ID:            uuid.New().String(),
		ProductID:     in.ProductID,
		WarehouseID:   in.WarehouseID,
		DocumentType:  in.DocumentType,
		DocumentID:    in.DocumentID,
		Quantity:      delta,
		BalanceBefore: before,
		BalanceAfter:  after,
		UserID:        in.UserID,
		Notes:         notes,
		CreatedAt:     now,
	}
	if err := uow.Ledger().Append(ctx, entry); err != nil {
		return nil, err
	}
	return &MovementResult{BalanceBefore: before, BalanceAfter: after, Entry: entry}, nil
}

// runWithRetry abre una transacción por intento; reintenta solo ante ErrConcurrencyConflict.
func (e *StockEngine) runWithRetry(ctx context.Context, op string, fn func(context.Context, repository.UnitOfWork) error) error {
	var err error
	for attempt := 0; attempt <= e.cfg.MaxRetries; attempt++ {
		err = e.txRunner.Run(ctx, fn)
		if err == nil || !errors.Is(err, domain.ErrConcurrencyConflict) {
			return err
		}
		if attempt == e.cfg.MaxRetries {
			break
		}
		e.log.Warn().
			Str("op", op).
			Int("attempt", attempt+1).
			Err(err).
			Msg("conflicto de concurrencia, reintentando")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(e.cfg.RetryBackoff * time.Duration(attempt+1)):
		}
	}
	return err
}

func (e *StockEngine) logCommitted(op string, entry *entity.LedgerEntry) {
	e.log.Info().
		Str("op", op).
		Str("product_id", entry.ProductID).
		Str("warehouse_id", entry.WarehouseID).
		Str("document_type", string(entry.DocumentType)).
		Str("document_id", entry.DocumentID).
		Str("delta", entry.Quantity.String()).
		Str("balance_after", entry.BalanceAfter.String()).
		Msg("movimiento de stock registrado")
}

func validateRefs(productID, userID string, docType entity.DocumentType, documentID string) error {
	if productID == "" {
		return domain.Invalid("product_id", "es requerido")
	}
	if userID == "" {
		return domain.Invalid("user_id", "es requerido")
	}
	if !docType.Valid() {
		return domain.Invalid("document_type", "no es válido")
	}
	if documentID == "" {
		return domain.Invalid("document_id", "es requerido")
	}
	return nil
}

// validateMovement: signed=true permite cantidades negativas (ajustes).
// Cantidad cero se acepta y produce un asiento con saldo antes == después.
func validateMovement(in MovementInput, signed bool) error {
	if err := validateRefs(in.ProductID, in.UserID, in.DocumentType, in.DocumentID); err != nil {
		return err
	}
	if in.WarehouseID == "" {
		return domain.Invalid("warehouse_id", "es requerido")
	}
	if !signed && in.Quantity.IsNegative() {
		return domain.Invalid("quantity", "debe ser positiva")
	}
	return inventory.CheckScale(in.Quantity)
}

func validateTransfer(in TransferInput) error {
	if err := validateRefs(in.ProductID, in.UserID, in.DocumentType, in.DocumentID); err != nil {
		return err
	}
	if in.FromWarehouseID == "" {
		return domain.Invalid("from_warehouse_id", "es requerido")
	}
	if in.ToWarehouseID == "" {
		return domain.Invalid("to_warehouse_id", "es requerido")
	}
	if in.FromWarehouseID == in.ToWarehouseID {
		return domain.ErrInvalidTransfer
	}
	if in.Quantity.IsNegative() {
		return domain.Invalid("quantity", "debe ser positiva")
	}
	return inventory.CheckScale(in.Quantity)
}
