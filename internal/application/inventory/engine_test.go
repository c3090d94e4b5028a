package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testUser = "user-1"
	prodP    = "P"
	whW      = "W"
	whW1     = "W1"
	whW2     = "W2"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newEngine(t *testing.T) (*inventory.StockEngine, *memory.Store) {
	t.Helper()
	store := memory.New()
	eng := inventory.NewStockEngine(memory.NewTxRunner(store), zerolog.Nop(), inventory.EngineConfig{MaxRetries: 3})
	return eng, store
}

func receiveIn(p, w, qty, doc string) inventory.MovementInput {
	return inventory.MovementInput{
		ProductID: p, WarehouseID: w, Quantity: dec(qty), UserID: testUser,
		DocumentType: entity.DocumentTypeReceipt, DocumentID: doc,
	}
}

func deliverIn(p, w, qty, doc string) inventory.MovementInput {
	in := receiveIn(p, w, qty, doc)
	in.DocumentType = entity.DocumentTypeDeliveryOrder
	return in
}

func adjustIn(p, w, qty, doc, notes string) inventory.MovementInput {
	in := receiveIn(p, w, qty, doc)
	in.DocumentType = entity.DocumentTypeAdjustment
	in.Notes = notes
	return in
}

func transferIn(p, from, to, qty, doc string) inventory.TransferInput {
	return inventory.TransferInput{
		ProductID: p, FromWarehouseID: from, ToWarehouseID: to, Quantity: dec(qty),
		UserID: testUser, DocumentType: entity.DocumentTypeTransfer, DocumentID: doc,
	}
}

func balanceOf(t *testing.T, store *memory.Store, p, w string) decimal.Decimal {
	t.Helper()
	b, err := store.Balances().Get(context.Background(), p, w)
	require.NoError(t, err)
	if b == nil {
		return decimal.Zero
	}
	return b.Quantity
}

func ledgerOf(t *testing.T, store *memory.Store, p, w string) []*entity.LedgerEntry {
	t.Helper()
	entries, _, err := store.Ledger().List(context.Background(), repository.LedgerFilter{
		ProductID: p, WarehouseID: w, Ascending: true,
	})
	require.NoError(t, err)
	return entries
}

func seed(t *testing.T, eng *inventory.StockEngine, p, w, qty string) {
	t.Helper()
	_, err := eng.Receive(context.Background(), receiveIn(p, w, qty, "seed-"+p+"-"+w))
	require.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios end-to-end
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_Escenario1_RecepcionCreaSaldo(t *testing.T) {
	eng, store := newEngine(t)
	ctx := context.Background()

	res, err := eng.Receive(ctx, receiveIn(prodP, whW, "100", "doc1"))
	require.NoError(t, err)
	assert.True(t, res.BalanceBefore.IsZero())
	assert.True(t, res.BalanceAfter.Equal(dec("100")))

	assert.True(t, balanceOf(t, store, prodP, whW).Equal(dec("100")))
	entries := ledgerOf(t, store, prodP, whW)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Quantity.Equal(dec("100")))
	assert.True(t, entries[0].BalanceBefore.IsZero())
	assert.True(t, entries[0].BalanceAfter.Equal(dec("100")))
	assert.Equal(t, entity.DocumentTypeReceipt, entries[0].DocumentType)
	assert.Equal(t, "doc1", entries[0].DocumentID)
	assert.Equal(t, testUser, entries[0].UserID)
}

func TestEngine_Escenario2y3_EntregaYStockInsuficiente(t *testing.T) {
	eng, store := newEngine(t)
	ctx := context.Background()
	seed(t, eng, prodP, whW, "100")

	res, err := eng.Deliver(ctx, deliverIn(prodP, whW, "30", "doc2"))
	require.NoError(t, err)
	assert.True(t, res.Entry.Quantity.Equal(dec("-30")))
	assert.True(t, res.Entry.BalanceBefore.Equal(dec("100")))
	assert.True(t, res.Entry.BalanceAfter.Equal(dec("70")))
	assert.True(t, balanceOf(t, store, prodP, whW).Equal(dec("70")))

	_, err = eng.Deliver(ctx, deliverIn(prodP, whW, "1000", "doc3"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	var se *domain.StockError
	require.True(t, errors.As(err, &se))
	assert.True(t, se.Available.Equal(dec("70")))
	assert.True(t, se.Requested.Equal(dec("1000")))

	assert.True(t, balanceOf(t, store, prodP, whW).Equal(dec("70")), "el saldo no debe cambiar")
	assert.Len(t, ledgerOf(t, store, prodP, whW), 2, "no debe crearse asiento para doc3")
}

func TestEngine_Escenario4_Traslado(t *testing.T) {
	eng, store := newEngine(t)
	ctx := context.Background()
	seed(t, eng, prodP, whW1, "50")

	res, err := eng.Transfer(ctx, transferIn(prodP, whW1, whW2, "20", "doc4"))
	require.NoError(t, err)

	assert.True(t, balanceOf(t, store, prodP, whW1).Equal(dec("30")))
	assert.True(t, balanceOf(t, store, prodP, whW2).Equal(dec("20")))

	assert.Equal(t, whW1, res.From.Entry.WarehouseID)
	assert.True(t, res.From.Entry.Quantity.Equal(dec("-20")))
	assert.Equal(t, whW2, res.To.Entry.WarehouseID)
	assert.True(t, res.To.Entry.Quantity.Equal(dec("20")))
	assert.True(t, res.To.BalanceBefore.IsZero())

	docEntries, total, err := store.Ledger().List(ctx, repository.LedgerFilter{DocumentID: "doc4"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, docEntries, 2)
	assert.Contains(t, docEntries[0].Notes+docEntries[1].Notes, "Transfer out: ")
	assert.Contains(t, docEntries[0].Notes+docEntries[1].Notes, "Transfer in: ")
}

func TestEngine_Escenario5_AjusteNegativoRechazado(t *testing.T) {
	eng, store := newEngine(t)
	seed(t, eng, prodP, whW, "10")

	_, err := eng.Adjust(context.Background(), adjustIn(prodP, whW, "-15", "doc5", "shrinkage"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNegativeStockResult)
	assert.True(t, balanceOf(t, store, prodP, whW).Equal(dec("10")))
	assert.Len(t, ledgerOf(t, store, prodP, whW), 1)
}

func TestEngine_Escenario6_AjustePositivo(t *testing.T) {
	eng, store := newEngine(t)
	seed(t, eng, prodP, whW, "10")

	res, err := eng.Adjust(context.Background(), adjustIn(prodP, whW, "5", "doc6", "recount"))
	require.NoError(t, err)
	assert.True(t, res.Entry.Quantity.Equal(dec("5")))
	assert.True(t, res.Entry.BalanceBefore.Equal(dec("10")))
	assert.True(t, res.Entry.BalanceAfter.Equal(dec("15")))
	assert.Equal(t, "recount", res.Entry.Notes)
	assert.True(t, balanceOf(t, store, prodP, whW).Equal(dec("15")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Bordes
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_EntregaExactaDejaCero(t *testing.T) {
	eng, store := newEngine(t)
	seed(t, eng, prodP, whW, "70")

	_, err := eng.Deliver(context.Background(), deliverIn(prodP, whW, "70", "d"))
	require.NoError(t, err)
	assert.True(t, balanceOf(t, store, prodP, whW).IsZero())
}

func TestEngine_EntregaUnCentavoDeMas(t *testing.T) {
	eng, store := newEngine(t)
	seed(t, eng, prodP, whW, "70")

	_, err := eng.Deliver(context.Background(), deliverIn(prodP, whW, "70.01", "d"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, balanceOf(t, store, prodP, whW).Equal(dec("70")))
}

func TestEngine_TrasladoMismaBodega(t *testing.T) {
	eng, store := newEngine(t)

	_, err := eng.Transfer(context.Background(), transferIn(prodP, whW, whW, "1", "t"))
	assert.ErrorIs(t, err, domain.ErrInvalidTransfer)

	b, err := store.Balances().Get(context.Background(), prodP, whW)
	require.NoError(t, err)
	assert.Nil(t, b, "no debe crearse ningún saldo")
}

func TestEngine_AjusteUnCentavoBajoCero(t *testing.T) {
	eng, store := newEngine(t)
	seed(t, eng, prodP, whW, "10")

	_, err := eng.Adjust(context.Background(), adjustIn(prodP, whW, "-10.01", "a", ""))
	assert.ErrorIs(t, err, domain.ErrNegativeStockResult)

	_, err = eng.Adjust(context.Background(), adjustIn(prodP, whW, "-10", "a", ""))
	require.NoError(t, err)
	assert.True(t, balanceOf(t, store, prodP, whW).IsZero())
}

func TestEngine_TrasladoSinStockNoCreaDestino(t *testing.T) {
	eng, store := newEngine(t)
	seed(t, eng, prodP, whW1, "5")

	_, err := eng.Transfer(context.Background(), transferIn(prodP, whW1, whW2, "6", "t"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	b, err := store.Balances().Get(context.Background(), prodP, whW2)
	require.NoError(t, err)
	assert.Nil(t, b, "la creación perezosa del destino debe revertirse")
	assert.True(t, balanceOf(t, store, prodP, whW1).Equal(dec("5")))
}

func TestEngine_CantidadCeroRegistraAsiento(t *testing.T) {
	eng, store := newEngine(t)
	seed(t, eng, prodP, whW, "3")

	res, err := eng.Receive(context.Background(), receiveIn(prodP, whW, "0", "z"))
	require.NoError(t, err)
	assert.True(t, res.BalanceBefore.Equal(res.BalanceAfter))
	assert.Len(t, ledgerOf(t, store, prodP, whW), 2)
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_ValidacionDeEntrada(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		in    inventory.MovementInput
		field string
	}{
		{"sin producto", receiveIn("", whW, "1", "d"), "product_id"},
		{"sin bodega", receiveIn(prodP, "", "1", "d"), "warehouse_id"},
		{"sin documento", receiveIn(prodP, whW, "1", ""), "document_id"},
		{"cantidad negativa", receiveIn(prodP, whW, "-1", "d"), "quantity"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := eng.Receive(ctx, tc.in)
			require.Error(t, err)
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.field, ve.Field)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	bad := receiveIn(prodP, whW, "1", "d")
	bad.DocumentType = "Invoice"
	_, err := eng.Receive(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	noUser := deliverIn(prodP, whW, "1", "d")
	noUser.UserID = ""
	_, err = eng.Deliver(ctx, noUser)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEngine_RechazaMasDeCuatroDecimales(t *testing.T) {
	eng, store := newEngine(t)
	ctx := context.Background()
	seed(t, eng, prodP, whW, "1")

	_, err := eng.Receive(ctx, receiveIn(prodP, whW, "0.00004", "r"))
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "quantity", ve.Field)

	_, err = eng.Adjust(ctx, adjustIn(prodP, whW, "-0.12345", "a", "merma"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = eng.Transfer(ctx, transferIn(prodP, whW, whW1, "0.00001", "t"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.True(t, balanceOf(t, store, prodP, whW).Equal(dec("1")))
	assert.Len(t, ledgerOf(t, store, prodP, whW), 1, "ninguna cantidad rechazada deja asiento")

	res, err := eng.Receive(ctx, receiveIn(prodP, whW, "0.50000", "r2"))
	require.NoError(t, err, "los ceros a la derecha no cuentan como decimales")
	assert.True(t, res.BalanceAfter.Equal(dec("1.5")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Invariantes
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_SaldoIgualSumaDelLedger(t *testing.T) {
	eng, store := newEngine(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 300; i++ {
		qty := decimal.New(int64(rng.Intn(5000)), -2)
		doc := fmt.Sprintf("doc-%d", i)
		switch rng.Intn(3) {
		case 0:
			_, _ = eng.Receive(ctx, receiveIn(prodP, whW, qty.String(), doc))
		case 1:
			_, _ = eng.Deliver(ctx, deliverIn(prodP, whW, qty.String(), doc))
		default:
			if rng.Intn(2) == 0 {
				qty = qty.Neg()
			}
			_, _ = eng.Adjust(ctx, adjustIn(prodP, whW, qty.String(), doc, ""))
		}
		assert.False(t, balanceOf(t, store, prodP, whW).IsNegative())
	}

	sum := decimal.Zero
	for _, e := range ledgerOf(t, store, prodP, whW) {
		assert.True(t, e.Consistent(), "balanceAfter debe ser balanceBefore + quantity")
		sum = sum.Add(e.Quantity)
	}
	assert.True(t, balanceOf(t, store, prodP, whW).Equal(sum))
}

func TestEngine_TrasladoIdaYVueltaRestaura(t *testing.T) {
	eng, store := newEngine(t)
	ctx := context.Background()
	seed(t, eng, prodP, whW1, "40")
	seed(t, eng, prodP, whW2, "7")

	_, err := eng.Transfer(ctx, transferIn(prodP, whW1, whW2, "12.5", "t1"))
	require.NoError(t, err)
	_, err = eng.Transfer(ctx, transferIn(prodP, whW2, whW1, "12.5", "t2"))
	require.NoError(t, err)

	assert.True(t, balanceOf(t, store, prodP, whW1).Equal(dec("40")))
	assert.True(t, balanceOf(t, store, prodP, whW2).Equal(dec("7")))

	entries, total, err := store.Ledger().List(ctx, repository.LedgerFilter{DocumentType: entity.DocumentTypeTransfer})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	net := map[string]decimal.Decimal{}
	for _, e := range entries {
		net[e.WarehouseID] = net[e.WarehouseID].Add(e.Quantity)
	}
	assert.True(t, net[whW1].IsZero())
	assert.True(t, net[whW2].IsZero())
}

func TestEngine_EntregaYRecepcionNetoCeroConDosAsientos(t *testing.T) {
	eng, store := newEngine(t)
	ctx := context.Background()
	seed(t, eng, prodP, whW, "20")

	_, err := eng.Deliver(ctx, deliverIn(prodP, whW, "8", "d"))
	require.NoError(t, err)
	_, err = eng.Receive(ctx, receiveIn(prodP, whW, "8", "r"))
	require.NoError(t, err)

	assert.True(t, balanceOf(t, store, prodP, whW).Equal(dec("20")))
	entries := ledgerOf(t, store, prodP, whW)
	require.Len(t, entries, 3)
	assert.NotEqual(t, entries[1].ID, entries[2].ID)
}

func TestEngine_LedgerMasRecientePrimero(t *testing.T) {
	eng, store := newEngine(t)
	ctx := context.Background()
	seed(t, eng, prodP, whW, "5")
	_, err := eng.Deliver(ctx, deliverIn(prodP, whW, "1", "last"))
	require.NoError(t, err)

	entries, _, err := store.Ledger().List(ctx, repository.LedgerFilter{ProductID: prodP})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "last", entries[0].DocumentID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_EntregasConcurrentesNoSobregiran(t *testing.T) {
	eng, store := newEngine(t)
	ctx := context.Background()
	seed(t, eng, prodP, whW, "50")

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, insufficient := 0, 0
	for i := 0; i < 80; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := eng.Deliver(ctx, deliverIn(prodP, whW, "1", fmt.Sprintf("c-%d", i)))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				insufficient++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, ok)
	assert.Equal(t, 30, insufficient)
	assert.True(t, balanceOf(t, store, prodP, whW).IsZero())
	assert.Len(t, ledgerOf(t, store, prodP, whW), 51)
}

func TestEngine_TrasladosCruzadosConcurrentes(t *testing.T) {
	eng, store := newEngine(t)
	ctx := context.Background()
	seed(t, eng, prodP, whW1, "100")
	seed(t, eng, prodP, whW2, "100")

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := eng.Transfer(ctx, transferIn(prodP, whW1, whW2, "1", fmt.Sprintf("a-%d", i)))
			assert.NoError(t, err)
		}(i)
		go func(i int) {
			defer wg.Done()
			_, err := eng.Transfer(ctx, transferIn(prodP, whW2, whW1, "1", fmt.Sprintf("b-%d", i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	total := balanceOf(t, store, prodP, whW1).Add(balanceOf(t, store, prodP, whW2))
	assert.True(t, total.Equal(dec("200")), "el stock total se conserva")
}

// ──────────────────────────────────────────────────────────────────────────────
// Unidad de trabajo externa y reintentos
// ──────────────────────────────────────────────────────────────────────────────

func TestEngine_InTxRevierteTodoSiFallaUnaLinea(t *testing.T) {
	eng, store := newEngine(t)
	ctx := context.Background()
	seed(t, eng, prodP, whW, "10")

	runner := memory.NewTxRunner(store)
	err := runner.Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		if _, err := eng.ReceiveInTx(ctx, uow, receiveIn(prodP, whW, "5", "multi")); err != nil {
			return err
		}
		_, err := eng.DeliverInTx(ctx, uow, deliverIn(prodP, whW, "100", "multi"))
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, balanceOf(t, store, prodP, whW).Equal(dec("10")))
	assert.Len(t, ledgerOf(t, store, prodP, whW), 1)
}

func TestEngine_InTxVeCambiosPreviosDeLaMismaTx(t *testing.T) {
	eng, store := newEngine(t)
	ctx := context.Background()

	err := memory.NewTxRunner(store).Run(ctx, func(ctx context.Context, uow repository.UnitOfWork) error {
		if _, err := eng.ReceiveInTx(ctx, uow, receiveIn(prodP, whW, "5", "x")); err != nil {
			return err
		}
		res, err := eng.DeliverInTx(ctx, uow, deliverIn(prodP, whW, "5", "x"))
		if err != nil {
			return err
		}
		assert.True(t, res.BalanceBefore.Equal(dec("5")))
		return nil
	})
	require.NoError(t, err)
	assert.True(t, balanceOf(t, store, prodP, whW).IsZero())
}

// flakyRunner falla con conflicto de concurrencia las primeras n veces.
type flakyRunner struct {
	inner    inventory.TxRunner
	failures int
	calls    int
}

func (f *flakyRunner) Run(ctx context.Context, fn func(context.Context, repository.UnitOfWork) error) error {
	f.calls++
	if f.calls <= f.failures {
		return domain.ErrConcurrencyConflict
	}
	return f.inner.Run(ctx, fn)
}

func TestEngine_ReintentaConflictos(t *testing.T) {
	store := memory.New()
	runner := &flakyRunner{inner: memory.NewTxRunner(store), failures: 2}
	eng := inventory.NewStockEngine(runner, zerolog.Nop(), inventory.EngineConfig{MaxRetries: 3, RetryBackoff: 1})

	_, err := eng.Receive(context.Background(), receiveIn(prodP, whW, "1", "r"))
	require.NoError(t, err)
	assert.Equal(t, 3, runner.calls)
}

func TestEngine_ConflictoPersistenteSeReporta(t *testing.T) {
	store := memory.New()
	runner := &flakyRunner{inner: memory.NewTxRunner(store), failures: 10}
	eng := inventory.NewStockEngine(runner, zerolog.Nop(), inventory.EngineConfig{MaxRetries: 2, RetryBackoff: 1})

	_, err := eng.Receive(context.Background(), receiveIn(prodP, whW, "1", "r"))
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.Equal(t, 3, runner.calls)
}

func TestEngine_NoReintentaErroresDeNegocio(t *testing.T) {
	store := memory.New()
	runner := &flakyRunner{inner: memory.NewTxRunner(store)}
	eng := inventory.NewStockEngine(runner, zerolog.Nop(), inventory.EngineConfig{MaxRetries: 3, RetryBackoff: 1})

	_, err := eng.Deliver(context.Background(), deliverIn(prodP, whW, "1", "d"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, runner.calls)
}
