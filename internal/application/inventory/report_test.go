package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

type captureRenderer struct {
	got *inventory.StockCardReport
}

func (c *captureRenderer) RenderStockCard(_ context.Context, r inventory.StockCardReport) ([]byte, error) {
	c.got = &r
	return []byte("%PDF-fake"), nil
}

func TestReport_KardexEnOrdenCronologico(t *testing.T) {
	eng, store := newEngine(t)
	ctx := context.Background()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: prodP, SKU: "P"}))
	require.NoError(t, store.Warehouses().Create(ctx, &entity.Warehouse{ID: whW1, Code: "W1"}))

	seed(t, eng, prodP, whW1, "10")
	_, err := eng.Deliver(ctx, deliverIn(prodP, whW1, "4", "do-1"))
	require.NoError(t, err)

	r := &captureRenderer{}
	uc := inventory.NewReportUseCase(inventory.NewStockQueryUseCase(store.Balances(), store.Ledger()),
		store.Products(), store.Warehouses(), r)

	out, err := uc.StockCardPDF(ctx, prodP, whW1, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(out))
	require.NotNil(t, r.got)
	assert.Equal(t, "W1", r.got.Warehouse.Code)
	require.Len(t, r.got.Entries, 2)
	assert.Equal(t, "10", r.got.Entries[0].BalanceAfter.String())
	assert.Equal(t, "6", r.got.Entries[1].BalanceAfter.String())
}

func TestReport_ReferenciasInexistentes(t *testing.T) {
	_, store := newEngine(t)
	ctx := context.Background()
	uc := inventory.NewReportUseCase(inventory.NewStockQueryUseCase(store.Balances(), store.Ledger()),
		store.Products(), store.Warehouses(), &captureRenderer{})

	_, err := uc.BuildStockCard(ctx, "no-existe", "", nil, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: prodP, SKU: "P"}))
	_, err = uc.BuildStockCard(ctx, prodP, "bodega-x", nil, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	report, err := uc.BuildStockCard(ctx, prodP, "", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, report.Warehouse)
	assert.Empty(t, report.Entries)

	_, err = uc.BuildStockCard(ctx, "", "", nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
