package analytics_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

func TestDashboard_GetSummary(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "p1", SKU: "A"}))
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "p2", SKU: "B"}))

	eng := inventory.NewStockEngine(memory.NewTxRunner(store), zerolog.Nop(), inventory.EngineConfig{})
	for _, m := range []struct {
		p   string
		qty int64
	}{{"p1", 10}, {"p2", 11}} {
		_, err := eng.Receive(ctx, inventory.MovementInput{
			ProductID: m.p, WarehouseID: "w1", Quantity: decimal.NewFromInt(m.qty), UserID: "u",
			DocumentType: entity.DocumentTypeReceipt, DocumentID: "r",
		})
		require.NoError(t, err)
	}
	require.NoError(t, store.Documents().Create(ctx, &entity.Document{ID: "d1", Number: "REC-000001", Type: entity.DocumentTypeReceipt, Status: entity.DocumentStatusDraft}))
	require.NoError(t, store.Documents().Create(ctx, &entity.Document{ID: "d2", Number: "TRF-000001", Type: entity.DocumentTypeTransfer, Status: entity.DocumentStatusDraft}))
	require.NoError(t, store.Documents().Create(ctx, &entity.Document{ID: "d3", Number: "DO-000001", Type: entity.DocumentTypeDeliveryOrder, Status: entity.DocumentStatusValidated}))

	uc := analytics.NewDashboardUseCase(store.Products(), store.Balances(), store.Documents(), store.Alerts(), decimal.Zero)
	out, err := uc.GetSummary(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, out.TotalProducts)
	assert.Equal(t, 1, out.LowStockCount, "10 cuenta como bajo con umbral 10; 11 no")
	assert.True(t, out.LowStockThreshold.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 1, out.PendingReceipts)
	assert.Equal(t, 0, out.PendingDeliveries)
	assert.Equal(t, 1, out.PendingTransfers)
	assert.Equal(t, 0, out.PendingAdjustments)
	assert.Equal(t, 0, out.ActiveAlerts)
}
