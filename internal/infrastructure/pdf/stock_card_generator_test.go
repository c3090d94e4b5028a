package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func entry(qty, before string, notes string) *entity.LedgerEntry {
	q := decimal.RequireFromString(qty)
	b := decimal.RequireFromString(before)
	return &entity.LedgerEntry{
		ID: "e", ProductID: "p1", WarehouseID: "w1", DocumentType: entity.DocumentTypeReceipt,
		DocumentID: "doc-123456789", Quantity: q, BalanceBefore: b, BalanceAfter: b.Add(q),
		Notes: notes, CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestRenderStockCard_GeneraPDF(t *testing.T) {
	g := NewStockCardGenerator(language.Spanish)
	out, err := g.RenderStockCard(context.Background(), inventory.StockCardReport{
		Product:     &entity.Product{ID: "p1", SKU: "TOR-01", Name: "Tornillo", Unit: "pcs"},
		Warehouse:   &entity.Warehouse{ID: "w1", Code: "BOG", Name: "Bogotá"},
		Entries:     []*entity.LedgerEntry{entry("100", "0", "Receipt REC-000001"), entry("-30", "100", "Delivery Order DO-000001")},
		GeneratedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderStockCard_SinMovimientos(t *testing.T) {
	g := NewStockCardGenerator(language.Spanish)
	out, err := g.RenderStockCard(context.Background(), inventory.StockCardReport{
		Product:     &entity.Product{ID: "p1", SKU: "TOR-01", Name: "Tornillo"},
		GeneratedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestQty_FormatoLocalizado(t *testing.T) {
	g := NewStockCardGenerator(language.English)
	assert.Equal(t, "12,345", g.qty(decimal.NewFromInt(12345)))
	assert.Equal(t, "1,234.50", g.qty(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "0", g.qty(decimal.Zero))
}

func TestTruncateYShortID(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "12345678", shortID("1234567890"))
	assert.Equal(t, "abc", shortID("abc"))
}
