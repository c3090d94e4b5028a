// Package pdf genera la tarjeta de kardex (stock card) de un producto.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: SKU + Nombre           │  Bodega + Período          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Documento | Notas | Entrada | Salida | Saldo │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Entradas / Salidas / Saldo final                   │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorOut     = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ inventory.StockCardRenderer = (*StockCardGenerator)(nil)

// StockCardGenerator implementa inventory.StockCardRenderer usando Maroto v2.
type StockCardGenerator struct {
	printer *message.Printer
}

// NewStockCardGenerator construye el generador. Las cantidades se formatean según lang.
func NewStockCardGenerator(lang language.Tag) *StockCardGenerator {
	return &StockCardGenerator{printer: message.NewPrinter(lang)}
}

// RenderStockCard genera el PDF y devuelve sus bytes.
func (g *StockCardGenerator) RenderStockCard(_ context.Context, r inventory.StockCardReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Kardex "+r.Product.SKU, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, e := range r.Entries {
		m.AddRows(g.entryRow(e, r.Warehouse == nil))
	}
	if len(r.Entries) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin movimientos en el período.", props.Text{Size: 8, Top: 2, Align: align.Center, Color: colorGray}),
		)))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(r.Entries))
	m.AddRows(row.New(6).Add(col.New(12).Add(
		text.New("Generado "+r.GeneratedAt.Format("02/01/2006 15:04 MST"), props.Text{
			Size: 6.5, Color: colorGray, Top: 2, Align: align.Right,
		}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar kardex: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *StockCardGenerator) headerRow(r inventory.StockCardReport) core.Row {
	warehouse := "Todas las bodegas"
	if r.Warehouse != nil {
		warehouse = r.Warehouse.Code + " · " + r.Warehouse.Name
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New("KARDEX DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(r.Product.SKU+"  "+r.Product.Name, props.Text{
				Style: fontstyle.Bold, Size: 12, Top: 6,
			}),
			text.New("Unidad: "+nonEmpty(r.Product.Unit, "—"), props.Text{
				Size: 8, Top: 13, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(warehouse, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1,
			}),
			text.New("Período: "+period(r), props.Text{
				Size: 8, Align: align.Right, Top: 7, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("Documento", 2, align.Left),
		h("Detalle", 3, align.Left),
		h("Entrada", 1, align.Right),
		h("Salida", 1, align.Right),
		h("Saldo ant.", 1, align.Right),
		h("Saldo", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func (g *StockCardGenerator) entryRow(e *entity.LedgerEntry, showWarehouse bool) core.Row {
	in, out := "", ""
	if e.Quantity.IsNegative() {
		out = g.qty(e.Quantity.Neg())
	} else {
		in = g.qty(e.Quantity)
	}
	detail := e.Notes
	if showWarehouse {
		detail = "[" + e.WarehouseID + "] " + detail
	}
	cell := func(s string, size int, a align.Type, c *props.Color) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 7.5, Align: a, Top: 1, Left: 1, Right: 1, Color: c}))
	}
	return row.New(7).Add(
		cell(e.CreatedAt.Format("02/01/2006 15:04"), 2, align.Left, nil),
		cell(string(e.DocumentType)+" "+shortID(e.DocumentID), 2, align.Left, nil),
		cell(truncate(detail, 48), 3, align.Left, colorGray),
		cell(in, 1, align.Right, nil),
		cell(out, 1, align.Right, colorOut),
		cell(g.qty(e.BalanceBefore), 1, align.Right, colorGray),
		cell(g.qty(e.BalanceAfter), 2, align.Right, nil),
	)
}

func (g *StockCardGenerator) totalsRow(entries []*entity.LedgerEntry) core.Row {
	in, out := decimal.Zero, decimal.Zero
	for _, e := range entries {
		if e.Quantity.IsNegative() {
			out = out.Add(e.Quantity.Neg())
		} else {
			in = in.Add(e.Quantity)
		}
	}
	final := "—"
	if n := len(entries); n > 0 {
		final = g.qty(entries[n-1].BalanceAfter)
	}
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(18).Add(
		col.New(6),
		col.New(3).Add(label("Entradas:"), label("Salidas:"), label("Saldo final:")),
		col.New(3).Add(value(g.qty(in)), value(g.qty(out)), value(final)),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// qty formatea con separadores del idioma configurado y hasta 4 decimales.
func (g *StockCardGenerator) qty(d decimal.Decimal) string {
	f, _ := d.Float64()
	if d.Equal(d.Truncate(0)) {
		return g.printer.Sprintf("%d", d.IntPart())
	}
	return g.printer.Sprintf("%.2f", f)
}

func period(r inventory.StockCardReport) string {
	from, to := "inicio", "hoy"
	if r.From != nil {
		from = r.From.Format("02/01/2006")
	}
	if r.To != nil {
		to = r.To.Format("02/01/2006")
	}
	return from + " – " + to
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
