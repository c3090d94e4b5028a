package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ReportUseCase arma el kardex (tarjeta de stock) y lo entrega al renderer.
type ReportUseCase struct {
	queries    *StockQueryUseCase
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	renderer   StockCardRenderer
	now        func() time.Time
}

// NewReportUseCase construye el caso de uso de reportes.
func NewReportUseCase(
	queries *StockQueryUseCase,
	products repository.ProductRepository,
	warehouses repository.WarehouseRepository,
	renderer StockCardRenderer,
) *ReportUseCase {
	return &ReportUseCase{
		queries:    queries,
		products:   products,
		warehouses: warehouses,
		renderer:   renderer,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// BuildStockCard reúne producto, bodega y asientos en orden cronológico.
func (uc *ReportUseCase) BuildStockCard(ctx context.Context, productID, warehouseID string, from, to *time.Time) (*StockCardReport, error) {
	entries, err := uc.queries.StockCard(ctx, productID, warehouseID, from, to)
	if err != nil {
		return nil, err
	}
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("producto %s: %w", productID, domain.ErrNotFound)
	}
	report := &StockCardReport{
		Product:     product,
		From:        from,
		To:          to,
		Entries:     entries,
		GeneratedAt: uc.now(),
	}
	if warehouseID != "" {
		w, err := uc.warehouses.GetByID(ctx, warehouseID)
		if err != nil {
			return nil, err
		}
		if w == nil {
			return nil, fmt.Errorf("bodega %s: %w", warehouseID, domain.ErrNotFound)
		}
		report.Warehouse = w
	}
	return report, nil
}

// StockCardPDF genera el PDF del kardex.
func (uc *ReportUseCase) StockCardPDF(ctx context.Context, productID, warehouseID string, from, to *time.Time) ([]byte, error) {
	report, err := uc.BuildStockCard(ctx, productID, warehouseID, from, to)
	if err != nil {
		return nil, err
	}
	return uc.renderer.RenderStockCard(ctx, *report)
}
