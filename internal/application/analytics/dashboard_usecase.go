// Package analytics contiene los KPIs del dashboard de inventario.
package analytics

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// DefaultLowStockThreshold cantidad a partir de la cual un saldo cuenta como stock bajo.
var DefaultLowStockThreshold = decimal.NewFromInt(10)

// DashboardUseCase KPIs: productos, saldos bajos, alertas activas y documentos pendientes.
type DashboardUseCase struct {
	products  repository.ProductRepository
	balances  repository.StockBalanceRepository
	documents repository.DocumentRepository
	alerts    repository.StockAlertRepository
	threshold decimal.Decimal
}

// NewDashboardUseCase construye el caso de uso. threshold <= 0 usa DefaultLowStockThreshold.
func NewDashboardUseCase(
	products repository.ProductRepository,
	balances repository.StockBalanceRepository,
	documents repository.DocumentRepository,
	alerts repository.StockAlertRepository,
	threshold decimal.Decimal,
) *DashboardUseCase {
	if !threshold.IsPositive() {
		threshold = DefaultLowStockThreshold
	}
	return &DashboardUseCase{
		products:  products,
		balances:  balances,
		documents: documents,
		alerts:    alerts,
		threshold: threshold,
	}
}

// GetSummary ejecuta las consultas en paralelo; la primera que falle cancela el resto.
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardResponse, error) {
	out := &dto.DashboardResponse{LowStockThreshold: uc.threshold}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := uc.products.Count(ctx)
		out.TotalProducts = n
		return err
	})
	g.Go(func() error {
		n, err := uc.balances.CountAtOrBelow(ctx, uc.threshold)
		out.LowStockCount = n
		return err
	})
	g.Go(func() error {
		list, err := uc.alerts.ListActive(ctx)
		out.ActiveAlerts = len(list)
		return err
	})

	pending := []struct {
		docType entity.DocumentType
		dst     *int
	}{
		{entity.DocumentTypeReceipt, &out.PendingReceipts},
		{entity.DocumentTypeDeliveryOrder, &out.PendingDeliveries},
		{entity.DocumentTypeTransfer, &out.PendingTransfers},
		{entity.DocumentTypeAdjustment, &out.PendingAdjustments},
	}
	for _, p := range pending {
		p := p
		g.Go(func() error {
			n, err := uc.documents.CountByStatus(ctx, p.docType, entity.DocumentStatusDraft)
			*p.dst = n
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
