package alerts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Service alertas de stock bajo: un saldo por debajo de Product.MinStockLevel abre
// (o refresca) una alerta; al recuperarse, las alertas activas del par se resuelven solas.
type Service struct {
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	balances   repository.StockBalanceRepository
	alerts     repository.StockAlertRepository
	log        zerolog.Logger
	now        func() time.Time
}

// NewService construye el servicio.
func NewService(
	products repository.ProductRepository,
	warehouses repository.WarehouseRepository,
	balances repository.StockBalanceRepository,
	alerts repository.StockAlertRepository,
	log zerolog.Logger,
) *Service {
	return &Service{
		products:   products,
		warehouses: warehouses,
		balances:   balances,
		alerts:     alerts,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CheckLowStock revisa todos los productos en todas las bodegas.
func (s *Service) CheckLowStock(ctx context.Context) (*dto.LowStockCheckResponse, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	warehouses, err := s.warehouses.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &dto.LowStockCheckResponse{}
	for _, p := range products {
		for _, w := range warehouses {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := s.checkPair(ctx, p, w.ID, out); err != nil {
				return nil, err
			}
		}
	}
	s.log.Info().
		Int("created", out.Created).
		Int("updated", out.Updated).
		Int("resolved", out.Resolved).
		Msg("chequeo de stock bajo completado")
	return out, nil
}

// CheckPairs revisa solo los pares indicados (p. ej. los tocados por una validación).
func (s *Service) CheckPairs(ctx context.Context, pairs []entity.StockPair) (*dto.LowStockCheckResponse, error) {
	out := &dto.LowStockCheckResponse{}
	for _, pair := range pairs {
		p, err := s.products.GetByID(ctx, pair.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		if err := s.checkPair(ctx, p, pair.WarehouseID, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// NotifyStockChanged implementa documents.StockNotifier con un chequeo en línea.
func (s *Service) NotifyStockChanged(ctx context.Context, pairs []entity.StockPair) error {
	_, err := s.CheckPairs(ctx, pairs)
	return err
}

func (s *Service) checkPair(ctx context.Context, p *entity.Product, warehouseID string, out *dto.LowStockCheckResponse) error {
	current := decimal.Zero
	bal, err := s.balances.Get(ctx, p.ID, warehouseID)
	if err != nil {
		return err
	}
	if bal != nil {
		current = bal.Quantity
	}
	now := s.now()

	if !current.LessThan(p.MinStockLevel) {
		n, err := s.alerts.ResolveActive(ctx, p.ID, warehouseID, now)
		if err != nil {
			return err
		}
		out.Resolved += n
		return nil
	}

	active, err := s.alerts.GetActive(ctx, p.ID, warehouseID)
	if err != nil {
		return err
	}
	if active != nil {
		active.CurrentStock = current
		active.MinStockLevel = p.MinStockLevel
		active.AlertDate = now
		active.UpdatedAt = now
		if err := s.alerts.Update(ctx, active); err != nil {
			return err
		}
		out.Updated++
		return nil
	}

	alert := &entity.StockAlert{
		ID:            uuid.New().String(),
		ProductID:     p.ID,
		WarehouseID:   warehouseID,
		CurrentStock:  current,
		MinStockLevel: p.MinStockLevel,
		AlertDate:     now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		// Otro chequeo concurrente ya abrió la alerta del par.
		if errors.Is(err, domain.ErrDuplicate) {
			return nil
		}
		return err
	}
	out.Created++
	s.log.Warn().
		Str("product_id", p.ID).
		Str("sku", p.SKU).
		Str("warehouse_id", warehouseID).
		Str("current", current.String()).
		Str("min", p.MinStockLevel.String()).
		Msg("alerta de stock bajo")
	return nil
}

// Resolve marca una alerta como resuelta manualmente.
func (s *Service) Resolve(ctx context.Context, alertID, userID string) (*dto.StockAlertResponse, error) {
	alert, err := s.alerts.GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, domain.ErrNotFound
	}
	if alert.IsResolved {
		return nil, domain.ErrConflict
	}
	now := s.now()
	alert.IsResolved = true
	alert.ResolvedBy = userID
	alert.ResolvedAt = &now
	alert.UpdatedAt = now
	if err := s.alerts.Update(ctx, alert); err != nil {
		return nil, err
	}
	return toAlertResponse(alert), nil
}

// ListActive alertas sin resolver, más recientes primero.
func (s *Service) ListActive(ctx context.Context) ([]dto.StockAlertResponse, error) {
	list, err := s.alerts.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockAlertResponse, 0, len(list))
	for _, a := range list {
		out = append(out, *toAlertResponse(a))
	}
	return out, nil
}

func toAlertResponse(a *entity.StockAlert) *dto.StockAlertResponse {
	return &dto.StockAlertResponse{
		ID:            a.ID,
		ProductID:     a.ProductID,
		WarehouseID:   a.WarehouseID,
		CurrentStock:  a.CurrentStock,
		MinStockLevel: a.MinStockLevel,
		AlertDate:     a.AlertDate,
		IsResolved:    a.IsResolved,
		ResolvedBy:    a.ResolvedBy,
		ResolvedAt:    a.ResolvedAt,
	}
}
