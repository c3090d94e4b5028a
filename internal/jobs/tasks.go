package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

const (
	// QueueDefault cola por defecto de las tareas en segundo plano.
	QueueDefault = "default"
	// TaskLowStockCheck revisa saldos contra el stock mínimo y crea o resuelve alertas.
	TaskLowStockCheck = "stock:low-stock-check"
)

// PairPayload par producto/bodega dentro de la carga de la tarea.
type PairPayload struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
}

// LowStockCheckPayload sin pares = recorrido completo (cron); con pares = solo los afectados por un documento.
type LowStockCheckPayload struct {
	Pairs []PairPayload `json:"pairs,omitempty"`
}

// NewLowStockCheckTask construye la tarea. Pares vacíos programan el chequeo completo.
func NewLowStockCheckTask(pairs []entity.StockPair) (*asynq.Task, error) {
	payload := LowStockCheckPayload{}
	for _, p := range pairs {
		payload.Pairs = append(payload.Pairs, PairPayload{ProductID: p.ProductID, WarehouseID: p.WarehouseID})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockCheck, body, asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}

// LowStockChecker lo implementa *alerts.Service.
type LowStockChecker interface {
	CheckLowStock(ctx context.Context) (*dto.LowStockCheckResponse, error)
	CheckPairs(ctx context.Context, pairs []entity.StockPair) (*dto.LowStockCheckResponse, error)
}

// LowStockCheckHandler procesa TaskLowStockCheck contra el checker dado.
func LowStockCheckHandler(checker LowStockChecker, log zerolog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload LowStockCheckPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			log.Error().Err(err).Str("task", t.Type()).Msg("payload inválido, se descarta")
			return fmt.Errorf("low-stock payload: %v: %w", err, asynq.SkipRetry)
		}

		var (
			res *dto.LowStockCheckResponse
			err error
		)
		if len(payload.Pairs) == 0 {
			res, err = checker.CheckLowStock(ctx)
		} else {
			pairs := make([]entity.StockPair, 0, len(payload.Pairs))
			for _, p := range payload.Pairs {
				pairs = append(pairs, entity.StockPair{ProductID: p.ProductID, WarehouseID: p.WarehouseID})
			}
			res, err = checker.CheckPairs(ctx, pairs)
		}
		if err != nil {
			return err
		}
		log.Info().
			Int("pairs", len(payload.Pairs)).
			Int("created", res.Created).
			Int("updated", res.Updated).
			Int("resolved", res.Resolved).
			Msg("chequeo de stock bajo")
		return nil
	}
}
