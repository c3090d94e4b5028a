package jobs_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/jobs"
)

type fakeChecker struct {
	full  int
	pairs []entity.StockPair
	err   error
}

func (f *fakeChecker) CheckLowStock(context.Context) (*dto.LowStockCheckResponse, error) {
	f.full++
	return &dto.LowStockCheckResponse{Created: 1}, f.err
}

func (f *fakeChecker) CheckPairs(_ context.Context, pairs []entity.StockPair) (*dto.LowStockCheckResponse, error) {
	f.pairs = append(f.pairs, pairs...)
	return &dto.LowStockCheckResponse{Updated: len(pairs)}, f.err
}

// ──────────────────────────────────────────────────────────────────────────────
// Handler
// ──────────────────────────────────────────────────────────────────────────────

func TestLowStockCheckHandler_SinParesRecorreTodo(t *testing.T) {
	task, err := jobs.NewLowStockCheckTask(nil)
	require.NoError(t, err)
	assert.Equal(t, jobs.TaskLowStockCheck, task.Type())

	checker := &fakeChecker{}
	require.NoError(t, jobs.LowStockCheckHandler(checker, zerolog.Nop())(context.Background(), task))
	assert.Equal(t, 1, checker.full)
	assert.Empty(t, checker.pairs)
}

func TestLowStockCheckHandler_ConPares(t *testing.T) {
	pairs := []entity.StockPair{{ProductID: "p1", WarehouseID: "w1"}, {ProductID: "p2", WarehouseID: "w2"}}
	task, err := jobs.NewLowStockCheckTask(pairs)
	require.NoError(t, err)

	var payload jobs.LowStockCheckPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "p1", payload.Pairs[0].ProductID)

	checker := &fakeChecker{}
	require.NoError(t, jobs.LowStockCheckHandler(checker, zerolog.Nop())(context.Background(), task))
	assert.Equal(t, 0, checker.full)
	assert.Equal(t, pairs, checker.pairs)
}

func TestLowStockCheckHandler_PayloadInvalidoNoReintenta(t *testing.T) {
	task := asynq.NewTask(jobs.TaskLowStockCheck, []byte("{no-json"))
	err := jobs.LowStockCheckHandler(&fakeChecker{}, zerolog.Nop())(context.Background(), task)
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestLowStockCheckHandler_ErrorDelCheckerSeReintenta(t *testing.T) {
	task, err := jobs.NewLowStockCheckTask(nil)
	require.NoError(t, err)
	boom := errors.New("db caída")

	err = jobs.LowStockCheckHandler(&fakeChecker{err: boom}, zerolog.Nop())(context.Background(), task)
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

// ──────────────────────────────────────────────────────────────────────────────
// Client
// ──────────────────────────────────────────────────────────────────────────────

func TestClient_NotifyStockChangedEncola(t *testing.T) {
	mr := miniredis.RunT(t)
	client := jobs.NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer client.Close()
	ctx := context.Background()

	require.NoError(t, client.NotifyStockChanged(ctx, []entity.StockPair{{ProductID: "p1", WarehouseID: "w1"}}))
	require.NoError(t, client.NotifyStockChanged(ctx, nil), "sin pares no encola nada")

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	n, err := rdb.LLen(ctx, "asynq:{"+jobs.QueueDefault+"}:pending").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestClient_EnqueueLowStockCheckDevuelveInfo(t *testing.T) {
	mr := miniredis.RunT(t)
	client := jobs.NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer client.Close()

	info, err := client.EnqueueLowStockCheck(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, jobs.TaskLowStockCheck, info.Type)
	assert.Equal(t, jobs.QueueDefault, info.Queue)
}

func TestNewWorker_CronInvalido(t *testing.T) {
	task, err := jobs.NewLowStockCheckTask(nil)
	require.NoError(t, err)
	_, err = jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"},
		Logger:    zerolog.Nop(),
		Cron:      []jobs.CronRegistration{{Spec: "no es cron", Task: task}},
	})
	assert.Error(t, err)
}
