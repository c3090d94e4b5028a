package redisseq

import (
	"context"
	"sync"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

func newSequence(t *testing.T) (*Sequence, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, ""), mr
}

func TestNext_MonotonaPorNombre(t *testing.T) {
	seq, mr := newSequence(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		n, err := seq.Next(ctx, "receipt_number_seq")
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	n, err := seq.Next(ctx, "transfer_number_seq")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "cada nombre lleva su propio contador")

	got, err := mr.Get(DefaultPrefix + "receipt_number_seq")
	require.NoError(t, err)
	assert.Equal(t, "3", got)
}

func TestNext_ConcurrenteSinHuecosNiDuplicados(t *testing.T) {
	seq, _ := newSequence(t)
	ctx := context.Background()

	const workers = 50
	var (
		mu   sync.Mutex
		seen = map[int64]bool{}
		wg   sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := seq.Next(ctx, "delivery_order_number_seq")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			seen[n] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	require.Len(t, seen, workers)
	for i := int64(1); i <= workers; i++ {
		assert.True(t, seen[i], "falta %d", i)
	}
}

func TestSeed_SoloAvanza(t *testing.T) {
	seq, _ := newSequence(t)
	ctx := context.Background()

	require.NoError(t, seq.Seed(ctx, "adjustment_number_seq", 100))
	n, err := seq.Next(ctx, "adjustment_number_seq")
	require.NoError(t, err)
	assert.Equal(t, int64(101), n)

	require.NoError(t, seq.Seed(ctx, "adjustment_number_seq", 5))
	n, err = seq.Next(ctx, "adjustment_number_seq")
	require.NoError(t, err)
	assert.Equal(t, int64(102), n)
}

func TestNext_NombreVacio(t *testing.T) {
	seq, _ := newSequence(t)
	_, err := seq.Next(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNext_ErrorDeRedis(t *testing.T) {
	seq, mr := newSequence(t)
	mr.SetError("LOADING redis está cargando")
	_, err := seq.Next(context.Background(), "receipt_number_seq")
	assert.Error(t, err)
}
