package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motlupets/storefront/internal/core/ports"
)

type results struct {
	mu   sync.Mutex
	errs map[string]error
}

func (r *results) record(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[name] = err
}

func TestDispatcher_PreservesOrderPerKey(t *testing.T) {
	d := NewDispatcher(4, zerolog.Nop())
	d.Start(context.Background())

	var mu sync.Mutex
	var seen []int
	for i := 0; i < 50; i++ {
		d.Submit(ports.Task{Name: "append", Key: "order_1", Run: func(context.Context) error {
			mu.Lock()
			seen = append(seen, i)
			mu.Unlock()
			return nil
		}})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))

	require.Len(t, seen, 50)
	for i, v := range seen {
		assert.Equal(t, i, v)
	}
}

func TestDispatcher_ReportsFailuresAndPanics(t *testing.T) {
	res := &results{errs: make(map[string]error)}
	d := NewDispatcher(2, zerolog.Nop(), WithResultHook(res.record))
	d.Start(context.Background())

	boom := errors.New("smtp down")
	d.Submit(ports.Task{Name: "fail", Key: "a", Run: func(context.Context) error { return boom }})
	d.Submit(ports.Task{Name: "panic", Key: "b", Run: func(context.Context) error { panic("nil map") }})
	d.Submit(ports.Task{Name: "ok", Key: "c", Run: func(context.Context) error { return nil }})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))

	assert.ErrorIs(t, res.errs["fail"], boom)
	assert.ErrorIs(t, res.errs["panic"], errTaskPanicked)
	assert.NoError(t, res.errs["ok"])
}

func TestDispatcher_TaskTimeout(t *testing.T) {
	res := &results{errs: make(map[string]error)}
	d := NewDispatcher(1, zerolog.Nop(), WithTaskTimeout(20*time.Millisecond), WithResultHook(res.record))
	d.Start(context.Background())

	d.Submit(ports.Task{Name: "slow", Run: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))

	assert.ErrorIs(t, res.errs["slow"], context.DeadlineExceeded)
}

func TestDispatcher_SubmitAfterStopIsDropped(t *testing.T) {
	d := NewDispatcher(1, zerolog.Nop())
	d.Start(context.Background())
	require.NoError(t, d.Stop(context.Background()))

	ran := false
	d.Submit(ports.Task{Name: "late", Run: func(context.Context) error { ran = true; return nil }})
	assert.False(t, ran)
}

func TestDispatcher_ShardIndexStable(t *testing.T) {
	d := NewDispatcher(8, zerolog.Nop())
	first := d.shardIndex("COD_1700000000000_ab12cd34")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, d.shardIndex("COD_1700000000000_ab12cd34"))
	}
	assert.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, 8)
}

func TestDispatcher_DrainsQueueAfterParentCancelled(t *testing.T) {
	d := NewDispatcher(1, zerolog.Nop())
	parent, cancelParent := context.WithCancel(context.Background())
	d.Start(parent)

	var mu sync.Mutex
	ran := 0
	for i := 0; i < 5; i++ {
		d.Submit(ports.Task{Name: "order-email", Key: "COD_1", Run: func(ctx context.Context) error {
			select {
			case <-time.After(20 * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
			mu.Lock()
			ran++
			mu.Unlock()
			return nil
		}})
	}
	cancelParent()

	require.NoError(t, d.Stop(context.Background()))
	assert.Equal(t, 5, ran)
}

func TestDispatcher_StopDeadlineCancelsRunningTask(t *testing.T) {
	res := &results{errs: make(map[string]error)}
	d := NewDispatcher(1, zerolog.Nop(), WithTaskTimeout(time.Minute), WithResultHook(res.record))
	d.Start(context.Background())

	started := make(chan struct{})
	d.Submit(ports.Task{Name: "stuck", Run: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Stop(ctx), context.DeadlineExceeded)

	require.Eventually(t, func() bool {
		res.mu.Lock()
		defer res.mu.Unlock()
		_, ok := res.errs["stuck"]
		return ok
	}, time.Second, 5*time.Millisecond)
	res.mu.Lock()
	defer res.mu.Unlock()
	assert.ErrorIs(t, res.errs["stuck"], context.Canceled)
}
