package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/motlupets/storefront/internal/core/ports"
)

const (
	defaultWorkers     = 4
	defaultTaskTimeout = 30 * time.Second
	channelBuffer      = 256
)

var errTaskPanicked = errors.New("task panicked")

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithTaskTimeout bounds the run time of each task.
func WithTaskTimeout(d time.Duration) Option {
	return func(dp *Dispatcher) {
		if d > 0 {
			dp.timeout = d
		}
	}
}

// WithResultHook is called after every task with its name and outcome.
func WithResultHook(fn func(name string, err error)) Option {
	return func(dp *Dispatcher) { dp.onResult = fn }
}

// Dispatcher runs background tasks on a fixed set of workers. Tasks sharing
// a key hash to the same worker and run in submission order.
type Dispatcher struct {
	workers  []chan ports.Task
	timeout  time.Duration
	onResult func(name string, err error)
	log      zerolog.Logger

	mu     sync.RWMutex
	closed bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger, opts ...Option) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.Task, numWorkers),
		timeout: defaultTaskTimeout,
		log:     log.With().Str("component", "dispatcher").Logger(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Task, channelBuffer)
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches all worker goroutines. Tasks inherit the values of ctx but
// not its cancellation: workers keep draining their queues after ctx is done
// and exit only once Stop closes them.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(context.WithoutCancel(ctx))
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Submit queues t on the worker for t.Key. It never blocks: when the worker
// queue is full or the dispatcher is stopped the task is dropped.
func (d *Dispatcher) Submit(t ports.Task) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn().Str("task", t.Name).Msg("dispatcher stopped, task dropped")
		return
	}
	select {
	case d.workers[d.shardIndex(t.Key)] <- t:
	default:
		d.log.Warn().Str("task", t.Name).Str("key", t.Key).Msg("worker queue full, task dropped")
	}
}

// Stop refuses new tasks and waits for queued ones to finish. If ctx expires
// first, running tasks are cancelled and ctx's error is returned.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		d.cancelTasks()
		return nil
	case <-ctx.Done():
		d.cancelTasks()
		return ctx.Err()
	}
}

func (d *Dispatcher) cancelTasks() {
	if d.cancel != nil {
		d.cancel()
	}
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Task) {
	defer d.wg.Done()
	for t := range ch {
		d.run(ctx, id, t)
	}
}

func (d *Dispatcher) run(ctx context.Context, id int, t ports.Task) {
	taskCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				d.log.Error().Interface("panic", r).Str("task", t.Name).Msg("task panicked")
				err = errTaskPanicked
			}
		}()
		return t.Run(taskCtx)
	}()

	if err != nil {
		d.log.Error().Err(err).
			Str("task", t.Name).
			Str("key", t.Key).
			Int("worker_id", id).
			Msg("task failed")
	}
	if d.onResult != nil {
		d.onResult(t.Name, err)
	}
}
