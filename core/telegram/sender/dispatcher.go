package sender

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/postbot/core/logger"
)

const component = "tg.sender"

var (
	// ErrQueueClosed is returned by Enqueue after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull is returned when the worker owning the chat has no room.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

// Options controls the behaviour of the outbound dispatcher. Zero values
// select the defaults noted on each field.
type Options struct {
	// QueueSize bounds each worker queue (64).
	QueueSize int
	// Workers is the number of parallel senders (4).
	Workers int
	// MaxRetries is the number of extra attempts after a transient failure (0).
	MaxRetries int
	// RetryBackoff is multiplied by the attempt number between retries (2s).
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent on a single job including retries (30s).
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 64
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 30 * time.Second
	}
	return o
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

// Dispatcher executes outbound Telegram calls asynchronously with retries.
// Jobs for the same chat run on the same worker, so replies to one user keep
// the order in which they were enqueued.
type Dispatcher struct {
	opts Options

	mu     sync.RWMutex
	closed bool
	queues []chan job

	wg   sync.WaitGroup
	errs atomic.Uint64
	rr   atomic.Uint64
}

// NewDispatcher starts the workers.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{opts: opts, queues: make([]chan job, opts.Workers)}
	d.wg.Add(opts.Workers)
	for i := range d.queues {
		d.queues[i] = make(chan job, opts.QueueSize)
		go d.worker(d.queues[i])
	}
	return d
}

// Enqueue schedules run on the worker owning the chat found in ctx. It
// never blocks: a full queue yields ErrQueueFull. run is retried on
// transient failures and must tolerate being called again.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.queues[d.shard(ctx)] <- job{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// shard maps a chat to a worker; jobs without a chat are spread round-robin.
func (d *Dispatcher) shard(ctx context.Context) int {
	n := uint64(len(d.queues))
	chatID := logger.ChatIDFrom(ctx)
	if chatID == 0 {
		return int(d.rr.Add(1) % n)
	}
	if chatID < 0 {
		chatID = -chatID
	}
	return int(uint64(chatID) % n)
}

// ErrorCount returns the number of jobs that finally failed.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// Close stops accepting jobs and waits for the queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, q := range d.queues {
			close(q)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) worker(q <-chan job) {
	defer d.wg.Done()
	for j := range q {
		if err := d.process(j); err != nil {
			d.errs.Add(1)
		}
	}
}
