package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

var errWriterClosed = errors.New("logger: writer closed")

// fanout copies every log line to all sinks from a single goroutine. Sinks
// are buffered and flushed whenever the queue runs dry, so bursts are
// written in batches.
type fanout struct {
	lines  chan []byte
	flush  chan chan error
	quit   chan struct{}
	closed chan struct{}
	stop   sync.Once

	sinks []*bufio.Writer

	mu  sync.Mutex
	err error
}

func newFanout(writers []io.Writer, queue int) *fanout {
	if queue <= 0 {
		queue = 256
	}
	f := &fanout{
		lines:  make(chan []byte, queue),
		flush:  make(chan chan error),
		quit:   make(chan struct{}),
		closed: make(chan struct{}),
	}
	for _, w := range writers {
		if w != nil {
			f.sinks = append(f.sinks, bufio.NewWriterSize(w, 32*1024))
		}
	}
	go f.run()
	return f
}

func (f *fanout) run() {
	defer close(f.closed)
	for {
		select {
		case p := <-f.lines:
			f.write(p)
		case ack := <-f.flush:
			f.drain()
			ack <- f.flushSinks()
		case <-f.quit:
			f.drain()
			f.fail(f.flushSinks())
			return
		}
	}
}

// drain writes every line already queued.
func (f *fanout) drain() {
	for {
		select {
		case p := <-f.lines:
			f.write(p)
		default:
			return
		}
	}
}

func (f *fanout) write(p []byte) {
	for _, s := range f.sinks {
		if _, err := s.Write(p); err != nil {
			f.fail(err)
		}
	}
	if len(f.lines) == 0 {
		f.fail(f.flushSinks())
	}
}

func (f *fanout) flushSinks() error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Write queues a copy of p. It blocks while the queue is full and fails
// after Close or once a sink has failed.
func (f *fanout) Write(p []byte) error {
	if err := f.failure(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	line := append([]byte(nil), p...)
	select {
	case <-f.quit:
		return errWriterClosed
	default:
	}
	select {
	case f.lines <- line:
		return nil
	case <-f.quit:
		return errWriterClosed
	}
}

// Flush waits until every queued line has reached the sinks.
func (f *fanout) Flush() error {
	ack := make(chan error, 1)
	select {
	case f.flush <- ack:
		if err := <-ack; err != nil {
			return err
		}
		return f.failure()
	case <-f.closed:
		return f.failure()
	}
}

// Close drains the queue, flushes the sinks and reports the first failure.
func (f *fanout) Close() error {
	f.stop.Do(func() { close(f.quit) })
	<-f.closed
	return f.failure()
}

func (f *fanout) failure() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fanout) fail(err error) {
	if err == nil {
		return
	}
	f.mu.Lock()
	if f.err == nil {
		f.err = err
	}
	f.mu.Unlock()
}
