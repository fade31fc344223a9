package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// dispatchKey marks contexts that are already executing on the dispatch
// goroutine, so reentrant calls run inline instead of deadlocking on the
// queue.
type dispatchKey struct{}

type dispatchRequest struct {
	ctx  context.Context
	fn   func(context.Context) error
	done chan error
}

// dispatcher serializes all MCP traffic onto a single goroutine, so that
// callers anywhere in the process see a plain blocking API. The goroutine
// is started lazily on first use and reused for the dispatcher's lifetime.
type dispatcher struct {
	logger *slog.Logger

	queue chan *dispatchRequest

	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
	stopChan  chan struct{}
	doneChan  chan struct{}
}

func newDispatcher(logger *slog.Logger) *dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &dispatcher{
		logger:   logger.With("component", "mcp_dispatch"),
		queue:    make(chan *dispatchRequest, 16),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// do runs fn on the dispatch goroutine and blocks until it completes. If
// the calling context is already on the dispatch goroutine the function
// runs inline.
func (d *dispatcher) do(ctx context.Context, fn func(context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if ctx.Value(dispatchKey{}) != nil {
		return fn(ctx)
	}

	d.startOnce.Do(func() {
		d.started.Store(true)
		go d.run()
	})

	req := &dispatchRequest{
		ctx:  context.WithValue(ctx, dispatchKey{}, true),
		fn:   fn,
		done: make(chan error, 1),
	}

	select {
	case d.queue <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-d.stopChan:
		return fmt.Errorf("dispatcher stopped")
	}

	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-d.stopChan:
		return fmt.Errorf("dispatcher stopped")
	}
}

func (d *dispatcher) run() {
	defer close(d.doneChan)
	for {
		select {
		case req := <-d.queue:
			if req.ctx.Err() != nil {
				req.done <- req.ctx.Err()
				continue
			}
			req.done <- d.execute(req)
		case <-d.stopChan:
			return
		}
	}
}

func (d *dispatcher) execute(req *dispatchRequest) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("panic in dispatched call", "panic", r)
			err = fmt.Errorf("dispatched call panicked: %v", r)
		}
	}()
	return req.fn(req.ctx)
}

// stop shuts the dispatch goroutine down. Pending callers get a dispatcher
// stopped error.
func (d *dispatcher) stop() {
	d.stopOnce.Do(func() {
		close(d.stopChan)
	})
	if d.started.Load() {
		<-d.doneChan
	}
}
