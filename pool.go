package md2cv

import (
	"context"
	"runtime"
	"sync"

	"go.uber.org/multierr"
)

// Pool sizing bounds. Each engine owns a Chrome process of roughly 200MB.
const (
	MinPoolSize = 1
	MaxPoolSize = 8

	// cpuDivisor leaves a core per engine for Chrome's own processes.
	cpuDivisor = 2
)

// EnginePool lends engines to concurrent exports, one caller per engine.
// Engines are built on demand until the pool holds size of them; later
// callers wait for a release.
type EnginePool struct {
	newFn func() (*Engine, error)
	slots chan struct{} // a token per engine built or being built
	idle  chan *Engine
	done  chan struct{}

	mu     sync.Mutex
	all    []*Engine
	closed bool
}

// NewEnginePool returns a pool of at most n engines built by newFn.
// n below one is raised to one.
func NewEnginePool(n int, newFn func() (*Engine, error)) *EnginePool {
	n = max(n, 1)
	return &EnginePool{
		newFn: newFn,
		slots: make(chan struct{}, n),
		idle:  make(chan *Engine, n),
		done:  make(chan struct{}),
	}
}

// Acquire returns an idle engine, builds one while the pool has room, or
// waits for a release. It fails with ErrEngineClosed once the pool is
// closed and with ctx.Err() when ctx ends first.
func (p *EnginePool) Acquire(ctx context.Context) (*Engine, error) {
	select {
	case <-p.done:
		return nil, ErrEngineClosed
	case e := <-p.idle:
		return p.lend(e)
	default:
	}

	select {
	case <-p.done:
		return nil, ErrEngineClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	case e := <-p.idle:
		return p.lend(e)
	case p.slots <- struct{}{}:
		return p.build()
	}
}

// lend hands out e unless Close won a race with the receive.
func (p *EnginePool) lend(e *Engine) (*Engine, error) {
	select {
	case <-p.done:
		return nil, ErrEngineClosed
	default:
		return e, nil
	}
}

func (p *EnginePool) build() (*Engine, error) {
	e, err := p.newFn()
	if err != nil {
		<-p.slots
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		_ = e.Close()
		return nil, ErrEngineClosed
	}
	p.all = append(p.all, e)
	return e, nil
}

// Release returns e to the pool. Engines released after Close are already
// closed and are dropped.
func (p *EnginePool) Release(e *Engine) {
	select {
	case <-p.done:
	case p.idle <- e:
	}
}

// Close closes every engine the pool built and fails pending and future
// Acquire calls. The error combines the engines' close errors.
func (p *EnginePool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	engines := p.all
	p.all = nil
	p.mu.Unlock()

	var err error
	for _, e := range engines {
		err = multierr.Append(err, e.Close())
	}
	return err
}

// Size returns the pool capacity.
func (p *EnginePool) Size() int {
	return cap(p.slots)
}

// ResolvePoolSize returns workers when positive, otherwise half of
// GOMAXPROCS clamped to [MinPoolSize, MaxPoolSize]. automaxprocs adjusts
// GOMAXPROCS to container quotas at startup.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}
	return min(max(runtime.GOMAXPROCS(0)/cpuDivisor, MinPoolSize), MaxPoolSize)
}
