package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrQueueFull = errors.New("dispatch queue full")
	ErrStopped   = errors.New("dispatch pool stopped")
)

type Task func(ctx context.Context) error

type job struct {
	name string
	fn   Task
}

// Pool runs best-effort side effects on a fixed set of workers. Submit never
// blocks: a full queue drops the task and logs it.
type Pool struct {
	workers int
	timeout time.Duration
	tasks   chan job
	logger  *logrus.Logger

	mu      sync.RWMutex
	stopped bool

	base   context.Context
	cancel context.CancelFunc

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

func NewPool(workers, queueSize int, timeout time.Duration, logger *logrus.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 128
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	base, cancel := context.WithCancel(context.Background())
	return &Pool{
		workers: workers,
		timeout: timeout,
		tasks:   make(chan job, queueSize),
		logger:  logger,
		base:    base,
		cancel:  cancel,
	}
}

func (p *Pool) Start() {
	p.startOnce.Do(func() {
		p.wg.Add(p.workers)
		for i := 0; i < p.workers; i++ {
			go p.workerLoop()
		}
	})
}

func (p *Pool) workerLoop() {
	defer p.wg.Done()
	for j := range p.tasks {
		p.run(j)
	}
}

func (p *Pool) run(j job) {
	ctx, cancel := context.WithTimeout(p.base, p.timeout)
	defer cancel()

	start := time.Now()
	err := safeCall(ctx, j.fn)
	entry := p.logger.WithFields(logrus.Fields{"task": j.name, "latency": time.Since(start).String()})
	if err != nil {
		entry.WithError(err).Warn("dispatch task failed")
		return
	}
	entry.Debug("dispatch task done")
}

func safeCall(ctx context.Context, fn Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

// Submit enqueues fn and reports whether it was accepted.
func (p *Pool) Submit(name string, fn Task) bool {
	if err := p.TrySubmit(name, fn); err != nil {
		p.logger.WithFields(logrus.Fields{"task": name}).WithError(err).Warn("dispatch task dropped")
		return false
	}
	return true
}

func (p *Pool) TrySubmit(name string, fn Task) error {
	if p == nil || fn == nil {
		return ErrStopped
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}
	select {
	case p.tasks <- job{name: name, fn: fn}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop refuses new tasks and waits for queued ones to finish. If ctx expires
// first, running tasks are cancelled.
func (p *Pool) Stop(ctx context.Context) error {
	var err error
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		close(p.tasks)
		p.mu.Unlock()

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			p.cancel()
			<-done
			err = ctx.Err()
		}
		p.cancel()
	})
	return err
}

func (p *Pool) Pending() int {
	return len(p.tasks)
}
