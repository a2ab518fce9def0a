package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbukum/scribe/component"
	"github.com/kbukum/scribe/logger"
)

// dequeueBackoff is the pause after a failed dequeue.
const dequeueBackoff = time.Second

// Pool runs queued jobs on a fixed number of workers.
type Pool struct {
	queue    Queue
	reporter *Reporter
	handler  Handler
	workers  int
	log      *logger.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	inFlight atomic.Int64
	done     atomic.Int64
}

var _ component.Component = (*Pool)(nil)

// NewPool creates a Pool. workers <= 0 means one worker.
func NewPool(queue Queue, reporter *Reporter, handler Handler, workers int, log *logger.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		queue:    queue,
		reporter: reporter,
		handler:  handler,
		workers:  workers,
		log:      log.WithComponent("jobs.pool"),
	}
}

func (p *Pool) Name() string { return "worker-pool" }

// Start launches the workers. They run until Stop or until ctx ends.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return errors.New("worker pool already running")
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel
	p.running = true
	p.wg.Add(p.workers)
	for i := range p.workers {
		go p.work(runCtx, i)
	}
	p.log.Info("worker pool started", logger.Fields("workers", p.workers))
	return nil
}

// Stop cancels the workers and waits for in-flight jobs to return.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	cancel := p.cancel
	p.running = false
	p.cancel = nil
	p.mu.Unlock()

	cancel()
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker pool: %w", ctx.Err())
	}
}

func (p *Pool) Health(_ context.Context) component.Health {
	p.mu.Lock()
	running := p.running
	p.mu.Unlock()
	if !running {
		return component.Health{Name: p.Name(), Status: component.StatusUnhealthy, Message: "not running"}
	}
	return component.Health{
		Name:    p.Name(),
		Status:  component.StatusHealthy,
		Message: fmt.Sprintf("%d in flight, %d done", p.inFlight.Load(), p.done.Load()),
	}
}

func (p *Pool) Describe() component.Description {
	return component.Description{
		Name:    "Worker Pool",
		Type:    "worker",
		Details: fmt.Sprintf("workers=%d", p.workers),
	}
}

func (p *Pool) work(ctx context.Context, id int) {
	defer p.wg.Done()
	log := p.log.WithFields(logger.Fields("worker", id))
	for {
		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("dequeue failed", logger.Fields(logger.FieldError, err.Error()))
			select {
			case <-ctx.Done():
				return
			case <-time.After(dequeueBackoff):
			}
			continue
		}
		p.inFlight.Add(1)
		p.reporter.Run(ctx, job, p.handler)
		p.inFlight.Add(-1)
		p.done.Add(1)
	}
}
