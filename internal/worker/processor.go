package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"syllabus-content-service/internal/telemetry"
)

// ErrQueueFull is returned when a bounded pool cannot admit more work.
var ErrQueueFull = errors.New("worker queue full")

// Handler executes one job of a given kind. Handlers record job failure in the
// store themselves; a returned error is only logged.
type Handler func(ctx context.Context, id string) error

// Pool runs submitted jobs in the background. With maxConcurrent <= 0 every
// job gets its own goroutine right away. Otherwise at most maxConcurrent jobs
// run at once and up to queueSize more wait for a free slot.
type Pool struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	wg       sync.WaitGroup
	admit    chan struct{}
	running  chan struct{}
	closed   bool
	log      *zap.SugaredLogger
}

func NewPool(maxConcurrent, queueSize int, log *zap.Logger) *Pool {
	if log == nil {
		log = zap.L()
	}
	p := &Pool{
		handlers: make(map[string]Handler),
		log:      log.Named("worker").Sugar(),
	}
	if maxConcurrent > 0 {
		p.admit = make(chan struct{}, maxConcurrent+max(queueSize, 0))
		p.running = make(chan struct{}, maxConcurrent)
	}
	return p
}

// RegisterHandler binds a handler to a job kind.
func (p *Pool) RegisterHandler(kind string, handler Handler) {
	if kind == "" || handler == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[kind] = handler
}

// Slot is an admitted but not yet started job. Exactly one of Submit or
// Release must be called.
type Slot struct {
	pool *Pool
	once sync.Once
}

// Reserve admits one job without starting it, so callers can persist the job
// record first and still reject cleanly when the pool is saturated.
func (p *Pool) Reserve() (*Slot, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, errors.New("worker pool closed")
	}
	if p.admit != nil {
		select {
		case p.admit <- struct{}{}:
		default:
			telemetry.QueueRejects.Inc()
			return nil, ErrQueueFull
		}
	}
	p.wg.Add(1)
	return &Slot{pool: p}, nil
}

// Submit starts job id of the given kind in the reserved slot.
func (s *Slot) Submit(kind, id string) error {
	p := s.pool
	p.mu.RLock()
	handler, ok := p.handlers[kind]
	p.mu.RUnlock()
	if !ok {
		s.Release()
		return fmt.Errorf("no handler registered for kind %q", kind)
	}

	started := false
	s.once.Do(func() {
		started = true
		telemetry.JobsSubmitted.WithLabelValues(kind).Inc()
		go p.run(kind, id, handler)
	})
	if !started {
		return errors.New("slot already used")
	}
	return nil
}

// Release gives back a slot that will not be used.
func (s *Slot) Release() {
	s.once.Do(func() {
		s.pool.release()
	})
}

// Submit reserves a slot and starts the job in one step.
func (p *Pool) Submit(kind, id string) error {
	slot, err := p.Reserve()
	if err != nil {
		return err
	}
	return slot.Submit(kind, id)
}

func (p *Pool) release() {
	if p.admit != nil {
		<-p.admit
	}
	p.wg.Done()
}

// run uses a background context: jobs are never cancelled once admitted.
func (p *Pool) run(kind, id string, handler Handler) {
	defer p.release()
	if p.running != nil {
		p.running <- struct{}{}
		defer func() { <-p.running }()
	}

	telemetry.InFlightGauge.Inc()
	defer telemetry.InFlightGauge.Dec()
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorw("job panicked", "kind", kind, "id", id, "panic", r)
		}
	}()

	if err := handler(context.Background(), id); err != nil {
		p.log.Warnw("job failed", "kind", kind, "id", id, "error", err)
	}
}

// Wait blocks until every admitted job has finished or been released.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Close stops admitting jobs and waits for the admitted ones.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
}
