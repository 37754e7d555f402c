package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

func TestUnboundedPoolRunsEveryJob(t *testing.T) {
	p := NewPool(0, 0, zap.NewNop())
	var ran atomic.Int32
	p.RegisterHandler("gen", func(ctx context.Context, id string) error {
		ran.Add(1)
		return nil
	})

	for i := 0; i < 50; i++ {
		if err := p.Submit("gen", "job"); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	p.Wait()
	if ran.Load() != 50 {
		t.Fatalf("expected 50 runs got %d", ran.Load())
	}
}

func TestBoundedPoolRejectsWhenFull(t *testing.T) {
	p := NewPool(1, 1, zap.NewNop())
	block := make(chan struct{})
	started := make(chan struct{}, 2)
	p.RegisterHandler("export", func(ctx context.Context, id string) error {
		started <- struct{}{}
		<-block
		return nil
	})

	if err := p.Submit("export", "a"); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	<-started
	if err := p.Submit("export", "b"); err != nil {
		t.Fatalf("second submit should queue: %v", err)
	}
	if err := p.Submit("export", "c"); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull got %v", err)
	}

	close(block)
	p.Wait()

	if err := p.Submit("export", "d"); err != nil {
		t.Fatalf("submit after drain: %v", err)
	}
	p.Wait()
}

func TestReleasedSlotFreesCapacity(t *testing.T) {
	p := NewPool(1, 0, zap.NewNop())
	p.RegisterHandler("gen", func(ctx context.Context, id string) error { return nil })

	slot, err := p.Reserve()
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := p.Reserve(); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull got %v", err)
	}
	slot.Release()
	slot.Release()

	if err := p.Submit("gen", "x"); err != nil {
		t.Fatalf("submit after release: %v", err)
	}
	p.Wait()
}

func TestHandlerErrorsAndPanicsAreContained(t *testing.T) {
	p := NewPool(0, 0, zap.NewNop())
	p.RegisterHandler("bad", func(ctx context.Context, id string) error { return errors.New("boom") })
	p.RegisterHandler("panic", func(ctx context.Context, id string) error { panic("oops") })

	_ = p.Submit("bad", "1")
	_ = p.Submit("panic", "2")
	p.Wait()

	if err := p.Submit("missing", "3"); err == nil {
		t.Fatalf("expected error for unregistered kind")
	}
	p.Wait()
}

func TestClosedPoolRejects(t *testing.T) {
	p := NewPool(0, 0, zap.NewNop())
	p.RegisterHandler("gen", func(ctx context.Context, id string) error { return nil })
	p.Close()
	if err := p.Submit("gen", "x"); err == nil {
		t.Fatalf("expected closed pool to reject")
	}
}

func TestCloseWaitsForConcurrentSubmits(t *testing.T) {
	p := NewPool(4, 64, zap.NewNop())
	var ran, accepted atomic.Int32
	p.RegisterHandler("gen", func(ctx context.Context, id string) error {
		ran.Add(1)
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := p.Submit("gen", "job"); err == nil {
				accepted.Add(1)
			}
		}()
	}
	p.Close()
	wg.Wait()

	if ran.Load() != accepted.Load() {
		t.Fatalf("close returned before accepted jobs ran: ran=%d accepted=%d", ran.Load(), accepted.Load())
	}
	if err := p.Submit("gen", "late"); err == nil {
		t.Fatalf("expected submit after close to fail")
	}
}
