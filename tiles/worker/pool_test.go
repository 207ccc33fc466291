package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolRunsTasks(t *testing.T) {
	p := NewPool(3, 10, time.Second)
	defer p.Shutdown()

	var n atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		ok := p.Submit(Task{
			Work: func(ctx context.Context) error { n.Add(1); return nil },
			Done: func(err error) { wg.Done() },
		})
		if !ok {
			t.Fatalf("submit %d rejected", i)
		}
	}
	wg.Wait()
	if n.Load() != 10 {
		t.Errorf("ran %d tasks", n.Load())
	}
}

func TestPoolTimeout(t *testing.T) {
	p := NewPool(1, 1, 20*time.Millisecond)
	defer p.Shutdown()

	done := make(chan error, 1)
	p.Submit(Task{
		Work: func(ctx context.Context) error { <-ctx.Done(); return ctx.Err() },
		Done: func(err error) { done <- err },
	})
	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("err = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("task was not timed out")
	}
}

func TestPoolCancelledTaskSkipsWork(t *testing.T) {
	p := NewPool(1, 1, time.Second)
	defer p.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done := make(chan error, 1)
	ran := false
	p.Submit(Task{
		Ctx:  ctx,
		Work: func(context.Context) error { ran = true; return nil },
		Done: func(err error) { done <- err },
	})
	if err := <-done; !errors.Is(err, context.Canceled) || ran {
		t.Errorf("err = %v ran = %v", err, ran)
	}
}

func TestSubmitAfterShutdown(t *testing.T) {
	p := NewPool(1, 1, time.Second)
	p.Shutdown()
	if p.Submit(Task{Work: func(context.Context) error { return nil }}) {
		t.Error("submit after shutdown should fail")
	}
}
