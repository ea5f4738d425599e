package worker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolRunsTasks(t *testing.T) {
	p := NewPool(4, 16)
	defer p.Stop()

	var count atomic.Int64
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		if !p.Submit(func() {
			defer wg.Done()
			count.Add(1)
		}) {
			t.Fatal("Submit() rejected a task on a running pool")
		}
	}
	wg.Wait()

	if got := count.Load(); got != 10 {
		t.Errorf("ran %d tasks, want 10", got)
	}
}

func TestPoolStopWaitsForInFlight(t *testing.T) {
	p := NewPool(1, 4)

	var done atomic.Bool
	p.Submit(func() {
		time.Sleep(50 * time.Millisecond)
		done.Store(true)
	})

	p.Stop()
	if !done.Load() {
		t.Error("Stop() returned before the running task finished")
	}
}

func TestPoolRejectsAfterStop(t *testing.T) {
	p := NewPool(1, 4)
	p.Stop()

	if p.Submit(func() {}) {
		t.Error("Submit() accepted a task after Stop()")
	}
}

func TestPoolRejectsWhenQueueFull(t *testing.T) {
	p := NewPool(1, 1)
	defer p.Stop()

	release := make(chan struct{})
	p.Submit(func() { <-release })

	// Fill the single queue slot, then expect rejection.
	accepted := 0
	for range 5 {
		if p.Submit(func() {}) {
			accepted++
		}
	}
	close(release)

	if accepted > 2 {
		t.Errorf("queue of size 1 accepted %d queued tasks", accepted)
	}
}
