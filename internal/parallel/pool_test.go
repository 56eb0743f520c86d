package parallel

import (
	"runtime"
	"sync/atomic"
	"testing"
)

func TestPoolExecuteAll(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	var count atomic.Int64
	work := make([]func(), 100)
	for i := range work {
		work[i] = func() { count.Add(1) }
	}
	p.ExecuteAll(work)

	if got := count.Load(); got != 100 {
		t.Errorf("executed %d work items, want 100", got)
	}
}

func TestPoolExecuteAllEmpty(t *testing.T) {
	p := NewPool(2)
	defer p.Close()
	p.ExecuteAll(nil) // must not block or panic
}

func TestPoolDefaultWorkers(t *testing.T) {
	p := NewPool(0)
	defer p.Close()
	if p.Workers() != runtime.GOMAXPROCS(0) {
		t.Errorf("Workers = %d, want GOMAXPROCS = %d", p.Workers(), runtime.GOMAXPROCS(0))
	}
}

func TestPoolCloseIsIdempotent(t *testing.T) {
	p := NewPool(2)
	p.Close()
	p.Close() // second close must be a no-op

	// Work after close is dropped, not executed and not blocking.
	var count atomic.Int64
	p.ExecuteAll([]func(){func() { count.Add(1) }})
	if count.Load() != 0 {
		t.Errorf("closed pool executed %d items", count.Load())
	}
}

func TestPoolUnevenWork(t *testing.T) {
	// Mixed durations exercise the stealing path.
	p := NewPool(3)
	defer p.Close()

	var sum atomic.Int64
	work := make([]func(), 32)
	for i := range work {
		n := int64(i)
		work[i] = func() {
			total := int64(0)
			for k := int64(0); k < n*1000; k++ {
				total += k
			}
			_ = total
			sum.Add(n)
		}
	}
	p.ExecuteAll(work)

	if got := sum.Load(); got != 32*31/2 {
		t.Errorf("sum = %d, want %d", got, 32*31/2)
	}
}
