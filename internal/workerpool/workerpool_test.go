package workerpool

import (
	"sync/atomic"
	"testing"
)

func TestParallelForVisitsEveryIndexOnce(t *testing.T) {
	const n = 1000
	var hits [n]int32
	ParallelFor(n, 8, func(i int) {
		atomic.AddInt32(&hits[i], 1)
	})
	for i, h := range hits {
		if h != 1 {
			t.Fatalf("index %d visited %d times", i, h)
		}
	}
}

func TestParallelForSmallN(t *testing.T) {
	var count int32
	ParallelFor(3, 16, func(i int) {
		atomic.AddInt32(&count, 1)
	})
	if count != 3 {
		t.Fatalf("expected 3 visits, got %d", count)
	}
}

func TestRunInvokesEveryWorker(t *testing.T) {
	const workers = 6
	seen := make([]int32, workers)
	Run(workers, func(w int) {
		atomic.AddInt32(&seen[w], 1)
	})
	for w, v := range seen {
		if v != 1 {
			t.Fatalf("worker %d ran %d times", w, v)
		}
	}
}
