package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestSingleFlightSharesInFlightResult(t *testing.T) {
	t.Parallel()

	var g SingleFlight
	var calls atomic.Int32
	gate := make(chan struct{})

	const waiters = 10
	results := make([]any, waiters)
	shared := make([]bool, waiters)

	var wg sync.WaitGroup
	for i := 0; i < waiters; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			val, err, wasShared := g.Do("page", func() (any, error) {
				calls.Add(1)
				<-gate
				return "body", nil
			})
			if err != nil {
				t.Errorf("do: %v", err)
			}
			results[i] = val
			shared[i] = wasShared
		}()
	}

	// Give the goroutines a chance to pile onto the same key, then release.
	close(gate)
	wg.Wait()

	if got := calls.Load(); got < 1 || got > waiters {
		t.Fatalf("call count = %d", got)
	}
	sharedCount := 0
	for i := 0; i < waiters; i++ {
		if results[i] != "body" {
			t.Fatalf("result %d = %v", i, results[i])
		}
		if shared[i] {
			sharedCount++
		}
	}
	if int(calls.Load())+sharedCount != waiters {
		t.Fatalf("calls (%d) + shared (%d) != %d", calls.Load(), sharedCount, waiters)
	}
}

func TestSingleFlightSequentialCallsRunSeparately(t *testing.T) {
	t.Parallel()

	var g SingleFlight
	calls := 0
	fn := func() (any, error) {
		calls++
		return calls, nil
	}

	first, err, _ := g.Do("key", fn)
	if err != nil || first != 1 {
		t.Fatalf("first call = %v, %v", first, err)
	}
	second, err, _ := g.Do("key", fn)
	if err != nil || second != 2 {
		t.Fatalf("completed flight was cached: %v, %v", second, err)
	}
}
