package train

import (
	"context"
	"fmt"
	"sync"

	"github.com/niceyeti/gridagent/valuefunc"
)

// workerState is one worker's slice of the valid state space and the
// scratch it reports back to the coordinator after each phase.
type workerState[T valuefunc.Float] struct {
	start, end int
	stepper    *stepper[T]

	partialSum     T
	maxDiff        T
	changedActions int
}

// parallelPool holds every worker plus the two broadcast events and the
// counting-semaphore barrier (a sync.WaitGroup) the coordinator uses to
// synchronize value-sweep and policy-sweep phases across them, mirroring
// the process-shared barrier of the source system without needing any
// actual shared memory: goroutines already share the heap.
type parallelPool[T valuefunc.Float] struct {
	workers                 []*workerState[T]
	w                        int
	valueEvent, policyEvent *broadcastEvent
	barrier                 sync.WaitGroup
}

// partitionRanges splits [0,spaceSize) into w contiguous, near-equal
// intervals. When w exceeds spaceSize the trailing workers receive empty
// ranges; they still participate in every barrier, contributing nothing.
func partitionRanges(spaceSize, w int) [][2]int {
	base := spaceSize / w
	rem := spaceSize % w
	ranges := make([][2]int, w)
	start := 0
	for i := 0; i < w; i++ {
		size := base
		if rem > 0 {
			size++
			rem--
		}
		end := start + size
		ranges[i] = [2]int{start, end}
		start = end
	}
	return ranges
}

func newParallelPool[T valuefunc.Float](cfg Config[T]) *parallelPool[T] {
	ranges := partitionRanges(cfg.Space.Len(), cfg.Processes)
	workers := make([]*workerState[T], cfg.Processes)
	for i, r := range ranges {
		workers[i] = &workerState[T]{
			start:   r[0],
			end:     r[1],
			stepper: newStepper(cfg),
		}
	}
	return &parallelPool[T]{
		workers:     workers,
		w:           cfg.Processes,
		valueEvent:  newBroadcastEvent(),
		policyEvent: newBroadcastEvent(),
	}
}

// safeRun recovers a panic raised inside fn and reports it as an error,
// so that a runtime invariant violation inside one worker can propagate
// through the errgroup instead of taking the whole process down.
func safeRun(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("train: worker panic: %v", r)
		}
	}()
	fn()
	return nil
}

// runWorker is the body of one long-running worker goroutine. It loops
// forever, alternating value-sweep and policy-sweep phases, each gated by
// its broadcast event and each ending with a barrier.Done(). It exits
// with an error when its own sweep panics, and otherwise only when ctx is
// cancelled, either by the coordinator winding down a finished run or by
// errgroup cancelling every worker after one of them fails.
func runWorker[T valuefunc.Float](ctx context.Context, w *workerState[T], valueEvent, policyEvent *broadcastEvent, barrier *sync.WaitGroup) error {
	for {
		select {
		case <-valueEvent.wait():
		case <-ctx.Done():
			return ctx.Err()
		}
		perr := safeRun(func() {
			w.partialSum, w.maxDiff = w.stepper.valueSweep(w.start, w.end)
		})
		barrier.Done()
		if perr != nil {
			return perr
		}

		select {
		case <-policyEvent.wait():
		case <-ctx.Done():
			return ctx.Err()
		}
		perr = safeRun(func() {
			w.changedActions = w.stepper.policySweep(w.start, w.end)
		})
		barrier.Done()
		if perr != nil {
			return perr
		}
	}
}
