// Package train implements policy iteration over a valid state space: a
// sequential path for one worker and a parallel path that partitions the
// space across goroutines synchronized by a value/policy barrier, plus
// the orchestrator that drives either to a stop condition and persists
// the resulting policy.
package train

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/niceyeti/gridagent/density"
	"github.com/niceyeti/gridagent/policytable"
	"github.com/niceyeti/gridagent/reward"
	"github.com/niceyeti/gridagent/valuefunc"
	"github.com/niceyeti/gridagent/vss"

	"golang.org/x/sync/errgroup"
)

// TrainData reports the state of training after each completed iteration.
type TrainData struct {
	Iteration                int
	MeanValue                float64
	MaxValueDiff             float64
	ChangedActions           int
	ChangedActionsPercentage float64
}

// StopCriteria are checked before every iteration; training stops as soon
// as any one of them is satisfied.
type StopCriteria struct {
	MaxIter                    int
	ValueTolerance             float64
	ActionsTolerance           int
	ActionsPercentageTolerance float64
}

func (s StopCriteria) shouldStop(d TrainData) bool {
	return d.Iteration >= s.MaxIter ||
		d.MaxValueDiff <= s.ValueTolerance ||
		d.ChangedActions <= s.ActionsTolerance ||
		d.ChangedActionsPercentage <= s.ActionsPercentageTolerance
}

// Config assembles everything a Trainer needs: the domain (space, policy,
// values, reward, density, discount), the degree of parallelism, the stop
// criteria, and where the resulting policy is written.
type Config[T valuefunc.Float] struct {
	Space    *vss.ValidStateSpace
	Policy   *policytable.Policy
	Values   *valuefunc.Buffers[T]
	Reward   reward.Function
	Density  density.TransitionDensity
	Discount T

	Processes int
	Stop      StopCriteria

	PolicyFilePath string
	// DryRun suppresses the final policy write, for tests and previews.
	DryRun bool
}

// Trainer runs policy iteration to convergence or until a stop criterion
// fires, then persists the learned policy. Processes == 1 selects the
// sequential path; Processes > 1 selects the parallel path. Both share
// the same per-state Bellman computation (stepper); only how the valid
// index range is divided and synchronized differs.
type Trainer[T valuefunc.Float] struct {
	cfg      Config[T]
	data     TrainData
	callback func(TrainData)

	seq *stepper[T]
	par *parallelPool[T]
}

// New validates cfg and builds a Trainer ready to Run.
func New[T valuefunc.Float](cfg Config[T]) (*Trainer[T], error) {
	if cfg.Processes <= 0 {
		return nil, fmt.Errorf("train: processes must be positive, got %d", cfg.Processes)
	}
	if cfg.Space.Len() < 3 {
		return nil, fmt.Errorf("train: valid state space has only %d states, need at least 3", cfg.Space.Len())
	}
	if cfg.Processes > cfg.Space.Len() {
		fmt.Printf("train: warning: %d processes requested for only %d valid states; %d worker(s) will do no work\n",
			cfg.Processes, cfg.Space.Len(), cfg.Processes-cfg.Space.Len())
	}

	t := &Trainer[T]{
		cfg: cfg,
		data: TrainData{
			Iteration:                0,
			MeanValue:                0,
			MaxValueDiff:             math.Inf(1),
			ChangedActions:           cfg.Space.Len(),
			ChangedActionsPercentage: 1.0,
		},
		callback: func(TrainData) {},
	}
	if cfg.Processes == 1 {
		t.seq = newStepper(cfg)
	} else {
		t.par = newParallelPool(cfg)
	}
	return t, nil
}

// RegisterCallback installs fn to be called with the latest TrainData
// after every completed iteration, e.g. for progress logging or a live
// view.
func (t *Trainer[T]) RegisterCallback(fn func(TrainData)) {
	t.callback = fn
}

// Run drives iterations until a stop criterion fires or ctx is cancelled,
// then writes the resulting policy to cfg.PolicyFilePath unless DryRun is
// set.
func (t *Trainer[T]) Run(ctx context.Context) error {
	if t.par != nil {
		return t.runParallel(ctx)
	}
	return t.runSequential(ctx)
}

func (t *Trainer[T]) runSequential(ctx context.Context) error {
	spaceLen := t.cfg.Space.Len()
	for !t.cfg.Stop.shouldStop(t.data) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t.data.Iteration++

		sum, maxDiff := t.seq.valueSweep(0, spaceLen)
		t.cfg.Values.Swap()
		t.data.MeanValue = float64(sum) / float64(spaceLen)
		t.data.MaxValueDiff = float64(maxDiff)

		changed := t.seq.policySweep(0, spaceLen)
		t.data.ChangedActions = changed
		t.data.ChangedActionsPercentage = float64(changed) / float64(spaceLen)

		t.callback(t.data)
	}
	return t.persistPolicy()
}

func (t *Trainer[T]) runParallel(ctx context.Context) error {
	spaceLen := t.cfg.Space.Len()
	innerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(innerCtx)
	for _, w := range t.par.workers {
		w := w
		g.Go(func() error {
			return runWorker(gctx, w, t.par.valueEvent, t.par.policyEvent, &t.par.barrier)
		})
	}

	for !t.cfg.Stop.shouldStop(t.data) {
		t.data.Iteration++

		t.par.barrier.Add(t.par.w)
		t.par.valueEvent.set()
		t.par.barrier.Wait()
		t.par.valueEvent.clear()
		if faulted(gctx) {
			break
		}

		t.cfg.Values.Swap()
		var sum, maxDiff float64
		for _, w := range t.par.workers {
			sum += float64(w.partialSum)
			if d := float64(w.maxDiff); d > maxDiff {
				maxDiff = d
			}
		}
		t.data.MeanValue = sum / float64(spaceLen)
		t.data.MaxValueDiff = maxDiff

		t.par.barrier.Add(t.par.w)
		t.par.policyEvent.set()
		t.par.barrier.Wait()
		t.par.policyEvent.clear()
		if faulted(gctx) {
			break
		}

		changed := 0
		for _, w := range t.par.workers {
			changed += w.changedActions
		}
		t.data.ChangedActions = changed
		t.data.ChangedActionsPercentage = float64(changed) / float64(spaceLen)

		t.callback(t.data)
	}

	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("train: worker fault: %w", err)
	}

	return t.persistPolicy()
}

func faulted(gctx context.Context) bool {
	select {
	case <-gctx.Done():
		return true
	default:
		return false
	}
}

func (t *Trainer[T]) persistPolicy() error {
	if t.cfg.DryRun {
		return nil
	}
	return t.cfg.Policy.WriteToFile(t.cfg.PolicyFilePath)
}
