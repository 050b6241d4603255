package train

import (
	"fmt"
	"math"

	"github.com/niceyeti/gridagent/density"
	"github.com/niceyeti/gridagent/geometry"
	"github.com/niceyeti/gridagent/policytable"
	"github.com/niceyeti/gridagent/reward"
	"github.com/niceyeti/gridagent/valuefunc"
	"github.com/niceyeti/gridagent/vss"
)

// stepper implements the per-state Bellman computation shared by the
// sequential iterator and every parallel worker: value-sweep and
// policy-sweep over a contiguous range of valid indices. Each worker
// (and the single sequential run) owns its own stepper; only the space,
// policy, and value buffers it points at are shared.
type stepper[T valuefunc.Float] struct {
	space    *vss.ValidStateSpace
	policy   *policytable.Policy
	values   *valuefunc.Buffers[T]
	reward   reward.Function
	density  density.TransitionDensity
	discount T
}

func newStepper[T valuefunc.Float](cfg Config[T]) *stepper[T] {
	return &stepper[T]{
		space:    cfg.Space,
		policy:   cfg.Policy,
		values:   cfg.Values,
		reward:   cfg.Reward,
		density:  cfg.Density,
		discount: cfg.Discount,
	}
}

// valueAt computes Q(state, chosen) per spec:
//
//	Q(S,a*) = r(S, S (+) a*) + gamma * sum_a p(a*,a) * V_cur[idx_next(S,a)]
//
// The reward term always uses the state reached by moving the agent by
// the chosen action (S (+) a*), regardless of that action's own
// transition probability; only the summed value term skips actions
// whose probability is exactly zero. knowsChosenValid lets a caller that
// already validated the chosen action's move (the policy sweep, via
// maskedQ) skip a redundant obstacle re-check for that one branch.
func (s *stepper[T]) valueAt(state geometry.State, stateIndex int, chosen geometry.Action, knowsChosenValid bool) T {
	mapSize := s.space.MapSize()

	chosenNext := state
	geometry.MoveCheckingBounds(&chosenNext.Agent, chosen, mapSize)
	r := T(s.reward.Reward(state, chosenNext))

	var sum T
	for _, a := range geometry.Actions {
		p := s.density.Prob(chosen, a)
		if p == 0 {
			continue
		}

		var next geometry.State
		if a == chosen {
			next = chosenNext
		} else {
			next = state
			geometry.MoveCheckingBounds(&next.Agent, a, mapSize)
		}

		var val T
		if (knowsChosenValid && a == chosen) || s.space.IsStateOutsideObstacles(next) {
			idx, err := s.space.GetValidIndex(next)
			if err != nil {
				panic(fmt.Sprintf("train: runtime invariant violated: %v is reachable by a single agent move but missing from the valid state space", next))
			}
			val = s.values.GetCurrent(idx)
		} else {
			// Out of bounds or colliding with an obstacle: stay in place.
			val = s.values.GetCurrent(stateIndex)
		}
		sum += val * T(p)
	}
	return r + s.discount*sum
}

// maskedQ returns the value of performing action a from state, or
// negative infinity if a leaves the grid or collides with an obstacle.
func (s *stepper[T]) maskedQ(state geometry.State, stateIndex int, a geometry.Action) T {
	negInf := T(math.Inf(-1))

	moved := geometry.MoveCheckingBounds(&state.Agent, a, s.space.MapSize())
	if !moved {
		return negInf
	}
	outside := s.space.IsStateOutsideObstacles(state)
	state.Agent.Undo(a)
	if !outside {
		return negInf
	}
	return s.valueAt(state, stateIndex, a, true)
}

// bestAction returns the first action (in Up, Right, Down, Left order)
// achieving the maximum masked Q-value from state.
func (s *stepper[T]) bestAction(state geometry.State, stateIndex int) geometry.Action {
	best := geometry.Actions[0]
	bestQ := s.maskedQ(state, stateIndex, best)
	for _, a := range geometry.Actions[1:] {
		q := s.maskedQ(state, stateIndex, a)
		if q > bestQ {
			bestQ = q
			best = a
		}
	}
	return best
}

// valueSweep evaluates the current policy over the contiguous valid-index
// range [start,end), writing into the "next" value buffer and returning
// the sum (for the mean) and the maximum absolute change over the range.
func (s *stepper[T]) valueSweep(start, end int) (sum, maxDiff T) {
	var state geometry.State
	for k := start; k < end; k++ {
		s.space.CopyInto(&state, k)
		chosen := s.policy.Get(k)
		newVal := s.valueAt(state, k, chosen, false)
		oldVal := s.values.GetCurrent(k)
		diff := newVal - oldVal
		if diff < 0 {
			diff = -diff
		}
		if diff > maxDiff {
			maxDiff = diff
		}
		sum += newVal
		s.values.SetNext(k, newVal)
	}
	return sum, maxDiff
}

// policySweep greedily improves the policy over [start,end), traversed in
// reverse, returning how many actions it changed.
func (s *stepper[T]) policySweep(start, end int) (changed int) {
	var state geometry.State
	for k := end - 1; k >= start; k-- {
		s.space.CopyInto(&state, k)
		newAction := s.bestAction(state, k)
		oldAction := s.policy.Get(k)
		if newAction != oldAction {
			changed++
			s.policy.Set(k, newAction)
		}
	}
	return changed
}
