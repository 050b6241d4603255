// Package reward implements the per-step reward functions.
package reward

import "github.com/niceyeti/gridagent/geometry"

// Function computes the reward of transitioning from state to next.
type Function interface {
	Reward(state, next geometry.State) float64
}

// Dense shapes every step: terminal hits are worth +-1, a one-step
// approach to target or opponent is worth +-0.25, standing adjacent to
// the opponent after the move costs -0.1, and every other step costs a
// small constant so idling is discouraged.
type Dense struct{}

func (Dense) Reward(state, next geometry.State) float64 {
	switch {
	case state.Agent == state.Target:
		return 1.0
	case state.Agent == state.Opponent:
		return -1.0
	case next.Agent == next.Target:
		return 0.25
	case next.Agent == next.Opponent:
		return -0.25
	case next.Agent.Manhattan(next.Opponent) == 1:
		return -0.1
	default:
		return -0.01
	}
}

// Sparse pays only at terminal states: +1 for reaching the target, -1
// for colliding with the opponent, 0 everywhere else.
type Sparse struct{}

func (Sparse) Reward(state, next geometry.State) float64 {
	switch {
	case state.Agent == state.Target:
		return 1.0
	case state.Agent == state.Opponent:
		return -1.0
	default:
		return 0.0
	}
}
