// Package simulate executes a trained (or arbitrary) policy against two
// stochastic adversaries until the episode reaches a terminal state.
package simulate

import (
	"math/rand"

	"github.com/niceyeti/gridagent/density"
	"github.com/niceyeti/gridagent/geometry"
	"github.com/niceyeti/gridagent/vss"
)

// Policy chooses an action given the current joint state. A trained
// Trainer's Policy table, wrapped to ignore every field but the one
// relevant index, satisfies this; so does a hand-written stationary or
// random controller for the target or opponent.
type Policy func(state geometry.State) geometry.Action

// movingEntity is one of the three actors sharing the game's joint
// state: it owns a pointer directly into that state's position field, so
// moving the entity and reading the resulting joint state never requires
// a copy.
type movingEntity struct {
	slot    *geometry.Vec2D
	policy  Policy
	density density.TransitionDensity
	rng     *rand.Rand
}

func newMovingEntity(slot *geometry.Vec2D, policy Policy, d density.TransitionDensity, rng *rand.Rand) *movingEntity {
	return &movingEntity{slot: slot, policy: policy, density: d, rng: rng}
}

// sampleActual draws the entity's actual action from its transition
// density, conditioned on the action its policy chose.
func (m *movingEntity) sampleActual(chosen geometry.Action) geometry.Action {
	r := m.rng.Float64()
	cum := 0.0
	for _, a := range geometry.Actions {
		cum += m.density.Prob(chosen, a)
		if r < cum {
			return a
		}
	}
	// Guards against float rounding leaving r just past a cumulative sum
	// of exactly 1.0; falls back to the last action.
	return geometry.Actions[len(geometry.Actions)-1]
}

// move asks the entity's policy for an action, samples the actual
// outcome, and attempts it against the full joint state. The move is
// undone if it leaves the grid, lands inside an obstacle, or — when
// checkOverlap is set — lands on other's position (target and opponent
// may never coincide; the agent is exempt, since agent-on-target and
// agent-on-opponent are terminal states, not collisions to avoid).
func (m *movingEntity) move(state *geometry.State, space *vss.ValidStateSpace, other *geometry.Vec2D, checkOverlap bool) geometry.Action {
	chosen := m.policy(*state)
	actual := m.sampleActual(chosen)

	m.slot.Move(actual)
	overlap := checkOverlap && *m.slot == *other
	if overlap || !space.WithinBounds(*state) || !space.IsStateOutsideObstacles(*state) {
		m.slot.Undo(actual)
	}
	return chosen
}
