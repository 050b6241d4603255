package simulate

import (
	"math/rand"

	"github.com/niceyeti/gridagent/geometry"
	"github.com/niceyeti/gridagent/policytable"
	"github.com/niceyeti/gridagent/vss"
)

// TabularPolicy adapts a trained policytable.Policy and the
// ValidStateSpace it was trained against into a simulate.Policy: it
// looks up the joint state's valid index and returns the stored action.
// This is what the agent is driven by during a game.
func TabularPolicy(table *policytable.Policy, space *vss.ValidStateSpace) Policy {
	return func(state geometry.State) geometry.Action {
		idx, err := space.GetValidIndex(state)
		if err != nil {
			panic("simulate: policy lookup on a state outside the valid state space: " + err.Error())
		}
		return table.Get(idx)
	}
}

// UniformPolicy picks one of the four actions with equal probability,
// ignoring the state entirely. It is the fallback used for the agent
// when no trained policy file is supplied, and the default controller
// for target and opponent.
func UniformPolicy(rng *rand.Rand) Policy {
	return func(geometry.State) geometry.Action {
		return geometry.Actions[rng.Intn(len(geometry.Actions))]
	}
}
