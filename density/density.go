// Package density implements the markov transition density: the
// conditional probability of an actual outcome action given the chosen
// action.
package density

import (
	"fmt"
	"math"

	"github.com/niceyeti/gridagent/geometry"
)

// TransitionDensity gives the probability of action actual being
// performed when action chosen was selected.
type TransitionDensity interface {
	Prob(chosen, actual geometry.Action) float64
}

// DiscreteDistribution is the canonical transition density: a fixed
// relative probability for the chosen action, the action to its right,
// its opposite, and the action to its left.
type DiscreteDistribution struct {
	// probabilities[delta] is the probability of the action at cyclic
	// offset delta from the chosen action.
	probabilities [int(geometry.NumActions)]float64
}

const sumTolerance = 1e-9

// NewDiscreteDistribution builds a DiscreteDistribution from the
// relative probabilities of the chosen action, the action to its right,
// its opposite, and the action to its left. It rejects distributions
// that are not non-negative or that do not sum to 1 within tolerance.
func NewDiscreteDistribution(chosen, right, opposite, left float64) (*DiscreteDistribution, error) {
	probs := [int(geometry.NumActions)]float64{chosen, right, opposite, left}
	sum := 0.0
	for _, p := range probs {
		if p < 0 {
			return nil, fmt.Errorf("density: probabilities must be non-negative, got %v", probs)
		}
		sum += p
	}
	if math.Abs(sum-1.0) > sumTolerance {
		return nil, fmt.Errorf("density: probabilities must sum to 1, got %v (sum %v)", probs, sum)
	}
	return &DiscreteDistribution{probabilities: probs}, nil
}

// DefaultDiscreteDistribution is the spec's default: 90% chosen action,
// 5% to the right, 0% opposite, 5% to the left.
func DefaultDiscreteDistribution() *DiscreteDistribution {
	d, err := NewDiscreteDistribution(0.9, 0.05, 0.0, 0.05)
	if err != nil {
		panic(err)
	}
	return d
}

// Prob returns the probability of actual given chosen.
func (d *DiscreteDistribution) Prob(chosen, actual geometry.Action) float64 {
	delta := (int(actual) - int(chosen) + int(geometry.NumActions)) % int(geometry.NumActions)
	return d.probabilities[delta]
}
