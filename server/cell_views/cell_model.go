// Package cell_views converts a grid snapshot into the view-models the
// fastview components render.
package cell_views

import (
	"github.com/niceyeti/gridagent/geometry"
	"github.com/niceyeti/gridagent/policytable"
	"github.com/niceyeti/gridagent/valuefunc"
	"github.com/niceyeti/gridagent/vss"
)

// AgentCell is a single (x,y) grid square's current value estimate and
// greedy action, for the agent-position projection of the value
// function and policy. The full joint state is six-dimensional (three
// actors' x/y coordinates); a live view can only usefully render two of
// those dimensions, so target and opponent are held fixed at a
// reference position and only the agent's position varies across the
// grid. A cell is Valid only if that joint state is a member of the
// valid state space.
type AgentCell struct {
	X, Y   int
	Value  float64
	Action geometry.Action
	Valid  bool
}

// GridSnapshot is the agent-position projection described by AgentCell,
// one entry per map cell.
type GridSnapshot = [][]AgentCell

// BuildSnapshot renders the current value function and greedy policy for
// every agent position reachable with target at targetPos and opponent
// at opponentPos. Cells the agent cannot occupy (obstacles, or states
// outside the valid state space) are left invalid.
func BuildSnapshot[T valuefunc.Float](
	space *vss.ValidStateSpace,
	values *valuefunc.Buffers[T],
	policy *policytable.Policy,
	mapSize geometry.Vec2D,
	targetPos, opponentPos geometry.Vec2D,
) GridSnapshot {
	grid := make(GridSnapshot, mapSize.X)
	for x := range grid {
		grid[x] = make([]AgentCell, mapSize.Y)
	}
	for x := 0; x < mapSize.X; x++ {
		for y := 0; y < mapSize.Y; y++ {
			state := geometry.State{
				Agent:    geometry.Vec2D{X: x, Y: y},
				Target:   targetPos,
				Opponent: opponentPos,
			}
			idx, err := space.GetValidIndex(state)
			if err != nil {
				grid[x][y] = AgentCell{X: x, Y: y}
				continue
			}
			grid[x][y] = AgentCell{
				X:      x,
				Y:      y,
				Value:  float64(values.GetCurrent(idx)),
				Action: policy.Get(idx),
				Valid:  true,
			}
		}
	}
	return grid
}

// Cell is an x/y grid square's current value estimate and greedy action,
// oriented in svg coordinate system such that [0][0] is the cell printed
// at top left on the console. Cell fields should be immediately usable
// as view parameters.
type Cell struct {
	X, Y                int
	Max                 float64
	PolicyArrowRotation int
	PolicyArrowScale    int
	Valid               bool
}

// Convert reshapes a GridSnapshot into Cells for consumption by the
// values-grid and value-function views. The y index is flipped per svg's
// top-down coordinate system.
func Convert(snapshot GridSnapshot) (cells [][]Cell) {
	cells = make([][]Cell, len(snapshot))
	maxY := len(snapshot[0])
	for x := range snapshot {
		cells[x] = make([]Cell, maxY)
	}

	for x, col := range snapshot {
		for y, ac := range col {
			cells[x][maxY-y-1] = Cell{
				X:                   x,
				Y:                   maxY - y - 1,
				Max:                 ac.Value,
				PolicyArrowRotation: getDegrees(ac.Action),
				PolicyArrowScale:    1,
				Valid:               ac.Valid,
			}
		}
	}
	return
}

// getDegrees converts a greedy action into the degrees passed to svg's
// rotate() transform for an upward arrow rune. Degrees are wrt vertical.
func getDegrees(a geometry.Action) int {
	switch a {
	case geometry.Up:
		return 0
	case geometry.Right:
		return 90
	case geometry.Down:
		return 180
	case geometry.Left:
		return 270
	default:
		return 0
	}
}
