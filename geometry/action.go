// Package geometry implements the pure geometry and joint-state encoding
// shared by every other package: positions, obstacles, actions, and the
// bijection between a joint state and its packed integer index.
package geometry

// Action is one of the four cardinal moves available to a MovingEntity.
// The ordering is cyclic and load-bearing: Right, Opposite, and Left are
// all defined relative to a chosen Action by adding 1, 2, or 3 mod
// NumActions, which is exactly how the transition density looks up
// relative-action probabilities.
type Action int

const (
	Up Action = iota
	Right
	Down
	Left
	NumActions
)

func (a Action) String() string {
	switch a {
	case Up:
		return "Up"
	case Right:
		return "Right"
	case Down:
		return "Down"
	case Left:
		return "Left"
	default:
		return "Invalid"
	}
}

// RelativeTo returns the action obtained by rotating a by delta steps
// clockwise through Up, Right, Down, Left.
func (a Action) RelativeTo(delta int) Action {
	return Action((int(a) + delta) % int(NumActions))
}

// Opposite returns the action reversing a.
func (a Action) Opposite() Action {
	return a.RelativeTo(2)
}

// Actions is the fixed, ordered set of all four actions.
var Actions = [NumActions]Action{Up, Right, Down, Left}
