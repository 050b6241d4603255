package geometry

// State is a joint state (agent, opponent, target) of the three actors.
type State struct {
	Agent, Opponent, Target Vec2D
}

// Pack encodes s into its mixed-radix packed index, per:
//
//	idx = a.x + a.y*N + o.x*N*M + o.y*N^2*M + t.x*N^2*M^2 + t.y*N^3*M^2
func (s State) Pack(m MapSize) int {
	return s.Agent.X + s.Agent.Y*m.N +
		s.Opponent.X*m.NM + s.Opponent.Y*m.N2M +
		s.Target.X*m.N2M2 + s.Target.Y*m.N3M2
}

// Unpack decodes a packed index into a joint state. It is the inverse of Pack.
func Unpack(idx int, m MapSize) State {
	var s State
	s.Agent.X = idx % m.N
	s.Agent.Y = (idx % m.NM) / m.N
	s.Opponent.X = (idx % m.N2M) / m.NM
	s.Opponent.Y = (idx % m.N2M2) / m.N2M
	s.Target.X = (idx % m.N3M2) / m.N2M2
	s.Target.Y = idx / m.N3M2
	return s
}

// MoveCheckingBounds mutates pos by action a and reports whether the
// result stays within the map of size m. If it does not, the move is
// reverted before returning.
func MoveCheckingBounds(pos *Vec2D, a Action, m MapSize) bool {
	pos.Move(a)
	var inBounds bool
	switch a {
	case Up:
		inBounds = pos.Y < m.M
	case Right:
		inBounds = pos.X < m.N
	case Down:
		inBounds = pos.Y >= 0
	case Left:
		inBounds = pos.X >= 0
	}
	if !inBounds {
		pos.Undo(a)
	}
	return inBounds
}

// WithinBounds reports whether every position in s lies within a map of
// size m (componentwise, [0,N) x [0,M)).
func (s State) WithinBounds(m MapSize) bool {
	return withinBounds(s.Agent, m) && withinBounds(s.Opponent, m) && withinBounds(s.Target, m)
}

func withinBounds(p Vec2D, m MapSize) bool {
	return p.X >= 0 && p.X < m.N && p.Y >= 0 && p.Y < m.M
}

// OutsideObstacles reports whether none of s's three positions lies
// inside any of obstacles. It does not check map bounds.
func (s State) OutsideObstacles(obstacles []Obstacle) bool {
	for _, o := range obstacles {
		if o.Contains(s.Agent) || o.Contains(s.Opponent) || o.Contains(s.Target) {
			return false
		}
	}
	return true
}

// Valid reports whether s satisfies every validity rule in the data
// model: in bounds, target != opponent, and outside every obstacle. The
// agent may coincide with the target or the opponent; those are terminal
// states and remain valid.
func (s State) Valid(m MapSize, obstacles []Obstacle) bool {
	if s.Target == s.Opponent {
		return false
	}
	return s.WithinBounds(m) && s.OutsideObstacles(obstacles)
}
