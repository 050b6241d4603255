package geometry

// Obstacle is an axis-aligned rectangle: Origin is its minimum corner
// (inclusive), Extent its positive size. This fixes the half-open,
// positive-extent convention: a point p is inside iff
// Origin <= p < Origin+Extent componentwise. Earlier revisions of the
// system this package is modeled on disagreed on this (some decremented
// along Y); this is the one convention this codebase enforces.
type Obstacle struct {
	Origin, Extent Vec2D
}

// Contains reports whether p lies inside the obstacle's rectangle.
func (o Obstacle) Contains(p Vec2D) bool {
	return p.X >= o.Origin.X && p.X < o.Origin.X+o.Extent.X &&
		p.Y >= o.Origin.Y && p.Y < o.Origin.Y+o.Extent.Y
}

// WithinMap reports whether the obstacle's rectangle fits entirely inside
// a grid of the given size.
func (o Obstacle) WithinMap(mapSize Vec2D) bool {
	return o.Origin.X >= 0 && o.Origin.X+o.Extent.X <= mapSize.X &&
		o.Origin.Y >= 0 && o.Origin.Y+o.Extent.Y <= mapSize.Y
}
