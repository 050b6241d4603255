package geometry

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAction(t *testing.T) {
	Convey("Given the cyclic action ordering", t, func() {
		Convey("Opposite reverses a move", func() {
			So(Up.Opposite(), ShouldEqual, Down)
			So(Right.Opposite(), ShouldEqual, Left)
			So(Down.Opposite(), ShouldEqual, Up)
			So(Left.Opposite(), ShouldEqual, Right)
		})

		Convey("RelativeTo(0) is the identity", func() {
			for _, a := range Actions {
				So(a.RelativeTo(0), ShouldEqual, a)
			}
		})

		Convey("every action has a distinct String", func() {
			seen := map[string]bool{}
			for _, a := range Actions {
				s := a.String()
				So(seen[s], ShouldBeFalse)
				seen[s] = true
			}
		})
	})
}

func TestVec2DMove(t *testing.T) {
	Convey("Given a position at the origin", t, func() {
		v := Vec2D{X: 0, Y: 0}

		Convey("Move and Undo round-trip for every action", func() {
			for _, a := range Actions {
				moved := v.Moved(a)
				moved.Undo(a)
				So(moved, ShouldResemble, v)
			}
		})

		Convey("Manhattan distance is symmetric and zero for equal points", func() {
			a := Vec2D{X: 2, Y: -3}
			b := Vec2D{X: -1, Y: 4}
			So(a.Manhattan(b), ShouldEqual, b.Manhattan(a))
			So(a.Manhattan(a), ShouldEqual, 0)
			So(a.Manhattan(b), ShouldEqual, 3+7)
		})
	})
}

func TestObstacle(t *testing.T) {
	Convey("Given a 2x3 obstacle at (1,1)", t, func() {
		o := Obstacle{Origin: Vec2D{X: 1, Y: 1}, Extent: Vec2D{X: 2, Y: 3}}

		Convey("Contains is half-open on the far edge", func() {
			So(o.Contains(Vec2D{X: 1, Y: 1}), ShouldBeTrue)
			So(o.Contains(Vec2D{X: 2, Y: 3}), ShouldBeTrue)
			So(o.Contains(Vec2D{X: 3, Y: 1}), ShouldBeFalse)
			So(o.Contains(Vec2D{X: 1, Y: 4}), ShouldBeFalse)
			So(o.Contains(Vec2D{X: 0, Y: 1}), ShouldBeFalse)
		})

		Convey("WithinMap rejects a rectangle that overruns the grid", func() {
			So(o.WithinMap(Vec2D{X: 3, Y: 4}), ShouldBeTrue)
			So(o.WithinMap(Vec2D{X: 2, Y: 4}), ShouldBeFalse)
			So(o.WithinMap(Vec2D{X: 3, Y: 3}), ShouldBeFalse)
		})
	})
}

func TestPackUnpackBijection(t *testing.T) {
	Convey("Given a 4x3 map size", t, func() {
		m := NewMapSize(4, 3)

		Convey("every packed index unpacks and repacks to itself", func() {
			for idx := 0; idx < m.N3M3; idx++ {
				s := Unpack(idx, m)
				So(s.Pack(m), ShouldEqual, idx)
			}
		})

		Convey("every joint state packs and unpacks to itself", func() {
			for ax := 0; ax < m.N; ax++ {
				for ay := 0; ay < m.M; ay++ {
					s := State{
						Agent:    Vec2D{X: ax, Y: ay},
						Opponent: Vec2D{X: 1, Y: 2},
						Target:   Vec2D{X: 3, Y: 0},
					}
					So(Unpack(s.Pack(m), m), ShouldResemble, s)
				}
			}
		})
	})
}

func TestStateValidity(t *testing.T) {
	Convey("Given a 3x3 map with one obstacle", t, func() {
		m := NewMapSize(3, 3)
		obstacles := []Obstacle{{Origin: Vec2D{X: 1, Y: 1}, Extent: Vec2D{X: 1, Y: 1}}}

		Convey("a state with target == opponent is never valid", func() {
			s := State{Agent: Vec2D{X: 0, Y: 0}, Opponent: Vec2D{X: 2, Y: 2}, Target: Vec2D{X: 2, Y: 2}}
			So(s.Valid(m, obstacles), ShouldBeFalse)
		})

		Convey("a state with an actor inside the obstacle is never valid", func() {
			s := State{Agent: Vec2D{X: 1, Y: 1}, Opponent: Vec2D{X: 0, Y: 0}, Target: Vec2D{X: 2, Y: 2}}
			So(s.Valid(m, obstacles), ShouldBeFalse)
		})

		Convey("a state with distinct, in-bounds, unobstructed actors is valid", func() {
			s := State{Agent: Vec2D{X: 0, Y: 0}, Opponent: Vec2D{X: 0, Y: 1}, Target: Vec2D{X: 2, Y: 2}}
			So(s.Valid(m, obstacles), ShouldBeTrue)
		})

		Convey("an agent coinciding with the target or opponent is still valid", func() {
			s := State{Agent: Vec2D{X: 2, Y: 2}, Opponent: Vec2D{X: 0, Y: 1}, Target: Vec2D{X: 2, Y: 2}}
			So(s.Valid(m, obstacles), ShouldBeTrue)
		})

		Convey("a position outside the map is never in bounds", func() {
			So(withinBounds(Vec2D{X: -1, Y: 0}, m), ShouldBeFalse)
			So(withinBounds(Vec2D{X: 0, Y: 3}, m), ShouldBeFalse)
			So(withinBounds(Vec2D{X: 2, Y: 2}, m), ShouldBeTrue)
		})
	})
}

func TestMoveCheckingBounds(t *testing.T) {
	Convey("Given a 2x2 map", t, func() {
		m := NewMapSize(2, 2)

		Convey("a move that would leave the map is reverted and reports false", func() {
			pos := Vec2D{X: 1, Y: 1}
			ok := MoveCheckingBounds(&pos, Right, m)
			So(ok, ShouldBeFalse)
			So(pos, ShouldResemble, Vec2D{X: 1, Y: 1})
		})

		Convey("a move that stays within the map commits and reports true", func() {
			pos := Vec2D{X: 0, Y: 0}
			ok := MoveCheckingBounds(&pos, Right, m)
			So(ok, ShouldBeTrue)
			So(pos, ShouldResemble, Vec2D{X: 1, Y: 0})
		})
	})
}
