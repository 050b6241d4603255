package vss

import (
	"testing"

	"github.com/niceyeti/gridagent/geometry"
	. "github.com/smartystreets/goconvey/convey"
)

func TestValidStateSpace(t *testing.T) {
	Convey("Given a 3x1 grid with no obstacles", t, func() {
		space := Build(geometry.Vec2D{X: 3, Y: 1}, nil)

		Convey("its backing array is strictly increasing", func() {
			prev := -1
			for i := 0; i < space.Len(); i++ {
				idx := space.arr.Get(i)
				So(idx, ShouldBeGreaterThan, prev)
				prev = idx
			}
		})

		Convey("it contains exactly the states where opponent != target", func() {
			m := space.MapSize()
			total := 0
			for idx := 0; idx < m.N3M3; idx++ {
				s := geometry.Unpack(idx, m)
				if s.Target != s.Opponent {
					total++
				}
			}
			So(space.Len(), ShouldEqual, total)
		})

		Convey("Pack/Unpack is a bijection over every packed index", func() {
			m := space.MapSize()
			for idx := 0; idx < m.N3M3; idx++ {
				s := geometry.Unpack(idx, m)
				So(s.Pack(m), ShouldEqual, idx)
			}
		})

		Convey("get_valid_index finds every admitted state and fails on invalid ones", func() {
			m := space.MapSize()
			space.ForEach(func(k int, s geometry.State) bool {
				got, err := space.GetValidIndex(s)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, k)
				return true
			})

			invalid := geometry.State{
				Agent:    geometry.Vec2D{X: 0, Y: 0},
				Opponent: geometry.Vec2D{X: 1, Y: 0},
				Target:   geometry.Vec2D{X: 1, Y: 0},
			}
			_, err := space.GetValidIndex(invalid)
			So(err, ShouldEqual, ErrNotValid)
			_ = m
		})

		Convey("repeated lookups populate caches without ever double-booking an index", func() {
			space.ForEach(func(k int, s geometry.State) bool {
				_, _ = space.GetValidIndex(s)
				return true
			})
			for packed, k := range space.validCache.values {
				_, inNotValid := space.notValidCache.Get(packed)
				So(inNotValid, ShouldBeFalse)
				So(space.arr.Get(k), ShouldEqual, packed)
			}
		})
	})

	Convey("Given a 5x5 grid with a vertical wall obstacle", t, func() {
		wall := geometry.Obstacle{Origin: geometry.Vec2D{X: 2, Y: 0}, Extent: geometry.Vec2D{X: 1, Y: 4}}
		space := Build(geometry.Vec2D{X: 5, Y: 5}, []geometry.Obstacle{wall})

		Convey("no valid state places any actor inside the wall", func() {
			space.ForEach(func(k int, s geometry.State) bool {
				So(wall.Contains(s.Agent), ShouldBeFalse)
				So(wall.Contains(s.Opponent), ShouldBeFalse)
				So(wall.Contains(s.Target), ShouldBeFalse)
				return true
			})
		})

		Convey("binary search contract holds for a query below the minimum", func() {
			found, k := space.binarySearch(-1)
			So(found, ShouldBeFalse)
			So(k, ShouldEqual, -1)
		})
	})
}
