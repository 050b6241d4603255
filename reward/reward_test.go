package reward

import (
	"testing"

	"github.com/niceyeti/gridagent/geometry"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDenseReward(t *testing.T) {
	Convey("Given the dense reward function", t, func() {
		r := Dense{}
		target := geometry.Vec2D{X: 5, Y: 5}
		opponent := geometry.Vec2D{X: 0, Y: 0}

		Convey("reaching the target is worth +1", func() {
			state := geometry.State{Agent: target, Target: target, Opponent: opponent}
			So(r.Reward(state, state), ShouldEqual, 1.0)
		})

		Convey("colliding with the opponent is worth -1", func() {
			state := geometry.State{Agent: opponent, Target: target, Opponent: opponent}
			So(r.Reward(state, state), ShouldEqual, -1.0)
		})

		Convey("a one-step approach to the target is worth +0.25", func() {
			state := geometry.State{Agent: geometry.Vec2D{X: 3, Y: 5}, Target: target, Opponent: opponent}
			next := geometry.State{Agent: target, Target: target, Opponent: opponent}
			So(r.Reward(state, next), ShouldEqual, 0.25)
		})

		Convey("a one-step approach to the opponent is worth -0.25", func() {
			state := geometry.State{Agent: geometry.Vec2D{X: 1, Y: 0}, Target: target, Opponent: opponent}
			next := state
			next.Agent = opponent
			So(r.Reward(state, next), ShouldEqual, -0.25)
		})

		Convey("standing adjacent to the opponent costs -0.1", func() {
			state := geometry.State{Agent: geometry.Vec2D{X: 2, Y: 2}, Target: target, Opponent: opponent}
			next := geometry.State{Agent: geometry.Vec2D{X: 1, Y: 0}, Target: target, Opponent: opponent}
			So(r.Reward(state, next), ShouldEqual, -0.1)
		})

		Convey("every other step costs a small constant", func() {
			state := geometry.State{Agent: geometry.Vec2D{X: 2, Y: 2}, Target: target, Opponent: opponent}
			next := geometry.State{Agent: geometry.Vec2D{X: 2, Y: 3}, Target: target, Opponent: opponent}
			So(r.Reward(state, next), ShouldEqual, -0.01)
		})
	})
}

func TestSparseReward(t *testing.T) {
	Convey("Given the sparse reward function", t, func() {
		r := Sparse{}
		target := geometry.Vec2D{X: 5, Y: 5}
		opponent := geometry.Vec2D{X: 0, Y: 0}

		Convey("reaching the target is worth +1", func() {
			state := geometry.State{Agent: target, Target: target, Opponent: opponent}
			So(r.Reward(state, state), ShouldEqual, 1.0)
		})

		Convey("colliding with the opponent is worth -1", func() {
			state := geometry.State{Agent: opponent, Target: target, Opponent: opponent}
			So(r.Reward(state, state), ShouldEqual, -1.0)
		})

		Convey("every non-terminal transition is worth 0, regardless of proximity", func() {
			state := geometry.State{Agent: geometry.Vec2D{X: 1, Y: 0}, Target: target, Opponent: opponent}
			next := geometry.State{Agent: geometry.Vec2D{X: 1, Y: 1}, Target: target, Opponent: opponent}
			So(r.Reward(state, next), ShouldEqual, 0.0)
		})
	})
}
