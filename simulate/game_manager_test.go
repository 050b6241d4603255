package simulate

import (
	"math/rand"
	"testing"

	"github.com/niceyeti/gridagent/density"
	"github.com/niceyeti/gridagent/geometry"
	"github.com/niceyeti/gridagent/vss"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGameTerminates(t *testing.T) {
	Convey("Given a 4x4 empty grid with every actor under a uniform random policy", t, func() {
		space := vss.Build(geometry.Vec2D{X: 4, Y: 4}, nil)
		rng := rand.New(rand.NewSource(1))
		d := density.DefaultDiscreteDistribution()

		start := geometry.State{
			Agent:    geometry.Vec2D{X: 0, Y: 0},
			Target:   geometry.Vec2D{X: 3, Y: 3},
			Opponent: geometry.Vec2D{X: 3, Y: 0},
		}

		gm := New(Config{
			Space:           space,
			StartState:      start,
			AgentPolicy:     UniformPolicy(rng),
			TargetPolicy:    UniformPolicy(rng),
			OpponentPolicy:  UniformPolicy(rng),
			AgentDensity:    d,
			TargetDensity:   d,
			OpponentDensity: d,
			Rng:             rng,
		})

		var ticks int
		gm.RegisterCallback(func(GameData) { ticks++ })

		Convey("When the episode runs", func() {
			result := gm.Start()

			Convey("Then it reaches a terminal result, not Waiting", func() {
				So(result, ShouldBeIn, []Result{Success, Fail})
			})

			Convey("Then the callback fired at least once per tick plus the final snapshot", func() {
				So(ticks, ShouldBeGreaterThan, 1)
			})
		})
	})
}

func TestGameNeverLeavesTargetOpponentOverlap(t *testing.T) {
	Convey("Given an episode where target and opponent start adjacent", t, func() {
		space := vss.Build(geometry.Vec2D{X: 4, Y: 4}, nil)
		rng := rand.New(rand.NewSource(42))
		d := density.DefaultDiscreteDistribution()

		start := geometry.State{
			Agent:    geometry.Vec2D{X: 0, Y: 0},
			Target:   geometry.Vec2D{X: 2, Y: 2},
			Opponent: geometry.Vec2D{X: 3, Y: 2},
		}

		gm := New(Config{
			Space:           space,
			StartState:      start,
			AgentPolicy:     UniformPolicy(rng),
			TargetPolicy:    UniformPolicy(rng),
			OpponentPolicy:  UniformPolicy(rng),
			AgentDensity:    d,
			TargetDensity:   d,
			OpponentDensity: d,
			Rng:             rng,
		})

		Convey("When the episode runs to completion", func() {
			gm.RegisterCallback(func(gd GameData) {
				So(gd.State.Target, ShouldNotResemble, gd.State.Opponent)
			})
			gm.Start()

			Convey("Then target and opponent never coincided on any tick", func() {
				// Assertion happens inside the callback above; reaching
				// here means none of them failed.
			})
		})
	})
}
