package config

import (
	"fmt"
	"testing"

	"github.com/niceyeti/gridagent/geometry"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseGameConfig(t *testing.T) {
	Convey("Given a directive file setting geometry and starting positions", t, func() {
		path := writeTempConfig(t, `
			# a comment line
			MapSize 5 5
			Obstacle 2 0 1 4
			Agent 0 0
			Target 4 4
			Opponent 4 0
		`)
		cfg := NewGameConfig()

		Convey("When it is parsed", func() {
			err := ParseGameConfig(path, cfg, nil)

			Convey("Then it succeeds", func() {
				So(err, ShouldBeNil)
			})

			Convey("Then every directive is applied case-insensitively", func() {
				So(cfg.MapSize.X, ShouldEqual, 5)
				So(cfg.MapSize.Y, ShouldEqual, 5)
				So(cfg.Obstacles, ShouldHaveLength, 1)
				So(cfg.AgentStart.X, ShouldEqual, 0)
				So(cfg.AgentStart.Y, ShouldEqual, 0)
				So(cfg.TargetStart.X, ShouldEqual, 4)
				So(cfg.TargetStart.Y, ShouldEqual, 4)
				So(cfg.OpponentStart.X, ShouldEqual, 4)
				So(cfg.OpponentStart.Y, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a per-actor ddmtd directive", t, func() {
		path := writeTempConfig(t, "ddmtd target 0.7 0.1 0.1 0.1\n")
		cfg := NewGameConfig()

		Convey("When it is parsed", func() {
			err := ParseGameConfig(path, cfg, nil)

			Convey("Then only the named actor's density changes", func() {
				So(err, ShouldBeNil)
				So(cfg.TargetDensityParams, ShouldResemble, [4]float64{0.7, 0.1, 0.1, 0.1})
				So(cfg.AgentDensityParams, ShouldResemble, [4]float64{0.9, 0.05, 0.0, 0.05})
				So(cfg.OpponentDensityParams, ShouldResemble, [4]float64{0.9, 0.05, 0.0, 0.05})
			})
		})
	})

	Convey("Given a caller who freezes the agent start before parsing", t, func() {
		path := writeTempConfig(t, "agent 3 3\n")
		cfg := NewGameConfig().WithAgentStart(geometry.Vec2D{X: 1, Y: 1})

		Convey("When the file is parsed", func() {
			err := ParseGameConfig(path, cfg, nil)

			Convey("Then the frozen field is not overridden", func() {
				So(err, ShouldBeNil)
				So(cfg.AgentStart, ShouldResemble, geometry.Vec2D{X: 1, Y: 1})
			})
		})
	})

	Convey("Given a file with a training-only directive", t, func() {
		path := writeTempConfig(t, "maxiter 500\n")
		cfg := NewGameConfig()

		Convey("When it is parsed", func() {
			err := ParseGameConfig(path, cfg, func(tag string, _ []string) error {
				return fmt.Errorf("hook received %q", tag)
			})

			Convey("Then it is silently ignored rather than forwarded to the hook", func() {
				So(err, ShouldBeNil)
			})
		})
	})

	Convey("Given a file with an unrecognized directive", t, func() {
		path := writeTempConfig(t, "customthing 1 2 3\n")
		cfg := NewGameConfig()
		var seenTag string
		var seenArgs []string

		Convey("When parsed with an extension hook", func() {
			err := ParseGameConfig(path, cfg, func(tag string, args []string) error {
				seenTag = tag
				seenArgs = args
				return nil
			})

			Convey("Then the hook receives the directive", func() {
				So(err, ShouldBeNil)
				So(seenTag, ShouldEqual, "customthing")
				So(seenArgs, ShouldResemble, []string{"1", "2", "3"})
			})
		})
	})
}

func TestGameConfigValidate(t *testing.T) {
	Convey("Given a config whose agent start lies outside the map", t, func() {
		cfg := NewGameConfig().WithMapSize(3, 3).
			WithAgentStart(geometry.Vec2D{X: 5, Y: 5}).
			WithTargetStart(geometry.Vec2D{X: 1, Y: 1}).
			WithOpponentStart(geometry.Vec2D{X: 2, Y: 2})

		Convey("When validated", func() {
			err := cfg.Validate()

			Convey("Then it fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})

	Convey("Given a config whose target start lies inside an obstacle", t, func() {
		cfg := NewGameConfig().WithMapSize(3, 3).
			WithObstacle(geometry.Obstacle{Origin: geometry.Vec2D{X: 1, Y: 1}, Extent: geometry.Vec2D{X: 1, Y: 1}}).
			WithAgentStart(geometry.Vec2D{X: 0, Y: 0}).
			WithTargetStart(geometry.Vec2D{X: 1, Y: 1}).
			WithOpponentStart(geometry.Vec2D{X: 2, Y: 2})

		Convey("When validated", func() {
			err := cfg.Validate()

			Convey("Then it fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})

	Convey("Given a config where two actors share a starting position", t, func() {
		cfg := NewGameConfig().WithMapSize(3, 3).
			WithAgentStart(geometry.Vec2D{X: 0, Y: 0}).
			WithTargetStart(geometry.Vec2D{X: 0, Y: 0}).
			WithOpponentStart(geometry.Vec2D{X: 2, Y: 2})

		Convey("When validated", func() {
			err := cfg.Validate()

			Convey("Then it fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})

	Convey("Given a config with a malformed opponent density", t, func() {
		cfg := NewGameConfig().WithMapSize(3, 3).
			WithAgentStart(geometry.Vec2D{X: 0, Y: 0}).
			WithTargetStart(geometry.Vec2D{X: 1, Y: 1}).
			WithOpponentStart(geometry.Vec2D{X: 2, Y: 2})
		cfg.OpponentDensityParams = [4]float64{0.5, 0.5, 0.5, 0.0}

		Convey("When validated", func() {
			err := cfg.Validate()

			Convey("Then it fails because probabilities do not sum to 1", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})

	Convey("Given a well-formed default config with distinct starts", t, func() {
		cfg := NewGameConfig().WithMapSize(3, 3).
			WithAgentStart(geometry.Vec2D{X: 0, Y: 0}).
			WithTargetStart(geometry.Vec2D{X: 1, Y: 1}).
			WithOpponentStart(geometry.Vec2D{X: 2, Y: 2})

		Convey("When validated", func() {
			err := cfg.Validate()

			Convey("Then it passes", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}
