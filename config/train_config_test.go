package config

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "train.cfg")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writeTempConfig: %v", err)
	}
	return path
}

func TestParseTrainConfig(t *testing.T) {
	Convey("Given a directive file setting geometry and stop criteria", t, func() {
		path := writeTempConfig(t, `
			# a comment line
			MapSize 5 5
			Obstacle 2 0 1 4
			MaxIter 500
			Discount 0.85
			ProcessES 4
		`)
		cfg := NewTrainConfig()

		Convey("When it is parsed", func() {
			err := ParseTrainConfig(path, cfg, nil)

			Convey("Then it succeeds", func() {
				So(err, ShouldBeNil)
			})

			Convey("Then every directive is applied case-insensitively", func() {
				So(cfg.MapSize.X, ShouldEqual, 5)
				So(cfg.MapSize.Y, ShouldEqual, 5)
				So(cfg.Obstacles, ShouldHaveLength, 1)
				So(cfg.MaxIter, ShouldEqual, 500)
				So(cfg.Discount, ShouldEqual, 0.85)
				So(cfg.Processes, ShouldEqual, 4)
			})
		})
	})

	Convey("Given a caller who freezes discount before parsing", t, func() {
		path := writeTempConfig(t, "discount 0.1\n")
		cfg := NewTrainConfig().WithDiscount(0.99)

		Convey("When the file is parsed", func() {
			err := ParseTrainConfig(path, cfg, nil)

			Convey("Then the frozen field is not overridden", func() {
				So(err, ShouldBeNil)
				So(cfg.Discount, ShouldEqual, 0.99)
			})
		})
	})

	Convey("Given a file with an unrecognized directive", t, func() {
		path := writeTempConfig(t, "customthing 1 2 3\n")
		cfg := NewTrainConfig()
		var seenTag string
		var seenArgs []string

		Convey("When parsed with an extension hook", func() {
			err := ParseTrainConfig(path, cfg, func(tag string, args []string) error {
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

func TestTrainConfigValidate(t *testing.T) {
	Convey("Given a config with a malformed agent density", t, func() {
		cfg := NewTrainConfig().WithMapSize(5, 5).WithAgentDensity(0.5, 0.3, 0.3, 0.0)

		Convey("When validated", func() {
			err := cfg.Validate()

			Convey("Then it fails because probabilities do not sum to 1", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})

	Convey("Given a config with a non-positive discount", t, func() {
		cfg := NewTrainConfig().WithMapSize(5, 5).WithDiscount(0)

		Convey("When validated", func() {
			err := cfg.Validate()

			Convey("Then it fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})

	Convey("Given a well-formed default config", t, func() {
		cfg := NewTrainConfig().WithMapSize(5, 5)

		Convey("When validated", func() {
			err := cfg.Validate()

			Convey("Then it passes", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}
