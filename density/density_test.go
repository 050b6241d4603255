package density

import (
	"testing"

	"github.com/niceyeti/gridagent/geometry"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewDiscreteDistribution(t *testing.T) {
	Convey("Given relative probabilities that sum to 1", t, func() {
		Convey("a valid distribution is accepted", func() {
			d, err := NewDiscreteDistribution(0.9, 0.05, 0.0, 0.05)
			So(err, ShouldBeNil)
			So(d, ShouldNotBeNil)
		})

		Convey("a negative probability is rejected", func() {
			_, err := NewDiscreteDistribution(1.1, -0.1, 0.0, 0.0)
			So(err, ShouldNotBeNil)
		})

		Convey("probabilities not summing to 1 are rejected", func() {
			_, err := NewDiscreteDistribution(0.5, 0.5, 0.5, 0.0)
			So(err, ShouldNotBeNil)
		})

		Convey("a sum within tolerance of 1 is accepted", func() {
			_, err := NewDiscreteDistribution(0.9, 0.05+1e-10, 0.0, 0.05)
			So(err, ShouldBeNil)
		})
	})
}

func TestDiscreteDistributionProb(t *testing.T) {
	Convey("Given the default distribution (90/5/0/5)", t, func() {
		d := DefaultDiscreteDistribution()

		Convey("the chosen action has the highest probability", func() {
			So(d.Prob(geometry.Up, geometry.Up), ShouldAlmostEqual, 0.9)
		})

		Convey("probabilities are relative to the chosen action, not absolute", func() {
			So(d.Prob(geometry.Right, geometry.Down), ShouldAlmostEqual, d.Prob(geometry.Up, geometry.Left))
		})

		Convey("the opposite action has zero probability", func() {
			So(d.Prob(geometry.Up, geometry.Down), ShouldAlmostEqual, 0.0)
		})

		Convey("probabilities over all four actual actions sum to 1", func() {
			sum := 0.0
			for _, a := range geometry.Actions {
				sum += d.Prob(geometry.Right, a)
			}
			So(sum, ShouldAlmostEqual, 1.0)
		})
	})
}
