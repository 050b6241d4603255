package valuefunc

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBuffers(t *testing.T) {
	Convey("Given new float64 buffers over 4 states, started at 0", t, func() {
		b := New[float64](4, 0)

		Convey("Len reports the requested size", func() {
			So(b.Len(), ShouldEqual, 4)
		})

		Convey("every entry reads back as the start value", func() {
			for k := 0; k < b.Len(); k++ {
				So(b.GetCurrent(k), ShouldEqual, float64(0))
			}
		})

		Convey("SetNext does not affect GetCurrent until Swap", func() {
			b.SetNext(1, 9.5)
			So(b.GetCurrent(1), ShouldEqual, float64(0))

			b.Swap()
			So(b.GetCurrent(1), ShouldEqual, 9.5)
		})

		Convey("Swap toggles back and forth without losing prior writes", func() {
			b.SetNext(0, 1.0)
			b.Swap()
			So(b.GetCurrent(0), ShouldEqual, 1.0)

			b.SetNext(0, 2.0)
			b.Swap()
			So(b.GetCurrent(0), ShouldEqual, 2.0)

			b.Swap()
			So(b.GetCurrent(0), ShouldEqual, 1.0)
		})
	})

	Convey("Given float32 buffers started at a nonzero value", t, func() {
		b := New[float32](3, 1.5)

		Convey("every entry reads back as the start value", func() {
			for k := 0; k < b.Len(); k++ {
				So(b.GetCurrent(k), ShouldEqual, float32(1.5))
			}
		})
	})
}
