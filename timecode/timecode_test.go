package timecode

import (
	"testing"

	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Parse", t, func() {
		value := func(s string) float64 {
			v, ok := Parse(s).Get()
			So(ok, ShouldBeTrue)
			return v
		}

		Convey("Accepts plain seconds", func() {
			So(value("90"), ShouldEqual, 90)
			So(value(" 7 "), ShouldEqual, 7)
		})

		Convey("Accepts MM:SS", func() {
			So(value("1:30"), ShouldEqual, 90)
			So(value("00:05"), ShouldEqual, 5)
		})

		Convey("Accepts HH:MM:SS", func() {
			So(value("1:01:30"), ShouldEqual, 3690)
		})

		Convey("Defaults missing or non-numeric components to zero", func() {
			So(value("1:"), ShouldEqual, 60)
			So(value(":30"), ShouldEqual, 30)
			So(value("1:xx"), ShouldEqual, 60)
			So(value("2:05abc"), ShouldEqual, 125)
		})

		Convey("Rejects other shapes", func() {
			So(Parse("abc").IsPresent(), ShouldBeFalse)
			So(Parse("").IsPresent(), ShouldBeFalse)
			So(Parse("   ").IsPresent(), ShouldBeFalse)
			So(Parse("1.5").IsPresent(), ShouldBeFalse)
			So(Parse("-3").IsPresent(), ShouldBeFalse)
			So(Parse("1:2:3:4").IsPresent(), ShouldBeFalse)
		})
	})
}

func TestFormat(t *testing.T) {
	Convey("Format", t, func() {
		So(Format(0), ShouldEqual, "00:00")
		So(Format(90), ShouldEqual, "01:30")
		So(Format(59.99), ShouldEqual, "00:59")
		So(Format(3690), ShouldEqual, "01:01:30")
		So(Format(-4), ShouldEqual, "00:00")

		Convey("Round-trips through Parse for whole seconds", func() {
			for _, s := range []float64{0, 1, 59, 60, 61, 599, 3599, 3600, 3661, 86399, 90061} {
				v, ok := Parse(Format(s)).Get()
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, s)
			}
		})
	})

	Convey("Label", t, func() {
		So(Label(mo.None[float64]()), ShouldEqual, Placeholder)
		So(Label(mo.Some(75.0)), ShouldEqual, "01:15")
	})
}
