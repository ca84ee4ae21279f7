package ui

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestModel(t *testing.T) {
	Convey("Given a notification model", t, func() {
		m := New(time.Second)

		Convey("it renders nothing extra while empty", func() {
			So(m.View("main"), ShouldEqual, "main")
		})

		Convey("a notification is shown on the last line", func() {
			cmd := m.Update(Notify("saved")())
			So(cmd, ShouldNotBeNil)
			So(m.Text(), ShouldEqual, "saved")
			So(m.View("first\nlast"), ShouldStartWith, "first\nlast  ")
			So(m.View("first\nlast"), ShouldContainSubstring, "saved")
		})

		Convey("an expired timer only clears its own notification", func() {
			m.Update(Warn("not a video file")())
			stale := clearMsg{id: m.id}
			m.Update(Notify("loaded")())

			m.Update(stale)
			So(m.Text(), ShouldEqual, "loaded")

			m.Update(clearMsg{id: m.id})
			So(m.Text(), ShouldBeEmpty)
		})
	})
}
