package util

import (
	"testing"

	"github.com/pitchloop/pitchloop/filesystem"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "file", "files"), ShouldEqual, "1 file")
		So(Quantify(2, "file", "files"), ShouldEqual, "2 files")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("hello"), ShouldEqual, "Hello")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestStack(t *testing.T) {
	Convey("Stack", t, func() {
		var s Stack[int]
		s.Push(1)
		s.Push(2)
		So(s.Len(), ShouldEqual, 2)

		item, ok := s.Pop()
		So(ok, ShouldBeTrue)
		So(item, ShouldEqual, 2)

		s.Clear()
		So(s.Len(), ShouldEqual, 0)
		_, ok = s.Pop()
		So(ok, ShouldBeFalse)
	})
}

func TestDelete(t *testing.T) {
	Convey("Given a directory on the active filesystem", t, func() {
		filesystem.SetMemMapFs()
		fs := filesystem.API()
		So(fs.MkdirAll("/tmp/pitchloop/sockets", 0o755), ShouldBeNil)
		So(afero.WriteFile(fs, "/tmp/pitchloop/sockets/video.sock", nil, 0o644), ShouldBeNil)

		Convey("Delete removes it recursively", func() {
			So(Delete("/tmp/pitchloop"), ShouldBeNil)
			exists, err := afero.Exists(fs, "/tmp/pitchloop")
			So(err, ShouldBeNil)
			So(exists, ShouldBeFalse)
		})

		Convey("Delete of a missing path reports it", func() {
			So(Delete("/tmp/nothing"), ShouldNotBeNil)
		})
	})
}
