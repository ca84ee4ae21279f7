package recent

import (
	"testing"

	"github.com/pitchloop/pitchloop/filesystem"
	"github.com/pitchloop/pitchloop/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
	viper.Set(key.FilesRememberRecent, true)
}

func TestRecent(t *testing.T) {
	Convey("Given remembered videos", t, func() {
		So(Forget(), ShouldBeNil)
		So(filesystem.API().MkdirAll("/videos", 0o755), ShouldBeNil)

		for _, p := range []string{"/videos/Lesson One.mp4", "/videos/lesson-two.webm"} {
			So(filesystem.API().WriteFile(p, []byte{0}, 0o644), ShouldBeNil)
		}

		So(Remember("/videos/Lesson One.mp4", 1), ShouldBeNil)
		So(Remember("/videos/lesson-two.webm", 3), ShouldBeNil)
		So(Remember("/videos/gone.mp4", 10), ShouldBeNil)

		Convey("suggestions are ranked and case-insensitive", func() {
			s := SuggestMany("lesson")
			So(s, ShouldResemble, []string{"/videos/lesson-two.webm", "/videos/Lesson One.mp4"})
			So(Suggest("one.mp4").MustGet(), ShouldEqual, "/videos/Lesson One.mp4")
		})

		Convey("files that no longer exist are not suggested", func() {
			So(SuggestMany("gone"), ShouldBeEmpty)
		})

		Convey("remembering again raises the rank", func() {
			So(Remember("/videos/Lesson One.mp4", 5), ShouldBeNil)
			So(SuggestMany("lesson")[0], ShouldEqual, "/videos/Lesson One.mp4")
		})

		Convey("nothing is suggested when disabled", func() {
			viper.Set(key.FilesRememberRecent, false)
			defer viper.Set(key.FilesRememberRecent, true)
			So(SuggestMany("lesson"), ShouldBeEmpty)
			So(Suggest("lesson").IsPresent(), ShouldBeFalse)
		})
	})
}
