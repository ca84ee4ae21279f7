package files

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/pitchloop/pitchloop/filesystem"
	"github.com/pitchloop/pitchloop/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
	viper.Set(key.FilesRememberRecent, false)
}

func TestIsVideo(t *testing.T) {
	Convey("IsVideo judges by declared media type", t, func() {
		for _, p := range []string{"a.mp4", "B.MKV", "c.webm", "/x/y/clip.mov"} {
			So(IsVideo(p), ShouldBeTrue)
		}
		for _, p := range []string{"song.mp3", "notes.txt", "noext", "cover.png"} {
			So(IsVideo(p), ShouldBeFalse)
		}
	})

	Convey("Extensions are bare and every one of them is a video", t, func() {
		exts := Extensions()
		So(exts, ShouldContain, "mkv")
		for _, ext := range exts {
			So(IsVideo("clip."+ext), ShouldBeTrue)
		}
	})
}

func TestClean(t *testing.T) {
	Convey("Clean undoes terminal drag-and-drop quoting", t, func() {
		So(Clean("  '/tmp/my clip.mp4' "), ShouldEqual, "/tmp/my clip.mp4")
		So(Clean(`"/tmp/my clip.mp4"`), ShouldEqual, "/tmp/my clip.mp4")
		So(Clean(`/tmp/my\ clip.mp4`), ShouldEqual, "/tmp/my clip.mp4")
		So(Clean("file:///tmp/a.mp4"), ShouldEqual, "/tmp/a.mp4")
		So(Clean(""), ShouldBeEmpty)
	})
}

func TestResolve(t *testing.T) {
	Convey("Given a directory with a video and a song", t, func() {
		fs := filesystem.API()
		So(fs.MkdirAll("/media/clips", 0o755), ShouldBeNil)
		So(fs.WriteFile("/media/clips/take1.mp4", []byte{0}, 0o644), ShouldBeNil)
		So(fs.WriteFile("/media/clips/take2.mkv", []byte{0}, 0o644), ShouldBeNil)
		So(fs.WriteFile("/media/clips/song.mp3", []byte{0}, 0o644), ShouldBeNil)

		Convey("a video resolves to its absolute path", func() {
			p, err := Resolve("'/media/clips/take1.mp4'")
			So(err, ShouldBeNil)
			So(p, ShouldEqual, filepath.Clean("/media/clips/take1.mp4"))
		})

		Convey("a non-video is rejected before touching the filesystem", func() {
			_, err := Resolve("/media/clips/song.mp3")
			So(errors.Is(err, ErrNotVideo), ShouldBeTrue)
		})

		Convey("a missing video is not found", func() {
			_, err := Resolve("/media/clips/take9.mp4")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("suggestions list matching videos and skip other files", func() {
			So(Suggest("/media/clips/take"), ShouldResemble, []string{
				"/media/clips/take1.mp4",
				"/media/clips/take2.mkv",
			})
			So(Suggest("/media/clips/so"), ShouldBeEmpty)
			So(Suggest("/media/cl"), ShouldResemble, []string{"/media/clips/"})
		})

		Convey("suggestions respect the configured limit", func() {
			viper.Set(key.FilesMaxSuggestions, 1)
			defer viper.Set(key.FilesMaxSuggestions, 5)
			So(Suggest("/media/clips/"), ShouldHaveLength, 1)
		})
	})
}
