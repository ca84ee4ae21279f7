package cmd

import (
	"testing"

	"github.com/pitchloop/pitchloop/filesystem"
	"github.com/pitchloop/pitchloop/params"
	"github.com/pitchloop/pitchloop/where"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestParseLoopFlag(t *testing.T) {
	Convey("Loop ranges are split on the first dash", t, func() {
		start, stop, err := parseLoopFlag("1:05-1:20")
		So(err, ShouldBeNil)
		So(start, ShouldEqual, "1:05")
		So(stop, ShouldEqual, "1:20")
	})

	Convey("Either side may be left empty", t, func() {
		start, stop, err := parseLoopFlag(" 30 -")
		So(err, ShouldBeNil)
		So(start, ShouldEqual, "30")
		So(stop, ShouldBeEmpty)
	})

	Convey("A range without a dash is rejected", t, func() {
		_, _, err := parseLoopFlag("1:05")
		So(err, ShouldNotBeNil)
	})
}

func TestNewEngine(t *testing.T) {
	Convey("mpv is the only engine", t, func() {
		eng, err := newEngine("mpv")
		So(err, ShouldBeNil)
		So(eng, ShouldNotBeNil)

		_, err = newEngine("webaudio")
		So(err, ShouldNotBeNil)
	})
}

func TestShownValue(t *testing.T) {
	Convey("Volume is stored as an offset from full volume", t, func() {
		So(shownValue(params.Volume, "-20"), ShouldEqual, "80")
		So(shownValue(params.Pitch, "-3"), ShouldEqual, "-3")
		So(shownValue(params.Volume, "loud"), ShouldEqual, "loud")
	})
}

func TestJoinNames(t *testing.T) {
	Convey("Names read as a sentence", t, func() {
		So(joinNames([]string{"logs"}), ShouldEqual, "logs")
		So(joinNames([]string{"logs", "cache"}), ShouldEqual, "logs and cache")
		So(joinNames([]string{"logs", "cache", "temp"}), ShouldEqual, "logs, cache and temp")
	})
}

func TestEnvNames(t *testing.T) {
	Convey("Every variable carries the application prefix", t, func() {
		names := envNames()
		So(names, ShouldContain, "PITCHLOOP_AUDIO_INIT_TIMEOUT")
		So(names, ShouldContain, where.EnvConfigPath)
	})
}

func TestDirectoryOf(t *testing.T) {
	Convey("Files open their parent directory", t, func() {
		So(directoryOf("/cfg/pitchloop/settings.json"), ShouldEqual, "/cfg/pitchloop")
		So(directoryOf("/cfg/pitchloop/logs"), ShouldEqual, "/cfg/pitchloop/logs")
	})
}
