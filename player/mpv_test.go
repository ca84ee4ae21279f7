package player

import (
	"bufio"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pitchloop/pitchloop/filesystem"
	"github.com/pitchloop/pitchloop/where"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestMPV(t *testing.T) {
	Convey("MPV", t, func() {
		Convey("Commands fail before the process is launched", func() {
			mpv := NewMPV(Options{Role: Audio})
			So(mpv.IsRunning(), ShouldBeFalse)

			_, err := mpv.Command("get_property", "pid")
			So(errors.Is(err, ErrNotRunning), ShouldBeTrue)
			So(errors.Is(mpv.Seek(3), ErrNotRunning), ShouldBeTrue)
			So(mpv.Close(), ShouldBeNil)
		})

		Convey("Load rejects flag-like targets without touching the process", func() {
			mpv := NewMPV(Options{})
			err := mpv.Load("--script=evil.lua")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "invalid media target")
		})

		Convey("Listen requires a running process", func() {
			_, err := NewMPV(Options{}).Listen(func(Event) {}, "time-pos")
			So(errors.Is(err, ErrNotRunning), ShouldBeTrue)
		})
	})
}

func TestArgs(t *testing.T) {
	Convey("Given launch options", t, func() {
		Convey("A video process is windowed, muted and paused", func() {
			args := Options{Role: Video, Title: "clip\n.mp4"}.args("/tmp/s.sock")
			So(args, ShouldContain, "--input-ipc-server=/tmp/s.sock")
			So(args, ShouldContain, "--mute=yes")
			So(args, ShouldContain, "--pause=yes")
			So(args, ShouldContain, "--force-window=yes")
			So(args, ShouldContain, "--title=clip .mp4")
			So(args, ShouldNotContain, "--no-video")
		})

		Convey("An audio process has no video output", func() {
			args := Options{Role: Audio, Extra: []string{"--af=@pitch:rubberband"}}.args("/tmp/a.sock")
			So(args, ShouldContain, "--no-video")
			So(args, ShouldNotContain, "--mute=yes")
			So(args[len(args)-1], ShouldEqual, "--af=@pitch:rubberband")
		})

		Convey("The binary falls back to mpv", func() {
			So(Options{}.binary(), ShouldEqual, "mpv")
			So(Options{Binary: "/opt/mpv"}.binary(), ShouldEqual, "/opt/mpv")
		})

		Convey("Socket paths are unique and live in the temp dir", func() {
			a, b := newSocketPath(Video), newSocketPath(Video)
			So(a, ShouldNotEqual, b)
			So(filepath.Dir(a), ShouldEqual, where.Temp())
			So(strings.HasSuffix(a, ".sock"), ShouldBeTrue)
		})
	})
}

func TestSanitize(t *testing.T) {
	Convey("sanitizeMediaTarget", t, func() {
		for _, bad := range []string{"", "  ", "-o", "a\x00b", "ftp://host/x.mp4"} {
			_, err := sanitizeMediaTarget(bad)
			So(err, ShouldNotBeNil)
		}

		got, err := sanitizeMediaTarget(" /videos/../videos/a.mp4 ")
		So(err, ShouldBeNil)
		So(got, ShouldEqual, filepath.Clean("/videos/a.mp4"))

		got, err = sanitizeMediaTarget("file:///home/me/clip.webm")
		So(err, ShouldBeNil)
		So(got, ShouldEqual, filepath.Clean("/home/me/clip.webm"))

		got, err = sanitizeMediaTarget("https://example.com/v.mp4")
		So(err, ShouldBeNil)
		So(got, ShouldEqual, "https://example.com/v.mp4")
	})
}

func TestParseEvent(t *testing.T) {
	Convey("parseEvent", t, func() {
		Convey("Property changes carry the property name and value", func() {
			ev, ok := parseEvent([]byte(`{"event":"property-change","id":1,"name":"time-pos","data":12.5}`))
			So(ok, ShouldBeTrue)
			So(ev.Property, ShouldBeTrue)
			So(ev.Name, ShouldEqual, "time-pos")
			So(ev.Data, ShouldEqual, 12.5)
		})

		Convey("end-file exposes its reason", func() {
			ev, ok := parseEvent([]byte(`{"event":"end-file","reason":"error","file_error":"unrecognized file format"}`))
			So(ok, ShouldBeTrue)
			So(ev.Property, ShouldBeFalse)
			So(ev.Reason, ShouldEqual, "error")
			So(ev.FileError, ShouldEqual, "unrecognized file format")
		})

		Convey("Replies and garbage are skipped", func() {
			_, ok := parseEvent([]byte(`{"request_id":0,"error":"success"}`))
			So(ok, ShouldBeFalse)
			_, ok = parseEvent([]byte(`not json`))
			So(ok, ShouldBeFalse)
		})
	})
}

func TestReadReply(t *testing.T) {
	Convey("readReply", t, func() {
		cmd := []interface{}{"get_property", "speed"}

		Convey("skips broadcast events before the reply", func() {
			in := `{"event":"playback-restart"}` + "\n" + `{"data":1.5,"error":"success"}` + "\n"
			data, err := readReply(bufio.NewScanner(strings.NewReader(in)), cmd)
			So(err, ShouldBeNil)
			So(data, ShouldEqual, 1.5)
		})

		Convey("surfaces mpv errors as ReplyError", func() {
			in := `{"data":null,"error":"property unavailable"}` + "\n"
			_, err := readReply(bufio.NewScanner(strings.NewReader(in)), cmd)

			var reply *ReplyError
			So(errors.As(err, &reply), ShouldBeTrue)
			So(reply.Reason, ShouldEqual, "property unavailable")
			So(reply.Command, ShouldEqual, "get_property")
		})

		Convey("fails when the connection closes early", func() {
			_, err := readReply(bufio.NewScanner(strings.NewReader("")), cmd)
			So(err, ShouldNotBeNil)
		})
	})
}
