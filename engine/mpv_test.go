package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pitchloop/pitchloop/audio"
	"github.com/pitchloop/pitchloop/filesystem"
	"github.com/pitchloop/pitchloop/player"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPitchScale(t *testing.T) {
	Convey("PitchScale", t, func() {
		So(PitchScale(0), ShouldEqual, 1)
		So(PitchScale(12), ShouldAlmostEqual, 2, 1e-9)
		So(PitchScale(-12), ShouldAlmostEqual, 0.5, 1e-9)
		So(PitchScale(7), ShouldAlmostEqual, 1.4983, 1e-4)
	})
}

func TestFilterChain(t *testing.T) {
	Convey("filterChain labels both stages", t, func() {
		So(filterChain(0, 0), ShouldEqual, "@pitch:rubberband=pitch-scale=1,@vol:lavfi=[volume=volume=0dB]")
		So(filterChain(12, -30), ShouldEqual, "@pitch:rubberband=pitch-scale=2,@vol:lavfi=[volume=volume=-30dB]")
	})
}

func TestTrack(t *testing.T) {
	Convey("Given a track that is loading", t, func() {
		e := New("mpv")
		tr := &track{engine: e, loaded: make(chan struct{}), failed: make(chan error, 1)}
		e.current = tr

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		Convey("a known duration completes loading", func() {
			e.dispatch(player.Event{Name: "duration", Property: true, Data: 0.0})
			e.dispatch(player.Event{Name: "duration", Property: true, Data: 181.2})
			e.dispatch(player.Event{Name: "duration", Property: true, Data: 181.2})
			So(tr.WaitLoaded(ctx), ShouldBeNil)
		})

		Convey("a failed end-file is a decode error", func() {
			e.dispatch(player.Event{Name: "end-file", Reason: "error", FileError: "unrecognized file format"})
			err := tr.WaitLoaded(ctx)
			So(errors.Is(err, audio.ErrDecode), ShouldBeTrue)
		})

		Convey("waiting honours the context", func() {
			short, stop := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer stop()
			So(errors.Is(tr.WaitLoaded(short), context.DeadlineExceeded), ShouldBeTrue)
		})

		Convey("a disposed track stops receiving events", func() {
			So(tr.Dispose(), ShouldBeNil)
			So(e.current, ShouldBeNil)
			So(tr.Dispose(), ShouldBeNil)
		})

		Convey("volume before connect is remembered", func() {
			So(tr.SetVolume(-12), ShouldBeNil)
			So(tr.volume, ShouldEqual, -12)
		})
	})

	Convey("Given a stale track replaced by a newer one", t, func() {
		e := New("mpv")
		stale := &track{engine: e, url: "first.mp4", loaded: make(chan struct{}), failed: make(chan error, 1)}
		newer := &track{engine: e, url: "second.mp4", loaded: make(chan struct{}), failed: make(chan error, 1)}
		e.current = newer

		Convey("disposing the stale track leaves the newer one loaded", func() {
			So(stale.Dispose(), ShouldBeNil)
			So(e.current, ShouldEqual, newer)
			So(e.release(stale), ShouldBeFalse)
		})

		Convey("the stale track cannot install its filter chain", func() {
			err := stale.Connect(&shifter{engine: e})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "first.mp4")
		})

		Convey("a shifter of the stale track leaves the chain alone", func() {
			s := &shifter{engine: e, attached: true, track: stale}
			So(e.idleOr(stale), ShouldBeFalse)
			So(s.Dispose(), ShouldBeNil)
			So(s.attached, ShouldBeFalse)
			So(e.current, ShouldEqual, newer)
		})

		Convey("events keep reaching the newer track", func() {
			e.dispatch(player.Event{Name: "duration", Property: true, Data: 42.0})
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			So(newer.WaitLoaded(ctx), ShouldBeNil)
		})

		Convey("a load for a canceled attempt does not take over", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			p, err := e.NewPlayer(ctx, "first.mp4")
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(p, ShouldBeNil)
			So(e.current, ShouldEqual, newer)
		})
	})

	Convey("An unattached shifter only remembers its pitch", t, func() {
		s := &shifter{engine: New("mpv")}
		So(s.SetPitch(5), ShouldBeNil)
		So(s.semitones, ShouldEqual, 5)
		So(s.Dispose(), ShouldBeNil)
	})

	Convey("Starting the context without mpv is a context error", t, func() {
		e := New("/nonexistent/pitchloop-mpv")
		err := e.StartContext(context.Background())
		So(errors.Is(err, audio.ErrContext), ShouldBeTrue)
	})
}
