package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type fakeEngine struct {
	mu         sync.Mutex
	contextErr error
	loadErr    map[string]error
	hold       map[string]chan struct{}
	players    []*fakePlayer
	shifters   []*fakeShifter
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		loadErr: map[string]error{},
		hold:    map[string]chan struct{}{},
	}
}

func (e *fakeEngine) StartContext(context.Context) error { return e.contextErr }

func (e *fakeEngine) NewPlayer(_ context.Context, url string) (Player, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := &fakePlayer{url: url, hold: e.hold[url], loadErr: e.loadErr[url], disposed: make(chan struct{})}
	e.players = append(e.players, p)
	return p, nil
}

func (e *fakeEngine) NewPitchShifter(context.Context) (PitchShifter, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := &fakeShifter{disposed: make(chan struct{})}
	e.shifters = append(e.shifters, s)
	return s, nil
}

func (e *fakeEngine) Close() error { return nil }

func (e *fakeEngine) player(i int) *fakePlayer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.players[i]
}

func (e *fakeEngine) shifter(i int) *fakeShifter {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shifters[i]
}

type fakePlayer struct {
	url     string
	hold    chan struct{}
	loadErr error

	mu        sync.Mutex
	connected bool
	starts    []float64
	volume    float64
	rate      float64
	once      sync.Once
	disposed  chan struct{}
}

func (p *fakePlayer) WaitLoaded(ctx context.Context) error {
	if p.hold != nil {
		select {
		case <-p.hold:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return p.loadErr
}

func (p *fakePlayer) Connect(PitchShifter) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = true
	return nil
}

func (p *fakePlayer) Start(_, position float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.starts = append(p.starts, position)
	return nil
}

func (p *fakePlayer) Stop() error { return nil }

func (p *fakePlayer) SetPlaybackRate(v float64) error {
	p.rate = v
	return nil
}

func (p *fakePlayer) SetVolume(v float64) error {
	p.volume = v
	return nil
}

func (p *fakePlayer) Dispose() error {
	p.once.Do(func() { close(p.disposed) })
	return nil
}

func (p *fakePlayer) isDisposed() bool {
	return closedWithin(p.disposed, time.Second)
}

type fakeShifter struct {
	pitch    float64
	once     sync.Once
	disposed chan struct{}
}

func (s *fakeShifter) SetPitch(v float64) error {
	s.pitch = v
	return nil
}

func (s *fakeShifter) Dispose() error {
	s.once.Do(func() { close(s.disposed) })
	return nil
}

func closedWithin(ch chan struct{}, d time.Duration) bool {
	select {
	case <-ch:
		return true
	case <-time.After(d):
		return false
	}
}

func nextOutcome(m *Manager) (Outcome, bool) {
	select {
	case o := <-m.Outcomes():
		return o, true
	case <-time.After(2 * time.Second):
		return Outcome{}, false
	}
}

func TestManager(t *testing.T) {
	Convey("Given an audio manager", t, func() {
		engine := newFakeEngine()
		m := NewManager(engine, Options{Timeout: 200 * time.Millisecond, RetryDelay: 10 * time.Millisecond})

		Convey("Operations are no-ops before the graph is ready", func() {
			So(m.State(), ShouldEqual, Idle)
			So(m.Start(3), ShouldBeFalse)
			So(m.Stop(), ShouldBeFalse)
			So(m.SetPitch(2), ShouldBeFalse)
			So(m.SetVolume(-10), ShouldBeFalse)
			So(m.SetPlaybackRate(1.5), ShouldBeFalse)
			So(m.Retry(), ShouldBeFalse)
			So(m.Cancel(), ShouldBeNil)
		})

		Convey("A successful init becomes ready", func() {
			gen := m.BeginInit("song.mp4")
			o, ok := nextOutcome(m)
			So(ok, ShouldBeTrue)
			So(o.Generation, ShouldEqual, gen)
			So(o.Err, ShouldBeNil)
			So(m.State(), ShouldEqual, Ready)
			So(engine.player(0).connected, ShouldBeTrue)

			Convey("and drives the graph", func() {
				So(m.Start(42), ShouldBeTrue)
				So(engine.player(0).starts, ShouldResemble, []float64{42})
				So(m.SetPitch(-3), ShouldBeTrue)
				So(engine.shifter(0).pitch, ShouldEqual, -3)
				So(m.SetVolume(-20), ShouldBeTrue)
				So(engine.player(0).volume, ShouldEqual, -20)
			})

			Convey("Dispose releases it and is idempotent", func() {
				m.Dispose()
				m.Dispose()
				So(m.State(), ShouldEqual, Idle)
				So(engine.player(0).isDisposed(), ShouldBeTrue)
				So(m.Start(0), ShouldBeFalse)
			})

			Convey("A new init disposes the previous graph first", func() {
				m.BeginInit("other.mp4")
				So(engine.player(0).isDisposed(), ShouldBeTrue)
				_, ok := nextOutcome(m)
				So(ok, ShouldBeTrue)
				So(m.State(), ShouldEqual, Ready)
			})
		})

		Convey("A superseded attempt never reports and disposes what it built", func() {
			release := make(chan struct{})
			engine.hold["first.mp4"] = release

			first := m.BeginInit("first.mp4")
			time.Sleep(20 * time.Millisecond)
			second := m.BeginInit("second.mp4")
			close(release)

			o, ok := nextOutcome(m)
			So(ok, ShouldBeTrue)
			So(o.Generation, ShouldEqual, second)
			So(o.Generation, ShouldNotEqual, first)
			So(o.Err, ShouldBeNil)
			So(engine.player(0).isDisposed(), ShouldBeTrue)
			So(m.State(), ShouldEqual, Ready)

			select {
			case extra := <-m.Outcomes():
				So(extra, ShouldBeNil)
			case <-time.After(50 * time.Millisecond):
			}
		})

		Convey("An init that never loads times out", func() {
			engine.hold["slow.mp4"] = make(chan struct{})

			gen := m.BeginInit("slow.mp4")
			o, ok := nextOutcome(m)
			So(ok, ShouldBeTrue)
			So(o.Generation, ShouldEqual, gen)
			So(KindOf(o.Err), ShouldEqual, Timeout)
			So(m.State(), ShouldEqual, Failed)
			So(m.LastError().Kind, ShouldEqual, Timeout)
			So(engine.player(0).isDisposed(), ShouldBeTrue)
			So(closedWithin(engine.shifter(0).disposed, time.Second), ShouldBeTrue)

			Convey("and Retry starts over with the same file", func() {
				close(engine.hold["slow.mp4"])
				So(m.Retry(), ShouldBeTrue)

				o, ok := nextOutcome(m)
				So(ok, ShouldBeTrue)
				So(o.Err, ShouldBeNil)
				So(o.Generation, ShouldBeGreaterThan, gen)
				So(engine.player(1).url, ShouldEqual, "slow.mp4")
				So(m.Ready(), ShouldBeTrue)
			})

			Convey("and Dispose during the retry delay wins", func() {
				m.opts.RetryDelay = 30 * time.Millisecond
				So(m.Retry(), ShouldBeTrue)
				m.Dispose()
				time.Sleep(60 * time.Millisecond)
				So(m.State(), ShouldEqual, Idle)
			})
		})

		Convey("Decode failures are categorized", func() {
			engine.loadErr["bad.mkv"] = fmt.Errorf("load: %w", ErrDecode)
			m.BeginInit("bad.mkv")
			o, _ := nextOutcome(m)
			So(KindOf(o.Err), ShouldEqual, DecodeError)
			So(engine.player(0).isDisposed(), ShouldBeTrue)
		})

		Convey("Context failures are categorized", func() {
			engine.contextErr = fmt.Errorf("start: %w", ErrContext)
			m.BeginInit("song.mp4")
			o, _ := nextOutcome(m)
			So(KindOf(o.Err), ShouldEqual, ContextError)
			So(o.Err.(*InitError).Message(), ShouldContainSubstring, "audio output")
		})

		Convey("Cancel aborts a pending init", func() {
			engine.hold["slow.mp4"] = make(chan struct{})
			m.BeginInit("slow.mp4")
			time.Sleep(20 * time.Millisecond)

			err := m.Cancel()
			So(KindOf(err), ShouldEqual, Canceled)
			So(m.State(), ShouldEqual, Idle)
			So(engine.player(0).isDisposed(), ShouldBeTrue)

			select {
			case o := <-m.Outcomes():
				So(o, ShouldBeNil)
			case <-time.After(50 * time.Millisecond):
			}
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("classify maps raw failures onto kinds", t, func() {
		So(classify(context.DeadlineExceeded).Kind, ShouldEqual, Timeout)
		So(classify(fmt.Errorf("wrap: %w", context.Canceled)).Kind, ShouldEqual, Canceled)
		So(classify(errors.New("AudioContext was not allowed to start")).Kind, ShouldEqual, ContextError)
		So(classify(errors.New("unable to decode audio data")).Kind, ShouldEqual, DecodeError)
		So(classify(errors.New("unknown file format")).Kind, ShouldEqual, DecodeError)
		So(classify(errors.New("boom")).Kind, ShouldEqual, Unknown)

		inner := &InitError{Kind: Timeout}
		So(classify(fmt.Errorf("outer: %w", inner)), ShouldEqual, inner)
	})
}
