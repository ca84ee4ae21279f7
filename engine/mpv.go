// Package engine implements the audio graph on a headless mpv process.
//
// The pitch shifter is mpv's rubberband filter and volume is an ffmpeg volume
// filter, both addressed by label so they can be retuned while playing.
// Speed changes go through mpv's own scaletempo, which keeps pitch and speed apart.
package engine

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/pitchloop/pitchloop/audio"
	"github.com/pitchloop/pitchloop/log"
	"github.com/pitchloop/pitchloop/player"
)

const (
	pitchLabel  = "pitch"
	volumeLabel = "vol"
)

// MPV is an audio.Engine. One process hosts at most one loaded track at a time.
type MPV struct {
	proc     *player.MPV
	listener *player.EventListener

	// loading serializes loads and unloads so a stale track never touches a newer one.
	loading sync.Mutex

	mu      sync.Mutex
	current *track
}

// New returns an engine whose process starts on the first StartContext.
func New(binary string) *MPV {
	return &MPV{
		proc: player.NewMPV(player.Options{Role: player.Audio, Binary: binary}),
	}
}

// StartContext launches the audio process if it is not running.
func (e *MPV) StartContext(ctx context.Context) error {
	if e.proc.IsRunning() {
		return nil
	}

	if err := e.proc.Launch(ctx); err != nil {
		return fmt.Errorf("%w: %v", audio.ErrContext, err)
	}

	listener, err := e.proc.Listen(e.dispatch, "duration")
	if err != nil {
		_ = e.proc.Close()
		return fmt.Errorf("%w: %v", audio.ErrContext, err)
	}
	e.listener = listener
	return nil
}

// NewPlayer loads url paused. Loading finishes asynchronously; see WaitLoaded.
// An attempt whose ctx is already done loads nothing, since a newer attempt may own the process.
func (e *MPV) NewPlayer(ctx context.Context, url string) (audio.Player, error) {
	e.loading.Lock()
	defer e.loading.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t := &track{
		engine: e,
		url:    url,
		loaded: make(chan struct{}),
		failed: make(chan error, 1),
	}

	e.mu.Lock()
	e.current = t
	e.mu.Unlock()

	if err := e.proc.Set("pause", true); err != nil {
		e.release(t)
		return nil, fmt.Errorf("pause audio: %w", err)
	}
	if err := e.proc.Load(url); err != nil {
		e.release(t)
		return nil, fmt.Errorf("load audio: %w", err)
	}
	return t, nil
}

// NewPitchShifter returns an unconnected shifter at zero semitones.
func (e *MPV) NewPitchShifter(context.Context) (audio.PitchShifter, error) {
	return &shifter{engine: e}, nil
}

// Close quits the audio process.
func (e *MPV) Close() error {
	if e.listener != nil {
		e.listener.Stop()
	}
	return e.proc.Close()
}

// release detaches t and reports whether it was the loaded track.
func (e *MPV) release(t *track) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current != t {
		return false
	}
	e.current = nil
	return true
}

func (e *MPV) owns(t *track) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return t != nil && e.current == t
}

// idleOr reports whether nothing newer than t is loaded.
func (e *MPV) idleOr(t *track) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current == nil || e.current == t
}

// dispatch routes process events to the track being loaded.
func (e *MPV) dispatch(ev player.Event) {
	e.mu.Lock()
	t := e.current
	e.mu.Unlock()

	if t != nil {
		t.observe(ev)
	}
}

type track struct {
	engine *MPV
	url    string

	once   sync.Once
	loaded chan struct{}
	failed chan error

	mu        sync.Mutex
	shifter   *shifter
	volume    float64
	disposed  bool
	connected bool
}

// observe treats a known duration as fully decoded and a failed end-file as a decode error.
func (t *track) observe(ev player.Event) {
	switch {
	case ev.Property && ev.Name == "duration":
		if d, ok := ev.Data.(float64); ok && d > 0 {
			t.once.Do(func() { close(t.loaded) })
		}
	case ev.Name == "end-file" && ev.Reason == "error":
		select {
		case t.failed <- fmt.Errorf("%w: %s", audio.ErrDecode, ev.FileError):
		default:
		}
	}
}

func (t *track) WaitLoaded(ctx context.Context) error {
	select {
	case <-t.loaded:
		return nil
	case err := <-t.failed:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Connect installs the shifter and the volume stage as one filter chain.
func (t *track) Connect(s audio.PitchShifter) error {
	sh, ok := s.(*shifter)
	if !ok {
		return fmt.Errorf("connect: foreign pitch shifter %T", s)
	}

	t.engine.loading.Lock()
	defer t.engine.loading.Unlock()

	if !t.engine.owns(t) {
		return fmt.Errorf("connect: %s is no longer loaded", t.url)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.engine.proc.Command("af", "set", filterChain(sh.semitones, t.volume)); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	sh.attach(t)
	t.shifter = sh
	t.connected = true
	return nil
}

// Start seeks to position and resumes. The offset is a scheduling delay and is not supported; it is ignored.
func (t *track) Start(_, position float64) error {
	if err := t.engine.proc.Seek(position); err != nil {
		return fmt.Errorf("seek audio: %w", err)
	}
	return t.engine.proc.Set("pause", false)
}

func (t *track) Stop() error {
	return t.engine.proc.Set("pause", true)
}

func (t *track) SetPlaybackRate(multiplier float64) error {
	return t.engine.proc.Set("speed", multiplier)
}

func (t *track) SetVolume(db float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.volume = db
	if !t.connected {
		return nil
	}
	_, err := t.engine.proc.Command("af-command", volumeLabel, "volume", formatDB(db))
	return err
}

// Dispose unloads the track if it is still the loaded one. Safe to call more than once.
func (t *track) Dispose() error {
	t.mu.Lock()
	if t.disposed {
		t.mu.Unlock()
		return nil
	}
	t.disposed = true
	t.mu.Unlock()

	t.engine.loading.Lock()
	defer t.engine.loading.Unlock()

	if !t.engine.release(t) || !t.engine.proc.IsRunning() {
		return nil
	}
	if err := t.engine.proc.Unload(); err != nil {
		log.Warnf("unload %s: %v", t.url, err)
		return err
	}
	return nil
}

type shifter struct {
	engine *MPV

	mu        sync.Mutex
	semitones float64
	attached  bool
	track     *track
}

func (s *shifter) attach(t *track) {
	s.mu.Lock()
	s.attached = true
	s.track = t
	s.mu.Unlock()
}

// SetPitch retunes the rubberband filter in place, or remembers the value until connected.
func (s *shifter) SetPitch(semitones float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.semitones = semitones
	if !s.attached {
		return nil
	}
	_, err := s.engine.proc.Command("af-command", pitchLabel, "set-pitch", formatFloat(PitchScale(semitones)))
	return err
}

// Dispose removes the filter chain while its track is still loaded.
func (s *shifter) Dispose() error {
	s.mu.Lock()
	attached, t := s.attached, s.track
	s.attached = false
	s.track = nil
	s.mu.Unlock()

	if !attached {
		return nil
	}

	s.engine.loading.Lock()
	defer s.engine.loading.Unlock()

	if !s.engine.idleOr(t) || !s.engine.proc.IsRunning() {
		return nil
	}
	_, err := s.engine.proc.Command("af", "set", "")
	return err
}

// PitchScale converts semitones to a frequency ratio.
func PitchScale(semitones float64) float64 {
	return math.Pow(2, semitones/12)
}

func filterChain(semitones, db float64) string {
	return fmt.Sprintf("@%s:rubberband=pitch-scale=%s,@%s:lavfi=[volume=volume=%s]",
		pitchLabel, formatFloat(PitchScale(semitones)),
		volumeLabel, formatDB(db))
}

func formatDB(db float64) string {
	return formatFloat(db) + "dB"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
