// Package coordinator keeps the muted video, the audio graph and the playback
// controls consistent with each other.
//
// UI calls and media events are serialized by one mutex; handlers only dispatch
// to the component that owns the affected state.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pitchloop/pitchloop/audio"
	"github.com/pitchloop/pitchloop/files"
	"github.com/pitchloop/pitchloop/log"
	"github.com/pitchloop/pitchloop/loop"
	"github.com/pitchloop/pitchloop/media"
	"github.com/pitchloop/pitchloop/params"
	"github.com/pitchloop/pitchloop/prefs"
	"github.com/pitchloop/pitchloop/recent"
	"github.com/samber/mo"
)

// ErrNotVideo is returned by Load for files that do not declare a video media type.
var ErrNotVideo = files.ErrNotVideo

// Media is the video element. Its own audio must stay muted.
type Media interface {
	CurrentTime() float64
	Seek(seconds float64) error
	SetPlaybackRate(multiplier float64) error
	Muted() bool
	SetMuted(muted bool) error
	Load(url string) error
	TogglePause() error
	Events() <-chan media.Event
}

// Notifier receives session-level updates for the presentation layer.
// Implementations must not call back into the coordinator synchronously.
type Notifier interface {
	SessionStarted(session Session)
	AudioProgress(stage audio.Stage)
	AudioReady()
	AudioFailed(err *audio.InitError)
	AudioCanceled()
	MediaFailed(err error)
	PositionChanged(position, duration float64)
	PlaybackChanged(playing bool)
}

// Display is everything the coordinator and its components render to.
type Display interface {
	params.Display
	loop.Display
	Notifier
}

// Coordinator owns the session and routes events between the components.
type Coordinator struct {
	mu sync.Mutex

	media   Media
	audio   *audio.Manager
	params  *params.Store
	loop    *loop.Controller
	display Display

	session  *Session
	duration float64
	playing  bool

	overrides   map[params.Name]string
	pendingLoop mo.Option[[2]string]
}

// New wires the components together. Nothing is loaded yet.
func New(m Media, a *audio.Manager, display Display, persist prefs.Store) *Coordinator {
	return &Coordinator{
		media:       m,
		audio:       a,
		display:     display,
		params:      params.New(a, m, display, persist),
		loop:        loop.New(m, a, display),
		overrides:   make(map[params.Name]string),
		pendingLoop: mo.None[[2]string](),
	}
}

// Session returns the current session, if a file has been loaded.
func (c *Coordinator) Session() mo.Option[Session] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return mo.None[Session]()
	}
	return mo.Some(*c.session)
}

// Load replaces the current session with the video at raw.
// Non-video input is rejected with ErrNotVideo and nothing changes.
func (c *Coordinator) Load(raw string) error {
	path, err := files.Resolve(raw)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.media.SetMuted(true); err != nil {
		log.Warnf("mute video: %v", err)
	}

	// The previous session stays in place until the new file is accepted.
	if err := c.media.Load(path); err != nil {
		err = fmt.Errorf("load %s: %w", path, err)
		c.logger().Errorf("%v", err)
		c.display.MediaFailed(err)
		return err
	}

	c.audio.Dispose()
	c.loop.Reset()
	c.session = newSession(path)
	c.duration = 0
	c.playing = false

	logger := c.logger()
	logger.Infof("loading %s", path)

	if err := recent.Remember(path, 1); err != nil {
		logger.Warnf("remember %s: %v", path, err)
	}

	c.display.SessionStarted(*c.session)
	return nil
}

// Override queues a parameter value to apply once audio is ready, after persisted values are restored.
func (c *Coordinator) Override(name params.Name, raw string) error {
	if err := params.Check(name, raw); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.overrides[name] = raw
	return nil
}

// OverrideLoop queues loop bounds to enter once the next video has loaded.
func (c *Coordinator) OverrideLoop(start, stop string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingLoop = mo.Some([2]string{start, stop})
}

// Run dispatches media events and audio outcomes until ctx is done.
func (c *Coordinator) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-c.media.Events():
			c.HandleMediaEvent(ev)
		case o := <-c.audio.Outcomes():
			c.HandleOutcome(o)
		case p := <-c.audio.Progress():
			c.HandleProgress(p)
		}
	}
}

// HandleMediaEvent dispatches one video element event.
func (c *Coordinator) HandleMediaEvent(ev media.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Kind {
	case media.LoadedData:
		c.onLoaded()
	case media.Error:
		c.onMediaError(ev.Err)
	case media.Play:
		c.playing = true
		if c.audio.Ready() {
			c.audio.Start(c.media.CurrentTime())
		}
		c.display.PlaybackChanged(true)
	case media.Pause:
		c.playing = false
		c.audio.Stop()
		c.display.PlaybackChanged(false)
	case media.TimeUpdate:
		c.loop.OnTimeUpdate(ev.Time)
		c.display.PositionChanged(c.media.CurrentTime(), c.duration)
	case media.VolumeChange:
		if !ev.Muted {
			if err := c.media.SetMuted(true); err != nil {
				log.Warnf("re-mute video: %v", err)
			}
		}
	case media.DurationChange:
		c.duration = ev.Time
		c.display.PositionChanged(c.media.CurrentTime(), c.duration)
	}
}

func (c *Coordinator) onLoaded() {
	if c.session == nil || c.session.Loaded {
		return
	}
	c.session.Loaded = true

	gen := c.audio.BeginInit(c.session.SourceURL)
	c.logger().Infof("video loaded, audio generation %d", gen)

	if bounds, ok := c.pendingLoop.Get(); ok {
		c.pendingLoop = mo.None[[2]string]()
		c.loop.EnterStart(bounds[0])
		c.loop.EnterStop(bounds[1])
	}
}

func (c *Coordinator) onMediaError(err error) {
	if err == nil {
		err = errors.New("unknown media error")
	}
	if c.session != nil {
		c.session.Loaded = false
	}
	c.logger().Errorf("media error: %v", err)
	c.display.MediaFailed(err)
}

// HandleOutcome applies the result of an audio initialization attempt. Stale outcomes are ignored.
func (c *Coordinator) HandleOutcome(o audio.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.audio.Current(o.Generation) {
		return
	}

	if o.Err != nil {
		if c.session != nil {
			c.session.AudioReady = false
		}
		var initErr *audio.InitError
		if !errors.As(o.Err, &initErr) {
			initErr = &audio.InitError{Kind: audio.Unknown, Err: o.Err}
		}
		c.display.AudioFailed(initErr)
		return
	}

	if c.session != nil {
		c.session.AudioReady = true
	}
	c.params.Restore()
	c.applyOverrides()
	c.display.AudioReady()

	if c.playing {
		c.audio.Start(c.media.CurrentTime())
	}
}

func (c *Coordinator) applyOverrides() {
	for _, name := range params.Names {
		raw, ok := c.overrides[name]
		if !ok {
			continue
		}
		c.params.Set(name, raw)
	}
	c.overrides = make(map[params.Name]string)
}

// HandleProgress forwards a stage change of the current attempt to the loading overlay.
func (c *Coordinator) HandleProgress(p audio.Progress) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.audio.Current(p.Generation) {
		c.display.AudioProgress(p.Stage)
	}
}

// CancelAudio aborts a pending audio initialization from the loading overlay.
func (c *Coordinator) CancelAudio() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.audio.Cancel(); err != nil {
		if c.session != nil {
			c.session.AudioReady = false
		}
		c.display.AudioCanceled()
	}
}

// RetryAudio re-runs a failed initialization after the retry delay.
func (c *Coordinator) RetryAudio() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.audio.Retry()
}

// SetParameter applies raw slider or text box input.
func (c *Coordinator) SetParameter(name params.Name, raw string) mo.Option[float64] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params.Set(name, raw)
}

// NudgeParameter steps a parameter by delta.
func (c *Coordinator) NudgeParameter(name params.Name, delta float64) mo.Option[float64] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params.Nudge(name, delta)
}

// Parameter returns the last applied value of name.
func (c *Coordinator) Parameter(name params.Name) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params.Current(name)
}

func (c *Coordinator) MarkStart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loop.MarkStart()
}

func (c *Coordinator) MarkStop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loop.MarkStop()
}

// EnterBound commits typed loop bound text when it is valid.
func (c *Coordinator) EnterBound(field loop.Field, text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loop.Enter(field, text)
}

func (c *Coordinator) ResetLoop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loop.Reset()
}

// LoopRange returns the committed loop bounds.
func (c *Coordinator) LoopRange() loop.Range {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loop.Range()
}

// TogglePlay resumes or pauses the video; the audio follows through the play and pause events.
func (c *Coordinator) TogglePlay() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil || !c.session.Loaded {
		return nil
	}
	return c.media.TogglePause()
}

// Seek moves the video by delta seconds and realigns the audio while playing.
func (c *Coordinator) Seek(delta float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil || !c.session.Loaded {
		return nil
	}
	pos := max(c.media.CurrentTime()+delta, 0)
	if err := c.media.Seek(pos); err != nil {
		return err
	}
	if c.playing && c.audio.Ready() {
		c.audio.Start(pos)
	}
	return nil
}

// Close releases the audio graph and its engine.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.audio.Close()
}

func (c *Coordinator) logger() *log.Entry {
	if c.session == nil {
		return log.With(log.Fields{})
	}
	return log.With(log.Fields{"session": c.session.ID})
}
