// Package media exposes an mpv window as the video element the coordinator drives.
//
// The element is always muted; its sound comes from the audio graph instead.
package media

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pitchloop/pitchloop/key"
	"github.com/pitchloop/pitchloop/log"
	"github.com/pitchloop/pitchloop/player"
	"github.com/spf13/viper"
)

// Kind names a media event.
type Kind int

const (
	LoadedData Kind = iota
	Error
	Play
	Pause
	TimeUpdate
	VolumeChange
	DurationChange
)

func (k Kind) String() string {
	switch k {
	case LoadedData:
		return "loadeddata"
	case Error:
		return "error"
	case Play:
		return "play"
	case Pause:
		return "pause"
	case TimeUpdate:
		return "timeupdate"
	case VolumeChange:
		return "volumechange"
	default:
		return "durationchange"
	}
}

// Event is a transport notification from the element.
type Event struct {
	Kind  Kind
	Time  float64
	Muted bool
	Err   error
}

// observed are the mpv properties the element mirrors.
var observed = []string{"time-pos", "pause", "mute", "duration"}

// Element is an mpv video window.
type Element struct {
	mpv      *player.MPV
	listener *player.EventListener
	events   chan Event
	tick     time.Duration

	mu       sync.Mutex
	pos      float64
	duration float64
	muted    bool
	paused   bool
	lastTick time.Time
}

// New returns an element that has not launched its window yet.
func New(title string) *Element {
	tick := viper.GetDuration(key.PlayerTickInterval)
	if tick <= 0 {
		tick = 250 * time.Millisecond
	}
	return &Element{
		mpv:    player.NewMPV(player.Options{Role: player.Video, Title: title}),
		events: make(chan Event, 64),
		tick:   tick,
		muted:  true,
		paused: true,
	}
}

// Open launches the window and subscribes to its events.
func (e *Element) Open(ctx context.Context) error {
	if err := e.mpv.Launch(ctx); err != nil {
		return fmt.Errorf("open video window: %w", err)
	}

	listener, err := e.mpv.Listen(e.handle, observed...)
	if err != nil {
		return fmt.Errorf("listen to video window: %w", err)
	}
	e.listener = listener
	return nil
}

// Events delivers element notifications in order. Time updates are dropped when the reader falls behind.
func (e *Element) Events() <-chan Event {
	return e.events
}

// Closed is closed when the window process exits.
func (e *Element) Closed() <-chan struct{} {
	return e.mpv.Wait()
}

// Load opens url in the window, paused.
func (e *Element) Load(url string) error {
	e.mu.Lock()
	e.pos, e.duration = 0, 0
	e.mu.Unlock()

	if err := e.mpv.Set("pause", true); err != nil {
		log.Warnf("pause before load: %v", err)
	}
	return e.mpv.Load(url)
}

func (e *Element) CurrentTime() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pos
}

func (e *Element) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration
}

func (e *Element) Seek(seconds float64) error {
	if err := e.mpv.Seek(seconds); err != nil {
		return err
	}
	e.mu.Lock()
	e.pos = seconds
	e.mu.Unlock()
	return nil
}

func (e *Element) SetPlaybackRate(multiplier float64) error {
	return e.mpv.Set("speed", multiplier)
}

func (e *Element) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

func (e *Element) SetMuted(muted bool) error {
	return e.mpv.Set("mute", muted)
}

func (e *Element) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// TogglePause resumes a paused element or pauses a playing one.
func (e *Element) TogglePause() error {
	return e.mpv.Set("pause", !e.Paused())
}

// Close stops listening and quits the window.
func (e *Element) Close() error {
	if e.listener != nil {
		e.listener.Stop()
	}
	return e.mpv.Close()
}

func (e *Element) handle(ev player.Event) {
	out, ok := e.translate(ev, time.Now())
	if !ok {
		return
	}

	if out.Kind == TimeUpdate {
		select {
		case e.events <- out:
		default:
		}
		return
	}
	e.events <- out
}

// translate maps an mpv notification onto an element event, updating the mirrored state.
// Time updates closer together than the tick interval are coalesced.
func (e *Element) translate(ev player.Event, now time.Time) (Event, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !ev.Property {
		switch ev.Name {
		case "file-loaded":
			return Event{Kind: LoadedData}, true
		case "end-file":
			if ev.Reason != "error" {
				return Event{}, false
			}
			reason := ev.FileError
			if reason == "" {
				reason = "unknown error"
			}
			return Event{Kind: Error, Err: fmt.Errorf("load video: %s", reason)}, true
		default:
			return Event{}, false
		}
	}

	switch ev.Name {
	case "time-pos":
		pos, ok := ev.Data.(float64)
		if !ok {
			return Event{}, false
		}
		e.pos = pos
		if now.Sub(e.lastTick) < e.tick {
			return Event{}, false
		}
		e.lastTick = now
		return Event{Kind: TimeUpdate, Time: pos}, true
	case "pause":
		paused, ok := ev.Data.(bool)
		if !ok || paused == e.paused {
			return Event{}, false
		}
		e.paused = paused
		if paused {
			return Event{Kind: Pause, Time: e.pos}, true
		}
		return Event{Kind: Play, Time: e.pos}, true
	case "mute":
		muted, ok := ev.Data.(bool)
		if !ok {
			return Event{}, false
		}
		e.muted = muted
		return Event{Kind: VolumeChange, Muted: muted}, true
	case "duration":
		duration, ok := ev.Data.(float64)
		if !ok {
			return Event{}, false
		}
		e.duration = duration
		return Event{Kind: DurationChange, Time: duration}, true
	}
	return Event{}, false
}
