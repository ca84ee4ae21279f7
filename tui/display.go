package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pitchloop/pitchloop/audio"
	"github.com/pitchloop/pitchloop/coordinator"
	"github.com/pitchloop/pitchloop/loop"
	"github.com/pitchloop/pitchloop/params"
)

type (
	parameterMsg struct {
		name  params.Name
		value float64
	}
	boundMsg struct {
		field loop.Field
		label string
	}
	entryMsg struct {
		field loop.Field
		text  string
	}
	invalidMsg struct {
		field   loop.Field
		invalid bool
	}
	sessionMsg struct {
		session coordinator.Session
	}
	stageMsg struct {
		stage audio.Stage
	}
	audioReadyMsg    struct{}
	audioCanceledMsg struct{}
	audioFailedMsg   struct {
		err *audio.InitError
	}
	mediaFailedMsg struct {
		err error
	}
	positionMsg struct {
		position, duration float64
	}
	playbackMsg struct {
		playing bool
	}
)

var _ coordinator.Display = (*Display)(nil)

// Display receives widget updates from the coordinator and forwards them to
// the running program in the order they were made.
//
// Posting never blocks, so the coordinator may call it while the program is
// itself inside a coordinator call.
type Display struct {
	mu    sync.Mutex
	queue []tea.Msg
	wake  chan struct{}
}

// NewDisplay returns a display with nothing queued.
func NewDisplay() *Display {
	return &Display{wake: make(chan struct{}, 1)}
}

func (d *Display) post(msg tea.Msg) {
	d.mu.Lock()
	d.queue = append(d.queue, msg)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *Display) drain() []tea.Msg {
	d.mu.Lock()
	defer d.mu.Unlock()

	msgs := d.queue
	d.queue = nil
	return msgs
}

// pump delivers queued messages to send until ctx is done.
func (d *Display) pump(ctx context.Context, send func(tea.Msg)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.wake:
			for _, msg := range d.drain() {
				send(msg)
			}
		}
	}
}

func (d *Display) ShowParameter(name params.Name, value float64) {
	d.post(parameterMsg{name: name, value: value})
}

func (d *Display) ShowBound(field loop.Field, label string) {
	d.post(boundMsg{field: field, label: label})
}

func (d *Display) ShowEntry(field loop.Field, text string) {
	d.post(entryMsg{field: field, text: text})
}

func (d *Display) FlagInvalid(field loop.Field, invalid bool) {
	d.post(invalidMsg{field: field, invalid: invalid})
}

func (d *Display) SessionStarted(session coordinator.Session) {
	d.post(sessionMsg{session: session})
}

func (d *Display) AudioProgress(stage audio.Stage) {
	d.post(stageMsg{stage: stage})
}

func (d *Display) AudioReady() {
	d.post(audioReadyMsg{})
}

func (d *Display) AudioFailed(err *audio.InitError) {
	d.post(audioFailedMsg{err: err})
}

func (d *Display) AudioCanceled() {
	d.post(audioCanceledMsg{})
}

func (d *Display) MediaFailed(err error) {
	d.post(mediaFailedMsg{err: err})
}

func (d *Display) PositionChanged(position, duration float64) {
	d.post(positionMsg{position: position, duration: duration})
}

func (d *Display) PlaybackChanged(playing bool) {
	d.post(playbackMsg{playing: playing})
}
