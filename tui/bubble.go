// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pitchloop/pitchloop/audio"
	"github.com/pitchloop/pitchloop/constant"
	"github.com/pitchloop/pitchloop/coordinator"
	"github.com/pitchloop/pitchloop/internal/ui"
	"github.com/pitchloop/pitchloop/loop"
	"github.com/pitchloop/pitchloop/params"
	"github.com/pitchloop/pitchloop/style"
	"github.com/pitchloop/pitchloop/util"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Controller is the part of the coordinator the interface drives.
type Controller interface {
	Load(raw string) error
	SetParameter(name params.Name, raw string) mo.Option[float64]
	NudgeParameter(name params.Name, delta float64) mo.Option[float64]
	MarkStart()
	MarkStop()
	EnterBound(field loop.Field, text string) bool
	ResetLoop()
	TogglePlay() error
	Seek(delta float64) error
	CancelAudio()
	RetryAudio() bool
}

// statefulBubble encapsulates the application state, its component models and workflow tracking.
type statefulBubble struct {
	state         state
	statesHistory util.Stack[state]

	keymap     *statefulKeymap
	controller Controller

	// components
	spinnerC  spinner.Model
	fileC     textinput.Model
	positionC progress.Model
	helpC     help.Model
	paramC    map[params.Name]*parameterWidget
	boundC    map[loop.Field]*boundWidget

	focus   focusTarget
	editing bool

	session     mo.Option[coordinator.Session]
	stage       audio.Stage
	audioErr    *audio.InitError
	lastError   error
	playing     bool
	position    float64
	duration    float64
	suggestions []string

	width, height int
	notifier      *ui.Model

	options *Options
}

// raiseError shows a media failure and waits for the user to dismiss it.
func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.newState(errorState)
}

// setState performs a synchronous transition of both the application workflow and its associated keymap.
func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

// newState transitions to s and records the previous state, unless it is a transient overlay.
func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}

	if !lo.Contains([]state{
		loadingState,
		audioErrorState,
		errorState,
	}, b.state) {
		b.statesHistory.Push(b.state)
	}

	b.setState(s)
}

// previousState restores the application to its immediate predecessor in the navigation stack.
func (b *statefulBubble) previousState() {
	if s, ok := b.statesHistory.Pop(); ok {
		b.setState(s)
	}
}

// resize propagates terminal dimension changes to all child component models.
func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()

	styledWidth := width - x
	styledHeight := height - y

	b.fileC.Width = max(styledWidth-len(b.fileC.Prompt)-1, 10)
	b.positionC.Width = max(styledWidth-16, 10)

	for _, w := range b.paramC {
		w.sliderC.Width = sliderWidth(styledWidth)
	}

	b.width = styledWidth
	b.height = styledHeight
	b.helpC.Width = styledWidth
}

// focusedParameter returns the parameter widget under the cursor, if the cursor is on one.
func (b *statefulBubble) focusedParameter() (*parameterWidget, bool) {
	switch b.focus {
	case focusPitch:
		return b.paramC[params.Pitch], true
	case focusRate:
		return b.paramC[params.PlaybackRate], true
	case focusVolume:
		return b.paramC[params.Volume], true
	default:
		return nil, false
	}
}

// focusedBound returns the loop bound widget under the cursor, if the cursor is on one.
func (b *statefulBubble) focusedBound() (*boundWidget, bool) {
	switch b.focus {
	case focusStart:
		return b.boundC[loop.Start], true
	case focusStop:
		return b.boundC[loop.Stop], true
	default:
		return nil, false
	}
}

func (b *statefulBubble) moveFocus(delta int) {
	n := int(focusCount)
	b.focus = focusTarget(((int(b.focus)+delta)%n + n) % n)
}

// startEditing hands keyboard input to the text box under the cursor.
func (b *statefulBubble) startEditing() tea.Cmd {
	var cmd tea.Cmd
	if w, ok := b.focusedParameter(); ok {
		cmd = w.inputC.Focus()
		w.inputC.CursorEnd()
	} else if w, ok := b.focusedBound(); ok {
		cmd = w.inputC.Focus()
		w.inputC.CursorEnd()
	}

	b.editing = true
	b.keymap.editing = true
	return cmd
}

func (b *statefulBubble) stopEditing() {
	b.editing = false
	b.keymap.editing = false
}

// newBubble performs a complete initialization of the application's primary UI model.
func newBubble(options *Options) *statefulBubble {
	keymap := newStatefulKeymap()
	bubble := statefulBubble{
		statesHistory: util.Stack[state]{},
		keymap:        keymap,
		controller:    options.Controller,
		paramC:        newParameterWidgets(),
		boundC: map[loop.Field]*boundWidget{
			loop.Start: newBoundWidget(loop.Start),
			loop.Stop:  newBoundWidget(loop.Stop),
		},
		session:  mo.None[coordinator.Session](),
		notifier: ui.New(3 * time.Second),
		options:  options,
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(style.AccentColor)

	bubble.fileC = textinput.New()
	bubble.fileC.Placeholder = fmt.Sprintf("Path to a video, or drop one here (v%s)", constant.Version)
	bubble.fileC.CharLimit = 4096
	bubble.fileC.Prompt = "> "

	bubble.positionC = progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bubble.positionC.EmptyColor = string(style.SliderEmptyColor)

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	bubble.setState(fileState)
	bubble.fileC.Focus()

	return &bubble
}
