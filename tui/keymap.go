// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/pitchloop/pitchloop/color"
	"github.com/pitchloop/pitchloop/style"
)

// statefulKeymap defines the keyboard interactions available within various application states.
type statefulKeymap struct {
	state   state
	editing bool

	quit, forceQuit,
	confirm, back,
	openFile, acceptSuggestion,
	playPause, seekBack, seekForward,
	markStart, markStop, resetLoop,
	nudgeDown, nudgeUp,
	next, prev, edit,
	retry,
	showHelp key.Binding
}

// setState updates the active keymap configuration to match the specified application state.
func (k *statefulKeymap) setState(newState state) {
	k.state = newState
}

func newStatefulKeymap() *statefulKeymap {
	return &statefulKeymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		openFile: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open file"),
		),
		acceptSuggestion: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "accept suggestion"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp(style.Fg(color.Orange)("space"), style.Fg(color.Orange)("play/pause")),
		),
		seekBack: key.NewBinding(
			key.WithKeys(",", "shift+left"),
			key.WithHelp(",", "back 5s"),
		),
		seekForward: key.NewBinding(
			key.WithKeys(".", "shift+right"),
			key.WithHelp(".", "forward 5s"),
		),
		markStart: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "loop start"),
		),
		markStop: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "loop stop"),
		),
		resetLoop: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear loop"),
		),
		nudgeDown: key.NewBinding(
			key.WithKeys("left", "h", "-"),
			key.WithHelp("←", "decrease"),
		),
		nudgeUp: key.NewBinding(
			key.WithKeys("right", "l", "+", "="),
			key.WithHelp("→", "increase"),
		),
		next: key.NewBinding(
			key.WithKeys("tab", "down", "j"),
			key.WithHelp("tab", "next field"),
		),
		prev: key.NewBinding(
			key.WithKeys("shift+tab", "up", "k"),
			key.WithHelp("shift+tab", "previous field"),
		),
		edit: key.NewBinding(
			key.WithKeys("enter", "e"),
			key.WithHelp("enter", "edit"),
		),
		retry: key.NewBinding(
			key.WithKeys("r", "enter"),
			key.WithHelp("r", "retry"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *statefulKeymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	to2 := func(a []key.Binding) ([]key.Binding, []key.Binding) {
		return a, a
	}

	switch k.state {
	case fileState:
		return to2(h(withDescription(k.confirm, "open"), k.acceptSuggestion, k.back, k.forceQuit))
	case playerState:
		if k.editing {
			return to2(h(withDescription(k.confirm, "apply"), withDescription(k.back, "cancel")))
		}
		return h(k.playPause, k.markStart, k.markStop, k.nudgeDown, k.nudgeUp, k.showHelp),
			h(k.playPause, k.seekBack, k.seekForward, k.markStart, k.markStop, k.resetLoop, k.next, k.prev, k.nudgeDown, k.nudgeUp, k.edit, k.openFile, k.quit)
	case loadingState:
		return to2(h(withDescription(k.back, "cancel"), k.forceQuit))
	case audioErrorState:
		return to2(h(k.retry, withDescription(k.back, "dismiss")))
	case errorState:
		return to2(h(k.back, k.quit))
	default:
		return to2(h())
	}
}

func (k *statefulKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *statefulKeymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}

func withDescription(k key.Binding, description string) key.Binding {
	return key.NewBinding(
		key.WithKeys(k.Keys()...),
		key.WithHelp(k.Help().Key, description),
	)
}
