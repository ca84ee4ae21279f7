// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"fmt"

	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pitchloop/pitchloop/internal/ui"
	"github.com/samber/mo"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Notifications and their expiry timers
	cmd := b.notifier.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
		return b, cmd
	case tea.KeyMsg:
		if bubblesKey.Matches(msg, b.keymap.forceQuit) {
			return b, tea.Quit
		}
	case spinner.TickMsg:
		if b.state != loadingState {
			return b, cmd
		}
		var tick tea.Cmd
		b.spinnerC, tick = b.spinnerC.Update(msg)
		return b, tea.Batch(cmd, tick)
	case loadResultMsg:
		return b, tea.Batch(cmd, b.onLoadResult(msg))
	case suggestionsMsg:
		if msg.query == b.fileC.Value() {
			b.suggestions = msg.suggestions
		}
		return b, cmd
	default:
		if isDisplayMsg(msg) {
			return b, tea.Batch(cmd, b.updateDisplay(msg))
		}
	}

	switch b.state {
	case fileState:
		return b.updateFile(msg, cmd)
	case playerState:
		return b.updatePlayer(msg, cmd)
	case loadingState:
		return b.updateLoading(msg, cmd)
	case audioErrorState:
		return b.updateAudioError(msg, cmd)
	case errorState:
		return b.updateError(msg, cmd)
	default:
		return b, cmd
	}
}

func isDisplayMsg(msg tea.Msg) bool {
	switch msg.(type) {
	case parameterMsg, boundMsg, entryMsg, invalidMsg,
		sessionMsg, stageMsg, audioReadyMsg, audioFailedMsg, audioCanceledMsg,
		mediaFailedMsg, positionMsg, playbackMsg:
		return true
	}
	return false
}

// updateDisplay applies an update posted by the coordinator.
func (b *statefulBubble) updateDisplay(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case parameterMsg:
		if w, ok := b.paramC[msg.name]; ok {
			w.show(msg.value)
		}
	case boundMsg:
		b.boundC[msg.field].label = msg.label
	case entryMsg:
		b.boundC[msg.field].showEntry(msg.text)
	case invalidMsg:
		b.boundC[msg.field].invalid = msg.invalid
	case sessionMsg:
		b.cancelEditing()
		b.session = mo.Some(msg.session)
		b.position, b.duration, b.playing = 0, 0, false
		b.audioErr = nil
		b.lastError = nil
		b.suggestions = nil
		b.fileC.SetValue("")
		b.fileC.Blur()
		b.statesHistory.Clear()
		b.setState(playerState)
		return ui.Notify("Opened " + msg.session.Title())
	case stageMsg:
		b.stage = msg.stage
		switch b.state {
		case playerState:
			b.cancelEditing()
			b.newState(loadingState)
			return b.spinnerC.Tick
		case audioErrorState:
			b.setState(loadingState)
			return b.spinnerC.Tick
		}
	case audioReadyMsg:
		if s, ok := b.session.Get(); ok {
			s.AudioReady = true
			b.session = mo.Some(s)
		}
		b.audioErr = nil
		if b.state == loadingState {
			b.previousState()
		}
		return ui.Notify("Audio ready")
	case audioFailedMsg:
		b.audioErr = msg.err
		switch b.state {
		case loadingState:
			b.setState(audioErrorState)
		case playerState:
			b.cancelEditing()
			b.newState(audioErrorState)
		default:
			return ui.Warn(msg.err.Message())
		}
	case audioCanceledMsg:
		if b.state == loadingState {
			b.previousState()
		}
		return ui.Warn("Audio loading canceled. Reopen the file to try again.")
	case mediaFailedMsg:
		b.cancelEditing()
		if s, ok := b.session.Get(); ok {
			s.Loaded = false
			b.session = mo.Some(s)
		}
		b.raiseError(msg.err)
	case positionMsg:
		b.position, b.duration = msg.position, msg.duration
	case playbackMsg:
		b.playing = msg.playing
	}
	return nil
}

func (b *statefulBubble) updateFile(msg tea.Msg, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case msg.Paste:
			// A file dropped onto the terminal arrives as a paste.
			b.fileC.SetValue(string(msg.Runes))
			b.fileC.CursorEnd()
			return b, tea.Batch(cmd, b.loadFile(b.fileC.Value()))
		case bubblesKey.Matches(msg, b.keymap.confirm):
			if b.fileC.Value() == "" {
				return b, cmd
			}
			return b, tea.Batch(cmd, b.loadFile(b.fileC.Value()))
		case bubblesKey.Matches(msg, b.keymap.acceptSuggestion):
			if len(b.suggestions) == 0 {
				return b, cmd
			}
			b.fileC.SetValue(b.suggestions[0])
			b.fileC.CursorEnd()
			return b, tea.Batch(cmd, b.suggest(b.fileC.Value()))
		case bubblesKey.Matches(msg, b.keymap.back):
			if b.session.IsPresent() {
				b.fileC.Blur()
				b.previousState()
				return b, cmd
			}
			b.fileC.SetValue("")
			b.suggestions = nil
			return b, cmd
		}
	}

	before := b.fileC.Value()
	var input tea.Cmd
	b.fileC, input = b.fileC.Update(msg)
	if after := b.fileC.Value(); after != before {
		if after == "" {
			b.suggestions = nil
		} else {
			input = tea.Batch(input, b.suggest(after))
		}
	}
	return b, tea.Batch(cmd, input)
}

func (b *statefulBubble) updatePlayer(msg tea.Msg, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, cmd
	}

	if keyMsg.Paste {
		return b, tea.Batch(cmd, b.loadFile(string(keyMsg.Runes)))
	}

	if b.editing {
		return b, tea.Batch(cmd, b.updateEditing(keyMsg))
	}

	switch {
	case bubblesKey.Matches(keyMsg, b.keymap.quit):
		return b, tea.Quit
	case bubblesKey.Matches(keyMsg, b.keymap.openFile):
		b.suggestions = nil
		b.fileC.SetValue("")
		b.newState(fileState)
		return b, tea.Batch(cmd, b.fileC.Focus())
	case bubblesKey.Matches(keyMsg, b.keymap.playPause):
		return b, tea.Batch(cmd, b.transport(b.controller.TogglePlay()))
	case bubblesKey.Matches(keyMsg, b.keymap.seekBack):
		return b, tea.Batch(cmd, b.transport(b.controller.Seek(-seekStep)))
	case bubblesKey.Matches(keyMsg, b.keymap.seekForward):
		return b, tea.Batch(cmd, b.transport(b.controller.Seek(seekStep)))
	case bubblesKey.Matches(keyMsg, b.keymap.markStart):
		b.controller.MarkStart()
	case bubblesKey.Matches(keyMsg, b.keymap.markStop):
		b.controller.MarkStop()
	case bubblesKey.Matches(keyMsg, b.keymap.resetLoop):
		b.controller.ResetLoop()
	case bubblesKey.Matches(keyMsg, b.keymap.next):
		b.moveFocus(1)
	case bubblesKey.Matches(keyMsg, b.keymap.prev):
		b.moveFocus(-1)
	case bubblesKey.Matches(keyMsg, b.keymap.nudgeDown):
		if w, ok := b.focusedParameter(); ok {
			return b, tea.Batch(cmd, b.nudge(w, -w.step()))
		}
	case bubblesKey.Matches(keyMsg, b.keymap.nudgeUp):
		if w, ok := b.focusedParameter(); ok {
			return b, tea.Batch(cmd, b.nudge(w, w.step()))
		}
	case bubblesKey.Matches(keyMsg, b.keymap.edit):
		return b, tea.Batch(cmd, b.startEditing())
	case bubblesKey.Matches(keyMsg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
	case bubblesKey.Matches(keyMsg, b.keymap.retry):
		if b.audioErr != nil && b.controller.RetryAudio() {
			return b, tea.Batch(cmd, ui.Notify("Retrying audio..."))
		}
	}

	return b, cmd
}

// updateEditing routes keys to the focused text box and validates it as it changes.
func (b *statefulBubble) updateEditing(msg tea.KeyMsg) tea.Cmd {
	switch {
	case bubblesKey.Matches(msg, b.keymap.confirm):
		if w, ok := b.focusedParameter(); ok {
			return b.commitParameter(w)
		}
		if w, ok := b.focusedBound(); ok {
			return b.commitBound(w)
		}
		return nil
	case bubblesKey.Matches(msg, b.keymap.back):
		b.cancelEditing()
		return nil
	}

	var cmd tea.Cmd
	if w, ok := b.focusedParameter(); ok {
		w.inputC, cmd = w.inputC.Update(msg)
		w.check()
	} else if w, ok := b.focusedBound(); ok {
		w.inputC, cmd = w.inputC.Update(msg)
		w.check()
	}
	return cmd
}

func (b *statefulBubble) updateLoading(msg tea.Msg, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && bubblesKey.Matches(msg, b.keymap.back) {
		b.controller.CancelAudio()
	}
	return b, cmd
}

func (b *statefulBubble) updateAudioError(msg tea.Msg, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, cmd
	}

	switch {
	case bubblesKey.Matches(keyMsg, b.keymap.retry):
		if !b.controller.RetryAudio() {
			b.previousState()
			return b, tea.Batch(cmd, ui.Warn("Nothing to retry"))
		}
		b.setState(loadingState)
		return b, tea.Batch(cmd, b.spinnerC.Tick, ui.Notify(fmt.Sprintf("Retrying %s", b.title())))
	case bubblesKey.Matches(keyMsg, b.keymap.back):
		b.previousState()
	}
	return b, cmd
}

func (b *statefulBubble) updateError(msg tea.Msg, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, cmd
	}

	switch {
	case bubblesKey.Matches(keyMsg, b.keymap.quit):
		return b, tea.Quit
	case bubblesKey.Matches(keyMsg, b.keymap.back):
		b.previousState()
		if b.state != fileState {
			b.newState(fileState)
		}
		return b, tea.Batch(cmd, b.fileC.Focus())
	}
	return b, cmd
}
