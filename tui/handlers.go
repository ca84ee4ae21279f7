package tui

import (
	"errors"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pitchloop/pitchloop/files"
	"github.com/pitchloop/pitchloop/internal/ui"
	"github.com/pitchloop/pitchloop/log"
	"github.com/pitchloop/pitchloop/params"
)

const seekStep = 5.0

type (
	loadResultMsg struct {
		raw string
		err error
	}
	suggestionsMsg struct {
		query       string
		suggestions []string
	}
)

// loadFile opens raw off the update loop; the session itself arrives through the display.
func (b *statefulBubble) loadFile(raw string) tea.Cmd {
	controller := b.controller
	return func() tea.Msg {
		return loadResultMsg{raw: raw, err: controller.Load(raw)}
	}
}

func (b *statefulBubble) suggest(query string) tea.Cmd {
	return func() tea.Msg {
		return suggestionsMsg{query: query, suggestions: files.Suggest(query)}
	}
}

// onLoadResult reports a rejected file. Accepted files need no handling here.
func (b *statefulBubble) onLoadResult(msg loadResultMsg) tea.Cmd {
	if msg.err == nil {
		return nil
	}

	log.Warnf("open %q: %v", msg.raw, msg.err)

	if b.state == fileState && b.fileC.Value() == "" {
		b.fileC.SetValue(files.Clean(msg.raw))
		b.fileC.CursorEnd()
	}

	name := filepath.Base(files.Clean(msg.raw))
	switch {
	case errors.Is(msg.err, files.ErrNotVideo):
		return ui.Warn(fmt.Sprintf("%s is not a video file", name))
	case errors.Is(msg.err, files.ErrNotFound):
		return ui.Warn(fmt.Sprintf("%s was not found", name))
	default:
		return ui.Warn(msg.err.Error())
	}
}

// transport reports a failed play, pause or seek.
func (b *statefulBubble) transport(err error) tea.Cmd {
	if err == nil {
		return nil
	}
	log.Warnf("transport: %v", err)
	return ui.Warn(err.Error())
}

func (b *statefulBubble) nudge(w *parameterWidget, delta float64) tea.Cmd {
	if b.controller.NudgeParameter(w.name, delta).IsAbsent() {
		return ui.Notify(fmt.Sprintf("%s can be changed once audio is ready", w.label))
	}
	return nil
}

// commitParameter applies the text typed into a parameter box.
func (b *statefulBubble) commitParameter(w *parameterWidget) tea.Cmd {
	raw := w.inputC.Value()
	w.inputC.Blur()
	w.invalid = false
	b.stopEditing()

	if b.controller.SetParameter(w.name, raw).IsPresent() {
		return nil
	}

	w.revert()
	if err := params.Check(w.name, raw); err != nil {
		return ui.Warn(err.Error())
	}
	if raw == "" {
		return nil
	}
	return ui.Notify(fmt.Sprintf("%s can be changed once audio is ready", w.label))
}

// commitBound enters the text typed into a loop bound box. Rejected text stays for correcting.
func (b *statefulBubble) commitBound(w *boundWidget) tea.Cmd {
	text := w.inputC.Value()
	if text == "" {
		w.revert()
		b.stopEditing()
		return nil
	}

	if !b.controller.EnterBound(w.field, text) {
		w.invalid = true
		return nil
	}

	w.entry = text
	w.invalid = false
	w.inputC.Blur()
	b.stopEditing()
	return nil
}

// cancelEditing drops whatever is being typed.
func (b *statefulBubble) cancelEditing() {
	if !b.editing {
		return
	}
	if w, ok := b.focusedParameter(); ok {
		w.revert()
	} else if w, ok := b.focusedBound(); ok {
		w.revert()
		w.invalid = false
	}
	b.stopEditing()
}
