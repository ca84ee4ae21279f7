// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/pitchloop/pitchloop/color"
	"github.com/pitchloop/pitchloop/icon"
	"github.com/pitchloop/pitchloop/key"
	"github.com/pitchloop/pitchloop/loop"
	"github.com/pitchloop/pitchloop/params"
	"github.com/pitchloop/pitchloop/style"
	"github.com/pitchloop/pitchloop/timecode"
	"github.com/spf13/viper"
)

var (
	paddingStyle = lipgloss.NewStyle().Padding(1, 2)
	labelStyle   = lipgloss.NewStyle().Width(8)
	invalidStyle = lipgloss.NewStyle().Foreground(style.ErrorColor)
	focusStyle   = lipgloss.NewStyle().Foreground(style.AccentColor).Bold(true)
)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case fileState:
		output = b.viewFile()
	case playerState:
		output = b.viewPlayer()
	case loadingState:
		output = b.viewLoading()
	case audioErrorState:
		output = b.viewAudioError()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) title() string {
	if s, ok := b.session.Get(); ok {
		return s.Title()
	}
	return "No file"
}

func (b *statefulBubble) viewFile() string {
	lines := []string{
		style.Title("Open Video"),
		"",
		b.fileC.View(),
		"",
	}

	for i, suggestion := range b.suggestions {
		if i == 0 {
			lines = append(lines, focusStyle.Render("› "+suggestion))
		} else {
			lines = append(lines, style.Faint("  "+suggestion))
		}
	}

	if len(b.suggestions) == 0 {
		lines = append(lines, style.Faint("Type a path or drag a video file onto this window"))
	}

	return b.renderLines(true, lines)
}

func (b *statefulBubble) viewPlayer() string {
	lines := []string{
		style.Title("Pitchloop") + " " + style.Fg(color.Purple)(b.title()),
		"",
		b.viewPosition(),
		"",
	}

	for i, name := range params.Names {
		lines = append(lines, b.viewParameter(b.paramC[name], focusTarget(i) == b.focus))
	}

	lines = append(lines, "", b.viewLoop())

	return b.renderLines(true, lines)
}

func (b *statefulBubble) viewPosition() string {
	state := icon.Get(icon.Pause)
	if b.playing {
		state = icon.Get(icon.Play)
	}

	var fraction float64
	if b.duration > 0 {
		fraction = b.position / b.duration
	}

	clock := fmt.Sprintf("%s / %s", timecode.Format(b.position), timecode.Format(b.duration))
	return strings.Join([]string{state, clock, b.positionC.ViewAs(fraction)}, " ")
}

func (b *statefulBubble) viewParameter(w *parameterWidget, focused bool) string {
	label := labelStyle.Render(w.label)
	cursor := "  "
	if focused {
		label = focusStyle.Inherit(labelStyle).Render(w.label)
		cursor = focusStyle.Render("› ")
	}

	value := w.inputC.View()
	if w.invalid {
		value = invalidStyle.Render(w.inputC.Value())
	}

	unit := ""
	if w.unit != "" {
		unit = " " + style.Faint(w.unit)
	}

	return cursor + label + w.sliderC.ViewAs(w.fraction()) + "  " + value + unit
}

func (b *statefulBubble) viewLoop() string {
	start, stop := b.boundC[loop.Start], b.boundC[loop.Stop]

	summary := fmt.Sprintf("%s %s %s %s", icon.Get(icon.Loop), start.label, style.Faint("→"), stop.label)
	if start.label == timecode.Placeholder || stop.label == timecode.Placeholder {
		summary = style.Faint(summary)
	}

	return strings.Join([]string{
		"  " + labelStyle.Render("Loop") + summary,
		b.viewBound(start, b.focus == focusStart, "Start") + "   " + b.viewBound(stop, b.focus == focusStop, "Stop"),
	}, "\n")
}

func (b *statefulBubble) viewBound(w *boundWidget, focused bool, label string) string {
	cursor := "  "
	rendered := labelStyle.Render(label)
	if focused {
		cursor = focusStyle.Render("› ")
		rendered = focusStyle.Inherit(labelStyle).Render(label)
	}

	var value string
	switch {
	case w.invalid:
		value = invalidStyle.Render(lipgloss.NewStyle().Width(w.inputC.Width).Render(w.inputC.Value()))
	case w.inputC.Focused() || w.inputC.Value() != "":
		value = w.inputC.View()
	default:
		value = style.Faint(w.inputC.Placeholder)
	}

	return cursor + rendered + "[" + value + "]"
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Loading Audio"),
			"",
			b.spinnerC.View() + " " + b.stage.Text(),
			"",
			style.Faint(b.title()),
		},
	)
}

func (b *statefulBubble) viewAudioError() string {
	message := "Failed to initialize audio."
	if b.audioErr != nil {
		message = b.audioErr.Message()
	}

	return b.renderLines(
		true,
		[]string{
			style.ErrorTitle("Audio Error"),
			"",
			icon.Get(icon.Fail) + " " + style.Faint(b.title()),
			"",
			wrap.String(message, max(b.width, 20)),
		},
	)
}

func (b *statefulBubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(style.ErrorColor).Bold(true)
	text := "unknown error"
	if b.lastError != nil {
		text = b.lastError.Error()
	}

	return b.renderLines(
		true,
		[]string{
			style.ErrorTitle("Playback Error"),
			"",
			icon.Get(icon.Fail) + " " + b.title() + " could not be played:",
			"",
			wrap.String(errorStyle.Render(text), max(b.width, 20)),
		},
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	l := strings.Join(lines, "\n")
	h := lipgloss.Height(l)
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}

// sliderWidth fits the configured slider width into the available columns.
func sliderWidth(available int) int {
	width := viper.GetInt(key.TUISliderWidth)
	if width <= 0 {
		width = 40
	}
	return max(min(width, available-24), 10)
}
