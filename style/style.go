// Package style holds the fixed palette of the player screen and the small
// rendering helpers shared by the interface and command output.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/pitchloop/pitchloop/color"
)

// Palette of the player screen.
var (
	Text    = lipgloss.Color("#cdd6f4")
	Overlay = lipgloss.Color("#6c7086")
	Mauve   = lipgloss.Color("#cba6f7")
	Red     = lipgloss.Color("#f38ba8")
	Yellow  = lipgloss.Color("#f9e2af")

	AccentColor  = Mauve
	WarningColor = Yellow
	ErrorColor   = Red
	HiRed        = Red

	// SliderEmptyColor is the unfilled part of parameter and position bars.
	SliderEmptyColor = Overlay
)

// New returns an empty lipgloss.Style used as a foundation for visual composition.
func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Colored initializes a new style with the specified foreground and background colors.
func Colored(fg, bg lipgloss.Color) lipgloss.Style {
	return New().Foreground(fg).Background(bg)
}

// Fg returns a rendering function that applies the foreground color c.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return Colored(c, "").Render(s) }
}

var (
	Faint = func(s string) string { return New().Faint(true).Render(s) }
	Bold  = func(s string) string { return New().Bold(true).Render(s) }
)

// Title renders a screen heading.
var Title = func(s string) string {
	return Colored(color.New("230"), color.New("62")).Padding(0, 1).Render(s)
}

// ErrorTitle renders the heading of an error screen.
var ErrorTitle = func(s string) string {
	return Colored(color.New("230"), Red).Padding(0, 1).Render(s)
}
