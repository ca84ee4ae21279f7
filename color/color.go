// Package color names the ANSI colors used by command output. They follow the
// terminal's own theme, unlike the fixed hex palette in style.
package color

import "github.com/charmbracelet/lipgloss"

// New initializes a lipgloss.Color from an ANSI index or hex value.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Blue   = New("4")
	Purple = New("5")
	Cyan   = New("6")

	HiRed    = New("9")
	HiPurple = New("13")

	// Orange highlights the primary transport key in help output.
	Orange = New("#ffb703")
)
