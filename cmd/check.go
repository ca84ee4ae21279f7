// Package cmd implements the command-line interface for pitchloop.
package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/pitchloop/pitchloop/constant"
	"github.com/pitchloop/pitchloop/icon"
	"github.com/pitchloop/pitchloop/style"
)

// CheckDependencies exits with install instructions when the mpv binary cannot be found.
// Both the video window and the audio engine run on it.
func CheckDependencies(binary string) {
	if binary == "" {
		binary = "mpv"
	}

	if _, err := exec.LookPath(binary); err != nil {
		printMissingDependencyError(binary)
		os.Exit(1)
	}
}

func installHint() string {
	switch runtime.GOOS {
	case constant.Darwin:
		return "brew install mpv"
	case constant.Linux:
		return "sudo apt install mpv"
	case constant.Windows:
		return "scoop install mpv"
	default:
		return ""
	}
}

func printMissingDependencyError(dep string) {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("'%s' was not found in your PATH. It plays the video and processes the audio (rubberband support required).", dep))

	suggestion := ""
	if hint := installHint(); hint != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(hint))
	}
	suggestion += fmt.Sprintf("\n\nA custom binary can be set with %s", style.New().Foreground(style.AccentColor).Render("--mpv PATH"))

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}
