// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	// Controller receives every user action.
	Controller Controller

	// Display must be the display the controller was built with.
	Display *Display

	// File is opened on start when set.
	File string
}

// Init focuses the file field and opens the file given on the command line.
func (b *statefulBubble) Init() tea.Cmd {
	if b.options.File != "" {
		return tea.Batch(textinput.Blink, b.loadFile(b.options.File))
	}
	return textinput.Blink
}

// Run initializes and executes the primary Bubble Tea application loop.
// It returns when the user quits or ctx is done.
func Run(ctx context.Context, options *Options) error {
	bubble := newBubble(options)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(bubble, tea.WithAltScreen(), tea.WithContext(ctx))
	go options.Display.pump(ctx, program.Send)

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
