// Package ui renders short-lived notifications under the main terminal view.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pitchloop/pitchloop/icon"
	"github.com/pitchloop/pitchloop/style"
)

// Level selects how a notification is rendered.
type Level int

const (
	Info Level = iota
	Warning
)

// Notification is the message that replaces the visible notification.
type Notification struct {
	Text  string
	Level Level
}

// clearMsg expires the notification it was scheduled for.
type clearMsg struct {
	id int
}

// Model holds at most one visible notification.
type Model struct {
	current  Notification
	id       int
	lifetime time.Duration
}

// New returns a model whose notifications disappear after lifetime.
func New(lifetime time.Duration) *Model {
	return &Model{lifetime: lifetime}
}

// Notify returns a command that shows text as an informational notification.
func Notify(text string) tea.Cmd {
	return func() tea.Msg {
		return Notification{Text: text, Level: Info}
	}
}

// Warn returns a command that shows text as a warning.
func Warn(text string) tea.Cmd {
	return func() tea.Msg {
		return Notification{Text: text, Level: Warning}
	}
}

// Update shows incoming notifications and schedules their removal.
// A newer notification is never cleared by an older one's timer.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case Notification:
		m.id++
		m.current = msg
		id := m.id
		return tea.Tick(m.lifetime, func(time.Time) tea.Msg {
			return clearMsg{id: id}
		})
	case clearMsg:
		if msg.id == m.id {
			m.current = Notification{}
		}
	}
	return nil
}

// Text returns the visible notification text, empty when there is none.
func (m *Model) Text() string {
	return m.current.Text
}

// View appends the notification to the last line of mainContent.
func (m *Model) View(mainContent string) string {
	if m.current.Text == "" {
		return mainContent
	}

	var rendered string
	switch m.current.Level {
	case Warning:
		rendered = style.Fg(style.WarningColor)(icon.Get(icon.Warn) + " " + m.current.Text)
	default:
		rendered = style.Faint(m.current.Text)
	}

	lines := strings.Split(mainContent, "\n")
	lines[len(lines)-1] += "  " + rendered
	return strings.Join(lines, "\n")
}
