package player

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pitchloop/pitchloop/log"
)

const socketWaitDelay = 100 * time.Millisecond

// ErrNotRunning is returned by commands issued before Launch or after Close.
var ErrNotRunning = errors.New("mpv is not running")

// MPV is one mpv process controlled over JSON-IPC.
type MPV struct {
	opts       Options
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{} // closed when mpv process exits
	mu         sync.Mutex    // Protects socket writes
}

// NewMPV creates an mpv handle. The process is not started until Launch.
func NewMPV(opts Options) *MPV {
	exited := make(chan struct{})
	close(exited)
	return &MPV{
		opts:   opts,
		exited: exited,
	}
}

// Launch starts the process and waits for its IPC socket until ctx is done.
// Launching a running process is a no-op.
func (m *MPV) Launch(ctx context.Context) error {
	if m.IsRunning() {
		return nil
	}

	m.socketPath = newSocketPath(m.opts.Role)
	m.cmd = exec.Command(m.opts.binary(), m.opts.args(m.socketPath)...)

	m.cmd.SysProcAttr = sysProcAttr()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	// Reap the process to prevent zombies
	exited := make(chan struct{})
	m.exited = exited
	go func(cmd *exec.Cmd) {
		_ = cmd.Wait()
		close(exited)
	}(m.cmd)

	if err := m.waitForSocket(ctx); err != nil {
		select {
		case <-m.exited:
		default:
			log.Warnf("killing %s mpv: socket never became ready", m.opts.Role)
			_ = killProcess(m.cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	log.Infof("%s mpv listening on %s", m.opts.Role, m.socketPath)
	return nil
}

// Wait returns a channel that is closed when the mpv process exits.
func (m *MPV) Wait() <-chan struct{} {
	return m.exited
}

// waitForSocket polls until the mpv IPC socket is accepting connections.
func (m *MPV) waitForSocket(ctx context.Context) error {
	ticker := time.NewTicker(socketWaitDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		case <-ticker.C:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
}

// IsRunning reports whether the process has been launched and not yet exited.
func (m *MPV) IsRunning() bool {
	if m.socketPath == "" {
		return false
	}
	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}

// Command sends a raw IPC command and returns its reply data.
func (m *MPV) Command(args ...interface{}) (interface{}, error) {
	if !m.IsRunning() {
		return nil, ErrNotRunning
	}
	return m.sendCommand(args)
}

// Load replaces the current file with target.
func (m *MPV) Load(target string) error {
	safe, err := sanitizeMediaTarget(target)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}
	_, err = m.Command("loadfile", safe, "replace")
	return err
}

// Unload stops playback and leaves the process idle.
func (m *MPV) Unload() error {
	_, err := m.Command("stop")
	return err
}

// Set a property
func (m *MPV) Set(property string, value interface{}) error {
	_, err := m.Command("set_property", property, value)
	return err
}

// Seek moves playback to the given absolute position in seconds.
func (m *MPV) Seek(seconds float64) error {
	_, err := m.Command("seek", seconds, "absolute+exact")
	return err
}

// GetFloat retrieves a numeric property.
func (m *MPV) GetFloat(name string) (float64, error) {
	data, err := m.Command("get_property", name)
	if err != nil {
		return 0, err
	}

	val, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("property %s: expected float64, got %T", name, data)
	}
	return val, nil
}

// GetBool retrieves a flag property.
func (m *MPV) GetBool(name string) (bool, error) {
	data, err := m.Command("get_property", name)
	if err != nil {
		return false, err
	}

	val, ok := data.(bool)
	if !ok {
		return false, fmt.Errorf("property %s: expected bool, got %T", name, data)
	}
	return val, nil
}

// Listen opens an event stream observing properties.
func (m *MPV) Listen(callback EventCallback, properties ...string) (*EventListener, error) {
	if !m.IsRunning() {
		return nil, ErrNotRunning
	}
	listener := NewEventListener(m.socketPath, callback, properties...)
	if err := listener.Start(); err != nil {
		return nil, err
	}
	return listener, nil
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	return m.socketPath
}

// Close shuts down the mpv process and cleans up resources.
func (m *MPV) Close() error {
	if m.socketPath == "" {
		return nil
	}

	if m.IsRunning() {
		// Try graceful quit via IPC
		_, _ = m.sendCommand([]interface{}{"quit"})

		select {
		case <-m.exited:
		case <-time.After(3 * time.Second):
			_ = killProcess(m.cmd)
		}
	}

	_ = os.Remove(m.socketPath)
	return nil
}

// sanitizeMediaTarget validates that a target is safe to pass to mpv.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	// Prevent flag injection: targets must not start with -
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "file":
			return filepath.Clean(u.Path), nil
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

// sanitizeTitle cleans up a window title for mpv.
func sanitizeTitle(title string) string {
	t := strings.ReplaceAll(title, "\n", " ")
	t = strings.ReplaceAll(t, "\r", " ")
	t = strings.ReplaceAll(t, "\t", " ")
	t = strings.ReplaceAll(t, "\x00", "")
	return strings.TrimSpace(t)
}
