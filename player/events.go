package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/pitchloop/pitchloop/log"
)

// Event is one notification from mpv: either an observed property change
// (Name is the property) or a named event such as "file-loaded" or "end-file".
type Event struct {
	Name     string
	Data     interface{}
	Property bool

	// Reason and FileError are set on "end-file".
	Reason    string
	FileError string
}

// EventCallback is the function signature for mpv event notifications.
type EventCallback func(Event)

// EventListener provides real-time mpv event monitoring via observe_property.
type EventListener struct {
	socketPath string
	properties []string
	conn       net.Conn
	callback   EventCallback
	stopCh     chan struct{}
	mu         sync.Mutex
	listening  bool
}

// NewEventListener creates a new event listener for the given socket.
func NewEventListener(socketPath string, callback EventCallback, properties ...string) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		properties: properties,
		callback:   callback,
		stopCh:     make(chan struct{}),
	}
}

// Start opens a persistent connection, registers the observers on it and starts the read loop.
// Observers are bound to the connection they were registered on.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	conn, err := net.Dial("unix", el.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	for i, name := range el.properties {
		payload, err := json.Marshal(ipcCommand{Command: []interface{}{"observe_property", i + 1, name}})
		if err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
		if _, err := conn.Write(append(payload, '\n')); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	el.conn = conn
	el.listening = true
	go el.readLoop(conn)

	log.Debugf("mpv event listener started on %s (observing: %v)", el.socketPath, el.properties)
	return nil
}

// Stop terminates the event listener.
func (el *EventListener) Stop() {
	el.mu.Lock()
	defer el.mu.Unlock()

	if !el.listening {
		return
	}

	close(el.stopCh)
	if el.conn != nil {
		el.conn.Close()
	}
	el.listening = false
}

// readLoop dispatches newline-delimited JSON events until the connection closes.
func (el *EventListener) readLoop(conn net.Conn) {
	defer func() {
		el.mu.Lock()
		el.listening = false
		el.mu.Unlock()
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), 1<<20)

	for scanner.Scan() {
		select {
		case <-el.stopCh:
			return
		default:
		}
		el.processEvent(scanner.Bytes())
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		log.Warnf("event listener read error: %v", err)
	}
}

// processEvent parses and dispatches a single mpv event JSON line.
// Command replies carry no "event" key and are skipped.
func (el *EventListener) processEvent(line []byte) {
	if el.callback == nil {
		return
	}
	if ev, ok := parseEvent(line); ok {
		el.callback(ev)
	}
}

func parseEvent(line []byte) (Event, bool) {
	var raw map[string]interface{}
	if err := json.Unmarshal(line, &raw); err != nil {
		return Event{}, false
	}

	eventType, ok := raw["event"].(string)
	if !ok {
		return Event{}, false
	}

	if eventType == "property-change" {
		name, _ := raw["name"].(string)
		if name == "" {
			return Event{}, false
		}
		return Event{Name: name, Data: raw["data"], Property: true}, true
	}

	ev := Event{Name: eventType, Data: raw}
	ev.Reason, _ = raw["reason"].(string)
	ev.FileError, _ = raw["file_error"].(string)
	return ev, true
}
