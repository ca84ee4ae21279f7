package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"
)

// ipcCommand is the JSON structure sent to mpv's IPC socket.
type ipcCommand struct {
	Command []interface{} `json:"command"`
}

// ipcResponse is the JSON structure received from mpv's IPC socket.
// Lines that carry an Event are broadcasts, not the reply.
type ipcResponse struct {
	Data  interface{} `json:"data"`
	Error string      `json:"error"`
	Event string      `json:"event"`
}

const (
	maxRetries   = 3
	retryDelay   = 100 * time.Millisecond
	readDeadline = 1 * time.Second
)

// sendCommand sends a JSON-IPC command to mpv, retrying transient connection errors.
func (m *MPV) sendCommand(command []interface{}) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(retryDelay)
		}

		result, err := doSendCommand(m.socketPath, command)
		if err == nil {
			return result, nil
		}
		var reply *ReplyError
		if errors.As(err, &reply) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("ipc command failed after %d attempts: %w", maxRetries, lastErr)
}

// ReplyError is an error reported by mpv itself, as opposed to a transport failure.
type ReplyError struct {
	Command string
	Reason  string
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("mpv %s: %s", e.Command, e.Reason)
}

// doSendCommand performs a single IPC command attempt.
func doSendCommand(socketPath string, command []interface{}) (interface{}, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	payload, err := json.Marshal(ipcCommand{Command: command})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	// mpv requires newline-delimited JSON
	if _, err = conn.Write(append(payload, '\n')); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(readDeadline)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	return readReply(bufio.NewScanner(conn), command)
}

// readReply skips broadcast events until the command's reply arrives.
func readReply(scanner *bufio.Scanner, command []interface{}) (interface{}, error) {
	for scanner.Scan() {
		var resp ipcResponse
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			return nil, fmt.Errorf("unmarshal: %w", err)
		}
		if resp.Event != "" {
			continue
		}
		if resp.Error != "" && resp.Error != "success" {
			return nil, &ReplyError{Command: fmt.Sprint(command[0]), Reason: resp.Error}
		}
		return resp.Data, nil
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return nil, fmt.Errorf("read: connection closed before reply")
}
