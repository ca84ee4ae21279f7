package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind categorizes an initialization failure for the error dialog.
type Kind int

const (
	Unknown Kind = iota
	Timeout
	ContextError
	DecodeError
	Canceled
)

func (k Kind) String() string {
	switch k {
	case Timeout:
		return "timeout"
	case ContextError:
		return "context"
	case DecodeError:
		return "decode"
	case Canceled:
		return "canceled"
	default:
		return "unknown"
	}
}

var (
	// ErrContext is wrapped by engines when the audio output cannot be started.
	ErrContext = errors.New("audio context unavailable")

	// ErrDecode is wrapped by engines when the source cannot be decoded.
	ErrDecode = errors.New("unsupported or corrupt audio")
)

// InitError is the categorized failure of one initialization attempt.
type InitError struct {
	Kind Kind
	Err  error
}

func (e *InitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("audio init: %s", e.Kind)
	}
	return fmt.Sprintf("audio init (%s): %v", e.Kind, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// Message is the user-facing explanation of the failure.
func (e *InitError) Message() string {
	switch e.Kind {
	case Timeout:
		return "Audio loading took too long. The file may be too large or in an unsupported format."
	case ContextError:
		return "The audio output could not be started. Check that an audio device is available."
	case DecodeError:
		return "This audio format is not supported. Try a different file."
	case Canceled:
		return "Audio loading was canceled."
	default:
		if e.Err != nil {
			return fmt.Sprintf("Failed to initialize audio: %v", e.Err)
		}
		return "Failed to initialize audio."
	}
}

// KindOf extracts the kind of err, or Unknown when it is not an InitError.
func KindOf(err error) Kind {
	var initErr *InitError
	if errors.As(err, &initErr) {
		return initErr.Kind
	}
	return Unknown
}

// classify wraps a raw step failure into an InitError.
func classify(err error) *InitError {
	var initErr *InitError
	if errors.As(err, &initErr) {
		return initErr
	}

	kind := Unknown
	msg := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = Timeout
	case errors.Is(err, context.Canceled):
		kind = Canceled
	case errors.Is(err, ErrContext), strings.Contains(msg, "context"):
		kind = ContextError
	case errors.Is(err, ErrDecode), strings.Contains(msg, "decode"), strings.Contains(msg, "format"):
		kind = DecodeError
	}

	return &InitError{Kind: kind, Err: err}
}
