package coordinator

import (
	"path/filepath"

	"github.com/google/uuid"
)

// Session is the state of one loaded file. It is replaced on every load.
type Session struct {
	ID         string
	SourceURL  string
	Loaded     bool
	AudioReady bool
}

func newSession(url string) *Session {
	return &Session{
		ID:        uuid.New().String(),
		SourceURL: url,
	}
}

// Title is the file name shown in the header.
func (s Session) Title() string {
	return filepath.Base(s.SourceURL)
}
