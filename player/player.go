// Package player drives mpv processes over their JSON-IPC socket.
// The same transport backs both the muted video window and the headless audio graph.
package player

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pitchloop/pitchloop/constant"
	"github.com/pitchloop/pitchloop/key"
	"github.com/pitchloop/pitchloop/where"
	"github.com/spf13/viper"
)

// Role selects how an mpv process is launched.
type Role int

const (
	// Video opens a window that shows the picture with its own audio muted.
	Video Role = iota

	// Audio runs without video output and carries the filter chain.
	Audio
)

func (r Role) String() string {
	if r == Audio {
		return "audio"
	}
	return "video"
}

// Options configure an mpv process.
type Options struct {
	Role Role

	// Binary is the mpv executable. Defaults to the player.binary setting.
	Binary string

	// Title is the window title of a Video process.
	Title string

	// Extra arguments are appended after the built-in ones.
	Extra []string
}

func (o Options) binary() string {
	if o.Binary != "" {
		return o.Binary
	}
	if b := viper.GetString(key.PlayerBinary); b != "" {
		return b
	}
	return "mpv"
}

// args builds the command line for the process listening on socket.
// Both roles start idle and paused so nothing plays until asked.
func (o Options) args(socket string) []string {
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", socket),
		"--idle=yes",
		"--pause=yes",
		"--keep-open=yes",
	}

	switch o.Role {
	case Video:
		title := sanitizeTitle(o.Title)
		if title == "" {
			title = constant.Pitchloop
		}
		args = append(args,
			"--force-window=yes",
			"--mute=yes",
			fmt.Sprintf("--title=%s", title),
		)
	case Audio:
		args = append(args,
			"--no-video",
			"--vid=no",
			"--force-window=no",
		)
	}

	return append(args, o.Extra...)
}

// newSocketPath returns a unique IPC socket location under where.Temp().
func newSocketPath(role Role) string {
	return filepath.Join(where.Temp(), fmt.Sprintf("%s-%s-%s.sock", constant.Pitchloop, role, uuid.NewString()[:8]))
}
