// Package where implements a cross-platform resolver for application-specific filesystem paths.
package where

import (
	"os"
	"path/filepath"

	"github.com/pitchloop/pitchloop/constant"
	"github.com/pitchloop/pitchloop/filesystem"
	"github.com/samber/lo"
)

// EnvConfigPath is the environment variable identifier used to override the default configuration directory.
const EnvConfigPath = "PITCHLOOP_CONFIG_PATH"

// ensureDir guarantees the existence of a directory at the specified path, creating it if necessary.
func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config resolves the absolute path to the primary application configuration directory.
// It prioritizes the XDG_CONFIG_HOME specification on Linux and equivalent user profile paths on Darwin and Windows.
// Direct override: The path resolution can be explicitly specified via the PITCHLOOP_CONFIG_PATH environment variable.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Pitchloop))
}

// Logs resolves the absolute path to the directory used for application diagnostic logs.
func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Settings resolves the absolute path to the persisted playback parameters (pitch, rate, volume).
func Settings() string {
	return filepath.Join(Config(), "settings.json")
}

// Recent resolves the absolute path to the history of opened videos.
func Recent() string {
	return filepath.Join(Config(), "recent.json")
}

// Cache resolves the directory for data that can be re-fetched, such as the latest release tag.
func Cache() string {
	base := lo.Must(os.UserCacheDir())
	return ensureDir(filepath.Join(base, constant.Pitchloop))
}

// Temp resolves a volatile directory for transient artifacts such as mpv IPC sockets.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.Pitchloop))
}
