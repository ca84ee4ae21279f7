// Package filesystem provides a virtualized abstraction layer for all filesystem operations.
//
// Settings, logs and configuration all go through API(), so tests can swap the
// backend for an in-memory one without touching the user's home directory.
package filesystem

import "github.com/spf13/afero"

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the active afero.Afero instance for filesystem interaction.
func API() afero.Afero {
	return backend
}

// SetOsFs restores the filesystem backend to the native operating system implementation.
func SetOsFs() {
	backend = afero.Afero{Fs: afero.NewOsFs()}
}

// SetMemMapFs installs a fresh volatile in-memory backend. Every call discards previous contents.
func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}

// Exists reports whether path exists on the active backend, treating lookup errors as absence.
func Exists(path string) bool {
	ok, err := backend.Exists(path)
	return err == nil && ok
}
