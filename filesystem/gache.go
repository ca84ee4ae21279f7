package filesystem

import (
	"io"
	"os"
)

// GacheFs adapts the afero backend to the gache.FileSystem interface so
// persisted settings follow SetMemMapFs/SetOsFs switches.
type GacheFs struct{}

// OpenFile opens a file using the current filesystem backend.
func (GacheFs) OpenFile(name string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	return API().OpenFile(name, flag, perm)
}

// MkdirAll creates a directory using the current filesystem backend.
func (GacheFs) MkdirAll(path string, perm os.FileMode) error {
	return API().MkdirAll(path, perm)
}
