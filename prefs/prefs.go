// Package prefs persists the playback parameters as a flat string key-value record.
//
// Values are string-encoded numbers with no versioning; the last writer wins.
package prefs

import (
	"github.com/metafates/gache"
	"github.com/pitchloop/pitchloop/filesystem"
	"github.com/pitchloop/pitchloop/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Store is the key-value contract the parameter store depends on.
type Store interface {
	Get(key string) mo.Option[string]
	Set(key, value string) error
}

// File is a Store backed by a JSON document on the active filesystem backend.
type File struct {
	cacher *gache.Cache[map[string]string]
}

// Open returns a store persisted at path.
func Open(path string) *File {
	return &File{
		cacher: gache.New[map[string]string](&gache.Options{
			Path:       path,
			FileSystem: &filesystem.GacheFs{},
		}),
	}
}

// Default returns the store at where.Settings().
func Default() *File {
	return Open(where.Settings())
}

// All returns every persisted entry.
func (f *File) All() (map[string]string, error) {
	cached, expired, err := f.cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]string), nil
	}
	return cached, nil
}

// Get returns the value stored under key. Unreadable records behave as empty.
func (f *File) Get(key string) mo.Option[string] {
	all, err := f.All()
	if err != nil {
		return mo.None[string]()
	}
	value, ok := all[key]
	if !ok || value == "" {
		return mo.None[string]()
	}
	return mo.Some(value)
}

// Set writes value under key.
func (f *File) Set(key, value string) error {
	all, err := f.All()
	if err != nil {
		all = make(map[string]string)
	}
	all[key] = value
	return f.cacher.Set(all)
}

// Delete removes the given keys, or everything when none are given.
func (f *File) Delete(keys ...string) error {
	all, err := f.All()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		keys = lo.Keys(all)
	}
	for _, k := range keys {
		delete(all, k)
	}
	return f.cacher.Set(all)
}

// Record is the settings document as stored on disk.
type Record struct {
	Pitch        string `json:"pitch,omitempty" jsonschema:"description=Pitch shift in semitones from -12 to 12"`
	PlaybackRate string `json:"playback-rate,omitempty" jsonschema:"description=Playback speed in percent from 10 to 300"`
	Volume       string `json:"volume,omitempty" jsonschema:"description=Volume offset from -100 to 0. The player shows 100 plus this value"`
}

// Record returns the persisted parameters. Unknown keys are left out.
func (f *File) Record() (Record, error) {
	all, err := f.All()
	if err != nil {
		return Record{}, err
	}
	return Record{
		Pitch:        all["pitch"],
		PlaybackRate: all["playback-rate"],
		Volume:       all["volume"],
	}, nil
}
