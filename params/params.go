// Package params owns the three user-adjustable playback controls: pitch, playback rate and volume.
//
// Each control has three representations (the UI widgets, the engine parameter
// and the persisted record). Store is the only writer to any of them.
package params

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pitchloop/pitchloop/log"
	"github.com/pitchloop/pitchloop/prefs"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Name identifies a control. It doubles as the persistence key.
type Name string

const (
	Pitch        Name = "pitch"
	PlaybackRate Name = "playback-rate"
	Volume       Name = "volume"
)

// Names lists the controls in display order.
var Names = []Name{Pitch, PlaybackRate, Volume}

// Range is the inclusive domain of a control.
type Range struct {
	Min, Max float64
}

// Contains reports whether v lies in the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Ranges holds the user-facing domain of every control.
var Ranges = map[Name]Range{
	Pitch:        {Min: -12, Max: 12},
	PlaybackRate: {Min: 10, Max: 300},
	Volume:       {Min: 0, Max: 100},
}

// Defaults are shown before anything has been applied or restored.
var Defaults = map[Name]float64{
	Pitch:        0,
	PlaybackRate: 100,
	Volume:       100,
}

var (
	ErrNotANumber = errors.New("not a number")
	ErrOutOfRange = errors.New("out of range")
)

// Audio is the slice of the audio session the controls drive.
// Setters return false when the graph is not ready.
type Audio interface {
	Ready() bool
	SetPitch(semitones float64) bool
	SetVolume(db float64) bool
	SetPlaybackRate(multiplier float64) bool
}

// Media is the raw video element; its rate is adjustable before audio is ready.
type Media interface {
	SetPlaybackRate(multiplier float64) error
}

// Display mirrors a control into its slider and numeric text box.
type Display interface {
	ShowParameter(name Name, value float64)
}

// Store applies, mirrors, persists and restores the controls.
// It is not safe for concurrent use; the coordinator serializes access.
type Store struct {
	audio   Audio
	media   Media
	display Display
	persist prefs.Store

	current map[Name]float64
}

// New returns a store with every control at its default.
func New(audio Audio, media Media, display Display, persist prefs.Store) *Store {
	return &Store{
		audio:   audio,
		media:   media,
		display: display,
		persist: persist,
		current: lo.Assign(Defaults),
	}
}

// Current returns the last value applied to name.
func (s *Store) Current(name Name) float64 {
	return s.current[name]
}

// Check validates raw input while it is being typed. Empty input is not an error.
func Check(name Name, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	v, ok := coerce(raw).Get()
	if !ok {
		return ErrNotANumber
	}
	if r := Ranges[name]; !r.Contains(v) {
		return fmt.Errorf("%w: %s must be between %g and %g", ErrOutOfRange, name, r.Min, r.Max)
	}
	return nil
}

// Set dispatches to the setter for name.
func (s *Store) Set(name Name, raw string) mo.Option[float64] {
	switch name {
	case Pitch:
		return s.SetPitch(raw)
	case PlaybackRate:
		return s.SetPlaybackRate(raw)
	case Volume:
		return s.SetVolume(raw)
	default:
		return mo.None[float64]()
	}
}

// Nudge moves a control by delta from its current value, as a slider step does.
func (s *Store) Nudge(name Name, delta float64) mo.Option[float64] {
	return s.Set(name, format(s.current[name]+delta))
}

// SetPitch clamps to [-12, 12] semitones and applies it to the pitch shifter.
// Non-numeric input, or a graph that is not ready, leaves everything untouched.
func (s *Store) SetPitch(raw string) mo.Option[float64] {
	v, ok := s.accept(Pitch, raw)
	if !ok {
		return mo.None[float64]()
	}
	if !s.audio.Ready() {
		s.revert(Pitch)
		return mo.None[float64]()
	}

	s.audio.SetPitch(v)
	s.commit(Pitch, v, v)
	return mo.Some(v)
}

// SetPlaybackRate clamps to [10, 300] percent. The media element always follows;
// the audio graph follows only when ready.
func (s *Store) SetPlaybackRate(raw string) mo.Option[float64] {
	v, ok := s.accept(PlaybackRate, raw)
	if !ok {
		return mo.None[float64]()
	}

	if err := s.media.SetPlaybackRate(v / 100); err != nil {
		log.Warnf("set media playback rate: %v", err)
	}
	if s.audio.Ready() {
		s.audio.SetPlaybackRate(v / 100)
	}
	s.commit(PlaybackRate, v, v)
	return mo.Some(v)
}

// SetVolume clamps to [0, 100] and sets the graph volume to value-100.
// The persisted record holds that offset, not the 0-100 value.
func (s *Store) SetVolume(raw string) mo.Option[float64] {
	v, ok := s.accept(Volume, raw)
	if !ok {
		return mo.None[float64]()
	}
	if !s.audio.Ready() {
		s.revert(Volume)
		return mo.None[float64]()
	}

	offset := v - 100
	s.audio.SetVolume(offset)
	s.commit(Volume, v, offset)
	return mo.Some(v)
}

// Restore re-applies every persisted control once the audio graph is ready.
// Stored values are trusted as-is and are not clamped.
func (s *Store) Restore() {
	if !s.audio.Ready() {
		return
	}

	if offset, ok := s.load(Volume).Get(); ok {
		s.audio.SetVolume(offset)
		s.show(Volume, 100+offset)
	}

	if pitch, ok := s.load(Pitch).Get(); ok {
		s.audio.SetPitch(pitch)
		s.show(Pitch, pitch)
	}

	if rate, ok := s.load(PlaybackRate).Get(); ok {
		s.audio.SetPlaybackRate(rate / 100)
		if err := s.media.SetPlaybackRate(rate / 100); err != nil {
			log.Warnf("restore media playback rate: %v", err)
		}
		s.show(PlaybackRate, rate)
	}
}

// accept coerces and clamps raw input. On failure the text box is reverted.
func (s *Store) accept(name Name, raw string) (float64, bool) {
	v, ok := coerce(raw).Get()
	if !ok {
		s.revert(name)
		return 0, false
	}
	r := Ranges[name]
	return lo.Clamp(v, r.Min, r.Max), true
}

func (s *Store) commit(name Name, shown, persisted float64) {
	s.show(name, shown)
	if err := s.persist.Set(string(name), format(persisted)); err != nil {
		log.Errorf("persist %s: %v", name, err)
	}
}

func (s *Store) show(name Name, v float64) {
	s.current[name] = v
	s.display.ShowParameter(name, v)
}

func (s *Store) revert(name Name) {
	s.display.ShowParameter(name, s.current[name])
}

func (s *Store) load(name Name) mo.Option[float64] {
	raw, ok := s.persist.Get(string(name)).Get()
	if !ok {
		return mo.None[float64]()
	}
	v, ok := coerce(raw).Get()
	if !ok {
		log.Warnf("ignoring persisted %s=%q: not a number", name, raw)
	}
	return mo.TupleToOption(v, ok)
}

func coerce(raw string) mo.Option[float64] {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return mo.None[float64]()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		return mo.None[float64]()
	}
	return mo.Some(v)
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
