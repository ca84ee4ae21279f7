// Package loop tracks the A-B loop markers and rewinds playback when it runs past them.
package loop

import (
	"github.com/pitchloop/pitchloop/log"
	"github.com/pitchloop/pitchloop/timecode"
	"github.com/samber/mo"
)

// Field identifies one of the two loop bounds.
type Field int

const (
	Start Field = iota
	Stop
)

func (f Field) String() string {
	if f == Start {
		return "start"
	}
	return "stop"
}

// Range holds the committed bounds in seconds.
type Range struct {
	Start, Stop mo.Option[float64]
}

// Active reports whether both bounds are set and correctly ordered.
func (r Range) Active() bool {
	start, okStart := r.Start.Get()
	stop, okStop := r.Stop.Get()
	return okStart && okStop && start < stop
}

// Contains reports whether pos lies inside [Start, Stop].
func (r Range) Contains(pos float64) bool {
	start, _ := r.Start.Get()
	stop, _ := r.Stop.Get()
	return pos >= start && pos <= stop
}

// Media is the video element the controller reads from and seeks.
type Media interface {
	CurrentTime() float64
	Seek(seconds float64) error
}

// Audio is the transport of the audio session.
type Audio interface {
	Ready() bool
	Start(position float64) bool
}

// Display renders the bound labels, the entry text boxes and their error flags.
type Display interface {
	ShowBound(field Field, label string)
	ShowEntry(field Field, text string)
	FlagInvalid(field Field, invalid bool)
}

// Controller owns the loop range. It is not safe for concurrent use.
type Controller struct {
	media   Media
	audio   Audio
	display Display

	committed Range
	entered   [2]string
}

// New returns a controller with no bounds.
func New(media Media, audio Audio, display Display) *Controller {
	return &Controller{
		media:     media,
		audio:     audio,
		display:   display,
		committed: Range{Start: mo.None[float64](), Stop: mo.None[float64]()},
	}
}

// Range returns the committed bounds.
func (c *Controller) Range() Range {
	return c.committed
}

// MarkStart commits the current playback position as the loop start.
func (c *Controller) MarkStart() {
	c.commit(Start, c.media.CurrentTime())
}

// MarkStop commits the current playback position as the loop stop.
func (c *Controller) MarkStop() {
	c.commit(Stop, c.media.CurrentTime())
}

// EnterStart records typed start text and commits it when valid.
// A committed start also moves playback there.
func (c *Controller) EnterStart(text string) bool {
	v, ok := c.enter(Start, text)
	if !ok {
		return false
	}
	if err := c.media.Seek(v); err != nil {
		log.Warnf("seek to loop start: %v", err)
	}
	c.commit(Start, v)
	return true
}

// EnterStop records typed stop text and commits it when valid.
func (c *Controller) EnterStop(text string) bool {
	v, ok := c.enter(Stop, text)
	if !ok {
		return false
	}
	c.commit(Stop, v)
	return true
}

// Enter dispatches to EnterStart or EnterStop.
func (c *Controller) Enter(field Field, text string) bool {
	if field == Start {
		return c.EnterStart(text)
	}
	return c.EnterStop(text)
}

// Validate checks the entered texts and flags offending fields.
// Committed bounds are never cleared here; an invalid entry only blocks its own commit.
func (c *Controller) Validate() bool {
	startText, stopText := c.entered[Start], c.entered[Stop]
	start := timecode.Parse(startText)
	stop := timecode.Parse(stopText)

	startBad := startText != "" && start.IsAbsent()
	stopBad := stopText != "" && stop.IsAbsent()

	if s, ok := start.Get(); ok {
		if e, ok := stop.Get(); ok && s >= e {
			stopBad = true
		}
	}

	c.display.FlagInvalid(Start, startBad)
	c.display.FlagInvalid(Stop, stopBad)
	return !startBad && !stopBad
}

// OnTimeUpdate enforces the loop on every playback tick. It returns true when it rewound.
func (c *Controller) OnTimeUpdate(pos float64) bool {
	if !c.committed.Active() || c.committed.Contains(pos) {
		return false
	}

	start := c.committed.Start.MustGet()
	if err := c.media.Seek(start); err != nil {
		log.Warnf("loop rewind to %s: %v", timecode.Format(start), err)
		return false
	}
	if c.audio.Ready() {
		c.audio.Start(start)
	}
	return true
}

// Reset clears both bounds, their labels and the entry fields.
func (c *Controller) Reset() {
	c.committed = Range{Start: mo.None[float64](), Stop: mo.None[float64]()}
	c.entered = [2]string{}
	for _, f := range []Field{Start, Stop} {
		c.display.ShowBound(f, timecode.Placeholder)
		c.display.ShowEntry(f, "")
	}
	c.Validate()
}

func (c *Controller) enter(field Field, text string) (float64, bool) {
	c.entered[field] = text
	valid := c.Validate()
	v, ok := timecode.Parse(text).Get()
	return v, ok && valid
}

func (c *Controller) commit(field Field, v float64) {
	if field == Start {
		c.committed.Start = mo.Some(v)
	} else {
		c.committed.Stop = mo.Some(v)
	}
	c.display.ShowBound(field, timecode.Format(v))
}
