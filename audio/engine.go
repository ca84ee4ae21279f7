package audio

import "context"

// Engine is the external audio graph backend. The manager never shifts pitch itself.
type Engine interface {
	// StartContext makes sure the engine is running and able to produce sound.
	StartContext(ctx context.Context) error

	// NewPlayer creates a player for url. Loading may continue after it returns.
	NewPlayer(ctx context.Context, url string) (Player, error)

	// NewPitchShifter creates a pitch-shifting node that is not yet connected.
	NewPitchShifter(ctx context.Context) (PitchShifter, error)

	// Close shuts the engine down. Handles created by it become unusable.
	Close() error
}

// Player decodes a source and plays it through the graph.
type Player interface {
	// WaitLoaded blocks until the source is decoded and ready to play.
	WaitLoaded(ctx context.Context) error
	Connect(shifter PitchShifter) error
	Start(offset, position float64) error
	Stop() error
	SetPlaybackRate(multiplier float64) error
	SetVolume(db float64) error
	Dispose() error
}

// PitchShifter transposes the signal by a number of semitones.
type PitchShifter interface {
	SetPitch(semitones float64) error
	Dispose() error
}
