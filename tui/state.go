// Package tui provides the primary terminal user interface implementation.
package tui

type state int

const (
	fileState state = iota
	playerState
	loadingState
	audioErrorState
	errorState
)

// focusTarget is a widget of the player screen that takes keyboard input.
type focusTarget int

const (
	focusPitch focusTarget = iota
	focusRate
	focusVolume
	focusStart
	focusStop
	focusCount
)
