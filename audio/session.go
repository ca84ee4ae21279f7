// Package audio manages the lifecycle of the pitch-shifting audio graph that plays
// alongside the muted video.
//
// Initialization runs on its own goroutine under a deadline. Every attempt carries a
// generation number; an attempt whose generation is no longer current disposes what it
// built and never touches the manager's state.
package audio

import (
	"context"
	"sync"
	"time"

	"github.com/pitchloop/pitchloop/key"
	"github.com/pitchloop/pitchloop/log"
	"github.com/spf13/viper"
)

// State of the audio graph.
type State int

const (
	Idle State = iota
	Initializing
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Stage is a step of the initialization sequence.
type Stage int

const (
	StartingContext Stage = iota
	CreatingPlayer
	Loading
	Connecting
)

// Text is shown on the loading overlay while the stage runs.
func (s Stage) Text() string {
	switch s {
	case StartingContext:
		return "Starting audio context..."
	case CreatingPlayer:
		return "Creating audio player..."
	case Loading:
		return "Loading audio file..."
	default:
		return "Finalizing audio setup..."
	}
}

// Progress reports that an attempt entered a stage.
type Progress struct {
	Generation uint64
	Stage      Stage
}

// Outcome is the result of an attempt. Err is nil on success, otherwise an *InitError.
type Outcome struct {
	Generation uint64
	Err        error
}

// Options tune the manager. Zero values fall back to configuration.
type Options struct {
	Timeout    time.Duration
	RetryDelay time.Duration
}

// Manager exclusively owns the audio graph.
type Manager struct {
	engine Engine
	opts   Options

	mu         sync.Mutex
	state      State
	generation uint64
	url        string
	cancel     context.CancelFunc
	player     Player
	shifter    PitchShifter
	lastErr    *InitError
	retry      *time.Timer

	outcomes chan Outcome
	progress chan Progress
}

// NewManager returns an idle manager driving engine.
func NewManager(engine Engine, opts Options) *Manager {
	if opts.Timeout <= 0 {
		opts.Timeout = viper.GetDuration(key.AudioInitTimeout)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = viper.GetDuration(key.AudioRetryDelay)
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}

	return &Manager{
		engine:   engine,
		opts:     opts,
		outcomes: make(chan Outcome, 8),
		progress: make(chan Progress, 16),
	}
}

// Outcomes delivers the result of every attempt that was still current when it finished.
func (m *Manager) Outcomes() <-chan Outcome {
	return m.outcomes
}

// Progress delivers stage changes. Updates are dropped when nobody keeps up.
func (m *Manager) Progress() <-chan Progress {
	return m.progress
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Ready reports whether the graph is built and connected.
func (m *Manager) Ready() bool {
	return m.State() == Ready
}

// Generation returns the current attempt number.
func (m *Manager) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

// Current reports whether gen is the live attempt.
func (m *Manager) Current(gen uint64) bool {
	return m.Generation() == gen
}

// LastError returns the failure that put the manager in Failed.
func (m *Manager) LastError() *InitError {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// BeginInit discards any existing graph and starts building one for url.
// It returns the generation of the new attempt.
func (m *Manager) BeginInit(url string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.beginLocked(url)
}

func (m *Manager) beginLocked(url string) uint64 {
	m.releaseLocked()

	m.generation++
	gen := m.generation
	m.state = Initializing
	m.url = url
	m.lastErr = nil

	ctx, cancel := context.WithTimeout(context.Background(), m.opts.Timeout)
	m.cancel = cancel

	log.With(log.Fields{"generation": gen}).Infof("initializing audio for %s", url)
	go m.run(ctx, cancel, gen, url)
	return gen
}

// Retry schedules a fresh attempt for the failed url after the retry delay.
// It reports false when there is nothing to retry.
func (m *Manager) Retry() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Failed || m.url == "" {
		return false
	}

	gen := m.generation
	if m.retry != nil {
		m.retry.Stop()
	}
	m.retry = time.AfterFunc(m.opts.RetryDelay, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.generation != gen || m.state != Failed {
			return
		}
		m.beginLocked(m.url)
	})
	return true
}

// Cancel aborts a pending attempt and returns to Idle.
// It returns a Canceled InitError, or nil when nothing was pending.
func (m *Manager) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Initializing {
		return nil
	}

	gen := m.generation
	m.releaseLocked()
	m.generation++
	m.state = Idle

	log.With(log.Fields{"generation": gen}).Infof("audio initialization canceled")
	return &InitError{Kind: Canceled, Err: context.Canceled}
}

// Dispose releases the graph and invalidates any in-flight attempt. Safe to call repeatedly.
func (m *Manager) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.releaseLocked()
	m.generation++
	m.state = Idle
	m.url = ""
	m.lastErr = nil
}

// Close disposes the graph and shuts the engine down.
func (m *Manager) Close() error {
	m.Dispose()
	return m.engine.Close()
}

// Start plays from position. It is a no-op returning false unless Ready.
func (m *Manager) Start(position float64) bool {
	return m.withPlayer("start", func(p Player) error {
		return p.Start(0, position)
	})
}

// Stop pauses playback. It is a no-op returning false unless Ready.
func (m *Manager) Stop() bool {
	return m.withPlayer("stop", Player.Stop)
}

// SetPitch transposes by semitones. It is a no-op returning false unless Ready.
func (m *Manager) SetPitch(semitones float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Ready || m.shifter == nil {
		return false
	}
	if err := m.shifter.SetPitch(semitones); err != nil {
		log.Warnf("set pitch: %v", err)
	}
	return true
}

// SetVolume sets the gain offset. It is a no-op returning false unless Ready.
func (m *Manager) SetVolume(db float64) bool {
	return m.withPlayer("set volume", func(p Player) error {
		return p.SetVolume(db)
	})
}

// SetPlaybackRate sets the speed multiplier. It is a no-op returning false unless Ready.
func (m *Manager) SetPlaybackRate(multiplier float64) bool {
	return m.withPlayer("set playback rate", func(p Player) error {
		return p.SetPlaybackRate(multiplier)
	})
}

func (m *Manager) withPlayer(op string, fn func(Player) error) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Ready || m.player == nil {
		return false
	}
	if err := fn(m.player); err != nil {
		log.Warnf("audio %s: %v", op, err)
	}
	return true
}

// releaseLocked cancels the pending attempt and disposes the live graph.
func (m *Manager) releaseLocked() {
	if m.retry != nil {
		m.retry.Stop()
		m.retry = nil
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	disposeAll(m.player, m.shifter)
	m.player = nil
	m.shifter = nil
}

// run is the initialization sequence of one attempt. Steps run strictly in order.
func (m *Manager) run(ctx context.Context, cancel context.CancelFunc, gen uint64, url string) {
	defer cancel()
	logger := log.With(log.Fields{"generation": gen})

	var (
		player  Player
		shifter PitchShifter
	)

	fail := func(err error) {
		disposeAll(player, shifter)
		m.fail(gen, classify(err))
	}

	m.report(gen, StartingContext)
	if err := awaitErr(ctx, func() error { return m.engine.StartContext(ctx) }); err != nil {
		fail(err)
		return
	}

	m.report(gen, CreatingPlayer)
	player, err := await(ctx, func() (Player, error) {
		return m.engine.NewPlayer(ctx, url)
	}, func(p Player) { _ = p.Dispose() })
	if err != nil {
		fail(err)
		return
	}

	shifter, err = await(ctx, func() (PitchShifter, error) {
		return m.engine.NewPitchShifter(ctx)
	}, func(s PitchShifter) { _ = s.Dispose() })
	if err != nil {
		fail(err)
		return
	}

	m.report(gen, Loading)
	if err := awaitErr(ctx, func() error { return player.WaitLoaded(ctx) }); err != nil {
		fail(err)
		return
	}

	m.report(gen, Connecting)
	if err := awaitErr(ctx, func() error { return player.Connect(shifter) }); err != nil {
		fail(err)
		return
	}

	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		logger.Debugf("discarding stale audio graph")
		disposeAll(player, shifter)
		return
	}
	m.player = player
	m.shifter = shifter
	m.state = Ready
	m.cancel = nil
	m.mu.Unlock()

	logger.Infof("audio graph ready")
	m.outcomes <- Outcome{Generation: gen}
}

func (m *Manager) fail(gen uint64, err *InitError) {
	m.mu.Lock()
	if m.generation != gen {
		m.mu.Unlock()
		return
	}
	m.state = Failed
	m.lastErr = err
	m.cancel = nil
	m.mu.Unlock()

	log.With(log.Fields{"generation": gen, "kind": err.Kind.String()}).Errorf("audio initialization failed: %v", err.Err)
	m.outcomes <- Outcome{Generation: gen, Err: err}
}

func (m *Manager) report(gen uint64, stage Stage) {
	if !m.Current(gen) {
		return
	}
	select {
	case m.progress <- Progress{Generation: gen, Stage: stage}:
	default:
	}
}

// await runs step and returns its result, or ctx's error once ctx is done.
// A result produced after ctx is done is handed to discard.
func await[T any](ctx context.Context, step func() (T, error), discard func(T)) (T, error) {
	type result struct {
		value T
		err   error
	}

	done := make(chan result, 1)
	go func() {
		v, err := step()
		done <- result{value: v, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		go func() {
			if r := <-done; r.err == nil && discard != nil {
				discard(r.value)
			}
		}()
		var zero T
		return zero, ctx.Err()
	}
}

func awaitErr(ctx context.Context, step func() error) error {
	_, err := await(ctx, func() (struct{}, error) {
		return struct{}{}, step()
	}, nil)
	return err
}

func disposeAll(player Player, shifter PitchShifter) {
	if player != nil {
		if err := player.Dispose(); err != nil {
			log.Warnf("dispose audio player: %v", err)
		}
	}
	if shifter != nil {
		if err := shifter.Dispose(); err != nil {
			log.Warnf("dispose pitch shifter: %v", err)
		}
	}
}
