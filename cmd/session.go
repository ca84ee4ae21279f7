// Package cmd implements the command-line interface for pitchloop.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pitchloop/pitchloop/audio"
	"github.com/pitchloop/pitchloop/constant"
	"github.com/pitchloop/pitchloop/coordinator"
	"github.com/pitchloop/pitchloop/engine"
	"github.com/pitchloop/pitchloop/key"
	"github.com/pitchloop/pitchloop/log"
	"github.com/pitchloop/pitchloop/media"
	"github.com/pitchloop/pitchloop/params"
	"github.com/pitchloop/pitchloop/prefs"
	"github.com/pitchloop/pitchloop/tui"
	"github.com/pitchloop/pitchloop/util"
	"github.com/spf13/viper"
)

// sessionOptions is what the root command collected from its arguments.
type sessionOptions struct {
	file      string
	overrides map[params.Name]string
	loop      [2]string
	hasLoop   bool
}

// newEngine picks the audio graph engine named by the audio.engine setting.
// config.Engines lists the accepted names.
func newEngine(name string) (audio.Engine, error) {
	switch name {
	case "mpv":
		return engine.New(viper.GetString(key.PlayerBinary)), nil
	default:
		return nil, fmt.Errorf("unknown audio engine %q", name)
	}
}

// runSession opens the video window, wires the coordinator to the interface and blocks until the user quits.
func runSession(ctx context.Context, options sessionOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := newEngine(viper.GetString(key.AudioEngine))
	if err != nil {
		return err
	}

	element := media.New(constant.Pitchloop)
	if err := element.Open(ctx); err != nil {
		return err
	}
	defer util.Ignore(element.Close)

	manager := audio.NewManager(eng, audio.Options{})
	display := tui.NewDisplay()
	coord := coordinator.New(element, manager, display, prefs.Default())
	defer func() {
		if err := coord.Close(); err != nil {
			log.Warnf("close audio: %v", err)
		}
	}()

	for name, raw := range options.overrides {
		if err := coord.Override(name, raw); err != nil {
			return err
		}
	}
	if options.hasLoop {
		coord.OverrideLoop(options.loop[0], options.loop[1])
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Closing the video window ends the session.
	go func() {
		select {
		case <-element.Closed():
			log.Info("video window closed")
			cancel()
		case <-ctx.Done():
		}
	}()

	go func() {
		_ = coord.Run(ctx)
	}()

	return tui.Run(ctx, &tui.Options{
		Controller: coord,
		Display:    display,
		File:       options.file,
	})
}
