// Package version provides unified mechanisms for application version tracking, update discovery, and compatibility validation.
package version

import (
	"fmt"

	"github.com/pitchloop/pitchloop/color"
	"github.com/pitchloop/pitchloop/constant"
	"github.com/pitchloop/pitchloop/icon"
	"github.com/pitchloop/pitchloop/key"
	"github.com/pitchloop/pitchloop/log"
	"github.com/pitchloop/pitchloop/style"
	"github.com/pitchloop/pitchloop/util"
	"github.com/spf13/viper"
)

// Notify prints a notice when a newer release than the running one exists.
// Failed checks stay silent.
func Notify() {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	erase := util.PrintErasable(fmt.Sprintf("%s Checking if new version is available...", icon.Get(icon.Progress)))
	version, err := Latest()
	erase()
	if err != nil {
		log.Warnf("version check: %v", err)
		return
	}

	if comp, err := Compare(version, constant.Version); err != nil || comp <= 0 {
		return
	}

	fmt.Printf(`
%s New version is available %s %s
%s

`,
		style.Fg(color.Green)("▇▇▇"),
		style.Bold(version),
		style.Faint(fmt.Sprintf("(You're on %s)", constant.Version)),
		style.Faint(ReleaseURL(version)),
	)
}
