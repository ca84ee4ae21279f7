// Package main is the entry point for the pitchloop application.
package main

import (
	"github.com/pitchloop/pitchloop/cmd"
	"github.com/pitchloop/pitchloop/config"
	"github.com/pitchloop/pitchloop/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
