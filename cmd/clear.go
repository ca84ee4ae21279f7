// Package cmd implements the command-line interface for pitchloop.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/AlecAivazis/survey/v2"
	"github.com/pitchloop/pitchloop/icon"
	"github.com/pitchloop/pitchloop/util"
	"github.com/pitchloop/pitchloop/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// clearTarget defines a filesystem resource eligible for cleanup.
type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	location func() string
}

// clearTargets registry of all application artifacts that can be selectively cleared.
var clearTargets = []clearTarget{
	{"saved settings", "settings", mo.Some("s"), where.Settings},
	{"recent files", "recent", mo.Some("r"), where.Recent},
	{"logs", "logs", mo.Some("l"), where.Logs},
	{"cache directory", "cache", mo.Some("c"), where.Cache},
	{"temporary files", "temp", mo.Some("t"), where.Temp},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if target.argShort.IsPresent() {
			clearCmd.Flags().BoolP(target.argLong, target.argShort.MustGet(), false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}

	clearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

// clearCmd removes persisted settings, history and temporary artifacts.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear saved settings, recent files, logs and temporary files",
	Run: func(cmd *cobra.Command, args []string) {
		selected := lo.Filter(clearTargets, func(target clearTarget, _ int) bool {
			return lo.Must(cmd.Flags().GetBool(target.argLong))
		})

		if len(selected) == 0 {
			handleErr(cmd.Help())
			return
		}

		if !lo.Must(cmd.Flags().GetBool("yes")) {
			names := lo.Map(selected, func(target clearTarget, _ int) string {
				return target.name
			})

			confirm := survey.Confirm{
				Message: fmt.Sprintf("Clear %s?", joinNames(names)),
				Default: false,
			}
			var response bool
			handleErr(survey.AskOne(&confirm, &response))

			if !response {
				return
			}
		}

		for _, target := range selected {
			e := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Progress), target.name))
			err := util.Delete(target.location())
			e()

			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				handleErr(err)
			}
			fmt.Printf("%s %s cleared\n", icon.Get(icon.Success), util.Capitalize(target.name))
		}

		if len(selected) > 1 {
			fmt.Printf("%s Cleared %s\n", icon.Get(icon.Success), util.Quantify(len(selected), "target", "targets"))
		}
	},
}

// joinNames renders names as "a", "a and b" or "a, b and c".
func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}

	var out string
	for i, name := range names[:len(names)-1] {
		if i > 0 {
			out += ", "
		}
		out += name
	}
	return out + " and " + names[len(names)-1]
}
