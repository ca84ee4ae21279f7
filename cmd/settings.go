// Package cmd implements the command-line interface for pitchloop.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/invopop/jsonschema"
	"github.com/pitchloop/pitchloop/color"
	"github.com/pitchloop/pitchloop/params"
	"github.com/pitchloop/pitchloop/prefs"
	"github.com/pitchloop/pitchloop/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.Flags().BoolP("json", "j", false, "Print the raw settings document as JSON")
	settingsCmd.SetOut(os.Stdout)

	settingsCmd.AddCommand(settingsSchemaCmd)
}

// shownValue converts a persisted value into what the player displays.
// Volume is stored as an offset from full volume.
func shownValue(name params.Name, stored string) string {
	if name != params.Volume {
		return stored
	}
	offset, err := strconv.ParseFloat(stored, 64)
	if err != nil {
		return stored
	}
	return strconv.FormatFloat(100+offset, 'f', -1, 64)
}

// settingsCmd prints the pitch, rate and volume that will be restored on the next audio load.
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Display the saved pitch, playback rate and volume",
	Run: func(cmd *cobra.Command, args []string) {
		store := prefs.Default()

		if lo.Must(cmd.Flags().GetBool("json")) {
			record, err := store.Record()
			handleErr(err)
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(record))
			return
		}

		for _, name := range params.Names {
			label := style.New().Bold(true).Foreground(color.Purple).Render(string(name))
			stored, ok := store.Get(string(name)).Get()
			if !ok {
				cmd.Printf("%s %s\n", label, style.Faint(fmt.Sprintf("default (%v)", params.Defaults[name])))
				continue
			}
			cmd.Printf("%s %s\n", label, style.Fg(color.Yellow)(shownValue(name, stored)))
		}
	},
}

// settingsSchemaCmd describes the settings document for external tools.
var settingsSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate the JSON schema of the settings document",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.DoNotReference = true

		handleErr(json.NewEncoder(os.Stdout).Encode(reflector.Reflect(&prefs.Record{})))
	},
}
