// Package cmd implements the command-line interface for pitchloop.
package cmd

import (
	"os"
	"runtime"
	"strings"
	"text/template"

	"github.com/pitchloop/pitchloop/color"
	"github.com/pitchloop/pitchloop/constant"
	"github.com/pitchloop/pitchloop/key"
	"github.com/pitchloop/pitchloop/style"
	"github.com/pitchloop/pitchloop/version"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.SetOut(os.Stdout)
	versionCmd.Flags().BoolP("short", "s", false, "Display only the version string without metadata")
}

var versionTemplate = lo.Must(template.New("version").Funcs(template.FuncMap{
	"faint":   style.Faint,
	"bold":    style.Bold,
	"magenta": style.Fg(color.Purple),
}).Parse(`{{ magenta "▇▇▇" }} {{ magenta .App }}

  {{ faint "Version" }}         {{ bold .Version }}
  {{ faint "Git Commit" }}      {{ bold .Revision }}
  {{ faint "Build Date" }}      {{ bold .BuiltAt }}
  {{ faint "Built By" }}        {{ bold .BuiltBy }}
  {{ faint "Platform" }}        {{ bold .OS }}/{{ bold .Arch }}
  {{ faint "Player" }}          {{ bold .Player }}
`))

// versionCmd displays application version and build metadata.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display exhaustive version and build metadata",
	Long:  "Display the current application version, build revision, platform architecture, and the configured mpv binary.",
	Run: func(cmd *cobra.Command, args []string) {
		if lo.Must(cmd.Flags().GetBool("short")) {
			cmd.Println(constant.Version)
			return
		}

		defer version.Notify()

		handleErr(versionTemplate.Execute(cmd.OutOrStdout(), struct {
			App      string
			Version  string
			Revision string
			BuiltAt  string
			BuiltBy  string
			OS       string
			Arch     string
			Player   string
		}{
			App:      constant.Pitchloop,
			Version:  constant.Version,
			Revision: constant.Revision,
			BuiltAt:  strings.TrimSpace(constant.BuiltAt),
			BuiltBy:  constant.BuiltBy,
			OS:       runtime.GOOS,
			Arch:     runtime.GOARCH,
			Player:   viper.GetString(key.PlayerBinary),
		}))
	},
}
