// Package cmd implements the command-line interface for pitchloop.
package cmd

import (
	"os"
	"path/filepath"

	"github.com/pitchloop/pitchloop/color"
	"github.com/pitchloop/pitchloop/open"
	"github.com/pitchloop/pitchloop/style"
	"github.com/pitchloop/pitchloop/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// whereTarget is a path the application reads or writes.
type whereTarget struct {
	name     string
	where    func() string
	argLong  string
	argShort mo.Option[string]
	hidden   bool
}

var wherePaths = []*whereTarget{
	{"Config", where.Config, "config", mo.Some("c"), false},
	{"Settings", where.Settings, "settings", mo.Some("s"), false},
	{"Recent files", where.Recent, "recent", mo.Some("r"), false},
	{"Logs", where.Logs, "logs", mo.Some("l"), false},
	{"Cache", where.Cache, "cache", mo.None[string](), true},
	{"Temp", where.Temp, "temp", mo.None[string](), true},
}

func init() {
	rootCmd.AddCommand(whereCmd)

	for _, n := range wherePaths {
		if short, ok := n.argShort.Get(); ok {
			whereCmd.Flags().BoolP(n.argLong, short, false, n.name+" path")
		} else {
			whereCmd.Flags().Bool(n.argLong, false, n.name+" path")
		}

		if n.hidden {
			lo.Must0(whereCmd.Flags().MarkHidden(n.argLong))
		}
	}

	whereCmd.MarkFlagsMutuallyExclusive(lo.Map(wherePaths, func(t *whereTarget, _ int) string {
		return t.argLong
	})...)

	whereCmd.Flags().BoolP("open", "o", false, "Open the selected location in the file manager")

	whereCmd.SetOut(os.Stdout)
}

// whereCmd prints where pitchloop keeps its files.
var whereCmd = &cobra.Command{
	Use:   "where",
	Short: "Display the paths of the config, settings, recent files and logs",
	Example: "  pitchloop where --settings\n" +
		"  pitchloop where --logs --open",
	Run: func(cmd *cobra.Command, args []string) {
		selected, found := lo.Find(wherePaths, func(t *whereTarget) bool {
			return lo.Must(cmd.Flags().GetBool(t.argLong))
		})

		if found {
			path := selected.where()
			cmd.Println(path)

			if lo.Must(cmd.Flags().GetBool("open")) {
				handleErr(open.Start(directoryOf(path)))
			}
			return
		}

		headerStyle := style.New().Bold(true).Foreground(color.HiPurple).Render
		visible := lo.Reject(wherePaths, func(t *whereTarget, _ int) bool {
			return t.hidden
		})

		for i, n := range visible {
			cmd.Printf("%s %s\n", headerStyle(n.name+"?"), style.Fg(color.Yellow)("--"+n.argLong))
			cmd.Println(n.where())

			if i < len(visible)-1 {
				cmd.Println()
			}
		}
	},
}

// directoryOf returns path when it is a directory, else its parent.
// Files such as settings.json may not exist yet.
func directoryOf(path string) string {
	if filepath.Ext(path) == "" {
		return path
	}
	return filepath.Dir(path)
}
