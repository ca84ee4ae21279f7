// Package cmd implements the command-line interface for pitchloop.
package cmd

import (
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/pitchloop/pitchloop/color"
	"github.com/pitchloop/pitchloop/constant"
	"github.com/pitchloop/pitchloop/files"
	"github.com/pitchloop/pitchloop/icon"
	"github.com/pitchloop/pitchloop/key"
	"github.com/pitchloop/pitchloop/log"
	"github.com/pitchloop/pitchloop/params"
	"github.com/pitchloop/pitchloop/style"
	"github.com/pitchloop/pitchloop/util"
	"github.com/pitchloop/pitchloop/version"
	"github.com/pitchloop/pitchloop/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// parameterFlags maps the override flags to the parameters they set.
var parameterFlags = map[string]params.Name{
	"pitch":  params.Pitch,
	"rate":   params.PlaybackRate,
	"volume": params.Volume,
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, plain)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.Flags().String("mpv", "", "Path or name of the mpv executable")
	lo.Must0(viper.BindPFlag(key.PlayerBinary, rootCmd.Flags().Lookup("mpv")))

	rootCmd.Flags().StringP("pitch", "p", "", "Pitch shift in semitones, from -12 to 12")
	rootCmd.Flags().StringP("rate", "r", "", "Playback speed in percent, from 10 to 300")
	rootCmd.Flags().String("volume", "", "Volume, from 0 to 100")
	rootCmd.Flags().StringP("loop", "l", "", "Loop range as START-STOP, e.g. 1:05-1:20")

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})
}

// rootCmd opens a video and runs the player.
var rootCmd = &cobra.Command{
	Use:   constant.Pitchloop + " [file]",
	Short: "Loop a video section and change its pitch and speed independently",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - Loop a video section and change its pitch and speed independently"),
	Args: cobra.MaximumNArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return files.Extensions(), cobra.ShellCompDirectiveFilterFileExt
	},
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		options := sessionOptions{
			overrides: make(map[params.Name]string),
		}

		if len(args) > 0 {
			options.file = args[0]
		}

		for flag, name := range parameterFlags {
			if cmd.Flags().Changed(flag) {
				options.overrides[name] = lo.Must(cmd.Flags().GetString(flag))
			}
		}

		if cmd.Flags().Changed("loop") {
			start, stop, err := parseLoopFlag(lo.Must(cmd.Flags().GetString("loop")))
			handleErr(err)
			options.loop = [2]string{start, stop}
			options.hasLoop = true
		}

		_ = util.Delete(where.Temp())
		CheckDependencies(viper.GetString(key.PlayerBinary))

		handleErr(runSession(cmd.Context(), options))
	},
}

// parseLoopFlag splits START-STOP. Either side may be empty.
func parseLoopFlag(raw string) (start, stop string, err error) {
	start, stop, found := strings.Cut(raw, "-")
	if !found {
		return "", "", fmt.Errorf("invalid loop %q, expected START-STOP", raw)
	}
	return strings.TrimSpace(start), strings.TrimSpace(stop), nil
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
