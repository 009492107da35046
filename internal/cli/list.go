package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"punk_dash/internal/config"
	"punk_dash/internal/gfx"
	"punk_dash/internal/rain"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available themes, character sets and animation options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printOptions(cmd.OutOrStdout())
			return nil
		},
	}
}

func printOptions(w io.Writer) {
	section := func(title string, items []string) {
		fmt.Fprintf(w, "%s:\n", title)
		for _, item := range items {
			fmt.Fprintln(w, "  ", item)
		}
		fmt.Fprintln(w)
	}
	section("Colors", gfx.ThemeNames())
	section("Character Sets", rain.CharSetNames())
	section("Presets", config.Presets())
	section("Schedules", []string{config.ScheduleFrame, config.ScheduleFixed})
	section("Effects", []string{config.EffectColumns, config.EffectParticles})
	fmt.Fprintln(w, "FPS: 1-60")
	fmt.Fprintf(w, "Environment: %s<SETTING>, e.g. %sTHEME=amber\n", config.EnvPrefix, config.EnvPrefix)
}
