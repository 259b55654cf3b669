//go:build !(js || wasm)

package main

import (
	"log/slog"
	"os"

	"github.com/cottand/tenet/cmd"
	"github.com/cottand/tenet/internal/log"
	"github.com/spf13/cobra"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var logLevel int

var rootCmd = &cobra.Command{
	Use:          "tenet [subcommand]",
	Short:        "tenet checks rule schemas and shows how they would be evaluated",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		log.SetLevel(slog.Level(logLevel))
	},
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&logLevel, "log-level", "l", int(slog.LevelError), "log level")
	rootCmd.AddCommand(cmd.CheckCmd)
	rootCmd.AddCommand(cmd.PlanCmd)
}
