// Package cmd implements the command-line interface of the assembler.
package cmd

import (
	"fmt"
	"os"
	"os/user"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dr8co/sema/repl"
)

var (
	flagVerbose bool
	flagNoColor bool
)

// rootCmd starts the interactive REPL when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:   "sema",
	Short: "An extensible macro assembler for an S-expression dialect",
	Long: `Sema compiles S-expression programs that mix value computation with
bit-emission primitives, and assembles the result into a bit-addressable
binary artifact. Without a subcommand it starts an interactive REPL.`,
	Run: func(cmd *cobra.Command, args []string) {
		username := "unknown"
		if usr, err := user.Current(); err == nil {
			username = usr.Username
		}
		repl.Start(username, repl.Options{NoColor: noColor(), Debug: flagVerbose})
	},
}

// noColor reports whether styled output should be suppressed: either by
// flag or because stdout is not a terminal.
func noColor() bool {
	if flagNoColor {
		return true
	}
	return !term.IsTerminal(int(os.Stdout.Fd()))
}

// Execute runs the command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose diagnostics")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")

	cobra.OnInitialize(func() {
		logrus.SetOutput(os.Stderr)
		if flagVerbose {
			logrus.SetLevel(logrus.DebugLevel)
		} else {
			logrus.SetLevel(logrus.WarnLevel)
		}
	})
}
