package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/phip1611/unix-exec-output-catcher/pkg/lib"
	"github.com/phip1611/unix-exec-output-catcher/pkg/lib/catcher"
	"github.com/phip1611/unix-exec-output-catcher/pkg/lib/pipe"
)

func newRunCmd() *cobra.Command {
	var separate bool
	var logLevel string

	cmd := &cobra.Command{
		Use:   "run -- <command> [args...]",
		Short: "Execute a command and print the captured output",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("command to execute is required; use -- to separate CLI flags from the command")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if logLevel != "" {
				level, err := zerolog.ParseLevel(logLevel)
				if err != nil {
					return err
				}
				l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
					Level(level).
					With().Timestamp().Logger()
				pipe.SetLogger(l)
				catcher.SetLogger(l)
			}

			strategy := lib.StrategyCombined
			if separate {
				strategy = lib.StrategySeparate
			}

			out, err := catcher.SpawnAndCapture(args[0], args[1:], strategy)
			if err != nil {
				return err
			}

			if strategy == lib.StrategySeparate {
				printLines("stdout", out.StdoutLines)
				printLines("stderr", out.StderrLines)
			}
			printLines("combined", out.CombinedLines)
			fmt.Printf("exit code: %d\n", out.ExitCode)
			return nil
		},
	}

	cmd.Flags().BoolVar(&separate, "separate", false, "capture stdout and stderr on separate pipes (best-effort combined order)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "enable library logging (trace, debug, info, ...)")

	return cmd
}

func printLines(name string, lines []string) {
	fmt.Printf("%s (%d lines):\n", name, len(lines))
	for _, l := range lines {
		fmt.Printf("  %s\n", l)
	}
}
