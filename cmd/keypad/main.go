// keypad decodes bathroom access codes from keypad move instructions.
//
// Usage:
//
//	keypad decode [--layout square|diamond] [--rules file.yaml] [files...]
//	keypad diagram [--layout ...] [--hide-cycles]
//	keypad export [--layout ...]
//
// Instructions are read from stdin when no files are given.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var Version = "dev"

type options struct {
	logLevel string
	layout   string
	rules    string
	logger   zerolog.Logger
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		parsed = zerolog.WarnLevel
	}
	return zerolog.New(w).Level(parsed).With().
		Timestamp().
		Str("service", "keypad").
		Str("version", Version).
		Logger()
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "keypad",
		Short:         "Decode keypad access codes",
		Long:          "Walk keypad automata over move instructions (U, D, L, R) and print the buttons pressed.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logger = newLogger(cmd.ErrOrStderr(), opts.logLevel)
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to LOG_LEVEL or warn")
	root.PersistentFlags().StringVarP(&opts.layout, "layout", "l", "square", "built-in keypad layout: square or diamond")
	root.PersistentFlags().StringVarP(&opts.rules, "rules", "r", "", "YAML rule file describing a custom keypad; overrides --layout")

	root.AddCommand(newDecodeCommand(opts), newDiagramCommand(opts), newExportCommand(opts))
	return root
}

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		os.Exit(1)
	}
}
