package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/stateforward/go-dfa/pkg/telemetry"
)

func readInputs(cmd *cobra.Command, files []string) ([]string, error) {
	if len(files) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return []string{string(data)}, nil
	}
	inputs := make([]string, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, string(data))
	}
	return inputs, nil
}

func newDecodeCommand(opts *options) *cobra.Command {
	var traceSteps bool
	cmd := &cobra.Command{
		Use:   "decode [files...]",
		Short: "Print the access code for each instruction file",
		Long:  "Decode every file independently and print one code per file, in argument order. Reads stdin when no files are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := opts.selectLayout()
			if err != nil {
				return err
			}
			inputs, err := readInputs(cmd, args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			provider := telemetry.NewProvider()
			if traceSteps {
				sdkProvider := newTracerProvider(opts.logger)
				defer func() {
					if err := sdkProvider.Shutdown(context.Background()); err != nil {
						opts.logger.Warn().Err(err).Msg("tracer shutdown failed")
					}
				}()
				provider = sdkProvider
			}
			trace := telemetry.Trace(ctx, provider.Tracer(telemetry.Instrumentation))

			codes, err := layout.decode(ctx, inputs, trace)
			if err != nil {
				if len(args) > 0 {
					return fmt.Errorf("decode %v with %s: %w", args, layout.name, err)
				}
				return fmt.Errorf("decode with %s: %w", layout.name, err)
			}
			out := cmd.OutOrStdout()
			for i, code := range codes {
				if len(args) > 1 {
					fmt.Fprintf(out, "%s: %s\n", args[i], code)
					continue
				}
				fmt.Fprintln(out, code)
			}
			opts.logger.Info().Str("layout", layout.name).Int("inputs", len(inputs)).Msg("decoded")
			return nil
		},
	}
	cmd.Flags().BoolVar(&traceSteps, "trace", false, "log one span per automaton step")
	return cmd
}
