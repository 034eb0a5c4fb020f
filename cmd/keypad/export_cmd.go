package main

import (
	"github.com/spf13/cobra"

	"github.com/stateforward/go-dfa/pkg/rulefile"
)

func newExportCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the keypad automaton as a YAML rule file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := opts.selectLayout()
			if err != nil {
				return err
			}
			data, err := rulefile.FromTable(layout.name, layout.start, layout.table).Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
