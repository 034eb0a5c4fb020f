package main

import (
	"github.com/spf13/cobra"

	"github.com/stateforward/go-dfa/pkg/plantuml"
)

func newDiagramCommand(opts *options) *cobra.Command {
	var hideCycles bool
	cmd := &cobra.Command{
		Use:   "diagram",
		Short: "Write the keypad automaton as a PlantUML state diagram",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := opts.selectLayout()
			if err != nil {
				return err
			}
			return plantuml.Generate(cmd.OutOrStdout(), layout.table, plantuml.Options{
				Initial:    layout.start,
				HideCycles: hideCycles,
			})
		},
	}
	cmd.Flags().BoolVar(&hideCycles, "hide-cycles", false, "leave out edge-of-keypad self-loops")
	return cmd
}
