package main

import (
	"context"
	"fmt"

	"github.com/stateforward/go-dfa"
	"github.com/stateforward/go-dfa/embedded"
	"github.com/stateforward/go-dfa/pkg/keypad"
	"github.com/stateforward/go-dfa/pkg/rulefile"
)

// layout hides the state type of a keypad table from the commands.
type layout struct {
	name   string
	start  string
	table  embedded.Table
	decode func(ctx context.Context, inputs []string, trace dfa.Trace) ([]string, error)
}

func newLayout[S comparable](name string, table *dfa.Table[S, rune], start dfa.State[S]) layout {
	return layout{
		name:  name,
		start: start.String(),
		table: table,
		decode: func(ctx context.Context, inputs []string, trace dfa.Trace) ([]string, error) {
			return keypad.DecodeAll(ctx, table, start, inputs, trace)
		},
	}
}

func (opts *options) selectLayout() (layout, error) {
	if opts.rules != "" {
		definition, err := rulefile.LoadFile(opts.rules)
		if err != nil {
			return layout{}, err
		}
		table, err := definition.Table()
		if err != nil {
			return layout{}, fmt.Errorf("%s: %w", opts.rules, err)
		}
		start, err := definition.State(table)
		if err != nil {
			return layout{}, fmt.Errorf("%s: %w", opts.rules, err)
		}
		opts.logger.Debug().Str("rules", opts.rules).Str("table", table.Id()).Int("transitions", table.Len()).Msg("loaded rule file")
		return newLayout(definition.Name, table, start), nil
	}
	switch opts.layout {
	case "square":
		return newLayout("square", keypad.Square, keypad.SquareStart), nil
	case "diamond":
		return newLayout("diamond", keypad.Diamond, keypad.DiamondStart), nil
	}
	return layout{}, fmt.Errorf("unknown layout %q (want square or diamond)", opts.layout)
}
