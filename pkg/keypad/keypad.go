// Package keypad decodes bathroom access codes by walking keypad automata.
//
// Each instruction line is a string of moves (U, D, L, R). Decoding starts
// on the Start button, runs each line from the button the previous line
// ended on, and concatenates the buttons reached at the end of every line.
// Moves off the edge of the keypad are declared as cycles in the tables, so
// they leave the current button unchanged.
package keypad

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/stateforward/go-dfa"
	"github.com/stateforward/go-dfa/pkg/sequences"
)

const (
	Up    = 'U'
	Down  = 'D'
	Left  = 'L'
	Right = 'R'
)

var (
	up    = dfa.NewSymbol[rune](Up)
	down  = dfa.NewSymbol[rune](Down)
	left  = dfa.NewSymbol[rune](Left)
	right = dfa.NewSymbol[rune](Right)
)

// Moves yields one symbol per rune of line.
func Moves(line string) iter.Seq[dfa.Symbol[rune]] {
	return func(yield func(dfa.Symbol[rune]) bool) {
		for _, r := range line {
			if !yield(dfa.NewSymbol(r)) {
				return
			}
		}
	}
}

// Lines yields the non-blank lines of instructions with surrounding
// whitespace removed, keyed by their 1-based line number.
func Lines(instructions string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		for i, line := range strings.Split(instructions, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if !yield(i+1, line) {
				return
			}
		}
	}
}

type instruction struct {
	line  int
	moves string
}

func instructionsOf(text string) iter.Seq[instruction] {
	return func(yield func(instruction) bool) {
		for line, moves := range Lines(text) {
			if !yield(instruction{line: line, moves: moves}) {
				return
			}
		}
	}
}

// Decode returns the code for instructions on table, starting at start. An
// optional trace observes every move.
//
// Blank lines are skipped and contribute no button, so a trailing newline
// does not repeat the last one. Errors name the line of the failing move.
func Decode[S comparable](table *dfa.Table[S, rune], start dfa.State[S], instructions string, maybeTrace ...dfa.Trace) (string, error) {
	automaton := dfa.New(start, table)
	if len(maybeTrace) > 0 {
		automaton = dfa.WithTrace(automaton, maybeTrace[0])
	}
	var code strings.Builder
	line := 0
	runs := sequences.TryScan(instructionsOf(instructions), automaton,
		func(automaton dfa.Automaton[S, rune], next instruction) (dfa.Automaton[S, rune], error) {
			line = next.line
			return automaton.AcceptAll(Moves(next.moves))
		},
	)
	for automaton, err := range runs {
		if err != nil {
			return "", fmt.Errorf("line %d: %w", line, err)
		}
		code.WriteString(automaton.State().String())
	}
	return code.String(), nil
}

// DecodeAll decodes independent instruction sets concurrently. Results are
// in the order of inputs. The first failure cancels the remaining work.
func DecodeAll[S comparable](ctx context.Context, table *dfa.Table[S, rune], start dfa.State[S], inputs []string, maybeTrace ...dfa.Trace) ([]string, error) {
	codes := make([]string, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	for i, instructions := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			code, err := Decode(table, start, instructions, maybeTrace...)
			if err != nil {
				return fmt.Errorf("input %d: %w", i, err)
			}
			codes[i] = code
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return codes, nil
}
