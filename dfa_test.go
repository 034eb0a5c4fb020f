package dfa_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/stateforward/go-dfa"
	"github.com/stateforward/go-dfa/kinds"
)

var (
	state  = dfa.NewState[int]
	symbol = dfa.NewSymbol[rune]
)

// 1 2
// 3 4
func grid() []dfa.Rule[int, rune] {
	return []dfa.Rule[int, rune]{
		dfa.Cycle(dfa.Or(state(1), state(2)), symbol('U')),
		dfa.Cycle(dfa.Or(state(3), state(4)), symbol('D')),
		dfa.Cycle(dfa.Or(state(1), state(3)), symbol('L')),
		dfa.Cycle(dfa.Or(state(2), state(4)), symbol('R')),
		dfa.Transition(state(1), symbol('R'), state(2)),
		dfa.Transition(state(1), symbol('D'), state(3)),
		dfa.Transition(state(2), symbol('L'), state(1)),
		dfa.Transition(state(2), symbol('D'), state(4)),
		dfa.Transition(state(3), symbol('U'), state(1)),
		dfa.Transition(state(3), symbol('R'), state(4)),
		dfa.Transition(state(4), symbol('U'), state(2)),
		dfa.Transition(state(4), symbol('L'), state(3)),
	}
}

func TestBuild(t *testing.T) {
	t.Run("CountsEveryEntry", func(t *testing.T) {
		table, err := dfa.Build(grid()...)
		require.NoError(t, err)
		assert.Equal(t, 8+4*2, table.Len())
		assert.NotEmpty(t, table.Id())
	})

	t.Run("Empty", func(t *testing.T) {
		table, err := dfa.Build[int, rune]()
		require.NoError(t, err)
		assert.Equal(t, 0, table.Len())
		assert.Empty(t, table.Transitions())
		assert.Equal(t, 0, table.States().Size())
	})

	t.Run("EmptyCycleGroup", func(t *testing.T) {
		table, err := dfa.Build(
			dfa.Cycle(dfa.Or[int](), symbol('U')),
			dfa.Transition(state(1), symbol('U'), state(2)),
		)
		require.NoError(t, err)
		assert.Equal(t, 1, table.Len())
	})

	t.Run("SkipsNilRules", func(t *testing.T) {
		table, err := dfa.Build[int, rune](nil, dfa.Transition(state(1), symbol('U'), state(2)))
		require.NoError(t, err)
		assert.Equal(t, 1, table.Len())
	})

	t.Run("DistinctIds", func(t *testing.T) {
		a := dfa.MustBuild(grid()...)
		b := dfa.MustBuild(grid()...)
		assert.NotEqual(t, a.Id(), b.Id())
	})

	t.Run("OrCopiesGroup", func(t *testing.T) {
		group := []dfa.State[int]{state(1), state(2)}
		rule := dfa.Cycle(group, symbol('U'))
		group[1] = state(1)
		table, err := dfa.Build(rule)
		require.NoError(t, err)
		assert.Equal(t, 2, table.Len())
	})
}

func TestBuildDuplicates(t *testing.T) {
	cases := []struct {
		name  string
		rules []dfa.Rule[int, rune]
		state int
		want  [2]int
	}{
		{
			name: "PointPoint",
			rules: []dfa.Rule[int, rune]{
				dfa.Transition(state(1), symbol('R'), state(2)),
				dfa.Transition(state(1), symbol('R'), state(3)),
			},
			state: 1,
			want:  [2]int{2, 3},
		},
		{
			name: "CycleThenPoint",
			rules: []dfa.Rule[int, rune]{
				dfa.Cycle(dfa.Or(state(1), state(2)), symbol('R')),
				dfa.Transition(state(2), symbol('R'), state(3)),
			},
			state: 2,
			want:  [2]int{2, 3},
		},
		{
			name: "PointThenCycle",
			rules: []dfa.Rule[int, rune]{
				dfa.Transition(state(2), symbol('R'), state(3)),
				dfa.Cycle(dfa.Or(state(1), state(2)), symbol('R')),
			},
			state: 2,
			want:  [2]int{3, 2},
		},
		{
			name: "WithinGroup",
			rules: []dfa.Rule[int, rune]{
				dfa.Cycle(dfa.Or(state(4), state(4)), symbol('R')),
			},
			state: 4,
			want:  [2]int{4, 4},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			table, err := dfa.Build(tc.rules...)
			require.Error(t, err)
			assert.Nil(t, table)
			assert.True(t, errors.Is(err, dfa.ErrDuplicateTransition))

			var duplicate *dfa.DuplicateTransitionError[int, rune]
			require.True(t, errors.As(err, &duplicate))
			assert.Equal(t, state(tc.state), duplicate.State)
			assert.Equal(t, symbol('R'), duplicate.Symbol)
			assert.Equal(t, state(tc.want[0]), duplicate.Existing)
			assert.Equal(t, state(tc.want[1]), duplicate.Conflicting)
		})
	}
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buffer bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buffer, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(previous) })
	return &buffer
}

func TestMustBuildPanics(t *testing.T) {
	logs := captureLogs(t)
	assert.Panics(t, func() {
		dfa.MustBuild(
			dfa.Transition(state(1), symbol('R'), state(2)),
			dfa.Transition(state(1), symbol('R'), state(2)),
		)
	})
	assert.Contains(t, logs.String(), "invalid transition table")
}

func TestBuildFailureIsNotLogged(t *testing.T) {
	logs := captureLogs(t)
	_, err := dfa.Build(
		dfa.Transition(state(1), symbol('R'), state(2)),
		dfa.Transition(state(1), symbol('R'), state(3)),
	)
	require.ErrorIs(t, err, dfa.ErrDuplicateTransition)
	assert.Empty(t, logs.String())
}

func TestTableIntrospection(t *testing.T) {
	table := dfa.MustBuild(grid()...)

	assert.ElementsMatch(t, []dfa.State[int]{state(1), state(2), state(3), state(4)}, slices.Collect(maps.Keys(table.States())))
	assert.ElementsMatch(t, []dfa.Symbol[rune]{symbol('U'), symbol('D'), symbol('L'), symbol('R')}, slices.Collect(maps.Keys(table.Alphabet())))

	target, ok := table.Lookup(state(1), symbol('R'))
	assert.True(t, ok)
	assert.Equal(t, state(2), target)
	_, ok = table.Lookup(state(9), symbol('R'))
	assert.False(t, ok)

	transitions := table.Transitions()
	require.Len(t, transitions, 16)
	first := transitions[0]
	assert.True(t, kinds.IsKind(first.Kind(), kinds.Cycle))
	assert.Equal(t, "1", first.Source())
	assert.Equal(t, "U", first.Symbol())
	assert.Equal(t, "1", first.Target())
	last := transitions[len(transitions)-1]
	assert.True(t, kinds.IsKind(last.Kind(), kinds.Point))
	assert.Equal(t, []string{"4", "L", "3"}, []string{last.Source(), last.Symbol(), last.Target()})

	states := table.States()
	states.Add(state(42))
	assert.False(t, table.States().Contains(state(42)), "States returns a copy")
}

func TestNilTable(t *testing.T) {
	var table *dfa.Table[int, rune]
	assert.Equal(t, "", table.Id())
	assert.Equal(t, 0, table.Len())
	assert.Nil(t, table.Transitions())

	_, err := dfa.New(state(1), table).Accept(symbol('U'))
	assert.ErrorIs(t, err, dfa.ErrMissingTransition)
}

func TestAccept(t *testing.T) {
	table := dfa.MustBuild(grid()...)

	t.Run("Point", func(t *testing.T) {
		next, err := dfa.New(state(1), table).Accept(symbol('D'))
		require.NoError(t, err)
		assert.Equal(t, state(3), next.State())
		assert.Same(t, table, next.Table())
	})

	t.Run("CycleIsFixedPoint", func(t *testing.T) {
		groups := map[rune][]int{'U': {1, 2}, 'D': {3, 4}, 'L': {1, 3}, 'R': {2, 4}}
		for on, group := range groups {
			for _, s := range group {
				next, err := dfa.New(state(s), table).Accept(symbol(on))
				require.NoError(t, err)
				assert.Equal(t, state(s), next.State(), "state %d on %c", s, on)
			}
		}
	})

	t.Run("Missing", func(t *testing.T) {
		start := dfa.New(state(1), table)
		next, err := start.Accept(symbol('X'))
		require.Error(t, err)
		assert.Equal(t, state(1), next.State())

		var missing *dfa.MissingTransitionError[int, rune]
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, state(1), missing.State)
		assert.Equal(t, symbol('X'), missing.Symbol)
		assert.Equal(t, 0, missing.Step)
		assert.Equal(t, "missing transition: state 1 on symbol X at step 0", err.Error())
	})

	t.Run("NoImplicitSelfLoop", func(t *testing.T) {
		sparse := dfa.MustBuild(dfa.Transition(state(1), symbol('R'), state(2)))
		_, err := dfa.New(state(2), sparse).Accept(symbol('R'))
		assert.ErrorIs(t, err, dfa.ErrMissingTransition)
	})

	t.Run("LeavesReceiverUntouched", func(t *testing.T) {
		start := dfa.New(state(1), table)
		_, err := start.Accept(symbol('R'))
		require.NoError(t, err)
		assert.Equal(t, state(1), start.State())
	})

	t.Run("Deterministic", func(t *testing.T) {
		start := dfa.New(state(4), table)
		for i := 0; i < 10; i++ {
			next, err := start.AcceptAll(dfa.Symbols('U', 'L', 'D', 'D', 'R'))
			require.NoError(t, err)
			assert.Equal(t, state(4), next.State())
		}
	})
}

func TestAcceptAll(t *testing.T) {
	table := dfa.MustBuild(grid()...)
	start := dfa.New(state(1), table)

	t.Run("Empty", func(t *testing.T) {
		next, err := start.AcceptAll(dfa.Symbols[rune]())
		require.NoError(t, err)
		assert.Equal(t, start, next)

		next, err = start.AcceptAll(nil)
		require.NoError(t, err)
		assert.Equal(t, start, next)
	})

	t.Run("Sequence", func(t *testing.T) {
		next, err := start.AcceptAll(dfa.Symbols('R', 'R', 'D', 'L', 'U'))
		require.NoError(t, err)
		assert.Equal(t, state(1), next.State())
	})

	t.Run("FailFast", func(t *testing.T) {
		pulled := 0
		symbols := func(yield func(dfa.Symbol[rune]) bool) {
			for _, r := range "RDXUL" {
				pulled++
				if !yield(symbol(r)) {
					return
				}
			}
		}
		next, err := start.AcceptAll(symbols)
		require.Error(t, err)
		assert.Equal(t, state(4), next.State())
		assert.Equal(t, 3, pulled)

		var missing *dfa.MissingTransitionError[int, rune]
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, state(4), missing.State)
		assert.Equal(t, symbol('X'), missing.Symbol)
		assert.Equal(t, 2, missing.Step)
	})
}

func TestSteps(t *testing.T) {
	table := dfa.MustBuild(grid()...)
	start := dfa.New(state(1), table)

	t.Run("YieldsInitialAndEveryStep", func(t *testing.T) {
		var states []int
		for automaton, err := range start.Steps(dfa.Symbols('R', 'R', 'D', 'L')) {
			require.NoError(t, err)
			states = append(states, automaton.State().Value())
		}
		assert.Equal(t, []int{1, 2, 2, 4, 3}, states)
	})

	t.Run("EmptyInput", func(t *testing.T) {
		count := 0
		for automaton, err := range start.Steps(dfa.Symbols[rune]()) {
			require.NoError(t, err)
			assert.Equal(t, state(1), automaton.State())
			count++
		}
		assert.Equal(t, 1, count)
	})

	t.Run("StopsOnMissing", func(t *testing.T) {
		var states []int
		var errs []error
		for automaton, err := range start.Steps(dfa.Symbols('D', '?', 'U')) {
			states = append(states, automaton.State().Value())
			errs = append(errs, err)
		}
		assert.Equal(t, []int{1, 3, 3}, states)
		require.Len(t, errs, 3)
		assert.NoError(t, errs[0])
		assert.NoError(t, errs[1])
		assert.ErrorIs(t, errs[2], dfa.ErrMissingTransition)
	})

	t.Run("EarlyBreak", func(t *testing.T) {
		count := 0
		for range start.Steps(dfa.Symbols('R', 'D', 'L')) {
			count++
			if count == 2 {
				break
			}
		}
		assert.Equal(t, 2, count)
	})

	t.Run("Replays", func(t *testing.T) {
		steps := start.Steps(dfa.Symbols('D', 'R'))
		collect := func() []int {
			var states []int
			for automaton := range steps {
				states = append(states, automaton.State().Value())
			}
			return states
		}
		assert.Equal(t, collect(), collect())
	})
}

type call struct {
	step    string
	args    []any
	outcome []any
}

func TestWithTrace(t *testing.T) {
	table := dfa.MustBuild(grid()...)
	var calls []*call
	trace := func(step string, args ...any) func(...any) {
		c := &call{step: step, args: args}
		calls = append(calls, c)
		return func(outcome ...any) {
			c.outcome = outcome
		}
	}
	start := dfa.WithTrace(dfa.New(state(1), table), trace)
	_, err := start.AcceptAll(dfa.Symbols('R', 'X'))
	require.Error(t, err)
	require.Len(t, calls, 2)

	assert.Equal(t, "accept", calls[0].step)
	assert.Equal(t, []any{"table", table.Id(), "state", "1", "symbol", "R", "step", 0}, calls[0].args)
	assert.Equal(t, []any{state(2)}, calls[0].outcome)

	require.Len(t, calls[1].outcome, 1)
	outcome, ok := calls[1].outcome[0].(error)
	require.True(t, ok)
	assert.ErrorIs(t, outcome, dfa.ErrMissingTransition)

	untraced := dfa.WithTrace(start, nil)
	calls = nil
	_, err = untraced.Accept(symbol('R'))
	require.NoError(t, err)
	assert.Empty(t, calls)
}

func TestSymbolAndStateFormatting(t *testing.T) {
	assert.Equal(t, "U", symbol('U').String())
	assert.Equal(t, "7", state(7).String())
	assert.Equal(t, "D", dfa.NewState('D').String())
	assert.Equal(t, "north", dfa.NewSymbol("north").String())
	assert.Equal(t, 'U', symbol('U').Value())
	assert.Equal(t, fmt.Sprint(3.5), dfa.NewState(3.5).String())
}

func TestSharedTableConcurrently(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	table := dfa.MustBuild(grid()...)
	inputs := []string{"RD", "DR", "RRDDLLUU", "URDL", "LLLL", "DDRRUL"}
	want := make([]int, len(inputs))
	for i, input := range inputs {
		final, err := dfa.New(state(1), table).AcceptAll(dfa.Symbols([]rune(input)...))
		require.NoError(t, err)
		want[i] = final.State().Value()
	}

	got := make([]int, len(inputs)*50)
	g, _ := errgroup.WithContext(context.Background())
	for i := range got {
		g.Go(func() error {
			input := inputs[i%len(inputs)]
			final, err := dfa.New(state(1), table).AcceptAll(dfa.Symbols([]rune(input)...))
			if err != nil {
				return err
			}
			got[i] = final.State().Value()
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for i, value := range got {
		assert.Equal(t, want[i%len(inputs)], value)
	}
	assert.True(t, slices.Contains(want, 4))
}

var benchTable = dfa.MustBuild(grid()...)

func BenchmarkAccept(b *testing.B) {
	b.ReportAllocs()
	automaton := dfa.New(state(1), benchTable)
	for i := 0; i < b.N; i++ {
		automaton, _ = automaton.Accept(symbol('R'))
		automaton, _ = automaton.Accept(symbol('L'))
	}
}

func BenchmarkSwitch(b *testing.B) {
	current := 1
	step := func(on rune) {
		switch {
		case current == 1 && on == 'R':
			current = 2
		case current == 2 && on == 'L':
			current = 1
		}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		step('R')
		step('L')
	}
}
