// Package dfa is a deterministic finite automaton runtime. Transition tables
// are declared with point and cycle rules, built once, and then shared by
// any number of immutable Automaton values.
package dfa

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/stateforward/go-dfa/embedded"
	"github.com/stateforward/go-dfa/kinds"
	"github.com/stateforward/go-dfa/pkg/set"
)

func format(value any) string {
	if r, ok := value.(rune); ok {
		return string(r)
	}
	return fmt.Sprint(value)
}

/******* Symbol *******/

type Symbol[T comparable] struct {
	value T
}

func NewSymbol[T comparable](value T) Symbol[T] {
	return Symbol[T]{value: value}
}

func (symbol Symbol[T]) Value() T {
	return symbol.value
}

// String formats the wrapped value; rune values render as characters.
func (symbol Symbol[T]) String() string {
	return format(symbol.value)
}

// Symbols yields one Symbol per value, in order.
func Symbols[T comparable](values ...T) iter.Seq[Symbol[T]] {
	return func(yield func(Symbol[T]) bool) {
		for _, value := range values {
			if !yield(Symbol[T]{value: value}) {
				return
			}
		}
	}
}

/******* State *******/

type State[T comparable] struct {
	value T
}

func NewState[T comparable](value T) State[T] {
	return State[T]{value: value}
}

func (state State[T]) Value() T {
	return state.value
}

// String formats the wrapped value; rune values render as characters.
func (state State[T]) String() string {
	return format(state.value)
}

/******* Transition *******/

type key[S, Y comparable] struct {
	state  State[S]
	symbol Symbol[Y]
}

type transition[S, Y comparable] struct {
	kind   uint64
	source State[S]
	symbol Symbol[Y]
	target State[S]
}

func (transition transition[S, Y]) Kind() uint64 {
	return transition.kind
}

func (transition transition[S, Y]) Source() string {
	return transition.source.String()
}

func (transition transition[S, Y]) Symbol() string {
	return transition.symbol.String()
}

func (transition transition[S, Y]) Target() string {
	return transition.target.String()
}

/******* Table *******/

// Table maps (State, Symbol) pairs to destination states. A Table is never
// modified once Build returns it and is safe for concurrent use.
type Table[S, Y comparable] struct {
	id          string
	transitions map[key[S, Y]]transition[S, Y]
	order       []key[S, Y]
}

func (table *Table[S, Y]) Kind() uint64 {
	return kinds.Table
}

func (table *Table[S, Y]) Id() string {
	if table == nil {
		return ""
	}
	return table.id
}

func (table *Table[S, Y]) Len() int {
	if table == nil {
		return 0
	}
	return len(table.order)
}

func (table *Table[S, Y]) Lookup(state State[S], symbol Symbol[Y]) (State[S], bool) {
	if table == nil {
		return State[S]{}, false
	}
	transition, ok := table.transitions[key[S, Y]{state: state, symbol: symbol}]
	return transition.target, ok
}

// States returns every state appearing as either endpoint of an entry.
func (table *Table[S, Y]) States() set.Set[State[S]] {
	states := set.Set[State[S]]{}
	if table == nil {
		return states
	}
	for _, transition := range table.transitions {
		states.Add(transition.source, transition.target)
	}
	return states
}

// Alphabet returns every symbol appearing in an entry.
func (table *Table[S, Y]) Alphabet() set.Set[Symbol[Y]] {
	alphabet := set.Set[Symbol[Y]]{}
	if table == nil {
		return alphabet
	}
	for key := range table.transitions {
		alphabet.Add(key.symbol)
	}
	return alphabet
}

// Transitions returns the entries in declaration order.
func (table *Table[S, Y]) Transitions() []embedded.Transition {
	if table == nil {
		return nil
	}
	transitions := make([]embedded.Transition, 0, len(table.order))
	for _, key := range table.order {
		transitions = append(transitions, table.transitions[key])
	}
	return transitions
}

/******* Rules *******/

type builder[S, Y comparable] struct {
	transitions map[key[S, Y]]transition[S, Y]
	order       []key[S, Y]
}

func (builder *builder[S, Y]) add(kind uint64, source State[S], symbol Symbol[Y], target State[S]) error {
	key := key[S, Y]{state: source, symbol: symbol}
	if existing, ok := builder.transitions[key]; ok {
		return &DuplicateTransitionError[S, Y]{
			State:       source,
			Symbol:      symbol,
			Existing:    existing.target,
			Conflicting: target,
		}
	}
	builder.transitions[key] = transition[S, Y]{kind: kind, source: source, symbol: symbol, target: target}
	builder.order = append(builder.order, key)
	return nil
}

// Rule declares table entries. Rules only take effect through Build.
type Rule[S, Y comparable] func(builder *builder[S, Y]) error

// Transition declares that consuming on while in from moves to to.
func Transition[S, Y comparable](from State[S], on Symbol[Y], to State[S]) Rule[S, Y] {
	return func(builder *builder[S, Y]) error {
		return builder.add(kinds.Point, from, on, to)
	}
}

// Cycle declares that every state in states stays put when consuming on.
// A state listed twice is a duplicate transition.
func Cycle[S, Y comparable](states []State[S], on Symbol[Y]) Rule[S, Y] {
	states = slices.Clone(states)
	return func(builder *builder[S, Y]) error {
		for _, state := range states {
			if err := builder.add(kinds.Cycle, state, on, state); err != nil {
				return err
			}
		}
		return nil
	}
}

// Or groups states for a Cycle rule.
func Or[S comparable](states ...State[S]) []State[S] {
	return slices.Clone(states)
}

func newId() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Build applies rules in order and returns the resulting table. It fails
// on the first (State, Symbol) pair declared more than once.
func Build[S, Y comparable](rules ...Rule[S, Y]) (*Table[S, Y], error) {
	builder := &builder[S, Y]{transitions: map[key[S, Y]]transition[S, Y]{}}
	for _, rule := range rules {
		if rule == nil {
			continue
		}
		if err := rule(builder); err != nil {
			return nil, err
		}
	}
	table := &Table[S, Y]{
		id:          newId(),
		transitions: builder.transitions,
		order:       builder.order,
	}
	slog.Debug("built transition table", "id", table.id, "transitions", len(table.order))
	return table, nil
}

// MustBuild is like Build but panics if the rules conflict.
func MustBuild[S, Y comparable](rules ...Rule[S, Y]) *Table[S, Y] {
	table, err := Build(rules...)
	if err != nil {
		slog.Error("invalid transition table", "error", err)
		panic(err)
	}
	return table
}

/******* Errors *******/

var (
	ErrDuplicateTransition = errors.New("duplicate transition")
	ErrMissingTransition   = errors.New("missing transition")
)

type DuplicateTransitionError[S, Y comparable] struct {
	State       State[S]
	Symbol      Symbol[Y]
	Existing    State[S]
	Conflicting State[S]
}

func (err *DuplicateTransitionError[S, Y]) Error() string {
	return fmt.Sprintf("%v: state %s on symbol %s goes to %s and %s",
		ErrDuplicateTransition, err.State, err.Symbol, err.Existing, err.Conflicting)
}

func (err *DuplicateTransitionError[S, Y]) Unwrap() error {
	return ErrDuplicateTransition
}

type MissingTransitionError[S, Y comparable] struct {
	State  State[S]
	Symbol Symbol[Y]
	// Step is the zero-based position of Symbol in the consumed input.
	Step int
}

func (err *MissingTransitionError[S, Y]) Error() string {
	return fmt.Sprintf("%v: state %s on symbol %s at step %d",
		ErrMissingTransition, err.State, err.Symbol, err.Step)
}

func (err *MissingTransitionError[S, Y]) Unwrap() error {
	return ErrMissingTransition
}

/******* Automaton *******/

// Trace is called before every step with slog style key/value pairs. The
// returned function receives the outcome, either the destination State or
// the error.
type Trace func(step string, args ...any) func(...any)

// Automaton pairs a current state with a shared table. Every step returns
// a new value and leaves the receiver untouched.
type Automaton[S, Y comparable] struct {
	state State[S]
	table *Table[S, Y]
	trace Trace
}

func New[S, Y comparable](initial State[S], table *Table[S, Y]) Automaton[S, Y] {
	return Automaton[S, Y]{state: initial, table: table}
}

// WithTrace returns a copy of automaton that reports every step to trace.
// Successor automata inherit the hook.
func WithTrace[S, Y comparable](automaton Automaton[S, Y], trace Trace) Automaton[S, Y] {
	automaton.trace = trace
	return automaton
}

func (automaton Automaton[S, Y]) State() State[S] {
	return automaton.state
}

func (automaton Automaton[S, Y]) Table() *Table[S, Y] {
	return automaton.table
}

// Accept consumes one symbol. When the table has no entry for the current
// state and symbol it returns the receiver with a *MissingTransitionError.
func (automaton Automaton[S, Y]) Accept(symbol Symbol[Y]) (Automaton[S, Y], error) {
	return automaton.accept(symbol, 0)
}

func (automaton Automaton[S, Y]) accept(symbol Symbol[Y], step int) (Automaton[S, Y], error) {
	var end func(...any)
	if automaton.trace != nil {
		end = automaton.trace("accept",
			"table", automaton.table.Id(),
			"state", automaton.state.String(),
			"symbol", symbol.String(),
			"step", step,
		)
	}
	target, ok := automaton.table.Lookup(automaton.state, symbol)
	if !ok {
		err := &MissingTransitionError[S, Y]{State: automaton.state, Symbol: symbol, Step: step}
		if end != nil {
			end(err)
		}
		return automaton, err
	}
	next := automaton
	next.state = target
	if end != nil {
		end(target)
	}
	return next, nil
}

// AcceptAll consumes symbols left to right and stops at the first missing
// transition, returning the last automaton that was reached.
func (automaton Automaton[S, Y]) AcceptAll(symbols iter.Seq[Symbol[Y]]) (Automaton[S, Y], error) {
	if symbols == nil {
		return automaton, nil
	}
	current := automaton
	step := 0
	for symbol := range symbols {
		next, err := current.accept(symbol, step)
		if err != nil {
			return current, err
		}
		current = next
		step++
	}
	return current, nil
}

// Steps yields the receiver followed by the automaton reached after each
// symbol. On a missing transition it yields the last automaton reached
// together with the error and stops. Nothing is cached: ranging twice runs
// the symbols twice.
func (automaton Automaton[S, Y]) Steps(symbols iter.Seq[Symbol[Y]]) iter.Seq2[Automaton[S, Y], error] {
	return func(yield func(Automaton[S, Y], error) bool) {
		current := automaton
		if !yield(current, nil) || symbols == nil {
			return
		}
		step := 0
		for symbol := range symbols {
			next, err := current.accept(symbol, step)
			if err != nil {
				yield(current, err)
				return
			}
			current = next
			if !yield(current, nil) {
				return
			}
			step++
		}
	}
}
