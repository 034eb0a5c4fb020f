// Package rulefile loads transition tables from YAML rule definitions.
//
// A definition names a start state and lists cycle and point rules:
//
//	name: square
//	start: "5"
//	cycles:
//	  - states: ["1", "2", "3"]
//	    on: U
//	transitions:
//	  - {from: "1", on: R, to: "2"}
//
// States are strings and symbols are single characters.
package rulefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/stateforward/go-dfa"
	"github.com/stateforward/go-dfa/embedded"
	"github.com/stateforward/go-dfa/kinds"
	"github.com/stateforward/go-dfa/pkg/set"
)

var ErrInvalidDefinition = errors.New("invalid rule definition")

type Cycle struct {
	States []string `yaml:"states"`
	On     string   `yaml:"on"`
}

type Transition struct {
	From string `yaml:"from"`
	On   string `yaml:"on"`
	To   string `yaml:"to"`
}

type Definition struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	Start       string       `yaml:"start"`
	Cycles      []Cycle      `yaml:"cycles,omitempty"`
	Transitions []Transition `yaml:"transitions,omitempty"`
}

// Load decodes a single definition from r. Unknown fields are rejected.
func Load(r io.Reader) (*Definition, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var definition Definition
	if err := decoder.Decode(&definition); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidDefinition)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if err := definition.Validate(); err != nil {
		return nil, err
	}
	return &definition, nil
}

func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	definition, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return definition, nil
}

func symbolOf(value string) (dfa.Symbol[rune], error) {
	r, size := utf8.DecodeRuneInString(value)
	if (r == utf8.RuneError && size <= 1) || size != len(value) {
		return dfa.Symbol[rune]{}, fmt.Errorf("%w: symbol %q must be a single character", ErrInvalidDefinition, value)
	}
	return dfa.NewSymbol(r), nil
}

// Validate checks the shape of the definition. A state repeated inside one
// cycle is rejected here; conflicts between rules are detected by Table.
func (definition *Definition) Validate() error {
	if definition.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}
	if definition.Start == "" {
		return fmt.Errorf("%w: start is required", ErrInvalidDefinition)
	}
	for i, cycle := range definition.Cycles {
		if _, err := symbolOf(cycle.On); err != nil {
			return fmt.Errorf("cycle %d: %w", i, err)
		}
		members := set.New(cycle.States...)
		if members.Contains("") {
			return fmt.Errorf("%w: cycle %d has an empty state", ErrInvalidDefinition, i)
		}
		if members.Size() != len(cycle.States) {
			return fmt.Errorf("%w: cycle %d lists a state more than once", ErrInvalidDefinition, i)
		}
	}
	for i, transition := range definition.Transitions {
		if _, err := symbolOf(transition.On); err != nil {
			return fmt.Errorf("transition %d: %w", i, err)
		}
		if transition.From == "" || transition.To == "" {
			return fmt.Errorf("%w: transition %d needs from and to", ErrInvalidDefinition, i)
		}
	}
	return nil
}

// Rules converts the definition into dfa rules, cycles first.
func (definition *Definition) Rules() ([]dfa.Rule[string, rune], error) {
	if err := definition.Validate(); err != nil {
		return nil, err
	}
	rules := make([]dfa.Rule[string, rune], 0, len(definition.Cycles)+len(definition.Transitions))
	for _, cycle := range definition.Cycles {
		on, _ := symbolOf(cycle.On)
		states := make([]dfa.State[string], 0, len(cycle.States))
		for _, state := range cycle.States {
			states = append(states, dfa.NewState(state))
		}
		rules = append(rules, dfa.Cycle(states, on))
	}
	for _, transition := range definition.Transitions {
		on, _ := symbolOf(transition.On)
		rules = append(rules, dfa.Transition(dfa.NewState(transition.From), on, dfa.NewState(transition.To)))
	}
	return rules, nil
}

func (definition *Definition) Table() (*dfa.Table[string, rune], error) {
	rules, err := definition.Rules()
	if err != nil {
		return nil, err
	}
	table, err := dfa.Build(rules...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", definition.Name, err)
	}
	return table, nil
}

// State returns the start state after checking that table knows it.
func (definition *Definition) State(table *dfa.Table[string, rune]) (dfa.State[string], error) {
	start := dfa.NewState(definition.Start)
	if !table.States().Contains(start) {
		return dfa.State[string]{}, fmt.Errorf("%w: start state %q is not in table %s", ErrInvalidDefinition, definition.Start, definition.Name)
	}
	return start, nil
}

// FromTable describes an existing table. Cycle entries sharing a symbol are
// merged into one cycle, so the definition rebuilds an equivalent table.
func FromTable(name, start string, table embedded.Table) *Definition {
	definition := &Definition{Name: name, Start: start}
	cycles := map[string]int{}
	for _, transition := range table.Transitions() {
		if !kinds.IsKind(transition.Kind(), kinds.Cycle) {
			definition.Transitions = append(definition.Transitions, Transition{
				From: transition.Source(),
				On:   transition.Symbol(),
				To:   transition.Target(),
			})
			continue
		}
		i, ok := cycles[transition.Symbol()]
		if !ok {
			i = len(definition.Cycles)
			cycles[transition.Symbol()] = i
			definition.Cycles = append(definition.Cycles, Cycle{On: transition.Symbol()})
		}
		definition.Cycles[i].States = append(definition.Cycles[i].States, transition.Source())
	}
	return definition
}

// Marshal encodes the definition back to YAML.
func (definition *Definition) Marshal() ([]byte, error) {
	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(2)
	if err := encoder.Encode(definition); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
