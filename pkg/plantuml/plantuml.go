// Package plantuml renders transition tables as PlantUML state diagrams.
package plantuml

import (
	"fmt"
	"io"
	"strings"

	"github.com/stateforward/go-dfa/embedded"
	"github.com/stateforward/go-dfa/kinds"
)

var replacer = strings.NewReplacer("-", "_", "/", "_", ".", "_", " ", "_", "\"", "_")

func idFromState(state string) string {
	return "s_" + replacer.Replace(state)
}

type Options struct {
	// Initial draws an initial pseudostate pointing at this state.
	Initial string
	// HideCycles leaves self-loops declared by cycle rules out of the diagram.
	HideCycles bool
}

func generateStates(builder *strings.Builder, transitions []embedded.Transition) {
	visited := map[string]struct{}{}
	visit := func(state string) {
		if _, ok := visited[state]; ok {
			return
		}
		visited[state] = struct{}{}
		fmt.Fprintf(builder, "state %q as %s\n", state, idFromState(state))
	}
	for _, transition := range transitions {
		visit(transition.Source())
		visit(transition.Target())
	}
}

func generateTransition(builder *strings.Builder, transition embedded.Transition) {
	arrow := "-->"
	if kinds.IsKind(transition.Kind(), kinds.Cycle) {
		arrow = "-[dashed]->"
	}
	fmt.Fprintf(builder, "%s %s %s : %s\n", idFromState(transition.Source()), arrow, idFromState(transition.Target()), transition.Symbol())
}

// Generate writes a diagram of table to writer. States appear in the order
// they are first mentioned; transitions in declaration order.
func Generate(writer io.Writer, table embedded.Table, maybeOptions ...Options) error {
	var options Options
	if len(maybeOptions) > 0 {
		options = maybeOptions[0]
	}
	var builder strings.Builder
	transitions := table.Transitions()
	fmt.Fprintf(&builder, "@startuml %s\n", table.Id())
	generateStates(&builder, transitions)
	if options.Initial != "" {
		fmt.Fprintf(&builder, "[*] --> %s\n", idFromState(options.Initial))
	}
	for _, transition := range transitions {
		if options.HideCycles && kinds.IsKind(transition.Kind(), kinds.Cycle) {
			continue
		}
		generateTransition(&builder, transition)
	}
	fmt.Fprintln(&builder, "@enduml")
	_, err := io.WriteString(writer, builder.String())
	return err
}
