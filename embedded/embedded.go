package embedded

// Element is anything with a kind from the kinds package.
type Element interface {
	Kind() uint64
	Id() string
}

// Transition is a type-erased table entry. Source, Symbol and Target are
// the fmt.Sprint renderings of the underlying values.
type Transition interface {
	Kind() uint64
	Source() string
	Symbol() string
	Target() string
}

type Table interface {
	Element
	Len() int
	Transitions() []Transition
}
