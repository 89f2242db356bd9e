package mfilter

import "github.com/jacoelho/mfilter/internal/comparator"

type (
	// Registry resolves operator names. It is immutable; extend it with
	// Registry.With.
	Registry = comparator.Registry
	// Entry describes one operator.
	Entry = comparator.Entry
	// Kind tells the evaluator how an operator consumes candidate values.
	Kind = comparator.Kind
	// Matcher is a compiled sub-query handed to query-operand operators.
	Matcher = comparator.Matcher
)

const (
	ScalarAny     = comparator.ScalarAny
	WholeSequence = comparator.WholeSequence
	Aggregate     = comparator.Aggregate

	OperandRaw   = comparator.OperandRaw
	OperandQuery = comparator.OperandQuery
)

// NewRegistry builds a registry holding only the given entries.
func NewRegistry(entries ...Entry) (*Registry, error) {
	return comparator.NewRegistry(entries...)
}

// DefaultRegistry returns the registry of built-in operators.
func DefaultRegistry() *Registry {
	return comparator.Default()
}

// Comparator returns the built-in operator called name.
func Comparator(name string) (Entry, bool) {
	return comparator.Default().Lookup(name)
}
