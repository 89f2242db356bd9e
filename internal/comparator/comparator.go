// Package comparator holds the named operators a query can apply to a
// candidate value and the registry that resolves them by name.
package comparator

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind tells the evaluator how an entry consumes the candidate value set.
type Kind uint8

const (
	// ScalarAny entries are applied to each candidate; one success is enough.
	ScalarAny Kind = iota + 1
	// WholeSequence entries receive the whole candidate set at once.
	WholeSequence
	// Aggregate entries combine the boolean results of sub-queries.
	Aggregate
)

func (k Kind) String() string {
	switch k {
	case ScalarAny:
		return "scalar"
	case WholeSequence:
		return "sequence"
	case Aggregate:
		return "aggregate"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// OperandMode tells the compiler how to treat an entry's operand.
type OperandMode uint8

const (
	// OperandRaw keeps the operand as written.
	OperandRaw OperandMode = iota
	// OperandQuery compiles the operand into a Matcher.
	OperandQuery
)

// Func tests a candidate against an operand.
type Func func(actual, operand any) bool

// AggregateFunc folds sub-query results into one verdict.
type AggregateFunc func(results []bool) bool

// PrepareFunc converts a raw operand once, at compile time.
type PrepareFunc func(operand any) (any, error)

// Matcher is a compiled sub-query. OperandQuery entries receive one as
// their operand.
type Matcher interface {
	Match(item any) bool
}

// Entry describes one operator.
type Entry struct {
	Name      string
	Kind      Kind
	Fn        Func
	Aggregate AggregateFunc
	Operand   OperandMode
	Prepare   PrepareFunc
}

var (
	ErrInvalidEntry = errors.New("invalid comparator entry")
	ErrUnknown      = errors.New("unknown comparator")
)

// Combinator reports whether the entry combines sub-queries.
func (e Entry) Combinator() bool {
	return e.Kind == Aggregate
}

// Test applies a non-aggregate entry to a candidate.
func (e Entry) Test(actual, operand any) bool {
	if e.Fn == nil {
		return false
	}
	return e.Fn(actual, operand)
}

// Reduce applies an aggregate entry to sub-query results.
func (e Entry) Reduce(results []bool) bool {
	if e.Aggregate == nil {
		return false
	}
	return e.Aggregate(results)
}

func (e Entry) validate() error {
	if !strings.HasPrefix(e.Name, "$") || len(e.Name) < 2 {
		return fmt.Errorf("%w: name %q must start with '$'", ErrInvalidEntry, e.Name)
	}

	switch e.Kind {
	case ScalarAny, WholeSequence:
		if e.Fn == nil {
			return fmt.Errorf("%w: %s: %s entry requires Fn", ErrInvalidEntry, e.Name, e.Kind)
		}
	case Aggregate:
		if e.Aggregate == nil {
			return fmt.Errorf("%w: %s: aggregate entry requires Aggregate", ErrInvalidEntry, e.Name)
		}
		if e.Operand == OperandQuery {
			return fmt.Errorf("%w: %s: aggregate entry cannot take a query operand", ErrInvalidEntry, e.Name)
		}
	default:
		return fmt.Errorf("%w: %s: unsupported kind %s", ErrInvalidEntry, e.Name, e.Kind)
	}

	return nil
}

// Registry is an immutable set of entries keyed by name.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry builds a registry from entries. Later entries replace earlier
// ones with the same name.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{entries: make(map[string]Entry, len(entries))}
	for _, entry := range entries {
		if err := entry.validate(); err != nil {
			return nil, err
		}
		r.entries[entry.Name] = entry
	}
	return r, nil
}

// With returns a new registry holding r's entries plus the given ones.
func (r *Registry) With(entries ...Entry) (*Registry, error) {
	merged := make([]Entry, 0, r.Len()+len(entries))
	for _, name := range r.Names() {
		merged = append(merged, r.entries[name])
	}
	merged = append(merged, entries...)
	return NewRegistry(merged...)
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	entry, ok := r.entries[name]
	return entry, ok
}

// Require is like Lookup but returns ErrUnknown for unregistered names.
func (r *Registry) Require(name string) (Entry, error) {
	entry, ok := r.Lookup(name)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknown, name)
	}
	return entry, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}
