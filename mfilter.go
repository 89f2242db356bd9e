// Package mfilter filters in-memory data with MongoDB-style query documents.
//
// A query is compiled once and can then be tested against any number of
// items, concurrently if needed:
//
//	q := mfilter.Compile(map[string]any{
//		"age":  map[string]any{"$gte": 18},
//		"tags": map[string]any{"$in": []any{"admin", "ops"}},
//	})
//	adults := q.Filter(users)
//
// Field keys are dotted paths ("a.b[2].c"). A path that crosses a sequence
// resolves to every matching element, and an operator is satisfied when any
// of those values satisfies it. Keys starting with "$" name operators.
// Operators the registry does not know are ignored.
package mfilter

import (
	"go.uber.org/zap"

	"github.com/jacoelho/mfilter/internal/comparator"
	"github.com/jacoelho/mfilter/internal/query"
	"github.com/jacoelho/mfilter/internal/value"
)

// Version of the query language implemented by this package.
const Version = "0.3.0"

// InputType selects how Test interprets its data argument.
type InputType string

const (
	// TypeSet treats data as a sequence of items.
	TypeSet InputType = "set"
	// TypeSingle treats data as one item.
	TypeSingle InputType = "single"
)

// OutputSpec selects the result shape of Test in set mode.
type OutputSpec string

const (
	// SpecSubset returns the matching items.
	SpecSubset OutputSpec = "subset"
	// SpecBoolean returns one boolean per item.
	SpecBoolean OutputSpec = "boolean"
	// SpecIndex returns the indexes of the matching items.
	SpecIndex OutputSpec = "index"
)

// TestOptions configures Test. The zero value means set input and subset
// output; unrecognised values fall back to those defaults.
type TestOptions struct {
	Type InputType
	Spec OutputSpec
}

type options struct {
	registry *Registry
	logger   *zap.Logger
}

// Option configures Compile.
type Option func(*options)

// WithRegistry resolves operators through r instead of the default registry.
func WithRegistry(r *Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithLogger enables debug traces for ignored operators and operands that
// could not be prepared.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Query is a compiled query. It is immutable and safe for concurrent use.
type Query struct {
	spec    any
	clauses query.Clauses
}

// Compile compiles spec. spec is usually a map[string]any, whose keys are
// compiled in sorted order, or a yaml.MapSlice, whose keys keep their
// order. Compile never fails; anything that cannot be interpreted
// compiles to a query that ignores it.
func Compile(spec any, opts ...Option) *Query {
	o := options{
		registry: comparator.Default(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	clauses := query.NewCompiler(o.registry, o.logger).Compile(spec)
	o.logger.Debug("query compiled", zap.Int("clauses", len(clauses)))

	return &Query{spec: spec, clauses: clauses}
}

// Spec returns the value the query was compiled from.
func (q *Query) Spec() any {
	return q.spec
}

// Test evaluates data. In single mode it returns a bool. In set mode it
// returns []any (subset), []bool (boolean) or []int (index).
func (q *Query) Test(data any, opts TestOptions) any {
	if opts.Type == TypeSingle {
		return q.Match(data)
	}

	switch opts.Spec {
	case SpecBoolean:
		return q.Mask(data)
	case SpecIndex:
		return q.Indexes(data)
	default:
		return q.Filter(data)
	}
}

// Match reports whether item satisfies the query.
func (q *Query) Match(item any) bool {
	return query.Test(item, q.clauses)
}

// Filter returns the items of data that satisfy the query.
func (q *Query) Filter(data any) []any {
	items := set(data)
	out := make([]any, 0, len(items))
	for _, item := range items {
		if q.Match(item) {
			out = append(out, item)
		}
	}
	return out
}

// Mask returns one result per item of data.
func (q *Query) Mask(data any) []bool {
	items := set(data)
	out := make([]bool, len(items))
	for i, item := range items {
		out[i] = q.Match(item)
	}
	return out
}

// Indexes returns the positions of the items of data that satisfy the query.
func (q *Query) Indexes(data any) []int {
	items := set(data)
	out := make([]int, 0, len(items))
	for i, item := range items {
		if q.Match(item) {
			out = append(out, i)
		}
	}
	return out
}

// set turns data into the items of a set-mode test. A value that is not a
// sequence is a set of one; nil is the empty set.
func set(data any) []any {
	if data == nil {
		return nil
	}
	if items, ok := value.Sequence(data); ok {
		return items
	}
	return []any{data}
}
