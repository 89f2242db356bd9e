// Package query compiles query documents into clause lists and tests
// candidate items against them.
package query

import (
	"regexp"

	"github.com/jacoelho/mfilter/internal/comparator"
	"github.com/jacoelho/mfilter/internal/path"
)

// OperandKind tags the shape of a compiled operand.
type OperandKind uint8

const (
	// Absent is a nil operand.
	Absent OperandKind = iota
	// Literal is a scalar or object operand, possibly prepared.
	Literal
	// Sequence is a sequence operand. It makes any comparator receive the
	// whole candidate set.
	Sequence
	// Pattern is a compiled regular expression.
	Pattern
	// SubQuery holds compiled sub-queries.
	SubQuery
)

func (k OperandKind) String() string {
	switch k {
	case Absent:
		return "absent"
	case Literal:
		return "literal"
	case Sequence:
		return "sequence"
	case Pattern:
		return "pattern"
	case SubQuery:
		return "subquery"
	default:
		return "unknown"
	}
}

// Operand is the compiled form of an operator's argument.
type Operand struct {
	Kind  OperandKind
	Value any
	// Queries holds one clause list per combinator sub-query.
	Queries []Clauses
}

func tagOperand(v any) Operand {
	switch current := v.(type) {
	case nil:
		return Operand{Kind: Absent}
	case *regexp.Regexp:
		return Operand{Kind: Pattern, Value: current}
	case []any:
		return Operand{Kind: Sequence, Value: current}
	case Clauses:
		return Operand{Kind: SubQuery, Value: current}
	default:
		return Operand{Kind: Literal, Value: v}
	}
}

// Node is one operator applied to a candidate set.
type Node struct {
	Name string
	// Entry is the resolved comparator. It is meaningful only when Known.
	Entry      comparator.Entry
	Known      bool
	Operand    Operand
	Combinator bool
}

// Clause is an optional path and the operator nodes that must all hold for
// the values it resolves to.
type Clause struct {
	Path    path.Path
	HasPath bool
	Nodes   []Node
}

// Clauses is a compiled query. Every clause must hold for an item to match.
type Clauses []Clause

// Match reports whether item satisfies every clause.
func (c Clauses) Match(item any) bool {
	return Test(item, c)
}

var _ comparator.Matcher = Clauses(nil)
