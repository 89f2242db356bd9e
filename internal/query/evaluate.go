package query

import (
	"github.com/jacoelho/mfilter/internal/comparator"
	"github.com/jacoelho/mfilter/internal/path"
	"github.com/jacoelho/mfilter/internal/value"
)

// Test reports whether item satisfies every clause. Pathless clauses use
// the item itself as the candidate set; a sequence item is the set.
func Test(item any, clauses Clauses) bool {
	for _, clause := range clauses {
		var values []any
		if clause.HasPath {
			values = path.GetAll(clause.Path, item)
		} else {
			values = candidates(item)
		}

		if !evaluate(values, clause.Nodes) {
			return false
		}
	}
	return true
}

func candidates(item any) []any {
	if items, ok := value.Sequence(item); ok {
		return items
	}
	return []any{item}
}

// evaluate applies nodes in order to values.
//
// An empty value set is tested once against the missing marker by the
// first node that has a comparator, and that verdict settles the whole
// list: the remaining nodes are not consulted.
func evaluate(values []any, nodes []Node) bool {
	for _, node := range nodes {
		if !node.Known {
			continue
		}

		var results []bool
		if node.Combinator {
			results = make([]bool, len(node.Operand.Queries))
			for i, sub := range node.Operand.Queries {
				results[i] = Test(values, sub)
			}
		}

		if len(values) == 0 {
			return apply(node, value.Missing, results)
		}

		if !apply(node, values, results) {
			return false
		}
	}
	return true
}

// apply runs one node against the candidate set, or against the missing
// marker when the set was empty.
func apply(node Node, values any, results []bool) bool {
	entry := node.Entry

	if entry.Kind == comparator.Aggregate {
		if node.Combinator {
			return entry.Reduce(results)
		}
		return entry.Reduce(truths(node.Operand.Value))
	}

	operand := node.Operand.Value
	items, isSet := values.([]any)
	if !isSet || entry.Kind == comparator.WholeSequence || node.Operand.Kind == Sequence {
		return entry.Test(values, operand)
	}

	for _, item := range items {
		if entry.Test(item, operand) {
			return true
		}
	}
	return false
}

// truths maps the raw elements of a degraded combinator operand to their
// truthiness.
func truths(operand any) []bool {
	items, ok := value.Sequence(operand)
	if !ok {
		return nil
	}
	out := make([]bool, len(items))
	for i, item := range items {
		out[i] = value.Truthy(item)
	}
	return out
}
