package comparator

import (
	"math"
	"strings"
	"sync"

	"github.com/jacoelho/mfilter/internal/equality"
	"github.com/jacoelho/mfilter/internal/number"
	"github.com/jacoelho/mfilter/internal/value"
)

// Builtins returns the operators every query understands.
func Builtins() []Entry {
	return []Entry{
		{Name: "$gt", Kind: ScalarAny, Fn: ordered(func(c int) bool { return c > 0 })},
		{Name: "$gte", Kind: ScalarAny, Fn: ordered(func(c int) bool { return c >= 0 })},
		{Name: "$lt", Kind: ScalarAny, Fn: ordered(func(c int) bool { return c < 0 })},
		{Name: "$lte", Kind: ScalarAny, Fn: ordered(func(c int) bool { return c <= 0 })},
		{Name: "$regex", Kind: ScalarAny, Fn: matchPattern, Prepare: preparePattern},
		{Name: "$mod", Kind: ScalarAny, Fn: modulo},
		{Name: "$eq", Kind: WholeSequence, Fn: equality.Equals},
		{Name: "$ne", Kind: WholeSequence, Fn: notEquals},
		{Name: "$not", Kind: ScalarAny, Fn: notEquals},
		{Name: "$exists", Kind: ScalarAny, Fn: exists},
		{Name: "$in", Kind: ScalarAny, Fn: in},
		{Name: "$nin", Kind: ScalarAny, Fn: notIn},
		{Name: "$size", Kind: WholeSequence, Fn: size},
		{Name: "$all", Kind: WholeSequence, Fn: all},
		{Name: "$and", Kind: Aggregate, Aggregate: and},
		{Name: "$or", Kind: Aggregate, Aggregate: or},
		{Name: "$nor", Kind: Aggregate, Aggregate: nor},
		{Name: "$elemMatch", Kind: WholeSequence, Fn: elemMatch, Operand: OperandQuery},
		{Name: "$type", Kind: ScalarAny, Fn: typeIs},
		{Name: "$where", Kind: ScalarAny, Fn: where, Prepare: prepareWhere},
		{Name: "$jsonSchema", Kind: ScalarAny, Fn: conformsTo, Prepare: prepareSchema},
		{Name: "$geoWithin", Kind: WholeSequence, Fn: geoWithin, Prepare: prepareSphere},
	}
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := NewRegistry(Builtins()...)
	if err != nil {
		panic(err)
	}
	return r
})

// Default returns the shared registry of built-in operators.
func Default() *Registry {
	return defaultRegistry()
}

func ordered(accept func(int) bool) Func {
	return func(actual, operand any) bool {
		c, ok := number.Compare(actual, operand)
		return ok && accept(c)
	}
}

func preparePattern(operand any) (any, error) {
	return Pattern(operand)
}

func matchPattern(actual, operand any) bool {
	s, ok := actual.(string)
	if !ok {
		return false
	}
	re, err := Pattern(operand)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

// modulo follows $mod: [divisor, remainder]. Sequences match when any
// element does.
func modulo(actual, operand any) bool {
	args, ok := value.Sequence(operand)
	if !ok || len(args) < 2 {
		return false
	}
	divisor, ok := number.Coerce(args[0])
	if !ok {
		return false
	}
	remainder, ok := number.Coerce(args[1])
	if !ok {
		return false
	}

	if items, ok := value.Sequence(actual); ok {
		for _, item := range items {
			if modulo(item, operand) {
				return true
			}
		}
		return false
	}

	if value.IsNullish(actual) {
		return false
	}
	n, ok := number.Coerce(actual)
	if !ok {
		return false
	}
	return math.Mod(n, divisor) == remainder
}

func notEquals(actual, operand any) bool {
	return !equality.Equals(actual, operand)
}

func exists(actual, operand any) bool {
	return !value.IsMissing(actual) == value.Truthy(operand)
}

func bag(operand any) []any {
	if items, ok := value.Sequence(operand); ok {
		return items
	}
	return []any{operand}
}

func in(actual, operand any) bool {
	return equality.Contains(actual, bag(operand))
}

func notIn(actual, operand any) bool {
	return !equality.Contains(actual, bag(operand))
}

func size(actual, operand any) bool {
	n, ok := value.Length(actual)
	if !ok || n == 0 || !value.Truthy(operand) {
		return false
	}
	return equality.Loose(n, operand)
}

func all(actual, operand any) bool {
	return equality.AllContained(actual, bag(operand))
}

func and(results []bool) bool {
	for _, r := range results {
		if !r {
			return false
		}
	}
	return true
}

func or(results []bool) bool {
	for _, r := range results {
		if r {
			return true
		}
	}
	return false
}

func nor(results []bool) bool {
	return !or(results)
}

func elemMatch(actual, operand any) bool {
	matcher, ok := operand.(Matcher)
	if !ok {
		return false
	}
	items, ok := value.Sequence(actual)
	if !ok {
		if value.IsNullish(actual) {
			return false
		}
		items = []any{actual}
	}
	for _, item := range items {
		if matcher.Match(item) {
			return true
		}
	}
	return false
}

var typeAliases = map[string]string{
	"bool":      "boolean",
	"int":       "number",
	"long":      "number",
	"double":    "number",
	"decimal":   "number",
	"float":     "number",
	"integer":   "number",
	"list":      "array",
	"map":       "object",
	"undefined": "missing",
	"timestamp": "date",
}

// typeIs compares the candidate's type name with the operand.
func typeIs(actual, operand any) bool {
	name, ok := operand.(string)
	if !ok {
		return false
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := typeAliases[name]; ok {
		name = alias
	}
	return value.Type(actual) == name
}
