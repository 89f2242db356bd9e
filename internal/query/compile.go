package query

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"go.uber.org/zap"

	"github.com/jacoelho/mfilter/internal/comparator"
	"github.com/jacoelho/mfilter/internal/number"
	"github.com/jacoelho/mfilter/internal/path"
	"github.com/jacoelho/mfilter/internal/value"
)

// Compiler turns query documents into clause lists.
type Compiler struct {
	registry *comparator.Registry
	logger   *zap.Logger
}

// NewCompiler creates a compiler resolving operators through registry.
// A nil registry means the default one; a nil logger discards output.
func NewCompiler(registry *comparator.Registry, logger *zap.Logger) *Compiler {
	if registry == nil {
		registry = comparator.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compiler{registry: registry, logger: logger}
}

// Compile compiles spec. It never fails: specs that are not mappings
// compile to an empty clause list, which matches everything.
func (c *Compiler) Compile(spec any) Clauses {
	pairs, ok := entries(spec)
	if !ok {
		if spec != nil {
			c.logger.Debug("query spec is not a mapping", zap.String("type", fmt.Sprintf("%T", spec)))
		}
		return Clauses{}
	}

	clauses := make(Clauses, 0, len(pairs))
	pathless := false
	for _, pair := range pairs {
		if isOperator(pair.key) {
			// Every operator key shares the same pathless clause.
			if pathless {
				continue
			}
			pathless = true
			clauses = append(clauses, Clause{Nodes: c.compileOperators(pairs)})
			continue
		}

		var nodes []Node
		if ops, isMap := entries(pair.value); isMap {
			nodes = c.compileOperators(ops)
		} else {
			nodes = c.compileOperators([]entry{{key: "$eq", value: pair.value}})
		}

		clauses = append(clauses, Clause{
			Path:    path.Compile(pair.key),
			HasPath: true,
			Nodes:   nodes,
		})
	}

	return clauses
}

func (c *Compiler) compileOperators(ops []entry) []Node {
	nodes := make([]Node, 0, len(ops))
	for _, op := range ops {
		nodes = append(nodes, c.compileOperator(op.key, op.value))
	}
	return nodes
}

func (c *Compiler) compileOperator(name string, operand any) Node {
	entry, known := c.registry.Lookup(name)
	if !known {
		c.logger.Debug("unregistered operator is ignored", zap.String("operator", name))
		return Node{Name: name, Operand: tagOperand(normalize(operand))}
	}

	node := Node{Name: name, Entry: entry, Known: true}

	switch {
	case entry.Combinator():
		node.Combinator, node.Operand = c.compileCombinator(name, operand)
	case entry.Operand == comparator.OperandQuery:
		if _, isMap := entries(operand); isMap {
			node.Operand = tagOperand(c.Compile(operand))
		} else {
			c.logger.Debug("operator expects a query operand", zap.String("operator", name))
			node.Operand = tagOperand(normalize(operand))
		}
	default:
		node.Operand = tagOperand(c.prepare(name, entry, normalize(operand)))
	}

	return node
}

// compileCombinator compiles each element of a combinator operand as a
// sub-query. A single primitive element makes the whole node an ordinary
// one that keeps the raw sequence.
func (c *Compiler) compileCombinator(name string, operand any) (bool, Operand) {
	items, ok := value.Sequence(operand)
	if !ok {
		c.logger.Debug("combinator operand is not a sequence", zap.String("operator", name))
		return true, Operand{Kind: SubQuery}
	}

	queries := make([]Clauses, 0, len(items))
	for _, item := range items {
		if isPrimitive(item) {
			c.logger.Debug("combinator operand holds a primitive, evaluating it as a plain operator",
				zap.String("operator", name),
				zap.Any("element", item),
			)
			return false, tagOperand(normalize(operand))
		}
		queries = append(queries, c.Compile(item))
	}

	return true, Operand{Kind: SubQuery, Queries: queries}
}

func (c *Compiler) prepare(name string, entry comparator.Entry, operand any) any {
	if entry.Prepare == nil {
		return operand
	}
	prepared, err := entry.Prepare(operand)
	if err != nil {
		c.logger.Debug("operand kept as written", zap.String("operator", name), zap.Error(err))
		return operand
	}
	return prepared
}

func isOperator(key string) bool {
	return strings.HasPrefix(key, "$")
}

func isPrimitive(v any) bool {
	switch v.(type) {
	case nil, string, bool:
		return true
	}
	if value.IsMissing(v) {
		return true
	}
	_, ok := number.ToFloat64(v)
	return ok
}

type entry struct {
	key   string
	value any
}

// entries lists the key/value pairs of a mapping. Go maps are visited in
// sorted key order; yaml.MapSlice keeps its declaration order.
func entries(v any) ([]entry, bool) {
	switch current := v.(type) {
	case map[string]any:
		out := make([]entry, 0, len(current))
		for _, key := range value.Keys(current) {
			out = append(out, entry{key: key, value: current[key]})
		}
		return out, true
	case yaml.MapSlice:
		out := make([]entry, 0, len(current))
		for _, item := range current {
			out = append(out, entry{key: fmt.Sprint(item.Key), value: item.Value})
		}
		return out, true
	case *yaml.MapSlice:
		if current == nil {
			return nil, false
		}
		return entries(*current)
	default:
		return nil, false
	}
}

// normalize rewrites ordered mappings into plain maps and sequences into
// []any so comparators see a single representation. Values that need no
// rewriting are returned unchanged, keeping their identity.
func normalize(v any) any {
	out, _ := rewrite(v)
	return out
}

func rewrite(v any) (any, bool) {
	switch current := v.(type) {
	case nil, string, bool, []byte:
		return v, false
	case yaml.MapSlice, *yaml.MapSlice:
		pairs, ok := entries(current)
		if !ok {
			return v, false
		}
		out := make(map[string]any, len(pairs))
		for _, pair := range pairs {
			out[pair.key], _ = rewrite(pair.value)
		}
		return out, true
	case map[string]any:
		var out map[string]any
		for key, item := range current {
			rewritten, changed := rewrite(item)
			if !changed {
				continue
			}
			if out == nil {
				out = make(map[string]any, len(current))
				for k, original := range current {
					out[k] = original
				}
			}
			out[key] = rewritten
		}
		if out == nil {
			return v, false
		}
		return out, true
	case []any:
		var out []any
		for i, item := range current {
			rewritten, changed := rewrite(item)
			if !changed {
				continue
			}
			if out == nil {
				out = append([]any(nil), current...)
			}
			out[i] = rewritten
		}
		if out == nil {
			return v, false
		}
		return out, true
	}

	if items, ok := value.Sequence(v); ok {
		for i, item := range items {
			items[i], _ = rewrite(item)
		}
		return items, true
	}
	return v, false
}
