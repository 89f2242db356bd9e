package loader

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
)

const (
	// TagRegex marks a scalar as a regular expression.
	TagRegex = "!regex"
	// TagDate marks a scalar as an RFC 3339 timestamp.
	TagDate = "!date"
)

var (
	ErrDecode      = errors.New("decode error")
	ErrUnsupported = errors.New("unsupported YAML construct")
)

// decoder turns YAML (and therefore JSON) documents into plain Go values.
type decoder struct {
	// ordered keeps mappings as yaml.MapSlice instead of map[string]any.
	ordered bool
}

// decode parses every document in src.
func (d decoder) decode(src []byte) ([]any, error) {
	file, err := parser.ParseBytes(src, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	docs := make([]any, 0, len(file.Docs))
	for i, doc := range file.Docs {
		if doc == nil || doc.Body == nil {
			continue
		}
		if _, ok := doc.Body.(*ast.CommentGroupNode); ok {
			continue
		}
		v, err := d.value(doc.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: document %d: %v", ErrDecode, i, err)
		}
		docs = append(docs, v)
	}
	return docs, nil
}

// value extracts the Go value of node.
// Integers become int64 unless they overflow it; floats are float64.
func (d decoder) value(node ast.Node) (any, error) {
	switch n := node.(type) {
	case *ast.NullNode:
		return nil, nil
	case *ast.BoolNode:
		return n.Value, nil
	case *ast.StringNode:
		return n.Value, nil
	case *ast.LiteralNode:
		if n.Value == nil {
			return "", nil
		}
		return n.Value.Value, nil
	case *ast.IntegerNode:
		switch v := n.Value.(type) {
		case int64:
			return v, nil
		case uint64:
			if v <= math.MaxInt64 {
				return int64(v), nil
			}
			return v, nil
		default:
			return nil, fmt.Errorf("unexpected integer node value type: %T", n.Value)
		}
	case *ast.FloatNode:
		return n.Value, nil
	case *ast.InfinityNode:
		return n.Value, nil
	case *ast.NanNode:
		return math.NaN(), nil
	case *ast.TagNode:
		return d.tagged(n)
	case *ast.AnchorNode:
		return d.value(n.Value)
	case *ast.SequenceNode:
		out := make([]any, 0, len(n.Values))
		for i, item := range n.Values {
			v, err := d.value(item)
			if err != nil {
				return nil, fmt.Errorf("invalid value at index %d: %w", i, err)
			}
			out = append(out, v)
		}
		return out, nil
	case *ast.MappingNode:
		return d.mapping(n.Values)
	case *ast.MappingValueNode:
		return d.mapping([]*ast.MappingValueNode{n})
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, node)
	}
}

func (d decoder) mapping(pairs []*ast.MappingValueNode) (any, error) {
	ordered := make(yaml.MapSlice, 0, len(pairs))
	for _, pair := range pairs {
		key, err := keyOf(pair.Key)
		if err != nil {
			return nil, err
		}
		v, err := d.value(pair.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for key %q: %w", key, err)
		}
		ordered = append(ordered, yaml.MapItem{Key: key, Value: v})
	}

	if d.ordered {
		return ordered, nil
	}

	out := make(map[string]any, len(ordered))
	for _, item := range ordered {
		out[item.Key.(string)] = item.Value
	}
	return out, nil
}

func keyOf(node ast.MapKeyNode) (string, error) {
	switch k := node.(type) {
	case *ast.StringNode:
		return k.Value, nil
	case *ast.MergeKeyNode:
		return "", fmt.Errorf("%w: merge keys", ErrUnsupported)
	case nil:
		return "", fmt.Errorf("%w: empty key", ErrUnsupported)
	}

	tok := node.GetToken()
	if tok == nil {
		return "", fmt.Errorf("%w: key %T", ErrUnsupported, node)
	}
	return tok.Value, nil
}

func (d decoder) tagged(n *ast.TagNode) (any, error) {
	tag := ""
	if n.Start != nil {
		tag = n.Start.Value
	}

	switch tag {
	case TagRegex:
		source, err := d.scalar(n.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", TagRegex, err)
		}
		re, err := regexp.Compile(source)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid pattern %q: %w", TagRegex, source, err)
		}
		return re, nil
	case TagDate:
		source, err := d.scalar(n.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", TagDate, err)
		}
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(source))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", TagDate, err)
		}
		return ts, nil
	default:
		// Standard and unknown tags do not change the value.
		return d.value(n.Value)
	}
}

func (d decoder) scalar(node ast.Node) (string, error) {
	v, err := d.value(node)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected a string, got %T", v)
	}
	return s, nil
}
