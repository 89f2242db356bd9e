package path

import (
	"reflect"

	"github.com/jacoelho/mfilter/internal/stack"
	"github.com/jacoelho/mfilter/internal/value"
)

// frame is a pending resolution: the value reached so far and the index of
// the next segment to apply.
type frame struct {
	current any
	depth   int
}

// Get follows the path from root and returns the value at its end, or
// value.Missing when any step does not exist.
func Get(p Path, root any) any {
	current := root
	for _, seg := range p.segments {
		if value.IsNullish(current) {
			return value.Missing
		}
		current = lookup(current, seg)
	}
	return current
}

// GetAll resolves the path and flattens every value reachable through
// sequences. A non-positional segment applied to a sequence fans out over
// its non-null elements; a sequence at the end of the path is spliced into
// the result. Missing or null intermediates contribute nothing, while a
// missing or null leaf is reported as is.
func GetAll(p Path, root any) []any {
	if value.IsNullish(root) {
		return []any{}
	}
	if len(p.segments) == 0 {
		return spread(root)
	}

	last := len(p.segments) - 1
	out := []any{}

	frames := stack.NewWithCapacity[frame](len(p.segments))
	frames.Push(frame{current: root})

	for !frames.IsEmpty() {
		f, _ := frames.Pop()
		seg := p.segments[f.depth]

		if _, positional := seg.Position(); !positional {
			if items, ok := value.Sequence(f.current); ok {
				pending := make([]frame, 0, len(items))
				for _, item := range items {
					if value.IsNullish(item) {
						continue
					}
					pending = append(pending, frame{current: item, depth: f.depth})
				}
				frames.PushReversed(pending...)
				continue
			}
		}

		next := lookup(f.current, seg)
		if f.depth == last {
			out = append(out, spread(next)...)
			continue
		}
		if !value.IsNullish(next) {
			frames.Push(frame{current: next, depth: f.depth + 1})
		}
	}

	return out
}

func spread(v any) []any {
	if items, ok := value.Sequence(v); ok {
		return items
	}
	return []any{v}
}

// lookup applies one segment to a container.
func lookup(container any, seg Segment) any {
	switch current := container.(type) {
	case nil:
		return value.Missing
	case map[string]any:
		if v, ok := current[seg.Name()]; ok {
			return v
		}
		return value.Missing
	case []any:
		return at(current, seg)
	}

	if items, ok := value.Sequence(container); ok {
		return at(items, seg)
	}

	rv := reflect.ValueOf(container)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		v := rv.MapIndex(reflect.ValueOf(seg.Name()).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return value.Missing
		}
		return v.Interface()
	}

	return value.Missing
}

func at(items []any, seg Segment) any {
	pos, ok := seg.Position()
	if !ok || pos < 0 || pos >= len(items) {
		return value.Missing
	}
	return items[pos]
}
