package path

import (
	"github.com/jacoelho/mfilter/internal/value"
)

// Set writes v at the path inside root and returns the root.
//
// Missing or falsy intermediates are replaced by a new map when the next
// segment is a field and by a new slice when it is an index. Truthy
// intermediates are never replaced; if one is not a writable container the
// write is dropped. The final segment is assigned unconditionally.
//
// map[string]any and *[]any roots are updated in place. A nil root yields a
// freshly created container; a []any root may be reallocated when it grows,
// so callers holding slices must use the returned value.
func Set(p Path, v any, root any) any {
	if len(p.segments) == 0 {
		return root
	}

	switch current := root.(type) {
	case *[]any:
		if current == nil {
			return root
		}
		if updated, ok := assign(*current, p.segments, v).([]any); ok {
			*current = updated
		}
		return root
	case nil:
		return assign(container(p.segments[0]), p.segments, v)
	}

	if value.IsMissing(root) {
		return assign(container(p.segments[0]), p.segments, v)
	}

	return assign(root, p.segments, v)
}

func assign(target any, segments []Segment, v any) any {
	seg := segments[0]
	if len(segments) == 1 {
		return put(target, seg, v)
	}

	child := lookup(target, seg)
	switch {
	case !value.Truthy(child):
		child = container(segments[1])
	case !writable(child):
		return target
	}

	return put(target, seg, assign(child, segments[1:], v))
}

func container(next Segment) any {
	if next.IsIndex() {
		return []any{}
	}
	return map[string]any{}
}

func writable(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}

func put(target any, seg Segment, v any) any {
	switch current := target.(type) {
	case map[string]any:
		current[seg.Name()] = v
		return current
	case []any:
		pos, ok := seg.Position()
		if !ok || pos < 0 {
			return current
		}
		for len(current) <= pos {
			current = append(current, nil)
		}
		current[pos] = v
		return current
	default:
		return target
	}
}
