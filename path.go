package mfilter

import (
	"github.com/jacoelho/mfilter/internal/path"
	"github.com/jacoelho/mfilter/internal/value"
)

// GetPathValue returns the value at p, such as "hello[1][0]" or "a.b.c".
// ok is false when any step of the path does not exist.
func GetPathValue(p string, root any) (v any, ok bool) {
	v = path.Get(path.Compile(p), root)
	if value.IsMissing(v) {
		return nil, false
	}
	return v, true
}

// GetPathValues returns every value reachable through p, descending into
// sequences along the way. Locations that do not exist are omitted.
func GetPathValues(p string, root any) []any {
	all := path.GetAll(path.Compile(p), root)
	out := make([]any, 0, len(all))
	for _, v := range all {
		if !value.IsMissing(v) {
			out = append(out, v)
		}
	}
	return out
}

// SetPathValue writes v at p, creating intermediate maps and slices as
// needed. map[string]any and *[]any roots are updated in place; the
// returned value is the root, which differs from the argument when a new
// container had to be created.
func SetPathValue(p string, v any, root any) any {
	return path.Set(path.Compile(p), v, root)
}
