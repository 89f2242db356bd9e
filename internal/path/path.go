// Package path compiles dotted/bracketed property paths such as
// "a.b[2].c" and resolves them against decoded documents.
//
// Paths are compiled once and are immutable. Reads never mutate their
// input; Set is the only writer and creates intermediate containers on
// demand.
package path

import (
	"strconv"
	"strings"
)

// Segment is a single step of a Path: a named field or an array index.
type Segment struct {
	name    string
	index   int
	isIndex bool
}

// Field returns a field segment.
func Field(name string) Segment {
	return Segment{name: name}
}

// Index returns an index segment.
func Index(i int) Segment {
	return Segment{index: i, isIndex: true}
}

// IsIndex reports whether the segment was written as "[n]".
func (s Segment) IsIndex() bool {
	return s.isIndex
}

// Name returns the field name, or the decimal index for index segments.
func (s Segment) Name() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.name
}

// Position returns the array position addressed by the segment. Field
// segments whose name parses as an integer address positions too.
func (s Segment) Position() (int, bool) {
	if s.isIndex {
		return s.index, true
	}
	n, err := strconv.Atoi(s.name)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (s Segment) String() string {
	if s.isIndex {
		return "[" + strconv.Itoa(s.index) + "]"
	}
	return s.name
}

// Path is an ordered list of segments.
type Path struct {
	segments []Segment
}

// New builds a path from segments.
func New(segments ...Segment) Path {
	return Path{segments: append([]Segment(nil), segments...)}
}

// Compile parses a path expression. Bracketed non-negative integers are
// index segments, every other dot-separated part is a field segment.
// Field names containing '.' or '[' cannot be expressed.
func Compile(expr string) Path {
	parts := strings.Split(strings.ReplaceAll(expr, "[", ".["), ".")

	segments := make([]Segment, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		if idx, ok := parseIndex(part); ok {
			segments = append(segments, Index(idx))
			continue
		}
		segments = append(segments, Field(part))
	}

	return Path{segments: segments}
}

func parseIndex(part string) (int, bool) {
	if len(part) < 3 || part[0] != '[' || part[len(part)-1] != ']' {
		return 0, false
	}

	digits := part[1 : len(part)-1]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Segments returns a copy of the path segments.
func (p Path) Segments() []Segment {
	return append([]Segment(nil), p.segments...)
}

// Len returns the number of segments.
func (p Path) Len() int {
	return len(p.segments)
}

func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p.segments {
		if i > 0 && !seg.isIndex {
			b.WriteByte('.')
		}
		b.WriteString(seg.String())
	}
	return b.String()
}
