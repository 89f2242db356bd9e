// Package value holds the runtime value model shared by the resolver, the
// equality rules and the comparators: the absent marker, sequence and
// object detection, truthiness and length.
package value

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jacoelho/mfilter/internal/number"
)

type absent struct{}

func (absent) String() string { return "<missing>" }

// Missing marks a location that does not exist, as opposed to one holding nil.
var Missing any = absent{}

// IsMissing reports whether v is the absent marker.
func IsMissing(v any) bool {
	_, ok := v.(absent)
	return ok
}

// IsNullish reports whether v is nil or missing.
func IsNullish(v any) bool {
	if v == nil {
		return true
	}
	return IsMissing(v)
}

// Sequence returns v as []any when it is a slice or array.
// Byte slices are treated as scalars.
func Sequence(v any) ([]any, bool) {
	switch current := v.(type) {
	case nil:
		return nil, false
	case []any:
		return current, true
	case []byte:
		return nil, false
	case string:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	default:
		return nil, false
	}
}

// IsSequence reports whether v is a slice or array other than []byte.
func IsSequence(v any) bool {
	_, ok := Sequence(v)
	return ok
}

// IsObject reports whether v is a map or struct.
func IsObject(v any) bool {
	switch v.(type) {
	case nil:
		return false
	case map[string]any:
		return true
	case time.Time, *regexp.Regexp:
		return false
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	return rv.Kind() == reflect.Map || rv.Kind() == reflect.Struct
}

// IsComposite reports whether v is a sequence or an object.
func IsComposite(v any) bool {
	return IsSequence(v) || IsObject(v)
}

// Truthy mirrors the usual dynamic-language truthiness: nil, missing,
// false, zero, NaN and the empty string are false; everything else is true.
func Truthy(v any) bool {
	switch current := v.(type) {
	case nil:
		return false
	case absent:
		return false
	case bool:
		return current
	case string:
		return current != ""
	}

	if f, ok := number.ToFloat64(v); ok {
		return f != 0 && f == f
	}

	return true
}

// Length returns the length of strings (in runes), sequences and maps that
// carry a numeric "length" key.
func Length(v any) (int, bool) {
	switch current := v.(type) {
	case nil, absent:
		return 0, false
	case string:
		return utf8.RuneCountInString(current), true
	case map[string]any:
		raw, ok := current["length"]
		if !ok {
			return 0, false
		}
		n, ok := number.ToFloat64(raw)
		if !ok {
			return 0, false
		}
		return int(n), true
	}

	if seq, ok := Sequence(v); ok {
		return len(seq), true
	}

	return 0, false
}

// SameObject reports whether a and b are the same underlying map or slice.
func SameObject(a, b any) bool {
	ra := reflect.ValueOf(a)
	rb := reflect.ValueOf(b)
	if !ra.IsValid() || !rb.IsValid() {
		return false
	}
	if ra.Kind() != rb.Kind() || ra.Type() != rb.Type() {
		return false
	}

	switch ra.Kind() {
	case reflect.Map, reflect.Pointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	default:
		return false
	}
}

// String renders v the way loose comparisons see it: sequences are joined
// with commas and objects collapse to a fixed placeholder.
func String(v any) string {
	switch current := v.(type) {
	case nil, absent:
		return ""
	case string:
		return current
	case bool:
		return strconv.FormatBool(current)
	case time.Time:
		return current.Format(time.RFC3339Nano)
	case *regexp.Regexp:
		return "/" + current.String() + "/"
	case fmt.Stringer:
		return current.String()
	}

	if f, ok := number.ToFloat64(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	if seq, ok := Sequence(v); ok {
		parts := make([]string, len(seq))
		for i, item := range seq {
			parts[i] = String(item)
		}
		return strings.Join(parts, ",")
	}

	if IsObject(v) {
		return "[object Object]"
	}

	return fmt.Sprintf("%v", v)
}

// Type classifies v into one of the JSON type names.
func Type(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case absent:
		return "missing"
	case string:
		return "string"
	case bool:
		return "boolean"
	case time.Time:
		return "date"
	case *regexp.Regexp:
		return "regex"
	}

	if _, ok := number.ToFloat64(v); ok {
		return "number"
	}

	reflected := reflect.ValueOf(v)
	for reflected.Kind() == reflect.Interface || reflected.Kind() == reflect.Pointer {
		if reflected.IsNil() {
			return "null"
		}
		reflected = reflected.Elem()
	}

	switch reflected.Kind() {
	case reflect.Array, reflect.Slice:
		return "array"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	default:
		return "object"
	}
}

// Keys returns the keys of a string-keyed map in sorted order.
func Keys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
