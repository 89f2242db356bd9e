// Package equality defines what it means for a candidate value to match an
// operand. It is shared by $eq, $ne, $in, $nin and $all.
package equality

import (
	"regexp"
	"time"

	"github.com/jacoelho/mfilter/internal/number"
	"github.com/jacoelho/mfilter/internal/value"
)

// Equals reports whether candidate a matches operand b.
//
// A nil operand matches missing and null candidates, and sequences holding
// one. A sequence candidate matches a sequence operand position by position,
// and matches any other operand when one of its elements does. A pattern operand matches the
// string form of a non-null candidate. Everything else uses Loose.
func Equals(a, b any) bool {
	if b == nil || value.IsMissing(b) {
		if items, ok := value.Sequence(a); ok {
			for _, item := range items {
				if value.IsNullish(item) {
					return true
				}
			}
			return false
		}
		return value.IsNullish(a)
	}
	if value.IsMissing(a) {
		return false
	}

	if as, ok := value.Sequence(a); ok {
		if bs, ok := value.Sequence(b); ok {
			if len(as) != len(bs) {
				return false
			}
			for i := range as {
				if !Loose(as[i], bs[i]) {
					return false
				}
			}
			return true
		}

		for _, item := range as {
			if Equals(item, b) {
				return true
			}
		}
		return false
	}

	if pattern, ok := b.(*regexp.Regexp); ok {
		if a == nil {
			return false
		}
		return pattern.MatchString(value.String(a))
	}

	return Loose(a, b)
}

// Contains reports whether a equals any element of bag. An empty bag
// contains everything.
func Contains(a any, bag []any) bool {
	if len(bag) == 0 {
		return true
	}
	for _, item := range bag {
		if Equals(a, item) {
			return true
		}
	}
	return false
}

// AllContained reports whether every element of bag equals some element of
// a. An empty bag is always contained.
func AllContained(a any, bag []any) bool {
	if len(bag) == 0 {
		return true
	}

	items, ok := value.Sequence(a)
	if !ok {
		if value.IsMissing(a) {
			return false
		}
		items = []any{a}
	}

	for _, want := range bag {
		found := false
		for _, item := range items {
			if Equals(item, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Loose is coercing equality between two values.
//
// nil and missing equal each other only. Numbers of any width compare
// numerically and coerce against booleans and numeric strings. Composite
// values are equal only when they are the same object; against a primitive
// they compare by their string form.
func Loose(a, b any) bool {
	if value.IsNullish(a) || value.IsNullish(b) {
		return value.IsNullish(a) && value.IsNullish(b)
	}

	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Equal(bt)
		}
	}

	if ap, ok := a.(*regexp.Regexp); ok {
		bp, ok := b.(*regexp.Regexp)
		return ok && ap == bp
	}

	aComposite := value.IsComposite(a)
	bComposite := value.IsComposite(b)
	switch {
	case aComposite && bComposite:
		return value.SameObject(a, b)
	case aComposite:
		a = value.String(a)
	case bComposite:
		b = value.String(b)
	}

	as, aString := a.(string)
	bs, bString := b.(string)
	if aString && bString {
		return as == bs
	}

	af, aNumber := number.Coerce(a)
	bf, bNumber := number.Coerce(b)
	if aNumber && bNumber {
		return af == bf
	}

	return a == b
}
