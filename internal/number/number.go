package number

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ToFloat64 converts supported numeric values to float64.
func ToFloat64(value any) (float64, bool) {
	switch current := value.(type) {
	case int:
		return float64(current), true
	case int8:
		return float64(current), true
	case int16:
		return float64(current), true
	case int32:
		return float64(current), true
	case int64:
		return float64(current), true
	case uint:
		return float64(current), true
	case uint8:
		return float64(current), true
	case uint16:
		return float64(current), true
	case uint32:
		return float64(current), true
	case uint64:
		return float64(current), true
	case float32:
		return float64(current), true
	case float64:
		return current, true
	case json.Number:
		parsed, err := current.Float64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// ToStrictInt converts integer-typed values into int.
func ToStrictInt(value any) (int, error) {
	switch current := value.(type) {
	case int:
		return current, nil
	case int8:
		return int(current), nil
	case int16:
		return int(current), nil
	case int32:
		return int(current), nil
	case int64:
		return int(current), nil
	case uint:
		return int(current), nil
	case uint8:
		return int(current), nil
	case uint16:
		return int(current), nil
	case uint32:
		return int(current), nil
	case uint64:
		return int(current), nil
	case float64:
		if current == math.Trunc(current) {
			return int(current), nil
		}
		return 0, fmt.Errorf("value %v is not an integer", current)
	case json.Number:
		parsed, err := current.Int64()
		if err != nil {
			return 0, fmt.Errorf("value %q is not an integer: %w", current, err)
		}
		return int(parsed), nil
	default:
		return 0, fmt.Errorf("value %T is not an integer", value)
	}
}

// Coerce converts numbers, booleans and numeric strings to float64.
// The empty string coerces to zero.
func Coerce(value any) (float64, bool) {
	switch current := value.(type) {
	case bool:
		if current {
			return 1, true
		}
		return 0, true
	case string:
		trimmed := strings.TrimSpace(current)
		if trimmed == "" {
			return 0, true
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return ToFloat64(value)
	}
}

// Compare orders a and b. Numbers compare numerically, strings
// lexicographically and times chronologically. ok is false when the pair
// has no natural order.
func Compare(a, b any) (result int, ok bool) {
	if at, isTime := a.(time.Time); isTime {
		bt, isTime := b.(time.Time)
		if !isTime {
			return 0, false
		}
		return at.Compare(bt), true
	}

	if as, isString := a.(string); isString {
		bs, isString := b.(string)
		if !isString {
			return 0, false
		}
		return strings.Compare(as, bs), true
	}

	af, aNumber := ToFloat64(a)
	bf, bNumber := ToFloat64(b)
	if !aNumber || !bNumber || math.IsNaN(af) || math.IsNaN(bf) {
		return 0, false
	}

	switch {
	case af < bf:
		return -1, true
	case af > bf:
		return 1, true
	default:
		return 0, true
	}
}
