package comparator

import (
	"errors"
	"fmt"
	"math"

	"github.com/jacoelho/mfilter/internal/number"
	"github.com/jacoelho/mfilter/internal/value"
)

// earthRadius is the mean Earth radius in meters.
const earthRadius = 6371008.8

var ErrInvalidShape = errors.New("invalid $geoWithin shape")

// sphere is a $centerSphere shape: a center point and a radius in meters.
type sphere struct {
	lat, lng float64
	radius   float64
}

func prepareSphere(operand any) (any, error) {
	shape, ok := operand.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected object, got %T", ErrInvalidShape, operand)
	}

	raw, ok := shape["$centerSphere"]
	if !ok {
		return nil, fmt.Errorf("%w: only $centerSphere is supported", ErrInvalidShape)
	}

	args, ok := value.Sequence(raw)
	if !ok || len(args) != 2 {
		return nil, fmt.Errorf("%w: $centerSphere expects [[lat, lng], radius]", ErrInvalidShape)
	}

	lat, lng, ok := coordinates(args[0])
	if !ok {
		return nil, fmt.Errorf("%w: center must be [lat, lng]", ErrInvalidShape)
	}

	radius, ok := number.ToFloat64(args[1])
	if !ok || radius < 0 {
		return nil, fmt.Errorf("%w: radius must be a non-negative number", ErrInvalidShape)
	}

	return sphere{lat: lat, lng: lng, radius: radius}, nil
}

func coordinates(v any) (lat, lng float64, ok bool) {
	point, isSeq := value.Sequence(v)
	if !isSeq || len(point) != 2 {
		return 0, 0, false
	}
	if lat, ok = number.ToFloat64(point[0]); !ok {
		return 0, 0, false
	}
	if lng, ok = number.ToFloat64(point[1]); !ok {
		return 0, 0, false
	}
	return lat, lng, true
}

// geoWithin reports whether the candidate [lat, lng] point lies inside the
// shape. A candidate set holding a single point is unwrapped.
func geoWithin(actual, operand any) bool {
	shape, ok := operand.(sphere)
	if !ok {
		prepared, err := prepareSphere(operand)
		if err != nil {
			return false
		}
		shape = prepared.(sphere)
	}

	if items, isSeq := value.Sequence(actual); isSeq && len(items) == 1 {
		actual = items[0]
	}

	lat, lng, ok := coordinates(actual)
	if !ok {
		return false
	}
	return haversine(shape.lat, shape.lng, lat, lng) <= shape.radius
}

// haversine returns the great-circle distance in meters between two points
// given in degrees.
func haversine(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadius * math.Asin(math.Sqrt(a))
}
