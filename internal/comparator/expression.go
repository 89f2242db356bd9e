package comparator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jacoelho/mfilter/internal/cel"
	"github.com/jacoelho/mfilter/internal/value"
)

var (
	ErrInvalidExpression = errors.New("invalid $where expression")
	ErrInvalidSchema     = errors.New("invalid $jsonSchema document")
)

// predicate is an operand prepared into a ready-to-run test.
type predicate func(candidate any) bool

var expressions = sync.OnceValues(cel.NewEvaluator)

func prepareWhere(operand any) (any, error) {
	source, ok := operand.(string)
	if !ok {
		return nil, fmt.Errorf("%w: expected string, got %T", ErrInvalidExpression, operand)
	}

	evaluator, err := expressions()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}

	program, err := evaluator.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}

	return predicate(func(candidate any) bool {
		matched, err := evaluator.Match(program, candidate)
		return err == nil && matched
	}), nil
}

// where evaluates a CEL expression with the candidate bound to "this".
func where(actual, operand any) bool {
	if value.IsMissing(actual) {
		return false
	}

	test, ok := operand.(predicate)
	if !ok {
		prepared, err := prepareWhere(operand)
		if err != nil {
			return false
		}
		test = prepared.(predicate)
	}
	return test(actual)
}

func prepareSchema(operand any) (any, error) {
	if !value.IsObject(operand) {
		return nil, fmt.Errorf("%w: expected object, got %T", ErrInvalidSchema, operand)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(operand))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}

	return predicate(func(candidate any) bool {
		result, err := schema.Validate(gojsonschema.NewGoLoader(candidate))
		return err == nil && result.Valid()
	}), nil
}

// conformsTo validates the candidate against a JSON Schema document.
func conformsTo(actual, operand any) bool {
	if value.IsMissing(actual) {
		return false
	}

	test, ok := operand.(predicate)
	if !ok {
		prepared, err := prepareSchema(operand)
		if err != nil {
			return false
		}
		test = prepared.(predicate)
	}
	return test(actual)
}
