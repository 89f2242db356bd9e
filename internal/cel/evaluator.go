// Package cel compiles and runs CEL (Common Expression Language) programs
// against a single candidate value bound to the variable "this".
//
// Example:
//
//	evaluator, err := cel.NewEvaluator()
//	program, err := evaluator.Compile(`this.age > 30 && this.name.startsWith("A")`)
//	matched, err := evaluator.Match(program, map[string]any{"age": 42, "name": "Ada"})
package cel

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// Variable is the name candidates are bound to inside expressions.
const Variable = "this"

var (
	ErrCompile    = errors.New("cel: compile error")
	ErrEvaluation = errors.New("cel: evaluation error")
	ErrNotBoolean = errors.New("cel: expression did not produce a boolean")
)

// Evaluator compiles expressions once and caches the resulting programs.
// It is safe for concurrent use.
type Evaluator struct {
	env   *cel.Env
	cache map[string]cel.Program
	mu    sync.RWMutex
}

// NewEvaluator creates an evaluator whose environment declares "this" as a
// dynamically typed variable.
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable(Variable, cel.DynType),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	return &Evaluator{
		env:   env,
		cache: make(map[string]cel.Program),
	}, nil
}

// Compile returns the program for expression, compiling it on first use.
func (e *Evaluator) Compile(expression string) (cel.Program, error) {
	e.mu.RLock()
	if program, ok := e.cache[expression]; ok {
		e.mu.RUnlock()
		return program, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if program, ok := e.cache[expression]; ok {
		return program, nil
	}

	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrCompile, expression, issues.Err())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrCompile, expression, err)
	}

	e.cache[expression] = program
	return program, nil
}

// Match runs program with "this" bound to candidate.
func (e *Evaluator) Match(program cel.Program, candidate any) (bool, error) {
	out, _, err := program.Eval(map[string]any{Variable: candidate})
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrEvaluation, err)
	}

	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: got %T", ErrNotBoolean, out.Value())
	}
	return matched, nil
}

// Len reports how many programs are cached.
func (e *Evaluator) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}
