package comparator

import (
	"errors"
	"fmt"
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultPatternCacheSize bounds the number of compiled patterns kept for
// string $regex operands.
const DefaultPatternCacheSize = 256

var ErrInvalidPattern = errors.New("invalid pattern")

// patternCompiler compiles regular expressions.
type patternCompiler interface {
	Compile(pattern string) (*regexp.Regexp, error)
}

// cachedPatternCompiler keeps the most recently used compiled patterns.
type cachedPatternCompiler struct {
	cache *lru.Cache[string, *regexp.Regexp]
}

func newCachedPatternCompiler(size int) *cachedPatternCompiler {
	cache, err := lru.New[string, *regexp.Regexp](size)
	if err != nil {
		// size is a positive constant in every caller.
		panic(err)
	}
	return &cachedPatternCompiler{cache: cache}
}

func (c *cachedPatternCompiler) Compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := c.cache.Get(pattern); ok {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, pattern, err)
	}

	c.cache.Add(pattern, re)
	return re, nil
}

var patterns patternCompiler = newCachedPatternCompiler(DefaultPatternCacheSize)

// Pattern returns operand as a compiled pattern. Strings are compiled
// through the shared cache.
func Pattern(operand any) (*regexp.Regexp, error) {
	switch current := operand.(type) {
	case *regexp.Regexp:
		if current == nil {
			return nil, fmt.Errorf("%w: nil pattern", ErrInvalidPattern)
		}
		return current, nil
	case string:
		return patterns.Compile(current)
	default:
		return nil, fmt.Errorf("%w: expected string or *regexp.Regexp, got %T", ErrInvalidPattern, operand)
	}
}
