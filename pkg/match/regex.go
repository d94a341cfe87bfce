// Package match selects object keys by regular expression.
//
// Patterns use Go RE2 syntax and search semantics: a key matches when the
// pattern occurs anywhere in it. Anchor with ^ and $ for whole-key matches.
package match

import (
	"errors"
	"regexp"
)

// ErrInvalidRegex is returned when a pattern cannot be compiled.
var ErrInvalidRegex = errors.New("invalid regular expression")

// PatternError wraps pattern-related errors with context.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return "pattern " + e.Pattern + ": " + e.Err.Error()
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// Pattern is a compiled key pattern. Safe for concurrent use.
type Pattern struct {
	raw string
	re  *regexp.Regexp
}

// Compile parses expr into a Pattern.
//
// A syntax error is reported as *PatternError; errors.Is(err,
// ErrInvalidRegex) holds and the regexp error is in the message.
func Compile(expr string) (*Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &PatternError{Pattern: expr, Err: errors.Join(ErrInvalidRegex, err)}
	}
	return &Pattern{raw: expr, re: re}, nil
}

// MustCompile is like Compile but panics on error. For tests and constants.
func MustCompile(expr string) *Pattern {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source expression.
func (p *Pattern) String() string {
	return p.raw
}

// Match reports whether the pattern occurs anywhere in key.
func (p *Pattern) Match(key string) bool {
	return p.re.MatchString(key)
}

// Filter returns the keys that match, in input order.
// The result is empty, never nil, when nothing matches.
func (p *Pattern) Filter(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if p.Match(k) {
			out = append(out, k)
		}
	}
	return out
}

// Filter compiles expr and applies it to keys.
func Filter(keys []string, expr string) ([]string, error) {
	p, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	return p.Filter(keys), nil
}
