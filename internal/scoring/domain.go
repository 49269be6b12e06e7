// Package scoring holds the contract checks shared by every clinical score.
//
// Score functions take inputs whose ordinal fields are documented to lie in a
// closed range. A value outside that range is a caller bug, not a clinical
// finding, so it is reported as a *DomainError wrapping ErrOutOfDomain and the
// score is not produced. Nothing is clamped.
package scoring

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfDomain is wrapped by every DomainError.
var ErrOutOfDomain = errors.New("value outside documented domain")

// DomainError names the offending field and the domain it violated.
type DomainError struct {
	Field  string
	Value  any
	Domain string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %v is outside %s", e.Field, e.Value, e.Domain)
}

func (e *DomainError) Unwrap() error { return ErrOutOfDomain }

// ErrInvalid is wrapped by request validation failures that are not range
// checks on a score input: missing fields, bad enums, forbidden transitions.
var ErrInvalid = errors.New("invalid request")

type invalidError struct{ msg string }

func (e *invalidError) Error() string { return e.msg }
func (e *invalidError) Unwrap() error { return ErrInvalid }

// Invalidf formats a validation message that wraps ErrInvalid.
func Invalidf(format string, args ...any) error {
	return &invalidError{msg: fmt.Sprintf(format, args...)}
}

// Ordinal checks lo <= v <= hi.
func Ordinal(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return &DomainError{Field: field, Value: v, Domain: fmt.Sprintf("[%d, %d]", lo, hi)}
	}
	return nil
}

// Binary checks v is 0 or 1.
func Binary(field string, v int) error {
	return Ordinal(field, v, 0, 1)
}

// Range checks lo <= v <= hi for measurements. NaN is always rejected.
func Range(field string, v, lo, hi float64) error {
	if math.IsNaN(v) || v < lo || v > hi {
		return &DomainError{Field: field, Value: v, Domain: fmt.Sprintf("[%g, %g]", lo, hi)}
	}
	return nil
}

// NonNegative checks v >= 0 and is finite.
func NonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return &DomainError{Field: field, Value: v, Domain: "[0, +inf)"}
	}
	return nil
}

// Positive checks v > 0 and is finite.
func Positive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return &DomainError{Field: field, Value: v, Domain: "(0, +inf)"}
	}
	return nil
}

// OneOf checks v is a member of allowed.
func OneOf[T comparable](field string, v T, allowed ...T) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return &DomainError{Field: field, Value: v, Domain: fmt.Sprintf("%v", allowed)}
}

// Check joins the non-nil errors of a batch of field checks.
func Check(errs ...error) error {
	return errors.Join(errs...)
}

// Round1 rounds half away from zero to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Points returns pts when cond holds, otherwise 0.
func Points(cond bool, pts int) int {
	if cond {
		return pts
	}
	return 0
}
