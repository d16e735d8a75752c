package query

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Composition decides how the conditions of a FilterSpec combine.
type Composition int

const (
	// AnyCondition accepts a record as soon as one condition holds, walking
	// fields and their operators in client order. This is what content
	// clients of this store have always relied on.
	AnyCondition Composition = iota
	// AllConditions requires every condition to hold.
	AllConditions
)

// MismatchPolicy decides what $containsi does with a non-text operand.
type MismatchPolicy int

const (
	// MismatchNoMatch treats the condition as false.
	MismatchNoMatch MismatchPolicy = iota
	// MismatchFail aborts the whole request with an *OperandError.
	MismatchFail
)

// Predicate decides whether a record is selected.
type Predicate interface {
	Match(r Record) (bool, error)
}

// Always selects every record.
type Always struct{}

func (Always) Match(Record) (bool, error) { return true, nil }

// AnyOf is a short-circuiting OR: evaluation stops at the first true child.
type AnyOf []Predicate

func (p AnyOf) Match(r Record) (bool, error) {
	for _, child := range p {
		ok, err := child.Match(r)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// AllOf is a short-circuiting AND: evaluation stops at the first false child.
type AllOf []Predicate

func (p AllOf) Match(r Record) (bool, error) {
	for _, child := range p {
		ok, err := child.Match(r)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// condition applies one operator to one field.
type condition struct {
	field    string
	op       string
	value    any
	mismatch MismatchPolicy
	lower    cases.Caser
}

func (c *condition) Match(r Record) (bool, error) {
	got, _ := r.Field(c.field)
	switch c.op {
	case OpEq:
		return equalValues(got, c.value), nil
	case OpContainsI:
		text, ok := got.(string)
		needle, ok2 := c.value.(string)
		if !ok || !ok2 {
			if c.mismatch == MismatchFail {
				return false, &OperandError{Field: c.field, Op: c.op, Value: got}
			}
			return false, nil
		}
		return strings.Contains(c.lower.String(text), c.lower.String(needle)), nil
	}
	return false, nil
}

// Compile turns a FilterSpec into a predicate. An empty spec selects
// everything; otherwise every (field, operator) pair becomes one child of the
// combinator chosen by comp, in spec order.
//
// The returned predicate holds a case mapper and must not be shared between
// goroutines.
func Compile(spec FilterSpec, comp Composition, mismatch MismatchPolicy) Predicate {
	if len(spec) == 0 {
		return Always{}
	}
	lower := cases.Lower(language.Und)
	var children []Predicate
	for _, ff := range spec {
		for _, cond := range ff.Conditions {
			children = append(children, &condition{
				field:    ff.Field,
				op:       cond.Op,
				value:    cond.Value,
				mismatch: mismatch,
				lower:    lower,
			})
		}
	}
	if comp == AllConditions {
		return AllOf(children)
	}
	return AnyOf(children)
}

// Matches reports whether r satisfies spec under the default policies.
func Matches(r Record, spec FilterSpec) bool {
	ok, _ := Compile(spec, AnyCondition, MismatchNoMatch).Match(r)
	return ok
}

// equalValues is strict equality: a string never equals a number. All Go
// numeric kinds count as the same number type.
func equalValues(a, b any) bool {
	if x, ok := toNumber(a); ok {
		y, ok := toNumber(b)
		return ok && x == y
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	return false
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
