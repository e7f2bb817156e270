// Package criteria evaluates search filters against single records.
//
// Evaluation is pure: it reads the record and the criterion and returns a
// verdict. A criterion naming a field the record does not have is a
// non-match, never an error. An operator the evaluator does not know is
// always an error, so a typo in a query cannot silently turn into "nothing
// matched".
package criteria

import (
	"fmt"
	"strings"

	"github.com/petcare/catalog-api/internal/domain"
)

// MatchFunc compares a record value against the criterion's comparison value.
type MatchFunc func(field domain.Value, want string) bool

// Evaluator holds the operator table used to evaluate criteria.
type Evaluator struct {
	operators map[domain.Operator]MatchFunc
}

// NewEvaluator returns an Evaluator with the built-in operators.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		operators: map[domain.Operator]MatchFunc{
			domain.OperatorContains:    contains,
			domain.OperatorEquals:      equals,
			domain.OperatorNotEquals:   notEquals,
			domain.OperatorStartsWith:  startsWith,
			domain.OperatorGreaterThan: greaterThan,
			domain.OperatorLessThan:    lessThan,
		},
	}
}

// Register adds or replaces an operator. Operator names are matched
// case-insensitively.
func (e *Evaluator) Register(op domain.Operator, fn MatchFunc) {
	e.operators[domain.Operator(strings.ToUpper(string(op)))] = fn
}

// Supports reports whether op is a known operator.
func (e *Evaluator) Supports(op domain.Operator) bool {
	_, ok := e.operators[op.Normalize()]
	return ok
}

// Validate checks the logic and every operator of f without touching any
// record.
func (e *Evaluator) Validate(f domain.Filter) error {
	switch f.Logic.Normalize() {
	case domain.LogicAnd, domain.LogicOr:
	default:
		return fmt.Errorf("%w %q", domain.ErrUnsupportedLogic, string(f.Logic))
	}
	for _, c := range f.Criteria {
		if !e.Supports(c.Operator) {
			return &domain.UnsupportedOperatorError{Operator: c.Operator, Key: c.Key}
		}
	}
	return nil
}

// Matches reports whether record satisfies c.
func (e *Evaluator) Matches(record domain.Record, c domain.Criterion) (bool, error) {
	fn, ok := e.operators[c.Operator.Normalize()]
	if !ok {
		return false, &domain.UnsupportedOperatorError{Operator: c.Operator, Key: c.Key}
	}
	field, ok := record.Get(c.Key)
	if !ok {
		return false, nil
	}
	return fn(field, c.Value), nil
}

// Evaluate combines the criteria of f over record. With AND every criterion
// must match and an empty list matches; with OR any criterion may match and
// an empty list matches nothing.
func (e *Evaluator) Evaluate(record domain.Record, f domain.Filter) (bool, error) {
	switch f.Logic.Normalize() {
	case domain.LogicAnd:
		for _, c := range f.Criteria {
			ok, err := e.Matches(record, c)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case domain.LogicOr:
		for _, c := range f.Criteria {
			ok, err := e.Matches(record, c)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("%w %q", domain.ErrUnsupportedLogic, string(f.Logic))
	}
}

var defaultEvaluator = NewEvaluator()

// Matches evaluates c against record with the built-in operators.
func Matches(record domain.Record, c domain.Criterion) (bool, error) {
	return defaultEvaluator.Matches(record, c)
}

// Evaluate evaluates f against record with the built-in operators.
func Evaluate(record domain.Record, f domain.Filter) (bool, error) {
	return defaultEvaluator.Evaluate(record, f)
}
