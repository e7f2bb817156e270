package domain

import "strings"

// Logic combines the criteria of a Filter.
type Logic string

// Supported logic operators
const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Operator is the comparison applied by a single Criterion.
type Operator string

// Built-in comparison operators
const (
	OperatorContains    Operator = "CONTAINS"
	OperatorEquals      Operator = "EQUALS"
	OperatorNotEquals   Operator = "NOT_EQUALS"
	OperatorStartsWith  Operator = "STARTS_WITH"
	OperatorGreaterThan Operator = "GREATER_THAN"
	OperatorLessThan    Operator = "LESS_THAN"
)

// Defaults applied when a search request leaves them out.
const (
	DefaultLogic    = LogicAnd
	DefaultOperator = OperatorContains
)

// Keys of a raw search request that carry metadata rather than field
// filters. A field literally named "logic" or "operator" therefore cannot
// be filtered on.
const (
	FilterKeyLogic    = "logic"
	FilterKeyOperator = "operator"
)

// Criterion is one field comparison: record[Key] <Operator> Value.
type Criterion struct {
	Key      string   `json:"key"`
	Value    string   `json:"value"`
	Operator Operator `json:"operator"`
}

// Filter is a search query: a logic operator over an ordered list of
// criteria.
type Filter struct {
	Logic    Logic       `json:"logic"`
	Criteria []Criterion `json:"criteria"`
}

// Normalize returns the logic in canonical upper case, defaulting to AND.
func (l Logic) Normalize() Logic {
	if l == "" {
		return DefaultLogic
	}
	return Logic(strings.ToUpper(string(l)))
}

// Normalize returns the operator in canonical upper case, defaulting to
// CONTAINS.
func (o Operator) Normalize() Operator {
	if o == "" {
		return DefaultOperator
	}
	return Operator(strings.ToUpper(string(o)))
}
