package domain

import (
	"cmp"
	"strings"
)

// Operator is the comparison a threshold applies to a value.
type Operator uint8

const (
	GreaterThan Operator = iota + 1
	LessThan
	GreaterEqual
	LessEqual
	EqualTo
)

var operatorSymbols = map[Operator]string{
	GreaterThan:  ">",
	LessThan:     "<",
	GreaterEqual: ">=",
	LessEqual:    "<=",
	EqualTo:      "==",
}

var operatorNames = map[string]Operator{
	">": GreaterThan, "gt": GreaterThan, "greater": GreaterThan,
	"<": LessThan, "lt": LessThan, "less": LessThan,
	">=": GreaterEqual, "ge": GreaterEqual, "greater_equal": GreaterEqual,
	"<=": LessEqual, "le": LessEqual, "less_equal": LessEqual,
	"==": EqualTo, "=": EqualTo, "eq": EqualTo, "equal": EqualTo,
}

// ParseOperator accepts a symbol (">", ">=", ...) or a name ("gt",
// "greater_equal", ...), case-insensitively.
func ParseOperator(s string) (Operator, error) {
	op, ok := operatorNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, Invalidf("unknown threshold operator %q", s)
	}
	return op, nil
}

// Valid reports whether o is one of the declared operators.
func (o Operator) Valid() bool {
	_, ok := operatorSymbols[o]
	return ok
}

// Apply reports whether x satisfies the operator against bound.
func (o Operator) Apply(x, bound float64) bool {
	switch o {
	case GreaterThan:
		return x > bound
	case LessThan:
		return x < bound
	case GreaterEqual:
		return x >= bound
	case LessEqual:
		return x <= bound
	case EqualTo:
		return x == bound
	default:
		return false
	}
}

func (o Operator) compare(p Operator) int {
	return cmp.Compare(o, p)
}

func (o Operator) String() string {
	if s, ok := operatorSymbols[o]; ok {
		return s
	}
	return "?"
}
