// Package predicate evaluates a single (path, operator, values) filter
// condition against a Record.
package predicate

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/mdrcore/internal/domain"
)

// Operator is a per-field comparison operator.
type Operator string

// Supported operators. Equal is the default when none is given.
const (
	Equal          Operator = "eq"
	NotEqual       Operator = "ne"
	Contains       Operator = "co"
	GreaterThan    Operator = "gt"
	GreaterOrEqual Operator = "ge"
	LessThan       Operator = "lt"
	LessOrEqual    Operator = "le"
	Between        Operator = "bw"
)

var operators = map[Operator]struct{}{
	Equal: {}, NotEqual: {}, Contains: {},
	GreaterThan: {}, GreaterOrEqual: {}, LessThan: {}, LessOrEqual: {},
	Between: {},
}

// ParseOperator parses an operator string. Empty means Equal.
func ParseOperator(s string) (Operator, error) {
	op := Operator(strings.ToLower(strings.TrimSpace(s)))
	if op == "" {
		return Equal, nil
	}
	if _, ok := operators[op]; !ok {
		return "", fmt.Errorf("%w: unknown filter operator %q", domain.ErrInvalidOperator, s)
	}
	return op, nil
}

// String returns the wire form of the operator.
func (o Operator) String() string { return string(o) }
