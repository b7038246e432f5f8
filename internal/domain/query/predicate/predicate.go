package predicate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/mdrcore/internal/domain"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/fieldpath"
	"github.com/kailas-cloud/mdrcore/internal/domain/record"
)

// Validate checks an operator/values combination for path without evaluating it.
func Validate(path string, op Operator, values []any) error {
	if _, ok := operators[op]; !ok {
		return fmt.Errorf("%w: unknown filter operator %q", domain.ErrInvalidOperator, op)
	}
	if path == fieldpath.Wildcard && op != Equal && op != Contains {
		return fmt.Errorf(
			"%w: only the default contains operator is supported for wildcard filtering",
			domain.ErrInvalidWildcardUsage,
		)
	}
	if len(values) == 0 && (op != Equal || path == fieldpath.Wildcard) {
		return fmt.Errorf(
			"%w: filtering on a null value can only be used with the equal operator",
			domain.ErrInvalidNullComparison,
		)
	}
	if op == Between && len(values) < 2 {
		return fmt.Errorf("%w: between needs two values", domain.ErrInvalidSpecification)
	}
	return nil
}

// Matches reports whether rec satisfies (path, op, values).
//
// The wildcard path "*" matches when any searchable leaf of rec contains one
// of the values. A path resolving to a sequence matches when any element
// does; with no values it matches only an empty sequence.
func Matches(rec record.Record, path string, op Operator, values []any) (bool, error) {
	if err := Validate(path, op, values); err != nil {
		return false, err
	}
	if path == fieldpath.Wildcard {
		for _, leaf := range fieldpath.Leaves(rec) {
			if matchPath(rec, leaf, Contains, values) {
				return true, nil
			}
		}
		return false, nil
	}
	return matchPath(rec, path, op, values), nil
}

func matchPath(rec record.Record, path string, op Operator, values []any) bool {
	resolved := fieldpath.Resolve(rec, path)
	if seq, ok := fieldpath.Flatten(resolved); ok {
		if len(values) == 0 {
			return len(seq) == 0
		}
		for _, v := range seq {
			if evaluate(v, op, values) {
				return true
			}
		}
		return false
	}
	return evaluate(resolved, op, values)
}

// Evaluate applies op to a single resolved value.
func Evaluate(value any, op Operator, values []any) (bool, error) {
	if err := Validate("", op, values); err != nil {
		return false, err
	}
	return evaluate(value, op, values), nil
}

// evaluate assumes a validated (op, values) pair.
func evaluate(value any, op Operator, values []any) bool {
	value = record.Underlying(value)
	if len(values) == 0 {
		return value == nil
	}
	if value == nil || !isScalar(value) {
		return false
	}

	switch op {
	case Equal:
		return member(value, values)
	case NotEqual:
		return !member(value, values)
	case Contains:
		s := strings.ToLower(record.String(value))
		for _, fv := range values {
			if strings.Contains(s, strings.ToLower(record.String(fv))) {
				return true
			}
		}
		return false
	case GreaterThan:
		return record.String(value) > record.String(values[0])
	case GreaterOrEqual:
		return record.String(value) >= record.String(values[0])
	case LessThan:
		return record.String(value) < record.String(values[0])
	case LessOrEqual:
		return record.String(value) <= record.String(values[0])
	case Between:
		bounds := make([]string, len(values))
		for i, fv := range values {
			bounds[i] = strings.ToLower(record.String(fv))
		}
		sort.Strings(bounds)
		s := strings.ToLower(record.String(value))
		return bounds[0] <= s && s <= bounds[len(bounds)-1]
	default:
		return false
	}
}

func member(value any, values []any) bool {
	for _, fv := range values {
		if record.Equal(value, fv) {
			return true
		}
	}
	return false
}

func isScalar(v any) bool {
	switch v.(type) {
	case record.Record, []any, map[string]any:
		return false
	default:
		return true
	}
}
