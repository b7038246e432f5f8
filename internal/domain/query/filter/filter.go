// Package filter narrows a collection of records by an ordered set of
// per-field conditions combined with AND or OR.
package filter

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/mdrcore/internal/domain"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/ordered"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/predicate"
)

// Condition is one (path, operator, values) entry of a filter specification.
type Condition struct {
	path   string
	op     predicate.Operator
	values []any
}

// NewCondition validates and creates a Condition.
func NewCondition(path string, op predicate.Operator, values []any) (Condition, error) {
	if strings.TrimSpace(path) == "" {
		return Condition{}, fmt.Errorf("%w: filter path is required", domain.ErrInvalidSpecification)
	}
	if op == "" {
		op = predicate.Equal
	}
	if err := predicate.Validate(path, op, values); err != nil {
		return Condition{}, fmt.Errorf("filter %q: %w", path, err)
	}
	return Condition{path: path, op: op, values: slices.Clone(values)}, nil
}

// Path returns the dotted field path or the wildcard.
func (c Condition) Path() string { return c.path }

// Op returns the comparison operator.
func (c Condition) Op() predicate.Operator { return c.op }

// Values returns a copy of the filter values.
func (c Condition) Values() []any { return slices.Clone(c.values) }

// Spec is an ordered list of conditions, one per path.
type Spec struct {
	conds []Condition
}

// NewSpec creates a Spec. A later condition on an existing path replaces it in place.
func NewSpec(conds ...Condition) Spec {
	var s Spec
	for _, c := range conds {
		s = s.With(c)
	}
	return s
}

// Conditions returns the conditions in application order.
func (s Spec) Conditions() []Condition { return slices.Clone(s.conds) }

// Len returns the number of conditions.
func (s Spec) Len() int { return len(s.conds) }

// IsEmpty reports whether the spec has no conditions.
func (s Spec) IsEmpty() bool { return len(s.conds) == 0 }

// Get returns the condition on path.
func (s Spec) Get(path string) (Condition, bool) {
	for _, c := range s.conds {
		if c.path == path {
			return c, true
		}
	}
	return Condition{}, false
}

// With returns a copy of s with c added or replacing the condition on c.Path().
func (s Spec) With(c Condition) Spec {
	out := slices.Clone(s.conds)
	for i := range out {
		if out[i].path == c.path {
			out[i] = c
			return Spec{conds: out}
		}
	}
	return Spec{conds: append(out, c)}
}

// Without returns a copy of s with the condition on path removed.
func (s Spec) Without(path string) Spec {
	out := make([]Condition, 0, len(s.conds))
	for _, c := range s.conds {
		if c.path != path {
			out = append(out, c)
		}
	}
	return Spec{conds: out}
}

// MarshalJSON renders the spec in its wire form, preserving order.
func (s Spec) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, c := range s.conds {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(c.path)
		if err != nil {
			return nil, err
		}
		values := c.values
		if values == nil {
			values = []any{}
		}
		body, err := json.Marshal(wireCondition{Values: values, Op: c.op.String()})
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(body)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

type wireCondition struct {
	Values []any  `json:"v"`
	Op     string `json:"op,omitempty"`
}

// ParseSpec parses the JSON form {"path": {"v": [...], "op": "eq"}, ...}.
// Empty input and null produce an empty spec.
func ParseSpec(raw []byte) (Spec, error) {
	if ordered.IsNull(raw) {
		return Spec{}, nil
	}
	members, err := ordered.Object(raw)
	if err != nil {
		return Spec{}, fmt.Errorf("%w: `filters: %s` is not a valid dictionary",
			domain.ErrInvalidSpecification, strings.TrimSpace(string(raw)))
	}

	var s Spec
	for _, m := range members {
		var body struct {
			Values json.RawMessage `json:"v"`
			Op     string          `json:"op"`
		}
		if err := json.Unmarshal(m.Value, &body); err != nil {
			return Spec{}, fmt.Errorf("%w: filter %q must be an object with \"v\" and \"op\"",
				domain.ErrInvalidSpecification, m.Key)
		}
		values, err := parseValues(body.Values)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: filter %q: %w", domain.ErrInvalidSpecification, m.Key, err)
		}
		op, err := predicate.ParseOperator(body.Op)
		if err != nil {
			return Spec{}, fmt.Errorf("filter %q: %w", m.Key, err)
		}
		c, err := NewCondition(m.Key, op, values)
		if err != nil {
			return Spec{}, err
		}
		s = s.With(c)
	}
	return s, nil
}

// parseValues accepts a JSON array or a single scalar.
func parseValues(raw json.RawMessage) ([]any, error) {
	if ordered.IsNull(raw) {
		return nil, nil
	}
	var values []any
	if err := json.Unmarshal(raw, &values); err == nil {
		return values, nil
	}
	var single any
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("decode values: %w", err)
	}
	return []any{single}, nil
}
