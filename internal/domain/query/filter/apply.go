package filter

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/mdrcore/internal/domain"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/predicate"
	"github.com/kailas-cloud/mdrcore/internal/domain/record"
)

// Combinator joins the conditions of a Spec.
type Combinator string

// Supported combinators. And is the default.
const (
	And Combinator = "and"
	Or  Combinator = "or"
)

// ParseCombinator parses "and" or "or", case-insensitively. Empty means And.
func ParseCombinator(s string) (Combinator, error) {
	switch c := Combinator(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return And, nil
	case And, Or:
		return c, nil
	default:
		return "", fmt.Errorf("%w: invalid filter operator %q, use 'and' or 'or'", domain.ErrInvalidOperator, s)
	}
}

// String returns the wire form of the combinator.
func (c Combinator) String() string { return string(c) }

// IdentityFunc returns the dedup key of an item for OR unions.
// An empty key falls back to the item position.
type IdentityFunc func(rec record.Record) string

// Option configures Apply.
type Option func(*options)

type options struct {
	identity IdentityFunc
}

// WithIdentity overrides how OR results are deduplicated.
func WithIdentity(fn IdentityFunc) Option {
	return func(o *options) { o.identity = fn }
}

// UIDIdentity keys items by their UID when they have one.
func UIDIdentity(rec record.Record) string {
	if id, ok := rec.(record.Identifiable); ok {
		return id.UID()
	}
	return ""
}

// Apply returns the items of the input matching spec under comb.
//
// And narrows the collection condition by condition. Or unions the matches
// of each condition in spec order, keeping the first occurrence of every
// item. An empty spec returns a copy of items under either combinator.
func Apply[T record.Record](items []T, spec Spec, comb Combinator, opts ...Option) ([]T, error) {
	o := options{identity: UIDIdentity}
	for _, opt := range opts {
		opt(&o)
	}
	switch comb {
	case And, "", Or:
	default:
		return nil, fmt.Errorf("%w: invalid filter operator %q, use 'and' or 'or'", domain.ErrInvalidOperator, comb)
	}
	if spec.IsEmpty() {
		return slices.Clone(items), nil
	}

	if comb == Or {
		return applyOr(items, spec, o.identity)
	}
	return applyAnd(items, spec)
}

func applyAnd[T record.Record](items []T, spec Spec) ([]T, error) {
	out := slices.Clone(items)
	for _, c := range spec.conds {
		if err := predicate.Validate(c.path, c.op, c.values); err != nil {
			return nil, err
		}
		next := make([]T, 0, len(out))
		for _, it := range out {
			ok, err := predicate.Matches(it, c.path, c.op, c.values)
			if err != nil {
				return nil, err
			}
			if ok {
				next = append(next, it)
			}
		}
		out = next
	}
	return out, nil
}

func applyOr[T record.Record](items []T, spec Spec, identity IdentityFunc) ([]T, error) {
	keys := make([]string, len(items))
	for i, it := range items {
		if k := identity(it); k != "" {
			keys[i] = "id:" + k
		} else {
			keys[i] = "#" + strconv.Itoa(i)
		}
	}

	seen := make(map[string]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, c := range spec.conds {
		if err := predicate.Validate(c.path, c.op, c.values); err != nil {
			return nil, err
		}
		for i, it := range items {
			if _, dup := seen[keys[i]]; dup {
				continue
			}
			ok, err := predicate.Matches(it, c.path, c.op, c.values)
			if err != nil {
				return nil, err
			}
			if ok {
				seen[keys[i]] = struct{}{}
				out = append(out, it)
			}
		}
	}
	return out, nil
}
