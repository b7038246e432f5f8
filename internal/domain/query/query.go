package query

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/mdrcore/internal/domain"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/fieldpath"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/filter"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/page"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/predicate"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/sorting"
	"github.com/kailas-cloud/mdrcore/internal/domain/record"
)

// Run filters, sorts and paginates items. Total is only counted when
// req.TotalCount is set. items is never modified.
func Run[T record.Record](items []T, req Request, opts ...filter.Option) (page.Page[T], error) {
	filtered, err := filter.Apply(items, req.Filters, req.Operator, opts...)
	if err != nil {
		return page.Page[T]{}, fmt.Errorf("filter: %w", err)
	}
	sorted := sorting.Apply(filtered, req.Sort)

	total := 0
	if req.TotalCount {
		total = len(sorted)
	}
	number := max(req.PageNumber, 1)
	return page.Page[T]{
		Items:  page.Paginate(sorted, number, req.PageSize),
		Total:  total,
		Number: number,
		Size:   req.PageSize,
	}, nil
}

// Distinct returns up to req.Limit distinct values of req.Field among the
// items matching req.Filters. A non-empty search adds a contains condition
// on the field. Sequence values are flattened and nil values skipped;
// records are reported by name when they have one.
func Distinct[T record.Record](items []T, req HeaderRequest) ([]any, error) {
	if strings.TrimSpace(req.Field) == "" {
		return nil, fmt.Errorf("%w: field_name is required", domain.ErrInvalidSpecification)
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultHeaderLimit
	}

	spec := req.Filters
	if req.Search != "" {
		c, err := filter.NewCondition(req.Field, predicate.Contains, []any{req.Search})
		if err != nil {
			return nil, err
		}
		spec = spec.With(c)
	}
	matched, err := filter.Apply(items, spec, req.Operator)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}

	out := make([]any, 0, limit)
	add := func(v any) bool {
		v = headerValue(v)
		if v == nil {
			return false
		}
		for _, seen := range out {
			if record.Equal(seen, v) {
				return false
			}
		}
		out = append(out, v)
		return len(out) >= limit
	}
	for _, it := range matched {
		resolved := fieldpath.Resolve(it, req.Field)
		if seq, ok := fieldpath.Flatten(resolved); ok {
			for _, v := range seq {
				if add(v) {
					return out, nil
				}
			}
			continue
		}
		if add(resolved) {
			return out, nil
		}
	}
	return out, nil
}

func headerValue(v any) any {
	v = record.Underlying(v)
	if r, ok := v.(record.Record); ok {
		if n, ok := r.(record.Named); ok {
			return n.Name()
		}
		return record.Plain(r)
	}
	return v
}

// ExtractValue removes an equality condition on name from spec and returns
// its first value. ok is false, and spec is returned unchanged, when there
// is no such condition or when single is set and it holds several values.
func ExtractValue(spec filter.Spec, name string, single bool) (value any, rest filter.Spec, ok bool) {
	c, found := spec.Get(name)
	if !found || c.Op() != predicate.Equal {
		return nil, spec, false
	}
	values := c.Values()
	if single && len(values) > 1 {
		return nil, spec, false
	}
	if len(values) > 0 {
		value = values[0]
	}
	return value, spec.Without(name), true
}

// Remap renames filter and sort paths through mapping. It reports false
// when any path has no mapping, so callers can fall back to the generic
// in-memory pipeline.
func Remap(mapping map[string]string, filters filter.Spec, sort sorting.Spec) (filter.Spec, sorting.Spec, bool) {
	var outFilters filter.Spec
	for _, c := range filters.Conditions() {
		to, ok := mapping[c.Path()]
		if !ok {
			return filter.Spec{}, nil, false
		}
		renamed, err := filter.NewCondition(to, c.Op(), c.Values())
		if err != nil {
			return filter.Spec{}, nil, false
		}
		outFilters = outFilters.With(renamed)
	}

	var outSort sorting.Spec
	for _, k := range sort {
		to, ok := mapping[k.Path]
		if !ok {
			return filter.Spec{}, nil, false
		}
		outSort = append(outSort, sorting.Key{Path: to, Ascending: k.Ascending})
	}
	return outFilters, outSort, true
}
