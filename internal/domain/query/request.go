// Package query runs the list pipeline over in-memory collections:
// filter, sort, count and paginate.
package query

import (
	"fmt"

	"github.com/kailas-cloud/mdrcore/internal/domain"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/filter"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/sorting"
)

// DefaultHeaderLimit caps the number of distinct header values returned.
const DefaultHeaderLimit = 10

// Request describes one list query.
type Request struct {
	Filters    filter.Spec
	Operator   filter.Combinator
	Sort       sorting.Spec
	PageNumber int
	PageSize   int
	TotalCount bool
}

// NewRequest validates and creates a Request. PageSize 0 disables paging.
func NewRequest(
	filters filter.Spec, op filter.Combinator, sort sorting.Spec,
	pageNumber, pageSize int, totalCount bool,
) (Request, error) {
	if pageNumber < 1 {
		return Request{}, fmt.Errorf("%w: page_number must be at least 1, got %d",
			domain.ErrInvalidPagination, pageNumber)
	}
	if pageSize < 0 {
		return Request{}, fmt.Errorf("%w: page_size must not be negative, got %d",
			domain.ErrInvalidPagination, pageSize)
	}
	if op == "" {
		op = filter.And
	}
	if _, err := filter.ParseCombinator(op.String()); err != nil {
		return Request{}, err
	}
	return Request{
		Filters:    filters,
		Operator:   op,
		Sort:       sort,
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalCount: totalCount,
	}, nil
}

// RawRequest is a Request in its wire form, as it arrives in query strings
// and CLI flags.
type RawRequest struct {
	Filters    string
	Operator   string
	SortBy     string
	PageNumber int
	PageSize   int
	TotalCount bool
}

// ParseRequest parses and validates a RawRequest.
func ParseRequest(raw RawRequest) (Request, error) {
	filters, err := filter.ParseSpec([]byte(raw.Filters))
	if err != nil {
		return Request{}, err
	}
	op, err := filter.ParseCombinator(raw.Operator)
	if err != nil {
		return Request{}, err
	}
	sort, err := sorting.ParseSpec([]byte(raw.SortBy))
	if err != nil {
		return Request{}, err
	}
	return NewRequest(filters, op, sort, raw.PageNumber, raw.PageSize, raw.TotalCount)
}

// HeaderRequest asks for the distinct values of one field.
type HeaderRequest struct {
	Field    string
	Search   string
	Filters  filter.Spec
	Operator filter.Combinator
	Limit    int
}
