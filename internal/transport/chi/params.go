package chi

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kailas-cloud/mdrcore/internal/domain"
	"github.com/kailas-cloud/mdrcore/internal/domain/query"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/fields"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/filter"
)

// AuthorHeader names the user a change is recorded for.
const AuthorHeader = "X-Author-Username"

// DefaultAuthor is recorded when a request names no author.
const DefaultAuthor = "unknown-user"

func authorFrom(r *http.Request) string {
	if a := strings.TrimSpace(r.Header.Get(AuthorHeader)); a != "" {
		return a
	}
	return DefaultAuthor
}

// expectedVersion reads an If-Match precondition; quotes are optional.
func expectedVersion(r *http.Request) string {
	return strings.Trim(strings.TrimSpace(r.Header.Get("If-Match")), `"`)
}

// listRequest parses the shared list parameters. A missing page_size falls
// back to defaultPageSize; page_size=0 returns every item.
func listRequest(q url.Values, defaultPageSize int) (query.Request, error) {
	pageNumber, err := intParam(q, "page_number", 1)
	if err != nil {
		return query.Request{}, err
	}
	pageSize, err := intParam(q, "page_size", defaultPageSize)
	if err != nil {
		return query.Request{}, err
	}
	total, err := boolParam(q, "total_count", false)
	if err != nil {
		return query.Request{}, err
	}
	return query.ParseRequest(query.RawRequest{
		Filters:    q.Get("filters"),
		Operator:   q.Get("operator"),
		SortBy:     q.Get("sort_by"),
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalCount: total,
	})
}

// headerRequest parses the distinct-values parameters. page_size caps the
// number of values.
func headerRequest(q url.Values) (query.HeaderRequest, error) {
	field := strings.TrimSpace(q.Get("field_name"))
	if field == "" {
		return query.HeaderRequest{}, fmt.Errorf("%w: field_name is required", domain.ErrValidation)
	}
	limit, err := intParam(q, "page_size", query.DefaultHeaderLimit)
	if err != nil {
		return query.HeaderRequest{}, err
	}
	filters, err := filter.ParseSpec([]byte(q.Get("filters")))
	if err != nil {
		return query.HeaderRequest{}, err
	}
	op, err := filter.ParseCombinator(q.Get("operator"))
	if err != nil {
		return query.HeaderRequest{}, err
	}
	return query.HeaderRequest{
		Field:    field,
		Search:   q.Get("search_string"),
		Filters:  filters,
		Operator: op,
		Limit:    limit,
	}, nil
}

func fieldsParam(q url.Values) *fields.Directive {
	return fields.Parse(q.Get("fields"))
}

func intParam(q url.Values, name string, def int) (int, error) {
	s := strings.TrimSpace(q.Get(name))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", domain.ErrInvalidPagination, name, s)
	}
	return n, nil
}

func boolParam(q url.Values, name string, def bool) (bool, error) {
	s := strings.TrimSpace(q.Get(name))
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: %s %q is not a boolean", domain.ErrValidation, name, s)
	}
	return b, nil
}
