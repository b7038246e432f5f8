package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/mdrcore/internal/domain/query"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/fields"
)

// queryFlags are the list query flags shared by query, history, export and
// preset save.
type queryFlags struct {
	filters    string
	operator   string
	sortBy     string
	pageNumber int
	pageSize   int
	totalCount bool
	fields     string
	preset     string
}

// bind registers the flags. withPreset adds --preset.
func (q *queryFlags) bind(cmd *cobra.Command, withPreset bool) {
	f := cmd.Flags()
	f.StringVar(&q.filters, "filters", "", `Filters as JSON, e.g. {"name":{"v":["Sex"],"op":"eq"}}`)
	f.StringVar(&q.operator, "operator", "and", "How filters combine: and|or")
	f.StringVar(&q.sortBy, "sort-by", "", `Sort keys as JSON, e.g. {"name":true}`)
	f.IntVar(&q.pageNumber, "page-number", 1, "Page to return, starting at 1")
	f.IntVar(&q.pageSize, "page-size", 0, "Items per page (0 returns everything)")
	f.BoolVar(&q.totalCount, "total-count", false, "Count all matching items")
	f.StringVar(&q.fields, "fields", "", "Fields directive, e.g. +name,+version or -definition")
	if withPreset {
		f.StringVar(&q.preset, "preset", "", "Start from a saved preset; explicit flags win")
	}
}

// resolve fills flags the user did not set from the named preset.
func (q *queryFlags) resolve(cmd *cobra.Command, presetFile string) error {
	if q.preset == "" {
		return nil
	}
	presets, err := loadPresets(presetFile)
	if err != nil {
		return err
	}
	p, ok := presets[q.preset]
	if !ok {
		return fmt.Errorf("preset %q not found in %s", q.preset, presetFile)
	}
	f := cmd.Flags()
	if !f.Changed("filters") {
		q.filters = p.Filters
	}
	if !f.Changed("operator") && p.Operator != "" {
		q.operator = p.Operator
	}
	if !f.Changed("sort-by") {
		q.sortBy = p.SortBy
	}
	if !f.Changed("page-size") {
		q.pageSize = p.PageSize
	}
	if !f.Changed("fields") {
		q.fields = p.Fields
	}
	return nil
}

func (q *queryFlags) request() (query.Request, error) {
	return query.ParseRequest(query.RawRequest{
		Filters:    q.filters,
		Operator:   q.operator,
		SortBy:     q.sortBy,
		PageNumber: q.pageNumber,
		PageSize:   q.pageSize,
		TotalCount: q.totalCount,
	})
}

func (q *queryFlags) directive() *fields.Directive {
	return fields.Parse(q.fields)
}
