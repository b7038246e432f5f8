package cli

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/mdrcore/internal/domain/query"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/filter"
)

func newHeadersCmd(opts *options) *cobra.Command {
	var (
		field, search, filters, operator string
		limit                            int
	)
	cmd := &cobra.Command{
		Use:   "headers",
		Short: "List distinct values of one field",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, err := filter.ParseSpec([]byte(filters))
			if err != nil {
				return err
			}
			op, err := filter.ParseCombinator(operator)
			if err != nil {
				return err
			}
			docs, err := readDocuments(cmd, opts.input)
			if err != nil {
				return err
			}
			vals, err := query.Distinct(docs, query.HeaderRequest{
				Field:    field,
				Search:   search,
				Filters:  spec,
				Operator: op,
				Limit:    limit,
			})
			if err != nil {
				return err
			}
			return writeIndented(cmd.OutOrStdout(), vals)
		},
	}
	f := cmd.Flags()
	f.StringVar(&field, "field", "", "Field path to collect values from")
	f.StringVar(&search, "search", "", "Keep values containing this text")
	f.StringVar(&filters, "filters", "", "Filters as JSON")
	f.StringVar(&operator, "operator", "and", "How filters combine: and|or")
	f.IntVar(&limit, "limit", query.DefaultHeaderLimit, "Maximum number of values")
	_ = cmd.MarkFlagRequired("field")
	return cmd
}
