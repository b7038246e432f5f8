package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/mdrcore/internal/domain/query"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/fields"
)

// pageOutput mirrors the API page body.
type pageOutput struct {
	Items []map[string]any `json:"items"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Size  int              `json:"size"`
}

func newQueryCmd(opts *options) *cobra.Command {
	q := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Filter, sort and page items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := q.resolve(cmd, opts.presetFile); err != nil {
				return err
			}
			req, err := q.request()
			if err != nil {
				return err
			}
			docs, err := readDocuments(cmd, opts.input)
			if err != nil {
				return err
			}
			p, err := query.Run(docs, req)
			if err != nil {
				return err
			}
			return writeIndented(cmd.OutOrStdout(), pageOutput{
				Items: fields.ApplyAll(p.Items, q.directive()),
				Total: p.Total,
				Page:  p.Number,
				Size:  p.Size,
			})
		},
	}
	q.bind(cmd, true)
	return cmd
}

func writeIndented(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
