package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/mdrcore/internal/domain/history"
	"github.com/kailas-cloud/mdrcore/internal/domain/query"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/fields"
	"github.com/kailas-cloud/mdrcore/internal/domain/query/filter"
	"github.com/kailas-cloud/mdrcore/internal/domain/record"
)

func newHistoryCmd(opts *options) *cobra.Command {
	q := &queryFlags{}
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show item versions and the fields each one changed",
		Long: `history reads item snapshots (every element needs uid and start_date) and
prints them newest first per item, each with the fields that differ from the
next newer version. Query flags filter the version records, so
--filters '{"changes.name":{"v":[true]}}' finds versions that renamed an item.`,
		Args: cobra.NoArgs,
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
			snaps, err := snapshots(docs)
			if err != nil {
				return err
			}
			p, err := query.Run(history.DiffHistory(snaps), req, filter.WithIdentity(history.EventIdentity))
			if err != nil {
				return err
			}
			if asJSON {
				return writeIndented(cmd.OutOrStdout(), pageOutput{
					Items: fields.ApplyAll(p.Items, q.directive()),
					Total: p.Total,
					Page:  p.Number,
					Size:  p.Size,
				})
			}
			printHistory(cmd.OutOrStdout(), p.Items)
			return nil
		},
	}
	q.bind(cmd, true)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version records as JSON")
	return cmd
}

func printHistory(w io.Writer, recs []history.VersionRecord[record.Document]) {
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)
	red := color.New(color.FgRed)
	faint := color.New(color.Faint)

	if len(recs) == 0 {
		fmt.Fprintln(w, "No versions")
		return
	}
	for _, r := range recs {
		yellow.Fprintf(w, "%s", r.UID())
		if v, ok := r.Item["version"]; ok {
			cyan.Fprintf(w, " v%s", record.String(v))
		}
		if st, ok := r.Item["status"]; ok {
			fmt.Fprintf(w, " [%s]", record.String(st))
		}
		fmt.Fprintf(w, "  %s", r.StartDate.UTC().Format(time.RFC3339))
		faint.Fprintf(w, "  %s\n", r.EventID)

		if names := r.Changes.Names(); len(names) > 0 {
			fmt.Fprint(w, "    changed: ")
			red.Fprintln(w, strings.Join(names, ", "))
		} else {
			faint.Fprintln(w, "    no changes")
		}
	}
}
