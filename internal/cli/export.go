package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/mdrcore/internal/domain/query"
	"github.com/kailas-cloud/mdrcore/internal/export"
)

func newExportCmd(opts *options) *cobra.Command {
	q := &queryFlags{}
	var format, output, name string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export matching items as CSV, XLSX, XML or JSON",
		Long: `export runs the query flags over the input and writes one row per item.
Columns are dotted field paths; nested records expand into parent.child
columns and list values are joined with "|". Without --format the format
follows the --output extension, falling back to CSV.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := q.resolve(cmd, opts.presetFile); err != nil {
				return err
			}
			if format == "" && output != "" {
				format = strings.TrimPrefix(filepath.Ext(output), ".")
			}
			f, err := export.ParseFormat(format)
			if err != nil {
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
			table := export.NewTable(name, p.Items, export.Columns(p.Items, q.directive()))

			if output == "" {
				return export.Write(cmd.OutOrStdout(), f, table)
			}
			return writeFile(output, func(w io.Writer) error { return export.Write(w, f, table) })
		},
	}
	q.bind(cmd, true)
	fl := cmd.Flags()
	fl.StringVar(&format, "format", "", "Output format: csv|xlsx|xml|json")
	fl.StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	fl.StringVar(&name, "name", "items", "Sheet or root element name")
	return cmd
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		return err
	}
	return bw.Flush()
}
