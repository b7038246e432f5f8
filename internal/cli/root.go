// Package cli implements mdrctl, which runs library queries, header lookups,
// version history and exports over local JSON files.
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// DefaultPresetFile is where named queries are stored.
const DefaultPresetFile = ".mdrctl.toml"

// options holds flags shared by every command.
type options struct {
	input      string
	presetFile string
	noColor    bool
}

// NewRootCmd builds the mdrctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "mdrctl",
		Short: "Query clinical library items stored in JSON files",
		Long: `mdrctl runs the mdrcore list pipeline over a JSON array of items:
filters, sorting, paging and field selection, distinct header values,
version history with changed fields, and CSV/XLSX/XML/JSON export.

Examples:
  # Terms whose name contains "sex", newest first
  mdrctl query -i terms.json --filters '{"name":{"v":["sex"],"op":"co"}}' --sort-by '{"start_date":false}'

  # Distinct library names
  mdrctl headers -i terms.json --field library_name

  # What changed between versions
  mdrctl history -i snapshots.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}

	root.PersistentFlags().StringVarP(&opts.input, "input", "i", "-", "JSON file with an array of items (- reads stdin)")
	root.PersistentFlags().StringVar(&opts.presetFile, "presets", DefaultPresetFile, "File holding saved query presets")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colors")

	root.AddCommand(
		newQueryCmd(opts),
		newHeadersCmd(opts),
		newHistoryCmd(opts),
		newExportCmd(opts),
		newPresetCmd(opts),
	)
	return root
}

// Execute runs mdrctl with the process arguments.
func Execute() error {
	return NewRootCmd().Execute()
}
