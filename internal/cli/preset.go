package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

// Preset is a saved list query.
type Preset struct {
	Filters  string `toml:"filters,omitempty"`
	Operator string `toml:"operator,omitempty"`
	SortBy   string `toml:"sort_by,omitempty"`
	PageSize int    `toml:"page_size,omitempty"`
	Fields   string `toml:"fields,omitempty"`
}

type presetFile struct {
	Presets map[string]Preset `toml:"presets"`
}

// loadPresets reads the preset file. A missing file holds no presets.
func loadPresets(path string) (map[string]Preset, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]Preset{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	var f presetFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse presets %s: %w", path, err)
	}
	if f.Presets == nil {
		f.Presets = map[string]Preset{}
	}
	return f.Presets, nil
}

func savePresets(path string, presets map[string]Preset) error {
	data, err := toml.Marshal(presetFile{Presets: presets})
	if err != nil {
		return fmt.Errorf("marshal presets: %w", err)
	}
	if err := os.WriteFile(filepath.Clean(path), data, 0o600); err != nil {
		return fmt.Errorf("write presets: %w", err)
	}
	return nil
}

func newPresetCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Save and list named queries",
	}
	cmd.AddCommand(newPresetSaveCmd(opts), newPresetListCmd(opts))
	return cmd
}

func newPresetSaveCmd(opts *options) *cobra.Command {
	q := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "save NAME",
		Short: "Save the given query flags under NAME",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Reject specs that would fail when the preset is used.
			if _, err := q.request(); err != nil {
				return err
			}
			presets, err := loadPresets(opts.presetFile)
			if err != nil {
				return err
			}
			presets[args[0]] = Preset{
				Filters:  q.filters,
				Operator: q.operator,
				SortBy:   q.sortBy,
				PageSize: q.pageSize,
				Fields:   q.fields,
			}
			if err := savePresets(opts.presetFile, presets); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "saved preset %q to %s\n", args[0], opts.presetFile)
			return err
		},
	}
	q.bind(cmd, false)
	return cmd
}

func newPresetListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			presets, err := loadPresets(opts.presetFile)
			if err != nil {
				return err
			}
			names := make([]string, 0, len(presets))
			for name := range presets {
				names = append(names, name)
			}
			slices.Sort(names)

			w := cmd.OutOrStdout()
			for _, name := range names {
				p := presets[name]
				if _, err := fmt.Fprintf(w, "%s\tfilters=%s operator=%s sort_by=%s page_size=%d fields=%s\n",
					name, p.Filters, p.Operator, p.SortBy, p.PageSize, p.Fields); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
