package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/mdrcore/internal/domain/history"
	"github.com/kailas-cloud/mdrcore/internal/domain/record"
)

// readDocuments decodes the input file as a JSON array of objects.
func readDocuments(cmd *cobra.Command, path string) ([]record.Document, error) {
	var in io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	var objs []map[string]any
	if err := json.NewDecoder(in).Decode(&objs); err != nil {
		return nil, fmt.Errorf("decode input %s: %w", path, err)
	}
	return record.Documents(objs), nil
}

// snapshots turns documents into item snapshots. Each document needs a uid
// and an RFC 3339 start_date. An event_id key moves onto the snapshot.
func snapshots(docs []record.Document) ([]history.Snapshot[record.Document], error) {
	out := make([]history.Snapshot[record.Document], len(docs))
	for i, d := range docs {
		uid := d.UID()
		if uid == "" {
			return nil, fmt.Errorf("item %d: uid is required", i)
		}
		raw, _ := d["start_date"].(string)
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("item %d: start_date: %w", i, err)
		}
		id, _ := d[history.FieldEventID].(string)
		delete(d, history.FieldEventID)
		s := history.NewSnapshot(uid, start, d)
		if id != "" {
			s.EventID = id
		}
		out[i] = s
	}
	return out, nil
}
