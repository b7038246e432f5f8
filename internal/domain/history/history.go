// Package history turns append-only item snapshots into version records
// that carry the set of fields changed between adjacent versions.
package history

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/mdrcore/internal/domain/record"
)

// Field names added by VersionRecord on top of the item fields.
const (
	FieldChanges = "changes"
	FieldEventID = "event_id"
)

// Snapshot is one immutable state of an item.
type Snapshot[T record.Record] struct {
	UID       string
	StartDate time.Time
	EventID   string
	Item      T
}

// NewSnapshot creates a snapshot with a fresh event id.
func NewSnapshot[T record.Record](uid string, start time.Time, item T) Snapshot[T] {
	return Snapshot[T]{UID: uid, StartDate: start, EventID: uuid.NewString(), Item: item}
}

// Changes holds the names of fields that differ from the next newer version.
type Changes map[string]bool

// Names returns the changed field names in order.
func (c Changes) Names() []string {
	names := make([]string, 0, len(c))
	for n, changed := range c {
		if changed {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return names
}

// Diff returns the fields of a and b whose values differ.
func Diff(a, b record.Record) Changes {
	changes := Changes{}
	for _, name := range record.FieldNames(a, b) {
		av, _ := a.Lookup(name)
		bv, _ := b.Lookup(name)
		if !record.Equal(av, bv) {
			changes[name] = true
		}
	}
	return changes
}

// VersionRecord pairs a snapshot with its changes. It is itself a Record,
// so audit trails run through the same query pipeline as items.
type VersionRecord[T record.Record] struct {
	Snapshot[T]
	Changes Changes
}

// UID returns the item uid of the snapshot.
func (v VersionRecord[T]) UID() string { return v.Snapshot.UID }

// Lookup resolves item fields plus changes and event_id. Changes resolve
// as a Document so "changes.<field>" addresses a single field.
func (v VersionRecord[T]) Lookup(name string) (any, bool) {
	switch name {
	case FieldChanges:
		out := make(record.Document, len(v.Changes))
		for k, changed := range v.Changes {
			out[k] = changed
		}
		return out, true
	case FieldEventID:
		return v.EventID, true
	}
	return v.Item.Lookup(name)
}

// Fields returns the item fields followed by changes and event_id.
func (v VersionRecord[T]) Fields() []record.Field {
	fields := slices.Clone(v.Item.Fields())
	return append(fields,
		record.Field{Name: FieldChanges, Kind: record.KindRecord, NoWildcard: true},
		record.Field{Name: FieldEventID, Kind: record.KindScalar, NoWildcard: true},
	)
}

// DiffEntity orders the snapshots of one item newest first and diffs each
// against its next newer neighbour. The newest version is the baseline and
// has no changes. Equal start dates keep their input order.
func DiffEntity[T record.Record](snapshots []Snapshot[T]) []VersionRecord[T] {
	ordered := slices.Clone(snapshots)
	slices.SortStableFunc(ordered, func(a, b Snapshot[T]) int {
		return b.StartDate.Compare(a.StartDate)
	})

	out := make([]VersionRecord[T], len(ordered))
	for i, s := range ordered {
		changes := Changes{}
		if i > 0 {
			changes = Diff(s.Item, ordered[i-1].Item)
		}
		out[i] = VersionRecord[T]{Snapshot: s, Changes: changes}
	}
	return out
}

// DiffHistory groups snapshots by item uid and concatenates the DiffEntity
// results of each group, groups in descending uid order.
func DiffHistory[T record.Record](snapshots []Snapshot[T]) []VersionRecord[T] {
	groups := make(map[string][]Snapshot[T])
	for _, s := range snapshots {
		groups[s.UID] = append(groups[s.UID], s)
	}
	uids := make([]string, 0, len(groups))
	for uid := range groups {
		uids = append(uids, uid)
	}
	slices.SortFunc(uids, func(a, b string) int { return cmp.Compare(b, a) })

	out := make([]VersionRecord[T], 0, len(snapshots))
	for _, uid := range uids {
		out = append(out, DiffEntity(groups[uid])...)
	}
	return out
}

// EventIdentity keys version records by snapshot, since every version of
// an item shares its uid. Use it with filter.WithIdentity.
func EventIdentity(r record.Record) string {
	v, _ := r.Lookup(FieldEventID)
	return record.String(v)
}
