// Package library persists versioned library items: the current state as a
// JSON value, an append-only snapshot list and a per-kind uid index.
package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/kailas-cloud/mdrcore/internal/db"
	"github.com/kailas-cloud/mdrcore/internal/domain"
	"github.com/kailas-cloud/mdrcore/internal/domain/history"
	"github.com/kailas-cloud/mdrcore/internal/domain/record"
)

// store is the consumer interface for library items (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
	SMembers(ctx context.Context, key string) ([]string, error)
	SetAndAppend(ctx context.Context, key string, value []byte, listKey string, entry []byte, setKey, member string) error
	DeleteAndRemove(ctx context.Context, keys []string, setKey, member string) error
}

// Codec converts items of one kind to and from their stored JSON form.
type Codec[T any] interface {
	Encode(item T) ([]byte, error)
	Decode(data []byte) (T, error)
}

// Repo implements usecase/library.Repository for one item kind.
type Repo[T record.Record] struct {
	store  store
	codec  Codec[T]
	kind   string
	prefix string
}

// New creates a repository for kind. prefix namespaces every key.
func New[T record.Record](s store, codec Codec[T], kind, prefix string) *Repo[T] {
	return &Repo[T]{store: s, codec: codec, kind: kind, prefix: prefix}
}

// entry is one stored snapshot.
type entry struct {
	UID       string          `json:"uid"`
	StartDate time.Time       `json:"start_date"`
	EventID   string          `json:"event_id"`
	Item      json.RawMessage `json:"item"`
}

// Save stores snap as the current state and appends it to the item history.
func (r *Repo[T]) Save(ctx context.Context, snap history.Snapshot[T]) error {
	item, err := r.codec.Encode(snap.Item)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", r.kind, snap.UID, err)
	}
	e, err := json.Marshal(entry{UID: snap.UID, StartDate: snap.StartDate.UTC(), EventID: snap.EventID, Item: item})
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", snap.UID, err)
	}

	if err := r.store.SetAndAppend(ctx,
		r.itemKey(snap.UID), item,
		r.historyKey(snap.UID), e,
		r.indexKey(), snap.UID,
	); err != nil {
		return fmt.Errorf("save %s %s: %w", r.kind, snap.UID, err)
	}
	return nil
}

// Get returns the current state of an item.
func (r *Repo[T]) Get(ctx context.Context, uid string) (T, error) {
	var zero T
	raw, err := r.store.Get(ctx, r.itemKey(uid))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return zero, fmt.Errorf("%s %s: %w", r.kind, uid, domain.ErrNotFound)
		}
		return zero, fmt.Errorf("get %s %s: %w", r.kind, uid, err)
	}
	item, err := r.codec.Decode(raw)
	if err != nil {
		return zero, fmt.Errorf("decode %s %s: %w", r.kind, uid, err)
	}
	return item, nil
}

// Exists reports whether an item is stored.
func (r *Repo[T]) Exists(ctx context.Context, uid string) (bool, error) {
	ok, err := r.store.Exists(ctx, r.itemKey(uid))
	if err != nil {
		return false, fmt.Errorf("check exists %s %s: %w", r.kind, uid, err)
	}
	return ok, nil
}

// UIDs returns the uids of all stored items in ascending order.
// Set members come back in server order, which is unspecified.
func (r *Repo[T]) UIDs(ctx context.Context) ([]string, error) {
	uids, err := r.store.SMembers(ctx, r.indexKey())
	if err != nil {
		return nil, fmt.Errorf("list %s uids: %w", r.kind, err)
	}
	slices.Sort(uids)
	return uids, nil
}

// List returns the current state of all items. Uids whose value vanished
// between the index read and the fetch are skipped.
func (r *Repo[T]) List(ctx context.Context) ([]T, error) {
	uids, err := r.UIDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(uids) == 0 {
		return []T{}, nil
	}

	keys := make([]string, len(uids))
	for i, uid := range uids {
		keys[i] = r.itemKey(uid)
	}
	raws, err := r.store.MGet(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("mget %s: %w", r.kind, err)
	}

	items := make([]T, 0, len(raws))
	for i, raw := range raws {
		if raw == nil {
			continue
		}
		item, err := r.codec.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", r.kind, uids[i], err)
		}
		items = append(items, item)
	}
	return items, nil
}

// History returns every stored snapshot of an item, oldest first.
func (r *Repo[T]) History(ctx context.Context, uid string) ([]history.Snapshot[T], error) {
	raws, err := r.store.LRange(ctx, r.historyKey(uid), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("history %s %s: %w", r.kind, uid, err)
	}
	if len(raws) == 0 {
		return nil, fmt.Errorf("%s %s: %w", r.kind, uid, domain.ErrNotFound)
	}

	snaps := make([]history.Snapshot[T], len(raws))
	for i, raw := range raws {
		var e entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot %s #%d: %w", uid, i, err)
		}
		item, err := r.codec.Decode(e.Item)
		if err != nil {
			return nil, fmt.Errorf("decode snapshot %s #%d: %w", uid, i, err)
		}
		snaps[i] = history.Snapshot[T]{UID: e.UID, StartDate: e.StartDate, EventID: e.EventID, Item: item}
	}
	return snaps, nil
}

// Delete removes an item together with its history.
func (r *Repo[T]) Delete(ctx context.Context, uid string) error {
	ok, err := r.Exists(ctx, uid)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s %s: %w", r.kind, uid, domain.ErrNotFound)
	}
	keys := []string{r.itemKey(uid), r.historyKey(uid)}
	if err := r.store.DeleteAndRemove(ctx, keys, r.indexKey(), uid); err != nil {
		return fmt.Errorf("delete %s %s: %w", r.kind, uid, err)
	}
	return nil
}

func (r *Repo[T]) itemKey(uid string) string {
	return fmt.Sprintf("%sitem:%s:%s", r.prefix, r.kind, uid)
}

func (r *Repo[T]) historyKey(uid string) string {
	return fmt.Sprintf("%shistory:%s:%s", r.prefix, r.kind, uid)
}

func (r *Repo[T]) indexKey() string {
	return fmt.Sprintf("%sindex:%s", r.prefix, r.kind)
}
