package library

import (
	"context"

	"github.com/kailas-cloud/mdrcore/internal/domain/history"
	"github.com/kailas-cloud/mdrcore/internal/domain/record"
	"github.com/kailas-cloud/mdrcore/internal/domain/versioning"
)

// Entity is a versioned library item that can be queried and re-stamped.
type Entity[T any] interface {
	record.Record
	UID() string
	Meta() versioning.Metadata
	WithUID(uid string) T
	WithMeta(m versioning.Metadata) T
}

// Repository defines the storage contract for one item kind.
type Repository[T record.Record] interface {
	Save(ctx context.Context, snap history.Snapshot[T]) error
	Get(ctx context.Context, uid string) (T, error)
	List(ctx context.Context) ([]T, error)
	UIDs(ctx context.Context) ([]string, error)
	History(ctx context.Context, uid string) ([]history.Snapshot[T], error)
	Delete(ctx context.Context, uid string) error
}

// UIDGenerator hands out new item uids.
type UIDGenerator interface {
	Next(ctx context.Context) (string, error)
}
