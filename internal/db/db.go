package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade; consumers use narrow sub-interfaces
type Store interface {
	Pinger
	KVStore
	ListStore
	SetStore
	Transactor
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// MGet returns one entry per key; missing keys yield nil.
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Incr(ctx context.Context, key string) (int64, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ListStore provides append-only list operations.
type ListStore interface {
	RPush(ctx context.Context, key string, values ...[]byte) error
	// LRange returns elements start..stop inclusive; negative indexes count from the end.
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
}

// SetStore provides unordered set operations.
type SetStore interface {
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Transactor groups writes that must be applied atomically.
type Transactor interface {
	// SetAndAppend sets key to value, appends entry to listKey and adds
	// member to setKey in one transaction.
	SetAndAppend(ctx context.Context, key string, value []byte, listKey string, entry []byte, setKey, member string) error
	// DeleteAndRemove deletes keys and removes member from setKey in one transaction.
	DeleteAndRemove(ctx context.Context, keys []string, setKey, member string) error
}
