// Package counter hands out per-name sequence numbers for uid generation.
package counter

import (
	"context"
	"fmt"
)

// store is the consumer interface for counters (ISP).
type store interface {
	Incr(ctx context.Context, key string) (int64, error)
}

// Repo implements naming.Counter on top of INCR.
type Repo struct {
	store  store
	prefix string
}

// New creates a counter repository. prefix namespaces every key.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Next returns the next value of the named counter, starting at 1.
func (r *Repo) Next(ctx context.Context, name string) (int64, error) {
	key := fmt.Sprintf("%scounter:%s", r.prefix, name)
	n, err := r.store.Incr(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}
	return n, nil
}
