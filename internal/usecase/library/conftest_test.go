package library

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/kailas-cloud/mdrcore/internal/domain"
	"github.com/kailas-cloud/mdrcore/internal/domain/codelist"
	"github.com/kailas-cloud/mdrcore/internal/domain/history"
)

// mockRepo keeps snapshots in memory; fn fields override behavior.
type mockRepo[T Entity[T]] struct {
	mu     sync.Mutex
	snaps  map[string][]history.Snapshot[T]
	saveFn func(ctx context.Context, snap history.Snapshot[T]) error
}

func newMockRepo[T Entity[T]]() *mockRepo[T] {
	return &mockRepo[T]{snaps: make(map[string][]history.Snapshot[T])}
}

func (m *mockRepo[T]) Save(ctx context.Context, snap history.Snapshot[T]) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, snap)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[snap.UID] = append(m.snaps[snap.UID], snap)
	return nil
}

func (m *mockRepo[T]) Get(_ context.Context, uid string) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snaps[uid]
	if !ok {
		var zero T
		return zero, fmt.Errorf("item %s: %w", uid, domain.ErrNotFound)
	}
	return s[len(s)-1].Item, nil
}

func (m *mockRepo[T]) List(ctx context.Context) ([]T, error) {
	uids, _ := m.UIDs(ctx)
	out := make([]T, 0, len(uids))
	for _, uid := range uids {
		it, _ := m.Get(ctx, uid)
		out = append(out, it)
	}
	return out, nil
}

func (m *mockRepo[T]) UIDs(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	uids := make([]string, 0, len(m.snaps))
	for uid := range m.snaps {
		uids = append(uids, uid)
	}
	slices.Sort(uids)
	return uids, nil
}

func (m *mockRepo[T]) History(_ context.Context, uid string) ([]history.Snapshot[T], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snaps[uid]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", uid, domain.ErrNotFound)
	}
	return slices.Clone(s), nil
}

func (m *mockRepo[T]) Delete(_ context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, uid)
	return nil
}

// seqUIDs generates Prefix_000001, Prefix_000002, ...
type seqUIDs struct {
	prefix string
	n      int
	err    error
}

func (s *seqUIDs) Next(context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.n++
	return fmt.Sprintf("%s_%06d", s.prefix, s.n), nil
}

// tickClock advances one minute per call.
type tickClock struct{ t time.Time }

func (c *tickClock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newCodelistService() (*Service[codelist.Codelist], *mockRepo[codelist.Codelist]) {
	repo := newMockRepo[codelist.Codelist]()
	clock := &tickClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := New[codelist.Codelist](codelist.Kind, "codelist_uid", repo, &seqUIDs{prefix: codelist.UIDPrefix}).
		WithClock(clock.now)
	return svc, repo
}

func newCodelist(name, submission string) codelist.Codelist {
	c, err := codelist.New(codelist.Attributes{
		CatalogueName:   "SDTM CT",
		Name:            name,
		SubmissionValue: submission,
		LibraryName:     "CDISC",
	}, time.Time{})
	if err != nil {
		panic(err)
	}
	return c
}
