package library

import (
	"context"
	"time"

	"github.com/kailas-cloud/mdrcore/internal/domain/codelist"
	"github.com/kailas-cloud/mdrcore/internal/domain/history"
	"github.com/kailas-cloud/mdrcore/internal/domain/versioning"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	getFn             func(ctx context.Context, key string) ([]byte, error)
	mgetFn            func(ctx context.Context, keys []string) ([][]byte, error)
	existsFn          func(ctx context.Context, key string) (bool, error)
	lrangeFn          func(ctx context.Context, key string, start, stop int64) ([][]byte, error)
	smembersFn        func(ctx context.Context, key string) ([]string, error)
	setAndAppendFn    func(ctx context.Context, key string, value []byte, listKey string, entry []byte, setKey, member string) error
	deleteAndRemoveFn func(ctx context.Context, keys []string, setKey, member string) error
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	if m.mgetFn != nil {
		return m.mgetFn(ctx, keys)
	}
	return make([][]byte, len(keys)), nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	if m.lrangeFn != nil {
		return m.lrangeFn(ctx, key, start, stop)
	}
	return nil, nil
}

func (m *mockStore) SMembers(ctx context.Context, key string) ([]string, error) {
	if m.smembersFn != nil {
		return m.smembersFn(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) SetAndAppend(
	ctx context.Context, key string, value []byte, listKey string, entry []byte, setKey, member string,
) error {
	if m.setAndAppendFn != nil {
		return m.setAndAppendFn(ctx, key, value, listKey, entry, setKey, member)
	}
	return nil
}

func (m *mockStore) DeleteAndRemove(ctx context.Context, keys []string, setKey, member string) error {
	if m.deleteAndRemoveFn != nil {
		return m.deleteAndRemoveFn(ctx, keys, setKey, member)
	}
	return nil
}

var testNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func testCodelist(uid string) codelist.Codelist {
	c, err := codelist.New(codelist.Attributes{
		CatalogueName:   "SDTM CT",
		Name:            "No Yes Response",
		SubmissionValue: "NY",
		Synonyms:        []string{"NY"},
		LibraryName:     "CDISC",
	}, testNow)
	if err != nil {
		panic(err)
	}
	return c.WithUID(uid).WithMeta(versioning.Create("alice", "", testNow))
}

func testSnapshot(uid string) history.Snapshot[codelist.Codelist] {
	return history.NewSnapshot(uid, testNow, testCodelist(uid))
}
