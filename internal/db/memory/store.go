// Package memory is a process-local db.Store for development and tests.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/kailas-cloud/mdrcore/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Store keeps strings, lists and sets in maps guarded by one mutex.
// Every mutation is applied under the lock, so multi-key writes are atomic.
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
	lists  map[string][][]byte
	sets   map[string]map[string]struct{}
	closed bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		values: make(map[string][]byte),
		lists:  make(map[string][][]byte),
		sets:   make(map[string]map[string]struct{}),
	}
}

// Ping fails once the store is closed.
func (s *Store) Ping(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return fmt.Errorf("ping: store closed")
	}
	return nil
}

// Close marks the store closed. Data stays readable.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// WaitForReady returns immediately unless the store is closed.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// Get returns the value of a key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return bytes.Clone(v), nil
}

// MGet returns values for several keys; missing keys yield nil.
func (s *Store) MGet(_ context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][]byte, len(keys))
	for i, k := range keys {
		if v, ok := s.values[k]; ok {
			out[i] = bytes.Clone(v)
		}
	}
	return out, nil
}

// Set stores a value.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = bytes.Clone(value)
	return nil
}

// Incr increments an integer value, starting from zero.
func (s *Store) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	if v, ok := s.values[key]; ok {
		parsed, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return 0, &db.Error{Op: db.OpIncr, Err: fmt.Errorf("value is not an integer")}
		}
		n = parsed
	}
	n++
	s.values[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

// Del deletes keys of any type.
func (s *Store) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.del(keys)
	return nil
}

func (s *Store) del(keys []string) {
	for _, k := range keys {
		delete(s.values, k)
		delete(s.lists, k)
		delete(s.sets, k)
	}
}

// Exists checks if a key of any type exists.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, v := s.values[key]
	_, l := s.lists[key]
	_, st := s.sets[key]
	return v || l || st, nil
}

// RPush appends values to a list.
func (s *Store) RPush(_ context.Context, key string, values ...[]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rpush(key, values...)
	return nil
}

func (s *Store) rpush(key string, values ...[]byte) {
	for _, v := range values {
		s.lists[key] = append(s.lists[key], bytes.Clone(v))
	}
}

// LRange returns list elements start..stop inclusive, with negative
// indexes counted from the end.
func (s *Store) LRange(_ context.Context, key string, start, stop int64) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.lists[key]
	n := int64(len(list))
	if start < 0 {
		start = max(n+start, 0)
	}
	if stop < 0 {
		stop = n + stop
	}
	stop = min(stop, n-1)
	if start > stop {
		return [][]byte{}, nil
	}
	out := make([][]byte, 0, stop-start+1)
	for _, v := range list[start : stop+1] {
		out = append(out, bytes.Clone(v))
	}
	return out, nil
}

// SAdd adds members to a set.
func (s *Store) SAdd(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sadd(key, members...)
	return nil
}

func (s *Store) sadd(key string, members ...string) {
	if len(members) == 0 {
		return
	}
	set, ok := s.sets[key]
	if !ok {
		set = make(map[string]struct{}, len(members))
		s.sets[key] = set
	}
	for _, m := range members {
		set[m] = struct{}{}
	}
}

// SRem removes members from a set. An emptied set is deleted.
func (s *Store) SRem(_ context.Context, key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.srem(key, members...)
	return nil
}

func (s *Store) srem(key string, members ...string) {
	set := s.sets[key]
	for _, m := range members {
		delete(set, m)
	}
	if set != nil && len(set) == 0 {
		delete(s.sets, key)
	}
}

// SMembers returns set members in lexical order.
func (s *Store) SMembers(_ context.Context, key string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.sets[key]))
	for m := range s.sets[key] {
		out = append(out, m)
	}
	slices.Sort(out)
	return out, nil
}

// SetAndAppend applies set, append and index add under one lock.
func (s *Store) SetAndAppend(
	_ context.Context, key string, value []byte, listKey string, entry []byte, setKey, member string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = bytes.Clone(value)
	s.rpush(listKey, entry)
	s.sadd(setKey, member)
	return nil
}

// DeleteAndRemove deletes keys and drops the index member under one lock.
func (s *Store) DeleteAndRemove(_ context.Context, keys []string, setKey, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.del(keys)
	s.srem(setKey, member)
	return nil
}
