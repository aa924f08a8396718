package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. A single mutex serializes every write,
// which makes each key linearizable.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return Record{}, ErrNotFound
	}
	return clone(rec), nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, value []byte) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := Record{
		Key:       key,
		Version:   s.records[key].Version + 1,
		Value:     append([]byte(nil), value...),
		UpdatedAt: s.now(),
	}
	s.records[key] = rec
	return clone(rec), nil
}

func (s *MemoryStore) CompareAndSwap(ctx context.Context, key string, expectedVersion int64, value []byte) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.records[key]
	switch {
	case expectedVersion == 0 && exists:
		return Record{}, ErrVersionConflict
	case expectedVersion != 0 && (!exists || current.Version != expectedVersion):
		return Record{}, ErrVersionConflict
	}

	rec := Record{
		Key:       key,
		Version:   expectedVersion + 1,
		Value:     append([]byte(nil), value...),
		UpdatedAt: s.now(),
	}
	s.records[key] = rec
	return clone(rec), nil
}

func (s *MemoryStore) List(ctx context.Context, prefix string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]Record, 0)
	for key, rec := range s.records {
		if strings.HasPrefix(key, prefix) {
			out = append(out, clone(rec))
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Len returns the number of stored keys
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func clone(rec Record) Record {
	rec.Value = append([]byte(nil), rec.Value...)
	return rec
}
