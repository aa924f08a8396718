// Package storetest holds the behaviour every storage.Store backend must share.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises newStore against the storage.Store contract.
// newStore must return an empty store for each call.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(context.Background(), "account/nobody")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("PutBumpsVersion", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		rec, err := s.Put(ctx, "k", []byte(`{"n":1}`))
		require.NoError(t, err)
		assert.Equal(t, int64(1), rec.Version)

		rec, err = s.Put(ctx, "k", []byte(`{"n":2}`))
		require.NoError(t, err)
		assert.Equal(t, int64(2), rec.Version)

		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Version)
		assert.JSONEq(t, `{"n":2}`, string(got.Value))
	})

	t.Run("CreateIfAbsent", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		rec, err := s.CompareAndSwap(ctx, "k", 0, []byte(`{"v":"a"}`))
		require.NoError(t, err)
		assert.Equal(t, int64(1), rec.Version)

		_, err = s.CompareAndSwap(ctx, "k", 0, []byte(`{"v":"b"}`))
		assert.ErrorIs(t, err, storage.ErrVersionConflict)

		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":"a"}`, string(got.Value))
	})

	t.Run("CompareAndSwapVersionCheck", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		_, err := s.CompareAndSwap(ctx, "missing", 3, []byte(`{}`))
		assert.ErrorIs(t, err, storage.ErrVersionConflict)

		first, err := s.Put(ctx, "k", []byte(`{"v":1}`))
		require.NoError(t, err)

		second, err := s.CompareAndSwap(ctx, "k", first.Version, []byte(`{"v":2}`))
		require.NoError(t, err)
		assert.Equal(t, first.Version+1, second.Version)

		_, err = s.CompareAndSwap(ctx, "k", first.Version, []byte(`{"v":3}`))
		assert.ErrorIs(t, err, storage.ErrVersionConflict)

		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.JSONEq(t, `{"v":2}`, string(got.Value))
	})

	t.Run("ListByPrefix", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		for _, key := range []string{"match/b", "match/a", "account/a", "match_x"} {
			_, err := s.Put(ctx, key, []byte(`{}`))
			require.NoError(t, err)
		}

		recs, err := s.List(ctx, "match/")
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, "match/a", recs[0].Key)
		assert.Equal(t, "match/b", recs[1].Key)

		none, err := s.List(ctx, "dispute/")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("ConcurrentCompareAndSwapSingleWinner", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		base, err := s.Put(ctx, "contended", []byte(`{"owner":""}`))
		require.NoError(t, err)

		const writers = 16
		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				value := []byte(fmt.Sprintf(`{"owner":"w%d"}`, i))
				if _, err := s.CompareAndSwap(ctx, "contended", base.Version, value); err == nil {
					wins.Add(1)
				}
			}(i)
		}
		wg.Wait()

		assert.Equal(t, int32(1), wins.Load())
		got, err := s.Get(ctx, "contended")
		require.NoError(t, err)
		assert.Equal(t, base.Version+1, got.Version)
	})
}
