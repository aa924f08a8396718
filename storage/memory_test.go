package storage_test

import (
	"context"
	"testing"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/storage"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/storage/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storage.Store {
		return storage.NewMemoryStore()
	})
}

func TestMemoryStore_ReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()

	value := []byte(`{"a":1}`)
	_, err := s.Put(ctx, "k", value)
	require.NoError(t, err)
	value[0] = 'X'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	got.Value[1] = 'Y'

	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(again.Value))
	assert.Equal(t, 1, s.Len())
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := storage.NewMemoryStore()
	_, err := s.Put(ctx, "k", []byte(`{}`))
	assert.ErrorIs(t, err, context.Canceled)
}
