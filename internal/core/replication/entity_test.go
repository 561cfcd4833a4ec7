package replication

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRegisterAndGet(t *testing.T) {
	store := NewStore()

	entity := &PointEntity{X: 10, Y: 20, Color: ColorRed}
	key := store.Register(entity)

	got, ok := store.Get(key)
	require.True(t, ok)
	assert.Same(t, entity, got.(*PointEntity))
	assert.Equal(t, 1, store.Len())
}

func TestStoreKeysAreUnique(t *testing.T) {
	store := NewStore()

	seen := make(map[EntityKey]struct{})
	for i := 0; i < 100; i++ {
		key := store.Register(&PointEntity{})
		_, dup := seen[key]
		require.False(t, dup, "key %q issued twice", key)
		seen[key] = struct{}{}
	}
}

func TestStoreDeregisterIsIdempotent(t *testing.T) {
	store := NewStore()

	key := store.Register(&PointEntity{})
	store.Deregister(key)
	store.Deregister(key)

	_, ok := store.Get(key)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestStoreMutationThroughGet(t *testing.T) {
	store := NewStore()

	key := store.Register(&PointEntity{X: 0, Y: 0})

	got, ok := store.Get(key)
	require.True(t, ok)
	got.(*PointEntity).X = 42

	again, _ := store.Get(key)
	assert.Equal(t, uint16(42), again.(*PointEntity).X)
}
