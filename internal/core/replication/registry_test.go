package replication

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAuthenticationGate(t *testing.T) {
	registry := NewConnectionRegistry(StaticAuthenticator{Username: "charlie", Password: "12345"})

	key := registry.Accept("127.0.0.1:5000")
	ok := registry.Authenticate(key, Credential{Username: "charlie", Password: "12345"})
	require.True(t, ok)

	user, found := registry.Get(key)
	require.True(t, found)
	assert.True(t, user.Authenticated)
	assert.Equal(t, "127.0.0.1:5000", user.Address)
}

func TestRegistryRejectionLeavesNoRecord(t *testing.T) {
	registry := NewConnectionRegistry(StaticAuthenticator{Username: "charlie", Password: "12345"})

	key := registry.Accept("127.0.0.1:5000")
	ok := registry.Authenticate(key, Credential{Username: "charlie", Password: "wrong"})
	assert.False(t, ok)

	// A failed gate must not leave a half-initialized user behind.
	_, found := registry.Get(key)
	assert.False(t, found)
	assert.Equal(t, 0, registry.Count())
}

func TestRegistryRemoveIsIdempotent(t *testing.T) {
	registry := NewConnectionRegistry(StaticAuthenticator{Username: "charlie", Password: "12345"})

	key := registry.Accept("127.0.0.1:5000")
	registry.Remove(key)
	registry.Remove(key)

	assert.Equal(t, 0, registry.Count())

	// Authenticating a removed user fails without recreating it.
	assert.False(t, registry.Authenticate(key, Credential{Username: "charlie", Password: "12345"}))
	assert.Equal(t, 0, registry.Count())
}

func TestSpawnPointStaysOnGridWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		p := SpawnPoint(rng, i)
		assert.Zero(t, p.X%EntitySize)
		assert.Zero(t, p.Y%EntitySize)
		assert.LessOrEqual(t, p.X, uint16(MaxX))
		assert.LessOrEqual(t, p.Y, uint16(MaxY))
	}
}

func TestSpawnPointColorCycles(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	assert.Equal(t, ColorRed, SpawnPoint(rng, 1).Color)
	assert.Equal(t, ColorBlue, SpawnPoint(rng, 2).Color)
	assert.Equal(t, ColorYellow, SpawnPoint(rng, 3).Color)
	assert.Equal(t, ColorRed, SpawnPoint(rng, 4).Color)
}
