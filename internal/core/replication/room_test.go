package replication

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomMembershipIsSetSemantics(t *testing.T) {
	m := NewRoomManager(VisibleKinds{})
	roomKey := m.CreateRoom()

	alice := GenerateUserKey()
	bob := GenerateUserKey()

	// Duplicate adds are no-ops.
	m.AddUser(roomKey, alice)
	m.AddUser(roomKey, alice)
	m.AddUser(roomKey, bob)
	assert.Equal(t, 2, m.UserCount(roomKey))

	// Removing an absent member is a no-op.
	m.RemoveUser(roomKey, GenerateUserKey())
	assert.Equal(t, 2, m.UserCount(roomKey))

	m.RemoveUser(roomKey, alice)
	m.RemoveUser(roomKey, alice)
	assert.Equal(t, 1, m.UserCount(roomKey))
	assert.False(t, m.ContainsUser(roomKey, alice))
	assert.True(t, m.ContainsUser(roomKey, bob))
}

func TestRoomOperationsOnUnknownRoomAreNoOps(t *testing.T) {
	m := NewRoomManager(VisibleKinds{})

	unknown := GenerateRoomKey()
	m.AddUser(unknown, GenerateUserKey())
	m.RemoveUser(unknown, GenerateUserKey())
	m.AddEntity(unknown, GenerateEntityKey())
	m.RemoveEntity(unknown, GenerateEntityKey())

	assert.Equal(t, 0, m.UserCount(unknown))
}

func TestScopedEntitiesUnionAcrossRooms(t *testing.T) {
	m := NewRoomManager(VisibleKinds{})
	store := NewStore()

	roomA := m.CreateRoom()
	roomB := m.CreateRoom()
	user := GenerateUserKey()

	e1 := store.Register(&PointEntity{X: 1})
	e2 := store.Register(&PointEntity{X: 2})
	e3 := store.Register(&PointEntity{X: 3})

	m.AddUser(roomA, user)
	m.AddUser(roomB, user)
	m.AddEntity(roomA, e1)
	// e2 is in both rooms; the union must not duplicate it.
	m.AddEntity(roomA, e2)
	m.AddEntity(roomB, e2)

	// e3 shares no room with the user.
	otherRoom := m.CreateRoom()
	m.AddEntity(otherRoom, e3)

	visible := m.ScopedEntitiesFor(user, store)
	assert.Len(t, visible, 2)
	assert.Contains(t, visible, e1)
	assert.Contains(t, visible, e2)
	assert.NotContains(t, visible, e3)
}

// denyAll rejects every entity regardless of room membership.
type denyAll struct{}

func (denyAll) IsVisible(UserKey, Entity) bool { return false }

func TestScopePredicateIsFinalAuthority(t *testing.T) {
	m := NewRoomManager(denyAll{})
	store := NewStore()

	roomKey := m.CreateRoom()
	user := GenerateUserKey()
	entity := store.Register(&PointEntity{})

	m.AddUser(roomKey, user)
	m.AddEntity(roomKey, entity)

	// Shared room membership alone does not make an entity visible.
	assert.Empty(t, m.ScopedEntitiesFor(user, store))
}

func TestScopedEntitiesSkipsDeregisteredEntities(t *testing.T) {
	m := NewRoomManager(VisibleKinds{})
	store := NewStore()

	roomKey := m.CreateRoom()
	user := GenerateUserKey()
	entity := store.Register(&PointEntity{})

	m.AddUser(roomKey, user)
	m.AddEntity(roomKey, entity)
	store.Deregister(entity)

	assert.Empty(t, m.ScopedEntitiesFor(user, store))
}
