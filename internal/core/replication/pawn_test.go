package replication

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPawnAssignOverwrites(t *testing.T) {
	table := NewPawnTable()

	user := GenerateUserKey()
	e1 := GenerateEntityKey()
	e2 := GenerateEntityKey()

	table.Assign(user, e1)
	table.Assign(user, e2)

	bound, ok := table.Lookup(user)
	require.True(t, ok)
	assert.Equal(t, e2, bound)

	// e1 is no longer bound to anyone.
	_, ok = table.Owner(e1)
	assert.False(t, ok)
}

func TestPawnStaleUnassignIsNoOp(t *testing.T) {
	table := NewPawnTable()

	user := GenerateUserKey()
	e1 := GenerateEntityKey()
	e2 := GenerateEntityKey()

	table.Assign(user, e1)
	table.Assign(user, e2)

	// Unassigning the stale pair must not clobber the newer binding.
	table.Unassign(user, e1)

	bound, ok := table.Lookup(user)
	require.True(t, ok)
	assert.Equal(t, e2, bound)

	table.Unassign(user, e2)
	_, ok = table.Lookup(user)
	assert.False(t, ok)
}

func TestPawnEntityBoundAtMostOnce(t *testing.T) {
	table := NewPawnTable()

	alice := GenerateUserKey()
	bob := GenerateUserKey()
	entity := GenerateEntityKey()

	table.Assign(alice, entity)
	table.Assign(bob, entity)

	owner, ok := table.Owner(entity)
	require.True(t, ok)
	assert.Equal(t, bob, owner)

	_, ok = table.Lookup(alice)
	assert.False(t, ok)
}
