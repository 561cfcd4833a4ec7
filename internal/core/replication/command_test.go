package replication

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pointsync/pointsync/internal/core/observability/log"
)

func newTestRouter(t *testing.T) (*Router, *PawnTable, *Store) {
	t.Helper()
	pawns := NewPawnTable()
	store := NewStore()
	router := NewRouter(pawns, store, DefaultMovement(), log.NewNop())
	return router, pawns, store
}

func TestRouteAppliesKeyCommand(t *testing.T) {
	router, pawns, store := newTestRouter(t)

	user := GenerateUserKey()
	entity := &PointEntity{X: 100, Y: 100}
	key := store.Register(entity)
	pawns.Assign(user, key)

	applied := router.Route(user, key, &KeyCommand{Right: true})
	require.True(t, applied)
	assert.Equal(t, uint16(108), entity.X)
	assert.Equal(t, uint16(100), entity.Y)
}

func TestRouteRejectsUnboundTarget(t *testing.T) {
	router, pawns, store := newTestRouter(t)

	user := GenerateUserKey()
	own := store.Register(&PointEntity{X: 50, Y: 50})
	other := store.Register(&PointEntity{X: 60, Y: 60})
	pawns.Assign(user, own)

	// Command targets an entity the user does not control: no state
	// change anywhere.
	applied := router.Route(user, other, &KeyCommand{Right: true})
	assert.False(t, applied)

	ownEntity, _ := store.Get(own)
	otherEntity, _ := store.Get(other)
	assert.Equal(t, &PointEntity{X: 50, Y: 50}, ownEntity)
	assert.Equal(t, &PointEntity{X: 60, Y: 60}, otherEntity)
}

func TestRouteRejectsUserWithoutPawn(t *testing.T) {
	router, _, store := newTestRouter(t)

	entity := store.Register(&PointEntity{X: 50, Y: 50})
	applied := router.Route(GenerateUserKey(), entity, &KeyCommand{Up: true})
	assert.False(t, applied)

	got, _ := store.Get(entity)
	assert.Equal(t, &PointEntity{X: 50, Y: 50}, got)
}

func TestRouteCommandsApplyInArrivalOrder(t *testing.T) {
	router, pawns, store := newTestRouter(t)

	user := GenerateUserKey()
	entity := &PointEntity{X: 100, Y: 100}
	key := store.Register(entity)
	pawns.Assign(user, key)

	// Three commands in one tick: each applies, no coalescing.
	router.Route(user, key, &KeyCommand{Right: true})
	router.Route(user, key, &KeyCommand{Right: true})
	router.Route(user, key, &KeyCommand{Down: true})

	assert.Equal(t, uint16(116), entity.X)
	assert.Equal(t, uint16(108), entity.Y)
}

func TestMovementClampsToWorldBounds(t *testing.T) {
	movement := DefaultMovement()

	tests := []struct {
		name  string
		start PointEntity
		cmd   KeyCommand
		wantX uint16
		wantY uint16
	}{
		{"left edge", PointEntity{X: 4, Y: 100}, KeyCommand{Left: true}, 0, 100},
		{"top edge", PointEntity{X: 100, Y: 4}, KeyCommand{Up: true}, 100, 0},
		{"right edge", PointEntity{X: MaxX - 4, Y: 100}, KeyCommand{Right: true}, MaxX, 100},
		{"bottom edge", PointEntity{X: 100, Y: MaxY - 4}, KeyCommand{Down: true}, 100, MaxY},
		{"at origin", PointEntity{}, KeyCommand{Up: true, Left: true}, 0, 0},
		{"diagonal", PointEntity{X: 100, Y: 100}, KeyCommand{Down: true, Right: true}, 108, 108},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.start
			movement.Apply(&tt.cmd, &p)
			assert.Equal(t, tt.wantX, p.X)
			assert.Equal(t, tt.wantY, p.Y)
		})
	}
}
