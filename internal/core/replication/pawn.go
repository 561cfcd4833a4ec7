package replication

// PawnTable maps each user to the single entity it controls. An entity
// key appears in at most one binding at a time.
type PawnTable struct {
	byUser   map[UserKey]EntityKey
	byEntity map[EntityKey]UserKey
}

// NewPawnTable creates an empty pawn table.
func NewPawnTable() *PawnTable {
	return &PawnTable{
		byUser:   make(map[UserKey]EntityKey),
		byEntity: make(map[EntityKey]UserKey),
	}
}

// Assign binds a user to an entity, replacing the user's previous
// binding. If the entity was bound to another user, that binding is
// dropped so the one-binding-per-entity invariant holds. Previously
// bound entities stay in the store, now unowned.
func (t *PawnTable) Assign(user UserKey, entity EntityKey) {
	if prev, ok := t.byUser[user]; ok {
		delete(t.byEntity, prev)
	}
	if prevOwner, ok := t.byEntity[entity]; ok {
		delete(t.byUser, prevOwner)
	}
	t.byUser[user] = entity
	t.byEntity[entity] = user
}

// Unassign removes a binding only if it currently maps exactly this
// user/entity pair. A stale unassign never clobbers a newer binding.
func (t *PawnTable) Unassign(user UserKey, entity EntityKey) {
	if current, ok := t.byUser[user]; ok && current == entity {
		delete(t.byUser, user)
		delete(t.byEntity, entity)
	}
}

// Lookup returns the entity the user currently controls.
func (t *PawnTable) Lookup(user UserKey) (EntityKey, bool) {
	entity, ok := t.byUser[user]
	return entity, ok
}

// Owner returns the user controlling an entity.
func (t *PawnTable) Owner(entity EntityKey) (UserKey, bool) {
	user, ok := t.byEntity[entity]
	return user, ok
}
