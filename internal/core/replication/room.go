package replication

// ScopePredicate decides whether an entity is visible to a user. It is
// consulted after room membership and is the final authority: an entity
// it rejects is never sent, shared room or not.
type ScopePredicate interface {
	IsVisible(user UserKey, entity Entity) bool
}

// VisibleKinds is the default scope policy: every entity of a known
// kind is visible to every user.
type VisibleKinds struct{}

func (VisibleKinds) IsVisible(_ UserKey, entity Entity) bool {
	switch entity.Kind() {
	case KindPoint:
		return true
	default:
		return false
	}
}

type room struct {
	users    map[UserKey]struct{}
	entities map[EntityKey]struct{}
}

// RoomManager groups users and entities into visibility scopes. All
// membership operations are idempotent set operations.
type RoomManager struct {
	rooms map[RoomKey]*room
	scope ScopePredicate
}

// NewRoomManager creates a room manager with the given scope policy.
func NewRoomManager(scope ScopePredicate) *RoomManager {
	return &RoomManager{
		rooms: make(map[RoomKey]*room),
		scope: scope,
	}
}

// CreateRoom creates an empty room and returns its key.
func (m *RoomManager) CreateRoom() RoomKey {
	key := GenerateRoomKey()
	m.rooms[key] = &room{
		users:    make(map[UserKey]struct{}),
		entities: make(map[EntityKey]struct{}),
	}
	return key
}

// AddUser admits a user to a room. Adding a present member is a no-op.
func (m *RoomManager) AddUser(roomKey RoomKey, user UserKey) {
	if r, ok := m.rooms[roomKey]; ok {
		r.users[user] = struct{}{}
	}
}

// RemoveUser removes a user from a room. Removing an absent member is a
// no-op.
func (m *RoomManager) RemoveUser(roomKey RoomKey, user UserKey) {
	if r, ok := m.rooms[roomKey]; ok {
		delete(r.users, user)
	}
}

// AddEntity admits an entity to a room. Idempotent.
func (m *RoomManager) AddEntity(roomKey RoomKey, entity EntityKey) {
	if r, ok := m.rooms[roomKey]; ok {
		r.entities[entity] = struct{}{}
	}
}

// RemoveEntity removes an entity from a room. Idempotent.
func (m *RoomManager) RemoveEntity(roomKey RoomKey, entity EntityKey) {
	if r, ok := m.rooms[roomKey]; ok {
		delete(r.entities, entity)
	}
}

// RemoveUserEverywhere removes a user from every room. Cleanup paths may
// fire more than once, so this must stay idempotent.
func (m *RoomManager) RemoveUserEverywhere(user UserKey) {
	for _, r := range m.rooms {
		delete(r.users, user)
	}
}

// RemoveEntityEverywhere removes an entity from every room. Idempotent.
func (m *RoomManager) RemoveEntityEverywhere(entity EntityKey) {
	for _, r := range m.rooms {
		delete(r.entities, entity)
	}
}

// UserCount reports the number of users in a room.
func (m *RoomManager) UserCount(roomKey RoomKey) int {
	if r, ok := m.rooms[roomKey]; ok {
		return len(r.users)
	}
	return 0
}

// ContainsUser reports whether a room has the user as a member.
func (m *RoomManager) ContainsUser(roomKey RoomKey, user UserKey) bool {
	r, ok := m.rooms[roomKey]
	if !ok {
		return false
	}
	_, member := r.users[user]
	return member
}

// ScopedEntitiesFor computes the set of entity keys visible to a user:
// the union of entity members over every room the user belongs to,
// filtered through the scope predicate.
func (m *RoomManager) ScopedEntitiesFor(user UserKey, store *Store) map[EntityKey]Entity {
	visible := make(map[EntityKey]Entity)
	for _, r := range m.rooms {
		if _, member := r.users[user]; !member {
			continue
		}
		for key := range r.entities {
			if _, seen := visible[key]; seen {
				continue
			}
			e, ok := store.Get(key)
			if !ok {
				continue
			}
			if m.scope.IsVisible(user, e) {
				visible[key] = e
			}
		}
	}
	return visible
}
