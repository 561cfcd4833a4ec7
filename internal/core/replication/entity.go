package replication

// Kind is the closed set of entity variants known to the server.
// Dispatch over Kind must be exhaustive; adding a variant means
// extending every switch that consumes it.
type Kind uint8

const (
	KindPoint Kind = iota
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Color is the enumerated color of a point entity.
type Color uint8

const (
	ColorYellow Color = iota
	ColorRed
	ColorBlue
)

func (c Color) String() string {
	switch c {
	case ColorYellow:
		return "yellow"
	case ColorRed:
		return "red"
	case ColorBlue:
		return "blue"
	default:
		return "unknown"
	}
}

// Entity is a replicated entity value. Concrete variants are pointer
// types so that mutation through the store is visible to the next
// broadcast.
type Entity interface {
	Kind() Kind
}

// PointEntity is the single entity variant of this server: a colored
// square positioned on the world plane.
type PointEntity struct {
	X     uint16
	Y     uint16
	Color Color
}

func (*PointEntity) Kind() Kind { return KindPoint }

// Store owns the mutable state of every live entity and hands out
// stable keys for cross-component references. It is not safe for
// concurrent use; the event loop is its only caller.
type Store struct {
	entities map[EntityKey]Entity
}

// NewStore creates an empty entity store.
func NewStore() *Store {
	return &Store{entities: make(map[EntityKey]Entity)}
}

// Register takes ownership of an entity and returns its fresh key.
func (s *Store) Register(e Entity) EntityKey {
	key := GenerateEntityKey()
	s.entities[key] = e
	return key
}

// Deregister releases an entity. Deregistering an absent key is a no-op.
func (s *Store) Deregister(key EntityKey) {
	delete(s.entities, key)
}

// Get returns the entity registered under key. Mutating the returned
// value mutates the stored state.
func (s *Store) Get(key EntityKey) (Entity, bool) {
	e, ok := s.entities[key]
	return e, ok
}

// Len reports the number of live entities.
func (s *Store) Len() int {
	return len(s.entities)
}

// Range calls fn for every live entity until fn returns false.
func (s *Store) Range(fn func(EntityKey, Entity) bool) {
	for key, e := range s.entities {
		if !fn(key, e) {
			return
		}
	}
}
