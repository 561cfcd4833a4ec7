package replication

import "github.com/pointsync/pointsync/internal/core/observability/log"

// CommandKind is the closed set of command variants.
type CommandKind uint8

const (
	CommandKindKey CommandKind = iota
)

func (k CommandKind) String() string {
	switch k {
	case CommandKindKey:
		return "key"
	default:
		return "unknown"
	}
}

// Command is an ephemeral per-entity message from a user. It is
// consumed by the router and never retained.
type Command interface {
	CommandKind() CommandKind
}

// KeyCommand carries the directional press flags of one input sample.
type KeyCommand struct {
	Up    bool
	Left  bool
	Down  bool
	Right bool
}

func (*KeyCommand) CommandKind() CommandKind { return CommandKindKey }

// Router delivers inbound commands to the entity they target, after
// verifying the sender's pawn binding permits it.
type Router struct {
	pawns    *PawnTable
	store    *Store
	movement Movement
	logger   log.Log
}

// NewRouter creates a command router over the given tables.
func NewRouter(pawns *PawnTable, store *Store, movement Movement, logger log.Log) *Router {
	return &Router{
		pawns:    pawns,
		store:    store,
		movement: movement,
		logger:   logger,
	}
}

// Route applies a command to its target entity. A command naming an
// entity other than the sender's current pawn is dropped without any
// state change; input is best-effort, so the drop is silent apart from
// a warning. Reports whether the command was applied.
func (r *Router) Route(user UserKey, target EntityKey, cmd Command) bool {
	bound, ok := r.pawns.Lookup(user)
	if !ok || bound != target {
		r.logger.Warn("dropping command for unbound entity",
			log.String("user_key", string(user)),
			log.String("entity_key", string(target)))
		return false
	}

	entity, ok := r.store.Get(target)
	if !ok {
		r.logger.Warn("dropping command for missing entity",
			log.String("entity_key", string(target)))
		return false
	}

	switch c := cmd.(type) {
	case *KeyCommand:
		switch e := entity.(type) {
		case *PointEntity:
			r.movement.Apply(c, e)
			return true
		default:
			return false
		}
	default:
		r.logger.Warn("dropping command of unknown kind",
			log.String("kind", cmd.CommandKind().String()))
		return false
	}
}
