package server

import (
	"math/rand"
	"sort"
	"time"

	"github.com/pointsync/pointsync/internal/core/manifest"
	"github.com/pointsync/pointsync/internal/core/observability/log"
	"github.com/pointsync/pointsync/internal/core/replication"
)

// world is the authoritative replicated state: registry, rooms,
// entities, and pawn bindings. It is owned exclusively by the event
// loop; every mutation happens from a single goroutine, so no component
// below it needs locking.
type world struct {
	registry *replication.ConnectionRegistry
	rooms    *replication.RoomManager
	entities *replication.Store
	pawns    *replication.PawnTable
	router   *replication.Router
	mainRoom replication.RoomKey

	rng         *rand.Rand
	destroyPawn bool
	logger      log.Log
}

func newWorld(config Config, auth replication.Authenticator, scope replication.ScopePredicate, logger log.Log) *world {
	rooms := replication.NewRoomManager(scope)
	entities := replication.NewStore()
	pawns := replication.NewPawnTable()
	movement := replication.Movement{Step: config.MoveStep}

	return &world{
		registry:    replication.NewConnectionRegistry(auth),
		rooms:       rooms,
		entities:    entities,
		pawns:       pawns,
		router:      replication.NewRouter(pawns, entities, movement, logger),
		mainRoom:    rooms.CreateRoom(),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		destroyPawn: config.DestroyPawnOnDisconnect,
		logger:      logger,
	}
}

// admit runs the admission chain for a new connection: registry accept,
// authentication gate, room membership, pawn spawn and binding. A
// failed authentication leaves no trace.
func (w *world) admit(address string, cred replication.Credential) (replication.UserKey, bool) {
	userKey := w.registry.Accept(address)
	if !w.registry.Authenticate(userKey, cred) {
		w.logger.Warn("Rejected unauthenticated connection",
			log.String("remote_addr", address))
		return "", false
	}

	w.rooms.AddUser(w.mainRoom, userKey)

	pawn := replication.SpawnPoint(w.rng, w.registry.Count())
	entityKey := w.entities.Register(pawn)
	w.rooms.AddEntity(w.mainRoom, entityKey)
	w.pawns.Assign(userKey, entityKey)

	w.logger.Info("User connected",
		log.String("remote_addr", address),
		log.String("user_key", string(userKey)),
		log.String("entity_key", string(entityKey)),
		log.Uint16("x", pawn.X),
		log.Uint16("y", pawn.Y),
		log.String("color", pawn.Color.String()))

	return userKey, true
}

// disconnect reverses the admission chain. Cleanup may fire from more
// than one event source, so every step is idempotent.
func (w *world) disconnect(user replication.UserKey) {
	w.rooms.RemoveUserEverywhere(user)

	if pawn, ok := w.pawns.Lookup(user); ok {
		w.pawns.Unassign(user, pawn)
		if w.destroyPawn {
			w.rooms.RemoveEntityEverywhere(pawn)
			w.entities.Deregister(pawn)
		}
	}

	w.registry.Remove(user)
}

// command routes one inbound command. Reports whether it was applied.
func (w *world) command(user replication.UserKey, target replication.EntityKey, cmd replication.Command) bool {
	return w.router.Route(user, target, cmd)
}

// snapshotFor builds the batched update a user should see this tick:
// its scoped entity set, serialized in stable key order.
func (w *world) snapshotFor(user replication.UserKey, tick uint64) (manifest.UpdateBatch, bool) {
	u, ok := w.registry.Get(user)
	if !ok || !u.Authenticated {
		return manifest.UpdateBatch{}, false
	}

	visible := w.rooms.ScopedEntitiesFor(user, w.entities)
	batch := manifest.UpdateBatch{
		Tick:     tick,
		Entities: make([]manifest.EntityState, 0, len(visible)),
	}
	for key, entity := range visible {
		batch.Entities = append(batch.Entities, manifest.SnapshotEntity(key, entity))
	}
	sort.Slice(batch.Entities, func(i, j int) bool {
		return batch.Entities[i].Key < batch.Entities[j].Key
	})
	return batch, true
}
