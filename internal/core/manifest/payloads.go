package manifest

import "github.com/pointsync/pointsync/internal/core/replication"

// AuthPayload is the first message a client must send: its credential.
type AuthPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Credential converts the payload to the core credential value.
func (p *AuthPayload) Credential() replication.Credential {
	return replication.Credential{Username: p.Username, Password: p.Password}
}

// CommandPayload targets one entity with a directional key sample.
type CommandPayload struct {
	Entity string `json:"entity"`
	Up     bool   `json:"up"`
	Left   bool   `json:"left"`
	Down   bool   `json:"down"`
	Right  bool   `json:"right"`
}

// Target returns the entity key the command names.
func (p *CommandPayload) Target() replication.EntityKey {
	return replication.EntityKey(p.Entity)
}

// Command converts the payload to the core command value.
func (p *CommandPayload) Command() *replication.KeyCommand {
	return &replication.KeyCommand{Up: p.Up, Left: p.Left, Down: p.Down, Right: p.Right}
}

// EntityState is the serialized snapshot of one entity.
type EntityState struct {
	Key   string `json:"key"`
	Kind  uint8  `json:"kind"`
	X     uint16 `json:"x"`
	Y     uint16 `json:"y"`
	Color uint8  `json:"color"`
}

// SnapshotEntity serializes an entity by kind. The switch is exhaustive
// over the closed kind set.
func SnapshotEntity(key replication.EntityKey, e replication.Entity) EntityState {
	switch v := e.(type) {
	case *replication.PointEntity:
		return EntityState{
			Key:   string(key),
			Kind:  uint8(replication.KindPoint),
			X:     v.X,
			Y:     v.Y,
			Color: uint8(v.Color),
		}
	default:
		return EntityState{Key: string(key), Kind: uint8(e.Kind())}
	}
}

// HeartbeatPayload keeps an otherwise idle connection alive. Receipt is
// all that matters; it carries no fields.
type HeartbeatPayload struct{}

// UpdateBatch is the per-user state broadcast for one tick.
type UpdateBatch struct {
	Tick     uint64        `json:"tick"`
	Entities []EntityState `json:"entities"`
}
