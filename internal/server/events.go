package server

import "github.com/pointsync/pointsync/internal/core/replication"

// eventKind enumerates the events the loop consumes. The set is closed;
// handleEvent dispatches exhaustively over it.
type eventKind uint8

const (
	eventConnect eventKind = iota
	eventDisconnect
	eventCommand
	eventTick
	eventProtocolError
)

// event is one unit of work for the event loop. All events from all
// sources funnel through a single channel, which is what gives the
// world its strict arrival-order processing: every command received
// before a tick event is applied before that tick's snapshot.
type event struct {
	kind eventKind

	// connect
	sess     *session
	cred     replication.Credential
	accepted chan bool

	// disconnect, command, protocol error
	user replication.UserKey

	// command
	target  replication.EntityKey
	command replication.Command

	// protocol error
	err error
}
