package protocol

import "github.com/google/uuid"

// ConnectionID identifies one transport connection.
type ConnectionID string

// GenerateConnectionID generates a unique connection ID.
func GenerateConnectionID() ConnectionID {
	return ConnectionID(uuid.NewString())
}

// TransportKind selects the underlying transport protocol.
type TransportKind string

const (
	TransportWebSocket TransportKind = "websocket"
	TransportQUIC      TransportKind = "quic"
)
