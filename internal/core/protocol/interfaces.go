package protocol

import (
	"context"
	"errors"
	"net"
)

var (
	ErrTransportClosed  = errors.New("transport is closed")
	ErrConnectionClosed = errors.New("connection is closed")
	ErrNotListening     = errors.New("transport is not listening")
)

// Transport accepts inbound connections on a listening address. It is
// the session layer's only view of the network.
type Transport interface {
	// Listen binds the transport to an address. Listen may be called
	// once per transport.
	Listen(ctx context.Context, address string) error

	// Accept blocks until the next inbound connection arrives, the
	// context is done, or the transport closes.
	Accept(ctx context.Context) (Connection, error)

	// Addr returns the bound address after Listen.
	Addr() net.Addr

	// Kind reports the underlying transport protocol.
	Kind() TransportKind

	Close() error
}

// Connection is one framed, bidirectional message channel to a client.
// Send and Receive carry whole messages; framing is the transport's
// concern.
type Connection interface {
	ID() ConnectionID
	RemoteAddr() net.Addr

	// Send writes one message. Safe for concurrent use.
	Send(data []byte) error

	// Receive blocks for the next inbound message. The context deadline
	// bounds the wait; a deadline exceeded error means no traffic, not
	// a broken connection.
	Receive(ctx context.Context) ([]byte, error)

	IsClosed() bool
	Close() error
}
