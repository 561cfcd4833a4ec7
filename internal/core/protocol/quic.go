package protocol

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quic-go/quic-go"

	"github.com/pointsync/pointsync/internal/core/observability/log"
)

var _ Transport = (*QUICTransport)(nil)

// QUICTransport serves connections over QUIC with a self-signed
// certificate. Each connection multiplexes all traffic over one
// bidirectional stream with 4-byte length framing.
type QUICTransport struct {
	listener   *quic.Listener
	quicConfig *quic.Config

	listening int32
	closed    int32
	mu        sync.Mutex

	logger log.Log
}

// NewQUICTransport creates an unbound QUIC transport.
func NewQUICTransport(logger log.Log) *QUICTransport {
	return &QUICTransport{
		quicConfig: &quic.Config{
			MaxIdleTimeout:     30 * time.Second,
			MaxIncomingStreams: 1000,
			KeepAlivePeriod:    15 * time.Second,
		},
		logger: logger.With(log.String("transport", "quic")),
	}
}

func (t *QUICTransport) Kind() TransportKind { return TransportQUIC }

func (t *QUICTransport) Listen(_ context.Context, address string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !atomic.CompareAndSwapInt32(&t.listening, 0, 1) {
		return errors.New("transport already listening")
	}

	tlsConfig, err := generateTLSConfig()
	if err != nil {
		atomic.StoreInt32(&t.listening, 0)
		return err
	}

	listener, err := quic.ListenAddr(address, tlsConfig, t.quicConfig)
	if err != nil {
		atomic.StoreInt32(&t.listening, 0)
		return err
	}

	t.listener = listener
	t.logger.Info("Transport listening", log.String("addr", listener.Addr().String()))
	return nil
}

func (t *QUICTransport) Accept(ctx context.Context) (Connection, error) {
	if atomic.LoadInt32(&t.listening) == 0 {
		return nil, ErrNotListening
	}
	if atomic.LoadInt32(&t.closed) == 1 {
		return nil, ErrTransportClosed
	}

	conn, err := t.listener.Accept(ctx)
	if err != nil {
		return nil, err
	}
	return newQUICConnection(conn), nil
}

func (t *QUICTransport) Addr() net.Addr {
	if t.listener == nil {
		return nil
	}
	return t.listener.Addr()
}

func (t *QUICTransport) Close() error {
	if !atomic.CompareAndSwapInt32(&t.closed, 0, 1) {
		return nil
	}
	if t.listener != nil {
		return t.listener.Close()
	}
	return nil
}

var _ Connection = (*quicConnection)(nil)

type quicConnection struct {
	id   ConnectionID
	conn *quic.Conn

	// The single bidirectional stream, accepted lazily on first read
	// and opened lazily on first write.
	stream   *quic.Stream
	streamMu sync.Mutex

	writeMu sync.Mutex
	closed  int32
}

func newQUICConnection(conn *quic.Conn) *quicConnection {
	return &quicConnection{
		id:   GenerateConnectionID(),
		conn: conn,
	}
}

func (c *quicConnection) ID() ConnectionID     { return c.id }
func (c *quicConnection) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }
func (c *quicConnection) IsClosed() bool       { return atomic.LoadInt32(&c.closed) == 1 }

func (c *quicConnection) getStream(ctx context.Context) (*quic.Stream, error) {
	c.streamMu.Lock()
	defer c.streamMu.Unlock()

	if c.stream != nil {
		return c.stream, nil
	}

	// The client opens the stream with its auth message, and the session
	// layer always reads that before sending anything, so the accept
	// here resolves before the first Send needs the stream.
	stream, err := c.conn.AcceptStream(ctx)
	if err != nil {
		return nil, err
	}
	c.stream = stream
	return stream, nil
}

func (c *quicConnection) Send(data []byte) error {
	if c.IsClosed() {
		return ErrConnectionClosed
	}

	stream, err := c.getStream(context.Background())
	if err != nil {
		return err
	}

	frame := make([]byte, 4+len(data))
	binary.BigEndian.PutUint32(frame, uint32(len(data)))
	copy(frame[4:], data)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = stream.SetWriteDeadline(time.Now().Add(writeTimeout))
	_, err = stream.Write(frame)
	return err
}

func (c *quicConnection) Receive(ctx context.Context) ([]byte, error) {
	if c.IsClosed() {
		return nil, ErrConnectionClosed
	}

	stream, err := c.getStream(ctx)
	if err != nil {
		return nil, err
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	_ = stream.SetReadDeadline(deadline)

	var header [4]byte
	if _, err := io.ReadFull(stream, header[:]); err != nil {
		return nil, mapStreamError(err)
	}

	data := make([]byte, binary.BigEndian.Uint32(header[:]))
	if _, err := io.ReadFull(stream, data); err != nil {
		return nil, mapStreamError(err)
	}
	return data, nil
}

func mapStreamError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return context.DeadlineExceeded
	}
	return err
}

func (c *quicConnection) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	return c.conn.CloseWithError(0, "closed")
}
