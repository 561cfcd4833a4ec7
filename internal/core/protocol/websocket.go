package protocol

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/pointsync/pointsync/internal/core/observability/log"
)

// writeTimeout bounds a single Send so one stalled client cannot hold a
// broadcast hostage.
const writeTimeout = 10 * time.Second

var _ Transport = (*WebSocketTransport)(nil)

// WebSocketTransport serves connections over a websocket endpoint at
// /ws, with a plain /healthz probe beside it.
type WebSocketTransport struct {
	upgrader websocket.Upgrader
	server   *http.Server
	listener net.Listener

	acceptCh  chan Connection
	done      chan struct{}
	listening int32
	closed    int32

	logger log.Log
}

// NewWebSocketTransport creates an unbound websocket transport.
func NewWebSocketTransport(logger log.Log) *WebSocketTransport {
	return &WebSocketTransport{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		acceptCh: make(chan Connection, 16),
		done:     make(chan struct{}),
		logger:   logger.With(log.String("transport", "websocket")),
	}
}

func (t *WebSocketTransport) Kind() TransportKind { return TransportWebSocket }

func (t *WebSocketTransport) Listen(_ context.Context, address string) error {
	if !atomic.CompareAndSwapInt32(&t.listening, 0, 1) {
		return errors.New("transport already listening")
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		atomic.StoreInt32(&t.listening, 0)
		return err
	}
	t.listener = listener

	router := mux.NewRouter()
	router.HandleFunc("/ws", t.handleUpgrade)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	t.server = &http.Server{Handler: router}

	go func() {
		if err := t.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.logger.Error("HTTP server stopped", log.Error(err))
		}
	}()

	t.logger.Info("Transport listening", log.String("addr", listener.Addr().String()))
	return nil
}

func (t *WebSocketTransport) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	if atomic.LoadInt32(&t.closed) == 1 {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		t.logger.Warn("Upgrade failed", log.Error(err))
		return
	}

	wsConn := newWebSocketConnection(conn)
	select {
	case t.acceptCh <- wsConn:
	case <-t.done:
		_ = wsConn.Close()
	}
}

func (t *WebSocketTransport) Accept(ctx context.Context) (Connection, error) {
	if atomic.LoadInt32(&t.listening) == 0 {
		return nil, ErrNotListening
	}
	select {
	case conn := <-t.acceptCh:
		return conn, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
		return nil, ErrTransportClosed
	}
}

func (t *WebSocketTransport) Addr() net.Addr {
	if t.listener == nil {
		return nil
	}
	return t.listener.Addr()
}

func (t *WebSocketTransport) Close() error {
	if !atomic.CompareAndSwapInt32(&t.closed, 0, 1) {
		return nil
	}
	close(t.done)
	if t.server != nil {
		return t.server.Close()
	}
	return nil
}

var _ Connection = (*webSocketConnection)(nil)

type webSocketConnection struct {
	id      ConnectionID
	conn    *websocket.Conn
	writeMu sync.Mutex
	closed  int32
}

func newWebSocketConnection(conn *websocket.Conn) *webSocketConnection {
	return &webSocketConnection{
		id:   GenerateConnectionID(),
		conn: conn,
	}
}

func (c *webSocketConnection) ID() ConnectionID    { return c.id }
func (c *webSocketConnection) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }
func (c *webSocketConnection) IsClosed() bool       { return atomic.LoadInt32(&c.closed) == 1 }

func (c *webSocketConnection) Send(data []byte) error {
	if c.IsClosed() {
		return ErrConnectionClosed
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.BinaryMessage, data)
}

func (c *webSocketConnection) Receive(ctx context.Context) ([]byte, error) {
	if c.IsClosed() {
		return nil, ErrConnectionClosed
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	_ = c.conn.SetReadDeadline(deadline)

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, context.DeadlineExceeded
		}
		return nil, err
	}
	return data, nil
}

func (c *webSocketConnection) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	return c.conn.Close()
}
