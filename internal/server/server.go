package server

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pointsync/pointsync/internal/core/manifest"
	"github.com/pointsync/pointsync/internal/core/observability/log"
	"github.com/pointsync/pointsync/internal/core/protocol"
	"github.com/pointsync/pointsync/internal/core/replication"
)

// Server is the authoritative replication server: it accepts
// connections, gates them through authentication, owns all replicated
// state, and broadcasts scoped snapshots every tick.
//
// All world state is confined to the event loop goroutine. Sessions and
// the ticker only post events; they never touch the world directly.
type Server struct {
	config   Config
	logger   log.Log
	manifest *manifest.Manifest

	auth  replication.Authenticator
	scope replication.ScopePredicate

	transport protocol.Transport
	world     *world
	sessions  map[replication.UserKey]*session

	events      chan event
	clientCount int64 // atomic, read by the accept loop

	tick            uint64
	commandsApplied int

	running int32
	closed  int32

	stopChan    chan struct{}
	workerGroup sync.WaitGroup
}

// NewServer creates a server. A nil authenticator falls back to the
// static credential from the config; a nil scope predicate admits every
// known entity kind.
func NewServer(config Config, logger log.Log, auth replication.Authenticator, scope replication.ScopePredicate) *Server {
	if auth == nil {
		auth = replication.StaticAuthenticator{
			Username: config.Auth.Username,
			Password: config.Auth.Password,
		}
	}
	if scope == nil {
		scope = replication.VisibleKinds{}
	}

	serverLogger := logger.With(log.String("component", "server"))

	return &Server{
		config:   config,
		logger:   serverLogger,
		manifest: manifest.Load(),
		auth:     auth,
		scope:    scope,
		world:    newWorld(config, auth, scope, serverLogger),
		sessions: make(map[replication.UserKey]*session),
		events:   make(chan event, 256),
		stopChan: make(chan struct{}),
	}
}

// Start binds the transport and launches the accept loop, the event
// loop, and the tick clock.
func (s *Server) Start(ctx context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}

	if err := s.config.Validate(); err != nil {
		atomic.StoreInt32(&s.running, 0)
		return err
	}

	transport, err := s.buildTransport()
	if err != nil {
		atomic.StoreInt32(&s.running, 0)
		return err
	}

	if err := transport.Listen(ctx, s.config.ListenAddr); err != nil {
		atomic.StoreInt32(&s.running, 0)
		s.logger.Error("Failed to create listener", log.Error(err))
		return err
	}
	s.transport = transport

	s.logger.Info("Server listening",
		log.String("addr", transport.Addr().String()),
		log.String("transport", string(transport.Kind())),
		log.Duration("tick_interval", s.config.TickInterval.Std()))

	s.workerGroup.Add(2)
	go func() {
		defer s.workerGroup.Done()
		s.eventLoop()
	}()
	go func() {
		defer s.workerGroup.Done()
		s.tickLoop()
	}()
	go s.acceptLoop()

	return nil
}

func (s *Server) buildTransport() (protocol.Transport, error) {
	switch s.config.Transport {
	case protocol.TransportWebSocket:
		return protocol.NewWebSocketTransport(s.logger), nil
	case protocol.TransportQUIC:
		return protocol.NewQUICTransport(s.logger), nil
	default:
		return nil, ErrUnknownTransport
	}
}

// Addr returns the bound listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.transport == nil {
		return nil
	}
	return s.transport.Addr()
}

// Stop shuts the server down: no more events are processed and every
// connection is closed.
func (s *Server) Stop(_ context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return ErrServerNotRunning
	}

	s.logger.Info("Stopping server")
	close(s.stopChan)

	if s.transport != nil {
		_ = s.transport.Close()
	}

	s.workerGroup.Wait()

	// The event loop has exited, so the sessions map is safe to read.
	for _, sess := range s.sessions {
		_ = sess.conn.Close()
	}

	s.logger.Info("Server stopped")
	return nil
}

// Close releases the server; a closed server cannot be restarted.
func (s *Server) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}
	if atomic.LoadInt32(&s.running) == 1 {
		_ = s.Stop(context.Background())
	}
	return nil
}

// acceptLoop admits transport connections and hands each to its own
// session goroutine.
func (s *Server) acceptLoop() {
	for atomic.LoadInt32(&s.running) == 1 {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		conn, err := s.transport.Accept(ctx)
		cancel()

		if err != nil {
			if atomic.LoadInt32(&s.running) == 0 || errors.Is(err, protocol.ErrTransportClosed) {
				return
			}
			if !errors.Is(err, context.DeadlineExceeded) {
				s.logger.Error("Failed to accept connection", log.Error(err))
				time.Sleep(100 * time.Millisecond)
			}
			continue
		}

		if int(atomic.LoadInt64(&s.clientCount)) >= s.config.MaxClients {
			s.logger.Warn("Maximum clients reached, rejecting connection",
				log.String("remote_addr", conn.RemoteAddr().String()))
			_ = conn.Close()
			continue
		}

		go s.runSession(conn)
	}
}

// tickLoop is the server's clock: it feeds tick events into the same
// channel as everything else, so a tick is always processed after every
// command that arrived before it.
func (s *Server) tickLoop() {
	ticker := time.NewTicker(s.config.TickInterval.Std())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.post(event{kind: eventTick})
		case <-s.stopChan:
			return
		}
	}
}

// eventLoop is the single owner of the world. It processes events
// strictly in arrival order.
func (s *Server) eventLoop() {
	for {
		select {
		case ev := <-s.events:
			s.handleEvent(ev)
		case <-s.stopChan:
			return
		}
	}
}

func (s *Server) handleEvent(ev event) {
	switch ev.kind {
	case eventConnect:
		s.handleConnect(ev)
	case eventDisconnect:
		s.handleDisconnect(ev.user)
	case eventCommand:
		if s.world.command(ev.user, ev.target, ev.command) {
			s.commandsApplied++
		}
	case eventTick:
		s.handleTick()
	case eventProtocolError:
		s.logger.Warn("Dropping undecodable payload",
			log.String("user_key", string(ev.user)),
			log.Error(ev.err))
	}
}

func (s *Server) handleConnect(ev event) {
	address := ev.sess.conn.RemoteAddr().String()

	if int(atomic.LoadInt64(&s.clientCount)) >= s.config.MaxClients {
		s.logger.Warn("Maximum clients reached, rejecting connection",
			log.String("remote_addr", address))
		ev.accepted <- false
		return
	}

	userKey, ok := s.world.admit(address, ev.cred)
	if !ok {
		ev.accepted <- false
		return
	}

	ev.sess.user = userKey
	s.sessions[userKey] = ev.sess
	atomic.AddInt64(&s.clientCount, 1)
	ev.accepted <- true
}

func (s *Server) handleDisconnect(user replication.UserKey) {
	if sess, ok := s.sessions[user]; ok {
		delete(s.sessions, user)
		atomic.AddInt64(&s.clientCount, -1)
		_ = sess.conn.Close()
		s.logger.Info("User disconnected",
			log.String("remote_addr", sess.conn.RemoteAddr().String()),
			log.String("user_key", string(user)))
	}
	// world cleanup is idempotent; a repeated disconnect is a no-op.
	s.world.disconnect(user)
}

func (s *Server) handleTick() {
	if s.commandsApplied == 0 {
		s.logger.Debug("No commands since last tick")
	}
	s.commandsApplied = 0

	s.tick++
	s.broadcastTick(s.tick)
}
