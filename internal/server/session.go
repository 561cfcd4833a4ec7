package server

import (
	"context"

	"github.com/pointsync/pointsync/internal/core/manifest"
	"github.com/pointsync/pointsync/internal/core/observability/log"
	"github.com/pointsync/pointsync/internal/core/protocol"
	"github.com/pointsync/pointsync/internal/core/replication"
)

// session pairs a transport connection with the user admitted over it.
// The user key is set by the event loop during admission and read only
// by this session's goroutine afterwards.
type session struct {
	conn   protocol.Connection
	user   replication.UserKey
	logger log.Log
}

// runSession performs the auth handshake and then pumps inbound
// messages into the event loop. One goroutine per connection; the only
// state it touches directly is its own connection.
func (s *Server) runSession(conn protocol.Connection) {
	logger := s.logger.With(log.String("remote_addr", conn.RemoteAddr().String()))

	// The first message must be the credential. Anything else, or
	// silence past the disconnect timeout, rejects the connection
	// before any user record exists.
	ctx, cancel := context.WithTimeout(context.Background(), s.config.DisconnectTimeout.Std())
	data, err := conn.Receive(ctx)
	cancel()
	if err != nil {
		logger.Warn("Connection closed before authenticating", log.Error(err))
		_ = conn.Close()
		return
	}

	_, value, err := s.manifest.Decode(data)
	if err != nil {
		logger.Warn("Undecodable handshake payload", log.Error(err))
		_ = conn.Close()
		return
	}
	auth, ok := value.(*manifest.AuthPayload)
	if !ok {
		logger.Warn("Handshake payload was not a credential")
		_ = conn.Close()
		return
	}

	sess := &session{conn: conn, logger: logger}
	accepted := make(chan bool, 1)
	if !s.post(event{kind: eventConnect, sess: sess, cred: auth.Credential(), accepted: accepted}) {
		_ = conn.Close()
		return
	}

	select {
	case admitted := <-accepted:
		if !admitted {
			_ = conn.Close()
			return
		}
	case <-s.stopChan:
		_ = conn.Close()
		return
	}

	s.readPump(sess)
}

// readPump forwards decoded inbound messages as events until the
// connection errors out or goes silent past the disconnect timeout.
func (s *Server) readPump(sess *session) {
	for {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.DisconnectTimeout.Std())
		data, err := sess.conn.Receive(ctx)
		cancel()
		if err != nil {
			// Timeout and hard error both mean the transport considers
			// this connection gone.
			if !s.post(event{kind: eventDisconnect, user: sess.user}) {
				_ = sess.conn.Close()
			}
			return
		}

		_, value, err := s.manifest.Decode(data)
		if err != nil {
			s.post(event{kind: eventProtocolError, user: sess.user, err: err})
			continue
		}

		switch p := value.(type) {
		case *manifest.CommandPayload:
			s.post(event{
				kind:    eventCommand,
				user:    sess.user,
				target:  p.Target(),
				command: p.Command(),
			})
		case *manifest.HeartbeatPayload:
			// Receipt alone refreshes the read window.
		case *manifest.AuthPayload:
			sess.logger.Warn("Ignoring credential on authenticated connection")
		default:
			sess.logger.Warn("Ignoring unexpected inbound payload")
		}
	}
}

// post offers an event to the loop, giving up if the server is
// stopping. Reports whether the event was delivered.
func (s *Server) post(ev event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.stopChan:
		return false
	}
}
