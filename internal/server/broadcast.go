package server

import (
	"github.com/pointsync/pointsync/internal/core/manifest"
	"github.com/pointsync/pointsync/internal/core/observability/log"
	"github.com/pointsync/pointsync/pkg/concurrent"
)

type outbound struct {
	sess    *session
	payload []byte
}

// broadcastTick sends each connected, authenticated user its scoped
// snapshot. Serialization happens on the event loop so every payload
// reflects the same consistent world state; the sends themselves run in
// parallel, and a failure for one user never blocks the rest.
func (s *Server) broadcastTick(tick uint64) {
	sends := make([]outbound, 0, len(s.sessions))

	for user, sess := range s.sessions {
		batch, ok := s.world.snapshotFor(user, tick)
		if !ok {
			continue
		}

		payload, err := s.manifest.Encode(manifest.KindUpdate, &batch)
		if err != nil {
			s.logger.Error("Failed to encode update",
				log.String("user_key", string(user)),
				log.Error(err))
			continue
		}
		sends = append(sends, outbound{sess: sess, payload: payload})
	}

	if len(sends) == 0 {
		return
	}

	concurrent.ForEachMute(sends, func(o outbound) error {
		if err := o.sess.conn.Send(o.payload); err != nil {
			s.logger.Warn("Failed to send update",
				log.String("remote_addr", o.sess.conn.RemoteAddr().String()),
				log.Error(err))
		}
		return nil
	})
}
