package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"stormfall/server/protocol"
)

const (
	readLimit    = 1 << 20
	readDeadline = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleWS upgrades the connection, hands the client its identity, and runs
// the read loop until disconnect. Disconnect for any reason flows through
// the leave-room path.
func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("websocket upgrade failed", "err", err)
		return
	}

	s := newSession(h.newSessionID(), conn)
	go s.writePump()
	if err := s.sendEvent(protocol.EventConnected, protocol.ConnectedPayload{PlayerID: s.id}); err != nil {
		h.logger.Warnw("send connected", "session", s.id, "err", err)
	}
	h.logger.Infow("client connected", "session", s.id)

	h.readPump(s)
}

func (h *Hub) readPump(s *session) {
	defer func() {
		h.LeaveRoom(s, "connection closed")
		s.close()
	}()

	s.conn.SetReadLimit(readLimit)
	s.conn.SetReadDeadline(time.Now().Add(readDeadline))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(readDeadline))

		cmd, err := protocol.DecodeCommand(payload)
		if err != nil {
			// Malformed and unknown payloads die at the boundary.
			if errors.Is(err, protocol.ErrUnknownEvent) {
				h.logger.Debugw("unknown event", "session", s.id, "err", err)
			} else {
				h.logger.Debugw("rejected payload", "session", s.id, "err", err)
			}
			continue
		}
		h.Dispatch(s, cmd)
	}
}
