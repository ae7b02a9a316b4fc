package main

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"stormfall/server/protocol"
)

// session wraps one client connection. Outbound data goes through a buffered
// queue serviced by a single write goroutine, so enqueue order is delivery
// order and a slow client can never block the tick loop (the queue drops
// when full).
type session struct {
	id        string
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	once      sync.Once
	pingEvery time.Duration
}

func newSession(id string, conn *websocket.Conn) *session {
	return &session{
		id:        id,
		conn:      conn,
		send:      make(chan []byte, 256),
		done:      make(chan struct{}),
		pingEvery: pingPeriod,
	}
}

func (s *session) enqueue(data []byte) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.send <- data:
	default:
		// Queue full: drop rather than stall the simulation.
	}
}

func (s *session) sendEvent(event string, payload any) error {
	data, err := protocol.Encode(event, payload)
	if err != nil {
		return err
	}
	s.enqueue(data)
	return nil
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.done)
		if s.conn != nil {
			s.conn.Close()
		}
	})
}

// writePump services the outbound queue and keeps the connection alive with
// periodic pings; the read side extends its deadline on each pong.
func (s *session) writePump() {
	ticker := time.NewTicker(s.pingEvery)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()
	for {
		select {
		case <-s.done:
			return
		case msg := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
