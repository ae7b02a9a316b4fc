package main

import (
	"testing"

	"stormfall/server/protocol"
)

func TestSessionEnqueuePreservesOrder(t *testing.T) {
	s := newTestSession("player-1")
	s.enqueue([]byte("a"))
	s.enqueue([]byte("b"))
	s.enqueue([]byte("c"))
	for _, want := range []string{"a", "b", "c"} {
		got := string(<-s.send)
		if got != want {
			t.Fatalf("delivery order broken: got %q, want %q", got, want)
		}
	}
}

func TestSessionEnqueueDropsWhenFull(t *testing.T) {
	s := newTestSession("player-1")
	for i := 0; i < cap(s.send)+10; i++ {
		s.enqueue([]byte("x"))
	}
	if len(s.send) != cap(s.send) {
		t.Errorf("queue length %d, cap %d", len(s.send), cap(s.send))
	}
}

func TestSessionEnqueueAfterClose(t *testing.T) {
	s := newTestSession("player-1")
	s.close()
	s.close()
	s.enqueue([]byte("late"))
	if len(s.send) != 0 {
		t.Error("closed session must not queue messages")
	}
}

func TestSessionSendEvent(t *testing.T) {
	s := newTestSession("player-1")
	if err := s.sendEvent(protocol.EventConnected, protocol.ConnectedPayload{PlayerID: s.id}); err != nil {
		t.Fatalf("sendEvent: %v", err)
	}
	if len(s.send) != 1 {
		t.Errorf("queue length %d, want 1", len(s.send))
	}
}
