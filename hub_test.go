package main

import (
	"testing"

	"stormfall/server/protocol"
)

func TestDispatchCreateAndJoin(t *testing.T) {
	hub := newTestHub(t, 0)
	s1 := newTestSession("player-1")
	hub.Dispatch(s1, protocol.Command{Type: protocol.CmdCreateRoom})

	envs := drainEvents(t, s1)
	created, ok := findEvent(envs, protocol.EventRoomCreated)
	if !ok {
		t.Fatal("createRoom should answer with roomCreated")
	}
	var payload protocol.RoomCreatedPayload
	decodePayload(t, created, &payload)
	if len(payload.Code) != roomCodeLength {
		t.Fatalf("bad room code %q", payload.Code)
	}

	s2 := newTestSession("player-2")
	hub.Dispatch(s2, protocol.Command{Type: protocol.CmdJoinRoom, Join: &protocol.JoinRoomPayload{Code: payload.Code}})
	if _, ok := findEvent(drainEvents(t, s2), protocol.EventRoomJoined); !ok {
		t.Error("joining should broadcast roomJoined")
	}
	t.Cleanup(func() { hub.LeaveRoom(s1, "test done"); hub.LeaveRoom(s2, "test done") })
}

func TestDispatchJoinErrorReply(t *testing.T) {
	hub := newTestHub(t, 0)
	s := newTestSession("player-1")
	hub.Dispatch(s, protocol.Command{Type: protocol.CmdJoinRoom, Join: &protocol.JoinRoomPayload{Code: "NOPE"}})

	envs := drainEvents(t, s)
	errEnv, ok := findEvent(envs, protocol.EventJoinError)
	if !ok {
		t.Fatal("failed join should answer with joinError")
	}
	var payload protocol.JoinErrorPayload
	decodePayload(t, errEnv, &payload)
	if payload.Code != "NOPE" || payload.Reason == "" {
		t.Errorf("joinError payload %+v", payload)
	}
}

func TestDispatchDropsRoomlessCommands(t *testing.T) {
	hub := newTestHub(t, 0)
	s := newTestSession("player-1")
	// Must not panic or reply; the session never joined a room.
	hub.Dispatch(s, protocol.Command{Type: protocol.CmdPlayerMoved, Move: &protocol.PlayerMovedPayload{X: 1, Y: 2, Direction: "up"}})
	hub.Dispatch(s, protocol.Command{Type: protocol.CmdPlayerAttack, Attack: &protocol.PlayerAttackPayload{Direction: "up"}})
	if envs := drainEvents(t, s); len(envs) != 0 {
		t.Errorf("roomless commands should be dropped silently, got %v", envs)
	}
}

func TestDispatchRoutesToRoomHandlers(t *testing.T) {
	_, room, s1, s2 := setupMatch(t, 0)
	hub := room.hub

	hub.Dispatch(s1, protocol.Command{Type: protocol.CmdPlayerMoved, Move: &protocol.PlayerMovedPayload{
		X: 111, Y: 122, IsMoving: true, Direction: "up",
	}})
	if _, ok := findEvent(drainEvents(t, s2), protocol.EventPlayerMoved); !ok {
		t.Error("dispatched move should reach the other member")
	}

	hub.Dispatch(s1, protocol.Command{Type: protocol.CmdSetInvulnerable, Invulnerable: &protocol.SetInvulnerablePayload{Invulnerable: true}})
	if !room.game.players[s1.id].Invulnerable {
		t.Error("dispatched setInvulnerable should update state")
	}
}

func TestLeaveRoomUnknownSessionIsSafe(t *testing.T) {
	hub := newTestHub(t, 0)
	hub.LeaveRoom(newTestSession("ghost"), "never joined")
	if hub.roomCount() != 0 {
		t.Error("leaving without a room should be a no-op")
	}
}

func TestMarkReadyUnknownCodeIsSafe(t *testing.T) {
	hub := newTestHub(t, 0)
	hub.MarkReady(newTestSession("player-1"), "ZZZZ")
}

func TestSessionIDsAreUnique(t *testing.T) {
	hub := newTestHub(t, 0)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := hub.newSessionID()
		if seen[id] {
			t.Fatalf("duplicate session id %q", id)
		}
		seen[id] = true
	}
}
