package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"stormfall/server/logging"
	"stormfall/server/protocol"
)

// The only player-visible failures in the whole subsystem; everything else
// degrades to a silent no-op.
var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room full")
)

// difficultySource abstracts the external difficulty feed so tests can pin
// the value.
type difficultySource interface {
	Value() float64
}

const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Hub is the room registry: it owns the code→room index and session
// membership. The hub mutex guards only those maps; room simulation runs
// under each room's own lock and is never entered while holding the
// registry lock.
type Hub struct {
	mu          sync.Mutex
	rooms       map[string]*Room
	memberships map[string]*Room
	codeRng     *rand.Rand

	nextID     atomic.Uint64
	grid       *Grid
	pathfinder *Pathfinder
	difficulty difficultySource
	publisher  logging.Publisher
	logger     *zap.SugaredLogger
}

func newHub(grid *Grid, pathfinder *Pathfinder, difficulty difficultySource, publisher logging.Publisher, logger *zap.SugaredLogger) *Hub {
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Hub{
		rooms:       make(map[string]*Room),
		memberships: make(map[string]*Room),
		codeRng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		grid:        grid,
		pathfinder:  pathfinder,
		difficulty:  difficulty,
		publisher:   publisher,
		logger:      logger,
	}
}

func (h *Hub) newSessionID() string {
	return fmt.Sprintf("player-%d", h.nextID.Add(1))
}

// generateCodeLocked rolls 4-character codes until one is free among live
// rooms.
func (h *Hub) generateCodeLocked() string {
	for {
		code := make([]byte, roomCodeLength)
		for i := range code {
			code[i] = roomCodeAlphabet[h.codeRng.Intn(len(roomCodeAlphabet))]
		}
		if _, taken := h.rooms[string(code)]; !taken {
			return string(code)
		}
	}
}

// CreateRoom allocates a room with a fresh unique code and registers the
// requester as its sole member. A requester already in a room is ignored.
func (h *Hub) CreateRoom(s *session) (*Room, bool) {
	h.mu.Lock()
	if _, inRoom := h.memberships[s.id]; inRoom {
		h.mu.Unlock()
		h.logger.Debugw("createRoom ignored, already in a room", "session", s.id)
		return nil, false
	}
	code := h.generateCodeLocked()
	room := newRoom(code, h, h.codeRng.Int63())
	h.rooms[code] = room
	h.memberships[s.id] = room
	h.mu.Unlock()

	room.addSession(s)
	h.publisher.Publish(context.Background(), logging.Event{
		Type:     "room_created",
		Time:     time.Now(),
		Room:     code,
		Actor:    logging.EntityRef{ID: s.id, Kind: logging.EntityKindPlayer},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
	})
	h.logger.Infow("room created", "room", code, "session", s.id)
	return room, true
}

// JoinRoom adds the session to an existing room. The two failure modes here
// are the only errors surfaced to players.
func (h *Hub) JoinRoom(s *session, code string) error {
	h.mu.Lock()
	if _, inRoom := h.memberships[s.id]; inRoom {
		h.mu.Unlock()
		return nil
	}
	room, ok := h.rooms[code]
	h.mu.Unlock()
	if !ok {
		return ErrRoomNotFound
	}

	if err := room.addSession(s); err != nil {
		return err
	}

	h.mu.Lock()
	h.memberships[s.id] = room
	h.mu.Unlock()
	h.logger.Infow("room joined", "room", code, "session", s.id)
	return nil
}

// LeaveRoom is the disconnect flow: drop the session from its room, declare
// the survivor the winner, or destroy the room when it empties. Safe to call
// for sessions that never joined anything.
func (h *Hub) LeaveRoom(s *session, reason string) {
	h.mu.Lock()
	room, ok := h.memberships[s.id]
	if ok {
		delete(h.memberships, s.id)
	}
	h.mu.Unlock()
	if !ok {
		return
	}

	remaining := room.removeSession(s)
	h.logger.Infow("left room", "room", room.code, "session", s.id, "reason", reason, "remaining", remaining)

	switch remaining {
	case 0:
		room.destroy()
		h.mu.Lock()
		delete(h.rooms, room.code)
		h.mu.Unlock()
	case 1:
		room.declareWinner(s.id)
	}
}

// MarkReady forwards a ready signal; unknown codes are a normal race and
// ignored.
func (h *Hub) MarkReady(s *session, code string) {
	h.mu.Lock()
	room, ok := h.rooms[code]
	h.mu.Unlock()
	if !ok {
		return
	}
	room.markReady(s)
}

func (h *Hub) roomOf(s *session) *Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.memberships[s.id]
}

// roomsSnapshot returns a stable copy of the live rooms for one driver tick.
func (h *Hub) roomsSnapshot() []*Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, room := range h.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

func (h *Hub) roomCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}

// Dispatch routes one decoded command. Room-scoped commands from a session
// that is not in a live room are dropped silently per the failure policy.
func (h *Hub) Dispatch(s *session, cmd protocol.Command) {
	now := time.Now()

	switch cmd.Type {
	case protocol.CmdCreateRoom:
		if room, ok := h.CreateRoom(s); ok {
			s.sendEvent(protocol.EventRoomCreated, protocol.RoomCreatedPayload{Code: room.code})
		}
		return
	case protocol.CmdJoinRoom:
		if err := h.JoinRoom(s, cmd.Join.Code); err != nil {
			s.sendEvent(protocol.EventJoinError, protocol.JoinErrorPayload{
				Code:   cmd.Join.Code,
				Reason: err.Error(),
			})
		}
		return
	case protocol.CmdPlayerReady:
		h.MarkReady(s, cmd.Ready.Code)
		return
	}

	room := h.roomOf(s)
	if room == nil {
		h.logger.Debugw("command without room", "session", s.id, "type", cmd.Type)
		return
	}

	switch cmd.Type {
	case protocol.CmdJoinGame:
		room.handleJoinGame(s, cmd.JoinGame.X, cmd.JoinGame.Y)
	case protocol.CmdPlayerMoved:
		room.handleMove(s, cmd.Move)
	case protocol.CmdPlayerAttack:
		room.handleAttack(s, cmd.Attack, now)
	case protocol.CmdAoeBlast:
		room.handleBlast(cmd.Blast, now)
	case protocol.CmdLightningStrike:
		room.handleLightning(cmd.Lightning, now)
	case protocol.CmdCollectMysteryCrystal:
		room.handleCollectMystery(s, cmd.CollectCrystal.CrystalID)
	case protocol.CmdCollectBloodCrystal:
		room.handleCollectBlood(s, cmd.CollectCrystal.CrystalID)
	case protocol.CmdUpdatePlayerHP:
		room.handleUpdateHP(s, cmd.HP.HP)
	case protocol.CmdSetInvulnerable:
		room.handleSetInvulnerable(s, cmd.Invulnerable.Invulnerable)
	}
}
