package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"stormfall/server/protocol"
)

type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
	id   string
}

func dialClient(t *testing.T, srv *httptest.Server) *wsClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	c := &wsClient{t: t, conn: conn}

	env := c.expect(protocol.EventConnected)
	var payload protocol.ConnectedPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("connected payload: %v", err)
	}
	c.id = payload.PlayerID
	return c
}

func (c *wsClient) send(event string, payload any) {
	c.t.Helper()
	data, err := protocol.Encode(event, payload)
	if err != nil {
		c.t.Fatalf("encode %s: %v", event, err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.t.Fatalf("write %s: %v", event, err)
	}
}

// expect reads frames until the named event arrives, skipping everything
// else (enemyUpdate chatter in particular).
func (c *wsClient) expect(event string) protocol.Envelope {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.t.Fatalf("waiting for %s: %v", event, err)
		}
		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.t.Fatalf("decode frame: %v", err)
		}
		if env.Event == event {
			return env
		}
	}
}

func newWSFixture(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := newTestHub(t, 0)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.handleWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return hub, srv
}

func TestWebsocketRoomLifecycle(t *testing.T) {
	hub, srv := newWSFixture(t)

	host := dialClient(t, srv)
	host.send(protocol.EventCreateRoom, nil)
	created := host.expect(protocol.EventRoomCreated)
	var room protocol.RoomCreatedPayload
	if err := json.Unmarshal(created.Data, &room); err != nil {
		t.Fatalf("roomCreated payload: %v", err)
	}
	if len(room.Code) != roomCodeLength {
		t.Fatalf("room code %q", room.Code)
	}

	guest := dialClient(t, srv)
	guest.send(protocol.EventJoinRoom, protocol.JoinRoomPayload{Code: room.Code})
	joined := guest.expect(protocol.EventRoomJoined)
	var membership protocol.RoomJoinedPayload
	if err := json.Unmarshal(joined.Data, &membership); err != nil {
		t.Fatalf("roomJoined payload: %v", err)
	}
	if len(membership.Members) != 2 {
		t.Fatalf("members %v", membership.Members)
	}

	host.send(protocol.EventJoinGame, protocol.JoinGamePayload{X: 100, Y: 100})
	guest.send(protocol.EventJoinGame, protocol.JoinGamePayload{X: 200, Y: 200})
	guest.expect(protocol.EventCurrentPlayers)
	host.expect(protocol.EventPlayerJoined)

	// Movement relays to the other member with the server-side identity.
	host.send(protocol.EventPlayerMoved, protocol.PlayerMovedPayload{X: 120, Y: 130, IsMoving: true, Direction: "right"})
	moved := guest.expect(protocol.EventPlayerMoved)
	var move protocol.PlayerMovedPayload
	if err := json.Unmarshal(moved.Data, &move); err != nil {
		t.Fatalf("playerMoved payload: %v", err)
	}
	if move.PlayerID != host.id || move.X != 120 {
		t.Errorf("relayed move %+v", move)
	}

	// Ready-up starts the match for both clients.
	host.send(protocol.EventPlayerReady, protocol.PlayerReadyPayload{Code: room.Code})
	guest.send(protocol.EventPlayerReady, protocol.PlayerReadyPayload{Code: room.Code})
	host.expect(protocol.EventStartGame)
	guest.expect(protocol.EventStartGame)

	// Disconnecting the guest hands the host the win.
	guest.conn.Close()
	died := host.expect(protocol.EventPlayerDied)
	var result protocol.PlayerDiedPayload
	if err := json.Unmarshal(died.Data, &result); err != nil {
		t.Fatalf("playerDied payload: %v", err)
	}
	if !result.Win || result.LoserID != guest.id {
		t.Errorf("forfeit result %+v", result)
	}
	if hub.roomCount() != 1 {
		t.Error("room should persist for the surviving member")
	}
}

func TestWebsocketRejectsThirdMember(t *testing.T) {
	_, srv := newWSFixture(t)

	host := dialClient(t, srv)
	host.send(protocol.EventCreateRoom, nil)
	created := host.expect(protocol.EventRoomCreated)
	var room protocol.RoomCreatedPayload
	if err := json.Unmarshal(created.Data, &room); err != nil {
		t.Fatal(err)
	}

	guest := dialClient(t, srv)
	guest.send(protocol.EventJoinRoom, protocol.JoinRoomPayload{Code: room.Code})
	guest.expect(protocol.EventRoomJoined)

	third := dialClient(t, srv)
	third.send(protocol.EventJoinRoom, protocol.JoinRoomPayload{Code: room.Code})
	errEnv := third.expect(protocol.EventJoinError)
	var payload protocol.JoinErrorPayload
	if err := json.Unmarshal(errEnv.Data, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Code != room.Code || payload.Reason != ErrRoomFull.Error() {
		t.Errorf("joinError %+v", payload)
	}
}

func TestWritePumpSendsPings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		s := newSession("player-ping", conn)
		s.pingEvery = 30 * time.Millisecond
		go s.writePump()
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	pings := make(chan struct{}, 1)
	conn.SetPingHandler(func(string) error {
		select {
		case pings <- struct{}{}:
		default:
		}
		return nil
	})
	// Control frames are only processed while a read is in flight.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case <-pings:
	case <-time.After(2 * time.Second):
		t.Fatal("no ping received from the write pump")
	}
}

func TestWebsocketIgnoresMalformedFrames(t *testing.T) {
	_, srv := newWSFixture(t)
	c := dialClient(t, srv)

	// Garbage and unknown events must not kill the connection.
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"noSuchThing"}`)); err != nil {
		t.Fatal(err)
	}

	c.send(protocol.EventCreateRoom, nil)
	c.expect(protocol.EventRoomCreated)
}
