package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeCommandRoutesEvents(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want CommandType
	}{
		{"create", `{"event":"createRoom"}`, CmdCreateRoom},
		{"join", `{"event":"joinRoom","data":{"code":"AB12"}}`, CmdJoinRoom},
		{"ready", `{"event":"playerReady","data":{"code":"AB12"}}`, CmdPlayerReady},
		{"joinGame", `{"event":"joinGame","data":{"x":10,"y":20}}`, CmdJoinGame},
		{"move", `{"event":"playerMoved","data":{"x":1,"y":2,"isMoving":true,"direction":"up"}}`, CmdPlayerMoved},
		{"attack", `{"event":"playerAttack","data":{"direction":"left"}}`, CmdPlayerAttack},
		{"blast", `{"event":"aoeBlast","data":{"x":5,"y":5,"radius":40}}`, CmdAoeBlast},
		{"lightning", `{"event":"lightningStrikeRequest","data":{"x":1,"y":1}}`, CmdLightningStrike},
		{"mystery", `{"event":"collectMysteryCrystal","data":{"crystalId":"mc-1"}}`, CmdCollectMysteryCrystal},
		{"blood", `{"event":"collectBloodCrystal","data":{"crystalId":"bc-1"}}`, CmdCollectBloodCrystal},
		{"hp", `{"event":"updatePlayerHP","data":{"hp":3}}`, CmdUpdatePlayerHP},
		{"invuln", `{"event":"setInvulnerable","data":{"invulnerable":true}}`, CmdSetInvulnerable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, err := DecodeCommand([]byte(tc.raw))
			if err != nil {
				t.Fatalf("DecodeCommand: %v", err)
			}
			if cmd.Type != tc.want {
				t.Errorf("type = %v, want %v", cmd.Type, tc.want)
			}
		})
	}
}

func TestDecodeCommandPayloadValues(t *testing.T) {
	cmd, err := DecodeCommand([]byte(`{"event":"playerMoved","data":{"x":12.5,"y":-3,"isMoving":true,"direction":"down"}}`))
	if err != nil {
		t.Fatalf("DecodeCommand: %v", err)
	}
	if cmd.Move == nil || cmd.Move.X != 12.5 || cmd.Move.Y != -3 || !cmd.Move.IsMoving || cmd.Move.Direction != "down" {
		t.Errorf("move payload %+v", cmd.Move)
	}
}

func TestDecodeCommandRejections(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"not json", `{{{`, ErrInvalidPayload},
		{"unknown event", `{"event":"teleportEverywhere"}`, ErrUnknownEvent},
		{"join without code", `{"event":"joinRoom","data":{}}`, ErrInvalidPayload},
		{"join without data", `{"event":"joinRoom"}`, ErrInvalidPayload},
		{"move bad direction", `{"event":"playerMoved","data":{"x":1,"y":2,"direction":"northwest"}}`, ErrInvalidPayload},
		{"attack bad direction", `{"event":"playerAttack","data":{"direction":""}}`, ErrInvalidPayload},
		{"blast zero radius", `{"event":"aoeBlast","data":{"x":1,"y":1,"radius":0}}`, ErrInvalidPayload},
		{"blast negative radius", `{"event":"aoeBlast","data":{"x":1,"y":1,"radius":-3}}`, ErrInvalidPayload},
		{"crystal without id", `{"event":"collectMysteryCrystal","data":{}}`, ErrInvalidPayload},
		{"ready without code", `{"event":"playerReady","data":{}}`, ErrInvalidPayload},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeCommand([]byte(tc.raw))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("error %v, want %v", err, tc.want)
			}
		})
	}
}

func TestEncodeEnvelope(t *testing.T) {
	data, err := Encode(EventPlayerHit, PlayerHitPayload{PlayerID: "player-1", HP: 2})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if env.Event != EventPlayerHit {
		t.Errorf("event %q", env.Event)
	}
	var payload PlayerHitPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload.PlayerID != "player-1" || payload.HP != 2 {
		t.Errorf("payload %+v", payload)
	}
}

func TestEncodeWithoutPayload(t *testing.T) {
	data, err := Encode(EventConnected, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if env.Event != EventConnected || len(env.Data) != 0 {
		t.Errorf("envelope %+v", env)
	}
}
