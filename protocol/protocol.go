// Package protocol defines the wire format spoken over the websocket
// gateway: a single {event, data} envelope, a closed set of inbound commands
// with validated payload shapes, and the outbound event payloads. Simulation
// code never sees raw JSON; malformed or unknown payloads are rejected here.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Envelope frames every message in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

var (
	ErrUnknownEvent   = errors.New("protocol: unknown event")
	ErrInvalidPayload = errors.New("protocol: invalid payload")
)

// Inbound event names.
const (
	EventCreateRoom            = "createRoom"
	EventJoinRoom              = "joinRoom"
	EventPlayerReady           = "playerReady"
	EventJoinGame              = "joinGame"
	EventPlayerMoved           = "playerMoved"
	EventPlayerAttack          = "playerAttack"
	EventAoeBlast              = "aoeBlast"
	EventLightningStrike       = "lightningStrikeRequest"
	EventCollectMysteryCrystal = "collectMysteryCrystal"
	EventCollectBloodCrystal   = "collectBloodCrystal"
	EventUpdatePlayerHP        = "updatePlayerHP"
	EventSetInvulnerable       = "setInvulnerable"
)

// Outbound event names.
const (
	EventConnected               = "connected"
	EventRoomCreated             = "roomCreated"
	EventRoomJoined              = "roomJoined"
	EventJoinError               = "joinError"
	EventStartGame               = "startGame"
	EventCurrentPlayers          = "currentPlayers"
	EventPlayerJoined            = "playerJoined"
	EventPlayerLeft              = "playerLeft"
	EventPlayerDied              = "playerDied"
	EventPlayerHit               = "playerHit"
	EventEnemyHit                = "enemyHit"
	EventEnemyKilled             = "enemyKilled"
	EventSpawnEnemy              = "spawnEnemy"
	EventEnemyUpdate             = "enemyUpdate"
	EventLevelTimerUpdate        = "levelTimerUpdate"
	EventLevelComplete           = "levelComplete"
	EventStartNextLevel          = "startNextLevel"
	EventWeatherUpdate           = "weatherUpdate"
	EventMysteryCrystalSpawn     = "mysteryCrystalSpawn"
	EventMysteryCrystalCollected = "mysteryCrystalCollected"
	EventBloodCrystalSpawn       = "bloodCrystalSpawn"
	EventBloodCrystalCollected   = "bloodCrystalCollected"
	EventLightningStrikeVisual   = "lightningStrike"
)

// CommandType tags one decoded inbound command.
type CommandType string

const (
	CmdCreateRoom            CommandType = "CreateRoom"
	CmdJoinRoom              CommandType = "JoinRoom"
	CmdPlayerReady           CommandType = "PlayerReady"
	CmdJoinGame              CommandType = "JoinGame"
	CmdPlayerMoved           CommandType = "PlayerMoved"
	CmdPlayerAttack          CommandType = "PlayerAttack"
	CmdAoeBlast              CommandType = "AoeBlast"
	CmdLightningStrike       CommandType = "LightningStrike"
	CmdCollectMysteryCrystal CommandType = "CollectMysteryCrystal"
	CmdCollectBloodCrystal   CommandType = "CollectBloodCrystal"
	CmdUpdatePlayerHP        CommandType = "UpdatePlayerHP"
	CmdSetInvulnerable       CommandType = "SetInvulnerable"
)

// Command is the tagged union handed to the simulation layer. Exactly one
// payload pointer matching Type is set.
type Command struct {
	Type           CommandType
	Join           *JoinRoomPayload
	Ready          *PlayerReadyPayload
	JoinGame       *JoinGamePayload
	Move           *PlayerMovedPayload
	Attack         *PlayerAttackPayload
	Blast          *AoeBlastPayload
	Lightning      *LightningStrikePayload
	CollectCrystal *CollectCrystalPayload
	HP             *UpdateHPPayload
	Invulnerable   *SetInvulnerablePayload
}

type JoinRoomPayload struct {
	Code string `json:"code"`
}

type PlayerReadyPayload struct {
	Code    string `json:"code"`
	Context string `json:"context,omitempty"`
}

type JoinGamePayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PlayerMovedPayload struct {
	PlayerID  string  `json:"playerId"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	IsMoving  bool    `json:"isMoving"`
	Direction string  `json:"direction"`
}

type PlayerAttackPayload struct {
	PlayerID  string `json:"playerId"`
	Direction string `json:"direction"`
}

type AoeBlastPayload struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

type LightningStrikePayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type CollectCrystalPayload struct {
	CrystalID string `json:"crystalId"`
}

type UpdateHPPayload struct {
	HP int `json:"hp"`
}

type SetInvulnerablePayload struct {
	Invulnerable bool `json:"invulnerable"`
}

func validDirection(dir string) bool {
	switch dir {
	case "up", "down", "left", "right":
		return true
	default:
		return false
	}
}

// DecodeCommand parses one inbound envelope into a Command, validating the
// payload shape before it can reach simulation logic.
func DecodeCommand(raw []byte) (Command, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	decode := func(dst any) error {
		if len(env.Data) == 0 {
			return fmt.Errorf("%w: missing data for %q", ErrInvalidPayload, env.Event)
		}
		if err := json.Unmarshal(env.Data, dst); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidPayload, env.Event, err)
		}
		return nil
	}

	switch env.Event {
	case EventCreateRoom:
		return Command{Type: CmdCreateRoom}, nil
	case EventJoinRoom:
		var p JoinRoomPayload
		if err := decode(&p); err != nil {
			return Command{}, err
		}
		if p.Code == "" {
			return Command{}, fmt.Errorf("%w: joinRoom requires a code", ErrInvalidPayload)
		}
		return Command{Type: CmdJoinRoom, Join: &p}, nil
	case EventPlayerReady:
		var p PlayerReadyPayload
		if err := decode(&p); err != nil {
			return Command{}, err
		}
		if p.Code == "" {
			return Command{}, fmt.Errorf("%w: playerReady requires a code", ErrInvalidPayload)
		}
		return Command{Type: CmdPlayerReady, Ready: &p}, nil
	case EventJoinGame:
		var p JoinGamePayload
		if err := decode(&p); err != nil {
			return Command{}, err
		}
		return Command{Type: CmdJoinGame, JoinGame: &p}, nil
	case EventPlayerMoved:
		var p PlayerMovedPayload
		if err := decode(&p); err != nil {
			return Command{}, err
		}
		if !validDirection(p.Direction) {
			return Command{}, fmt.Errorf("%w: playerMoved direction %q", ErrInvalidPayload, p.Direction)
		}
		return Command{Type: CmdPlayerMoved, Move: &p}, nil
	case EventPlayerAttack:
		var p PlayerAttackPayload
		if err := decode(&p); err != nil {
			return Command{}, err
		}
		if !validDirection(p.Direction) {
			return Command{}, fmt.Errorf("%w: playerAttack direction %q", ErrInvalidPayload, p.Direction)
		}
		return Command{Type: CmdPlayerAttack, Attack: &p}, nil
	case EventAoeBlast:
		var p AoeBlastPayload
		if err := decode(&p); err != nil {
			return Command{}, err
		}
		if p.Radius <= 0 {
			return Command{}, fmt.Errorf("%w: aoeBlast radius must be positive", ErrInvalidPayload)
		}
		return Command{Type: CmdAoeBlast, Blast: &p}, nil
	case EventLightningStrike:
		var p LightningStrikePayload
		if err := decode(&p); err != nil {
			return Command{}, err
		}
		return Command{Type: CmdLightningStrike, Lightning: &p}, nil
	case EventCollectMysteryCrystal:
		var p CollectCrystalPayload
		if err := decode(&p); err != nil {
			return Command{}, err
		}
		if p.CrystalID == "" {
			return Command{}, fmt.Errorf("%w: collectMysteryCrystal requires a crystalId", ErrInvalidPayload)
		}
		return Command{Type: CmdCollectMysteryCrystal, CollectCrystal: &p}, nil
	case EventCollectBloodCrystal:
		var p CollectCrystalPayload
		if err := decode(&p); err != nil {
			return Command{}, err
		}
		if p.CrystalID == "" {
			return Command{}, fmt.Errorf("%w: collectBloodCrystal requires a crystalId", ErrInvalidPayload)
		}
		return Command{Type: CmdCollectBloodCrystal, CollectCrystal: &p}, nil
	case EventUpdatePlayerHP:
		var p UpdateHPPayload
		if err := decode(&p); err != nil {
			return Command{}, err
		}
		return Command{Type: CmdUpdatePlayerHP, HP: &p}, nil
	case EventSetInvulnerable:
		var p SetInvulnerablePayload
		if err := decode(&p); err != nil {
			return Command{}, err
		}
		return Command{Type: CmdSetInvulnerable, Invulnerable: &p}, nil
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
}

// Encode frames an outbound event into envelope bytes.
func Encode(event string, payload any) ([]byte, error) {
	env := Envelope{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("protocol: encode %s: %w", event, err)
		}
		env.Data = data
	}
	return json.Marshal(env)
}
