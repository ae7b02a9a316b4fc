package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"stormfall/server/protocol"
)

// wireMessages gathers every payload shape the server emits or accepts so a
// single schema document covers the whole protocol surface.
type wireMessages struct {
	Envelope                protocol.Envelope                       `json:"envelope"`
	JoinRoom                protocol.JoinRoomPayload                `json:"joinRoom"`
	PlayerReady             protocol.PlayerReadyPayload             `json:"playerReady"`
	JoinGame                protocol.JoinGamePayload                `json:"joinGame"`
	PlayerMoved             protocol.PlayerMovedPayload             `json:"playerMoved"`
	PlayerAttack            protocol.PlayerAttackPayload            `json:"playerAttack"`
	AoeBlast                protocol.AoeBlastPayload                `json:"aoeBlast"`
	LightningStrike         protocol.LightningStrikePayload         `json:"lightningStrikeRequest"`
	CollectCrystal          protocol.CollectCrystalPayload          `json:"collectCrystal"`
	UpdatePlayerHP          protocol.UpdateHPPayload                `json:"updatePlayerHP"`
	SetInvulnerable         protocol.SetInvulnerablePayload         `json:"setInvulnerable"`
	RoomCreated             protocol.RoomCreatedPayload             `json:"roomCreated"`
	RoomJoined              protocol.RoomJoinedPayload              `json:"roomJoined"`
	JoinError               protocol.JoinErrorPayload               `json:"joinError"`
	StartGame               protocol.StartGamePayload               `json:"startGame"`
	CurrentPlayers          protocol.CurrentPlayersPayload          `json:"currentPlayers"`
	PlayerJoined            protocol.PlayerJoinedPayload            `json:"playerJoined"`
	PlayerLeft              protocol.PlayerLeftPayload              `json:"playerLeft"`
	PlayerDied              protocol.PlayerDiedPayload              `json:"playerDied"`
	EnemyHit                protocol.EnemyHitPayload                `json:"enemyHit"`
	EnemyKilled             protocol.EnemyKilledPayload             `json:"enemyKilled"`
	SpawnEnemy              protocol.SpawnEnemyPayload              `json:"spawnEnemy"`
	EnemyUpdate             protocol.EnemyUpdatePayload             `json:"enemyUpdate"`
	LevelTimerUpdate        protocol.LevelTimerUpdatePayload        `json:"levelTimerUpdate"`
	LevelComplete           protocol.LevelCompletePayload           `json:"levelComplete"`
	StartNextLevel          protocol.StartNextLevelPayload          `json:"startNextLevel"`
	WeatherUpdate           protocol.WeatherUpdatePayload           `json:"weatherUpdate"`
	CrystalSpawn            protocol.CrystalSpawnPayload            `json:"crystalSpawn"`
	MysteryCrystalCollected protocol.MysteryCrystalCollectedPayload `json:"mysteryCrystalCollected"`
	BloodCrystalCollected   protocol.BloodCrystalCollectedPayload   `json:"bloodCrystalCollected"`
}

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	if err := writeSchema(outPath, buildSchema()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}

func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(new(wireMessages))
	schema.Title = "Stormfall Wire Protocol"
	schema.Description = "Payload shapes for every event exchanged between clients and the simulation server"
	return schema
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
