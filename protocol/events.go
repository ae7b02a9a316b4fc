package protocol

// PlayerSnapshot is the authoritative view of one player sent to clients.
type PlayerSnapshot struct {
	ID               string  `json:"id"`
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	HP               int     `json:"hp"`
	IsDead           bool    `json:"isDead"`
	Invulnerable     bool    `json:"invulnerable"`
	Direction        string  `json:"direction"`
	AttackMultiplier float64 `json:"attackMultiplier"`
	SwapCharges      int     `json:"swapCharges"`
}

// EnemySnapshot is one enemy's broadcast state. State doubles as the
// animation tag clients play.
type EnemySnapshot struct {
	ID     uint64  `json:"id"`
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	HP     int     `json:"hp"`
	Facing string  `json:"facing"`
	State  string  `json:"state"`
}

type ConnectedPayload struct {
	PlayerID string `json:"playerId"`
}

type RoomCreatedPayload struct {
	Code string `json:"code"`
}

type RoomJoinedPayload struct {
	Code    string   `json:"code"`
	Members []string `json:"members"`
}

type JoinErrorPayload struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

type StartGamePayload struct {
	Code      string `json:"code"`
	Level     int    `json:"level"`
	LevelTime int    `json:"levelTime"`
	Weather   string `json:"weather"`
}

type CurrentPlayersPayload struct {
	Players []PlayerSnapshot `json:"players"`
}

type PlayerJoinedPayload struct {
	Player PlayerSnapshot `json:"player"`
}

type PlayerLeftPayload struct {
	PlayerID string `json:"playerId"`
}

type PlayerHitPayload struct {
	PlayerID string `json:"playerId"`
	HP       int    `json:"hp"`
}

type PlayerDiedPayload struct {
	Win     bool   `json:"win"`
	LoserID string `json:"loserId"`
}

type PlayerAttackBroadcast struct {
	PlayerID  string `json:"playerId"`
	Direction string `json:"direction"`
	// Cosmetic reports an attack replayed for spectators only: the attacker
	// was still on cooldown, so no damage was applied.
	Cosmetic bool `json:"cosmetic,omitempty"`
}

type EnemyHitPayload struct {
	EnemyID uint64 `json:"enemyId"`
	HP      int    `json:"hp"`
	By      string `json:"by,omitempty"`
}

type EnemyKilledPayload struct {
	EnemyID uint64 `json:"enemyId"`
	By      string `json:"by,omitempty"`
}

type SpawnEnemyPayload struct {
	Enemy EnemySnapshot `json:"enemy"`
}

type EnemyUpdatePayload struct {
	Enemies    []EnemySnapshot `json:"enemies"`
	ServerTime int64           `json:"serverTime"`
}

type LevelTimerUpdatePayload struct {
	Remaining int `json:"remaining"`
}

type LevelCompletePayload struct {
	Level int `json:"level"`
}

type StartNextLevelPayload struct {
	Level     int    `json:"level"`
	LevelTime int    `json:"levelTime"`
	Weather   string `json:"weather"`
}

type WeatherUpdatePayload struct {
	Weather string `json:"weather"`
}

type CrystalSpawnPayload struct {
	CrystalID string  `json:"crystalId"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

type MysteryCrystalCollectedPayload struct {
	CrystalID string `json:"crystalId"`
	PlayerID  string `json:"playerId"`
	Effect    string `json:"effect"`
}

type BloodCrystalCollectedPayload struct {
	CrystalID string `json:"crystalId"`
	PlayerID  string `json:"playerId"`
}

type LightningStrikeBroadcast struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
