package main

import (
	"math/rand"
	"sync/atomic"
	"time"

	"stormfall/server/protocol"
)

// EnemyTier is the tagged variant standing in for an enemy class hierarchy;
// per-tier behavior differences live entirely in the stat table.
type EnemyTier int

const (
	Tier1 EnemyTier = iota
	Tier2
	Tier3
)

func (t EnemyTier) String() string {
	switch t {
	case Tier2:
		return "tier2"
	case Tier3:
		return "tier3"
	default:
		return "tier1"
	}
}

type enemyStats struct {
	MaxHP           int
	Damage          int
	WanderSpeed     float64
	ChaseSpeed      float64
	DetectionRadius float64
	AttackRange     float64
}

var tierStatTable = [...]enemyStats{
	Tier1: {MaxHP: 3, Damage: 1, WanderSpeed: 40, ChaseSpeed: 70, DetectionRadius: 160, AttackRange: 24},
	Tier2: {MaxHP: 6, Damage: 1, WanderSpeed: 35, ChaseSpeed: 85, DetectionRadius: 200, AttackRange: 26},
	Tier3: {MaxHP: 10, Damage: 2, WanderSpeed: 30, ChaseSpeed: 95, DetectionRadius: 240, AttackRange: 28},
}

func (t EnemyTier) stats() enemyStats {
	if t < Tier1 || t > Tier3 {
		return tierStatTable[Tier1]
	}
	return tierStatTable[t]
}

// behaviorState enumerates the AI FSM states. The string value doubles as
// the animation tag clients key off.
type behaviorState string

const (
	stateWander      behaviorState = "wander"
	stateDirectChase behaviorState = "chase"
	stateMemoryChase behaviorState = "search"
	stateAttack      behaviorState = "attack"
	stateDead        behaviorState = "dead"
)

// nextEnemyID hands out process-wide monotonic enemy identifiers.
var nextEnemyID atomic.Uint64

type enemyState struct {
	ID     uint64
	Tier   EnemyTier
	X      float64
	Y      float64
	HP     int
	Facing FacingDirection
	State  behaviorState

	lastSeenPos vec2
	lastSeenAt  time.Time

	pendingPath   bool
	lastPathAsk   time.Time
	lastPathGoal  tile
	path          []vec2
	pathCursor    int
	wanderTarget  *vec2
	nextWanderAt  time.Time
	stallCheckPos vec2
	stallSince    time.Time

	attackStartedAt time.Time
	attackResolved  bool
	attackTargetID  string
	lastAttackAt    time.Time

	diedAt time.Time
}

func newEnemyState(tier EnemyTier, pos vec2) *enemyState {
	return &enemyState{
		ID:            nextEnemyID.Add(1),
		Tier:          tier,
		X:             pos.X,
		Y:             pos.Y,
		HP:            tier.stats().MaxHP,
		Facing:        defaultFacing,
		State:         stateWander,
		stallCheckPos: pos,
	}
}

func (e *enemyState) pos() vec2 {
	return vec2{X: e.X, Y: e.Y}
}

// markDead flips the enemy into its terminal state; it stops acting
// immediately and is swept by the driver once the death window elapses.
func (e *enemyState) markDead(now time.Time) {
	if e.State == stateDead {
		return
	}
	e.State = stateDead
	e.HP = 0
	e.diedAt = now
	e.clearPath()
}

func (e *enemyState) clearPath() {
	e.path = nil
	e.pathCursor = 0
	e.pendingPath = false
	e.wanderTarget = nil
}

func (e *enemyState) snapshot() protocol.EnemySnapshot {
	return protocol.EnemySnapshot{
		ID:     e.ID,
		Type:   e.Tier.String(),
		X:      e.X,
		Y:      e.Y,
		HP:     e.HP,
		Facing: string(e.Facing),
		State:  string(e.State),
	}
}

// tierWeights is the level-stepped weight table for wave composition: early
// levels are tier-1 dominant, later levels shift mass toward the heavier
// tiers.
func tierWeights(level int) (int, int, int) {
	switch {
	case level <= 2:
		return 100, 0, 0
	case level <= 4:
		return 70, 20, 0
	case level <= 6:
		return 50, 35, 15
	default:
		return 30, 40, 30
	}
}

// pickTier samples the weighted tier distribution for the level. A zero
// weight total degrades to Tier1 rather than failing.
func pickTier(rng *rand.Rand, level int) EnemyTier {
	w1, w2, w3 := tierWeights(level)
	return pickTierWeighted(rng, w1, w2, w3)
}

// pickTierWeighted rolls a tier from explicit weights. A degenerate weight
// set with no mass falls back to the lightest tier.
func pickTierWeighted(rng *rand.Rand, w1, w2, w3 int) EnemyTier {
	total := w1 + w2 + w3
	if total <= 0 {
		return Tier1
	}
	roll := rng.Intn(total)
	switch {
	case roll < w1:
		return Tier1
	case roll < w1+w2:
		return Tier2
	default:
		return Tier3
	}
}
