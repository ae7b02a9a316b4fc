package main

import (
	"time"

	"stormfall/server/protocol"
)

// playerState is one player's authoritative record inside a room. It is only
// touched under the owning room's mutex.
type playerState struct {
	ID               string
	X                float64
	Y                float64
	spawnX           float64
	spawnY           float64
	HP               int
	IsDead           bool
	Invulnerable     bool
	IsMoving         bool
	Direction        FacingDirection
	AttackMultiplier float64
	SwapCharges      int
	lastAttackAt     time.Time
}

func newPlayerState(id string, x, y float64) *playerState {
	return &playerState{
		ID:               id,
		X:                x,
		Y:                y,
		spawnX:           x,
		spawnY:           y,
		HP:               playerMaxHealth,
		Direction:        defaultFacing,
		AttackMultiplier: 1,
	}
}

// resetForMatch restores the fields a fresh level expects while keeping the
// identity and connection association intact.
func (p *playerState) resetForMatch(x, y float64) {
	p.X = x
	p.Y = y
	p.HP = playerMaxHealth
	p.IsDead = false
	p.Invulnerable = false
	p.IsMoving = false
	p.Direction = defaultFacing
	p.AttackMultiplier = 1
	p.SwapCharges = 0
	p.lastAttackAt = time.Time{}
}

func (p *playerState) pos() vec2 {
	return vec2{X: p.X, Y: p.Y}
}

func (p *playerState) snapshot() protocol.PlayerSnapshot {
	return protocol.PlayerSnapshot{
		ID:               p.ID,
		X:                p.X,
		Y:                p.Y,
		HP:               p.HP,
		IsDead:           p.IsDead,
		Invulnerable:     p.Invulnerable,
		Direction:        string(p.Direction),
		AttackMultiplier: p.AttackMultiplier,
		SwapCharges:      p.SwapCharges,
	}
}
