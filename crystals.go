package main

import (
	"fmt"
	"math/rand"
	"sync/atomic"
)

// crystalState is one collectible on the floor. Mystery crystals come from
// the decaying-interval spawner; blood crystals drop where enemies die.
type crystalState struct {
	ID string
	X  float64
	Y  float64
}

var nextCrystalID atomic.Uint64

func newCrystalID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, nextCrystalID.Add(1))
}

// Mystery crystal effects. The roll happens server-side so both clients see
// the same outcome.
const (
	crystalEffectHeal        = "heal"
	crystalEffectAttackBoost = "attackBoost"
	crystalEffectSwapCharge  = "swapCharge"
)

func rollMysteryEffect(rng *rand.Rand) string {
	switch rng.Intn(3) {
	case 0:
		return crystalEffectHeal
	case 1:
		return crystalEffectAttackBoost
	default:
		return crystalEffectSwapCharge
	}
}

// applyMysteryEffect mutates the collecting player per the rolled effect.
func applyMysteryEffect(p *playerState, effect string) {
	switch effect {
	case crystalEffectHeal:
		if p.HP < playerMaxHealth {
			p.HP++
		}
	case crystalEffectAttackBoost:
		p.AttackMultiplier += 0.5
	case crystalEffectSwapCharge:
		p.SwapCharges++
	}
}

// applyBloodEffect is the fixed blood-crystal pickup: one point of health,
// capped at the maximum.
func applyBloodEffect(p *playerState) {
	if p.HP < playerMaxHealth {
		p.HP++
	}
}
