package main

import (
	"math/rand"
	"strings"
	"testing"
)

func TestCrystalIDsArePrefixedAndUnique(t *testing.T) {
	a := newCrystalID("mc")
	b := newCrystalID("bc")
	if !strings.HasPrefix(a, "mc-") || !strings.HasPrefix(b, "bc-") {
		t.Errorf("ids %q, %q missing prefixes", a, b)
	}
	if a == b || newCrystalID("mc") == a {
		t.Error("crystal ids must be unique")
	}
}

func TestRollMysteryEffectCoversAllOutcomes(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		effect := rollMysteryEffect(rng)
		switch effect {
		case crystalEffectHeal, crystalEffectAttackBoost, crystalEffectSwapCharge:
			seen[effect] = true
		default:
			t.Fatalf("unknown effect %q", effect)
		}
	}
	if len(seen) != 3 {
		t.Errorf("expected all three effects over 100 rolls, saw %v", seen)
	}
}

func TestApplyMysteryEffect(t *testing.T) {
	p := newPlayerState("p", 0, 0)
	p.HP = 3
	applyMysteryEffect(p, crystalEffectHeal)
	if p.HP != 4 {
		t.Errorf("heal: hp=%d", p.HP)
	}
	p.HP = playerMaxHealth
	applyMysteryEffect(p, crystalEffectHeal)
	if p.HP != playerMaxHealth {
		t.Errorf("heal must cap at max, hp=%d", p.HP)
	}

	applyMysteryEffect(p, crystalEffectAttackBoost)
	applyMysteryEffect(p, crystalEffectAttackBoost)
	if p.AttackMultiplier != 2 {
		t.Errorf("two boosts should stack to 2x, got %v", p.AttackMultiplier)
	}

	applyMysteryEffect(p, crystalEffectSwapCharge)
	if p.SwapCharges != 1 {
		t.Errorf("swap charge count %d", p.SwapCharges)
	}
}

func TestApplyBloodEffect(t *testing.T) {
	p := newPlayerState("p", 0, 0)
	p.HP = 1
	applyBloodEffect(p)
	if p.HP != 2 {
		t.Errorf("blood heal: hp=%d", p.HP)
	}
	p.HP = playerMaxHealth
	applyBloodEffect(p)
	if p.HP != playerMaxHealth {
		t.Errorf("blood heal must cap at max, hp=%d", p.HP)
	}
}
