package main

import "testing"

func TestMeleeConeHit(t *testing.T) {
	origin := vec2{X: 0, Y: 0}
	cases := []struct {
		name   string
		facing FacingDirection
		target vec2
		want   bool
	}{
		{"in range and width", FacingRight, vec2{X: 40, Y: 10}, true},
		{"too wide", FacingRight, vec2{X: 40, Y: 30}, false},
		{"behind attacker", FacingRight, vec2{X: -20, Y: 0}, false},
		{"overlapping attacker", FacingRight, vec2{X: 1, Y: 0}, false},
		{"at max forward", FacingRight, vec2{X: meleeAttackRange + tileSize, Y: 0}, true},
		{"past max forward", FacingRight, vec2{X: meleeAttackRange + tileSize + 1, Y: 0}, false},
		{"at half width edge", FacingRight, vec2{X: 30, Y: meleeAttackWidth / 2}, true},
		{"facing up hits above", FacingUp, vec2{X: 5, Y: -30}, true},
		{"facing up misses below", FacingUp, vec2{X: 5, Y: 30}, false},
		{"facing left hits left", FacingLeft, vec2{X: -30, Y: -10}, true},
		{"facing down hits below", FacingDown, vec2{X: 0, Y: 50}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := meleeConeHit(origin, tc.facing, tc.target); got != tc.want {
				t.Errorf("meleeConeHit(%v, %+v) = %v, want %v", tc.facing, tc.target, got, tc.want)
			}
		})
	}
}

func TestApplyDamage(t *testing.T) {
	hp, died, changed := applyDamage(5, false, 2)
	if hp != 3 || died || !changed {
		t.Errorf("plain hit: got hp=%d died=%v changed=%v", hp, died, changed)
	}

	hp, died, changed = applyDamage(2, false, 5)
	if hp != 0 || !died || !changed {
		t.Errorf("lethal hit should clamp at zero: hp=%d died=%v changed=%v", hp, died, changed)
	}

	hp, died, changed = applyDamage(0, true, 3)
	if hp != 0 || died || changed {
		t.Errorf("hitting a corpse must be a no-op: hp=%d died=%v changed=%v", hp, died, changed)
	}

	hp, died, changed = applyDamage(4, false, 0)
	if hp != 4 || died || changed {
		t.Errorf("zero damage must be a no-op: hp=%d died=%v changed=%v", hp, died, changed)
	}
}

func TestScaleDamage(t *testing.T) {
	cases := []struct {
		base       int
		multiplier float64
		want       int
	}{
		{1, 1, 1},
		{1, 1.5, 1},
		{2, 1.5, 3},
		{1, 2, 2},
		{1, 0, 1},
		{1, 0.5, 1},
	}
	for _, tc := range cases {
		if got := scaleDamage(tc.base, tc.multiplier); got != tc.want {
			t.Errorf("scaleDamage(%d, %v) = %d, want %d", tc.base, tc.multiplier, got, tc.want)
		}
	}
}

func TestDeriveFacing(t *testing.T) {
	cases := []struct {
		dx, dy float64
		want   FacingDirection
	}{
		{1, 0, FacingRight},
		{-1, 0, FacingLeft},
		{0, 1, FacingDown},
		{0, -1, FacingUp},
		{3, 2, FacingRight},
		{2, -3, FacingUp},
		{0, 0, FacingLeft},
	}
	for _, tc := range cases {
		if got := deriveFacing(tc.dx, tc.dy, FacingLeft); got != tc.want {
			t.Errorf("deriveFacing(%v, %v) = %v, want %v", tc.dx, tc.dy, got, tc.want)
		}
	}
}

func TestParseFacing(t *testing.T) {
	if got, ok := parseFacing("left"); !ok || got != FacingLeft {
		t.Errorf("parseFacing(left) = %v, %v", got, ok)
	}
	if got, ok := parseFacing("sideways"); ok || got != defaultFacing {
		t.Errorf("invalid facing should fall back to default: %v, %v", got, ok)
	}
}
