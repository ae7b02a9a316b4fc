package main

import "math"

// FacingDirection is one of the four cardinal headings.
type FacingDirection string

const (
	FacingUp    FacingDirection = "up"
	FacingDown  FacingDirection = "down"
	FacingLeft  FacingDirection = "left"
	FacingRight FacingDirection = "right"
)

const defaultFacing = FacingDown

func parseFacing(value string) (FacingDirection, bool) {
	switch FacingDirection(value) {
	case FacingUp, FacingDown, FacingLeft, FacingRight:
		return FacingDirection(value), true
	default:
		return defaultFacing, false
	}
}

func facingVector(facing FacingDirection) (float64, float64) {
	switch facing {
	case FacingUp:
		return 0, -1
	case FacingDown:
		return 0, 1
	case FacingLeft:
		return -1, 0
	default:
		return 1, 0
	}
}

// deriveFacing maps a movement vector onto the dominant cardinal heading,
// keeping the fallback when the vector is zero.
func deriveFacing(dx, dy float64, fallback FacingDirection) FacingDirection {
	if dx == 0 && dy == 0 {
		return fallback
	}
	if math.Abs(dx) >= math.Abs(dy) {
		if dx < 0 {
			return FacingLeft
		}
		return FacingRight
	}
	if dy < 0 {
		return FacingUp
	}
	return FacingDown
}

// meleeConeHit reports whether target falls inside the attacker's strike
// zone. With cardinal facings the zone is an oriented rectangle: the target's
// offset projected onto the facing vector must land in
// [meleeMinForward, attackRange+tileSize] and its perpendicular offset must
// stay within half the attack width.
func meleeConeHit(origin vec2, facing FacingDirection, target vec2) bool {
	fx, fy := facingVector(facing)
	dx := target.X - origin.X
	dy := target.Y - origin.Y
	forward := dx*fx + dy*fy
	side := dx*-fy + dy*fx
	if forward < meleeMinForward || forward > meleeAttackRange+tileSize {
		return false
	}
	return math.Abs(side) <= meleeAttackWidth/2
}

// blastHit reports whether target lies within radius of the blast center.
func blastHit(center, target vec2, radius float64) bool {
	return distance(center, target) <= radius
}

// applyDamage decrements hp and reports (newHP, died, changed). A target
// already dead is left untouched so repeated hits on a corpse are no-ops.
// hp is clamped at zero in stored state.
func applyDamage(hp int, dead bool, amount int) (int, bool, bool) {
	if dead || amount <= 0 {
		return hp, false, false
	}
	hp -= amount
	if hp <= 0 {
		return 0, true, true
	}
	return hp, false, true
}

// scaleDamage applies an attacker multiplier, flooring to at least one point
// so a buffless hit always lands for damage.
func scaleDamage(base int, multiplier float64) int {
	if multiplier < 1 {
		multiplier = 1
	}
	scaled := int(math.Floor(float64(base) * multiplier))
	if scaled < 1 {
		return 1
	}
	return scaled
}
