package main

import "time"

const (
	writeWait  = 10 * time.Second
	pingPeriod = 45 * time.Second
	tickPeriod = 100 * time.Millisecond
	tickBudget = 30 * time.Millisecond

	tileSize = 16.0

	playerMaxHealth      = 5
	meleeAttackCooldown  = 500 * time.Millisecond
	meleeAttackRange     = 45.0
	meleeAttackWidth     = 36.0
	meleeMinForward      = tileSize * 0.2
	meleeBaseDamage      = 1
	aoeBlastDamage       = 2
	lightningDamage      = 2
	lightningRadius      = 80.0
	bloodCrystalDropOdds = 0.25
	spawnSafeRadius      = 80.0

	enemyAttackCooldown = 1000 * time.Millisecond
	enemyAttackWindup   = 300 * time.Millisecond
	enemyAttackLock     = 600 * time.Millisecond
	enemyMemoryWindow   = 2000 * time.Millisecond
	enemyStallWindow    = 2 * time.Second
	enemyStallEpsilon   = 1.5
	enemyDeathWindow    = 1 * time.Second
	enemyWanderPauseMin = 300 * time.Millisecond
	enemyWanderPauseMax = 1200 * time.Millisecond
	pathRequestCooldown = 250 * time.Millisecond
	pathSearchBudget    = 4096
	waypointArriveEps   = 3.0

	roomCodeLength = 4
	roomMaxMembers = 2

	levelBaseSeconds     = 30
	levelBonusSeconds    = 10
	levelClearGrace      = 1 * time.Second
	levelTransitionDelay = 4 * time.Second
	matchStartDelay      = 3 * time.Second

	waveBasePeriod  = 5 * time.Second
	wavePeriodStep  = 500 * time.Millisecond
	waveFloorPeriod = 1500 * time.Millisecond

	crystalStartPeriod = 20 * time.Second
	crystalFloorPeriod = 6 * time.Second
	crystalDecaySpan   = 120 * time.Second

	difficultyFallback = 30000.0
)
