package main

import (
	"math"
	"time"
)

// advanceEnemiesLocked steps every enemy's behavior state machine once.
// Priority order per enemy: finish an attack lock, then direct chase on
// line of sight, then memory chase toward the last seen position, then
// wander. Dead enemies do nothing and wait for the sweep.
func (r *Room) advanceEnemiesLocked(now time.Time, dt float64) {
	for _, enemy := range r.enemiesByIDLocked() {
		if enemy.State == stateDead {
			continue
		}
		r.stepEnemyLocked(enemy, now, dt)
		r.checkStallLocked(enemy, now)
	}
}

func (r *Room) stepEnemyLocked(enemy *enemyState, now time.Time, dt float64) {
	stats := enemy.Tier.stats()

	// An attack in progress freezes the enemy until the lock expires. The
	// damage lands once, at the windup instant, and only if the target is
	// still in range then; a telegraphed hit can be dodged.
	if enemy.State == stateAttack {
		if !enemy.attackResolved && now.Sub(enemy.attackStartedAt) >= enemyAttackWindup {
			enemy.attackResolved = true
			if target, ok := r.game.players[enemy.attackTargetID]; ok && !target.IsDead {
				if distance(enemy.pos(), target.pos()) <= stats.AttackRange {
					r.damagePlayerLocked(target, stats.Damage)
				}
			}
		}
		if now.Sub(enemy.attackStartedAt) < enemyAttackLock {
			return
		}
		enemy.State = stateWander
	}

	target, targetDist := r.closestLivePlayerLocked(enemy.pos())
	grid := r.hub.grid

	sees := false
	if target != nil && targetDist <= stats.DetectionRadius {
		sees = grid.lineOfSight(grid.tileAt(enemy.X, enemy.Y), grid.tileAt(target.X, target.Y))
	}

	switch {
	case sees:
		enemy.lastSeenPos = target.pos()
		enemy.lastSeenAt = now
		enemy.clearPath()

		if targetDist <= stats.AttackRange && now.Sub(enemy.lastAttackAt) >= enemyAttackCooldown {
			enemy.State = stateAttack
			enemy.attackStartedAt = now
			enemy.attackResolved = false
			enemy.attackTargetID = target.ID
			enemy.lastAttackAt = now
			enemy.Facing = deriveFacing(target.X-enemy.X, target.Y-enemy.Y, enemy.Facing)
			return
		}

		enemy.State = stateDirectChase
		r.moveEnemyLocked(enemy, target.pos(), stats.ChaseSpeed, dt)

	case !enemy.lastSeenAt.IsZero() && now.Sub(enemy.lastSeenAt) <= enemyMemoryWindow:
		enemy.State = stateMemoryChase
		r.memoryChaseLocked(enemy, now, stats, dt)

	default:
		enemy.State = stateWander
		enemy.path = nil
		enemy.pathCursor = 0
		r.wanderLocked(enemy, now, stats.WanderSpeed, dt)
	}
}

func (r *Room) closestLivePlayerLocked(from vec2) (*playerState, float64) {
	var best *playerState
	bestDist := math.MaxFloat64
	for _, p := range r.game.players {
		if p.IsDead {
			continue
		}
		d := distance(from, p.pos())
		if d < bestDist {
			best = p
			bestDist = d
		}
	}
	return best, bestDist
}

// memoryChaseLocked pursues the last seen position via pathfinding. Requests
// are throttled, deduplicated by goal tile, and limited to one in flight per
// enemy; until a path arrives the enemy drifts on whatever waypoints it
// already has, or falls back to wandering so it never stands frozen.
func (r *Room) memoryChaseLocked(enemy *enemyState, now time.Time, stats enemyStats, dt float64) {
	grid := r.hub.grid
	if len(enemy.path) == 0 && !enemy.pendingPath {
		goal := grid.tileAt(enemy.lastSeenPos.X, enemy.lastSeenPos.Y)
		if now.Sub(enemy.lastPathAsk) >= pathRequestCooldown || goal != enemy.lastPathGoal {
			submitted := r.hub.pathfinder.Submit(pathRequest{
				room:    r,
				roomGen: r.generation,
				enemyID: enemy.ID,
				from:    enemy.pos(),
				to:      enemy.lastSeenPos,
				goal:    goal,
			})
			if submitted {
				enemy.pendingPath = true
				enemy.lastPathAsk = now
				enemy.lastPathGoal = goal
			}
		}
	}
	if len(enemy.path) == 0 {
		r.wanderLocked(enemy, now, stats.WanderSpeed, dt)
		return
	}

	waypoint := enemy.path[enemy.pathCursor]
	r.moveEnemyLocked(enemy, waypoint, stats.ChaseSpeed, dt)
	if distance(enemy.pos(), waypoint) <= waypointArriveEps {
		enemy.pathCursor++
		if enemy.pathCursor >= len(enemy.path) {
			// Path exhausted without reacquiring sight; give up the chase.
			enemy.clearPath()
			enemy.lastSeenAt = time.Time{}
		}
	}
}

// wanderLocked is the default behavior: drift to a random adjacent open tile
// center, pause briefly, repeat. A single-step neighbor check only; wander
// never pays for pathfinding.
func (r *Room) wanderLocked(enemy *enemyState, now time.Time, speed, dt float64) {
	if enemy.wanderTarget == nil {
		if now.Before(enemy.nextWanderAt) {
			return
		}
		grid := r.hub.grid
		neighbors := grid.openNeighbors(grid.tileAt(enemy.X, enemy.Y))
		if len(neighbors) == 0 {
			enemy.nextWanderAt = now.Add(enemyWanderPauseMax)
			return
		}
		center := grid.tileCenter(neighbors[r.rng.Intn(len(neighbors))])
		enemy.wanderTarget = &center
	}

	targetPos := *enemy.wanderTarget
	r.moveEnemyLocked(enemy, targetPos, speed, dt)
	if distance(enemy.pos(), targetPos) <= waypointArriveEps {
		enemy.wanderTarget = nil
		pause := enemyWanderPauseMin + time.Duration(r.rng.Int63n(int64(enemyWanderPauseMax-enemyWanderPauseMin)))
		enemy.nextWanderAt = now.Add(pause)
	}
}

// moveEnemyLocked advances the enemy straight toward target, refusing to
// step into a blocked tile.
func (r *Room) moveEnemyLocked(enemy *enemyState, target vec2, speed, dt float64) {
	dx := target.X - enemy.X
	dy := target.Y - enemy.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return
	}
	step := speed * dt
	if step > dist {
		step = dist
	}
	nx := enemy.X + dx/dist*step
	ny := enemy.Y + dy/dist*step
	grid := r.hub.grid
	if grid.Blocked(grid.tileAt(nx, ny)) {
		// Try sliding along one axis before giving up the step.
		if !grid.Blocked(grid.tileAt(nx, enemy.Y)) {
			ny = enemy.Y
		} else if !grid.Blocked(grid.tileAt(enemy.X, ny)) {
			nx = enemy.X
		} else {
			return
		}
	}
	enemy.X = nx
	enemy.Y = ny
	enemy.Facing = deriveFacing(dx, dy, enemy.Facing)
}

// checkStallLocked is the anti-deadlock rule: an enemy that should be moving
// but has not covered more than an epsilon in two seconds is teleported to
// an adjacent open tile and has its chase state cleared.
func (r *Room) checkStallLocked(enemy *enemyState, now time.Time) {
	if enemy.State == stateDead || enemy.State == stateAttack {
		enemy.stallCheckPos = enemy.pos()
		enemy.stallSince = now
		return
	}
	if enemy.State == stateWander && enemy.wanderTarget == nil {
		// Idle between wander hops; a pause is not a stall.
		enemy.stallCheckPos = enemy.pos()
		enemy.stallSince = now
		return
	}
	if distance(enemy.pos(), enemy.stallCheckPos) > enemyStallEpsilon {
		enemy.stallCheckPos = enemy.pos()
		enemy.stallSince = now
		return
	}
	if enemy.stallSince.IsZero() {
		enemy.stallSince = now
		return
	}
	if now.Sub(enemy.stallSince) <= enemyStallWindow {
		return
	}

	grid := r.hub.grid
	current := grid.tileAt(enemy.X, enemy.Y)
	neighbors := grid.openNeighbors(current)
	var dest tile
	if len(neighbors) > 0 {
		dest = neighbors[r.rng.Intn(len(neighbors))]
	} else if fallback, ok := grid.closestWalkable(current); ok {
		dest = fallback
	} else {
		return
	}
	center := grid.tileCenter(dest)
	enemy.X = center.X
	enemy.Y = center.Y
	enemy.clearPath()
	enemy.lastSeenAt = time.Time{}
	enemy.State = stateWander
	enemy.stallCheckPos = enemy.pos()
	enemy.stallSince = now
}
