package main

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"stormfall/server/logging"
	"stormfall/server/protocol"
)

var weatherKinds = [...]string{"clear", "rain", "snow", "storm"}

// gameState is the authoritative mutable state of one match. It is owned
// exclusively by its Room and only ever touched under the room mutex.
type gameState struct {
	players         map[string]*playerState
	enemies         map[uint64]*enemyState
	mysteryCrystals map[string]*crystalState
	bloodCrystals   map[string]*crystalState

	level            int
	levelTimeSeconds int
	levelRemaining   int
	levelStartedAt   time.Time
	matchStartedAt   time.Time
	weather          string
}

func newGameState() *gameState {
	return &gameState{
		players:          make(map[string]*playerState),
		enemies:          make(map[uint64]*enemyState),
		mysteryCrystals:  make(map[string]*crystalState),
		bloodCrystals:    make(map[string]*crystalState),
		level:            1,
		levelTimeSeconds: levelBaseSeconds,
		levelRemaining:   levelBaseSeconds,
		weather:          weatherKinds[0],
	}
}

// Room is one isolated 2-player match. All game state mutation happens under
// mu, so the scheduler timers, the path result drain, and the simulation
// driver each see a consistent world. generation increments on every reset,
// halt, or teardown; asynchronous work tagged with an older generation is
// discarded instead of applied.
type Room struct {
	code string
	hub  *Hub

	mu         sync.Mutex
	sessions   []*session
	ready      map[string]bool
	game       *gameState
	sched      *scheduler
	generation uint64
	stopped    bool
	destroyed  bool

	pathResults chan pathResult
	rng         *rand.Rand

	tickCount atomic.Uint64
	slowTicks atomic.Uint64
}

func newRoom(code string, hub *Hub, seed int64) *Room {
	return &Room{
		code:        code,
		hub:         hub,
		ready:       make(map[string]bool),
		game:        newGameState(),
		sched:       newScheduler(),
		stopped:     true,
		pathResults: make(chan pathResult, 64),
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// --- outbound helpers (callers hold r.mu) ---

func (r *Room) sendToLocked(s *session, event string, payload any) {
	data, err := protocol.Encode(event, payload)
	if err != nil {
		r.hub.logger.Warnw("encode event", "event", event, "err", err)
		return
	}
	s.enqueue(data)
}

func (r *Room) broadcastLocked(event string, payload any) {
	data, err := protocol.Encode(event, payload)
	if err != nil {
		r.hub.logger.Warnw("encode event", "event", event, "err", err)
		return
	}
	for _, s := range r.sessions {
		s.enqueue(data)
	}
}

func (r *Room) broadcastExceptLocked(skip *session, event string, payload any) {
	data, err := protocol.Encode(event, payload)
	if err != nil {
		r.hub.logger.Warnw("encode event", "event", event, "err", err)
		return
	}
	for _, s := range r.sessions {
		if s == skip {
			continue
		}
		s.enqueue(data)
	}
}

func (r *Room) publish(event logging.Event) {
	event.Time = time.Now()
	event.Room = r.code
	r.hub.publisher.Publish(context.Background(), event)
}

// --- membership ---

func (r *Room) memberIDsLocked() []string {
	ids := make([]string, 0, len(r.sessions))
	for _, s := range r.sessions {
		ids = append(ids, s.id)
	}
	return ids
}

// addSession admits the session unless the room is full or has already been
// torn down. A join can race a last-member disconnect, so the destroyed flag
// keeps anyone from being admitted into an unindexed room.
func (r *Room) addSession(s *session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return ErrRoomNotFound
	}
	if len(r.sessions) >= roomMaxMembers {
		return ErrRoomFull
	}
	r.sessions = append(r.sessions, s)
	r.broadcastLocked(protocol.EventRoomJoined, protocol.RoomJoinedPayload{
		Code:    r.code,
		Members: r.memberIDsLocked(),
	})
	return nil
}

// removeSession drops a member and reports how many remain. An empty room is
// the caller's cue to destroy it; exactly one remaining member triggers the
// winner declaration.
func (r *Room) removeSession(s *session) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := false
	for i, member := range r.sessions {
		if member == s {
			r.sessions = append(r.sessions[:i], r.sessions[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return len(r.sessions)
	}
	delete(r.ready, s.id)
	delete(r.game.players, s.id)
	r.broadcastLocked(protocol.EventPlayerLeft, protocol.PlayerLeftPayload{PlayerID: s.id})
	return len(r.sessions)
}

// declareWinner halts the simulation and tells the surviving member it won.
// The room entry itself persists until the survivor also leaves.
func (r *Room) declareWinner(loserID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.haltLocked()
	r.broadcastLocked(protocol.EventPlayerDied, protocol.PlayerDiedPayload{Win: true, LoserID: loserID})
	r.publish(logging.Event{
		Type:     "match_won_by_forfeit",
		Actor:    logging.EntityRef{ID: loserID, Kind: logging.EntityKindPlayer},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
	})
}

// destroy tears the room down: all timers cancelled, generation bumped so
// in-flight pathfinding results are discarded.
func (r *Room) destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyed = true
	r.haltLocked()
	r.publish(logging.Event{
		Type:     "room_destroyed",
		Actor:    logging.EntityRef{ID: r.code, Kind: logging.EntityKindRoom},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
	})
}

func (r *Room) haltLocked() {
	r.stopped = true
	r.generation++
	r.sched.stopAll()
}

func (r *Room) isStopped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}

func (r *Room) memberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// --- ready / match start ---

// markReady records a member's ready signal; once every current member is
// ready the match (re)starts.
func (r *Room) markReady(s *session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ready[s.id] = true
	if len(r.sessions) == 0 {
		return
	}
	for _, member := range r.sessions {
		if !r.ready[member.id] {
			return
		}
	}
	r.restartLocked(time.Now())
}

// restartLocked resets the match to level one and schedules the timer
// cascade after the fixed start delay.
func (r *Room) restartLocked(now time.Time) {
	r.generation++
	gen := r.generation
	r.stopped = false
	r.sched.reset()
	r.ready = make(map[string]bool)

	g := r.game
	g.enemies = make(map[uint64]*enemyState)
	g.mysteryCrystals = make(map[string]*crystalState)
	g.bloodCrystals = make(map[string]*crystalState)
	g.level = 1
	g.levelTimeSeconds = levelBaseSeconds
	g.levelRemaining = levelBaseSeconds
	g.levelStartedAt = now
	g.matchStartedAt = now
	g.weather = r.rollWeatherLocked()
	// Restarts return everyone to the position they joined the game at.
	for _, p := range g.players {
		p.resetForMatch(p.spawnX, p.spawnY)
	}

	// Drain any stale path results from the previous generation now so the
	// channel has room for fresh ones.
drain:
	for {
		select {
		case <-r.pathResults:
		default:
			break drain
		}
	}

	r.broadcastLocked(protocol.EventStartGame, protocol.StartGamePayload{
		Code:      r.code,
		Level:     g.level,
		LevelTime: g.levelTimeSeconds,
		Weather:   g.weather,
	})
	r.publish(logging.Event{
		Type:     "match_started",
		Actor:    logging.EntityRef{ID: r.code, Kind: logging.EntityKindRoom},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Extra:    map[string]any{"members": len(r.sessions)},
	})

	r.sched.set(timerMatchStart, matchStartDelay, r.timed(gen, func(now time.Time) {
		r.armLevelTickLocked(gen)
		r.armWaveLocked(gen)
		r.armCrystalLocked(gen, now)
	}))
}

// timed wraps a scheduler callback with the room lock and the generation
// check every asynchronous mutation must pass.
func (r *Room) timed(gen uint64, fn func(now time.Time)) func() {
	return func() {
		now := time.Now()
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.stopped || r.generation != gen {
			return
		}
		fn(now)
	}
}

func (r *Room) rollWeatherLocked() string {
	return weatherKinds[r.rng.Intn(len(weatherKinds))]
}

// --- level / wave / crystal timers ---

func (r *Room) armLevelTickLocked(gen uint64) {
	r.sched.set(timerLevelTick, time.Second, r.timed(gen, func(now time.Time) {
		g := r.game
		g.levelRemaining--
		if g.levelRemaining < 0 {
			g.levelRemaining = 0
		}
		r.broadcastLocked(protocol.EventLevelTimerUpdate, protocol.LevelTimerUpdatePayload{Remaining: g.levelRemaining})
		if g.levelRemaining <= 0 {
			r.beginLevelTransitionLocked(gen, now)
			return
		}
		r.armLevelTickLocked(gen)
	}))
}

func wavePeriod(level int) time.Duration {
	period := waveBasePeriod - time.Duration(level-1)*wavePeriodStep
	if period < waveFloorPeriod {
		return waveFloorPeriod
	}
	return period
}

func (r *Room) armWaveLocked(gen uint64) {
	r.sched.set(timerWave, wavePeriod(r.game.level), r.timed(gen, func(now time.Time) {
		r.spawnWaveLocked(now)
		r.armWaveLocked(gen)
	}))
}

// spawnWaveLocked spawns one batch. Batch size couples to the external
// difficulty feed: 1 + floor(modifier / 10000).
func (r *Room) spawnWaveLocked(now time.Time) {
	batch := 1 + int(r.hub.difficulty.Value()/10000)
	if batch < 1 {
		batch = 1
	}
	for i := 0; i < batch; i++ {
		tier := pickTier(r.rng, r.game.level)
		pos, ok := r.findSpawnPosLocked()
		if !ok {
			continue
		}
		enemy := newEnemyState(tier, pos)
		enemy.stallSince = now
		r.game.enemies[enemy.ID] = enemy
		r.broadcastLocked(protocol.EventSpawnEnemy, protocol.SpawnEnemyPayload{Enemy: enemy.snapshot()})
	}
	r.publish(logging.Event{
		Type:     "wave_spawned",
		Actor:    logging.EntityRef{ID: r.code, Kind: logging.EntityKindRoom},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryScheduler,
		Extra:    map[string]any{"batch": batch, "level": r.game.level},
	})
}

// findSpawnPosLocked picks a walkable tile at a safe distance from every
// live player, falling back to any open tile when the level is crowded.
func (r *Room) findSpawnPosLocked() (vec2, bool) {
	grid := r.hub.grid
	var fallback vec2
	haveFallback := false
	for attempt := 0; attempt < 24; attempt++ {
		t, ok := grid.randomOpenTile(r.rng)
		if !ok {
			return vec2{}, false
		}
		pos := grid.tileCenter(t)
		fallback, haveFallback = pos, true
		safe := true
		for _, p := range r.game.players {
			if p.IsDead {
				continue
			}
			if distance(pos, p.pos()) < spawnSafeRadius {
				safe = false
				break
			}
		}
		if safe {
			return pos, true
		}
	}
	return fallback, haveFallback
}

// beginLevelTransitionLocked runs the expiry cascade: everything alive dies
// visually (not credited to players), the field is cleared after a short
// grace, and the next level restarts the timers at a tighter wave cadence.
func (r *Room) beginLevelTransitionLocked(gen uint64, now time.Time) {
	g := r.game
	r.broadcastLocked(protocol.EventLevelComplete, protocol.LevelCompletePayload{Level: g.level})
	for _, enemy := range g.enemies {
		enemy.markDead(now)
	}
	r.sched.stop(timerWave)

	r.sched.set(timerLevelClear, levelClearGrace, r.timed(gen, func(time.Time) {
		r.game.enemies = make(map[uint64]*enemyState)
	}))

	r.sched.set(timerLevelNext, levelTransitionDelay, r.timed(gen, func(now time.Time) {
		g := r.game
		g.level++
		g.levelTimeSeconds = levelBaseSeconds + (g.level-1)*levelBonusSeconds
		g.levelRemaining = g.levelTimeSeconds
		g.levelStartedAt = now
		g.weather = r.rollWeatherLocked()
		r.broadcastLocked(protocol.EventWeatherUpdate, protocol.WeatherUpdatePayload{Weather: g.weather})
		r.broadcastLocked(protocol.EventStartNextLevel, protocol.StartNextLevelPayload{
			Level:     g.level,
			LevelTime: g.levelTimeSeconds,
			Weather:   g.weather,
		})
		r.publish(logging.Event{
			Type:     "level_advanced",
			Actor:    logging.EntityRef{ID: r.code, Kind: logging.EntityKindRoom},
			Severity: logging.SeverityInfo,
			Category: logging.CategoryScheduler,
			Extra:    map[string]any{"level": g.level, "levelTime": g.levelTimeSeconds},
		})
		r.armLevelTickLocked(gen)
		r.armWaveLocked(gen)
	}))
}

// crystalInterval decays linearly from the start period toward the floor
// over the decay span, then holds. Level transitions do not touch it.
func crystalInterval(sinceMatchStart time.Duration) time.Duration {
	if sinceMatchStart < 0 {
		sinceMatchStart = 0
	}
	frac := float64(sinceMatchStart) / float64(crystalDecaySpan)
	if frac > 1 {
		frac = 1
	}
	spread := crystalStartPeriod - crystalFloorPeriod
	return crystalStartPeriod - time.Duration(float64(spread)*frac)
}

func (r *Room) armCrystalLocked(gen uint64, now time.Time) {
	interval := crystalInterval(now.Sub(r.game.matchStartedAt))
	r.sched.set(timerCrystal, interval, r.timed(gen, func(now time.Time) {
		r.spawnMysteryCrystalLocked()
		r.armCrystalLocked(gen, now)
	}))
}

func (r *Room) spawnMysteryCrystalLocked() {
	t, ok := r.hub.grid.randomOpenTile(r.rng)
	if !ok {
		return
	}
	pos := r.hub.grid.tileCenter(t)
	crystal := &crystalState{ID: newCrystalID("mc"), X: pos.X, Y: pos.Y}
	r.game.mysteryCrystals[crystal.ID] = crystal
	r.broadcastLocked(protocol.EventMysteryCrystalSpawn, protocol.CrystalSpawnPayload{
		CrystalID: crystal.ID,
		X:         crystal.X,
		Y:         crystal.Y,
	})
}

func (r *Room) spawnBloodCrystalLocked(pos vec2) {
	crystal := &crystalState{ID: newCrystalID("bc"), X: pos.X, Y: pos.Y}
	r.game.bloodCrystals[crystal.ID] = crystal
	r.broadcastLocked(protocol.EventBloodCrystalSpawn, protocol.CrystalSpawnPayload{
		CrystalID: crystal.ID,
		X:         crystal.X,
		Y:         crystal.Y,
	})
}

// --- inbound command handlers ---

func (r *Room) handleJoinGame(s *session, x, y float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.game.players[s.id]
	if !ok {
		p = newPlayerState(s.id, x, y)
		r.game.players[s.id] = p
	} else {
		p.X, p.Y = x, y
		p.spawnX, p.spawnY = x, y
	}
	snapshots := make([]protocol.PlayerSnapshot, 0, len(r.game.players))
	for _, player := range r.game.players {
		snapshots = append(snapshots, player.snapshot())
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].ID < snapshots[j].ID })
	r.sendToLocked(s, protocol.EventCurrentPlayers, protocol.CurrentPlayersPayload{Players: snapshots})
	r.broadcastExceptLocked(s, protocol.EventPlayerJoined, protocol.PlayerJoinedPayload{Player: p.snapshot()})
}

func (r *Room) handleMove(s *session, move *protocol.PlayerMovedPayload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.game.players[s.id]
	if !ok || p.IsDead {
		return
	}
	p.X = move.X
	p.Y = move.Y
	p.IsMoving = move.IsMoving
	if facing, ok := parseFacing(move.Direction); ok {
		p.Direction = facing
	}
	r.broadcastExceptLocked(s, protocol.EventPlayerMoved, protocol.PlayerMovedPayload{
		PlayerID:  s.id,
		X:         p.X,
		Y:         p.Y,
		IsMoving:  p.IsMoving,
		Direction: string(p.Direction),
	})
}

// handleAttack re-validates the attacker's cooldown server-side. A too-early
// attack is downgraded to a cosmetic broadcast so the other client still
// plays the swing animation, but no damage lands.
func (r *Room) handleAttack(s *session, attack *protocol.PlayerAttackPayload, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.game.players[s.id]
	if !ok || p.IsDead {
		return
	}
	facing, _ := parseFacing(attack.Direction)
	p.Direction = facing

	if now.Sub(p.lastAttackAt) < meleeAttackCooldown {
		r.broadcastExceptLocked(s, protocol.EventPlayerAttack, protocol.PlayerAttackBroadcast{
			PlayerID:  s.id,
			Direction: string(facing),
			Cosmetic:  true,
		})
		return
	}
	p.lastAttackAt = now
	r.broadcastExceptLocked(s, protocol.EventPlayerAttack, protocol.PlayerAttackBroadcast{
		PlayerID:  s.id,
		Direction: string(facing),
	})

	damage := scaleDamage(meleeBaseDamage, p.AttackMultiplier)
	origin := p.pos()
	for _, enemy := range r.enemiesByIDLocked() {
		if meleeConeHit(origin, facing, enemy.pos()) {
			r.damageEnemyLocked(enemy, damage, s.id, now)
		}
	}
}

func (r *Room) handleBlast(blast *protocol.AoeBlastPayload, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	center := vec2{X: blast.X, Y: blast.Y}
	for _, enemy := range r.enemiesByIDLocked() {
		if blastHit(center, enemy.pos(), blast.Radius) {
			r.damageEnemyLocked(enemy, aoeBlastDamage, "", now)
		}
	}
}

// handleLightning hurts everything in the strike radius, players included,
// and replays the visual to the whole room.
func (r *Room) handleLightning(strike *protocol.LightningStrikePayload, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	center := vec2{X: strike.X, Y: strike.Y}
	r.broadcastLocked(protocol.EventLightningStrikeVisual, protocol.LightningStrikeBroadcast{X: strike.X, Y: strike.Y})
	for _, enemy := range r.enemiesByIDLocked() {
		if blastHit(center, enemy.pos(), lightningRadius) {
			r.damageEnemyLocked(enemy, lightningDamage, "", now)
		}
	}
	for _, p := range r.game.players {
		if blastHit(center, p.pos(), lightningRadius) {
			r.damagePlayerLocked(p, lightningDamage)
		}
	}
}

func (r *Room) handleCollectMystery(s *session, crystalID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	crystal, ok := r.game.mysteryCrystals[crystalID]
	if !ok {
		return
	}
	p, ok := r.game.players[s.id]
	if !ok || p.IsDead {
		return
	}
	delete(r.game.mysteryCrystals, crystal.ID)
	effect := rollMysteryEffect(r.rng)
	applyMysteryEffect(p, effect)
	r.broadcastLocked(protocol.EventMysteryCrystalCollected, protocol.MysteryCrystalCollectedPayload{
		CrystalID: crystal.ID,
		PlayerID:  s.id,
		Effect:    effect,
	})
}

func (r *Room) handleCollectBlood(s *session, crystalID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	crystal, ok := r.game.bloodCrystals[crystalID]
	if !ok {
		return
	}
	p, ok := r.game.players[s.id]
	if !ok || p.IsDead {
		return
	}
	delete(r.game.bloodCrystals, crystal.ID)
	applyBloodEffect(p)
	r.broadcastLocked(protocol.EventBloodCrystalCollected, protocol.BloodCrystalCollectedPayload{
		CrystalID: crystal.ID,
		PlayerID:  s.id,
	})
}

func (r *Room) handleUpdateHP(s *session, hp int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.game.players[s.id]
	if !ok {
		return
	}
	if hp > playerMaxHealth {
		hp = playerMaxHealth
	}
	if hp < 0 {
		hp = 0
	}
	p.HP = hp
	if hp <= 0 && !p.IsDead {
		r.playerDeathLocked(p)
	}
}

func (r *Room) handleSetInvulnerable(s *session, invulnerable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.game.players[s.id]
	if !ok {
		return
	}
	p.Invulnerable = invulnerable
}

// --- damage application ---

func (r *Room) enemiesByIDLocked() []*enemyState {
	enemies := make([]*enemyState, 0, len(r.game.enemies))
	for _, enemy := range r.game.enemies {
		enemies = append(enemies, enemy)
	}
	sort.Slice(enemies, func(i, j int) bool { return enemies[i].ID < enemies[j].ID })
	return enemies
}

func (r *Room) damageEnemyLocked(enemy *enemyState, amount int, by string, now time.Time) {
	hp, died, changed := applyDamage(enemy.HP, enemy.State == stateDead, amount)
	if !changed {
		return
	}
	enemy.HP = hp
	r.broadcastLocked(protocol.EventEnemyHit, protocol.EnemyHitPayload{EnemyID: enemy.ID, HP: hp, By: by})
	if !died {
		return
	}
	enemy.markDead(now)
	r.broadcastLocked(protocol.EventEnemyKilled, protocol.EnemyKilledPayload{EnemyID: enemy.ID, By: by})
	r.publish(logging.Event{
		Type:     "enemy_killed",
		Actor:    logging.EntityRef{ID: by, Kind: logging.EntityKindPlayer},
		Targets:  []logging.EntityRef{{ID: enemy.Tier.String(), Kind: logging.EntityKindEnemy}},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryCombat,
	})
	if r.rng.Float64() < bloodCrystalDropOdds {
		r.spawnBloodCrystalLocked(enemy.pos())
	}
}

func (r *Room) damagePlayerLocked(p *playerState, amount int) {
	if p.Invulnerable || p.IsDead {
		return
	}
	hp, died, changed := applyDamage(p.HP, p.IsDead, amount)
	if !changed {
		return
	}
	p.HP = hp
	r.broadcastLocked(protocol.EventPlayerHit, protocol.PlayerHitPayload{PlayerID: p.ID, HP: hp})
	if died {
		r.playerDeathLocked(p)
	}
}

// playerDeathLocked ends the match: the dead player loses, everyone else
// wins, and the simulation halts while the room stays alive for a ready-up
// restart.
func (r *Room) playerDeathLocked(loser *playerState) {
	loser.IsDead = true
	loser.HP = 0
	for _, s := range r.sessions {
		r.sendToLocked(s, protocol.EventPlayerDied, protocol.PlayerDiedPayload{
			Win:     s.id != loser.ID,
			LoserID: loser.ID,
		})
	}
	r.haltLocked()
	r.publish(logging.Event{
		Type:     "player_died",
		Actor:    logging.EntityRef{ID: loser.ID, Kind: logging.EntityKindPlayer},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
	})
}

// --- pathfinding plumbing ---

// deliverPathResult is called from pathfinder workers. Non-blocking: if the
// room's buffer is full the result is dropped and the enemy will re-request
// after its cooldown.
func (r *Room) deliverPathResult(result pathResult) {
	select {
	case r.pathResults <- result:
	default:
	}
}

// drainPathResultsLocked applies resolved paths, discarding anything from an
// older generation or for an enemy that no longer exists.
func (r *Room) drainPathResultsLocked() {
	for {
		select {
		case result := <-r.pathResults:
			if result.roomGen != r.generation {
				continue
			}
			enemy, ok := r.game.enemies[result.enemyID]
			if !ok {
				continue
			}
			enemy.pendingPath = false
			if !result.ok || enemy.State == stateDead {
				continue
			}
			enemy.path = result.path
			enemy.pathCursor = 0
		default:
			return
		}
	}
}

// --- per-tick advance (driver) ---

// advance runs one simulation step for this room: apply resolved paths, step
// every enemy's behavior, sweep expired corpses, and emit the batched enemy
// snapshot.
func (r *Room) advance(now time.Time, dt float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.tickCount.Add(1)

	r.drainPathResultsLocked()
	r.advanceEnemiesLocked(now, dt)

	for id, enemy := range r.game.enemies {
		if enemy.State == stateDead && !enemy.diedAt.IsZero() && now.Sub(enemy.diedAt) >= enemyDeathWindow {
			delete(r.game.enemies, id)
		}
	}

	enemies := r.enemiesByIDLocked()
	snapshots := make([]protocol.EnemySnapshot, 0, len(enemies))
	for _, enemy := range enemies {
		snapshots = append(snapshots, enemy.snapshot())
	}
	r.broadcastLocked(protocol.EventEnemyUpdate, protocol.EnemyUpdatePayload{
		Enemies:    snapshots,
		ServerTime: now.UnixMilli(),
	})
}
