package main

import (
	"sync"
	"time"
)

// Timer names owned by the per-room scheduler.
const (
	timerLevelTick  = "levelTick"
	timerWave       = "wave"
	timerCrystal    = "crystal"
	timerMatchStart = "matchStart"
	timerLevelClear = "levelClear"
	timerLevelNext  = "levelNext"
)

// scheduler owns a room's named timers so teardown is one stopAll call
// instead of scattered cancellation guards. Repeating behavior is expressed
// by a callback re-arming its own name. Once stopped, a scheduler stays
// inert until reset.
type scheduler struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

func newScheduler() *scheduler {
	return &scheduler{timers: make(map[string]*time.Timer)}
}

// set arms (or re-arms) the named timer. The callback runs on the timer
// goroutine; callers are responsible for locking the room and re-checking
// its generation inside fn.
func (s *scheduler) set(name string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if existing, ok := s.timers[name]; ok {
		existing.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.stopped || s.timers[name] != timer {
			s.mu.Unlock()
			return
		}
		delete(s.timers, name)
		s.mu.Unlock()
		fn()
	})
	s.timers[name] = timer
}

func (s *scheduler) stop(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[name]; ok {
		timer.Stop()
		delete(s.timers, name)
	}
}

// stopAll cancels every pending timer and refuses new ones until reset.
func (s *scheduler) stopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, timer := range s.timers {
		timer.Stop()
		delete(s.timers, name)
	}
	s.stopped = true
}

// reset re-enables a scheduler that was halted, for ready-up restarts.
func (s *scheduler) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, timer := range s.timers {
		timer.Stop()
		delete(s.timers, name)
	}
	s.stopped = false
}

func (s *scheduler) pending(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[name]
	return ok
}
