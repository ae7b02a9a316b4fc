package main

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Driver is the fixed-cadence tick loop: once per period it advances every
// active room by the elapsed delta. Rooms appearing or vanishing between
// ticks are handled by iterating a stable snapshot of the index each pass.
type Driver struct {
	hub    *Hub
	logger *zap.SugaredLogger

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newDriver(hub *Hub, logger *zap.SugaredLogger) *Driver {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Driver{hub: hub, logger: logger, stop: make(chan struct{})}
}

func (d *Driver) Start() {
	d.wg.Add(1)
	go d.run()
}

func (d *Driver) Stop() {
	d.stopOnce.Do(func() { close(d.stop) })
	d.wg.Wait()
}

func (d *Driver) run() {
	defer d.wg.Done()
	ticker := time.NewTicker(tickPeriod)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-d.stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			if dt <= 0 {
				dt = tickPeriod.Seconds()
			}
			last = now
			d.tick(now, dt)
		}
	}
}

// tick advances every room once. A slow tick is observed, never skipped or
// split: per-room ordering matters more than strict periodicity.
func (d *Driver) tick(now time.Time, dt float64) {
	start := time.Now()
	for _, room := range d.hub.roomsSnapshot() {
		if room.isStopped() {
			continue
		}
		roomStart := time.Now()
		room.advance(now, dt)
		if elapsed := time.Since(roomStart); elapsed > tickBudget {
			room.slowTicks.Add(1)
			d.logger.Warnw("room tick over budget",
				"room", room.code,
				"elapsed", elapsed,
				"budget", tickBudget,
			)
		}
	}
	if elapsed := time.Since(start); elapsed > tickBudget {
		d.logger.Warnw("driver tick over budget", "elapsed", elapsed, "budget", tickBudget)
	}
}
