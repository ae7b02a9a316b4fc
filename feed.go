package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DifficultyFeed polls an external endpoint for the scalar that scales wave
// batch sizes. Any fetch failure keeps the last-known value; until the first
// successful poll that is the configured fallback. The feed never fails the
// simulation.
type DifficultyFeed struct {
	url      string
	interval time.Duration
	client   *http.Client
	logger   *zap.SugaredLogger

	bits     atomic.Uint64
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newDifficultyFeed(url string, interval time.Duration, fallback float64, logger *zap.SugaredLogger) *DifficultyFeed {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	f := &DifficultyFeed{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
		stop:     make(chan struct{}),
	}
	f.bits.Store(math.Float64bits(fallback))
	return f
}

// Value returns the current difficulty modifier.
func (f *DifficultyFeed) Value() float64 {
	return math.Float64frombits(f.bits.Load())
}

// Start begins polling. A feed without a URL stays pinned at the fallback.
func (f *DifficultyFeed) Start() {
	if f.url == "" {
		return
	}
	f.wg.Add(1)
	go f.loop()
}

func (f *DifficultyFeed) Stop() {
	f.stopOnce.Do(func() { close(f.stop) })
	f.wg.Wait()
}

func (f *DifficultyFeed) loop() {
	defer f.wg.Done()
	f.poll()
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-f.stop:
			return
		case <-ticker.C:
			f.poll()
		}
	}
}

func (f *DifficultyFeed) poll() {
	value, err := f.fetch()
	if err != nil {
		f.logger.Warnw("difficulty feed unreachable, keeping last value",
			"url", f.url,
			"value", f.Value(),
			"err", err,
		)
		return
	}
	f.bits.Store(math.Float64bits(value))
}

// fetch accepts either a bare JSON number or an object with a "value" field.
func (f *DifficultyFeed) fetch() (float64, error) {
	resp, err := f.client.Get(f.url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return 0, err
	}

	var bare float64
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}
	var wrapped struct {
		Value float64 `json:"value"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return 0, fmt.Errorf("parse feed body: %w", err)
	}
	return wrapped.Value, nil
}
