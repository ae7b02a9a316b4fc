package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stormfall/server/logging"
)

func main() {
	addrFlag := flag.String("addr", "", "listen address (overrides config)")
	configFlag := flag.String("config", "config.toml", "path to config file")
	flag.Parse()

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	if *addrFlag != "" {
		cfg.Server.Addr = *addrFlag
	}

	zl := buildLogger(cfg.Logging)
	defer zl.Sync()
	logger := zl.Sugar()

	grid, err := loadGrid(levelGeometryJSON)
	if err != nil {
		logger.Fatalw("load level geometry", "error", err)
	}

	feed := newDifficultyFeed(cfg.Difficulty.URL, cfg.Difficulty.RefreshInterval.Duration, cfg.Difficulty.Fallback, logger)
	feed.Start()
	defer feed.Stop()

	pathfinder := newPathfinder(grid, cfg.Simulation.PathfinderWorkers)
	defer pathfinder.Close()

	publisher := logging.NewZapPublisher(zl.Named("events"))
	hub := newHub(grid, pathfinder, feed, publisher, logger)

	driver := newDriver(hub, logger)
	driver.Start()
	defer driver.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/diagnostics", func(w http.ResponseWriter, r *http.Request) {
		type roomDiag struct {
			Code      string `json:"code"`
			Members   int    `json:"members"`
			Running   bool   `json:"running"`
			Ticks     uint64 `json:"ticks"`
			SlowTicks uint64 `json:"slowTicks"`
		}
		rooms := hub.roomsSnapshot()
		diag := struct {
			Rooms      []roomDiag `json:"rooms"`
			Difficulty float64    `json:"difficulty"`
		}{
			Rooms:      make([]roomDiag, 0, len(rooms)),
			Difficulty: feed.Value(),
		}
		for _, room := range rooms {
			diag.Rooms = append(diag.Rooms, roomDiag{
				Code:      room.code,
				Members:   room.memberCount(),
				Running:   !room.isStopped(),
				Ticks:     room.tickCount.Load(),
				SlowTicks: room.slowTicks.Load(),
			})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(diag)
	})

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: mux,
	}

	go func() {
		logger.Infow("server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("serve", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Infow("shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warnw("http shutdown", "error", err)
	}
	for _, room := range hub.roomsSnapshot() {
		room.destroy()
	}
}
