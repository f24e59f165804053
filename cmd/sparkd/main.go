// Command sparkd runs the Spark economy engine: the world clock, the daily
// tax/upkeep/UBI cycle, and the HTTP surface the rest of the world talks to.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/talgya/sparkworld/internal/api"
	"github.com/talgya/sparkworld/internal/engine"
	"github.com/talgya/sparkworld/internal/persistence"
	"github.com/talgya/sparkworld/internal/tuning"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("SPARKWORLD — Economic Ledger & Tick Engine")

	// ── Tuning ────────────────────────────────────────────────────────
	cfg := tuning.Defaults()
	if path := os.Getenv("SPARKD_TUNING"); path != "" {
		loaded, err := tuning.Load(path)
		if err != nil {
			slog.Error("failed to load tuning file", "path", path, "error", err)
			os.Exit(1)
		}
		cfg = loaded
		slog.Info("tuning loaded", "path", path)
	}

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Load or Create World State ───────────────────────────────────
	var state *engine.State
	if db.HasState() {
		state, err = db.LoadState()
		if err != nil {
			slog.Error("failed to load world state", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Info("no saved state found, starting a fresh world")
		state = engine.NewState(cfg.LedgerCap)
		if err := db.SaveState(state); err != nil {
			slog.Error("initial save failed", "error", err)
			os.Exit(1)
		}
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.New(state, cfg.WeatherSeed)
	runner := engine.NewRunner(eng)
	runner.Interval = cfg.TickInterval()

	var mu sync.Mutex
	runner.Lock = &mu
	runner.OnTick = func(res engine.TickResult) {
		if !res.DayProcessed {
			return
		}
		// Persist immediately after each day boundary so the day marker is
		// durable together with the balances it gates.
		if err := db.SaveState(state); err != nil {
			slog.Error("daily save failed", "error", err)
		}
		for _, id := range res.RemovedStructures {
			slog.Info("structure decayed", "structure", id, "day", res.GameDay)
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("SPARKD_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("SPARKD_ADMIN_KEY not set — ingest POST endpoints will be disabled")
	}

	apiServer := &api.Server{
		State:         state,
		Mu:            &mu,
		Port:          cfg.APIPort,
		AdminKey:      adminKey,
		IngestLimiter: api.NewRateLimiter(cfg.IngestMax, time.Duration(cfg.IngestWindowSec)*time.Second),
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		runner.Stop()
	}()

	fmt.Printf("Sparkworld ticking: day %d, %d accounts on the ledger.\n",
		state.GameDay(), len(state.Economy.Balances))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.APIPort)

	runner.Run()

	// Final save on shutdown.
	slog.Info("final save...")
	mu.Lock()
	if err := db.SaveState(state); err != nil {
		slog.Error("final save failed", "error", err)
	}
	mu.Unlock()

	fmt.Println("Engine stopped. World state saved.")
}
