// Paced tick loop for the driver binary. Ticks are issued one at a time; the
// loop never overlaps invocations.
package engine

import (
	"log/slog"
	"sync"
	"time"
)

// Runner invokes the engine's tick at a fixed interval.
type Runner struct {
	Interval time.Duration // base tick interval (default 1 second)
	Running  bool

	// Lock, when set, is held around each tick and its OnTick callback. The
	// engine is single-writer; the host shares this lock with any reader
	// (e.g. the HTTP API).
	Lock sync.Locker

	// OnTick runs each tick result, e.g. to persist state after a day
	// boundary. May be nil.
	OnTick func(TickResult)

	engine *Engine
}

// NewRunner creates a runner over the engine with default pacing.
func NewRunner(e *Engine) *Runner {
	return &Runner{
		Interval: time.Second,
		engine:   e,
	}
}

// Run starts the loop. Blocks until Stop is called. Tick errors are invariant
// violations: they are logged loudly and the loop halts so the operator can
// audit the ledger before resuming.
func (r *Runner) Run() {
	r.Running = true
	slog.Info("tick loop started", "interval", r.Interval, "world_time", r.engine.State.WorldTime)

	for r.Running {
		start := time.Now()

		if r.Lock != nil {
			r.Lock.Lock()
		}
		res, err := r.engine.Tick()
		if err == nil && r.OnTick != nil {
			r.OnTick(res)
		}
		if r.Lock != nil {
			r.Lock.Unlock()
		}
		if err != nil {
			slog.Error("tick failed, halting loop", "error", err)
			r.Running = false
			break
		}

		// Sleep for the remainder of the interval.
		elapsed := time.Since(start)
		if elapsed < r.Interval {
			time.Sleep(r.Interval - elapsed)
		}
	}

	slog.Info("tick loop stopped", "world_time", r.engine.State.WorldTime)
}

// Stop halts the loop after the current tick completes.
func (r *Runner) Stop() {
	r.Running = false
}
