// The tick: advance the world clock, recompute derived fields, apply linear
// side effects, and run the once-per-day economy sequence behind the
// day-boundary gate.
package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/sparkworld/internal/economy"
)

// Engine drives one world's state forward. It is invoked serially by an
// external driver and holds no locks of its own — the caller owns exclusive
// access to State for the duration of each Tick.
type Engine struct {
	State *State

	// Now supplies wall-clock time; replaceable in tests.
	Now func() time.Time

	weather *WeatherGen
}

// New creates an engine over the given state. The seed fixes the weather
// sequence for the world's lifetime.
func New(state *State, seed int64) *Engine {
	return &Engine{
		State:   state,
		Now:     time.Now,
		weather: NewWeatherGen(seed),
	}
}

// TickResult reports what one tick did, for the driver and presentation
// layers.
type TickResult struct {
	GameDay           int64    `json:"gameDay"`
	DayPhase          string   `json:"dayPhase"`
	Weather           string   `json:"weather"`
	Season            string   `json:"season"`
	DayProcessed      bool     `json:"dayProcessed"`
	RemovedStructures []string `json:"removedStructures,omitempty"`
	UBIDistributed    int64    `json:"ubiDistributed"`
	UBIRecipients     int      `json:"ubiRecipients"`
}

// Tick advances the clock by the wall-clock delta since the last tick,
// recomputes day phase / weather / season, applies plant growth, resource
// respawn, and listing expiry, and — if the game day number has increased —
// runs wealth tax → structure maintenance → UBI exactly once. Repeated calls
// within the same day are no-ops for the gated sequence. An error means an
// invariant violation; the day marker has still advanced, so the broken day
// is never retried.
func (e *Engine) Tick() (TickResult, error) {
	s := e.State
	now := e.Now()

	var delta float64
	if !s.LastTickAt.IsZero() {
		delta = now.Sub(s.LastTickAt).Seconds()
		if delta < 0 {
			delta = 0 // wall clock moved backwards; hold world time
		}
	}
	s.WorldTime += delta
	s.LastTickAt = now

	s.DayPhase = DayPhase(s.WorldTime)
	s.Weather = e.weather.At(s.WorldTime)
	s.Season = Season(now)

	AdvancePlantGrowth(s.Gardens, delta)
	RespawnResources(s.Zones, delta)
	s.Listings = ExpireListings(s.Listings, now)

	res := TickResult{
		GameDay:  s.GameDay(),
		DayPhase: s.DayPhase,
		Weather:  s.Weather,
		Season:   s.Season,
	}

	currentDay := s.GameDay()
	if currentDay <= s.LastProcessedDay {
		return res, nil
	}

	removed, distributed, recipients, err := e.runDayBoundary(currentDay, now)
	// The marker advances unconditionally — even when nothing was paid, and
	// even on an invariant violation. A day is never retried.
	s.LastProcessedDay = currentDay

	res.DayProcessed = true
	res.RemovedStructures = removed
	res.UBIDistributed = distributed
	res.UBIRecipients = recipients
	return res, err
}

// runDayBoundary executes the gated daily sequence in its fixed order.
func (e *Engine) runDayBoundary(day int64, now time.Time) (removed []string, distributed int64, recipients int, err error) {
	s := e.State

	if err := s.Economy.ApplyWealthTax(day, now); err != nil {
		return nil, 0, 0, fmt.Errorf("day %d wealth tax: %w", day, err)
	}

	removed = s.Economy.ProcessMaintenance(s.Structures, day, now)
	for _, id := range removed {
		delete(s.Structures, id)
	}

	distributed, recipients, err = s.Economy.DistributeUBI(day, now)
	if err != nil {
		return removed, distributed, recipients, fmt.Errorf("day %d ubi: %w", day, err)
	}

	if !s.Economy.CheckIntegrity() {
		slog.Warn("ledger integrity check failed", "day", day)
	}

	slog.Info("day boundary processed",
		"day", day,
		"citizens", len(s.Economy.Citizens()),
		"treasury", humanize.Comma(s.Economy.Balance(economy.TreasuryID)),
		"destroyed_total", humanize.Comma(s.Economy.TotalDestroyed()),
		"ubi_distributed", distributed,
		"ubi_recipients", recipients,
		"structures_removed", len(removed),
	)
	return removed, distributed, recipients, nil
}
