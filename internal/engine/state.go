// Package engine advances the world clock and runs the once-per-day economy
// rules behind the day-boundary gate. See design doc "internal/engine".
package engine

import (
	"time"

	"github.com/talgya/sparkworld/internal/economy"
)

// TimeUnitsPerDay is the length of one game day in world-time units.
const TimeUnitsPerDay = 1440

// Plant grows linearly toward stage 1.0 over GrowthTime seconds.
type Plant struct {
	Kind        string  `json:"kind"`
	GrowthStage float64 `json:"growthStage"`
	GrowthTime  float64 `json:"growthTime"` // seconds to full growth; 0 = default 1h
}

// Plot is one garden plot.
type Plot struct {
	Plants []*Plant `json:"plants"`
}

// Resource respawns RespawnTime seconds after depletion.
type Resource struct {
	Kind        string  `json:"kind"`
	Quantity    int     `json:"quantity"`
	MaxQuantity int     `json:"maxQuantity"`
	Depleted    bool    `json:"depleted"`
	RespawnTime float64 `json:"respawnTime"` // seconds; 0 = default 5m
	DepletedFor float64 `json:"depletedFor"` // seconds accumulated while depleted
}

// Zone holds the respawnable resources of one world zone.
type Zone struct {
	Resources []*Resource `json:"resources"`
}

// Listing is an open market listing; the fee was charged when it was created.
// Listings expire after 24 wall-clock hours.
type Listing struct {
	ID       string `json:"id" db:"id"`
	Seller   string `json:"seller" db:"seller"`
	Item     string `json:"item" db:"item"`
	Price    int64  `json:"price" db:"price"`
	ListedAt int64  `json:"listedAt" db:"listed_at"` // Unix seconds
}

// State is the complete engine-owned world state. It is passed by reference
// into each tick and persisted as a unit by the host — in particular
// LastProcessedDay must be saved atomically with the balances it gates.
type State struct {
	WorldTime        float64   `json:"worldTime"` // elapsed game time units
	LastTickAt       time.Time `json:"lastTickAt"`
	LastProcessedDay int64     `json:"lastProcessedDay"`

	// Derived each tick for presentation layers.
	DayPhase string `json:"dayPhase"`
	Weather  string `json:"weather"`
	Season   string `json:"season"`

	Economy    *economy.Economy              `json:"economy"`
	Structures map[string]*economy.Structure `json:"structures"`
	Gardens    map[string]*Plot              `json:"gardens"`
	Zones      map[string]*Zone              `json:"zones"`
	Listings   []*Listing                    `json:"listings"`
}

// NewState creates a fresh world at time zero. Day -1 as the marker means the
// first completed day boundary (day 1, or day 0 on the very first tick of a
// restored mid-day world) processes normally.
func NewState(ledgerCap int) *State {
	return &State{
		LastProcessedDay: -1,
		Economy:          economy.New(ledgerCap),
		Structures:       make(map[string]*economy.Structure),
		Gardens:          make(map[string]*Plot),
		Zones:            make(map[string]*Zone),
	}
}

// GameDay returns the current game day number: floor(worldTime / 1440).
func (s *State) GameDay() int64 {
	return int64(s.WorldTime) / TimeUnitsPerDay
}
