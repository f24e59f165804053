// Derived clock fields: day phase from world time, season from the real
// wall clock. Recomputed every tick regardless of the day gate.
package engine

import (
	"math"
	"time"
)

// Day phases over one 1440-unit cycle.
const (
	PhaseDawn  = "dawn"
	PhaseDay   = "day"
	PhaseDusk  = "dusk"
	PhaseNight = "night"
)

// DayPhase maps a world time to its phase band:
// dawn [0,360), day [360,1080), dusk [1080,1260), night [1260,1440).
func DayPhase(worldTime float64) string {
	pos := math.Mod(worldTime, TimeUnitsPerDay)
	switch {
	case pos < 360:
		return PhaseDawn
	case pos < 1080:
		return PhaseDay
	case pos < 1260:
		return PhaseDusk
	default:
		return PhaseNight
	}
}

const secondsPerWeek = 7 * 24 * 60 * 60

var seasonNames = [4]string{"spring", "summer", "autumn", "winter"}

// Season derives the season from real wall-clock time: one week per season,
// cycling every four weeks from the Unix epoch.
func Season(now time.Time) string {
	week := (now.Unix() % (4 * secondsPerWeek)) / secondsPerWeek
	return seasonNames[week]
}
