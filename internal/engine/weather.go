// Weather generation: a seeded weighted roll keyed by a coarse time bucket, so
// repeated ticks within the same bucket report the same weather.
package engine

import "math/rand/v2"

// WeatherBucketSeconds is how long one weather roll stays in effect.
const WeatherBucketSeconds = 300

// weatherKind pairs a weather name with its selection weight.
type weatherKind struct {
	name   string
	weight int
}

var weatherKinds = []weatherKind{
	{"clear", 40},
	{"cloudy", 30},
	{"rain", 15},
	{"storm", 5},
	{"snow", 5},
	{"fog", 5},
}

// WeatherGen produces stable per-bucket weather. The world seed and the bucket
// index together seed a PCG stream, so the same seed and bucket always yield
// the same weather, and each bucket's roll is uniform over the weight table.
type WeatherGen struct {
	seed int64
}

// NewWeatherGen creates a weather generator for the world's seed.
func NewWeatherGen(seed int64) *WeatherGen {
	return &WeatherGen{seed: seed}
}

// At returns the weather in effect at the given world time.
func (w *WeatherGen) At(worldTime float64) string {
	bucket := int64(worldTime) / WeatherBucketSeconds
	rng := rand.New(rand.NewPCG(uint64(w.seed), uint64(bucket)))

	total := 0
	for _, k := range weatherKinds {
		total += k.weight
	}
	roll := rng.IntN(total)

	acc := 0
	for _, k := range weatherKinds {
		acc += k.weight
		if roll < acc {
			return k.name
		}
	}
	return weatherKinds[len(weatherKinds)-1].name
}
