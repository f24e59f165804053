// Linear-in-elapsed-time side effects applied every tick, independent of the
// day gate: plant growth, resource respawn, and listing expiry.
package engine

import "time"

const (
	defaultGrowthTime  = 3600 // 1 hour to full growth
	defaultRespawnTime = 300  // 5 minutes
	listingMaxAge      = 24 * 3600
)

// AdvancePlantGrowth moves every plant's growth stage toward 1.0 at a rate of
// 1/growthTime per elapsed second.
func AdvancePlantGrowth(gardens map[string]*Plot, deltaSeconds float64) {
	for _, plot := range gardens {
		for _, p := range plot.Plants {
			if p.GrowthStage >= 1.0 {
				continue
			}
			gt := p.GrowthTime
			if gt <= 0 {
				gt = defaultGrowthTime
			}
			p.GrowthStage += deltaSeconds / gt
			if p.GrowthStage > 1.0 {
				p.GrowthStage = 1.0
			}
		}
	}
}

// RespawnResources restores depleted resources once they have been depleted
// for their respawn time.
func RespawnResources(zones map[string]*Zone, deltaSeconds float64) {
	for _, zone := range zones {
		for _, r := range zone.Resources {
			if !r.Depleted {
				continue
			}
			rt := r.RespawnTime
			if rt <= 0 {
				rt = defaultRespawnTime
			}
			r.DepletedFor += deltaSeconds
			if r.DepletedFor >= rt {
				r.Depleted = false
				r.DepletedFor = 0
				r.Quantity = r.MaxQuantity
			}
		}
	}
}

// ExpireListings drops market listings older than 24 wall-clock hours. The
// listing fee was destroyed at listing time; expiry refunds nothing.
func ExpireListings(listings []*Listing, now time.Time) []*Listing {
	active := listings[:0]
	for _, l := range listings {
		if now.Unix()-l.ListedAt < listingMaxAge {
			active = append(active, l)
		}
	}
	return active
}
