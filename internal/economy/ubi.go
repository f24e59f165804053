// Universal basic income: once per game day the TREASURY pays every citizen
// an equal capped share. Runs last in the day-boundary sequence so the day's
// wealth tax revenue is already in the pool.
package economy

import (
	"fmt"
	"time"
)

// BaseUBIAmount caps the per-citizen daily payment.
const BaseUBIAmount int64 = 5

// DistributeUBI pays min(BaseUBIAmount, floor(treasury / eligibleCount)) to
// every citizen. Zero-balance citizens are eligible — there is no
// minimum-balance gate, so anyone can recover. Skips silently (no mutation,
// no entries) when there are no citizens, the treasury is empty, or the
// per-citizen share floors to 0. The caller advances the day marker
// regardless of whether anything was paid.
func (e *Economy) DistributeUBI(gameDay int64, now time.Time) (distributed int64, recipients int, err error) {
	citizens := e.Citizens()
	if len(citizens) == 0 {
		return 0, 0, nil
	}
	treasury := e.Balance(TreasuryID)
	if treasury <= 0 {
		return 0, 0, nil
	}

	perCitizen := treasury / int64(len(citizens))
	if perCitizen > BaseUBIAmount {
		perCitizen = BaseUBIAmount
	}
	if perCitizen < 1 {
		return 0, 0, nil
	}

	ts := now.Unix()
	for _, id := range citizens {
		// Guard against mid-run shortfall; arithmetically unreachable, but a
		// partial day must stop rather than overdraw the treasury.
		if e.Balance(TreasuryID) < perCitizen {
			break
		}
		if err := e.Debit(TreasuryID, perCitizen); err != nil {
			return distributed, recipients, fmt.Errorf("ubi payment to %s: %w", id, err)
		}
		e.Credit(id, perCitizen)
		e.Ledger.Append(Entry{
			Type:          EntryUBI,
			User:          id,
			Amount:        perCitizen,
			GameDay:       gameDay,
			EligibleCount: len(citizens),
			Timestamp:     ts,
		})
		distributed += perCitizen
		recipients++
	}

	if e.Balance(TreasuryID) < 0 {
		return distributed, recipients, fmt.Errorf("treasury negative after ubi: %d", e.Balance(TreasuryID))
	}
	return distributed, recipients, nil
}
