// Wealth tax: once per game day, 2% of the balance held above the threshold
// moves to TREASURY. Run via the day-boundary gate, before maintenance and UBI.
package economy

import (
	"fmt"
	"time"
)

const (
	// WealthTaxThreshold is the balance above which the tax applies.
	WealthTaxThreshold int64 = 500
	// WealthTaxPct is the rate on the excess, as a whole percentage.
	WealthTaxPct int64 = 2
)

// ApplyWealthTax taxes every citizen holding more than the threshold:
// tax = floor((balance - threshold) * 2%). Citizens at or below the
// threshold, and citizens whose tax floors to 0 (e.g. balance 501), are left
// untouched with no ledger entry. System accounts are exempt. Returns an
// error only on an invariant violation, which aborts the tick loudly.
func (e *Economy) ApplyWealthTax(gameDay int64, now time.Time) error {
	ts := now.Unix()
	for _, id := range e.Citizens() {
		before := e.Balance(id)
		if before <= WealthTaxThreshold {
			continue
		}
		taxable := before - WealthTaxThreshold
		tax := taxable * WealthTaxPct / 100
		if tax <= 0 {
			continue
		}

		if err := e.Debit(id, tax); err != nil {
			// Unreachable: tax is strictly less than the balance.
			return fmt.Errorf("wealth tax on %s: %w", id, err)
		}
		e.Credit(TreasuryID, tax)
		e.Ledger.Append(Entry{
			Type:          EntryWealthTax,
			User:          id,
			Amount:        tax,
			TaxRate:       WealthTaxPct,
			TaxableAmount: taxable,
			Threshold:     WealthTaxThreshold,
			BalanceBefore: before,
			BalanceAfter:  before - tax,
			GameDay:       gameDay,
			Timestamp:     ts,
		})
	}

	if e.Balance(TreasuryID) < 0 {
		return fmt.Errorf("treasury negative after wealth tax: %d", e.Balance(TreasuryID))
	}
	return nil
}
