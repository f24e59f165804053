// Package economy implements the Spark currency: the balance store, the
// bounded audit ledger, progressive taxation, and the daily redistribution
// and decay rules. See design doc "internal/economy".
package economy

import (
	"github.com/google/uuid"
)

// Reserved system accounts. TREASURY accumulates tax revenue and funds UBI.
// SYSTEM is a pure sink: Spark sent there is destroyed and never read back.
const (
	TreasuryID = "TREASURY"
	SystemID   = "SYSTEM"
)

// Ledger entry types.
const (
	EntryEarn              = "earn"
	EntryTax               = "tax"
	EntryWealthTax         = "wealth_tax"
	EntryMaintenance       = "structure_maintenance"
	EntryMaintenanceMissed = "structure_maintenance_missed"
	EntryListingFee        = "market_listing_fee"
	EntryUBI               = "ubi_distribution"
	EntryGenesis           = "genesis"
)

// Entry is one immutable ledger record. Amount is always positive; Type
// determines the direction of the flow. Rule-specific fields are zero for
// entry types that do not use them. Only the five header fields exist as
// ledger table columns; the full record round-trips as JSON.
type Entry struct {
	ID        string `json:"id" db:"id"`
	Type      string `json:"type" db:"type"`
	User      string `json:"user" db:"user"`
	Amount    int64  `json:"amount" db:"amount"`
	Timestamp int64  `json:"timestamp" db:"timestamp"` // Unix seconds

	// Earnings.
	Action      string `json:"action,omitempty"`
	GrossAmount int64  `json:"grossAmount,omitempty"`
	TaxWithheld int64  `json:"taxWithheld,omitempty"`

	// Taxation. TaxRate is a whole percentage (5 = 5%).
	TaxRate       int64 `json:"taxRate,omitempty"`
	TaxableAmount int64 `json:"taxableAmount,omitempty"`
	Threshold     int64 `json:"threshold,omitempty"`
	BalanceBefore int64 `json:"balanceBefore,omitempty"`
	BalanceAfter  int64 `json:"balanceAfter,omitempty"`

	// Structures.
	StructureID    string `json:"structureId,omitempty"`
	MissedPayments int    `json:"missedPayments,omitempty"`

	// Market listings. FeeRate is a whole percentage.
	AskingPrice int64 `json:"askingPrice,omitempty"`
	FeeRate     int64 `json:"feeRate,omitempty"`

	// Sink target for destroyed Spark (always SystemID when set).
	Sink string `json:"sink,omitempty"`

	// UBI.
	GameDay       int64 `json:"gameDay,omitempty"`
	EligibleCount int   `json:"eligibleCount,omitempty"`
}

// DefaultLedgerCap bounds ledger growth when no tuning override is given.
const DefaultLedgerCap = 2000

// Ledger is the append-only audit trail. Entries are never mutated; once the
// cap is exceeded the oldest entries are trimmed (a capacity bound, not a
// correctness one — balances are the durable projection).
type Ledger struct {
	Entries []Entry `json:"entries"`
	Cap     int     `json:"cap"`
}

// NewLedger creates a ledger retaining at most cap entries. cap <= 0 selects
// DefaultLedgerCap.
func NewLedger(cap int) *Ledger {
	if cap <= 0 {
		cap = DefaultLedgerCap
	}
	return &Ledger{Cap: cap}
}

// Append adds an entry, assigning an ID if the caller did not, and trims
// oldest-first past the cap.
func (l *Ledger) Append(e Entry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	l.Entries = append(l.Entries, e)
	if over := len(l.Entries) - l.Cap; over > 0 {
		l.Entries = append([]Entry(nil), l.Entries[over:]...)
	}
}

// Recent returns up to n entries, newest last.
func (l *Ledger) Recent(n int) []Entry {
	if n <= 0 || n >= len(l.Entries) {
		n = len(l.Entries)
	}
	out := make([]Entry, n)
	copy(out, l.Entries[len(l.Entries)-n:])
	return out
}

// Len returns the number of retained entries.
func (l *Ledger) Len() int { return len(l.Entries) }
