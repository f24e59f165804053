// Balance store: the account → Spark mapping and its two primitive mutators.
// Every higher-level rule in this package is expressed in terms of Credit,
// Debit, and Ledger.Append.
package economy

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInsufficientBalance is the refusal returned when a debit would take an
// account below zero. No mutation happens on refusal.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Economy is the complete currency state: cached balances plus the audit
// ledger. The two are mutated together in every operation and must never
// diverge. Not safe for concurrent use — the engine is single-writer.
type Economy struct {
	Balances map[string]int64 `json:"balances"`
	Ledger   *Ledger          `json:"ledger"`
}

// New creates an empty economy with the given ledger retention cap.
func New(ledgerCap int) *Economy {
	return &Economy{
		Balances: make(map[string]int64),
		Ledger:   NewLedger(ledgerCap),
	}
}

// Balance returns an account's balance, 0 for unknown accounts. Reading never
// creates a record.
func (e *Economy) Balance(id string) int64 {
	return e.Balances[id]
}

// CanAfford reports whether the account could pay amount right now.
func (e *Economy) CanAfford(id string, amount int64) bool {
	return e.Balances[id] >= amount
}

// Credit adds amount to an account, creating it at 0 first if needed.
func (e *Economy) Credit(id string, amount int64) {
	if amount == 0 {
		return
	}
	e.Balances[id] += amount
}

// Debit removes amount from an account. Refuses with ErrInsufficientBalance
// if the balance would go negative; refusal mutates nothing. Applies to
// system accounts too — TREASURY must never go negative, and SYSTEM is never
// debited by any rule.
func (e *Economy) Debit(id string, amount int64) error {
	if e.Balances[id] < amount {
		return fmt.Errorf("debit %d from %s (balance %d): %w",
			amount, id, e.Balances[id], ErrInsufficientBalance)
	}
	e.Balances[id] -= amount
	return nil
}

// IsSystemAccount reports whether id is one of the reserved accounts, which
// are exempt from every citizen-facing rule.
func IsSystemAccount(id string) bool {
	return id == TreasuryID || id == SystemID
}

// Citizens returns every non-system account ID in sorted order. A balance of
// 0 still counts — citizens can always recover via UBI.
func (e *Economy) Citizens() []string {
	ids := make([]string, 0, len(e.Balances))
	for id := range e.Balances {
		if IsSystemAccount(id) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TotalDestroyed returns the SYSTEM sink balance: every Spark ever burned by
// maintenance and listing fees. Read for audits only, never redistributed.
func (e *Economy) TotalDestroyed() int64 {
	return e.Balances[SystemID]
}

// CheckIntegrity is a coarse audit: Spark credited into existence must cover
// Spark removed by sinks and taxes. A false result indicates an arithmetic or
// ordering bug, not a recoverable condition. Trimmed entries are out of view,
// so this is advisory on long-lived worlds.
func (e *Economy) CheckIntegrity() bool {
	var credits, debits int64
	for _, entry := range e.Ledger.Entries {
		switch entry.Type {
		case EntryEarn, EntryGenesis, EntryUBI:
			credits += entry.Amount
		case EntryWealthTax, EntryMaintenance, EntryListingFee:
			debits += entry.Amount
		}
	}
	return credits >= debits
}
