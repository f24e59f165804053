// Structure maintenance: a daily 1-Spark upkeep per structure, destroyed via
// the SYSTEM sink. Two consecutive missed payments decay the structure.
package economy

import (
	"sort"
	"time"
)

// MaintenanceCost is the daily upkeep per structure, in Spark.
const MaintenanceCost int64 = 1

// MaxMissedPayments is the consecutive-miss count at which a structure decays.
const MaxMissedPayments = 2

// Structure is the slice of world-building state this engine owns: the owner
// link and the missed-payment counter. Creation and deletion belong to the
// world subsystem; this module only decides removal.
type Structure struct {
	ID             string `json:"id" db:"id"`
	Owner          string `json:"builder" db:"owner"`
	MissedPayments int    `json:"missedPayments" db:"missed_payments"`
}

// ProcessMaintenance charges each structure's owner the daily upkeep. Paid
// upkeep goes to the SYSTEM sink (destruction, never TREASURY) and resets the
// missed counter. An owner who cannot afford it keeps their balance; the miss
// is counted and logged. Structures whose counter reaches MaxMissedPayments
// are returned for the caller to remove from world state. Structures with
// empty or system owners are skipped entirely.
func (e *Economy) ProcessMaintenance(structures map[string]*Structure, gameDay int64, now time.Time) (toRemove []string) {
	ts := now.Unix()

	ids := make([]string, 0, len(structures))
	for id := range structures {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		st := structures[id]
		if st.Owner == "" || IsSystemAccount(st.Owner) || st.Owner == "system" {
			continue
		}

		if e.CanAfford(st.Owner, MaintenanceCost) {
			if err := e.Debit(st.Owner, MaintenanceCost); err != nil {
				continue // affordability was just checked; never taken
			}
			e.Credit(SystemID, MaintenanceCost)
			st.MissedPayments = 0
			e.Ledger.Append(Entry{
				Type:        EntryMaintenance,
				User:        st.Owner,
				Amount:      MaintenanceCost,
				StructureID: st.ID,
				Sink:        SystemID,
				GameDay:     gameDay,
				Timestamp:   ts,
			})
			continue
		}

		st.MissedPayments++
		e.Ledger.Append(Entry{
			Type:           EntryMaintenanceMissed,
			User:           st.Owner,
			Amount:         MaintenanceCost,
			StructureID:    st.ID,
			MissedPayments: st.MissedPayments,
			GameDay:        gameDay,
			Timestamp:      ts,
		})
		if st.MissedPayments >= MaxMissedPayments {
			toRemove = append(toRemove, st.ID)
		}
	}
	return toRemove
}
