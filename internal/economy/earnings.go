// Earnings processing: Spark rewards for citizen actions, taxed at the
// pre-transaction balance. Invoked whenever action events arrive, independent
// of the day boundary.
package economy

import "time"

// ActionEvent is one action consumed from the inbox layer. Exactly-once
// delivery is the inbox's responsibility, not this processor's.
type ActionEvent struct {
	Type      string `json:"type"`
	Actor     string `json:"from"`
	Timestamp int64  `json:"ts,omitempty"` // Unix seconds; 0 = stamp at processing time
}

// RewardTable maps action types to gross Spark rewards. Social actions earn a
// little, world-altering actions more; passive actions earn nothing. Unknown
// types reward 0 and are ignored.
var RewardTable = map[string]int64{
	"join":                 1,
	"say":                  1,
	"shout":                2,
	"whisper":              1,
	"emote":                1,
	"build":                10,
	"plant":                5,
	"craft":                8,
	"compose":              15,
	"harvest":              3,
	"gift":                 5,
	"teach":                10,
	"learn":                5,
	"score":                10,
	"discover":             20,
	"anchor_place":         25,
	"inspect":              1,
	"intention_set":        2,
	"warp_fork":            50,
	"federation_announce":  100,
	"federation_handshake": 50,
}

// ProcessEarnings awards Spark for each event with a positive reward: the tax
// rate is read from the actor's balance before the credit, the net is
// credited to the actor, the tax to TREASURY. One earn entry per rewarded
// event, plus a tax entry when tax > 0. Zero-reward events leave no trace.
func (e *Economy) ProcessEarnings(events []ActionEvent, now time.Time) {
	for _, ev := range events {
		if ev.Type == "" || ev.Actor == "" {
			continue
		}
		gross := RewardTable[ev.Type]
		if gross <= 0 {
			continue
		}

		ts := ev.Timestamp
		if ts == 0 {
			ts = now.Unix()
		}

		before := e.Balance(ev.Actor)
		rate := RateFor(before)
		tax := TaxOn(gross, before)
		net := gross - tax

		e.Credit(ev.Actor, net)
		e.Ledger.Append(Entry{
			Type:        EntryEarn,
			User:        ev.Actor,
			Amount:      net,
			GrossAmount: gross,
			TaxWithheld: tax,
			TaxRate:     rate,
			Action:      ev.Type,
			Timestamp:   ts,
		})

		if tax > 0 {
			e.Credit(TreasuryID, tax)
			e.Ledger.Append(Entry{
				Type:      EntryTax,
				User:      ev.Actor,
				Amount:    tax,
				TaxRate:   rate,
				Action:    ev.Type,
				Timestamp: ts,
			})
		}
	}
}
