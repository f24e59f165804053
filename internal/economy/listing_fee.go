// Market listing fee: charged synchronously when a citizen lists an item for
// sale. The fee is destroyed via the SYSTEM sink.
package economy

import "time"

const (
	// ListingFeePct is the fee on the asking price, as a whole percentage.
	ListingFeePct int64 = 5
	// ListingFeeMin is the minimum fee — even a price of 0 costs 1 Spark.
	ListingFeeMin int64 = 1
)

// ListingFee returns the fee for an asking price: max(1, floor(price * 5%)).
func ListingFee(askingPrice int64) int64 {
	fee := askingPrice * ListingFeePct / 100
	if fee < ListingFeeMin {
		fee = ListingFeeMin
	}
	return fee
}

// ChargeListingFee debits the fee from the seller and destroys it. Returns
// ErrInsufficientBalance with zero mutation when the seller cannot pay —
// rolling back the listing itself is the caller's job.
func (e *Economy) ChargeListingFee(seller string, askingPrice int64, now time.Time) (fee int64, err error) {
	fee = ListingFee(askingPrice)
	if err := e.Debit(seller, fee); err != nil {
		return fee, err
	}
	e.Credit(SystemID, fee)
	e.Ledger.Append(Entry{
		Type:        EntryListingFee,
		User:        seller,
		Amount:      fee,
		AskingPrice: askingPrice,
		FeeRate:     ListingFeePct,
		Sink:        SystemID,
		Timestamp:   now.Unix(),
	})
	return fee, nil
}
