package economy

import (
	"errors"
	"testing"
)

func TestListingFeeFormula(t *testing.T) {
	cases := []struct {
		price int64
		want  int64
	}{
		{0, 1},   // minimum applies even at price 0
		{1, 1},   // floor(0.05) -> minimum
		{5, 1},   // floor(0.25) -> minimum
		{19, 1},  // floor(0.95) -> minimum
		{20, 1},  // exactly 1
		{21, 1},  // floor(1.05) = 1
		{100, 5},
		{200, 10},
		{999, 49}, // floor(49.95), citizen-favorable
	}
	for _, c := range cases {
		if got := ListingFee(c.price); got != c.want {
			t.Errorf("ListingFee(%d) = %d, want %d", c.price, got, c.want)
		}
	}
}

func TestChargeListingFeeDebitsAndDestroys(t *testing.T) {
	e := New(100)
	e.Credit("seller", 100)

	fee, err := e.ChargeListingFee("seller", 100, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if fee != 5 {
		t.Fatalf("fee = %d, want 5", fee)
	}
	if got := e.Balance("seller"); got != 95 {
		t.Fatalf("seller balance = %d, want 95", got)
	}
	if got := e.Balance(SystemID); got != 5 {
		t.Fatalf("sink = %d, want 5", got)
	}
	if e.Balance(TreasuryID) != 0 {
		t.Fatal("listing fee must never reach the treasury")
	}

	entries := entriesOfType(e, EntryListingFee)
	if len(entries) != 1 {
		t.Fatalf("expected 1 fee entry, got %d", len(entries))
	}
	if entries[0].AskingPrice != 100 || entries[0].FeeRate != 5 || entries[0].Sink != SystemID {
		t.Fatalf("unexpected fee entry: %+v", entries[0])
	}
}

func TestChargeListingFeeRefusesOnShortfall(t *testing.T) {
	e := New(100)
	e.Credit("seller", 4) // fee for price 100 is 5

	fee, err := e.ChargeListingFee("seller", 100, testNow)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if fee != 5 {
		t.Fatalf("refusal should still report the fee, got %d", fee)
	}
	if e.Balance("seller") != 4 || e.Ledger.Len() != 0 || e.Balance(SystemID) != 0 {
		t.Fatal("refusal must mutate nothing")
	}
}

func TestChargeListingFeeExactBalanceSucceeds(t *testing.T) {
	e := New(100)
	e.Credit("seller", 5)

	if _, err := e.ChargeListingFee("seller", 100, testNow); err != nil {
		t.Fatal(err)
	}
	if got := e.Balance("seller"); got != 0 {
		t.Fatalf("seller balance = %d, want 0", got)
	}
}

func TestChargeListingFeeUnknownSellerFails(t *testing.T) {
	e := New(100)
	if _, err := e.ChargeListingFee("nobody", 100, testNow); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected refusal for unknown seller, got %v", err)
	}
}
