// Progressive taxation. Rates are whole percentages and all math is integer
// with floor division — the floor always favors the citizen.
package economy

// taxBracket maps an inclusive balance range to a tax percentage.
type taxBracket struct {
	low, high int64 // inclusive; high < 0 means unbounded
	pct       int64
}

var taxBrackets = []taxBracket{
	{0, 19, 0},
	{20, 49, 5},
	{50, 99, 10},
	{100, 249, 15},
	{250, 499, 25},
	{500, -1, 40},
}

// RateFor returns the tax percentage for an account at the given balance.
// The rate is determined by the balance before the earning is added.
// Negative balances map to 0%.
func RateFor(balance int64) int64 {
	if balance < 0 {
		return 0
	}
	for _, b := range taxBrackets {
		if balance >= b.low && (b.high < 0 || balance <= b.high) {
			return b.pct
		}
	}
	return 0
}

// TaxOn returns floor(amount * rate) for an amount earned at the given
// pre-transaction balance.
func TaxOn(amount, balance int64) int64 {
	if amount <= 0 {
		return 0
	}
	return amount * RateFor(balance) / 100
}
