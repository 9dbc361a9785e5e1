package money

import "math/rand/v2"

// SplitEven divides m into two halves that always sum back to exactly m.
// For an odd cent count one half is a cent larger; which position gets the
// larger half is decided by a fair coin flip on every call, so over many
// splits neither party systematically collects the extra cents.
func SplitEven(m Money) (Money, Money) {
	return splitEvenCoin(m, rand.IntN(2) == 0)
}

func splitEvenCoin(m Money, firstLarger bool) (Money, Money) {
	larger, smaller := halves(m)
	if firstLarger {
		return larger, smaller
	}
	return smaller, larger
}

// halves splits m at the cent: the first result is rounded away from zero,
// the second toward zero. larger + smaller == m holds for every input,
// including zero and negative amounts.
func halves(m Money) (larger, smaller Money) {
	cents := m.Cents()
	toward := cents / 2
	away := cents - toward
	return FromCents(away), FromCents(toward)
}
