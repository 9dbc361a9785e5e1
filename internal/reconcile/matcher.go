// Package reconcile finds the real-world repayment for a batch on both
// parties' ledgers and closes the batch out.
package reconcile

import (
	"errors"
	"log/slog"
	"sort"

	"equalizer/internal/ledger"
	"equalizer/internal/money"
)

// ErrNoSettlementFound is returned when no transaction in the search
// window matches the settlement predicate.
var ErrNoSettlementFound = errors.New("no settlement transaction found")

// Matcher locates the settlement transaction for a batch within a party's
// fetched transactions.
type Matcher struct {
	logger *slog.Logger
}

// NewMatcher creates a settlement matcher.
func NewMatcher(logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{logger: logger}
}

// FindSettlement returns the transaction whose amount equals want and
// whose account is the party's settlement account.
//
// When several transactions qualify, the earliest date wins, then the
// smallest id. Selection never depends on API return order.
func (m *Matcher) FindSettlement(txns []ledger.Transaction, want money.Money, accountID int64) (*ledger.Transaction, error) {
	var candidates []ledger.Transaction
	for _, txn := range txns {
		if txn.Amount.Equal(want) && txn.InAccount(accountID) {
			candidates = append(candidates, txn)
		}
	}

	if len(candidates) == 0 {
		return nil, ErrNoSettlementFound
	}
	if len(candidates) > 1 {
		m.logger.Warn("Multiple settlement candidates; taking earliest",
			"count", len(candidates),
			"amount", want.String(),
			"account_id", accountID,
		)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if !candidates[i].Date.Equal(candidates[j].Date.Time) {
			return candidates[i].Date.Before(candidates[j].Date)
		}
		return candidates[i].ID < candidates[j].ID
	})

	return &candidates[0], nil
}
