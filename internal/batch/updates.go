package batch

import (
	"equalizer/internal/ledger"
	"equalizer/internal/money"
)

// AddUpdate pairs a "batch whole" transaction with its prepared mutation.
type AddUpdate struct {
	Txn    ledger.Transaction
	Update ledger.TransactionUpdate
}

// SplitUpdate pairs a "split in half" transaction with its prepared
// mutation and split lines. Splits[0] is the creditor line, Splits[1] the
// debtor line; the ledger's response ids follow the same order.
type SplitUpdate struct {
	Txn    ledger.Transaction
	Update ledger.TransactionUpdate
	Splits []ledger.Split
}

// BuildAddUpdates prepares the mutation for each transaction batched in
// full: reassign to the proxy category, strip the add tag, mark cleared.
// The transaction's own amount is untouched.
func BuildAddUpdates(txns []ledger.Transaction, proxyCategoryID int64, addTag string) []AddUpdate {
	updates := make([]AddUpdate, 0, len(txns))
	for _, txn := range txns {
		category := proxyCategoryID
		status := ledger.StatusCleared
		tags := tagNamesRemoving(txn.Tags, addTag)
		updates = append(updates, AddUpdate{
			Txn: txn,
			Update: ledger.TransactionUpdate{
				CategoryID: &category,
				Tags:       &tags,
				Status:     &status,
			},
		})
	}
	return updates
}

// BuildSplitUpdates prepares the mutation for each transaction split down
// the middle. The parent keeps its category (the lines carry the monetary
// effect); the creditor line keeps the original categorization and only
// the debtor line moves to the proxy category.
func BuildSplitUpdates(txns []ledger.Transaction, proxyCategoryID int64, splitTag string) []SplitUpdate {
	updates := make([]SplitUpdate, 0, len(txns))
	for _, txn := range txns {
		creditorAmount, debtorAmount := money.SplitEven(txn.Amount)

		category := proxyCategoryID
		status := ledger.StatusCleared
		tags := tagNamesRemoving(txn.Tags, splitTag)

		updates = append(updates, SplitUpdate{
			Txn: txn,
			Update: ledger.TransactionUpdate{
				Tags:   &tags,
				Status: &status,
			},
			Splits: []ledger.Split{
				{Amount: creditorAmount},
				{Amount: debtorAmount, CategoryID: &category},
			},
		})
	}
	return updates
}

// tagNamesRemoving flattens tags to their names with every occurrence of
// the triggering tag removed, preserving order and any duplicates of other
// names. Always returns a non-nil slice: the update must send an explicit
// (possibly empty) list or the ledger leaves the tag in place.
func tagNamesRemoving(tags []ledger.Tag, remove string) []string {
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag.Name == remove {
			continue
		}
		names = append(names, tag.Name)
	}
	return names
}
