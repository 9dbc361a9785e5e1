// Package batch turns tagged ledger transactions into a settled batch:
// classification, update building, and the create-batch workflow.
package batch

import "equalizer/internal/ledger"

// Classification partitions a transaction set by the batching tags.
type Classification struct {
	AddTag   string
	SplitTag string
	ToAdd    []ledger.Transaction
	ToSplit  []ledger.Transaction
	Issues   []Issue
}

// Classify partitions transactions into "batch whole" and "split in half"
// groups, validating each against the ledger's split structure.
//
// Pending transactions are never eligible, whatever their tags. A
// transaction carrying both tags is batched whole: the add tag wins.
func Classify(txns []ledger.Transaction, addTag, splitTag string) Classification {
	out := Classification{AddTag: addTag, SplitTag: splitTag}

	for _, txn := range txns {
		if txn.Pending() {
			continue
		}

		switch {
		case txn.HasTag(addTag):
			if txn.HasChildren {
				out.Issues = append(out.Issues, Issue{Kind: IssueAddTagHasChildren, TransactionID: txn.ID})
				continue
			}
			out.ToAdd = append(out.ToAdd, txn)

		case txn.HasTag(splitTag):
			if txn.HasChildren {
				out.Issues = append(out.Issues, Issue{Kind: IssueSplitTagHasChildren, TransactionID: txn.ID})
				continue
			}
			if txn.ParentID != nil {
				out.Issues = append(out.Issues, Issue{Kind: IssueSplitTagHasParent, TransactionID: txn.ID})
				continue
			}
			out.ToSplit = append(out.ToSplit, txn)
		}
	}

	return out
}

// Empty reports whether classification found nothing valid to process.
func (c Classification) Empty() bool {
	return len(c.ToAdd) == 0 && len(c.ToSplit) == 0
}
