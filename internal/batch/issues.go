package batch

import "fmt"

// IssueKind discriminates the per-transaction anomalies a run can detect.
type IssueKind string

const (
	// IssueAddTagHasChildren: tagged for batching but already split at the
	// ledger. Tagging the parent is a user error.
	IssueAddTagHasChildren IssueKind = "add_tag_has_children"

	// IssueSplitTagHasChildren: tagged for splitting but already split.
	IssueSplitTagHasChildren IssueKind = "split_tag_has_children"

	// IssueSplitTagHasParent: tagged for splitting but it is itself a
	// split leg.
	IssueSplitTagHasParent IssueKind = "split_tag_has_parent"

	// IssueTransactionUpdateError: the ledger rejected or failed the
	// update for this transaction.
	IssueTransactionUpdateError IssueKind = "transaction_update_error"
)

// Issue is a per-transaction anomaly. Issues never abort a run; they
// accumulate and are reported alongside the success summary.
type Issue struct {
	Kind          IssueKind
	TransactionID int64
	Message       string // populated for update errors
}

// Text renders the user-facing warning line for the issue.
func (i Issue) Text() string {
	switch i.Kind {
	case IssueAddTagHasChildren:
		return fmt.Sprintf("Transaction was tagged for batch, but it has children: %d", i.TransactionID)
	case IssueSplitTagHasChildren:
		return fmt.Sprintf("Transaction was tagged to split, but it already has children: %d", i.TransactionID)
	case IssueSplitTagHasParent:
		return fmt.Sprintf("Transaction was tagged to split, but it has a parent: %d", i.TransactionID)
	case IssueTransactionUpdateError:
		return fmt.Sprintf("Error when updating transaction %d: %s", i.TransactionID, i.Message)
	default:
		return fmt.Sprintf("Unknown issue with transaction %d", i.TransactionID)
	}
}
