// Package store persists Batch records, keyed by batch id.
//
// A batch is written whole or not at all; there is no partial update. The
// store is single-writer: callers serialize invocations externally.
package store

import (
	"errors"
	"time"

	"equalizer/internal/money"
)

// ErrBatchNotFound is returned when no batch exists for the given id.
var ErrBatchNotFound = errors.New("batch not found")

// Settlement records the two real-world repayment transactions matched
// during reconciliation, one per party.
type Settlement struct {
	SettlementCreditID int64 `json:"settlement_credit_id"`
	SettlementDebitID  int64 `json:"settlement_debit_id"`
}

// Batch is the durable unit of work: the debtor-visible transaction ids
// folded into one settlement, their exact total, and - once reconciled -
// the matched repayment transactions. Financial fields are immutable after
// creation; only Reconciliation is filled in later.
type Batch struct {
	ID             string      `json:"id"`
	Amount         money.Money `json:"amount"`
	TransactionIDs []int64     `json:"transaction_ids"`
	Reconciliation *Settlement `json:"reconciliation,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Reconciled reports whether the batch has been settled.
func (b *Batch) Reconciled() bool {
	return b.Reconciliation != nil
}

// Repository defines the batch store interface. It allows swapping
// implementations and makes testing with the in-memory store straightforward.
type Repository interface {
	// Save writes the batch record, replacing any previous record with
	// the same id.
	Save(batch *Batch) error

	// Get retrieves a batch by id, or ErrBatchNotFound.
	Get(id string) (*Batch, error)

	// ListUnreconciled returns every open batch.
	ListUnreconciled() ([]*Batch, error)

	Close() error
}
