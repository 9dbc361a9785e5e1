package ledger

import (
	"fmt"
	"time"

	"equalizer/internal/money"
)

// Status is the clearing state the ledger reports for a transaction.
type Status string

const (
	StatusCleared       Status = "cleared"
	StatusUncleared     Status = "uncleared"
	StatusPending       Status = "pending"
	StatusDeletePending Status = "delete_pending"
)

// Date is a calendar date in the ledger's yyyy-mm-dd wire format.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate builds a Date from calendar components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current date in the local time zone.
func Today() Date {
	y, m, d := time.Now().Date()
	return NewDate(y, m, d)
}

// ParseDate parses a yyyy-mm-dd string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// After reports whether d falls after o.
func (d Date) After(o Date) bool {
	return d.Time.After(o.Time)
}

// Before reports whether d falls before o.
func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s: expected string", data)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Tag is a label attached to a transaction. Tag ids are unique per
// occurrence, not globally.
type Tag struct {
	Name string `json:"name"`
	ID   int64  `json:"id"`
}

// Transaction is a read-only snapshot of a ledger transaction. Mutations
// happen only through update requests; the remote ledger stays the sole
// source of truth.
type Transaction struct {
	ID           int64       `json:"id"`
	Date         Date        `json:"date"`
	Payee        string      `json:"payee"`
	Amount       money.Money `json:"amount"`
	AccountID    *int64      `json:"plaid_account_id"`
	CategoryID   *int64      `json:"category_id"`
	CategoryName *string     `json:"category_name"`
	Tags         []Tag       `json:"tags"`
	Notes        *string     `json:"notes"`
	Status       Status      `json:"status"`
	ParentID     *int64      `json:"parent_id"`
	HasChildren  bool        `json:"has_children"`
	IsPending    bool        `json:"is_pending"`
}

// HasTag reports whether the transaction carries a tag with the given name.
func (t *Transaction) HasTag(name string) bool {
	for _, tag := range t.Tags {
		if tag.Name == name {
			return true
		}
	}
	return false
}

// Pending reports whether the transaction is still pending. The API sets
// both a pending status and an is_pending flag; either one disqualifies.
func (t *Transaction) Pending() bool {
	return t.IsPending || t.Status == StatusPending
}

// InAccount reports whether the transaction belongs to the given account.
func (t *Transaction) InAccount(accountID int64) bool {
	return t.AccountID != nil && *t.AccountID == accountID
}

// TransactionUpdate is a partial mutation of one transaction. Nil fields
// are left untouched by the ledger; a pointer to an empty tag slice clears
// all tags.
type TransactionUpdate struct {
	Payee      *string   `json:"payee,omitempty"`
	CategoryID *int64    `json:"category_id,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
	Status     *Status   `json:"status,omitempty"`
}

// Split is one line of a transaction split. Amounts must sum to the parent
// transaction's amount or the ledger rejects the whole request.
type Split struct {
	Amount     money.Money `json:"amount"`
	Payee      *string     `json:"payee,omitempty"`
	CategoryID *int64      `json:"category_id,omitempty"`
	Notes      *string     `json:"notes,omitempty"`
	Date       *Date       `json:"date,omitempty"`
}

// Action is one ledger mutation: a plain update, a split, or both in a
// single call. Exactly one of the three concrete types below implements it
// per request.
type Action interface {
	isAction()
}

// Update mutates transaction fields without splitting.
type Update struct {
	ID     int64
	Update TransactionUpdate
}

// SplitOnly splits a transaction without touching its own fields.
type SplitOnly struct {
	ID     int64
	Splits []Split
}

// UpdateAndSplit mutates transaction fields and splits it in one request.
type UpdateAndSplit struct {
	ID     int64
	Update TransactionUpdate
	Splits []Split
}

func (Update) isAction()         {}
func (SplitOnly) isAction()      {}
func (UpdateAndSplit) isAction() {}

// UpdateResponse carries the ledger's answer to a mutation. SplitIDs is in
// submitted-line order; by convention index 1 is the debtor line.
type UpdateResponse struct {
	SplitIDs []int64
}
