package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"equalizer/internal/ledger"
	"equalizer/internal/money"
	"equalizer/internal/notify"
	"equalizer/internal/store"
)

// ErrNoEligibleTransactions is returned when the date window contains no
// valid tagged transactions, before any mutation is attempted.
var ErrNoEligibleTransactions = errors.New("no valid transactions found to create batch from")

// Config holds the creditor-side settings the create-batch workflow needs.
type Config struct {
	ProxyCategoryID     int64
	AddTag              string
	SplitTag            string
	DebtorVenmoUsername string
	DryRun              bool
}

// Creator drives the create-batch workflow: fetch, classify, mutate the
// creditor's ledger one transaction at a time, persist the batch, notify.
type Creator struct {
	creditor ledger.API
	store    store.Repository
	notifier notify.Notifier
	cfg      Config
	logger   *slog.Logger
	now      func() ledger.Date
}

// NewCreator wires a create-batch workflow.
func NewCreator(creditor ledger.API, repo store.Repository, notifier notify.Notifier, cfg Config, logger *slog.Logger) *Creator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Creator{
		creditor: creditor,
		store:    repo,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
		now:      ledger.Today,
	}
}

// Result reports a finished create-batch run. Issues are warnings, not
// failures: the batch was created from everything that processed cleanly.
type Result struct {
	BatchID string
	Amount  money.Money
	Count   int
	Issues  []Issue
}

// lineRecord ties the debtor-visible transaction id to the line item that
// ends up in the batch and the notification summary.
type lineRecord struct {
	id   int64
	item notify.LineItem
}

// Run creates one batch from the creditor's tagged transactions in
// [start, end]. Individual update failures become issues; the run only
// fails outright on preconditions, fetch errors, or persistence errors.
func (c *Creator) Run(ctx context.Context, start, end ledger.Date) (*Result, error) {
	c.logger.Info("Starting batch creation",
		"start_date", start.String(),
		"end_date", end.String(),
		"dry_run", c.cfg.DryRun,
	)

	if start.After(end) {
		return nil, fmt.Errorf("start date %s cannot be after end date %s", start, end)
	}

	txns, fullPage, err := c.creditor.GetTransactions(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetching creditor transactions: %w", err)
	}

	classified := Classify(txns, c.cfg.AddTag, c.cfg.SplitTag)
	if classified.Empty() {
		return nil, ErrNoEligibleTransactions
	}

	c.logger.Info("Classified transactions",
		"to_add", len(classified.ToAdd),
		"to_split", len(classified.ToSplit),
		"issues", len(classified.Issues),
	)

	issues := classified.Issues

	addUpdates := BuildAddUpdates(classified.ToAdd, c.cfg.ProxyCategoryID, c.cfg.AddTag)
	splitUpdates := BuildSplitUpdates(classified.ToSplit, c.cfg.ProxyCategoryID, c.cfg.SplitTag)

	records, addIssues := c.executeAdds(ctx, addUpdates)
	issues = append(issues, addIssues...)

	splitRecords, splitIssues := c.executeSplits(ctx, splitUpdates)
	records = append(records, splitRecords...)
	issues = append(issues, splitIssues...)

	total := money.Zero()
	ids := make([]int64, 0, len(records))
	items := make([]notify.LineItem, 0, len(records))
	for _, record := range records {
		total = total.Add(record.item.Amount)
		ids = append(ids, record.id)
		items = append(items, record.item)
	}

	batch := &store.Batch{
		ID:             uuid.NewString(),
		Amount:         total,
		TransactionIDs: ids,
		CreatedAt:      time.Now().UTC(),
	}

	if c.cfg.DryRun {
		c.logger.Info("[DRY RUN] Would save batch", "batch_id", batch.ID, "amount", total.String())
	} else {
		c.logger.Debug("Saving new batch", "batch_id", batch.ID)
		if err := c.store.Save(batch); err != nil {
			return nil, fmt.Errorf("saving batch %s: %w", batch.ID, err)
		}
	}

	warnings := make([]string, 0, len(issues)+1)
	if fullPage {
		warnings = append(warnings, "transaction fetch returned a full page; some transactions may have been missed")
	}
	for _, issue := range issues {
		warnings = append(warnings, issue.Text())
	}

	note := fmt.Sprintf("equalizer_%s", c.now())
	summary := notify.Summary{
		BatchID:     batch.ID,
		TotalAmount: total,
		LineItems:   items,
		RequestLink: notify.VenmoRequestLink(c.cfg.DebtorVenmoUsername, note, total),
		Warnings:    warnings,
	}

	if c.cfg.DryRun {
		c.logger.Info("[DRY RUN] Would send batch notification", "batch_id", batch.ID)
	} else if err := c.notifier.Send(ctx, summary); err != nil {
		return nil, fmt.Errorf("sending batch notification: %w", err)
	}

	c.logger.Info("Finished creating batch",
		"batch_id", batch.ID,
		"amount", total.String(),
		"transactions", len(ids),
		"issues", len(issues),
	)

	return &Result{BatchID: batch.ID, Amount: total, Count: len(ids), Issues: issues}, nil
}

// executeAdds applies each add update on its own; a failure turns into an
// issue and the loop keeps going. For adds the batched id is the original
// transaction id.
func (c *Creator) executeAdds(ctx context.Context, updates []AddUpdate) ([]lineRecord, []Issue) {
	var records []lineRecord
	var issues []Issue

	for _, u := range updates {
		if _, err := c.creditor.UpdateTransaction(ctx, u.Txn.ID, u.Update); err != nil {
			c.logger.Error("Transaction update failed", "txn_id", u.Txn.ID, "error", err)
			issues = append(issues, Issue{Kind: IssueTransactionUpdateError, TransactionID: u.Txn.ID, Message: err.Error()})
			continue
		}
		records = append(records, lineRecord{
			id: u.Txn.ID,
			item: notify.LineItem{
				Payee:  u.Txn.Payee,
				Amount: u.Txn.Amount,
				Date:   u.Txn.Date,
			},
		})
	}

	return records, issues
}

// executeSplits applies each split update on its own. The batched id is
// the debtor's split line id, which the ledger returns at position 1; a
// response without it is an issue, not an abort.
func (c *Creator) executeSplits(ctx context.Context, updates []SplitUpdate) ([]lineRecord, []Issue) {
	var records []lineRecord
	var issues []Issue

	for _, u := range updates {
		debtorAmount := u.Splits[1].Amount

		resp, err := c.creditor.UpdateTransactionAndSplit(ctx, u.Txn.ID, u.Update, u.Splits)
		if err != nil {
			c.logger.Error("Transaction split failed", "txn_id", u.Txn.ID, "error", err)
			issues = append(issues, Issue{Kind: IssueTransactionUpdateError, TransactionID: u.Txn.ID, Message: err.Error()})
			continue
		}
		if len(resp.SplitIDs) < 2 {
			c.logger.Error("Split response missing debtor line id", "txn_id", u.Txn.ID, "split_ids", resp.SplitIDs)
			issues = append(issues, Issue{
				Kind:          IssueTransactionUpdateError,
				TransactionID: u.Txn.ID,
				Message:       "no item in position 1 of split ids in update response - expected debtor proxy split id",
			})
			continue
		}

		records = append(records, lineRecord{
			id: resp.SplitIDs[1],
			item: notify.LineItem{
				Payee:  u.Txn.Payee,
				Amount: debtorAmount,
				Date:   u.Txn.Date,
			},
		})
	}

	return records, issues
}
