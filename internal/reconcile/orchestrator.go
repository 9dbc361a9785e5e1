package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"equalizer/internal/ledger"
	"equalizer/internal/store"
)

// ErrAlreadyReconciled is returned when asked to reconcile a closed batch.
var ErrAlreadyReconciled = errors.New("batch is already reconciled")

// Config holds the account and category settings reconciliation needs.
type Config struct {
	CreditorProxyCategoryID    int64
	CreditorRepaymentAccountID int64
	DebtorRepaymentAccountID   int64
	DryRun                     bool
}

// Orchestrator drives settlement lookup on both parties and finalizes the
// batch record. Reconciliation is all-or-nothing per batch: any failure
// leaves the stored record untouched and the batch open.
type Orchestrator struct {
	creditor ledger.API
	debtor   ledger.API
	store    store.Repository
	matcher  *Matcher
	cfg      Config
	logger   *slog.Logger
	now      func() ledger.Date
}

// NewOrchestrator wires a reconciliation workflow.
func NewOrchestrator(creditor, debtor ledger.API, repo store.Repository, cfg Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		creditor: creditor,
		debtor:   debtor,
		store:    repo,
		matcher:  NewMatcher(logger),
		cfg:      cfg,
		logger:   logger,
		now:      ledger.Today,
	}
}

// ReconcileByID loads the batch and reconciles it.
func (o *Orchestrator) ReconcileByID(ctx context.Context, batchID string) error {
	batch, err := o.store.Get(batchID)
	if err != nil {
		return err
	}
	return o.ReconcileBatch(ctx, batch)
}

// ReconcileBatch matches the repayment transaction on each side, annotates
// both, and rewrites the batch with its settlement.
func (o *Orchestrator) ReconcileBatch(ctx context.Context, batch *store.Batch) error {
	if batch.Reconciled() {
		return fmt.Errorf("%w: %s", ErrAlreadyReconciled, batch.ID)
	}

	o.logger.Info("Reconciling batch",
		"batch_id", batch.ID,
		"amount", batch.Amount.String(),
		"dry_run", o.cfg.DryRun,
	)

	// The batch's own transactions bound the search window: the repayment
	// cannot predate the latest expense it settles.
	batchTxns, err := o.creditor.GetTransactionsByID(ctx, batch.TransactionIDs)
	if err != nil {
		return fmt.Errorf("fetching batch transactions: %w", err)
	}
	windowStart := latestDate(batchTxns)
	windowEnd := o.now()

	// Creditor side: the repayment arrives as income, so it carries the
	// negated batch amount.
	creditorTxns, _, err := o.creditor.GetTransactions(ctx, windowStart, windowEnd)
	if err != nil {
		return fmt.Errorf("fetching creditor transactions: %w", err)
	}

	creditorSettlement, err := o.matcher.FindSettlement(creditorTxns, batch.Amount.Neg(), o.cfg.CreditorRepaymentAccountID)
	if err != nil {
		return fmt.Errorf("creditor settlement for batch %s: %w", batch.ID, err)
	}

	category := o.cfg.CreditorProxyCategoryID
	status := ledger.StatusCleared
	notes := batch.ID
	if _, err := o.creditor.UpdateTransaction(ctx, creditorSettlement.ID, ledger.TransactionUpdate{
		CategoryID: &category,
		Notes:      &notes,
		Status:     &status,
	}); err != nil {
		return fmt.Errorf("marking creditor settlement %d: %w", creditorSettlement.ID, err)
	}

	// Debtor side: the repayment leaves their account with the full batch
	// amount, and gets split back into the original expenses so each can
	// be categorized on its own.
	debtorTxns, _, err := o.debtor.GetTransactions(ctx, windowStart, windowEnd)
	if err != nil {
		return fmt.Errorf("fetching debtor transactions: %w", err)
	}

	debtorSettlement, err := o.matcher.FindSettlement(debtorTxns, batch.Amount, o.cfg.DebtorRepaymentAccountID)
	if err != nil {
		return fmt.Errorf("debtor settlement for batch %s: %w", batch.ID, err)
	}

	debtorNotes := batch.ID
	if _, err := o.debtor.UpdateTransactionAndSplit(ctx, debtorSettlement.ID,
		ledger.TransactionUpdate{Notes: &debtorNotes},
		debtorSplits(batchTxns),
	); err != nil {
		return fmt.Errorf("splitting debtor settlement %d: %w", debtorSettlement.ID, err)
	}

	batch.Reconciliation = &store.Settlement{
		SettlementCreditID: creditorSettlement.ID,
		SettlementDebitID:  debtorSettlement.ID,
	}

	if o.cfg.DryRun {
		o.logger.Info("[DRY RUN] Would mark batch reconciled", "batch_id", batch.ID)
		return nil
	}

	if err := o.store.Save(batch); err != nil {
		return fmt.Errorf("saving reconciled batch %s: %w", batch.ID, err)
	}

	o.logger.Info("Reconciled batch", "batch_id", batch.ID)
	return nil
}

// ReconcileAll reconciles every open batch independently. One batch's
// failure does not stop the others: errors are collected and returned
// joined, alongside the ids that did reconcile.
func (o *Orchestrator) ReconcileAll(ctx context.Context) ([]string, error) {
	open, err := o.store.ListUnreconciled()
	if err != nil {
		return nil, fmt.Errorf("listing open batches: %w", err)
	}

	var reconciled []string
	var errs []error
	for _, batch := range open {
		if err := o.ReconcileBatch(ctx, batch); err != nil {
			o.logger.Error("Failed to reconcile batch", "batch_id", batch.ID, "error", err)
			errs = append(errs, fmt.Errorf("batch %s: %w", batch.ID, err))
			continue
		}
		reconciled = append(reconciled, batch.ID)
	}

	return reconciled, errors.Join(errs...)
}

// debtorSplits mirrors each batched expense as one split line, carrying
// payee and date through so the debtor can categorize them individually.
func debtorSplits(batchTxns []ledger.Transaction) []ledger.Split {
	splits := make([]ledger.Split, 0, len(batchTxns))
	for _, txn := range batchTxns {
		payee := txn.Payee
		date := txn.Date
		notes := "Paid via equalizer"
		if txn.Notes != nil && *txn.Notes != "" {
			notes = fmt.Sprintf("Paid via equalizer. Notes: %s", *txn.Notes)
		}
		splits = append(splits, ledger.Split{
			Amount: txn.Amount,
			Payee:  &payee,
			Notes:  &notes,
			Date:   &date,
		})
	}
	return splits
}

func latestDate(txns []ledger.Transaction) ledger.Date {
	var latest ledger.Date
	for _, txn := range txns {
		if txn.Date.After(latest) {
			latest = txn.Date
		}
	}
	return latest
}
