// Package notify renders batch summaries for the notification channel.
//
// The core only produces the summary; delivery (email, chat, whatever) is a
// collaborator behind the Notifier interface.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"equalizer/internal/ledger"
	"equalizer/internal/money"
)

// LineItem is one batched expense as shown to the creditor.
type LineItem struct {
	Payee  string
	Amount money.Money
	Date   ledger.Date
}

// Summary is the rendered outcome of a batch creation run.
type Summary struct {
	BatchID     string
	TotalAmount money.Money
	LineItems   []LineItem
	RequestLink string
	Warnings    []string
}

// Notifier delivers a batch summary.
type Notifier interface {
	Send(ctx context.Context, summary Summary) error
}

// Multi fans a summary out to every notifier in order, stopping at the
// first failure.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, summary Summary) error {
	for _, n := range m {
		if err := n.Send(ctx, summary); err != nil {
			return err
		}
	}
	return nil
}

// VenmoRequestLink builds a prefilled Venmo charge link for the batch total.
func VenmoRequestLink(username, note string, amount money.Money) string {
	return fmt.Sprintf("https://venmo.com/%s?txn=charge&note=%s&amount=%s",
		username, url.QueryEscape(note), amount)
}

// LogNotifier writes the summary to the log instead of delivering it.
// It stands in wherever a real delivery channel is not configured.
type LogNotifier struct {
	Logger *slog.Logger
}

var _ Notifier = (*LogNotifier)(nil)

func (n *LogNotifier) Send(_ context.Context, summary Summary) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Batch ready",
		"batch_id", summary.BatchID,
		"total_amount", summary.TotalAmount.String(),
		"line_items", len(summary.LineItems),
		"request_link", summary.RequestLink,
	)
	for _, item := range summary.LineItems {
		logger.Info("Batched transaction",
			"payee", item.Payee,
			"amount", item.Amount.String(),
			"date", item.Date.String(),
		)
	}
	for _, warning := range summary.Warnings {
		logger.Warn("Batch warning", "warning", warning)
	}
	return nil
}
