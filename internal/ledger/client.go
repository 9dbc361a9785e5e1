// Package ledger implements the remote ledger API collaborator: the
// transaction model, the mutation request types, and an HTTP client.
//
// The client reads at most one page of transactions per call. That is a
// documented limitation of this system, not of the API: callers are told
// when a full page comes back so they can surface possible truncation.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"
)

// DefaultBaseURL is the production ledger endpoint.
const DefaultBaseURL = "https://dev.lunchmoney.app"

// DefaultPageLimit is the API's single-page transaction limit.
const DefaultPageLimit = 1000

// API is the slice of the ledger consumed by the batching and
// reconciliation workflows. *Client implements it; tests mock it.
type API interface {
	// GetTransactions fetches one page of transactions in [start, end].
	// The bool result is true when the page came back full, which may
	// mean the true result set was truncated.
	GetTransactions(ctx context.Context, start, end Date) ([]Transaction, bool, error)

	// GetTransaction fetches a single transaction by id.
	GetTransaction(ctx context.Context, id int64) (*Transaction, error)

	// GetTransactionsByID fetches each id individually; the API has no
	// bulk-by-id endpoint.
	GetTransactionsByID(ctx context.Context, ids []int64) ([]Transaction, error)

	// UpdateTransaction applies a plain field update.
	UpdateTransaction(ctx context.Context, id int64, update TransactionUpdate) (*UpdateResponse, error)

	// UpdateTransactionAndSplit applies a field update and splits the
	// transaction into the given lines in one call.
	UpdateTransactionAndSplit(ctx context.Context, id int64, update TransactionUpdate, splits []Split) (*UpdateResponse, error)
}

// Config configures a Client.
type Config struct {
	Token     string
	BaseURL   string // defaults to DefaultBaseURL
	PageLimit int    // defaults to DefaultPageLimit
	DryRun    bool   // mutating calls return synthesized results
	Logger    *slog.Logger
}

// Client talks to the ledger HTTP API with retries.
type Client struct {
	baseURL   string
	token     string
	pageLimit int
	dryRun    bool
	logger    *slog.Logger
	http      *retryablehttp.Client
}

var _ API = (*Client)(nil)

// NewClient creates a ledger API client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PageLimit == 0 {
		cfg.PageLimit = DefaultPageLimit
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil

	return &Client{
		baseURL:   cfg.BaseURL,
		token:     cfg.Token,
		pageLimit: cfg.PageLimit,
		dryRun:    cfg.DryRun,
		logger:    cfg.Logger,
		http:      rc,
	}
}

type transactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
}

// GetTransactions fetches one page of transactions between start and end
// inclusive. The second result reports whether the page came back full.
func (c *Client) GetTransactions(ctx context.Context, start, end Date) ([]Transaction, bool, error) {
	c.logger.Debug("Fetching transactions",
		"start_date", start.String(),
		"end_date", end.String(),
	)

	q := url.Values{}
	q.Set("start_date", start.String())
	q.Set("end_date", end.String())
	q.Set("limit", fmt.Sprintf("%d", c.pageLimit))

	var resp transactionsResponse
	if err := c.get(ctx, "/v1/transactions?"+q.Encode(), &resp); err != nil {
		return nil, false, err
	}

	fullPage := len(resp.Transactions) >= c.pageLimit
	if fullPage {
		c.logger.Warn("Transaction fetch returned a full page; results may be truncated",
			"count", len(resp.Transactions),
			"page_limit", c.pageLimit,
		)
	}

	return resp.Transactions, fullPage, nil
}

// GetTransaction fetches a single transaction by id.
func (c *Client) GetTransaction(ctx context.Context, id int64) (*Transaction, error) {
	var txn Transaction
	if err := c.get(ctx, fmt.Sprintf("/v1/transactions/%d", id), &txn); err != nil {
		return nil, err
	}
	return &txn, nil
}

// GetTransactionsByID looks up each transaction with its own request.
func (c *Client) GetTransactionsByID(ctx context.Context, ids []int64) ([]Transaction, error) {
	c.logger.Debug("Fetching transactions by id", "count", len(ids))

	txns := make([]Transaction, 0, len(ids))
	for _, id := range ids {
		txn, err := c.GetTransaction(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", id, err)
		}
		txns = append(txns, *txn)
	}
	return txns, nil
}

// UpdateTransaction applies a plain field update to one transaction.
func (c *Client) UpdateTransaction(ctx context.Context, id int64, update TransactionUpdate) (*UpdateResponse, error) {
	return c.Apply(ctx, Update{ID: id, Update: update})
}

// UpdateTransactionAndSplit updates a transaction's fields and splits it
// into the given lines. The response's split ids follow submitted order.
func (c *Client) UpdateTransactionAndSplit(ctx context.Context, id int64, update TransactionUpdate, splits []Split) (*UpdateResponse, error) {
	return c.Apply(ctx, UpdateAndSplit{ID: id, Update: update, Splits: splits})
}

type updateRequestBody struct {
	Transaction *TransactionUpdate `json:"transaction,omitempty"`
	Split       []Split            `json:"split,omitempty"`
}

type updateResponseBody struct {
	Updated bool     `json:"updated"`
	Split   []int64  `json:"split"`
	Error   []string `json:"error"`
}

// Apply executes one mutation Action. In dry-run mode nothing is sent;
// a synthesized response with split ids [0, 1] is returned instead so the
// calling workflow can exercise its bookkeeping.
func (c *Client) Apply(ctx context.Context, action Action) (*UpdateResponse, error) {
	var id int64
	var body updateRequestBody

	switch a := action.(type) {
	case Update:
		id = a.ID
		body = updateRequestBody{Transaction: &a.Update}
	case SplitOnly:
		id = a.ID
		body = updateRequestBody{Split: a.Splits}
	case UpdateAndSplit:
		id = a.ID
		body = updateRequestBody{Transaction: &a.Update, Split: a.Splits}
	default:
		return nil, fmt.Errorf("unknown action type %T", action)
	}

	c.logger.Debug("Updating transaction", "txn_id", id, "split_lines", len(body.Split))

	if c.dryRun {
		c.logger.Info("[DRY RUN] Would update transaction", "txn_id", id, "split_lines", len(body.Split))
		return &UpdateResponse{SplitIDs: []int64{0, 1}}, nil
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPut,
		fmt.Sprintf("%s/v1/transactions/%d", c.baseURL, id), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("updating transaction %d: %w", id, err)
	}
	defer resp.Body.Close()

	var result updateResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding update response for transaction %d: %w", id, err)
	}

	if len(result.Error) > 0 {
		return nil, fmt.Errorf("ledger rejected update of transaction %d: %s", id, result.Error[0])
	}
	if !result.Updated {
		return nil, fmt.Errorf("ledger returned %d for transaction %d but did not update it", resp.StatusCode, id)
	}

	return &UpdateResponse{SplitIDs: result.Split}, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ledger GET %s: status %d: %s", path, resp.StatusCode, data)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
