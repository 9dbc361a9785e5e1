package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"equalizer/internal/money"
)

// SQLiteStore provides SQLite-backed batch persistence. It implements the
// Repository interface.
type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check that SQLiteStore implements Repository
var _ Repository = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS batches (
	id                    TEXT PRIMARY KEY,
	amount                TEXT NOT NULL,
	transaction_ids       TEXT NOT NULL,
	settlement_credit_id  INTEGER,
	settlement_debit_id   INTEGER,
	created_at            TEXT NOT NULL
);
`

// NewSQLiteStore opens (creating if needed) the batch database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating batches table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save writes the batch as a single row, replacing any existing row with
// the same id.
func (s *SQLiteStore) Save(batch *Batch) error {
	idsJSON, err := json.Marshal(batch.TransactionIDs)
	if err != nil {
		return err
	}

	var creditID, debitID sql.NullInt64
	if batch.Reconciliation != nil {
		creditID = sql.NullInt64{Int64: batch.Reconciliation.SettlementCreditID, Valid: true}
		debitID = sql.NullInt64{Int64: batch.Reconciliation.SettlementDebitID, Valid: true}
	}

	_, err = s.db.Exec(`
	INSERT OR REPLACE INTO batches
	(id, amount, transaction_ids, settlement_credit_id, settlement_debit_id, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`,
		batch.ID,
		batch.Amount.String(),
		string(idsJSON),
		creditID,
		debitID,
		batch.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// Get retrieves a batch by id.
func (s *SQLiteStore) Get(id string) (*Batch, error) {
	row := s.db.QueryRow(`
	SELECT id, amount, transaction_ids, settlement_credit_id, settlement_debit_id, created_at
	FROM batches WHERE id = ?`, id)

	batch, err := scanBatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrBatchNotFound, id)
	}
	return batch, err
}

// ListUnreconciled returns every batch without a recorded settlement,
// oldest first.
func (s *SQLiteStore) ListUnreconciled() ([]*Batch, error) {
	rows, err := s.db.Query(`
	SELECT id, amount, transaction_ids, settlement_credit_id, settlement_debit_id, created_at
	FROM batches WHERE settlement_credit_id IS NULL ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []*Batch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBatch(row scanner) (*Batch, error) {
	var (
		batch     Batch
		amount    string
		idsJSON   string
		creditID  sql.NullInt64
		debitID   sql.NullInt64
		createdAt string
	)

	if err := row.Scan(&batch.ID, &amount, &idsJSON, &creditID, &debitID, &createdAt); err != nil {
		return nil, err
	}

	parsed, err := money.Parse(amount)
	if err != nil {
		return nil, fmt.Errorf("batch %s: %w", batch.ID, err)
	}
	batch.Amount = parsed

	if err := json.Unmarshal([]byte(idsJSON), &batch.TransactionIDs); err != nil {
		return nil, fmt.Errorf("batch %s: decoding transaction ids: %w", batch.ID, err)
	}

	if creditID.Valid && debitID.Valid {
		batch.Reconciliation = &Settlement{
			SettlementCreditID: creditID.Int64,
			SettlementDebitID:  debitID.Int64,
		}
	}

	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		batch.CreatedAt = ts
	}

	return &batch, nil
}
