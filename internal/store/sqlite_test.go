package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equalizer/internal/money"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "batches.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	s := newTestStore(t)

	batch := &Batch{
		ID:             "b-1",
		Amount:         money.FromCents(3151),
		TransactionIDs: []int64{1024, 9002},
		CreatedAt:      time.Date(2025, 10, 25, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.Save(batch))

	got, err := s.Get("b-1")
	require.NoError(t, err)
	assert.Equal(t, "b-1", got.ID)
	assert.True(t, got.Amount.Equal(money.FromCents(3151)))
	assert.Equal(t, []int64{1024, 9002}, got.TransactionIDs)
	assert.Nil(t, got.Reconciliation)
	assert.False(t, got.Reconciled())
	assert.Equal(t, batch.CreatedAt, got.CreatedAt)
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get("nope")
	assert.ErrorIs(t, err, ErrBatchNotFound)
}

func TestSQLiteStore_SaveReplacesWholeRecord(t *testing.T) {
	s := newTestStore(t)

	batch := &Batch{
		ID:             "b-1",
		Amount:         money.FromCents(2000),
		TransactionIDs: []int64{1, 2},
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.Save(batch))

	batch.Reconciliation = &Settlement{SettlementCreditID: 555, SettlementDebitID: 777}
	require.NoError(t, s.Save(batch))

	got, err := s.Get("b-1")
	require.NoError(t, err)
	require.True(t, got.Reconciled())
	assert.Equal(t, int64(555), got.Reconciliation.SettlementCreditID)
	assert.Equal(t, int64(777), got.Reconciliation.SettlementDebitID)
	assert.True(t, got.Amount.Equal(money.FromCents(2000)))
}

func TestSQLiteStore_ListUnreconciled(t *testing.T) {
	s := newTestStore(t)

	open1 := &Batch{ID: "open-1", Amount: money.FromCents(100), TransactionIDs: []int64{1},
		CreatedAt: time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)}
	open2 := &Batch{ID: "open-2", Amount: money.FromCents(200), TransactionIDs: []int64{2},
		CreatedAt: time.Date(2025, 10, 2, 0, 0, 0, 0, time.UTC)}
	closed := &Batch{ID: "closed", Amount: money.FromCents(300), TransactionIDs: []int64{3},
		Reconciliation: &Settlement{SettlementCreditID: 1, SettlementDebitID: 2},
		CreatedAt:      time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC)}

	for _, b := range []*Batch{open2, closed, open1} {
		require.NoError(t, s.Save(b))
	}

	open, err := s.ListUnreconciled()
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "open-1", open[0].ID)
	assert.Equal(t, "open-2", open[1].ID)
}

func TestSQLiteStore_NegativeAmountRoundTrip(t *testing.T) {
	s := newTestStore(t)

	batch := &Batch{ID: "neg", Amount: money.FromCents(-1501), TransactionIDs: []int64{9}, CreatedAt: time.Now()}
	require.NoError(t, s.Save(batch))

	got, err := s.Get("neg")
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(money.FromCents(-1501)))
}
