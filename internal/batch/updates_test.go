package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equalizer/internal/ledger"
	"equalizer/internal/money"
)

const testProxyCategory = int64(20)

func TestBuildAddUpdates(t *testing.T) {
	txn1 := testTxn(1024, 1852, testAddTag)
	txn2 := testTxn(1025, 1299, testAddTag, "other")

	updates := BuildAddUpdates([]ledger.Transaction{txn1, txn2}, testProxyCategory, testAddTag)
	require.Len(t, updates, 2)

	for i, u := range updates {
		require.NotNil(t, u.Update.CategoryID, "update %d", i)
		assert.Equal(t, testProxyCategory, *u.Update.CategoryID)
		require.NotNil(t, u.Update.Status)
		assert.Equal(t, ledger.StatusCleared, *u.Update.Status)
		assert.Nil(t, u.Update.Payee)
		assert.Nil(t, u.Update.Notes)
	}

	require.NotNil(t, updates[0].Update.Tags)
	assert.Equal(t, []string{}, *updates[0].Update.Tags)
	require.NotNil(t, updates[1].Update.Tags)
	assert.Equal(t, []string{"other"}, *updates[1].Update.Tags)
}

func TestBuildSplitUpdates_EvenAmount(t *testing.T) {
	txn := testTxn(1026, 1500, testSplitTag)

	updates := BuildSplitUpdates([]ledger.Transaction{txn}, testProxyCategory, testSplitTag)
	require.Len(t, updates, 1)
	u := updates[0]

	// Parent keeps its category; only the tag strip and clear happen.
	assert.Nil(t, u.Update.CategoryID)
	require.NotNil(t, u.Update.Status)
	assert.Equal(t, ledger.StatusCleared, *u.Update.Status)
	require.NotNil(t, u.Update.Tags)
	assert.Equal(t, []string{}, *u.Update.Tags)

	require.Len(t, u.Splits, 2)
	assert.True(t, u.Splits[0].Amount.Equal(money.FromCents(750)))
	assert.True(t, u.Splits[1].Amount.Equal(money.FromCents(750)))

	// Creditor line keeps the original categorization, debtor line moves
	// to the proxy category.
	assert.Nil(t, u.Splits[0].CategoryID)
	require.NotNil(t, u.Splits[1].CategoryID)
	assert.Equal(t, testProxyCategory, *u.Splits[1].CategoryID)

	assert.Nil(t, u.Splits[0].Payee)
	assert.Nil(t, u.Splits[1].Payee)
	assert.Nil(t, u.Splits[0].Notes)
	assert.Nil(t, u.Splits[1].Notes)
}

func TestBuildSplitUpdates_OddAmountSumsExactly(t *testing.T) {
	txn := testTxn(1027, 1501, testSplitTag) // $15.01

	updates := BuildSplitUpdates([]ledger.Transaction{txn}, testProxyCategory, testSplitTag)
	require.Len(t, updates, 1)
	splits := updates[0].Splits
	require.Len(t, splits, 2)

	sum := splits[0].Amount.Add(splits[1].Amount)
	assert.True(t, sum.Equal(money.FromCents(1501)), "splits summed to %s", sum)

	cents := []int64{splits[0].Amount.Cents(), splits[1].Amount.Cents()}
	assert.ElementsMatch(t, []int64{750, 751}, cents)
}

func TestBuildSplitUpdates_PreservesOtherTags(t *testing.T) {
	txn := testTxn(1028, 1200, testSplitTag, "external-tag")

	updates := BuildSplitUpdates([]ledger.Transaction{txn}, testProxyCategory, testSplitTag)
	require.Len(t, updates, 1)
	require.NotNil(t, updates[0].Update.Tags)
	assert.Equal(t, []string{"external-tag"}, *updates[0].Update.Tags)
}

func TestTagNamesRemoving(t *testing.T) {
	tags := []ledger.Tag{
		{Name: "a", ID: 0},
		{Name: "drop", ID: 1},
		{Name: "b", ID: 2},
		{Name: "a", ID: 3},
		{Name: "drop", ID: 4},
	}

	assert.Equal(t, []string{"a", "b", "a"}, tagNamesRemoving(tags, "drop"))
	assert.Equal(t, []string{}, tagNamesRemoving([]ledger.Tag{{Name: "drop"}}, "drop"))
}
