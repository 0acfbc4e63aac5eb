package analysis

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"satang/internal/core"
	"satang/internal/log"
	"satang/internal/storage"
)

func newAnalyzer(t *testing.T) (*Analyzer, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	return New(store, logger), store
}

func expenseTx(cents int64, note string) core.Transaction {
	now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	return core.Transaction{
		ID:         "tx",
		WalletID:   "w1",
		CategoryID: "food",
		Type:       core.Expense,
		Amount:     core.Money{Cents: cents},
		Date:       now,
		Note:       note,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Three identical transactions yield one basic record with count 3; a
// fourth differing only in amount starts an independent fingerprint.
func TestFrequencyCounting(t *testing.T) {
	a, store := newAnalyzer(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, a.Record(ctx, expenseTx(5000, "")))
	}
	require.NoError(t, a.Record(ctx, expenseTx(7500, "")))

	recs, err := store.ListAnalysis(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	byAmount := map[int64]int64{}
	for _, r := range recs {
		assert.Equal(t, core.BasicMatch, r.MatchType)
		byAmount[r.Amount.Cents] = r.Count
	}
	assert.Equal(t, int64(3), byAmount[5000])
	assert.Equal(t, int64(1), byAmount[7500])
}

func TestTopFrequentThresholdAndOrder(t *testing.T) {
	a, _ := newAnalyzer(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, a.Record(ctx, expenseTx(5000, "")))
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, a.Record(ctx, expenseTx(1200, "")))
	}
	require.NoError(t, a.Record(ctx, expenseTx(9999, ""))) // one-off, never surfaces

	top, err := a.TopFrequent(ctx, core.Expense, "w1", core.BasicMatch, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, int64(1200), top[0].Amount.Cents)
	assert.Equal(t, int64(5), top[0].Count)
	assert.Equal(t, int64(5000), top[1].Amount.Cents)

	// limit truncates
	top, err = a.TopFrequent(ctx, core.Expense, "w1", core.BasicMatch, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, int64(1200), top[0].Amount.Cents)

	// other wallet sees nothing
	top, err = a.TopFrequent(ctx, core.Expense, "other", core.BasicMatch, 10)
	require.NoError(t, err)
	assert.Empty(t, top)

	// nil wallet filter returns everything frequent
	top, err = a.TopFrequent(ctx, core.Expense, "", core.BasicMatch, 10)
	require.NoError(t, err)
	assert.Len(t, top, 2)

	_, err = a.TopFrequent(ctx, core.Expense, "", "fuzzy", 10)
	assert.True(t, core.IsValidation(err))
}

func TestFullTierOnlyWithNote(t *testing.T) {
	a, store := newAnalyzer(t)
	ctx := context.Background()

	require.NoError(t, a.Record(ctx, expenseTx(5000, "")))
	recs, err := store.ListAnalysis(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 1, "no note means basic tier only")

	require.NoError(t, a.Record(ctx, expenseTx(5000, "lunch")))
	require.NoError(t, a.Record(ctx, expenseTx(5000, "lunch")))

	recs, err = store.ListAnalysis(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	var basic, full *core.AnalysisRecord
	for i := range recs {
		switch recs[i].MatchType {
		case core.BasicMatch:
			basic = &recs[i]
		case core.FullMatch:
			full = &recs[i]
		}
	}
	require.NotNil(t, basic)
	require.NotNil(t, full)
	assert.Equal(t, int64(3), basic.Count, "basic tier ignores the note")
	assert.Equal(t, int64(2), full.Count)
	assert.Equal(t, "lunch", full.Note)

	// notes distinguish full fingerprints
	top, err := a.TopFrequent(ctx, core.Expense, "w1", core.FullMatch, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "lunch", top[0].Note)
}

func TestLastUsedAdvances(t *testing.T) {
	a, store := newAnalyzer(t)
	ctx := context.Background()

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time {
		clock = clock.Add(time.Hour)
		return clock
	}

	require.NoError(t, a.Record(ctx, expenseTx(5000, "")))
	recs, err := store.ListAnalysis(ctx)
	require.NoError(t, err)
	first := recs[0].LastUsed

	require.NoError(t, a.Record(ctx, expenseTx(5000, "")))
	recs, err = store.ListAnalysis(ctx)
	require.NoError(t, err)
	assert.True(t, recs[0].LastUsed.After(first))
}
