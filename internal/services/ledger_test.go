package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"satang/internal/analysis"
	"satang/internal/core"
	"satang/internal/storage"
)

type testEnv struct {
	store  *storage.MemoryStore
	cats   *CategoryService
	wals   *WalletService
	ledger *LedgerService
	cash   *core.Wallet
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := quietLogger()
	store := storage.NewMemoryStore()

	cats := NewCategoryService(store, logger)
	require.NoError(t, cats.Init(ctx))
	wals := NewWalletService(store, logger, "THB")
	analyzer := analysis.New(store, logger)

	ledger := NewLedgerService(store, cats, wals, analyzer, logger, LedgerOptions{})
	require.NoError(t, ledger.Init(ctx))

	// monotonic clock so CreatedAt ordering is deterministic
	clock := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	ledger.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	cash, err := wals.Add(ctx, WalletInput{
		Name:           "Cash",
		Type:           core.CashWallet,
		InitialBalance: core.Money{Cents: 100000}, // 1000 THB
		IsAsset:        true,
	})
	require.NoError(t, err)

	return &testEnv{store: store, cats: cats, wals: wals, ledger: ledger, cash: cash}
}

func (e *testEnv) addExpense(t *testing.T, cents int64, category string, date time.Time, note string) *core.Transaction {
	t.Helper()
	tx, err := e.ledger.Add(context.Background(), AddTransactionInput{
		Type:       core.Expense,
		Amount:     core.Money{Cents: cents},
		CategoryID: category,
		WalletID:   e.cash.ID,
		Date:       date,
		Note:       note,
	})
	require.NoError(t, err)
	return tx
}

func TestAddValidation(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	date := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		in   AddTransactionInput
	}{
		{"non-positive amount", AddTransactionInput{Type: core.Expense, Amount: core.Money{Cents: 0}, CategoryID: "food", WalletID: e.cash.ID, Date: date}},
		{"unknown wallet", AddTransactionInput{Type: core.Expense, Amount: core.Money{Cents: 100}, CategoryID: "food", WalletID: "ghost", Date: date}},
		{"unknown category", AddTransactionInput{Type: core.Expense, Amount: core.Money{Cents: 100}, CategoryID: "ghost", WalletID: e.cash.ID, Date: date}},
		{"category type mismatch", AddTransactionInput{Type: core.Income, Amount: core.Money{Cents: 100}, CategoryID: "food", WalletID: e.cash.ID, Date: date}},
		{"zero date", AddTransactionInput{Type: core.Expense, Amount: core.Money{Cents: 100}, CategoryID: "food", WalletID: e.cash.ID}},
		{"transfer without destination", AddTransactionInput{Type: core.Transfer, Amount: core.Money{Cents: 100}, WalletID: e.cash.ID, Date: date}},
		{"transfer to itself", AddTransactionInput{Type: core.Transfer, Amount: core.Money{Cents: 100}, WalletID: e.cash.ID, ToWalletID: e.cash.ID, Date: date}},
		{"destination on expense", AddTransactionInput{Type: core.Expense, Amount: core.Money{Cents: 100}, CategoryID: "food", WalletID: e.cash.ID, ToWalletID: "w2", Date: date}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.ledger.Add(ctx, tc.in)
			assert.True(t, core.IsValidation(err), "got %v", err)
		})
	}

	// nothing was written
	assert.Empty(t, e.ledger.Transactions())
}

func TestMutationVisibility(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	date := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

	tx := e.addExpense(t, 10000, "food", date, "lunch")

	got, err := e.ledger.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, tx.Amount, got.Amount)
	assert.Equal(t, "THB", got.Currency) // default applied
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)

	// durable, not just in memory
	stored, err := e.store.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	// immediately visible in the day's summary
	days := e.ledger.DailySummaries(core.Filter{Day: date})
	require.Len(t, days, 1)
	require.Len(t, days[0].Transactions, 1)
	assert.Equal(t, tx.ID, days[0].Transactions[0].ID)
}

func TestUpdate(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	date := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

	tx := e.addExpense(t, 10000, "food", date, "")

	amount := core.Money{Cents: 20000}
	note := "groceries"
	updated, err := e.ledger.Update(ctx, tx.ID, UpdateTransactionInput{Amount: &amount, Note: &note})
	require.NoError(t, err)
	assert.Equal(t, int64(20000), updated.Amount.Cents)
	assert.Equal(t, "groceries", updated.Note)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	// summaries see the new amount, not the old one
	sum := e.ledger.MonthlySummary(2024, time.January, "")
	assert.Equal(t, int64(20000), sum.Expense.Cents)

	// foreign keys are re-validated on change
	ghost := "ghost"
	_, err = e.ledger.Update(ctx, tx.ID, UpdateTransactionInput{CategoryID: &ghost})
	assert.True(t, core.IsValidation(err), "got %v", err)

	income := core.Income
	_, err = e.ledger.Update(ctx, tx.ID, UpdateTransactionInput{Type: &income})
	assert.True(t, core.IsValidation(err), "expense category on income tx: %v", err)

	_, err = e.ledger.Update(ctx, "ghost", UpdateTransactionInput{Note: &note})
	assert.True(t, core.IsNotFound(err))
}

func TestDeleteRemovesFromAllDerivedViews(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	date := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

	keep := e.addExpense(t, 5000, "food", date, "")
	gone := e.addExpense(t, 7000, "transport", date, "")

	require.NoError(t, e.ledger.Delete(ctx, gone.ID))

	got, err := e.ledger.GetByID(ctx, gone.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	days := e.ledger.DailySummaries(core.Filter{})
	require.Len(t, days, 1)
	assert.Equal(t, int64(5000), days[0].Expense.Cents)
	require.Len(t, days[0].Transactions, 1)
	assert.Equal(t, keep.ID, days[0].Transactions[0].ID)

	sum := e.ledger.MonthlySummary(2024, time.January, "")
	assert.Equal(t, int64(5000), sum.Expense.Cents)

	balances, err := e.ledger.WalletBalances(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100000-5000), balances[e.cash.ID].Balance.Cents)

	assert.True(t, core.IsNotFound(e.ledger.Delete(ctx, gone.ID)))
}

// Wallet W starts at 1000 THB. Spend 100 on food, earn 5000 salary, both
// on 2024-01-05. Balance 5900; daily income 5000, expense 100; January
// balance 4900.
func TestEndToEndScenario(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	date := time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC)

	e.addExpense(t, 10000, "food", date, "")
	_, err := e.ledger.Add(ctx, AddTransactionInput{
		Type:       core.Income,
		Amount:     core.Money{Cents: 500000},
		CategoryID: "salary",
		WalletID:   e.cash.ID,
		Date:       date,
	})
	require.NoError(t, err)

	balances, err := e.ledger.WalletBalances(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(590000), balances[e.cash.ID].Balance.Cents)

	days := e.ledger.DailySummaries(core.Filter{Day: date})
	require.Len(t, days, 1)
	assert.Equal(t, int64(500000), days[0].Income.Cents)
	assert.Equal(t, int64(10000), days[0].Expense.Cents)

	sum := e.ledger.MonthlySummary(2024, time.January, "")
	assert.Equal(t, int64(490000), sum.Balance.Cents)
}

func TestTransferMovesBalance(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	bank, err := e.wals.Add(ctx, WalletInput{Name: "Bank", Type: core.BankWallet, InitialBalance: core.Money{Cents: 500000}})
	require.NoError(t, err)

	date := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	_, err = e.ledger.Add(ctx, AddTransactionInput{
		Type:       core.Transfer,
		Amount:     core.Money{Cents: 30000},
		WalletID:   bank.ID,
		ToWalletID: e.cash.ID,
		Date:       date,
	})
	require.NoError(t, err)

	balances, err := e.ledger.WalletBalances(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(470000), balances[bank.ID].Balance.Cents)
	assert.Equal(t, int64(130000), balances[e.cash.ID].Balance.Cents)

	// the transfer never shows up as income or expense
	sum := e.ledger.MonthlySummary(2024, time.January, "")
	assert.Zero(t, sum.Income.Cents)
	assert.Zero(t, sum.Expense.Cents)
}

func TestSubscribersNotifiedSynchronously(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	date := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

	var events []ChangeEvent
	e.ledger.Subscribe(func(ev ChangeEvent) {
		events = append(events, ev)
		// a subscriber may immediately read derived state
		_ = e.ledger.DailySummaries(core.Filter{})
	})

	tx := e.addExpense(t, 1000, "food", date, "")
	note := "n"
	_, err := e.ledger.Update(ctx, tx.ID, UpdateTransactionInput{Note: &note})
	require.NoError(t, err)
	require.NoError(t, e.ledger.Delete(ctx, tx.ID))

	require.Len(t, events, 3)
	assert.Equal(t, TxAdded, events[0].Op)
	assert.Equal(t, TxUpdated, events[1].Op)
	assert.Equal(t, TxDeleted, events[2].Op)
	assert.Equal(t, tx.ID, events[0].Transaction.ID)
}

func TestInitRestoresWorkingCopy(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	date := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	tx := e.addExpense(t, 1000, "food", date, "")

	// a second ledger over the same store sees the durable state
	reloaded := NewLedgerService(e.store, e.cats, e.wals, analysis.New(e.store, quietLogger()), quietLogger(), LedgerOptions{})
	require.NoError(t, reloaded.Init(ctx))
	got, err := reloaded.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, tx.Amount, got.Amount)
}

func TestUninitializedLedgerRefusesMutations(t *testing.T) {
	e := newTestEnv(t)
	fresh := NewLedgerService(e.store, e.cats, e.wals, analysis.New(e.store, quietLogger()), quietLogger(), LedgerOptions{})

	_, err := fresh.Add(context.Background(), AddTransactionInput{
		Type: core.Expense, Amount: core.Money{Cents: 100}, CategoryID: "food",
		WalletID: e.cash.ID, Date: time.Now(),
	})
	assert.ErrorIs(t, err, ErrNotInitialized)
}
