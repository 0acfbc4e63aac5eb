package core

import (
	"sort"
	"time"
)

// DailySummaries folds the transaction set into per-day summaries, days
// descending by date, transactions inside a day newest-CreatedAt-first.
// Grouping is by the wall-clock calendar day of Date, not CreatedAt.
// Transfers move money between wallets and do not count as income or
// expense.
func DailySummaries(txs []Transaction, f Filter) []DailySummary {
	type dayKey struct {
		y int
		m time.Month
		d int
	}
	byDay := make(map[dayKey]*DailySummary)
	for _, tx := range txs {
		if !f.match(tx) {
			continue
		}
		y, m, d := tx.Date.Date()
		k := dayKey{y, m, d}
		day, ok := byDay[k]
		if !ok {
			day = &DailySummary{Date: DayOf(tx.Date)}
			byDay[k] = day
		}
		switch tx.Type {
		case Income:
			day.Income = day.Income.Add(tx.Amount)
		case Expense:
			day.Expense = day.Expense.Add(tx.Amount)
		}
		day.Transactions = append(day.Transactions, tx)
	}

	out := make([]DailySummary, 0, len(byDay))
	for _, day := range byDay {
		sort.SliceStable(day.Transactions, func(i, j int) bool {
			return day.Transactions[i].CreatedAt.After(day.Transactions[j].CreatedAt)
		})
		out = append(out, *day)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// SummarizeMonth totals income and expense for the transactions whose Date
// falls in the given month/year, optionally restricted to one wallet.
func SummarizeMonth(txs []Transaction, year int, month time.Month, walletID string) MonthlySummary {
	sum := MonthlySummary{Year: year, Month: month}
	f := Filter{Year: year, Month: month, WalletID: walletID}
	for _, tx := range txs {
		if !f.match(tx) {
			continue
		}
		switch tx.Type {
		case Income:
			sum.Income = sum.Income.Add(tx.Amount)
		case Expense:
			sum.Expense = sum.Expense.Add(tx.Amount)
		}
	}
	sum.Balance = sum.Income.Sub(sum.Expense)
	return sum
}

// WalletBalances computes every wallet's running balance over the full
// transaction history: initial balance, plus income, minus expense, with
// transfers subtracted from the source and added to the destination.
// Wallets without transactions appear with their initial balance.
func WalletBalances(txs []Transaction, wallets []Wallet) map[string]WalletBalance {
	out := make(map[string]WalletBalance, len(wallets))
	for _, w := range wallets {
		out[w.ID] = WalletBalance{WalletID: w.ID, Balance: w.InitialBalance}
	}
	add := func(id string, cents int64) {
		b, ok := out[id]
		if !ok {
			// transaction against an unknown wallet still folds, so the
			// total is reproducible from the ledger alone
			b = WalletBalance{WalletID: id}
		}
		b.Balance.Cents += cents
		out[id] = b
	}
	for _, tx := range txs {
		switch tx.Type {
		case Income:
			add(tx.WalletID, tx.Amount.Cents)
		case Expense:
			add(tx.WalletID, -tx.Amount.Cents)
		case Transfer:
			add(tx.WalletID, -tx.Amount.Cents)
			add(tx.ToWalletID, tx.Amount.Cents)
		}
	}
	return out
}

// GroupByCategory collapses a day's transactions into category groups:
// group key is (CategoryID, Type), members newest-CreatedAt-first, groups
// ordered by their newest member. Multi-item groups render as one row in
// the UI; this stays a presentation concern on top of the daily summary.
func GroupByCategory(day DailySummary) []CategoryGroup {
	type groupKey struct {
		cat string
		typ TxType
	}
	byKey := make(map[groupKey]*CategoryGroup)
	order := make([]groupKey, 0)
	// day.Transactions is already newest-first, so the first member seen
	// is each group's newest and append order inside a group is newest-first
	for _, tx := range day.Transactions {
		k := groupKey{tx.CategoryID, tx.Type}
		g, ok := byKey[k]
		if !ok {
			g = &CategoryGroup{CategoryID: tx.CategoryID, Type: tx.Type}
			byKey[k] = g
			order = append(order, k)
		}
		g.Total = g.Total.Add(tx.Amount)
		g.Transactions = append(g.Transactions, tx)
	}
	out := make([]CategoryGroup, 0, len(byKey))
	for _, k := range order {
		out = append(out, *byKey[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Transactions[0].CreatedAt.After(out[j].Transactions[0].CreatedAt)
	})
	return out
}
