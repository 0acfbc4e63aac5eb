package core

import "time"

// DailySummary aggregates one calendar day. Derived data, never persisted;
// it can always be rebuilt from the transaction set.
type DailySummary struct {
	Date         time.Time // midnight, wall-clock components of the day
	Income       Money
	Expense      Money
	Transactions []Transaction // newest CreatedAt first
}

// MonthlySummary aggregates a selected month/year pair.
type MonthlySummary struct {
	Year    int
	Month   time.Month
	Income  Money
	Expense Money
	Balance Money // Income - Expense
}

// WalletBalance is a wallet's running balance: initial balance plus the
// signed sum of its transaction history.
type WalletBalance struct {
	WalletID string
	Balance  Money
}

// CategoryGroup is the presentation-level grouping of a day's transactions
// sharing (CategoryID, Type), ordered by the newest member.
type CategoryGroup struct {
	CategoryID   string
	Type         TxType
	Total        Money
	Transactions []Transaction // newest CreatedAt first
}

// Filter restricts which transactions a summary folds over. Zero values
// mean "no restriction".
type Filter struct {
	Year     int        // with Month: restrict to that month
	Month    time.Month //
	Day      time.Time  // non-zero: restrict to that calendar day
	WalletID string     // non-empty: restrict to that wallet
}

func (f Filter) match(tx Transaction) bool {
	if f.WalletID != "" {
		if tx.WalletID != f.WalletID && !(tx.Type == Transfer && tx.ToWalletID == f.WalletID) {
			return false
		}
	}
	if f.Year != 0 {
		y, m, _ := tx.Date.Date()
		if y != f.Year || (f.Month != 0 && m != f.Month) {
			return false
		}
	}
	if !f.Day.IsZero() && !SameDay(tx.Date, f.Day) {
		return false
	}
	return true
}
