package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Expense  TxType = "expense"
	Income   TxType = "income"
	Transfer TxType = "transfer"
)

const (
	ExpenseCategory CategoryType = "expense"
	IncomeCategory  CategoryType = "income"
)

const (
	CashWallet       WalletType = "cash"
	BankWallet       WalletType = "bank"
	CreditCardWallet WalletType = "credit_card"
	EWalletWallet    WalletType = "e_wallet"
	SavingsWallet    WalletType = "savings"
)

// DefaultCurrency is used when a transaction or wallet carries no explicit code.
const DefaultCurrency = "THB"

// MaxCategoryNameLen is the longest accepted category name, in runes.
const MaxCategoryNameLen = 30

type (
	TxType       string
	CategoryType string
	WalletType   string

	// Transaction is a single income, expense, or wallet-to-wallet transfer.
	// Identity (ID) is immutable after creation; every other field may be
	// rewritten through the ledger. Date is the user-assigned moment of the
	// transaction; CreatedAt/UpdatedAt are record bookkeeping.
	Transaction struct {
		ID         string
		WalletID   string
		CategoryID string
		ToWalletID string // transfer destination, empty otherwise
		Type       TxType
		Amount     Money
		Currency   string
		Date       time.Time
		Note       string
		CreatedAt  time.Time
		UpdatedAt  time.Time
	}

	Category struct {
		ID        string
		Name      string
		Type      CategoryType
		Icon      string
		Color     string
		SortOrder int
		IsSystem  bool
	}

	Wallet struct {
		ID             string
		Name           string
		Type           WalletType
		Icon           string
		Color          string
		Currency       string
		InitialBalance Money
		IsAsset        bool // false for liability wallets such as credit cards
		CreatedAt      time.Time
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid type")
	ErrEmptyName       = errors.New("empty name")
	ErrNameTooLong     = errors.New("name too long")
	ErrZeroDate        = errors.New("date cannot be zero")
	ErrMissingWallet   = errors.New("missing wallet id")
	ErrMissingCategory = errors.New("missing category id")
	ErrSameWallet      = errors.New("transfer source and destination are the same wallet")
)

func (t TxType) Valid() bool {
	switch t {
	case Expense, Income, Transfer:
		return true
	}
	return false
}

func (t CategoryType) Valid() bool {
	return t == ExpenseCategory || t == IncomeCategory
}

func (t WalletType) Valid() bool {
	switch t {
	case CashWallet, BankWallet, CreditCardWallet, EWalletWallet, SavingsWallet:
		return true
	}
	return false
}

// Matches reports whether a category of this type may classify a
// transaction of the given type. Transfers carry no category type.
func (t CategoryType) Matches(tx TxType) bool {
	switch tx {
	case Expense:
		return t == ExpenseCategory
	case Income:
		return t == IncomeCategory
	}
	return false
}

func (tx Transaction) Validate() error {
	if !tx.Type.Valid() {
		return ErrInvalidType
	}
	if err := tx.Amount.Validate(); err != nil {
		return err
	}
	if tx.Date.IsZero() {
		return ErrZeroDate
	}
	if strings.TrimSpace(tx.WalletID) == "" {
		return ErrMissingWallet
	}
	switch tx.Type {
	case Transfer:
		if strings.TrimSpace(tx.ToWalletID) == "" {
			return errors.New("transfer requires a destination wallet")
		}
		if tx.ToWalletID == tx.WalletID {
			return ErrSameWallet
		}
	default:
		if strings.TrimSpace(tx.CategoryID) == "" {
			return ErrMissingCategory
		}
	}
	return nil
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxCategoryNameLen {
		return ErrNameTooLong
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

func (w Wallet) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return ErrEmptyName
	}
	if !w.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

// DayOf truncates a timestamp to its calendar day, keeping the wall-clock
// components the user entered rather than converting to another zone.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two timestamps fall on the same calendar day
// by wall-clock components.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
