package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"satang/internal/analysis"
	"satang/internal/cache"
	"satang/internal/core"
	"satang/internal/log"
	"satang/internal/storage"
)

// ErrNotInitialized is returned when a ledger method runs before Init.
var ErrNotInitialized = errors.New("ledger not initialized")

// LedgerService owns the transaction set. Mutations write through to the
// store before touching the working copy, so a caller that sees a
// mutation resolve also sees it durable, and an immediate summary read
// includes it. Derived aggregates fold the in-memory copy, with an LRU in
// front that is purged on every mutation.
type LedgerService struct {
	mu         sync.RWMutex
	store      storage.Store
	categories *CategoryService
	wallets    *WalletService
	analyzer   *analysis.Analyzer
	log        *log.Logger
	notifier   notifier
	now        func() time.Time

	defaultCurrency string
	initialized     bool
	txs             map[string]core.Transaction
	gen             uint64 // bumped on every mutation, part of cache keys

	daily    *cache.LRUCache[[]core.DailySummary]
	monthly  *cache.LRUCache[core.MonthlySummary]
	balances *cache.LRUCache[map[string]core.WalletBalance]
}

// LedgerOptions tunes the ledger; zero values get sensible defaults.
type LedgerOptions struct {
	DefaultCurrency string
	CacheSize       int
	CacheTTL        time.Duration
}

// AddTransactionInput carries the fields of a new transaction. ToWalletID
// is required for transfers and forbidden otherwise; CategoryID is
// required for income and expense.
type AddTransactionInput struct {
	Type       core.TxType
	Amount     core.Money
	CategoryID string
	WalletID   string
	ToWalletID string
	Currency   string
	Date       time.Time
	Note       string
}

// UpdateTransactionInput holds optional field overrides; nil means keep.
type UpdateTransactionInput struct {
	Type       *core.TxType
	Amount     *core.Money
	CategoryID *string
	WalletID   *string
	ToWalletID *string
	Currency   *string
	Date       *time.Time
	Note       *string
}

func NewLedgerService(store storage.Store, categories *CategoryService, wallets *WalletService, analyzer *analysis.Analyzer, logger *log.Logger, opts LedgerOptions) *LedgerService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = core.DefaultCurrency
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 64
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	return &LedgerService{
		store:           store,
		categories:      categories,
		wallets:         wallets,
		analyzer:        analyzer,
		log:             logger.WithComponent(log.ComponentLedger),
		now:             time.Now,
		defaultCurrency: opts.DefaultCurrency,
		txs:             make(map[string]core.Transaction),
		daily:           cache.NewLRUCache[[]core.DailySummary](opts.CacheSize, opts.CacheTTL),
		monthly:         cache.NewLRUCache[core.MonthlySummary](opts.CacheSize, opts.CacheTTL),
		balances:        cache.NewLRUCache[map[string]core.WalletBalance](opts.CacheSize, opts.CacheTTL),
	}
}

// Init loads the working copy from the store. Rows that fail to
// deserialize were already skipped at the storage layer; everything that
// parsed is live.
func (s *LedgerService) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	s.txs = make(map[string]core.Transaction, len(txs))
	for _, tx := range txs {
		s.txs[tx.ID] = tx
	}
	s.initialized = true
	s.log.InfoContext(ctx, "Ledger loaded",
		log.FieldCount, len(txs),
		log.FieldOperation, log.OpStartup)
	return nil
}

// Subscribe registers a callback invoked synchronously after each
// successful mutation.
func (s *LedgerService) Subscribe(fn func(ChangeEvent)) {
	s.notifier.subscribe(fn)
}

// Add validates and persists a new transaction, then updates frequency
// counters and notifies subscribers. Unresolved foreign keys and
// non-positive amounts fail with ValidationError before anything is
// written.
func (s *LedgerService) Add(ctx context.Context, in AddTransactionInput) (*core.Transaction, error) {
	if err := s.validateInput(ctx, in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return nil, ErrNotInitialized
	}

	now := s.now().UTC()
	currency := in.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}
	tx := core.Transaction{
		ID:         uuid.NewString(),
		WalletID:   in.WalletID,
		CategoryID: in.CategoryID,
		ToWalletID: in.ToWalletID,
		Type:       in.Type,
		Amount:     in.Amount,
		Currency:   currency,
		Date:       in.Date,
		Note:       in.Note,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.PutTransaction(ctx, tx); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("put transaction: %w", err)
	}
	s.txs[tx.ID] = tx
	s.purgeDerived()
	s.mu.Unlock()

	// The transaction is durable; a failed counter update must not undo it.
	if err := s.analyzer.Record(ctx, tx); err != nil {
		s.log.WarnContext(ctx, "Frequency record failed",
			log.FieldTransactionID, tx.ID,
			log.FieldError, err)
	}

	s.log.InfoContext(ctx, "Transaction added",
		log.FieldTransactionID, tx.ID,
		log.FieldTxType, string(tx.Type),
		log.FieldAmountCents, tx.Amount.Cents,
		log.FieldWalletID, tx.WalletID,
		log.FieldOperation, log.OpCreate)

	s.notifier.notify(ChangeEvent{Op: TxAdded, Transaction: tx})
	return &tx, nil
}

// Update merges the provided fields into an existing transaction and
// bumps UpdatedAt. Foreign keys are re-validated when they change.
func (s *LedgerService) Update(ctx context.Context, id string, in UpdateTransactionInput) (*core.Transaction, error) {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return nil, ErrNotInitialized
	}
	existing, ok := s.txs[id]
	s.mu.Unlock()
	if !ok {
		return nil, &core.NotFoundError{Table: "transactions", ID: id}
	}

	merged := existing
	if in.Type != nil {
		merged.Type = *in.Type
	}
	if in.Amount != nil {
		merged.Amount = *in.Amount
	}
	if in.CategoryID != nil {
		merged.CategoryID = *in.CategoryID
	}
	if in.WalletID != nil {
		merged.WalletID = *in.WalletID
	}
	if in.ToWalletID != nil {
		merged.ToWalletID = *in.ToWalletID
	}
	if in.Currency != nil {
		merged.Currency = *in.Currency
	}
	if in.Date != nil {
		merged.Date = *in.Date
	}
	if in.Note != nil {
		merged.Note = *in.Note
	}
	if merged.Type != core.Transfer {
		merged.ToWalletID = ""
	}

	refsChanged := in.Type != nil || in.CategoryID != nil || in.WalletID != nil || in.ToWalletID != nil || in.Amount != nil || in.Date != nil
	if refsChanged {
		if err := s.validateInput(ctx, AddTransactionInput{
			Type:       merged.Type,
			Amount:     merged.Amount,
			CategoryID: merged.CategoryID,
			WalletID:   merged.WalletID,
			ToWalletID: merged.ToWalletID,
			Date:       merged.Date,
		}); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	// re-check under the lock, a concurrent delete may have won
	if _, ok := s.txs[id]; !ok {
		s.mu.Unlock()
		return nil, &core.NotFoundError{Table: "transactions", ID: id}
	}
	merged.UpdatedAt = s.now().UTC()
	if err := s.store.PutTransaction(ctx, merged); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("put transaction: %w", err)
	}
	s.txs[id] = merged
	s.purgeDerived()
	s.mu.Unlock()

	s.log.InfoContext(ctx, "Transaction updated",
		log.FieldTransactionID, id,
		log.FieldOperation, log.OpUpdate)

	s.notifier.notify(ChangeEvent{Op: TxUpdated, Transaction: merged})
	return &merged, nil
}

// Delete removes a transaction from the store and every derived view.
// Frequency counters are deliberately left alone.
func (s *LedgerService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return ErrNotInitialized
	}
	tx, ok := s.txs[id]
	if !ok {
		s.mu.Unlock()
		return &core.NotFoundError{Table: "transactions", ID: id}
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("delete transaction: %w", err)
	}
	delete(s.txs, id)
	s.purgeDerived()
	s.mu.Unlock()

	s.log.InfoContext(ctx, "Transaction deleted",
		log.FieldTransactionID, id,
		log.FieldOperation, log.OpDelete)

	s.notifier.notify(ChangeEvent{Op: TxDeleted, Transaction: tx})
	return nil
}

// GetByID returns the transaction, or (nil, nil) when absent.
func (s *LedgerService) GetByID(_ context.Context, id string) (*core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.txs[id]
	if !ok {
		return nil, nil
	}
	return &tx, nil
}

// Transactions returns a snapshot of the full set, date descending then
// newest-created-first, for read-only consumers such as export.
func (s *LedgerService) Transactions() []core.Transaction {
	out, _ := s.snapshot()
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// DailySummaries folds the ledger into per-day summaries under the given
// filter. Results are memoized until the next mutation.
func (s *LedgerService) DailySummaries(f core.Filter) []core.DailySummary {
	txs, gen := s.snapshot()
	key := fmt.Sprintf("daily|%d|%s", gen, dailyKey(f))
	if v, ok := s.daily.Get(key); ok {
		return v
	}
	v := core.DailySummaries(txs, f)
	s.daily.Set(key, v)
	return v
}

// MonthlySummary totals one month, optionally restricted to a wallet.
func (s *LedgerService) MonthlySummary(year int, month time.Month, walletID string) core.MonthlySummary {
	txs, gen := s.snapshot()
	key := fmt.Sprintf("month|%d|%d-%02d|%s", gen, year, int(month), walletID)
	if v, ok := s.monthly.Get(key); ok {
		return v
	}
	v := core.SummarizeMonth(txs, year, month, walletID)
	s.monthly.Set(key, v)
	return v
}

// WalletBalances computes every wallet's running balance over the full
// history. Stored balances are never trusted; the fold is the truth.
func (s *LedgerService) WalletBalances(ctx context.Context) (map[string]core.WalletBalance, error) {
	txs, gen := s.snapshot()
	key := fmt.Sprintf("balances|%d", gen)
	if v, ok := s.balances.Get(key); ok {
		return v, nil
	}
	wallets, err := s.wallets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	v := core.WalletBalances(txs, wallets)
	s.balances.Set(key, v)
	return v, nil
}

// snapshot copies the working set together with the generation it
// belongs to. A reader racing a mutation caches under the old generation,
// which no later read will ask for.
func (s *LedgerService) snapshot() ([]core.Transaction, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		out = append(out, tx)
	}
	return out, s.gen
}

// purgeDerived is called with the write lock held.
func (s *LedgerService) purgeDerived() {
	s.gen++
	s.daily.Purge()
	s.monthly.Purge()
	s.balances.Purge()
}

func (s *LedgerService) validateInput(ctx context.Context, in AddTransactionInput) error {
	if !in.Type.Valid() {
		return &core.ValidationError{Field: "type", Reason: fmt.Sprintf("unknown transaction type %q", in.Type)}
	}
	if in.Amount.Cents <= 0 {
		return &core.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if in.Date.IsZero() {
		return &core.ValidationError{Field: "date", Reason: "must not be zero"}
	}

	wallet, err := s.wallets.GetByID(ctx, in.WalletID)
	if err != nil {
		return fmt.Errorf("get wallet: %w", err)
	}
	if wallet == nil {
		return &core.ValidationError{Field: "walletId", Reason: fmt.Sprintf("wallet %q does not exist", in.WalletID)}
	}

	switch in.Type {
	case core.Transfer:
		if in.ToWalletID == "" {
			return &core.ValidationError{Field: "toWalletId", Reason: "required for transfers"}
		}
		if in.ToWalletID == in.WalletID {
			return &core.ValidationError{Field: "toWalletId", Reason: "must differ from the source wallet"}
		}
		dest, err := s.wallets.GetByID(ctx, in.ToWalletID)
		if err != nil {
			return fmt.Errorf("get wallet: %w", err)
		}
		if dest == nil {
			return &core.ValidationError{Field: "toWalletId", Reason: fmt.Sprintf("wallet %q does not exist", in.ToWalletID)}
		}
	default:
		if in.ToWalletID != "" {
			return &core.ValidationError{Field: "toWalletId", Reason: "only valid for transfers"}
		}
		cat, err := s.categories.GetByID(ctx, in.CategoryID)
		if err != nil {
			return fmt.Errorf("get category: %w", err)
		}
		if cat == nil {
			return &core.ValidationError{Field: "categoryId", Reason: fmt.Sprintf("category %q does not exist", in.CategoryID)}
		}
		if !cat.Type.Matches(in.Type) {
			return &core.ValidationError{Field: "categoryId", Reason: fmt.Sprintf("category %q is a %s category, transaction is %s", in.CategoryID, cat.Type, in.Type)}
		}
	}
	return nil
}

func dailyKey(f core.Filter) string {
	day := ""
	if !f.Day.IsZero() {
		day = f.Day.Format("2006-01-02")
	}
	return fmt.Sprintf("daily|%d-%02d|%s|%s", f.Year, int(f.Month), day, f.WalletID)
}
