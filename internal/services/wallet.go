package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"satang/internal/core"
	"satang/internal/log"
	"satang/internal/storage"
)

// WalletService owns the set of wallets.
type WalletService struct {
	mu              sync.Mutex
	store           storage.Store
	log             *log.Logger
	defaultCurrency string
	now             func() time.Time
}

// WalletInput carries the user-settable wallet fields.
type WalletInput struct {
	Name           string
	Type           core.WalletType
	Icon           string
	Color          string
	Currency       string
	InitialBalance core.Money
	IsAsset        bool
}

// WalletUpdate holds optional field overrides; nil means keep.
type WalletUpdate struct {
	Name           *string
	Type           *core.WalletType
	Icon           *string
	Color          *string
	Currency       *string
	InitialBalance *core.Money
	IsAsset        *bool
}

func NewWalletService(store storage.Store, logger *log.Logger, defaultCurrency string) *WalletService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if defaultCurrency == "" {
		defaultCurrency = core.DefaultCurrency
	}
	return &WalletService{
		store:           store,
		log:             logger.WithComponent(log.ComponentWallet),
		defaultCurrency: defaultCurrency,
		now:             time.Now,
	}
}

func (s *WalletService) Add(ctx context.Context, in WalletInput) (*core.Wallet, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &core.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !in.Type.Valid() {
		return nil, &core.ValidationError{Field: "type", Reason: fmt.Sprintf("unknown wallet type %q", in.Type)}
	}
	currency := in.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w := core.Wallet{
		ID:             uuid.NewString(),
		Name:           name,
		Type:           in.Type,
		Icon:           in.Icon,
		Color:          in.Color,
		Currency:       currency,
		InitialBalance: in.InitialBalance,
		IsAsset:        in.IsAsset,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.store.PutWallet(ctx, w); err != nil {
		return nil, fmt.Errorf("put wallet: %w", err)
	}

	s.log.InfoContext(ctx, "Wallet added",
		log.FieldWalletID, w.ID,
		log.FieldCurrency, w.Currency,
		log.FieldOperation, log.OpCreate)
	return &w, nil
}

func (s *WalletService) Update(ctx context.Context, id string, in WalletUpdate) (*core.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.store.GetWallet(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	if w == nil {
		return nil, &core.NotFoundError{Table: "wallets", ID: id}
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, &core.ValidationError{Field: "name", Reason: "must not be empty"}
		}
		w.Name = name
	}
	if in.Type != nil {
		if !in.Type.Valid() {
			return nil, &core.ValidationError{Field: "type", Reason: fmt.Sprintf("unknown wallet type %q", *in.Type)}
		}
		w.Type = *in.Type
	}
	if in.Icon != nil {
		w.Icon = *in.Icon
	}
	if in.Color != nil {
		w.Color = *in.Color
	}
	if in.Currency != nil {
		w.Currency = *in.Currency
	}
	if in.InitialBalance != nil {
		w.InitialBalance = *in.InitialBalance
	}
	if in.IsAsset != nil {
		w.IsAsset = *in.IsAsset
	}

	if err := s.store.PutWallet(ctx, *w); err != nil {
		return nil, fmt.Errorf("put wallet: %w", err)
	}
	s.log.InfoContext(ctx, "Wallet updated",
		log.FieldWalletID, id,
		log.FieldOperation, log.OpUpdate)
	return w, nil
}

// Delete removes a wallet. A wallet referenced by any transaction, on
// either side of a transfer, is kept and the delete rejected.
func (s *WalletService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.store.GetWallet(ctx, id)
	if err != nil {
		return fmt.Errorf("get wallet: %w", err)
	}
	if w == nil {
		return &core.NotFoundError{Table: "wallets", ID: id}
	}

	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	for _, tx := range txs {
		if tx.WalletID == id || tx.ToWalletID == id {
			return &core.PreconditionError{Reason: fmt.Sprintf("wallet %q is referenced by transaction %q", id, tx.ID)}
		}
	}

	if err := s.store.DeleteWallet(ctx, id); err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}
	s.log.InfoContext(ctx, "Wallet deleted",
		log.FieldWalletID, id,
		log.FieldOperation, log.OpDelete)
	return nil
}

// GetByID returns the wallet, or (nil, nil) when absent.
func (s *WalletService) GetByID(ctx context.Context, id string) (*core.Wallet, error) {
	return s.store.GetWallet(ctx, id)
}

// List returns all wallets in creation order.
func (s *WalletService) List(ctx context.Context) ([]core.Wallet, error) {
	wals, err := s.store.ListWallets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	sort.SliceStable(wals, func(i, j int) bool {
		if !wals[i].CreatedAt.Equal(wals[j].CreatedAt) {
			return wals[i].CreatedAt.Before(wals[j].CreatedAt)
		}
		return wals[i].ID < wals[j].ID
	})
	return wals, nil
}
