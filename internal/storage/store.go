// Package storage provides durable CRUD over the four logical tables of
// the data core: transactions, categories, wallets, and analysis records.
// Every row is addressable by a string id. Writes survive restart in the
// SQLite implementation; no cross-table atomicity is provided or needed,
// the tables are mutated independently.
package storage

import (
	"context"

	"satang/internal/core"
)

// Store is the persistence contract. Get methods return (nil, nil) when
// the id is absent; callers decide whether that is an error. List methods
// skip rows that fail to deserialize instead of aborting the whole read.
type Store interface {
	PutTransaction(ctx context.Context, tx core.Transaction) error
	GetTransaction(ctx context.Context, id string) (*core.Transaction, error)
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	PutCategory(ctx context.Context, c core.Category) error
	GetCategory(ctx context.Context, id string) (*core.Category, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	PutWallet(ctx context.Context, w core.Wallet) error
	GetWallet(ctx context.Context, id string) (*core.Wallet, error)
	ListWallets(ctx context.Context) ([]core.Wallet, error)
	DeleteWallet(ctx context.Context, id string) error

	PutAnalysis(ctx context.Context, r core.AnalysisRecord) error
	GetAnalysis(ctx context.Context, id string) (*core.AnalysisRecord, error)
	ListAnalysis(ctx context.Context) ([]core.AnalysisRecord, error)
	DeleteAnalysis(ctx context.Context, id string) error

	Close() error
}
