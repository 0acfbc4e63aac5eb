package storage

import (
	"context"
	"sync"

	"satang/internal/core"
)

// MemoryStore keeps the four tables in process memory. It satisfies the
// same contract as SQLiteStore minus durability, which makes it the
// backend for tests and throwaway sessions. One mutex per table; the
// tables never need cross-table atomicity.
type MemoryStore struct {
	txMu sync.RWMutex
	txs  map[string]core.Transaction

	catMu sync.RWMutex
	cats  map[string]core.Category

	walMu sync.RWMutex
	wals  map[string]core.Wallet

	anaMu sync.RWMutex
	anas  map[string]core.AnalysisRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		txs:  make(map[string]core.Transaction),
		cats: make(map[string]core.Category),
		wals: make(map[string]core.Wallet),
		anas: make(map[string]core.AnalysisRecord),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) PutTransaction(_ context.Context, tx core.Transaction) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.txs[tx.ID] = tx
	return nil
}

func (s *MemoryStore) GetTransaction(_ context.Context, id string) (*core.Transaction, error) {
	s.txMu.RLock()
	defer s.txMu.RUnlock()
	tx, ok := s.txs[id]
	if !ok {
		return nil, nil
	}
	return &tx, nil
}

func (s *MemoryStore) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.txMu.RLock()
	defer s.txMu.RUnlock()
	out := make([]core.Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		out = append(out, tx)
	}
	return out, nil
}

func (s *MemoryStore) DeleteTransaction(_ context.Context, id string) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	delete(s.txs, id)
	return nil
}

func (s *MemoryStore) PutCategory(_ context.Context, c core.Category) error {
	s.catMu.Lock()
	defer s.catMu.Unlock()
	s.cats[c.ID] = c
	return nil
}

func (s *MemoryStore) GetCategory(_ context.Context, id string) (*core.Category, error) {
	s.catMu.RLock()
	defer s.catMu.RUnlock()
	c, ok := s.cats[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *MemoryStore) ListCategories(_ context.Context) ([]core.Category, error) {
	s.catMu.RLock()
	defer s.catMu.RUnlock()
	out := make([]core.Category, 0, len(s.cats))
	for _, c := range s.cats {
		out = append(out, c)
	}
	return out, nil
}

func (s *MemoryStore) DeleteCategory(_ context.Context, id string) error {
	s.catMu.Lock()
	defer s.catMu.Unlock()
	delete(s.cats, id)
	return nil
}

func (s *MemoryStore) PutWallet(_ context.Context, w core.Wallet) error {
	s.walMu.Lock()
	defer s.walMu.Unlock()
	s.wals[w.ID] = w
	return nil
}

func (s *MemoryStore) GetWallet(_ context.Context, id string) (*core.Wallet, error) {
	s.walMu.RLock()
	defer s.walMu.RUnlock()
	w, ok := s.wals[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (s *MemoryStore) ListWallets(_ context.Context) ([]core.Wallet, error) {
	s.walMu.RLock()
	defer s.walMu.RUnlock()
	out := make([]core.Wallet, 0, len(s.wals))
	for _, w := range s.wals {
		out = append(out, w)
	}
	return out, nil
}

func (s *MemoryStore) DeleteWallet(_ context.Context, id string) error {
	s.walMu.Lock()
	defer s.walMu.Unlock()
	delete(s.wals, id)
	return nil
}

func (s *MemoryStore) PutAnalysis(_ context.Context, r core.AnalysisRecord) error {
	s.anaMu.Lock()
	defer s.anaMu.Unlock()
	s.anas[r.ID] = r
	return nil
}

func (s *MemoryStore) GetAnalysis(_ context.Context, id string) (*core.AnalysisRecord, error) {
	s.anaMu.RLock()
	defer s.anaMu.RUnlock()
	r, ok := s.anas[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *MemoryStore) ListAnalysis(_ context.Context) ([]core.AnalysisRecord, error) {
	s.anaMu.RLock()
	defer s.anaMu.RUnlock()
	out := make([]core.AnalysisRecord, 0, len(s.anas))
	for _, r := range s.anas {
		out = append(out, r)
	}
	return out, nil
}

func (s *MemoryStore) DeleteAnalysis(_ context.Context, id string) error {
	s.anaMu.Lock()
	defer s.anaMu.Unlock()
	delete(s.anas, id)
	return nil
}

var _ Store = (*MemoryStore)(nil)
var _ Store = (*SQLiteStore)(nil)
