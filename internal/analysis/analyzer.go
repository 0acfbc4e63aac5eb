// Package analysis maintains frequency counters over transaction
// fingerprints, surfacing "quick re-add" suggestions for entries the user
// keeps typing in by hand.
package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"satang/internal/core"
	"satang/internal/log"
	"satang/internal/storage"
)

// Analyzer upserts one analysis record per fingerprint per match tier.
// Counts only ever grow: deleting a transaction does not walk back its
// fingerprint, matching the long-standing app behavior.
type Analyzer struct {
	mu    sync.Mutex
	store storage.Store
	log   *log.Logger
	now   func() time.Time
}

func New(store storage.Store, logger *log.Logger) *Analyzer {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Analyzer{
		store: store,
		log:   logger.WithComponent(log.ComponentAnalysis),
		now:   time.Now,
	}
}

// Record registers a newly created transaction under both fingerprint
// tiers. The full tier only applies when the note is non-empty.
func (a *Analyzer) Record(ctx context.Context, tx core.Transaction) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.bump(ctx, core.BasicMatch, tx); err != nil {
		return err
	}
	if strings.TrimSpace(tx.Note) != "" {
		if err := a.bump(ctx, core.FullMatch, tx); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) bump(ctx context.Context, match core.MatchType, tx core.Transaction) error {
	fp := core.Fingerprint(match, tx)
	rec, err := a.store.GetAnalysis(ctx, fp)
	if err != nil {
		return fmt.Errorf("get analysis: %w", err)
	}
	now := a.now().UTC()
	if rec == nil {
		rec = &core.AnalysisRecord{
			ID:         fp,
			WalletID:   tx.WalletID,
			CategoryID: tx.CategoryID,
			Type:       tx.Type,
			Amount:     tx.Amount,
			MatchType:  match,
			Count:      1,
		}
		if match == core.FullMatch {
			rec.Note = tx.Note
		}
	} else {
		rec.Count++
	}
	rec.LastUsed = now

	if err := a.store.PutAnalysis(ctx, *rec); err != nil {
		return fmt.Errorf("put analysis: %w", err)
	}
	a.log.DebugContext(ctx, "Fingerprint recorded",
		log.FieldMatchType, string(match),
		log.FieldCount, rec.Count,
		log.FieldOperation, log.OpRecord)
	return nil
}

// TopFrequent returns the most repeated fingerprints for a transaction
// type, optionally restricted to one wallet, counts descending. One-off
// entries (count 1) are not frequent and never surface.
func (a *Analyzer) TopFrequent(ctx context.Context, txType core.TxType, walletID string, match core.MatchType, limit int) ([]core.AnalysisRecord, error) {
	if !match.Valid() {
		return nil, &core.ValidationError{Field: "matchType", Reason: fmt.Sprintf("unknown match type %q", match)}
	}

	recs, err := a.store.ListAnalysis(ctx)
	if err != nil {
		return nil, fmt.Errorf("list analysis: %w", err)
	}

	out := make([]core.AnalysisRecord, 0, len(recs))
	for _, r := range recs {
		if r.MatchType != match || r.Type != txType || r.Count <= 1 {
			continue
		}
		if walletID != "" && r.WalletID != walletID {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].LastUsed.After(out[j].LastUsed)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
