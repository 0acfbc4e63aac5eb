package core

import (
	"strconv"
	"strings"
	"time"
)

const (
	// BasicMatch fingerprints on (wallet, category, type, amount).
	BasicMatch MatchType = "basic"
	// FullMatch additionally includes the note.
	FullMatch MatchType = "full"
)

type MatchType string

func (m MatchType) Valid() bool {
	return m == BasicMatch || m == FullMatch
}

// AnalysisRecord counts how often a transaction fingerprint has occurred.
// At most one record exists per distinct fingerprint per match tier; the
// fingerprint itself is the record id.
type AnalysisRecord struct {
	ID         string // fingerprint
	WalletID   string
	CategoryID string
	Type       TxType
	Amount     Money
	Note       string
	MatchType  MatchType
	Count      int64
	LastUsed   time.Time
}

// Fingerprint builds the stable structural key for a transaction at the
// given match tier: an ordered tuple join, so the same logical fingerprint
// maps to the same id across runs. Fields are joined with a separator no
// id or type contains; the note rides last and may contain anything.
func Fingerprint(m MatchType, tx Transaction) string {
	parts := []string{
		string(m),
		tx.WalletID,
		tx.CategoryID,
		string(tx.Type),
		strconv.FormatInt(tx.Amount.Cents, 10),
	}
	if m == FullMatch {
		parts = append(parts, tx.Note)
	}
	return strings.Join(parts, "|")
}
