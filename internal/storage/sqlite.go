package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"satang/internal/core"

	_ "modernc.org/sqlite"
)

// timeFormat round-trips a timestamp exactly, offset included, so the
// wall-clock components the user entered survive restart.
const timeFormat = time.RFC3339Nano

// SQLiteStore is the durable Store backed by a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func storageErr(op string, err error) error {
	return &core.StorageError{Op: op, Err: err}
}

func parseTime(table, id, field, v string) (time.Time, error) {
	t, err := time.Parse(timeFormat, v)
	if err != nil {
		return time.Time{}, &core.DeserializationError{
			Table: table,
			ID:    id,
			Err:   fmt.Errorf("parse %s %q: %w", field, v, err),
		}
	}
	return t, nil
}

// skipRow logs a row that failed to deserialize. The table read goes on;
// one bad record must not take the rest of the table down with it.
func skipRow(ctx context.Context, err error) {
	slog.WarnContext(ctx, "Skipping malformed record", "error", err)
}

func (s *SQLiteStore) PutTransaction(ctx context.Context, tx core.Transaction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, wallet_id, category_id, to_wallet_id, type, amount_cents, currency, date, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			wallet_id = excluded.wallet_id,
			category_id = excluded.category_id,
			to_wallet_id = excluded.to_wallet_id,
			type = excluded.type,
			amount_cents = excluded.amount_cents,
			currency = excluded.currency,
			date = excluded.date,
			note = excluded.note,
			updated_at = excluded.updated_at`,
		tx.ID, tx.WalletID, tx.CategoryID, tx.ToWalletID, string(tx.Type),
		tx.Amount.Cents, tx.Currency, tx.Date.Format(timeFormat), tx.Note,
		tx.CreatedAt.Format(timeFormat), tx.UpdatedAt.Format(timeFormat))
	if err != nil {
		return storageErr("put transaction", err)
	}
	return nil
}

func (s *SQLiteStore) GetTransaction(ctx context.Context, id string) (*core.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, wallet_id, category_id, to_wallet_id, type, amount_cents, currency, date, note, created_at, updated_at
		FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		var de *core.DeserializationError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, storageErr("get transaction", err)
	}
	return tx, nil
}

func (s *SQLiteStore) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, wallet_id, category_id, to_wallet_id, type, amount_cents, currency, date, note, created_at, updated_at
		FROM transactions`)
	if err != nil {
		return nil, storageErr("list transactions", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			var de *core.DeserializationError
			if errors.As(err, &de) {
				skipRow(ctx, err)
				continue
			}
			return nil, storageErr("scan transaction", err)
		}
		out = append(out, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list transactions", err)
	}
	return out, nil
}

func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return storageErr("delete transaction", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(r rowScanner) (*core.Transaction, error) {
	var (
		tx                        core.Transaction
		typ, date, created, updat string
	)
	if err := r.Scan(&tx.ID, &tx.WalletID, &tx.CategoryID, &tx.ToWalletID, &typ,
		&tx.Amount.Cents, &tx.Currency, &date, &tx.Note, &created, &updat); err != nil {
		return nil, err
	}
	tx.Type = core.TxType(typ)
	if !tx.Type.Valid() {
		return nil, &core.DeserializationError{Table: "transactions", ID: tx.ID, Err: fmt.Errorf("unknown type %q", typ)}
	}
	var err error
	if tx.Date, err = parseTime("transactions", tx.ID, "date", date); err != nil {
		return nil, err
	}
	if tx.CreatedAt, err = parseTime("transactions", tx.ID, "created_at", created); err != nil {
		return nil, err
	}
	if tx.UpdatedAt, err = parseTime("transactions", tx.ID, "updated_at", updat); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *SQLiteStore) PutCategory(ctx context.Context, c core.Category) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, type, icon, color, sort_order, is_system)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			icon = excluded.icon,
			color = excluded.color,
			sort_order = excluded.sort_order,
			is_system = excluded.is_system`,
		c.ID, c.Name, string(c.Type), c.Icon, c.Color, c.SortOrder, boolToInt(c.IsSystem))
	if err != nil {
		return storageErr("put category", err)
	}
	return nil
}

func (s *SQLiteStore) GetCategory(ctx context.Context, id string) (*core.Category, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, icon, color, sort_order, is_system
		FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		var de *core.DeserializationError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, storageErr("get category", err)
	}
	return c, nil
}

func (s *SQLiteStore) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, icon, color, sort_order, is_system
		FROM categories ORDER BY sort_order`)
	if err != nil {
		return nil, storageErr("list categories", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			var de *core.DeserializationError
			if errors.As(err, &de) {
				skipRow(ctx, err)
				continue
			}
			return nil, storageErr("scan category", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list categories", err)
	}
	return out, nil
}

func (s *SQLiteStore) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return storageErr("delete category", err)
	}
	return nil
}

func scanCategory(r rowScanner) (*core.Category, error) {
	var (
		c        core.Category
		typ      string
		isSystem int
	)
	if err := r.Scan(&c.ID, &c.Name, &typ, &c.Icon, &c.Color, &c.SortOrder, &isSystem); err != nil {
		return nil, err
	}
	c.Type = core.CategoryType(typ)
	if !c.Type.Valid() {
		return nil, &core.DeserializationError{Table: "categories", ID: c.ID, Err: fmt.Errorf("unknown type %q", typ)}
	}
	c.IsSystem = isSystem != 0
	return &c, nil
}

func (s *SQLiteStore) PutWallet(ctx context.Context, w core.Wallet) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wallets (id, name, type, icon, color, currency, initial_balance_cents, is_asset, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			icon = excluded.icon,
			color = excluded.color,
			currency = excluded.currency,
			initial_balance_cents = excluded.initial_balance_cents,
			is_asset = excluded.is_asset`,
		w.ID, w.Name, string(w.Type), w.Icon, w.Color, w.Currency,
		w.InitialBalance.Cents, boolToInt(w.IsAsset), w.CreatedAt.Format(timeFormat))
	if err != nil {
		return storageErr("put wallet", err)
	}
	return nil
}

func (s *SQLiteStore) GetWallet(ctx context.Context, id string) (*core.Wallet, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, icon, color, currency, initial_balance_cents, is_asset, created_at
		FROM wallets WHERE id = ?`, id)
	w, err := scanWallet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		var de *core.DeserializationError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, storageErr("get wallet", err)
	}
	return w, nil
}

func (s *SQLiteStore) ListWallets(ctx context.Context) ([]core.Wallet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, icon, color, currency, initial_balance_cents, is_asset, created_at
		FROM wallets ORDER BY created_at`)
	if err != nil {
		return nil, storageErr("list wallets", err)
	}
	defer rows.Close()

	var out []core.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			var de *core.DeserializationError
			if errors.As(err, &de) {
				skipRow(ctx, err)
				continue
			}
			return nil, storageErr("scan wallet", err)
		}
		out = append(out, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list wallets", err)
	}
	return out, nil
}

func (s *SQLiteStore) DeleteWallet(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM wallets WHERE id = ?`, id); err != nil {
		return storageErr("delete wallet", err)
	}
	return nil
}

func scanWallet(r rowScanner) (*core.Wallet, error) {
	var (
		w       core.Wallet
		typ     string
		isAsset int
		created string
	)
	if err := r.Scan(&w.ID, &w.Name, &typ, &w.Icon, &w.Color, &w.Currency,
		&w.InitialBalance.Cents, &isAsset, &created); err != nil {
		return nil, err
	}
	w.Type = core.WalletType(typ)
	if !w.Type.Valid() {
		return nil, &core.DeserializationError{Table: "wallets", ID: w.ID, Err: fmt.Errorf("unknown type %q", typ)}
	}
	w.IsAsset = isAsset != 0
	var err error
	if w.CreatedAt, err = parseTime("wallets", w.ID, "created_at", created); err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *SQLiteStore) PutAnalysis(ctx context.Context, r core.AnalysisRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analysis (id, wallet_id, category_id, type, amount_cents, note, match_type, count, last_used)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			count = excluded.count,
			last_used = excluded.last_used`,
		r.ID, r.WalletID, r.CategoryID, string(r.Type), r.Amount.Cents,
		r.Note, string(r.MatchType), r.Count, r.LastUsed.Format(timeFormat))
	if err != nil {
		return storageErr("put analysis", err)
	}
	return nil
}

func (s *SQLiteStore) GetAnalysis(ctx context.Context, id string) (*core.AnalysisRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, wallet_id, category_id, type, amount_cents, note, match_type, count, last_used
		FROM analysis WHERE id = ?`, id)
	rec, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		var de *core.DeserializationError
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, storageErr("get analysis", err)
	}
	return rec, nil
}

func (s *SQLiteStore) ListAnalysis(ctx context.Context) ([]core.AnalysisRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, wallet_id, category_id, type, amount_cents, note, match_type, count, last_used
		FROM analysis`)
	if err != nil {
		return nil, storageErr("list analysis", err)
	}
	defer rows.Close()

	var out []core.AnalysisRecord
	for rows.Next() {
		rec, err := scanAnalysis(rows)
		if err != nil {
			var de *core.DeserializationError
			if errors.As(err, &de) {
				skipRow(ctx, err)
				continue
			}
			return nil, storageErr("scan analysis", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list analysis", err)
	}
	return out, nil
}

func (s *SQLiteStore) DeleteAnalysis(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM analysis WHERE id = ?`, id); err != nil {
		return storageErr("delete analysis", err)
	}
	return nil
}

func scanAnalysis(r rowScanner) (*core.AnalysisRecord, error) {
	var (
		rec        core.AnalysisRecord
		typ, match string
		lastUsed   string
	)
	if err := r.Scan(&rec.ID, &rec.WalletID, &rec.CategoryID, &typ,
		&rec.Amount.Cents, &rec.Note, &match, &rec.Count, &lastUsed); err != nil {
		return nil, err
	}
	rec.Type = core.TxType(typ)
	rec.MatchType = core.MatchType(match)
	if !rec.Type.Valid() || !rec.MatchType.Valid() {
		return nil, &core.DeserializationError{Table: "analysis", ID: rec.ID, Err: fmt.Errorf("unknown type %q/%q", typ, match)}
	}
	var err error
	if rec.LastUsed, err = parseTime("analysis", rec.ID, "last_used", lastUsed); err != nil {
		return nil, err
	}
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
