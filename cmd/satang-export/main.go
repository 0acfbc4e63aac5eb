// satang-export dumps the transaction table as CSV for external
// reporting. Read-only: it never mutates the store.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"satang/internal/cli"
	"satang/internal/core"
	"satang/internal/log"
)

func main() {
	out := flag.String("out", "", "output file (default stdout)")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger().WithComponent(log.ComponentExport)
	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.OpenStore(logger, cfg)
	defer store.Close()

	ctx := context.Background()

	var (
		txs  []core.Transaction
		cats []core.Category
		wals []core.Wallet
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		txs, err = store.ListTransactions(gctx)
		return err
	})
	g.Go(func() (err error) {
		cats, err = store.ListCategories(gctx)
		return err
	})
	g.Go(func() (err error) {
		wals, err = store.ListWallets(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Error("Failed to read store", log.FieldError, err)
		os.Exit(1)
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			logger.Error("Failed to create output file", log.FieldError, err, "path", *out)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	if err := writeCSV(w, txs, cats, wals); err != nil {
		logger.Error("Failed to write CSV", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Export complete",
		log.FieldCount, len(txs),
		log.FieldOperation, log.OpExport)
}

func writeCSV(w io.Writer, txs []core.Transaction, cats []core.Category, wals []core.Wallet) error {
	catNames := make(map[string]string, len(cats))
	for _, c := range cats {
		catNames[c.ID] = c.Name
	}
	walNames := make(map[string]string, len(wals))
	for _, wl := range wals {
		walNames[wl.ID] = wl.Name
	}
	name := func(m map[string]string, id string) string {
		if n, ok := m[id]; ok {
			return n
		}
		return id
	}

	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.Before(txs[j].Date)
		}
		return txs[i].CreatedAt.Before(txs[j].CreatedAt)
	})

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "type", "amount", "currency", "wallet", "to_wallet", "category", "note"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, tx := range txs {
		toWallet := ""
		if tx.Type == core.Transfer {
			toWallet = name(walNames, tx.ToWalletID)
		}
		rec := []string{
			tx.Date.Format(time.RFC3339),
			string(tx.Type),
			strconv.FormatFloat(tx.Amount.Decimal(), 'f', 2, 64),
			tx.Currency,
			name(walNames, tx.WalletID),
			toWallet,
			name(catNames, tx.CategoryID),
			tx.Note,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
