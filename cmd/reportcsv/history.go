package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/reportcsv/internal/history"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent conversions from HISTORY_DB",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if cfg.HistoryDB == "" {
			fatal("No history", fmt.Errorf("HISTORY_DB is not set"))
		}
		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			fatal("Failed to open history", err)
		}
		defer store.Close()

		entries, err := store.Recent(context.Background(), historyLimit)
		if err != nil {
			fatal("Failed to read history", err)
		}
		printHistory(os.Stdout, entries)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show")
}

func printHistory(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No conversions recorded")
		return
	}
	for _, e := range entries {
		status := fmt.Sprintf("%d records", e.Records)
		if e.Error != "" {
			status = "failed: " + e.Error
		}
		fmt.Fprintf(w, "%s  %-14s  %s  [%s]\n",
			e.BatchID, humanize.Time(e.CreatedAt), status, strings.Join(e.Files, ", "))
	}
}

// openHistory returns the configured history store, or nil when none is set.
func openHistory(path string) *history.Store {
	if path == "" {
		return nil
	}
	store, err := history.Open(path)
	if err != nil {
		fatal("Failed to open history", err)
	}
	return store
}
