package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"image-ocr-llm/config"
	"image-ocr-llm/history"
	"image-ocr-llm/logutil"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previously processed images",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.List(historyLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No history yet")
			return nil
		}

		for _, e := range entries {
			status := "ok"
			if e.Error != "" {
				status = "error: " + e.Error
			}
			fmt.Printf("%-5d %-20s %-30s words=%-4d conf=%.2f model=%-10s %s\n",
				e.ID, e.Timestamp, e.Filename, e.WordCount, e.Confidence, e.Model, status)
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all history entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Count()
		if err != nil {
			return err
		}
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Printf("Removed %d history entries\n", n)
		return nil
	},
}

func openHistory() (*history.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logutil.Setup(cfg.EnableFileLogging)

	if cfg.HistoryDB == "" {
		return nil, fmt.Errorf("history is disabled (HISTORY_DB is empty)")
	}
	return history.Open(cfg.HistoryDB)
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20,
		"Maximum entries to list (0 for all)")
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}
