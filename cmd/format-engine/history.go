// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/format-engine/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect past conversion outcomes",
	Long: `History reads the conversion history database. It is available only
when history.state_dir is configured; conversions record one row per
terminal outcome.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent conversions, newest first",
	RunE:  runHistoryList,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the full history as YAML to stdout",
	RunE:  runHistoryExport,
}

func init() {
	historyListCmd.Flags().Int("limit", 0, "maximum rows to list (default from config)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory() (*history.Store, error) {
	cfg := historyConfig()
	if cfg.StateDir == "" {
		return nil, fmt.Errorf("history disabled: set history.state_dir in the config file")
	}
	return history.NewStore(cfg)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	records, err := store.List(context.Background(), limit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No conversions recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-9s  %-10s  %-9s  %s\n",
		"When", "Status", "Target", "Bytes", "Source")
	for _, rec := range records {
		fmt.Fprintf(os.Stdout, "%-20s  %-9s  %-10s  %-9d  %s\n",
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
			rec.Status, rec.Target, rec.ResultBytes, rec.SourceName)
	}
	fmt.Fprintf(os.Stdout, "\n%d record(s)\n", len(records))
	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	return store.ExportYAML(context.Background(), os.Stdout)
}
