/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/voicetran/internal/store"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the translation history",
	Long: `List, inspect, and clear the SQLite log of completed translations.
History is never used to answer a translation request.`,
}

// withStore opens the configured history database for the duration of fn.
func withStore(cmd *cobra.Command, fn func(db *store.Store) error) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent translations, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(db *store.Store) error {
			entries, err := db.ListHistory(context.Background(), historyLimit)
			if err != nil {
				return fmt.Errorf("failed to list entries: %w", err)
			}

			if len(entries) == 0 {
				fmt.Println("No translations in history.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSOURCE\tTARGET\tSERVICE\tLATENCY\tFALLBACK\tWHEN\tTEXT")
			for _, e := range entries {
				snippet := e.SourceText
				if r := []rune(snippet); len(r) > 40 {
					snippet = string(r[:37]) + "..."
				}
				service := e.ServiceName
				if e.Identity() {
					service = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%dms\t%v\t%s\t%s\n",
					e.ID, e.SourceLang, e.TargetLang, service,
					e.Latency.Milliseconds(), e.PrimaryError != "",
					e.Timestamp.Local().Format("2006-01-02 15:04"), snippet)
			}
			return w.Flush()
		})
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show translation history statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(db *store.Store) error {
			stats, err := db.Stats(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get stats: %w", err)
			}

			fmt.Printf("Total entries:   %d\n", stats.TotalEntries)
			fmt.Printf("Fallbacks:       %d\n", stats.FallbackCount)
			fmt.Printf("Avg latency:     %s\n", stats.AvgLatency)

			names := make([]string, 0, len(stats.ByService))
			for name := range stats.ByService {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("  %-14s %d\n", name, stats.ByService[name])
			}
			return nil
		})
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a history entry by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(db *store.Store) error {
			if err := db.DeleteEntry(context.Background(), args[0]); err != nil {
				return fmt.Errorf("failed to delete entry: %w", err)
			}
			fmt.Printf("Deleted entry: %s\n", args[0])
			return nil
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all entries from the history",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(db *store.Store) error {
			n, err := db.ClearHistory(context.Background())
			if err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			fmt.Printf("Cleared %d entries from history.\n", n)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of entries to show")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
}
