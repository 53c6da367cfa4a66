package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastbox/internal/core"
	"github.com/jmylchreest/toastbox/internal/history"
)

var pruneOpts struct {
	olderThan string
	keep      int
	dryRun    bool
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old toasts from history",
	Long: `Remove old toasts from the history log.

Examples:
  # Remove toasts older than 7 days
  toastbox prune --older-than 7d

  # Keep only the 100 most recent toasts
  toastbox prune --keep 100

  # Preview what would be removed (dry run)
  toastbox prune --older-than 48h --dry-run`,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().StringVar(&pruneOpts.olderThan, "older-than", "",
		"Remove toasts older than this duration (e.g., 48h, 7d, 1w)")
	pruneCmd.Flags().IntVar(&pruneOpts.keep, "keep", 0,
		"Keep only the N most recent toasts (0=unlimited)")
	pruneCmd.Flags().BoolVar(&pruneOpts.dryRun, "dry-run", false,
		"Show what would be removed without actually removing")
}

func runPrune(cmd *cobra.Command, args []string) error {
	if pruneOpts.olderThan == "" && pruneOpts.keep == 0 {
		return errors.New("specify --older-than or --keep")
	}
	if !cfg.History.Enabled {
		return errors.New("history is disabled in the configuration")
	}

	log, err := history.Open(cfg.HistoryPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer func() { _ = log.Stop() }()

	records, err := log.All()
	if err != nil {
		return err
	}

	remove, err := pruneSet(records, time.Now())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(remove) == 0 {
		fmt.Fprintln(out, "No toasts to remove")
		return nil
	}

	if pruneOpts.dryRun {
		fmt.Fprintf(out, "Would remove %d toast(s):\n", len(remove))
		shown := 0
		for _, r := range records {
			if !remove[r.ID] {
				continue
			}
			if shown == 10 {
				fmt.Fprintf(out, "  ... and %d more\n", len(remove)-10)
				break
			}
			fmt.Fprintf(out, "  - [%s] %s (%s)\n", r.Level, r.Message, humanize.Time(r.CreatedAt))
			shown++
		}
		return nil
	}

	removed, err := log.Retain(func(r history.Record) bool { return !remove[r.ID] })
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Removed %d toast(s)\n", removed)
	return nil
}

// pruneSet returns the IDs of records the prune flags select for removal.
func pruneSet(records []history.Record, now time.Time) (map[string]bool, error) {
	remove := make(map[string]bool)

	if pruneOpts.olderThan != "" {
		d, err := core.ParseDuration(pruneOpts.olderThan)
		if err != nil {
			return nil, fmt.Errorf("invalid duration: %w", err)
		}
		cutoff := now.Add(-d)
		for _, r := range records {
			if r.CreatedAt.Before(cutoff) {
				remove[r.ID] = true
			}
		}
	}

	if pruneOpts.keep > 0 && len(records) > pruneOpts.keep {
		newest := make([]history.Record, len(records))
		copy(newest, records)
		core.Sort(newest, core.DefaultSortOptions())
		for _, r := range newest[pruneOpts.keep:] {
			remove[r.ID] = true
		}
	}
	return remove, nil
}
