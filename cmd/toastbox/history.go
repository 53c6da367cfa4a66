package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toastbox/internal/adapter/output"
	"github.com/jmylchreest/toastbox/internal/core"
	"github.com/jmylchreest/toastbox/internal/history"
)

var historyOpts struct {
	format   string
	limit    int
	template string
	field    string
	compact  bool
	clear    bool
	since    string
	level    string
	position string
	status   string
	filter   string
	search   string
	sort     string
	order    string
}

var historyCmd = &cobra.Command{
	Use:   "history [id|index]",
	Short: "Show the toasts raised so far",
	Long: `Show the toast history log, newest first.

Examples:
  toastbox history
  toastbox history --limit 5 --format json
  toastbox history --format plain --template '{{.Level}} {{.Message}}'
  toastbox history --limit 1 --field id
  toastbox history --since 1h --filter 'level>=warn,message~deploy'
  toastbox history --sort duration --order asc
  toastbox history 01J5K3`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVarP(&historyOpts.format, "format", "f", "plain",
		"Output format (plain, json, yaml, ids)")
	historyCmd.Flags().IntVarP(&historyOpts.limit, "limit", "n", 0,
		"Maximum number of toasts to show (0=unlimited)")
	historyCmd.Flags().StringVar(&historyOpts.template, "template", "",
		"Custom Go template for plain output")
	historyCmd.Flags().StringVar(&historyOpts.field, "field", "",
		"Output a single field per toast (id, level, position, status, expiry, message)")
	historyCmd.Flags().BoolVar(&historyOpts.compact, "compact", false,
		"Rewrite the log with one line per toast")
	historyCmd.Flags().BoolVar(&historyOpts.clear, "clear", false,
		"Delete all history")
	historyCmd.Flags().StringVar(&historyOpts.since, "since", "0",
		"Only toasts raised within this duration (e.g. 1h, 7d, 0=all)")
	historyCmd.Flags().StringVar(&historyOpts.level, "level", "",
		"Only toasts of this level")
	historyCmd.Flags().StringVar(&historyOpts.position, "position", "",
		"Only toasts at this position")
	historyCmd.Flags().StringVar(&historyOpts.status, "status", "",
		"Only toasts with this status (active, expired, dismissed, closed)")
	historyCmd.Flags().StringVar(&historyOpts.filter, "filter", "",
		"Filter expression (e.g. 'level>=warn,status=dismissed')")
	historyCmd.Flags().StringVarP(&historyOpts.search, "search", "s", "",
		"Only toasts whose message contains this text")
	historyCmd.Flags().StringVar(&historyOpts.sort, "sort", "created",
		"Sort field (created, level, duration)")
	historyCmd.Flags().StringVar(&historyOpts.order, "order", "desc",
		"Sort order (asc, desc)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if !cfg.History.Enabled {
		return errors.New("history is disabled in the configuration")
	}

	log, err := history.Open(cfg.HistoryPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer func() { _ = log.Stop() }()

	switch {
	case historyOpts.clear:
		return log.Clear()
	case historyOpts.compact:
		return log.Compact()
	}

	all, err := log.All()
	if err != nil {
		return err
	}
	records, err := queryHistory(all, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if historyOpts.field != "" {
		for _, r := range records {
			fmt.Fprintln(out, output.FormatField(r, historyOpts.field))
		}
		return nil
	}

	opts := output.DefaultFormatterOptions()
	opts.Template = historyOpts.template
	formatter, err := output.NewFormatter(output.FormatType(historyOpts.format), opts)
	if err != nil {
		return err
	}
	return formatter.Format(out, records)
}

// queryHistory narrows records according to the history flags. A single
// argument selects one toast by 1-based index in the result or by ID prefix.
func queryHistory(records []history.Record, args []string) ([]history.Record, error) {
	since, err := core.ParseDuration(historyOpts.since)
	if err != nil {
		return nil, err
	}
	records = core.Filter(records, core.FilterOptions{
		Since:    since,
		Level:    historyOpts.level,
		Position: historyOpts.position,
		Status:   historyOpts.status,
	})

	if historyOpts.filter != "" {
		expr, err := core.ParseFilter(historyOpts.filter)
		if err != nil {
			return nil, err
		}
		records = core.FilterWithExpr(records, expr)
	}
	records = core.Search(records, historyOpts.search)

	field, err := core.ParseSortField(historyOpts.sort)
	if err != nil {
		return nil, err
	}
	order, err := core.ParseSortOrder(historyOpts.order)
	if err != nil {
		return nil, err
	}
	core.Sort(records, core.SortOptions{Field: field, Order: order})

	if len(args) == 1 {
		var r *history.Record
		if idx, err := strconv.Atoi(args[0]); err == nil {
			r = core.LookupByIndex(records, idx)
		} else {
			r = core.LookupByID(records, args[0])
		}
		if r == nil {
			return nil, fmt.Errorf("no toast matches %q", args[0])
		}
		return []history.Record{*r}, nil
	}

	if historyOpts.limit > 0 && len(records) > historyOpts.limit {
		records = records[:historyOpts.limit]
	}
	return records, nil
}
