package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/pillbox/app/plugins"
	"github.com/kilianp07/pillbox/config"
	"github.com/kilianp07/pillbox/core/journal"
)

var (
	journalFrom  string
	journalTo    string
	journalColor string
	journalLimit int
	journalJSON  bool
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "List journaled dispenses",
	Long: "Reads the dispense history from the configured journal backend. " +
		"--from and --to accept RFC3339 instants or YYYY-MM-DD dates (UTC); a date for --to covers the whole day.",
	RunE: listJournalCmd,
}

func init() {
	journalCmd.Flags().StringVar(&journalFrom, "from", "", "earliest dispense time")
	journalCmd.Flags().StringVar(&journalTo, "to", "", "latest dispense time")
	journalCmd.Flags().StringVar(&journalColor, "color", "", "only this pill color")
	journalCmd.Flags().IntVar(&journalLimit, "limit", 0, "keep only the most recent N records")
	journalCmd.Flags().BoolVar(&journalJSON, "json", false, "print records as JSON lines")
	rootCmd.AddCommand(journalCmd)
}

func parseBound(v string, end bool) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	d, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: want RFC3339 or YYYY-MM-DD", v)
	}
	if end {
		d = d.Add(24*time.Hour - time.Millisecond)
	}
	return d, nil
}

func buildQuery(from, to, color string, limit int) (journal.Query, error) {
	start, err := parseBound(from, false)
	if err != nil {
		return journal.Query{}, fmt.Errorf("--from: %w", err)
	}
	end, err := parseBound(to, true)
	if err != nil {
		return journal.Query{}, fmt.Errorf("--to: %w", err)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return journal.Query{}, fmt.Errorf("--to %s is before --from %s", to, from)
	}
	if limit < 0 {
		return journal.Query{}, fmt.Errorf("--limit must not be negative")
	}
	return journal.Query{
		Start: start,
		End:   end,
		Color: strings.ToUpper(strings.TrimSpace(color)),
		Limit: limit,
	}, nil
}

func writeJournal(ctx context.Context, w io.Writer, s journal.Store, q journal.Query, asJSON bool) error {
	recs, err := journal.Run(ctx, s, q)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(w)
		for _, r := range recs {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range recs {
		if _, err := fmt.Fprintf(w, "%s %-6s angle=%d status=%s command_id=%d source=%s rgb=%d,%d,%d\n",
			r.Time.Format(time.RFC3339), r.Color, r.Angle, r.Status, r.CommandID, r.Source,
			r.Measured.R, r.Measured.G, r.Measured.B); err != nil {
			return err
		}
	}
	return nil
}

func listJournalCmd(cmd *cobra.Command, args []string) error {
	q, err := buildQuery(journalFrom, journalTo, journalColor, journalLimit)
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := plugins.NewJournalStore(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer func() { _ = store.Close() }()
	return writeJournal(cmd.Context(), cmd.OutOrStdout(), store, q, journalJSON)
}
