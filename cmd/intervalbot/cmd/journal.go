package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/intervalbot/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query a SQLite journal",
}

var (
	journalDB   string
	journalFrom string
	journalTo   string
)

var journalTradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "List closed trades",
	RunE: func(cmd *cobra.Command, args []string) error {
		j, from, to, err := openQueryJournal()
		if err != nil {
			return err
		}
		defer j.Close()

		trades, err := j.ListTradesClosedBetween(from, to)
		if err != nil {
			return err
		}

		fmt.Printf("%-28s %-8s %10s %10s %10s %12s %s\n",
			"TRADE", "INSTR", "UNITS", "ENTRY", "EXIT", "P/L", "REASON")
		for _, t := range trades {
			fmt.Printf("%-28s %-8s %10.0f %10.5f %10.5f %12.2f %s\n",
				t.TradeID, t.Instrument, t.Units, t.EntryPrice, t.ExitPrice, t.RealizedPL, t.Reason)
		}
		fmt.Printf("%d trades\n", len(trades))
		return nil
	},
}

var journalGuardsCmd = &cobra.Command{
	Use:   "guards",
	Short: "List equity guard triggers",
	RunE: func(cmd *cobra.Command, args []string) error {
		j, from, to, err := openQueryJournal()
		if err != nil {
			return err
		}
		defer j.Close()

		events, err := j.ListGuardEventsBetween(from, to)
		if err != nil {
			return err
		}

		fmt.Printf("%-25s %12s %12s %12s %s\n", "TIME", "EQUITY", "PEAK", "LEVEL", "REASON")
		for _, g := range events {
			fmt.Printf("%-25s %12.2f %12.2f %12.2f %s\n",
				g.Time.Format(time.RFC3339), g.Equity, g.Peak, g.Level, g.Reason)
		}
		fmt.Printf("%d events\n", len(events))
		return nil
	},
}

func openQueryJournal() (*journal.SQLite, time.Time, time.Time, error) {
	from, to, err := parseRange(journalFrom, journalTo)
	if err != nil {
		return nil, from, to, err
	}
	if to.IsZero() {
		to = time.Now().Add(24 * time.Hour)
	}

	j, err := journal.NewSQLite(journalDB)
	if err != nil {
		return nil, from, to, fmt.Errorf("open journal: %w", err)
	}
	return j, from, to, nil
}

func init() {
	journalCmd.PersistentFlags().StringVar(&journalDB, "db", "journal.db", "path to SQLite journal")
	journalCmd.PersistentFlags().StringVar(&journalFrom, "from", "", "start time (RFC3339, optional)")
	journalCmd.PersistentFlags().StringVar(&journalTo, "to", "", "end time (RFC3339, optional)")

	journalCmd.AddCommand(journalTradesCmd)
	journalCmd.AddCommand(journalGuardsCmd)
	rootCmd.AddCommand(journalCmd)
}
