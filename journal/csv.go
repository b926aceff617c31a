package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	trades *csv.Writer
	equity *csv.Writer
	guards *csv.Writer
	files  []*os.File
}

func NewCSV(tradesPath, equityPath, guardsPath string) (*CSVJournal, error) {
	j := &CSVJournal{}

	open := func(path string) (*os.File, error) {
		f, err := os.Create(path)
		if err != nil {
			for _, prev := range j.files {
				prev.Close()
			}
			return nil, err
		}
		j.files = append(j.files, f)
		return f, nil
	}

	tf, err := open(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := open(equityPath)
	if err != nil {
		return nil, err
	}
	gf, err := open(guardsPath)
	if err != nil {
		return nil, err
	}

	j.trades = csv.NewWriter(tf)
	j.equity = csv.NewWriter(ef)
	j.guards = csv.NewWriter(gf)

	headers := []struct {
		w   *csv.Writer
		row []string
	}{
		{j.trades, []string{"trade_id", "instrument", "units", "entry_price", "exit_price", "open_time", "close_time", "realized_pl", "reason"}},
		{j.equity, []string{"time", "balance", "equity"}},
		{j.guards, []string{"time", "equity", "peak", "level", "reason"}},
	}
	for _, h := range headers {
		if err := h.w.Write(h.row); err != nil {
			j.Close()
			return nil, err
		}
		h.w.Flush()
		if err := h.w.Error(); err != nil {
			j.Close()
			return nil, err
		}
	}

	return j, nil
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.TradeID,
		t.Instrument,
		f(t.Units),
		f(t.EntryPrice),
		f(t.ExitPrice),
		t.OpenTime.Format(time.RFC3339),
		t.CloseTime.Format(time.RFC3339),
		f(t.RealizedPL),
		t.Reason,
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordEquity(e EquitySnapshot) error {
	err := j.equity.Write([]string{
		e.Time.Format(time.RFC3339),
		f(e.Balance),
		f(e.Equity),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) RecordGuard(g GuardEvent) error {
	err := j.guards.Write([]string{
		g.Time.Format(time.RFC3339),
		f(g.Equity),
		f(g.Peak),
		f(g.Level),
		g.Reason,
	})
	if err != nil {
		return err
	}
	j.guards.Flush()
	return j.guards.Error()
}

func (j *CSVJournal) Close() error {
	var firstErr error
	for _, w := range []*csv.Writer{j.trades, j.equity, j.guards} {
		if w == nil {
			continue
		}
		w.Flush()
		if err := w.Error(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, file := range j.files {
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
