package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVJournal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")
	guardsPath := filepath.Join(dir, "guards.csv")

	j, err := NewCSV(tradesPath, equityPath, guardsPath)
	require.NoError(t, err)

	open := time.Date(2024, 1, 2, 6, 0, 0, 0, time.UTC)
	closeT := open.Add(4 * time.Hour)

	require.NoError(t, j.RecordTrade(TradeRecord{
		TradeID:    "T1",
		Instrument: "EUR_USD",
		Units:      -1000,
		EntryPrice: 1.10042,
		ExitPrice:  1.10000,
		OpenTime:   open,
		CloseTime:  closeT,
		RealizedPL: 0.42,
		Reason:     "TakeProfit",
	}))
	require.NoError(t, j.RecordEquity(EquitySnapshot{Time: open, Balance: 10000, Equity: 10000}))
	require.NoError(t, j.RecordGuard(GuardEvent{Time: closeT, Equity: 10400, Peak: 10600, Level: 10420, Reason: "TrailingStop"}))
	require.NoError(t, j.Close())

	trades := readCSV(t, tradesPath)
	require.Len(t, trades, 2)
	assert.Equal(t, "trade_id", trades[0][0])
	assert.Equal(t, "T1", trades[1][0])
	assert.Equal(t, "EUR_USD", trades[1][1])
	assert.Equal(t, "TakeProfit", trades[1][8])

	equity := readCSV(t, equityPath)
	require.Len(t, equity, 2)
	assert.Equal(t, []string{"time", "balance", "equity"}, equity[0])

	guards := readCSV(t, guardsPath)
	require.Len(t, guards, 2)
	assert.Equal(t, "TrailingStop", guards[1][4])
}

func TestCSVJournalBadPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := NewCSV(filepath.Join(dir, "missing", "trades.csv"),
		filepath.Join(dir, "equity.csv"), filepath.Join(dir, "guards.csv"))
	assert.Error(t, err)
}
