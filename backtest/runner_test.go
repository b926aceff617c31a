package backtest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/intervalbot/broker"
	"github.com/rustyeddy/intervalbot/journal"
	"github.com/rustyeddy/intervalbot/sim"
	"github.com/rustyeddy/intervalbot/strategies"
)

func TestRunnerRequiresParts(t *testing.T) {
	t.Parallel()

	r := &Runner{}
	_, err := r.Run(context.Background())
	assert.Error(t, err)
}

func TestRunnerNoopCountsTicks(t *testing.T) {
	t.Parallel()

	path := writeTicksCSV(t, `2024-03-04T06:00:00Z,EUR_USD,1.10000,1.10002
2024-03-04T06:01:00Z,EUR_USD,1.10005,1.10007
2024-03-04T06:02:00Z,EUR_USD,1.10010,1.10012
`)
	feed, err := NewCSVTicksFeed(path, time.Time{}, time.Time{})
	require.NoError(t, err)

	r := &Runner{
		Engine:   sim.NewEngine(broker.Account{ID: "SIM", Currency: "USD", Balance: 10000}, journal.NewMemory(), nil),
		Feed:     feed,
		Strategy: strategies.NoopStrategy{},
	}

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Ticks)
	assert.Equal(t, time.Date(2024, 3, 4, 6, 0, 0, 0, time.UTC), res.Start)
	assert.Equal(t, time.Date(2024, 3, 4, 6, 2, 0, 0, time.UTC), res.End)
	assert.InDelta(t, 10000, res.FinalEquity, 1e-9)
}

func TestRunnerDrivesScheduler(t *testing.T) {
	t.Parallel()

	// One tick per hour over a trading day, slowly rising market.
	var sb strings.Builder
	base := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	for h := 0; h < 24; h++ {
		bid := 1.10000 + float64(h)*0.00100
		sb.WriteString(fmt.Sprintf("%s,EUR_USD,%.5f,%.5f\n",
			base.Add(time.Duration(h)*time.Hour).Format(time.RFC3339), bid, bid+0.00002))
	}

	feed, err := NewCSVTicksFeed(writeTicksCSV(t, sb.String()), time.Time{}, time.Time{})
	require.NoError(t, err)

	strat, err := strategies.NewDailyInterval(strategies.DailyIntervalConfig{
		Instrument:      "EUR_USD",
		Units:           1000,
		WindowStart:     6 * 60,
		WindowEnd:       18 * 60,
		Interval:        240 * time.Minute,
		MaxPerDay:       10,
		ThresholdPoints: 0,
		Direction:       strategies.DirectionBuy,
	}, nil, nil, nil)
	require.NoError(t, err)

	j := journal.NewMemory()
	r := &Runner{
		Engine:   sim.NewEngine(broker.Account{ID: "SIM", Currency: "USD", Balance: 10000}, j, nil),
		Feed:     feed,
		Strategy: strat,
		Options:  RunnerOptions{CloseEnd: true},
	}

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 24, res.Ticks)

	// Entries at 06:00, 10:00 and 14:00; all flattened at end of replay.
	require.Len(t, j.Trades, 3)
	for _, rec := range j.Trades {
		assert.Equal(t, "EndOfReplay", rec.Reason)
		assert.Positive(t, rec.RealizedPL, "rising market, long entries")
	}
	assert.Greater(t, res.FinalBalance, 10000.0)
	assert.InDelta(t, res.FinalBalance, res.FinalEquity, 1e-9)
}
