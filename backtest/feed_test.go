package backtest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTicksCSV(t *testing.T, rows string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ticks.csv")
	require.NoError(t, os.WriteFile(path, []byte(rows), 0644))
	return path
}

func TestCSVTicksFeed(t *testing.T) {
	t.Parallel()

	path := writeTicksCSV(t, `time,instrument,bid,ask
2024-03-04T06:00:00Z,EUR_USD,1.10000,1.10002
2024-03-04T06:00:01Z,EUR_USD,1.10005,1.10007

2024-03-04T06:00:02Z,EUR_USD,1.10010,1.10012
`)

	feed, err := NewCSVTicksFeed(path, time.Time{}, time.Time{})
	require.NoError(t, err)
	defer feed.Close()

	var count int
	for {
		tick, ok, err := feed.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		count++
		assert.Equal(t, "EUR_USD", tick.Instrument)
		assert.True(t, tick.Valid())
	}
	assert.Equal(t, 3, count)
}

func TestCSVTicksFeedRange(t *testing.T) {
	t.Parallel()

	path := writeTicksCSV(t, `2024-03-04T06:00:00Z,EUR_USD,1.10000,1.10002
2024-03-04T07:00:00Z,EUR_USD,1.10005,1.10007
2024-03-04T08:00:00Z,EUR_USD,1.10010,1.10012
`)

	from := time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)

	feed, err := NewCSVTicksFeed(path, from, to)
	require.NoError(t, err)
	defer feed.Close()

	tick, ok, err := feed.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, tick.Time.Equal(from))

	_, ok, err = feed.Next()
	require.NoError(t, err)
	assert.False(t, ok, "[from,to) excludes the end")
}

func TestCSVTicksFeedBadRow(t *testing.T) {
	t.Parallel()

	path := writeTicksCSV(t, `2024-03-04T06:00:00Z,EUR_USD,notanumber,1.10002
`)

	feed, err := NewCSVTicksFeed(path, time.Time{}, time.Time{})
	require.NoError(t, err)
	defer feed.Close()

	_, _, err = feed.Next()
	assert.Error(t, err)
}

func TestCSVTicksFeedMissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewCSVTicksFeed(filepath.Join(t.TempDir(), "nope.csv"), time.Time{}, time.Time{})
	assert.Error(t, err)
}
