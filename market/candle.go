package market

import "time"

// Candle represents OHLC candlestick data aggregated from ticks.
type Candle struct {
	Instrument string
	Time       time.Time // bucket open time

	Open  float64
	High  float64
	Low   float64
	Close float64
}

// CandleBuilder aggregates mid prices into fixed-duration candles.
// Feed it ticks in time order; Add returns the finished candle (and true)
// whenever a tick starts a new bucket.
type CandleBuilder struct {
	period  time.Duration
	current Candle
	open    bool
}

func NewCandleBuilder(period time.Duration) *CandleBuilder {
	if period <= 0 {
		period = time.Minute
	}
	return &CandleBuilder{period: period}
}

func (b *CandleBuilder) Add(t Tick) (Candle, bool) {
	bucket := t.Time.Truncate(b.period)
	mid := t.Mid()

	if !b.open {
		b.current = Candle{
			Instrument: t.Instrument,
			Time:       bucket,
			Open:       mid,
			High:       mid,
			Low:        mid,
			Close:      mid,
		}
		b.open = true
		return Candle{}, false
	}

	if bucket.After(b.current.Time) {
		done := b.current
		b.current = Candle{
			Instrument: t.Instrument,
			Time:       bucket,
			Open:       mid,
			High:       mid,
			Low:        mid,
			Close:      mid,
		}
		return done, true
	}

	if mid > b.current.High {
		b.current.High = mid
	}
	if mid < b.current.Low {
		b.current.Low = mid
	}
	b.current.Close = mid
	return Candle{}, false
}
