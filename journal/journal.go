package journal

import "time"

type TradeRecord struct {
	TradeID    string
	Instrument string
	Units      float64
	EntryPrice float64
	ExitPrice  float64
	OpenTime   time.Time
	CloseTime  time.Time
	RealizedPL float64
	Reason     string
}

type EquitySnapshot struct {
	Time    time.Time
	Balance float64
	Equity  float64
}

// GuardEvent records an equity-guard trigger: the equity and peak at the
// moment the trailing level was breached, and the level itself.
type GuardEvent struct {
	Time   time.Time
	Equity float64
	Peak   float64
	Level  float64
	Reason string
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	RecordGuard(GuardEvent) error
	Close() error
}
