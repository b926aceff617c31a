package broker

import (
	"context"
	"time"

	"github.com/rustyeddy/intervalbot/market"
)

// Broker is the capability surface a strategy consumes: clock-free price
// and account queries plus order open/close. The sim engine implements it
// for replay runs and tests.
type Broker interface {
	GetAccount(ctx context.Context) (Account, error)
	GetTick(ctx context.Context, instrument string) (market.Tick, error)
	CreateMarketOrder(ctx context.Context, req MarketOrderRequest) (OrderFill, error)

	// OpenTrades returns the open positions for an instrument, oldest first.
	OpenTrades(ctx context.Context, instrument string) ([]Position, error)
	CloseTrade(ctx context.Context, tradeID string, reason string) error
	CloseAll(ctx context.Context, reason string) error
}

type Account struct {
	ID       string
	Currency string
	Balance  float64
	Equity   float64
}

type MarketOrderRequest struct {
	Instrument string
	Units      float64 // >0 buy, <0 sell

	StopLoss   *float64
	TakeProfit *float64
}

type OrderFill struct {
	TradeID    string
	Instrument string
	Units      float64
	Price      float64
}

// Position is a read-only view of an open trade owned by the broker.
type Position struct {
	TradeID    string
	Instrument string
	Units      float64
	EntryPrice float64
	OpenTime   time.Time

	// UnrealizedPL is marked to the close side (bid for longs, ask for
	// shorts) as of the broker's latest price.
	UnrealizedPL float64
}

// Side reports +1 for a long position, -1 for a short.
func (p Position) Side() int {
	if p.Units < 0 {
		return -1
	}
	return 1
}

// ProfitPoints converts the position's open profit into instrument points,
// marked against the given tick's close side.
func (p Position) ProfitPoints(t market.Tick) float64 {
	mark := t.Bid
	if p.Units < 0 {
		mark = t.Ask
	}
	return float64(p.Side()) * market.PointsBetween(p.Instrument, p.EntryPrice, mark)
}
