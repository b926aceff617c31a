package strategies

import (
	"context"

	"github.com/rustyeddy/intervalbot/broker"
	"github.com/rustyeddy/intervalbot/market"
)

// NoopStrategy does nothing. Useful for wiring tests and for replaying a
// dataset through the engine without trading.
type NoopStrategy struct{}

func init() {
	Register("noop", NoopStrategy{})
	Register("none", NoopStrategy{})
}

func (NoopStrategy) OnTick(ctx context.Context, b broker.Broker, tick market.Tick) error {
	return nil
}
