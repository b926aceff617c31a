package strategies

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"github.com/rustyeddy/intervalbot/broker"
	"github.com/rustyeddy/intervalbot/market"
	"github.com/rustyeddy/intervalbot/risk"
)

// TickStrategy is the interface a strategy must implement. It is invoked
// synchronously once per market event; strategies keep all state local
// and never block.
type TickStrategy interface {
	OnTick(ctx context.Context, b broker.Broker, tick market.Tick) error
}

var registry = make(map[string]TickStrategy)

func Register(name string, strat TickStrategy) {
	registry[name] = strat
}

func GetStrategy(name string) (strat TickStrategy) {
	var ok bool
	if strat, ok = registry[name]; !ok {
		return nil
	}
	return strat
}

// StrategyByName builds a strategy from its short name. Registered
// strategies are looked up first; an empty name means "daily-interval".
func StrategyByName(name string, cfg DailyIntervalConfig, guard *risk.EquityGuard, rng *rand.Rand, log *zap.Logger) (TickStrategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	if s := GetStrategy(name); s != nil {
		return s, nil
	}

	switch name {
	case "daily-interval", "interval", "":
		return NewDailyInterval(cfg, guard, rng, log)

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: noop, daily-interval)", name)
	}
}
