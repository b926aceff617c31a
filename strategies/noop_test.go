package strategies

import (
	"context"
	"testing"

	"github.com/rustyeddy/intervalbot/market"
	"github.com/stretchr/testify/assert"
)

func TestNoopStrategyOnTick(t *testing.T) {
	t.Parallel()

	strat := NoopStrategy{}
	err := strat.OnTick(context.Background(), nil, market.Tick{})
	assert.NoError(t, err)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, GetStrategy("noop"))
	assert.Nil(t, GetStrategy("missing"))
}

func TestStrategyByName(t *testing.T) {
	t.Parallel()

	s, err := StrategyByName("noop", DailyIntervalConfig{}, nil, nil, nil)
	assert.NoError(t, err)
	assert.IsType(t, NoopStrategy{}, s)

	s, err = StrategyByName("none", DailyIntervalConfig{}, nil, nil, nil)
	assert.NoError(t, err)
	assert.IsType(t, NoopStrategy{}, s)

	s, err = StrategyByName("daily-interval", baseConfig(), nil, nil, nil)
	assert.NoError(t, err)
	assert.IsType(t, &DailyInterval{}, s)

	// Empty name falls back to the scheduler.
	s, err = StrategyByName("", baseConfig(), nil, nil, nil)
	assert.NoError(t, err)
	assert.IsType(t, &DailyInterval{}, s)

	_, err = StrategyByName("martingale", DailyIntervalConfig{}, nil, nil, nil)
	assert.Error(t, err)

	// Bad config surfaces at construction.
	_, err = StrategyByName("daily-interval", DailyIntervalConfig{}, nil, nil, nil)
	assert.Error(t, err)
}
