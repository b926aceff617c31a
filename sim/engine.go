package sim

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/intervalbot/broker"
	"github.com/rustyeddy/intervalbot/internal/id"
	"github.com/rustyeddy/intervalbot/journal"
	"github.com/rustyeddy/intervalbot/market"
	"github.com/rustyeddy/intervalbot/metrics"
)

// Engine is a paper broker: it fills market orders at the stored tick,
// marks open trades to market on every price update, and records trades
// and equity snapshots to the journal.
type Engine struct {
	mu      sync.Mutex
	acct    broker.Account
	ticks   *market.TickStore
	trades  map[string]*Trade
	journal journal.Journal
	log     *zap.Logger
}

func NewEngine(acct broker.Account, j journal.Journal, log *zap.Logger) *Engine {
	if j == nil {
		j = journal.NewMemory()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if acct.Equity == 0 {
		acct.Equity = acct.Balance
	}
	return &Engine{
		acct:    acct,
		ticks:   market.NewTickStore(),
		trades:  make(map[string]*Trade),
		journal: j,
		log:     log,
	}
}

func (e *Engine) GetAccount(ctx context.Context) (broker.Account, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acct, nil
}

func (e *Engine) GetTick(ctx context.Context, instrument string) (market.Tick, error) {
	return e.ticks.Get(instrument)
}

func (e *Engine) CreateMarketOrder(ctx context.Context, req broker.MarketOrderRequest) (broker.OrderFill, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if req.Units == 0 {
		return broker.OrderFill{}, fmt.Errorf("create order: units must be non-zero")
	}

	tick, err := e.ticks.Get(req.Instrument)
	if err != nil {
		return broker.OrderFill{}, fmt.Errorf("create order: no price for %q: %w", req.Instrument, err)
	}

	fillPrice := tick.Ask
	if req.Units < 0 {
		fillPrice = tick.Bid
	}

	tradeID := id.New()
	e.trades[tradeID] = &Trade{
		ID:         tradeID,
		Instrument: req.Instrument,
		Units:      req.Units,
		EntryPrice: fillPrice,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
		OpenTime:   tick.Time,
		Open:       true,
	}
	metrics.PositionsOpen.Set(float64(e.openCountLocked()))

	e.log.Debug("order filled",
		zap.String("trade_id", tradeID),
		zap.String("instrument", req.Instrument),
		zap.Float64("units", req.Units),
		zap.Float64("price", fillPrice))

	return broker.OrderFill{
		TradeID:    tradeID,
		Instrument: req.Instrument,
		Units:      req.Units,
		Price:      fillPrice,
	}, nil
}

// OpenTrades returns the open positions for an instrument, oldest first,
// marked to the latest stored tick.
func (e *Engine) OpenTrades(ctx context.Context, instrument string) ([]broker.Position, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var open []*Trade
	for _, t := range e.trades {
		if t.Open && t.Instrument == instrument {
			open = append(open, t)
		}
	}
	sort.Slice(open, func(i, j int) bool {
		if open[i].OpenTime.Equal(open[j].OpenTime) {
			return open[i].ID < open[j].ID
		}
		return open[i].OpenTime.Before(open[j].OpenTime)
	})

	out := make([]broker.Position, 0, len(open))
	for _, t := range open {
		pos := broker.Position{
			TradeID:    t.ID,
			Instrument: t.Instrument,
			Units:      t.Units,
			EntryPrice: t.EntryPrice,
			OpenTime:   t.OpenTime,
		}
		if tick, err := e.ticks.Get(t.Instrument); err == nil {
			mark := tick.Bid
			if t.Units < 0 {
				mark = tick.Ask
			}
			pos.UnrealizedPL = UnrealizedPL(*t, mark)
		}
		out = append(out, pos)
	}
	return out, nil
}

// CloseTrade closes an open trade at the current market price.
// Longs close on BID, shorts on ASK.
func (e *Engine) CloseTrade(ctx context.Context, tradeID string, reason string) error {
	if reason == "" {
		reason = "ManualClose"
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.trades[tradeID]
	if !ok {
		return fmt.Errorf("close trade: trade %q not found", tradeID)
	}
	if !t.Open {
		return fmt.Errorf("close trade: trade %q is already closed", tradeID)
	}

	tick, err := e.ticks.Get(t.Instrument)
	if err != nil {
		return fmt.Errorf("close trade: no price for %q: %w", t.Instrument, err)
	}

	closePrice := tick.Bid
	if t.Units < 0 {
		closePrice = tick.Ask
	}

	if err := e.closeTradeLocked(t, closePrice, closeTimeFor(tick), reason); err != nil {
		return err
	}
	return e.settleLocked(closeTimeFor(tick))
}

// CloseAll closes every open trade at current market prices and records a
// single equity snapshot afterwards.
func (e *Engine) CloseAll(ctx context.Context, reason string) error {
	if reason == "" {
		reason = "ManualClose"
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var open []*Trade
	for _, t := range e.trades {
		if t.Open {
			open = append(open, t)
		}
	}
	if len(open) == 0 {
		return nil
	}

	// Preflight: prices must exist for everything we are about to close.
	for _, t := range open {
		if _, err := e.ticks.Get(t.Instrument); err != nil {
			return fmt.Errorf("close all: no price for %q: %w", t.Instrument, err)
		}
	}

	var snapshotTime time.Time
	for _, t := range open {
		tick, _ := e.ticks.Get(t.Instrument)

		closePrice := tick.Bid
		if t.Units < 0 {
			closePrice = tick.Ask
		}

		closeTime := closeTimeFor(tick)
		if closeTime.After(snapshotTime) {
			snapshotTime = closeTime
		}

		if err := e.closeTradeLocked(t, closePrice, closeTime, reason); err != nil {
			return err
		}
	}

	if snapshotTime.IsZero() {
		snapshotTime = time.Now()
	}
	return e.settleLocked(snapshotTime)
}

// UpdateTick stores a new tick, runs stop-loss/take-profit triggers for
// that instrument, revalues equity and records an equity snapshot.
func (e *Engine) UpdateTick(tick market.Tick) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ticks.Set(tick)

	for _, t := range e.trades {
		if !t.Open || t.Instrument != tick.Instrument {
			continue
		}

		mark := tick.Bid
		if t.Units < 0 {
			mark = tick.Ask
		}

		reason := ""
		switch {
		case hitStopLoss(t, mark):
			reason = "StopLoss"
		case hitTakeProfit(t, mark):
			reason = "TakeProfit"
		}
		if reason != "" {
			if err := e.closeTradeLocked(t, mark, tick.Time, reason); err != nil {
				return err
			}
			e.log.Info("trade auto-closed",
				zap.String("trade_id", t.ID),
				zap.String("reason", reason),
				zap.Float64("price", mark))
		}
	}

	return e.settleLocked(tick.Time)
}

// RecordGuard forwards an equity-guard event to the journal. Strategies
// reach it through a type assertion on broker.Broker.
func (e *Engine) RecordGuard(ev journal.GuardEvent) error {
	return e.journal.RecordGuard(ev)
}

// IsTradeOpen lets strategies resync position state after engine-side
// closes (stop loss, take profit, guard).
func (e *Engine) IsTradeOpen(tradeID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.trades[tradeID]
	return ok && t.Open
}

func (e *Engine) closeTradeLocked(t *Trade, closePrice float64, closeTime time.Time, reason string) error {
	pl := UnrealizedPL(*t, closePrice)

	t.ClosePrice = closePrice
	t.CloseTime = closeTime
	t.RealizedPL = pl
	t.Open = false

	e.acct.Balance += pl

	return e.journal.RecordTrade(journal.TradeRecord{
		TradeID:    t.ID,
		Instrument: t.Instrument,
		Units:      t.Units,
		EntryPrice: t.EntryPrice,
		ExitPrice:  closePrice,
		OpenTime:   t.OpenTime,
		CloseTime:  closeTime,
		RealizedPL: pl,
		Reason:     reason,
	})
}

// settleLocked revalues equity from open trades and records a snapshot.
func (e *Engine) settleLocked(at time.Time) error {
	equity := e.acct.Balance

	for _, t := range e.trades {
		if !t.Open {
			continue
		}
		tick, err := e.ticks.Get(t.Instrument)
		if err != nil {
			return err
		}
		mark := tick.Bid
		if t.Units < 0 {
			mark = tick.Ask
		}
		equity += UnrealizedPL(*t, mark)
	}
	e.acct.Equity = equity

	metrics.PositionsOpen.Set(float64(e.openCountLocked()))
	metrics.EquityGauge.Set(equity)

	if at.IsZero() {
		at = time.Now()
	}
	return e.journal.RecordEquity(journal.EquitySnapshot{
		Time:    at,
		Balance: e.acct.Balance,
		Equity:  e.acct.Equity,
	})
}

func (e *Engine) openCountLocked() int {
	n := 0
	for _, t := range e.trades {
		if t.Open {
			n++
		}
	}
	return n
}

func closeTimeFor(tick market.Tick) time.Time {
	if tick.Time.IsZero() {
		return time.Now()
	}
	return tick.Time
}
