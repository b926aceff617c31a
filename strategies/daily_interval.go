package strategies

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/intervalbot/broker"
	"github.com/rustyeddy/intervalbot/indicators"
	"github.com/rustyeddy/intervalbot/journal"
	"github.com/rustyeddy/intervalbot/market"
	"github.com/rustyeddy/intervalbot/metrics"
	"github.com/rustyeddy/intervalbot/risk"
)

// Direction selects how entry side is chosen.
type Direction int

const (
	DirectionBuy Direction = iota
	DirectionSell
	DirectionRandom
)

func (d Direction) String() string {
	switch d {
	case DirectionSell:
		return "sell"
	case DirectionRandom:
		return "random"
	default:
		return "buy"
	}
}

func ParseDirection(s string) (Direction, error) {
	switch s {
	case "buy", "":
		return DirectionBuy, nil
	case "sell":
		return DirectionSell, nil
	case "random":
		return DirectionRandom, nil
	default:
		return DirectionBuy, fmt.Errorf("unknown direction %q (buy, sell, random)", s)
	}
}

// DailyIntervalConfig parameterizes the scheduled-entry strategy.
// Window minutes are minutes from midnight in Location; the session wraps
// past midnight when WindowStart > WindowEnd.
type DailyIntervalConfig struct {
	Instrument string
	Units      float64

	WindowStart int
	WindowEnd   int
	Interval    time.Duration
	MaxPerDay   int

	// ThresholdPoints gates re-entry: a new position may only open when
	// the last open position's |profit in points| has reached it.
	ThresholdPoints float64

	Direction Direction
	Location  *time.Location

	// MaxTickAge rejects ticks older than this against the wall clock.
	// Zero disables the check (replay datasets are always "stale").
	MaxTickAge time.Duration

	// Optional exits, in points from entry. Zero disables.
	StopPoints float64
	TakePoints float64

	// Optional ADX entry gate: require ADX(ADXPeriod) >= ADXThreshold on
	// CandlePeriod candles. ADXPeriod zero disables.
	ADXPeriod    int
	ADXThreshold float64

	// Optional ATR stop scaling: stop distance = ATRStopMult * ATR(ATRPeriod),
	// overriding StopPoints once the indicator is ready. ATRPeriod zero
	// disables.
	ATRPeriod    int
	ATRStopMult  float64
	CandlePeriod time.Duration
}

func (c *DailyIntervalConfig) Validate() error {
	if c.Instrument == "" {
		return fmt.Errorf("instrument is required")
	}
	if c.Units <= 0 {
		return fmt.Errorf("units must be positive, got %v", c.Units)
	}
	if c.WindowStart < 0 || c.WindowStart >= 24*60 {
		return fmt.Errorf("window start out of range: %d", c.WindowStart)
	}
	if c.WindowEnd < 0 || c.WindowEnd >= 24*60 {
		return fmt.Errorf("window end out of range: %d", c.WindowEnd)
	}
	if c.WindowStart == c.WindowEnd {
		return fmt.Errorf("window start and end must differ")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", c.Interval)
	}
	if c.MaxPerDay < 1 {
		return fmt.Errorf("max trades per day must be >= 1, got %d", c.MaxPerDay)
	}
	if c.ThresholdPoints < 0 {
		return fmt.Errorf("threshold points must be >= 0, got %v", c.ThresholdPoints)
	}
	if c.MaxTickAge < 0 {
		return fmt.Errorf("max tick age must be >= 0, got %v", c.MaxTickAge)
	}
	if c.StopPoints < 0 || c.TakePoints < 0 {
		return fmt.Errorf("stop/take points must be >= 0")
	}
	if c.ADXPeriod < 0 || c.ATRPeriod < 0 {
		return fmt.Errorf("indicator periods must be >= 0")
	}
	if c.ADXPeriod > 0 && c.ADXThreshold <= 0 {
		return fmt.Errorf("ADX gate requires a positive threshold")
	}
	if c.ATRPeriod > 0 && c.ATRStopMult <= 0 {
		return fmt.Errorf("ATR stop requires a positive multiple")
	}
	return nil
}

// ScheduleState is the per-day bookkeeping of the scheduler. It resets
// exactly once per calendar-day transition.
type ScheduleState struct {
	NextTradeTime time.Time
	LastTradeDate string
	DailyCount    int
}

// DailyInterval opens a position every Interval inside the trading
// window, capped per day, gated on the last open position's profit in
// points, with an equity trailing guard that flattens the book and
// freezes trading for the rest of the day.
type DailyInterval struct {
	cfg   DailyIntervalConfig
	guard *risk.EquityGuard
	rng   *rand.Rand
	log   *zap.Logger

	state   ScheduleState
	candles *market.CandleBuilder
	adx     *indicators.ADX
	atr     *indicators.ATR
}

// NewDailyInterval validates the config and builds the strategy. The
// guard may be nil to disable equity protection; the random source is
// only consulted for DirectionRandom and should be seeded by the caller
// for reproducible runs.
func NewDailyInterval(cfg DailyIntervalConfig, guard *risk.EquityGuard, rng *rand.Rand, log *zap.Logger) (*DailyInterval, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("daily-interval config: %w", err)
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &DailyInterval{
		cfg:   cfg,
		guard: guard,
		rng:   rng,
		log:   log,
	}

	if cfg.ADXPeriod > 0 || cfg.ATRPeriod > 0 {
		s.candles = market.NewCandleBuilder(cfg.CandlePeriod)
		if cfg.ADXPeriod > 0 {
			s.adx = indicators.NewADX(cfg.ADXPeriod)
		}
		if cfg.ATRPeriod > 0 {
			s.atr = indicators.NewATR(cfg.ATRPeriod)
		}
	}

	return s, nil
}

// State returns a copy of the scheduler bookkeeping.
func (s *DailyInterval) State() ScheduleState { return s.state }

// OnTick runs the guard check, the day-rollover check and the
// trade-timing check, in that order. Errors from the broker are logged
// and skipped; the scheduler never fails the host loop.
func (s *DailyInterval) OnTick(ctx context.Context, b broker.Broker, tick market.Tick) error {
	if tick.Instrument != s.cfg.Instrument {
		return nil
	}
	if !tick.Valid() {
		s.log.Debug("skipping tick with unusable prices", zap.Time("time", tick.Time))
		return nil
	}
	if s.cfg.MaxTickAge > 0 && time.Since(tick.Time) > s.cfg.MaxTickAge {
		s.log.Debug("skipping stale tick", zap.Time("time", tick.Time))
		return nil
	}

	if s.candles != nil {
		if c, done := s.candles.Add(tick); done {
			if s.adx != nil {
				s.adx.Update(c)
			}
			if s.atr != nil {
				s.atr.Update(c)
			}
		}
	}

	acct, err := b.GetAccount(ctx)
	if err != nil {
		s.log.Warn("account query failed", zap.Error(err))
		return nil
	}

	// 1) Equity guard.
	if s.guard != nil {
		if d := s.guard.Update(tick.Time, acct.Equity); d.CloseAll {
			s.onGuardTrigger(ctx, b, tick, acct.Equity, d)
			return nil
		}
	}

	// 2+3) Day rollover and trade timing.
	frozen := s.guard != nil && s.guard.Frozen(tick.Time)

	var candidate bool
	s.state, candidate = scheduleTick(s.state, &s.cfg, tick.Time, frozen)
	if !candidate {
		return nil
	}

	positions, err := b.OpenTrades(ctx, s.cfg.Instrument)
	if err != nil {
		s.log.Warn("position query failed", zap.Error(err))
		return nil
	}
	if len(positions) > 0 && s.cfg.ThresholdPoints > 0 {
		last := positions[len(positions)-1]
		pts := math.Abs(last.ProfitPoints(tick))
		if pts < s.cfg.ThresholdPoints {
			s.log.Debug("entry gated by open position",
				zap.String("trade_id", last.TradeID),
				zap.Float64("profit_points", pts),
				zap.Float64("threshold", s.cfg.ThresholdPoints))
			return nil
		}
	}

	if s.adx != nil {
		if !s.adx.Ready() || s.adx.Value() < s.cfg.ADXThreshold {
			return nil
		}
	}

	units := s.cfg.Units
	switch s.cfg.Direction {
	case DirectionSell:
		units = -units
	case DirectionRandom:
		if s.rng.Intn(2) == 1 {
			units = -units
		}
	}

	req := broker.MarketOrderRequest{Instrument: s.cfg.Instrument, Units: units}
	s.applyExits(&req, tick, units)

	fill, err := b.CreateMarketOrder(ctx, req)
	if err != nil {
		metrics.OrdersFailed.WithLabelValues(s.cfg.Instrument).Inc()
		s.log.Warn("order submission failed", zap.Error(err))
		return nil
	}
	metrics.OrdersSubmitted.WithLabelValues(s.cfg.Instrument).Inc()
	s.state.DailyCount++

	s.log.Info("position opened",
		zap.String("trade_id", fill.TradeID),
		zap.Float64("units", fill.Units),
		zap.Float64("price", fill.Price),
		zap.Int("daily_count", s.state.DailyCount))
	return nil
}

func (s *DailyInterval) onGuardTrigger(ctx context.Context, b broker.Broker, tick market.Tick, equity float64, d risk.Decision) {
	metrics.GuardTriggers.Inc()
	s.log.Warn("equity guard triggered",
		zap.Float64("equity", equity),
		zap.Float64("peak", s.guard.Peak()),
		zap.Float64("level", d.Level))

	if err := b.CloseAll(ctx, "EquityGuard"); err != nil {
		s.log.Error("guard close-all failed", zap.Error(err))
	}

	if rec, ok := b.(interface {
		RecordGuard(journal.GuardEvent) error
	}); ok {
		if err := rec.RecordGuard(journal.GuardEvent{
			Time:   tick.Time,
			Equity: equity,
			Peak:   s.guard.Peak(),
			Level:  d.Level,
			Reason: d.Reason,
		}); err != nil {
			s.log.Warn("guard event not recorded", zap.Error(err))
		}
	}

	// Baseline restarts from the post-close equity, not account balance.
	post := equity
	if after, err := b.GetAccount(ctx); err == nil {
		post = after.Equity
	}
	s.guard.ResetBaseline(post)
}

func (s *DailyInterval) applyExits(req *broker.MarketOrderRequest, tick market.Tick, units float64) {
	point := market.PointSize(s.cfg.Instrument)

	entry := tick.Ask
	side := 1.0
	if units < 0 {
		entry = tick.Bid
		side = -1.0
	}

	stopPts := s.cfg.StopPoints
	if s.atr != nil && s.atr.Ready() {
		stopPts = s.cfg.ATRStopMult * s.atr.Value() / point
	}
	if stopPts > 0 {
		stop := entry - side*stopPts*point
		req.StopLoss = &stop
	}
	if s.cfg.TakePoints > 0 {
		take := entry + side*s.cfg.TakePoints*point
		req.TakeProfit = &take
	}
}

// scheduleTick advances schedule bookkeeping for one tick and reports
// whether the tick is an entry candidate. It is a pure function of its
// inputs so the timing rules can be exercised without a broker. An
// interval slot is consumed the moment it is evaluated, whether or not
// an order follows.
func scheduleTick(st ScheduleState, cfg *DailyIntervalConfig, now time.Time, frozen bool) (ScheduleState, bool) {
	day := dayKey(now, cfg.Location)
	if day != st.LastTradeDate {
		st.LastTradeDate = day
		st.DailyCount = 0
	}

	if frozen {
		return st, false
	}
	if !cfg.inWindow(now) {
		return st, false
	}
	if !st.NextTradeTime.IsZero() && now.Before(st.NextTradeTime) {
		return st, false
	}

	st.NextTradeTime = now.Add(cfg.Interval)

	if st.DailyCount >= cfg.MaxPerDay {
		return st, false
	}
	return st, true
}

// inWindow reports whether t falls inside [WindowStart, WindowEnd) in
// minutes of day, wrapping past midnight when start > end.
func (c *DailyIntervalConfig) inWindow(t time.Time) bool {
	lt := t.In(c.Location)
	m := lt.Hour()*60 + lt.Minute()

	if c.WindowStart < c.WindowEnd {
		return m >= c.WindowStart && m < c.WindowEnd
	}
	return m >= c.WindowStart || m < c.WindowEnd
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
