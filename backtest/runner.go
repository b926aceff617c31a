package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/intervalbot/sim"
	"github.com/rustyeddy/intervalbot/strategies"
)

// RunnerOptions controls how the replay runner behaves.
type RunnerOptions struct {
	// If true, close all open positions at the end of the dataset.
	// Close reason will be CloseReason (or "EndOfReplay" if empty).
	CloseEnd    bool
	CloseReason string
}

// Result summarizes a replay run.
type Result struct {
	Ticks int
	Start time.Time
	End   time.Time

	FinalBalance float64
	FinalEquity  float64
}

// Runner drives an engine forward using a feed and strategy.
type Runner struct {
	Engine   *sim.Engine
	Feed     TickFeed
	Strategy strategies.TickStrategy
	Options  RunnerOptions
}

// Run executes the replay loop:
//  1. read next tick
//  2. engine.UpdateTick(tick)
//  3. strategy.OnTick(ctx, engine, tick)
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if r.Engine == nil {
		return Result{}, fmt.Errorf("backtest: Engine is required")
	}
	if r.Feed == nil {
		return Result{}, fmt.Errorf("backtest: Feed is required")
	}
	if r.Strategy == nil {
		return Result{}, fmt.Errorf("backtest: Strategy is required")
	}
	defer r.Feed.Close()

	var res Result

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		t, ok, err := r.Feed.Next()
		if err != nil {
			return res, err
		}
		if !ok {
			break
		}

		if res.Start.IsZero() || t.Time.Before(res.Start) {
			res.Start = t.Time
		}
		if res.End.IsZero() || t.Time.After(res.End) {
			res.End = t.Time
		}
		res.Ticks++

		if err := r.Engine.UpdateTick(t); err != nil {
			return res, err
		}
		if err := r.Strategy.OnTick(ctx, r.Engine, t); err != nil {
			return res, err
		}
	}

	if r.Options.CloseEnd {
		reason := r.Options.CloseReason
		if reason == "" {
			reason = "EndOfReplay"
		}
		if err := r.Engine.CloseAll(ctx, reason); err != nil {
			return res, err
		}
	}

	acct, err := r.Engine.GetAccount(ctx)
	if err != nil {
		return res, err
	}
	res.FinalBalance = acct.Balance
	res.FinalEquity = acct.Equity

	return res, nil
}
