// Package risk provides the equity drawdown guard: a trailing stop on
// account equity that halts trading for the rest of the day once gains
// pull back by a configured fraction from their peak.
package risk

import (
	"fmt"
	"time"
)

type GuardPolicy struct {
	// TargetPct is the gain over the baseline, in percent, that arms the
	// trailing stop. e.g. 2.0 arms once equity is up 2%.
	TargetPct float64

	// TrailingPct is the fraction of the peak gain, in percent, that may
	// be given back before the guard triggers. 100 means the guard fires
	// only when the whole gain is gone.
	TrailingPct float64
}

func (p GuardPolicy) Validate() error {
	if p.TargetPct <= 0 {
		return fmt.Errorf("guard target percent must be positive, got %v", p.TargetPct)
	}
	if p.TrailingPct <= 0 || p.TrailingPct > 100 {
		return fmt.Errorf("guard trailing percent must be in (0,100], got %v", p.TrailingPct)
	}
	return nil
}

// Decision is the per-tick guard verdict. CloseAll means the trailing
// level was breached: the caller must flatten all positions and then
// reset the baseline to the post-close equity.
type Decision struct {
	CloseAll bool
	Reason   string
	Level    float64
}

// EquityGuard tracks baseline and peak equity for a single account.
// All methods are called from the single tick callback; no locking.
type EquityGuard struct {
	policy GuardPolicy
	loc    *time.Location

	initial   float64
	peak      float64
	armed     bool
	triggered bool
	frozenDay string // calendar day trading is frozen for, "" when clear
}

// NewEquityGuard starts a guard from the current account equity. The
// location defines the calendar day used for the post-trigger freeze.
func NewEquityGuard(p GuardPolicy, initialEquity float64, loc *time.Location) (*EquityGuard, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if initialEquity <= 0 {
		return nil, fmt.Errorf("initial equity must be positive, got %v", initialEquity)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &EquityGuard{
		policy:  p,
		loc:     loc,
		initial: initialEquity,
		peak:    initialEquity,
	}, nil
}

// Update consumes the current equity. The peak only ratchets up; it is
// reset solely by ResetBaseline after a trigger.
func (g *EquityGuard) Update(now time.Time, equity float64) Decision {
	day := dayKey(now, g.loc)

	// Day rollover clears a previous trigger's freeze.
	if g.frozenDay != "" && g.frozenDay != day {
		g.frozenDay = ""
		g.triggered = false
	}

	if equity > g.peak {
		g.peak = equity
	}

	if g.frozenDay == day && g.frozenDay != "" {
		return Decision{}
	}

	if !g.armed && g.initial > 0 {
		gainPct := (equity - g.initial) / g.initial * 100
		if gainPct >= g.policy.TargetPct {
			g.armed = true
		}
	}

	if g.armed {
		level := g.TrailLevel()
		if equity <= level {
			g.armed = false
			g.triggered = true
			g.frozenDay = day
			return Decision{CloseAll: true, Reason: "TrailingStop", Level: level}
		}
	}

	return Decision{}
}

// ResetBaseline re-anchors the guard after a trigger's CloseAll, using the
// post-close equity as the new baseline.
func (g *EquityGuard) ResetBaseline(equity float64) {
	g.initial = equity
	g.peak = equity
}

// Frozen reports whether trading is halted for now's calendar day.
func (g *EquityGuard) Frozen(now time.Time) bool {
	return g.frozenDay != "" && g.frozenDay == dayKey(now, g.loc)
}

// TrailLevel is the equity level at which an armed guard triggers. It is
// always at or below the peak.
func (g *EquityGuard) TrailLevel() float64 {
	return g.peak - (g.peak-g.initial)*g.policy.TrailingPct/100
}

func (g *EquityGuard) Initial() float64 { return g.initial }
func (g *EquityGuard) Peak() float64    { return g.peak }
func (g *EquityGuard) Armed() bool      { return g.armed }
func (g *EquityGuard) Triggered() bool  { return g.triggered }

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
