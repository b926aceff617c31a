package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuard(t *testing.T, target, trailing, initial float64) *EquityGuard {
	t.Helper()
	g, err := NewEquityGuard(GuardPolicy{TargetPct: target, TrailingPct: trailing}, initial, time.UTC)
	require.NoError(t, err)
	return g
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 4, hour, minute, 0, 0, time.UTC)
}

func TestGuardPolicyValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		policy  GuardPolicy
		wantErr bool
	}{
		{"ok", GuardPolicy{TargetPct: 2, TrailingPct: 50}, false},
		{"zero_target", GuardPolicy{TargetPct: 0, TrailingPct: 50}, true},
		{"negative_target", GuardPolicy{TargetPct: -1, TrailingPct: 50}, true},
		{"zero_trailing", GuardPolicy{TargetPct: 2, TrailingPct: 0}, true},
		{"trailing_over_100", GuardPolicy{TargetPct: 2, TrailingPct: 101}, true},
		{"trailing_exactly_100", GuardPolicy{TargetPct: 2, TrailingPct: 100}, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.policy.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGuardArmsAtTarget(t *testing.T) {
	t.Parallel()

	g := newGuard(t, 2, 50, 10000)

	d := g.Update(at(9, 0), 10100) // +1%, below target
	assert.False(t, d.CloseAll)
	assert.False(t, g.Armed())

	d = g.Update(at(9, 1), 10200) // +2%, arms
	assert.False(t, d.CloseAll)
	assert.True(t, g.Armed())
}

func TestGuardPeakMonotone(t *testing.T) {
	t.Parallel()

	g := newGuard(t, 2, 50, 10000)

	g.Update(at(9, 0), 10300)
	assert.InDelta(t, 10300, g.Peak(), 1e-9)

	g.Update(at(9, 1), 10100)
	assert.InDelta(t, 10300, g.Peak(), 1e-9, "peak must not decrease")

	g.Update(at(9, 2), 10400)
	assert.InDelta(t, 10400, g.Peak(), 1e-9)
}

func TestGuardTrailLevelFollowsPeak(t *testing.T) {
	t.Parallel()

	g := newGuard(t, 2, 50, 10000)
	g.Update(at(9, 0), 10400) // armed, peak 10400

	// level = peak - (peak-initial)*50% = 10400 - 200 = 10200
	assert.InDelta(t, 10200, g.TrailLevel(), 1e-9)
	assert.LessOrEqual(t, g.TrailLevel(), g.Peak())

	g.Update(at(9, 1), 10600)
	assert.InDelta(t, 10300, g.TrailLevel(), 1e-9)
	assert.LessOrEqual(t, g.TrailLevel(), g.Peak())
}

func TestGuardTriggersAndFreezesDay(t *testing.T) {
	t.Parallel()

	g := newGuard(t, 2, 50, 10000)

	g.Update(at(9, 0), 10600) // armed, peak 10600, level 10300
	d := g.Update(at(9, 5), 10299)
	require.True(t, d.CloseAll)
	assert.Equal(t, "TrailingStop", d.Reason)
	assert.InDelta(t, 10300, d.Level, 1e-9)
	assert.True(t, g.Triggered())
	assert.True(t, g.Frozen(at(9, 5)))

	// Baseline resets to the post-close equity, not the old baseline.
	g.ResetBaseline(10295)
	assert.InDelta(t, 10295, g.Initial(), 1e-9)
	assert.InDelta(t, 10295, g.Peak(), 1e-9)

	// Same day: frozen, no re-trigger even on further drops.
	d = g.Update(at(15, 0), 9000)
	assert.False(t, d.CloseAll)
	assert.True(t, g.Frozen(at(15, 0)))

	// Next day: freeze clears.
	nextDay := at(9, 0).AddDate(0, 0, 1)
	d = g.Update(nextDay, 9000)
	assert.False(t, d.CloseAll)
	assert.False(t, g.Frozen(nextDay))
	assert.False(t, g.Triggered())
}

func TestGuardNoTriggerWhileDisarmed(t *testing.T) {
	t.Parallel()

	g := newGuard(t, 5, 50, 10000)

	// Down 10% without ever arming: guard stays quiet.
	d := g.Update(at(9, 0), 9000)
	assert.False(t, d.CloseAll)
	assert.False(t, g.Armed())
}

func TestGuardDayBoundaryUsesLocation(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	g, err := NewEquityGuard(GuardPolicy{TargetPct: 1, TrailingPct: 100}, 10000, loc)
	require.NoError(t, err)

	// Trigger at 23:30 New York time.
	trig := time.Date(2024, 3, 4, 23, 30, 0, 0, loc)
	g.Update(trig, 10200)
	d := g.Update(trig.Add(time.Minute), 10000)
	require.True(t, d.CloseAll)

	// 30 minutes later it is already the next New York day.
	later := trig.Add(40 * time.Minute)
	assert.False(t, g.Frozen(later))
}

func TestNewEquityGuardRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := NewEquityGuard(GuardPolicy{TargetPct: 2, TrailingPct: 50}, 0, time.UTC)
	assert.Error(t, err)

	_, err = NewEquityGuard(GuardPolicy{}, 10000, time.UTC)
	assert.Error(t, err)
}
