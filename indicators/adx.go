package indicators

import (
	"fmt"

	"github.com/rustyeddy/intervalbot/market"
)

// ADX implements Wilder's Average Directional Index (trend strength).
//
//	adx := indicators.NewADX(14)
//	adx.Update(candle)
//	if adx.Ready() && adx.Value() >= 20 { ... }
type ADX struct {
	period int

	prev     market.Candle
	havePrev bool

	// Wilder-smoothed values after warmup
	trN  float64
	pdmN float64
	mdmN float64

	adx     float64
	dxSum   float64
	dxCount int

	count int
	ready bool
}

func NewADX(period int) *ADX {
	if period <= 0 {
		panic("ADX period must be > 0")
	}
	return &ADX{period: period}
}

func (a *ADX) Name() string {
	return fmt.Sprintf("ADX(%d)", a.period)
}

// Warmup: the first candle seeds prev, the next period candles seed the
// smoothed TR/+DM/-DM (emitting the first DX), and period DX values seed
// ADX. Ready after 2*period candles.
func (a *ADX) Warmup() int {
	return 2 * a.period
}

func (a *ADX) Reset() {
	*a = ADX{period: a.period}
}

func (a *ADX) Ready() bool {
	return a.ready
}

func (a *ADX) Value() float64 {
	if !a.ready {
		return 0
	}
	return a.adx
}

func (a *ADX) Update(c market.Candle) {
	if !a.havePrev {
		a.prev = c
		a.havePrev = true
		a.count = 1
		return
	}

	// Directional movement from current vs previous highs/lows
	upMove := c.High - a.prev.High
	downMove := a.prev.Low - c.Low

	var pdm, mdm float64
	if upMove > downMove && upMove > 0 {
		pdm = upMove
	}
	if downMove > upMove && downMove > 0 {
		mdm = downMove
	}

	tr := trueRange(c, a.prev)
	a.prev = c
	a.count++

	// Phase A: accumulate initial averages up to period samples.
	if a.count <= a.period+1 {
		a.trN += tr
		a.pdmN += pdm
		a.mdmN += mdm

		if a.count == a.period+1 {
			p := float64(a.period)
			a.trN /= p
			a.pdmN /= p
			a.mdmN /= p

			a.accumulateDX()
		}
		return
	}

	// Phase B: Wilder smoothing of TR/+DM/-DM.
	p := float64(a.period)
	a.trN = a.trN - a.trN/p + tr
	a.pdmN = a.pdmN - a.pdmN/p + pdm
	a.mdmN = a.mdmN - a.mdmN/p + mdm

	a.accumulateDX()
}

func (a *ADX) accumulateDX() {
	dx := a.dx()

	if a.ready {
		// Smooth ADX itself.
		a.adx = (a.adx*float64(a.period-1) + dx) / float64(a.period)
		return
	}

	a.dxSum += dx
	a.dxCount++
	if a.dxCount == a.period {
		a.adx = a.dxSum / float64(a.period)
		a.ready = true
	}
}

func (a *ADX) dx() float64 {
	if a.trN == 0 {
		return 0
	}
	pdi := 100 * a.pdmN / a.trN
	mdi := 100 * a.mdmN / a.trN
	sum := pdi + mdi
	if sum == 0 {
		return 0
	}
	diff := pdi - mdi
	if diff < 0 {
		diff = -diff
	}
	return 100 * diff / sum
}

// PlusDI and MinusDI expose the directional components for entry filters.
func (a *ADX) PlusDI() float64 {
	if a.trN == 0 {
		return 0
	}
	return 100 * a.pdmN / a.trN
}

func (a *ADX) MinusDI() float64 {
	if a.trN == 0 {
		return 0
	}
	return 100 * a.mdmN / a.trN
}
