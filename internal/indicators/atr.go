package indicators

import (
	"errors"
	"math"

	"github.com/SaidJacobo/forex-ml-bot-sub000/pkg/types"
)

// ATR measures volatility as the smoothed true range. The grid strategy
// uses it to scale the re-entry distance so averaging slows down in
// volatile markets.
type ATR struct {
	period      int
	ema         *EMA // Wilder-style smoothing of the true range
	lastClose   float64
	initialized bool
}

// NewATR creates an ATR calculator over the given period.
func NewATR(period int) *ATR {
	return &ATR{
		period: period,
		ema:    NewEMA(period),
	}
}

// Calculate returns the ATR over data. The first call consumes the whole
// slice to warm the smoother; later calls only fold in the latest bar.
func (a *ATR) Calculate(data []types.Bar) (float64, error) {
	if len(data) < a.period {
		return 0, errors.New("insufficient data points for ATR calculation")
	}
	if !a.initialized {
		for i, bar := range data {
			tr := bar.High - bar.Low
			if i > 0 {
				tr = trueRange(bar, a.lastClose)
			}
			a.ema.Update(tr)
			a.lastClose = bar.Close
		}
		a.initialized = true
		return a.ema.Value(), nil
	}

	latest := data[len(data)-1]
	v := a.ema.Update(trueRange(latest, a.lastClose))
	a.lastClose = latest.Close
	return v, nil
}

// Value returns the last computed ATR without consuming new data.
func (a *ATR) Value() float64 {
	return a.ema.Value()
}

// RequiredPeriods is the minimum history before results are meaningful.
func (a *ATR) RequiredPeriods() int {
	return a.period + 1 // extra bar for the first true range
}

// Reset clears state between walk-forward folds.
func (a *ATR) Reset() {
	a.ema.Reset()
	a.lastClose = 0
	a.initialized = false
}

func trueRange(bar types.Bar, prevClose float64) float64 {
	hl := bar.High - bar.Low
	hc := math.Abs(bar.High - prevClose)
	lc := math.Abs(bar.Low - prevClose)
	return math.Max(hl, math.Max(hc, lc))
}
