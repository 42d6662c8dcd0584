package portfolio

import (
	"time"

	engerrors "github.com/SaidJacobo/forex-ml-bot-sub000/internal/errors"
)

// ExcursionResult summarizes the time-to-target / time-to-ruin walk.
// Times are counted in half-month steps, the simulation's granularity.
type ExcursionResult struct {
	HitsUp      int
	HitsDown    int
	TimesToUp   []int
	TimesToDown []int
}

// ExcursionSimulation estimates how long the capital path historically took
// to move upPct up or downPct down. The curve is rescaled to
// initialCapital, sampled at each month's local maximum and minimum, and
// from every sampled point the walk advances in half-month steps until the
// cumulative percentage change from that point first crosses +upPct or
// -downPct. Walks that reach the end of the series without crossing either
// threshold are discarded.
//
// This is a discrete historical simulation, not a continuous-time model;
// the half-month stepping is part of its contract.
func ExcursionSimulation(curve Curve, initialCapital, upPct, downPct float64) (ExcursionResult, error) {
	var res ExcursionResult
	if len(curve) < 2 {
		return res, engerrors.Newf(engerrors.KindDegenerateCurve, "portfolio", "ExcursionSimulation",
			"need at least 2 points, got %d", len(curve))
	}
	if err := curve.Validate(); err != nil {
		return res, err
	}

	scale := 1.0
	if first := curve.First().Value; first != 0 {
		scale = initialCapital / first
	}

	grid := halfMonthGrid(curve, scale)
	for _, sample := range monthlyExtrema(curve, scale) {
		steps := 0
		for _, g := range grid {
			if !g.Date.After(sample.Date) {
				continue
			}
			steps++
			change := (g.Value/sample.Value - 1) * 100
			if change >= upPct {
				res.HitsUp++
				res.TimesToUp = append(res.TimesToUp, steps)
				break
			}
			if change <= -downPct {
				res.HitsDown++
				res.TimesToDown = append(res.TimesToDown, steps)
				break
			}
		}
	}
	return res, nil
}

// halfMonthGrid resamples the curve at the 1st and 15th of every month,
// forward-filled.
func halfMonthGrid(curve Curve, scale float64) []Point {
	first := day(curve.First().Date)
	last := day(curve.Last().Date)

	var grid []Point
	cursor := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(last) {
		for _, dom := range []int{1, 15} {
			at := time.Date(cursor.Year(), cursor.Month(), dom, 0, 0, 0, 0, time.UTC)
			if at.Before(first) || at.After(last) {
				continue
			}
			grid = append(grid, Point{Date: at, Value: equityAt(curve, at) * scale})
		}
		cursor = cursor.AddDate(0, 1, 0)
	}
	return grid
}

// monthlyExtrema returns each calendar month's highest and lowest curve
// points, the starting anchors of the excursion walks.
func monthlyExtrema(curve Curve, scale float64) []Point {
	type extrema struct {
		high, low Point
	}
	byMonth := make(map[string]*extrema)
	var monthKeys []string

	for _, p := range curve {
		scaled := Point{Date: p.Date, Value: p.Value * scale}
		key := p.Date.UTC().Format("2006-01")
		e, ok := byMonth[key]
		if !ok {
			byMonth[key] = &extrema{high: scaled, low: scaled}
			monthKeys = append(monthKeys, key)
			continue
		}
		if scaled.Value > e.high.Value {
			e.high = scaled
		}
		if scaled.Value < e.low.Value {
			e.low = scaled
		}
	}

	samples := make([]Point, 0, len(monthKeys)*2)
	for _, key := range monthKeys {
		e := byMonth[key]
		samples = append(samples, e.high)
		if !e.low.Date.Equal(e.high.Date) {
			samples = append(samples, e.low)
		}
	}
	return samples
}
