package portfolio

import (
	"time"

	engerrors "github.com/SaidJacobo/forex-ml-bot-sub000/internal/errors"
)

// BuildPortfolioCurve combines independently produced equity curves into
// one capital path. Each input is reindexed onto the union daily calendar
// and reduced to day-over-day percentage changes; the portfolio then
// compounds the sum of percentage contributions. Summing percentages
// instead of absolute equities avoids double-counting the shared capital
// behind concurrently trading strategies.
//
// The first output value equals initialCapital exactly. Any invalid input
// curve aborts the whole build: the aggregation invariants are global.
func BuildPortfolioCurve(curves map[string]Curve, initialCapital float64) (Curve, error) {
	if len(curves) == 0 {
		return nil, engerrors.New(engerrors.KindDegenerateCurve, "portfolio", "BuildPortfolioCurve",
			"no input curves")
	}

	var from, to time.Time
	for name, c := range curves {
		if len(c) == 0 {
			return nil, engerrors.Newf(engerrors.KindDegenerateCurve, "portfolio", "BuildPortfolioCurve",
				"curve %q is empty", name)
		}
		if err := c.Validate(); err != nil {
			return nil, engerrors.Wrap(err, engerrors.KindCalendarMismatch, "portfolio", "BuildPortfolioCurve")
		}
		if from.IsZero() || c.First().Date.Before(from) {
			from = c.First().Date
		}
		if to.IsZero() || c.Last().Date.After(to) {
			to = c.Last().Date
		}
	}

	calendar := dailyCalendar(from, to)
	changes := make([][]float64, 0, len(curves))
	for _, c := range curves {
		changes = append(changes, pctChanges(reindexDaily(c, calendar)))
	}

	out := make(Curve, len(calendar))
	out[0] = Point{Date: calendar[0], Value: initialCapital}
	for i := 1; i < len(calendar); i++ {
		contribution := 0.0
		for _, ch := range changes {
			contribution += ch[i]
		}
		out[i] = Point{
			Date:  calendar[i],
			Value: out[i-1].Value + out[i-1].Value*contribution,
		}
	}
	return out, nil
}

// MaxDrawdown returns the deepest peak-to-trough decline as a negative
// percentage of the running peak, and the date it bottomed out.
func MaxDrawdown(c Curve) (float64, time.Time, error) {
	if len(c) < 2 {
		return 0, time.Time{}, engerrors.Newf(engerrors.KindDegenerateCurve, "portfolio", "MaxDrawdown",
			"need at least 2 points, got %d", len(c))
	}
	if err := c.Validate(); err != nil {
		return 0, time.Time{}, err
	}

	peak := c[0].Value
	worst := 0.0
	worstDate := c[0].Date
	for _, p := range c {
		if p.Value > peak {
			peak = p.Value
		}
		if peak <= 0 {
			continue
		}
		dd := (p.Value - peak) / peak * 100
		if dd < worst {
			worst = dd
			worstDate = p.Date
		}
	}
	return worst, worstDate, nil
}
