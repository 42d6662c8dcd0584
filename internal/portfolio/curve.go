package portfolio

import (
	"time"

	engerrors "github.com/SaidJacobo/forex-ml-bot-sub000/internal/errors"
)

// Point is one dated equity sample.
type Point struct {
	Date  time.Time
	Value float64
}

// Curve is an ordered, date-indexed equity series. Dates must strictly
// increase; the first value is the run's starting capital.
type Curve []Point

// Validate rejects curves with non-monotonic or duplicate dates. The curve
// is rejected rather than sorted: silent reordering could hide a data bug
// upstream.
func (c Curve) Validate() error {
	for i := 1; i < len(c); i++ {
		if !c[i-1].Date.Before(c[i].Date) {
			return engerrors.Newf(engerrors.KindCalendarMismatch, "portfolio", "Validate",
				"dates not strictly increasing at index %d (%s then %s)",
				i, c[i-1].Date.Format("2006-01-02"), c[i].Date.Format("2006-01-02"))
		}
	}
	return nil
}

// First returns the curve's first point.
func (c Curve) First() Point {
	return c[0]
}

// Last returns the curve's last point.
func (c Curve) Last() Point {
	return c[len(c)-1]
}

// day truncates a timestamp to its UTC calendar day.
func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dailyCalendar enumerates every day of [from, to] inclusive.
func dailyCalendar(from, to time.Time) []time.Time {
	var days []time.Time
	for d := day(from); !d.After(day(to)); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// reindexDaily projects the curve onto calendar using last-known-value
// forward-fill. Days before the curve starts are back-filled with its first
// value, the run's starting capital, so a late-starting strategy
// contributes zero change until it goes live.
func reindexDaily(c Curve, calendar []time.Time) []float64 {
	values := make([]float64, len(calendar))
	idx := 0
	last := c.First().Value
	for i, d := range calendar {
		for idx < len(c) && !day(c[idx].Date).After(d) {
			last = c[idx].Value
			idx++
		}
		values[i] = last
	}
	return values
}

// pctChanges returns day-over-day fractional changes, zero on the first day.
func pctChanges(values []float64) []float64 {
	changes := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		if values[i-1] != 0 {
			changes[i] = (values[i] - values[i-1]) / values[i-1]
		}
	}
	return changes
}
