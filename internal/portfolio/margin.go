package portfolio

import (
	"sort"
	"time"
)

// Trade is the slice of a closed order the margin timeline needs: when the
// margin was committed, when it was released, and how much.
type Trade struct {
	OpenTime  time.Time
	CloseTime time.Time
	Margin    float64
}

// MarginThresholds are the broker's margin-call and stop-out levels, in
// percent of equity over committed margin. Defaults follow the common
// retail convention but stay configurable per broker.
type MarginThresholds struct {
	CallPct    float64
	StopOutPct float64
}

// DefaultMarginThresholds is the 100%/50% retail convention.
func DefaultMarginThresholds() MarginThresholds {
	return MarginThresholds{CallPct: 100, StopOutPct: 50}
}

// MarginRow joins running committed margin with same-day portfolio equity.
type MarginRow struct {
	Date     time.Time
	Margin   float64
	Equity   float64
	UsagePct float64 // equity / margin * 100
}

type marginEvent struct {
	at     time.Time
	amount float64 // +margin on open, -margin on close
	open   bool
}

// MarginTimeline builds the running margin commitment from the trade log,
// joins it against the portfolio curve, and flags the rows breaching the
// margin-call and stop-out thresholds. Events at the same instant apply
// opens before closes so a simultaneous open/close nets correctly.
func MarginTimeline(trades []Trade, curve Curve, thresholds MarginThresholds) (rows, calls, stopOuts []MarginRow) {
	events := make([]marginEvent, 0, len(trades)*2)
	for _, tr := range trades {
		events = append(events, marginEvent{at: tr.OpenTime, amount: tr.Margin, open: true})
		if !tr.CloseTime.IsZero() {
			events = append(events, marginEvent{at: tr.CloseTime, amount: -tr.Margin})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].at.Equal(events[j].at) {
			return events[i].open && !events[j].open
		}
		return events[i].at.Before(events[j].at)
	})

	running := 0.0
	for _, ev := range events {
		running += ev.amount
		row := MarginRow{
			Date:   day(ev.at),
			Margin: running,
			Equity: equityAt(curve, ev.at),
		}
		if row.Margin > 0 {
			row.UsagePct = row.Equity / row.Margin * 100
			if row.UsagePct < thresholds.StopOutPct {
				stopOuts = append(stopOuts, row)
			} else if row.UsagePct < thresholds.CallPct {
				calls = append(calls, row)
			}
		}
		rows = append(rows, row)
	}
	return rows, calls, stopOuts
}

// equityAt forward-fills the portfolio value for an arbitrary timestamp.
func equityAt(curve Curve, at time.Time) float64 {
	if len(curve) == 0 {
		return 0
	}
	d := day(at)
	value := curve.First().Value
	for _, p := range curve {
		if day(p.Date).After(d) {
			break
		}
		value = p.Value
	}
	return value
}
