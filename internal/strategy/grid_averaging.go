package strategy

import (
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/indicators"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/order"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/risk"
	"github.com/SaidJacobo/forex-ml-bot-sub000/pkg/types"
)

// GridAveraging opens like the one-shot variant but, instead of stopping
// out a losing position, adds same-direction orders once price pulls back
// beyond a volatility-scaled distance and a reversal candle confirms. Every
// add recomputes one shared stop and target for the whole group, so the
// grid risks a single balance fraction no matter how many entries share it.
type GridAveraging struct {
	params Params
	atr    *indicators.ATR
}

// NewGridAveraging builds the grid/averaging variant.
func NewGridAveraging(params Params) *GridAveraging {
	return &GridAveraging{
		params: params,
		atr:    indicators.NewATR(params.ATRPeriod),
	}
}

func (s *GridAveraging) Name() string {
	return "GridAveraging"
}

func (s *GridAveraging) EnterSignal(bar types.Bar) types.Side {
	return bar.Side
}

func (s *GridAveraging) CloseSignal(bar types.Bar, snap Snapshot) []Action {
	return closeChecks(bar, snap, s.params)
}

// OrderManagement evaluates one bar. history holds all bars up to and
// including the current one; the ATR is folded forward every bar so it
// stays warm while flat.
func (s *GridAveraging) OrderManagement(bar types.Bar, history []types.Bar, snap Snapshot) (Decision, error) {
	atr := 0.0
	if len(history) >= s.atr.RequiredPeriods() {
		if v, err := s.atr.Calculate(history); err == nil {
			atr = v
		}
	}

	if closes := s.CloseSignal(bar, snap); len(closes) > 0 {
		return Decision{Actions: closes, Reason: "protective exit"}, nil
	}

	if len(snap.OpenOrders) == 0 {
		return s.enter(bar, snap)
	}
	return s.average(bar, history, snap, atr)
}

// enter opens the first order of a grid on an upstream signal.
func (s *GridAveraging) enter(bar types.Bar, snap Snapshot) (Decision, error) {
	signal := s.EnterSignal(bar)
	if signal == types.SideNone {
		return Decision{}, nil
	}
	dir, err := directionFor(signal)
	if err != nil {
		return Decision{}, nil
	}

	p := s.params
	units, err := risk.PositionSize(snap.Balance, p.RiskPct, p.StopDistancePips, p.Meta)
	if err != nil {
		return Decision{}, err
	}
	sl, err := risk.StopLoss(dir, bar.Close, p.StopDistancePips, p.Meta.PipValue)
	if err != nil {
		return Decision{}, err
	}
	tp, err := risk.TakeProfit(dir, bar.Close, p.RiskReward, p.StopDistancePips, p.Meta.PipValue)
	if err != nil {
		return Decision{}, err
	}
	return Decision{
		Actions: []Action{{
			Type:       ActionOpen,
			Direction:  dir,
			Units:      units,
			Price:      bar.Close,
			StopLoss:   order.Float64Ptr(sl),
			TakeProfit: order.Float64Ptr(tp),
		}},
		Reason: "grid entry",
	}, nil
}

// average adds to a losing group on pullback confirmation and moves every
// member onto the recomputed shared levels.
func (s *GridAveraging) average(bar types.Bar, history []types.Bar, snap Snapshot, atr float64) (Decision, error) {
	p := s.params
	open := snap.OpenOrders
	if p.MaxGridOrders > 0 && len(open) >= p.MaxGridOrders {
		return Decision{}, nil
	}
	if atr <= 0 || len(history) < 2 {
		return Decision{}, nil
	}

	last := open[len(open)-1]
	dir := last.Direction

	// Adverse move since the most recent entry, in price terms.
	pullback := (last.OpenPrice - bar.Close) * dir.Sign()
	if pullback <= atr*p.ATRDistanceFactor {
		return Decision{}, nil
	}

	prev := history[len(history)-2]
	confirmed := bullishReversal(prev, bar)
	if dir == order.Sell {
		confirmed = bearishReversal(prev, bar)
	}
	if !confirmed {
		return Decision{}, nil
	}

	baseUnits, err := risk.PositionSize(snap.Balance, p.RiskPct, p.StopDistancePips, p.Meta)
	if err != nil {
		return Decision{}, err
	}
	scale := float64(snap.LossStreak) * p.GridMultiplier
	if scale < 1 {
		scale = 1
	}
	units := baseUnits * scale

	gridSL, err := risk.GridStopLoss(dir, bar.Close, units, open, snap.Balance, p.RiskPct)
	if err != nil {
		return Decision{}, err
	}
	gridTP, err := risk.GridTakeProfit(dir, bar.Close, units, open, snap.Balance, p.RiskPct*p.RiskReward)
	if err != nil {
		return Decision{}, err
	}

	actions := make([]Action, 0, len(open)+1)
	for _, o := range open {
		actions = append(actions, Action{
			Type:         ActionUpdate,
			Ticket:       o.Ticket,
			StopLoss:     order.Float64Ptr(gridSL),
			TakeProfit:   order.Float64Ptr(gridTP),
			GroupReprice: true,
		})
	}
	actions = append(actions, Action{
		Type:       ActionOpen,
		Direction:  dir,
		Units:      units,
		Price:      bar.Close,
		StopLoss:   order.Float64Ptr(gridSL),
		TakeProfit: order.Float64Ptr(gridTP),
	})
	return Decision{Actions: actions, Reason: "grid average"}, nil
}

func (s *GridAveraging) ResetForNewPeriod() {
	s.atr.Reset()
}
