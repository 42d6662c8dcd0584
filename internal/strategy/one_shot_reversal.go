package strategy

import (
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/order"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/risk"
	"github.com/SaidJacobo/forex-ml-bot-sub000/pkg/types"
)

// OneShotReversal holds a single position at a time and flips it when the
// upstream signal reverses. The simplest variant: no averaging, fixed stop
// distance, reward as a multiple of risk.
type OneShotReversal struct {
	params Params
}

// NewOneShotReversal builds the one-position reversal variant.
func NewOneShotReversal(params Params) *OneShotReversal {
	return &OneShotReversal{params: params}
}

func (s *OneShotReversal) Name() string {
	return "OneShotReversal"
}

func (s *OneShotReversal) EnterSignal(bar types.Bar) types.Side {
	return bar.Side
}

func (s *OneShotReversal) CloseSignal(bar types.Bar, snap Snapshot) []Action {
	return closeChecks(bar, snap, s.params)
}

func (s *OneShotReversal) OrderManagement(bar types.Bar, history []types.Bar, snap Snapshot) (Decision, error) {
	if closes := s.CloseSignal(bar, snap); len(closes) > 0 {
		return Decision{Actions: closes, Reason: "protective exit"}, nil
	}

	signal := s.EnterSignal(bar)

	if len(snap.OpenOrders) > 0 {
		current := snap.OpenOrders[0].Direction
		if signal != types.SideNone {
			if wanted, err := directionFor(signal); err == nil && wanted != current {
				// Opposite signal: flatten, then open the reversal.
				var actions []Action
				for _, o := range snap.OpenOrders {
					actions = append(actions, Action{
						Type:   ActionClose,
						Ticket: o.Ticket,
						Price:  bar.Close,
						Reason: order.CloseSignal,
					})
				}
				open, err := s.openAction(wanted, bar, snap.Balance)
				if err != nil {
					return Decision{}, err
				}
				actions = append(actions, open)
				return Decision{Actions: actions, Reason: "signal reversal"}, nil
			}
		}
		return s.trailDecision(bar, snap), nil
	}

	if signal == types.SideNone {
		return Decision{}, nil
	}
	dir, err := directionFor(signal)
	if err != nil {
		return Decision{}, nil
	}
	open, err := s.openAction(dir, bar, snap.Balance)
	if err != nil {
		return Decision{}, err
	}
	return Decision{Actions: []Action{open}, Reason: "entry signal"}, nil
}

// trailDecision follows the held position with a stop re-anchored at the
// bar close. The trader drops these updates unless trailing is enabled and
// the new stop is strictly tighter than the current one.
func (s *OneShotReversal) trailDecision(bar types.Bar, snap Snapshot) Decision {
	p := s.params
	var actions []Action
	for _, o := range snap.OpenOrders {
		sl, err := risk.StopLoss(o.Direction, bar.Close, p.StopDistancePips, p.Meta.PipValue)
		if err != nil {
			continue
		}
		actions = append(actions, Action{
			Type:     ActionUpdate,
			Ticket:   o.Ticket,
			StopLoss: order.Float64Ptr(sl),
		})
	}
	if len(actions) == 0 {
		return Decision{}
	}
	return Decision{Actions: actions, Reason: "trailing stop"}
}

func (s *OneShotReversal) openAction(dir order.Direction, bar types.Bar, balance float64) (Action, error) {
	p := s.params
	units, err := risk.PositionSize(balance, p.RiskPct, p.StopDistancePips, p.Meta)
	if err != nil {
		return Action{}, err
	}
	sl, err := risk.StopLoss(dir, bar.Close, p.StopDistancePips, p.Meta.PipValue)
	if err != nil {
		return Action{}, err
	}
	tp, err := risk.TakeProfit(dir, bar.Close, p.RiskReward, p.StopDistancePips, p.Meta.PipValue)
	if err != nil {
		return Action{}, err
	}
	return Action{
		Type:       ActionOpen,
		Direction:  dir,
		Units:      units,
		Price:      bar.Close,
		StopLoss:   order.Float64Ptr(sl),
		TakeProfit: order.Float64Ptr(tp),
	}, nil
}

func (s *OneShotReversal) ResetForNewPeriod() {}
