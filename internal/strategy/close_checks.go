package strategy

import (
	"fmt"

	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/order"
	"github.com/SaidJacobo/forex-ml-bot-sub000/pkg/types"
)

// closeChecks runs the shared per-bar exit logic. Per order: stop-loss is
// evaluated before take-profit, so a bar whose range breaches both (a gap
// through the position) settles on the losing side. Then the holding
// period, then the group lock-in.
func closeChecks(bar types.Bar, snap Snapshot, p Params) []Action {
	var actions []Action

	for _, o := range snap.OpenOrders {
		switch {
		case o.HitStopLoss(bar.High, bar.Low):
			actions = append(actions, Action{
				Type:   ActionClose,
				Ticket: o.Ticket,
				Price:  *o.StopLoss,
				Reason: order.CloseStopLoss,
			})
		case o.HitTakeProfit(bar.High, bar.Low):
			actions = append(actions, Action{
				Type:   ActionClose,
				Ticket: o.Ticket,
				Price:  *o.TakeProfit,
				Reason: order.CloseTakeProfit,
			})
		case p.MaxHoldPeriod > 0 && bar.Timestamp.Sub(o.OpenTime) >= p.MaxHoldPeriod:
			actions = append(actions, Action{
				Type:   ActionClose,
				Ticket: o.Ticket,
				Price:  bar.Close,
				Reason: order.CloseTime,
			})
		}
	}

	if len(actions) > 0 {
		return actions
	}

	// Lock-in: flatten the whole group once floating profit crosses the
	// configured fraction of balance, regardless of individual levels.
	if p.LockInPct > 0 && len(snap.OpenOrders) > 0 {
		floating := order.GroupProfit(snap.OpenOrders, bar.Close)
		if floating >= snap.Balance*p.LockInPct/100 {
			for _, o := range snap.OpenOrders {
				actions = append(actions, Action{
					Type:   ActionClose,
					Ticket: o.Ticket,
					Price:  bar.Close,
					Reason: order.CloseLockIn,
				})
			}
		}
	}

	return actions
}

// directionFor maps the bar's discrete side to an order direction.
func directionFor(side types.Side) (order.Direction, error) {
	switch side {
	case types.SideBuy:
		return order.Buy, nil
	case types.SideSell:
		return order.Sell, nil
	default:
		return order.Buy, fmt.Errorf("no direction for side %d", side)
	}
}
