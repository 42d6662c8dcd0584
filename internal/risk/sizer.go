package risk

import (
	"math"

	engerrors "github.com/SaidJacobo/forex-ml-bot-sub000/internal/errors"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/order"
	"github.com/SaidJacobo/forex-ml-bot-sub000/pkg/types"
)

// lotPrecision is the granularity brokers accept for lot sizes.
const lotPrecision = 100 // 2 decimals

// PositionSize converts a money risk budget into units of exposure.
//
// riskAmount = balance * riskPct/100, rawLots = riskAmount /
// (tickValueLoss * stopDistancePips). Lots are clamped to the instrument's
// [MinLot, MaxLot] and truncated to 2-decimal granularity before being
// converted to units via ContractVolume. Degenerate inputs that would imply
// zero or infinite size settle on the clamped boundary; a non-positive stop
// distance is rejected outright.
func PositionSize(balance, riskPct, stopDistancePips float64, meta types.InstrumentMeta) (float64, error) {
	if stopDistancePips <= 0 {
		return 0, engerrors.Newf(engerrors.KindInvalidStopDistance, "risk", "PositionSize",
			"stop distance must be positive, got %.4f pips", stopDistancePips)
	}

	riskAmount := balance * riskPct / 100
	rawLots := riskAmount / (meta.TickValueLoss * stopDistancePips)

	lots := clampLots(rawLots, meta.MinLot, meta.MaxLot)
	lots = math.Trunc(lots*lotPrecision) / lotPrecision

	if meta.ContractVolume > 0 {
		return lots * meta.ContractVolume, nil
	}
	return lots, nil
}

func clampLots(lots, minLot, maxLot float64) float64 {
	if math.IsNaN(lots) || lots < minLot {
		return minLot
	}
	if maxLot > 0 && (math.IsInf(lots, 1) || lots > maxLot) {
		return maxLot
	}
	return lots
}

// StopLoss places a protective stop distancePips away from price: below for
// a BUY, above for a SELL.
func StopLoss(direction order.Direction, price, distancePips, pipValue float64) (float64, error) {
	if distancePips <= 0 {
		return 0, engerrors.Newf(engerrors.KindInvalidStopDistance, "risk", "StopLoss",
			"stop distance must be positive, got %.4f pips", distancePips)
	}
	return price - direction.Sign()*distancePips*pipValue, nil
}

// TakeProfit places the target riskRewardRatio times the stop distance on
// the profitable side of price.
func TakeProfit(direction order.Direction, price, riskRewardRatio, stopDistancePips, pipValue float64) (float64, error) {
	if stopDistancePips <= 0 {
		return 0, engerrors.Newf(engerrors.KindInvalidStopDistance, "risk", "TakeProfit",
			"stop distance must be positive, got %.4f pips", stopDistancePips)
	}
	return price + direction.Sign()*riskRewardRatio*stopDistancePips*pipValue, nil
}

// GridStopLoss derives the single price level at which the aggregate money
// loss across the whole group (open orders plus the incoming one) equals
// balance * riskPct/100. With total units U and weighted open price W the
// group P/L at level L is U*(L-W) for a BUY, so L = W - riskAmount/U.
func GridStopLoss(direction order.Direction, incomingPrice, incomingUnits float64, openOrders []*order.Order, balance, riskPct float64) (float64, error) {
	wavg, units := groupWithIncoming(incomingPrice, incomingUnits, openOrders)
	if units <= 0 {
		return 0, engerrors.New(engerrors.KindInvalidStopDistance, "risk", "GridStopLoss",
			"group has no units to protect")
	}
	riskAmount := balance * riskPct / 100
	return wavg - direction.Sign()*riskAmount/units, nil
}

// GridTakeProfit is the counterpart of GridStopLoss: the level at which the
// aggregate gain equals balance * rewardPct/100.
func GridTakeProfit(direction order.Direction, incomingPrice, incomingUnits float64, openOrders []*order.Order, balance, rewardPct float64) (float64, error) {
	wavg, units := groupWithIncoming(incomingPrice, incomingUnits, openOrders)
	if units <= 0 {
		return 0, engerrors.New(engerrors.KindInvalidStopDistance, "risk", "GridTakeProfit",
			"group has no units to target")
	}
	rewardAmount := balance * rewardPct / 100
	return wavg + direction.Sign()*rewardAmount/units, nil
}

// groupWithIncoming folds the incoming order into the open group and
// returns the blended weighted price and total units.
func groupWithIncoming(incomingPrice, incomingUnits float64, openOrders []*order.Order) (wavg, units float64) {
	notional := incomingPrice * incomingUnits
	units = incomingUnits
	for _, o := range openOrders {
		notional += o.OpenPrice * o.Units
		units += o.Units
	}
	if units == 0 {
		return 0, 0
	}
	return notional / units, units
}
