package order

import (
	"fmt"
	"time"
)

// Direction is the side of an order.
type Direction int

const (
	Buy Direction = iota
	Sell
)

func (d Direction) String() string {
	if d == Sell {
		return "SELL"
	}
	return "BUY"
}

// Sign returns +1 for BUY and -1 for SELL, used in profit math.
func (d Direction) Sign() float64 {
	if d == Sell {
		return -1
	}
	return 1
}

// CloseReason tags why an order was closed.
type CloseReason string

const (
	CloseStopLoss   CloseReason = "STOP_LOSS"
	CloseTakeProfit CloseReason = "TAKE_PROFIT"
	CloseTime       CloseReason = "TIME"
	CloseLockIn     CloseReason = "LOCK_IN"
	CloseSignal     CloseReason = "SIGNAL"
)

// Order is a single simulated position. Once closed it is terminal: the
// close fields never change and the order is kept for the trade log, not
// deleted.
type Order struct {
	Ticket    int64
	Ticker    string
	PipValue  float64
	Direction Direction
	Units     float64 // always positive, direction carried separately

	OpenTime  time.Time
	OpenPrice float64
	LastPrice float64 // most recent observed price, drives trailing stops

	StopLoss   *float64
	TakeProfit *float64

	CloseTime    *time.Time
	ClosePrice   *float64
	Profit       *float64
	ProfitPips   *float64
	ClosedReason CloseReason
}

// IsOpen reports whether the order is still live.
func (o *Order) IsOpen() bool {
	return o.CloseTime == nil
}

// UnrealizedProfit returns the floating profit at price, in account money
// and in pips.
func (o *Order) UnrealizedProfit(price float64) (money, pips float64) {
	move := (price - o.OpenPrice) * o.Direction.Sign()
	money = move * o.Units
	if o.PipValue > 0 {
		pips = move / o.PipValue
	}
	return money, pips
}

// MarkPrice records the latest observed price on the order.
func (o *Order) MarkPrice(price float64) {
	o.LastPrice = price
}

// Close transitions the order to its terminal state. Closing an already
// closed order is an error; the first close wins.
func (o *Order) Close(price float64, at time.Time, reason CloseReason) error {
	if !o.IsOpen() {
		return fmt.Errorf("order %d already closed at %s", o.Ticket, o.CloseTime.Format(time.RFC3339))
	}
	money, pips := o.UnrealizedProfit(price)
	o.CloseTime = &at
	o.ClosePrice = &price
	o.Profit = &money
	o.ProfitPips = &pips
	o.ClosedReason = reason
	o.LastPrice = price
	return nil
}

// HitStopLoss reports whether the bar range breached the protective stop.
// A BUY stops out on the low, a SELL on the high.
func (o *Order) HitStopLoss(high, low float64) bool {
	if o.StopLoss == nil {
		return false
	}
	if o.Direction == Buy {
		return low <= *o.StopLoss
	}
	return high >= *o.StopLoss
}

// HitTakeProfit reports whether the bar range reached the target.
func (o *Order) HitTakeProfit(high, low float64) bool {
	if o.TakeProfit == nil {
		return false
	}
	if o.Direction == Buy {
		return high >= *o.TakeProfit
	}
	return low <= *o.TakeProfit
}

// WeightedOpenPrice is the volume-weighted average entry across a group of
// same-direction orders. Returns 0 for an empty group.
func WeightedOpenPrice(orders []*Order) float64 {
	var notional, units float64
	for _, o := range orders {
		notional += o.OpenPrice * o.Units
		units += o.Units
	}
	if units == 0 {
		return 0
	}
	return notional / units
}

// TotalUnits sums the exposure of a group.
func TotalUnits(orders []*Order) float64 {
	var units float64
	for _, o := range orders {
		units += o.Units
	}
	return units
}

// GroupProfit is the aggregate floating profit of a group at price.
func GroupProfit(orders []*Order, price float64) float64 {
	var total float64
	for _, o := range orders {
		money, _ := o.UnrealizedProfit(price)
		total += money
	}
	return total
}

// Float64Ptr is a small helper for the nullable price levels.
func Float64Ptr(v float64) *float64 { return &v }
