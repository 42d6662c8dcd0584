package trader

import (
	"time"

	engerrors "github.com/SaidJacobo/forex-ml-bot-sub000/internal/errors"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/logger"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/order"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/strategy"
	"github.com/SaidJacobo/forex-ml-bot-sub000/pkg/types"
)

// EquityPoint is one mark-to-market sample of the run's equity.
type EquityPoint struct {
	Time   time.Time
	Equity float64
}

// Trader owns the order arena for one instrument run and applies strategy
// decisions to it. All order mutation goes through Apply; strategies only
// ever see read-only snapshots.
type Trader struct {
	ticker   string
	meta     types.InstrumentMeta
	trailing bool

	balance    float64
	nextTicket int64
	orders     []*order.Order // arena: stable tickets, closed orders kept
	equity     []EquityPoint
	lossStreak int
}

// New creates a trader with the given starting balance.
func New(ticker string, meta types.InstrumentMeta, startingBalance float64, trailing bool) *Trader {
	return &Trader{
		ticker:     ticker,
		meta:       meta,
		trailing:   trailing,
		balance:    startingBalance,
		nextTicket: 1,
	}
}

// Balance returns the realized account balance.
func (t *Trader) Balance() float64 {
	return t.balance
}

// Ticker returns the instrument this trader owns.
func (t *Trader) Ticker() string {
	return t.ticker
}

// Snapshot exposes the read-only state strategies decide on.
func (t *Trader) Snapshot() strategy.Snapshot {
	return strategy.Snapshot{
		OpenOrders: t.OpenOrders(),
		Balance:    t.balance,
		LossStreak: t.lossStreak,
	}
}

// OpenOrders returns the live orders, oldest first.
func (t *Trader) OpenOrders() []*order.Order {
	var open []*order.Order
	for _, o := range t.orders {
		if o.IsOpen() {
			open = append(open, o)
		}
	}
	return open
}

// OpenOrderByTicket finds a live order, or an OrderNotFound error.
func (t *Trader) OpenOrderByTicket(ticket int64) (*order.Order, error) {
	for _, o := range t.orders {
		if o.Ticket == ticket && o.IsOpen() {
			return o, nil
		}
	}
	return nil, engerrors.Newf(engerrors.KindOrderNotFound, "trader", "OpenOrderByTicket",
		"no open order with ticket %d for %s", ticket, t.ticker)
}

// ClosedOrders returns the terminal trade log, oldest first.
func (t *Trader) ClosedOrders() []*order.Order {
	var closed []*order.Order
	for _, o := range t.orders {
		if !o.IsOpen() {
			closed = append(closed, o)
		}
	}
	return closed
}

// Apply routes one strategy action into the order arena.
func (t *Trader) Apply(a strategy.Action, at time.Time) error {
	switch a.Type {
	case strategy.ActionOpen:
		t.open(a, at)
		return nil
	case strategy.ActionClose:
		return t.close(a, at)
	case strategy.ActionUpdate:
		return t.update(a)
	default:
		return nil
	}
}

// ApplyDecision applies every action of a bar's decision, closes first.
// Closing ahead of opens and updates means a failing action later in the
// decision can never drop a protective exit. On the first error the
// remaining actions are skipped; everything already applied stands.
func (t *Trader) ApplyDecision(d strategy.Decision, at time.Time) error {
	for _, a := range d.Actions {
		if a.Type != strategy.ActionClose {
			continue
		}
		if err := t.Apply(a, at); err != nil {
			return err
		}
	}
	for _, a := range d.Actions {
		if a.Type == strategy.ActionClose {
			continue
		}
		if err := t.Apply(a, at); err != nil {
			return err
		}
	}
	return nil
}

func (t *Trader) open(a strategy.Action, at time.Time) {
	o := &order.Order{
		Ticket:     t.nextTicket,
		Ticker:     t.ticker,
		PipValue:   t.meta.PipValue,
		Direction:  a.Direction,
		Units:      a.Units,
		OpenTime:   at,
		OpenPrice:  a.Price,
		LastPrice:  a.Price,
		StopLoss:   a.StopLoss,
		TakeProfit: a.TakeProfit,
	}
	t.nextTicket++
	t.orders = append(t.orders, o)
	logger.S().Debugw("order opened",
		"ticker", t.ticker, "ticket", o.Ticket, "direction", o.Direction.String(),
		"units", o.Units, "price", o.OpenPrice)
}

func (t *Trader) close(a strategy.Action, at time.Time) error {
	o, err := t.OpenOrderByTicket(a.Ticket)
	if err != nil {
		return err
	}
	if err := o.Close(a.Price, at, a.Reason); err != nil {
		return err
	}
	t.balance += *o.Profit
	if *o.Profit < 0 {
		t.lossStreak++
	} else {
		t.lossStreak = 0
	}
	logger.S().Debugw("order closed",
		"ticker", t.ticker, "ticket", o.Ticket, "reason", string(a.Reason),
		"profit", *o.Profit, "balance", t.balance)
	return nil
}

// update revises protective levels on a live order. A grid reprice replaces
// the levels outright; a trailing update is applied only when trailing is
// enabled and the new stop is strictly tighter, so a stop never loosens.
func (t *Trader) update(a strategy.Action) error {
	o, err := t.OpenOrderByTicket(a.Ticket)
	if err != nil {
		return err
	}

	if a.GroupReprice {
		o.StopLoss = a.StopLoss
		o.TakeProfit = a.TakeProfit
		return nil
	}

	if !t.trailing || a.StopLoss == nil {
		return nil
	}
	if o.StopLoss != nil {
		if o.Direction == order.Buy && *a.StopLoss <= *o.StopLoss {
			return nil
		}
		if o.Direction == order.Sell && *a.StopLoss >= *o.StopLoss {
			return nil
		}
	}
	o.StopLoss = a.StopLoss
	return nil
}

// MarkToMarket recomputes floating profit at price and appends one equity
// sample. It must run exactly once per bar, after the bar's actions, and
// the sample times must strictly increase.
func (t *Trader) MarkToMarket(price float64, at time.Time) error {
	if n := len(t.equity); n > 0 && !t.equity[n-1].Time.Before(at) {
		return engerrors.Newf(engerrors.KindCalendarMismatch, "trader", "MarkToMarket",
			"equity history already recorded at or after %s", at.Format(time.RFC3339))
	}
	var floating float64
	for _, o := range t.orders {
		if !o.IsOpen() {
			continue
		}
		o.MarkPrice(price)
		money, _ := o.UnrealizedProfit(price)
		floating += money
	}
	t.equity = append(t.equity, EquityPoint{Time: at, Equity: t.balance + floating})
	return nil
}

// EquityHistory returns the append-only equity series.
func (t *Trader) EquityHistory() []EquityPoint {
	return t.equity
}
