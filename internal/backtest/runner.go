package backtest

import (
	"errors"

	engerrors "github.com/SaidJacobo/forex-ml-bot-sub000/internal/errors"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/logger"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/monitoring"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/order"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/portfolio"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/strategy"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/trader"
	"github.com/SaidJacobo/forex-ml-bot-sub000/pkg/types"
)

// RunResult is everything a finished run hands to the persistence/view
// layer and the portfolio aggregator: the closed trade log and the equity
// series, keyed by run name.
type RunResult struct {
	Name         string
	Equity       portfolio.Curve
	ClosedOrders []*order.Order
	FinalBalance float64
	SkippedBars  int // bars aborted by sizing/state-machine errors
}

// Run replays bars through one strategy/trader pair. The loop is strictly
// sequential: each bar is fully processed (signal, sizing, order mutation,
// mark-to-market) before the next one, and the strategy only ever sees
// history up to the current bar.
//
// Sizing and state-machine errors abort the current bar only; calendar
// errors from the equity history are fatal for the run.
func Run(name string, strat strategy.Strategy, tr *trader.Trader, bars []types.Bar) (*RunResult, error) {
	result := &RunResult{Name: name}

	for i, bar := range bars {
		decision, err := strat.OrderManagement(bar, bars[:i+1], tr.Snapshot())
		if err != nil {
			result.SkippedBars++
			recordBarError(name, err)
		} else if err := tr.ApplyDecision(decision, bar.Timestamp); err != nil {
			result.SkippedBars++
			recordBarError(name, err)
		} else {
			recordActions(tr.Ticker(), decision)
		}

		// Exactly once per bar, after all of the bar's actions.
		if err := tr.MarkToMarket(bar.Close, bar.Timestamp); err != nil {
			monitoring.RecordRun("error")
			return nil, err
		}
		monitoring.UpdateEquity(name, tr.EquityHistory()[len(tr.EquityHistory())-1].Equity)
	}

	for _, p := range tr.EquityHistory() {
		result.Equity = append(result.Equity, portfolio.Point{Date: p.Time, Value: p.Equity})
	}
	result.ClosedOrders = tr.ClosedOrders()
	result.FinalBalance = tr.Balance()
	monitoring.RecordRun("ok")
	return result, nil
}

func recordBarError(run string, err error) {
	var engErr *engerrors.EngineError
	if errors.As(err, &engErr) {
		monitoring.RecordError(string(engErr.Kind))
	}
	logger.S().Warnw("bar aborted", "run", run, "error", err)
}

func recordActions(ticker string, d strategy.Decision) {
	for _, a := range d.Actions {
		switch a.Type {
		case strategy.ActionOpen:
			monitoring.RecordOpen(ticker, a.Direction.String())
		case strategy.ActionClose:
			monitoring.RecordClose(ticker, string(a.Reason))
		}
	}
}

// MarginTrades converts a run's closed orders into the margin commitments
// the portfolio timeline consumes. Margin per trade is the notional value
// over leverage.
func MarginTrades(orders []*order.Order, leverage float64) []portfolio.Trade {
	if leverage <= 0 {
		leverage = 1
	}
	trades := make([]portfolio.Trade, 0, len(orders))
	for _, o := range orders {
		t := portfolio.Trade{
			OpenTime: o.OpenTime,
			Margin:   o.Units * o.OpenPrice / leverage,
		}
		if o.CloseTime != nil {
			t.CloseTime = *o.CloseTime
		}
		trades = append(trades, t)
	}
	return trades
}
