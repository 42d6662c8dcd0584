package reporting

import (
	"time"

	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/backtest"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/portfolio"
)

// Package reporting renders run and portfolio results to the console and to
// CSV/XLSX files.

// PortfolioReport bundles everything the portfolio layer produced for one
// aggregation: the compounded curve, its drawdown, the margin timeline and
// the excursion walk.
type PortfolioReport struct {
	InitialCapital  float64
	Curve           portfolio.Curve
	MaxDrawdownPct  float64
	MaxDrawdownDate time.Time

	MarginRows  []portfolio.MarginRow
	MarginCalls []portfolio.MarginRow
	StopOuts    []portfolio.MarginRow

	Excursion portfolio.ExcursionResult
	UpPct     float64
	DownPct   float64
}

// ConsoleReporter defines interface for console output
type ConsoleReporter interface {
	OutputRuns(results []*backtest.RunResult)
	OutputTrades(result *backtest.RunResult)
	OutputPortfolio(report PortfolioReport)
}

// FileReporter defines interface for file output
type FileReporter interface {
	WriteTradesCSV(result *backtest.RunResult, path string) error
	WriteCurveCSV(curve portfolio.Curve, path string) error
	WriteWorkbook(results []*backtest.RunResult, report PortfolioReport, path string) error
}
