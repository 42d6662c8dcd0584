package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/SaidJacobo/forex-ml-bot-sub000/cmd/grid-backtest/cli"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/backtest"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/broker"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/broker/bybit"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/logger"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/monitoring"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/portfolio"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/strategy"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/trader"
	"github.com/SaidJacobo/forex-ml-bot-sub000/pkg/config"
	"github.com/SaidJacobo/forex-ml-bot-sub000/pkg/data"
	"github.com/SaidJacobo/forex-ml-bot-sub000/pkg/reporting"
	"github.com/SaidJacobo/forex-ml-bot-sub000/pkg/types"
)

const version = "1.0.0"

func main() {
	flags := cli.ParseFlags()
	if *flags.Version {
		fmt.Printf("grid-backtest %s\n", version)
		return
	}
	if err := flags.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*flags.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log)
	defer func() { _ = logger.S().Sync() }()

	if *flags.MetricsAddr != "" {
		go serveMetrics(*flags.MetricsAddr)
	}

	results, err := runAll(cfg, *flags.Workers)
	if err != nil {
		logger.S().Fatalw("backtest failed", "error", err)
	}

	console := reporting.NewDefaultConsoleReporter()
	console.OutputRuns(results)
	if *flags.Verbose {
		for _, res := range results {
			console.OutputTrades(res)
		}
	}

	report, err := aggregate(cfg, results, *flags.UpPct, *flags.DownPct)
	if err != nil {
		logger.S().Fatalw("portfolio aggregation failed", "error", err)
	}
	console.OutputPortfolio(report)

	if *flags.Report {
		if err := writeReports(results, report, *flags.OutputDir); err != nil {
			logger.S().Fatalw("report generation failed", "error", err)
		}
		fmt.Printf("Reports written to %s\n", *flags.OutputDir)
	}
}

// runAll executes every configured run through the worker pool and returns
// the results in config order.
func runAll(cfg *config.Config, workers int) ([]*backtest.RunResult, error) {
	provider := data.NewCSVProvider()
	metaResolver := newMetaResolver(cfg.Broker)

	pool := backtest.NewWorkerPool(workers, len(cfg.Runs))
	pool.Start()

	submitted := 0
	for _, run := range cfg.Runs {
		bars, err := provider.LoadBars(run.DataFile)
		if err != nil {
			pool.Stop()
			return nil, fmt.Errorf("run %q: %w", run.Name, err)
		}
		meta, err := metaResolver.resolve(run)
		if err != nil {
			pool.Stop()
			return nil, fmt.Errorf("run %q: %w", run.Name, err)
		}
		params := run.StrategyParams()
		params.Meta = meta
		strat, err := strategy.New(run.Variant, params)
		if err != nil {
			pool.Stop()
			return nil, fmt.Errorf("run %q: %w", run.Name, err)
		}
		job := backtest.Job{
			Name:     run.Name,
			Bars:     bars,
			Strategy: strat,
			Trader:   trader.New(run.Ticker, meta, run.StartingBalance, run.TrailingStop),
		}
		if err := pool.Submit(job); err != nil {
			pool.Stop()
			return nil, fmt.Errorf("run %q: %w", run.Name, err)
		}
		submitted++
	}

	go pool.Stop()

	byName := make(map[string]*backtest.RunResult, submitted)
	for res := range pool.Results() {
		if res.Error != nil {
			return nil, fmt.Errorf("run %q: %w", res.Name, res.Error)
		}
		logger.S().Infow("run finished",
			"run", res.Name, "duration", res.Duration, "trades", len(res.Run.ClosedOrders))
		byName[res.Name] = res.Run
	}

	results := make([]*backtest.RunResult, 0, submitted)
	for _, run := range cfg.Runs {
		if r, ok := byName[run.Name]; ok {
			results = append(results, r)
		}
	}
	return results, nil
}

// metaResolver serves instrument metadata for runs without an inline
// instrument block. The broker client is only built when a run needs it, so
// fully offline configs never touch the network.
type metaResolver struct {
	brokerCfg config.BrokerConfig
	provider  broker.Provider
}

func newMetaResolver(brokerCfg config.BrokerConfig) *metaResolver {
	return &metaResolver{brokerCfg: brokerCfg}
}

func (m *metaResolver) resolve(run config.RunConfig) (types.InstrumentMeta, error) {
	if run.HasInlineInstrument() {
		return run.Meta(), nil
	}
	if m.provider == nil {
		m.provider = bybit.NewClient(bybit.Config{
			APIKey:    m.brokerCfg.APIKey,
			APISecret: m.brokerCfg.APISecret,
			Testnet:   m.brokerCfg.Testnet,
			Category:  m.brokerCfg.Category,
		})
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	meta, err := m.provider.InstrumentMeta(ctx, run.Ticker)
	if err != nil {
		return types.InstrumentMeta{}, fmt.Errorf("failed to resolve instrument metadata: %w", err)
	}
	logger.S().Infow("instrument metadata resolved from broker",
		"ticker", run.Ticker, "pip_value", meta.PipValue, "min_lot", meta.MinLot)
	return meta, nil
}

// aggregate combines the run equity curves into one portfolio view with
// drawdown, margin timeline and excursion statistics.
func aggregate(cfg *config.Config, results []*backtest.RunResult, upPct, downPct float64) (reporting.PortfolioReport, error) {
	report := reporting.PortfolioReport{
		InitialCapital: cfg.InitialCapital,
		UpPct:          upPct,
		DownPct:        downPct,
	}

	curves := make(map[string]portfolio.Curve, len(results))
	var trades []portfolio.Trade
	for _, res := range results {
		curves[res.Name] = res.Equity
		trades = append(trades, backtest.MarginTrades(res.ClosedOrders, cfg.Leverage)...)
	}
	sort.SliceStable(trades, func(i, j int) bool { return trades[i].OpenTime.Before(trades[j].OpenTime) })

	curve, err := portfolio.BuildPortfolioCurve(curves, cfg.InitialCapital)
	if err != nil {
		return report, err
	}
	report.Curve = curve

	report.MaxDrawdownPct, report.MaxDrawdownDate, err = portfolio.MaxDrawdown(curve)
	if err != nil {
		return report, err
	}

	thresholds := portfolio.MarginThresholds{
		CallPct:    cfg.Margin.CallPct,
		StopOutPct: cfg.Margin.StopOutPct,
	}
	report.MarginRows, report.MarginCalls, report.StopOuts = portfolio.MarginTimeline(trades, curve, thresholds)

	report.Excursion, err = portfolio.ExcursionSimulation(curve, cfg.InitialCapital, upPct, downPct)
	if err != nil {
		return report, err
	}
	return report, nil
}

func writeReports(results []*backtest.RunResult, report reporting.PortfolioReport, outputDir string) error {
	files := reporting.NewDefaultFileReporter()
	for _, res := range results {
		path := filepath.Join(outputDir, fmt.Sprintf("trades_%s.csv", res.Name))
		if err := files.WriteTradesCSV(res, path); err != nil {
			return err
		}
	}
	if err := files.WriteCurveCSV(report.Curve, filepath.Join(outputDir, "portfolio.csv")); err != nil {
		return err
	}
	return files.WriteWorkbook(results, report, filepath.Join(outputDir, "backtest_report.xlsx"))
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.S().Infow("metrics server listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.S().Errorw("metrics server stopped", "error", err)
	}
}
