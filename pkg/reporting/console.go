package reporting

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/backtest"
)

// DefaultConsoleReporter renders results as rounded tables.
type DefaultConsoleReporter struct {
	out io.Writer
}

// NewDefaultConsoleReporter creates a console reporter writing to stdout.
func NewDefaultConsoleReporter() *DefaultConsoleReporter {
	return &DefaultConsoleReporter{out: os.Stdout}
}

// OutputRuns prints a per-run summary table.
func (r *DefaultConsoleReporter) OutputRuns(results []*backtest.RunResult) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("RUN RESULTS")
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Run", "Trades", "Win %", "Final Balance", "Return %", "Skipped Bars"})
	for _, res := range results {
		wins := 0
		for _, o := range res.ClosedOrders {
			if o.Profit != nil && *o.Profit > 0 {
				wins++
			}
		}
		winRate := 0.0
		if len(res.ClosedOrders) > 0 {
			winRate = float64(wins) / float64(len(res.ClosedOrders)) * 100
		}
		returnPct := 0.0
		if len(res.Equity) > 0 && res.Equity[0].Value != 0 {
			returnPct = (res.FinalBalance/res.Equity[0].Value - 1) * 100
		}
		t.AppendRow(table.Row{
			res.Name,
			len(res.ClosedOrders),
			fmt.Sprintf("%.1f", winRate),
			fmt.Sprintf("$%.2f", res.FinalBalance),
			fmt.Sprintf("%.2f", returnPct),
			res.SkippedBars,
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	t.Render()
	fmt.Fprintln(r.out)
}

// OutputPortfolio prints the aggregated portfolio summary.
func (r *DefaultConsoleReporter) OutputPortfolio(report PortfolioReport) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle("PORTFOLIO")
	t.SetStyle(table.StyleRounded)

	finalValue := report.InitialCapital
	if len(report.Curve) > 0 {
		finalValue = report.Curve.Last().Value
	}
	t.AppendRows([]table.Row{
		{"Initial Capital", fmt.Sprintf("$%.2f", report.InitialCapital)},
		{"Final Value", fmt.Sprintf("$%.2f", finalValue)},
		{"Max Drawdown", fmt.Sprintf("%.2f%% (%s)", report.MaxDrawdownPct, report.MaxDrawdownDate.Format("2006-01-02"))},
		{"Margin Calls", len(report.MarginCalls)},
		{"Stop-Outs", len(report.StopOuts)},
	})

	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{fmt.Sprintf("Hits +%.1f%%", report.UpPct), report.Excursion.HitsUp},
		{fmt.Sprintf("Hits -%.1f%%", report.DownPct), report.Excursion.HitsDown},
		{"Avg Half-Months Up", formatAvg(report.Excursion.TimesToUp)},
		{"Avg Half-Months Down", formatAvg(report.Excursion.TimesToDown)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 20, Align: text.AlignLeft},
		{Number: 2, WidthMin: 20, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Fprintln(r.out)
}

// OutputTrades prints one run's closed trade log.
func (r *DefaultConsoleReporter) OutputTrades(result *backtest.RunResult) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetTitle(fmt.Sprintf("TRADES - %s", result.Name))
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Ticket", "Dir", "Units", "Open", "Close", "Profit", "Pips", "Reason"})
	for _, o := range result.ClosedOrders {
		t.AppendRow(table.Row{
			o.Ticket,
			o.Direction.String(),
			fmt.Sprintf("%.0f", o.Units),
			fmt.Sprintf("%.5f", o.OpenPrice),
			formatPricePtr(o.ClosePrice),
			formatMoneyPtr(o.Profit),
			formatPipsPtr(o.ProfitPips),
			string(o.ClosedReason),
		})
	}
	t.Render()
	fmt.Fprintln(r.out)
}

func formatAvg(times []int) string {
	if len(times) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range times {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(times)))
}

func formatPricePtr(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.5f", *v)
}

func formatMoneyPtr(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("$%.2f", *v)
}

func formatPipsPtr(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *v)
}
