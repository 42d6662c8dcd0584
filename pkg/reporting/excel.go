package reporting

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/backtest"
)

// ExcelStyles holds the workbook cell styles.
type ExcelStyles struct {
	Header   int
	Currency int
	Price    int
}

// WriteWorkbook writes one XLSX workbook holding the per-run trade logs,
// the portfolio curve and the margin timeline.
func (r *DefaultFileReporter) WriteWorkbook(results []*backtest.RunResult, report PortfolioReport, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const summarySheet = "Summary"
	const portfolioSheet = "Portfolio"
	const marginSheet = "Margin"

	fx.SetSheetName(fx.GetSheetName(0), summarySheet)
	fx.NewSheet(portfolioSheet)
	fx.NewSheet(marginSheet)

	styles, err := createStyles(fx)
	if err != nil {
		return err
	}

	if err := writeSummarySheet(fx, summarySheet, results, report, styles); err != nil {
		return err
	}
	if err := writePortfolioSheet(fx, portfolioSheet, report, styles); err != nil {
		return err
	}
	if err := writeMarginSheet(fx, marginSheet, report, styles); err != nil {
		return err
	}
	for _, res := range results {
		sheet := fmt.Sprintf("Trades %s", res.Name)
		if len(sheet) > 31 { // Excel sheet name limit
			sheet = sheet[:31]
		}
		fx.NewSheet(sheet)
		if err := writeTradesSheet(fx, sheet, res, styles); err != nil {
			return err
		}
	}

	return fx.SaveAs(path)
}

func createStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	styles.Header, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF", Family: "Calibri"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return styles, err
	}

	styles.Currency, err = fx.NewStyle(&excelize.Style{
		NumFmt:    7, // currency with $ symbol
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return styles, err
	}

	styles.Price, err = fx.NewStyle(&excelize.Style{
		NumFmt:    2,
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	return styles, err
}

func writeSummarySheet(fx *excelize.File, sheet string, results []*backtest.RunResult, report PortfolioReport, styles ExcelStyles) error {
	headers := []string{"Run", "Trades", "Final Balance", "Skipped Bars"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.Header)
	}
	row := 2
	for _, res := range results {
		fx.SetCellValue(sheet, fmt.Sprintf("A%d", row), res.Name)
		fx.SetCellValue(sheet, fmt.Sprintf("B%d", row), len(res.ClosedOrders))
		fx.SetCellValue(sheet, fmt.Sprintf("C%d", row), res.FinalBalance)
		fx.SetCellStyle(sheet, fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), styles.Currency)
		fx.SetCellValue(sheet, fmt.Sprintf("D%d", row), res.SkippedBars)
		row++
	}

	row++
	fx.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Initial Capital")
	fx.SetCellValue(sheet, fmt.Sprintf("B%d", row), report.InitialCapital)
	fx.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), styles.Currency)
	row++
	fx.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Max Drawdown %")
	fx.SetCellValue(sheet, fmt.Sprintf("B%d", row), report.MaxDrawdownPct)
	row++
	fx.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Max Drawdown Date")
	fx.SetCellValue(sheet, fmt.Sprintf("B%d", row), report.MaxDrawdownDate.Format("2006-01-02"))
	row++
	fx.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Margin Calls")
	fx.SetCellValue(sheet, fmt.Sprintf("B%d", row), len(report.MarginCalls))
	row++
	fx.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Stop-Outs")
	fx.SetCellValue(sheet, fmt.Sprintf("B%d", row), len(report.StopOuts))
	row++
	fx.SetCellValue(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("Excursion Hits +%.1f%%", report.UpPct))
	fx.SetCellValue(sheet, fmt.Sprintf("B%d", row), report.Excursion.HitsUp)
	row++
	fx.SetCellValue(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("Excursion Hits -%.1f%%", report.DownPct))
	fx.SetCellValue(sheet, fmt.Sprintf("B%d", row), report.Excursion.HitsDown)
	return nil
}

func writePortfolioSheet(fx *excelize.File, sheet string, report PortfolioReport, styles ExcelStyles) error {
	for i, h := range []string{"Date", "Value"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.Header)
	}
	for i, p := range report.Curve {
		row := i + 2
		fx.SetCellValue(sheet, fmt.Sprintf("A%d", row), p.Date.Format("2006-01-02"))
		fx.SetCellValue(sheet, fmt.Sprintf("B%d", row), p.Value)
		fx.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), styles.Currency)
	}
	return nil
}

func writeMarginSheet(fx *excelize.File, sheet string, report PortfolioReport, styles ExcelStyles) error {
	for i, h := range []string{"Date", "Margin", "Equity", "Usage %"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.Header)
	}
	for i, row := range report.MarginRows {
		r := i + 2
		fx.SetCellValue(sheet, fmt.Sprintf("A%d", r), row.Date.Format("2006-01-02"))
		fx.SetCellValue(sheet, fmt.Sprintf("B%d", r), row.Margin)
		fx.SetCellValue(sheet, fmt.Sprintf("C%d", r), row.Equity)
		fx.SetCellValue(sheet, fmt.Sprintf("D%d", r), row.UsagePct)
		fx.SetCellStyle(sheet, fmt.Sprintf("B%d", r), fmt.Sprintf("C%d", r), styles.Currency)
		fx.SetCellStyle(sheet, fmt.Sprintf("D%d", r), fmt.Sprintf("D%d", r), styles.Price)
	}
	return nil
}

func writeTradesSheet(fx *excelize.File, sheet string, result *backtest.RunResult, styles ExcelStyles) error {
	headers := []string{"Ticket", "Direction", "Units", "Open Time", "Open Price",
		"Close Time", "Close Price", "Profit", "Pips", "Reason"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.Header)
	}
	for i, o := range result.ClosedOrders {
		row := i + 2
		fx.SetCellValue(sheet, fmt.Sprintf("A%d", row), o.Ticket)
		fx.SetCellValue(sheet, fmt.Sprintf("B%d", row), o.Direction.String())
		fx.SetCellValue(sheet, fmt.Sprintf("C%d", row), o.Units)
		fx.SetCellValue(sheet, fmt.Sprintf("D%d", row), o.OpenTime.Format(timeLayout))
		fx.SetCellValue(sheet, fmt.Sprintf("E%d", row), o.OpenPrice)
		if o.CloseTime != nil {
			fx.SetCellValue(sheet, fmt.Sprintf("F%d", row), o.CloseTime.Format(timeLayout))
		}
		if o.ClosePrice != nil {
			fx.SetCellValue(sheet, fmt.Sprintf("G%d", row), *o.ClosePrice)
		}
		if o.Profit != nil {
			fx.SetCellValue(sheet, fmt.Sprintf("H%d", row), *o.Profit)
			fx.SetCellStyle(sheet, fmt.Sprintf("H%d", row), fmt.Sprintf("H%d", row), styles.Currency)
		}
		if o.ProfitPips != nil {
			fx.SetCellValue(sheet, fmt.Sprintf("I%d", row), *o.ProfitPips)
		}
		fx.SetCellValue(sheet, fmt.Sprintf("J%d", row), string(o.ClosedReason))
	}
	fx.SetColWidth(sheet, "D", "F", 20)
	return nil
}
