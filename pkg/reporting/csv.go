package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/backtest"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/order"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/portfolio"
)

const timeLayout = "2006-01-02 15:04:05"

// DefaultFileReporter writes run and portfolio artifacts to disk.
type DefaultFileReporter struct{}

// NewDefaultFileReporter creates a new file reporter
func NewDefaultFileReporter() *DefaultFileReporter {
	return &DefaultFileReporter{}
}

// WriteTradesCSV writes one run's closed trade log.
func (r *DefaultFileReporter) WriteTradesCSV(result *backtest.RunResult, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create trades CSV: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	header := []string{"ticket", "ticker", "direction", "units", "open_time", "open_price",
		"close_time", "close_price", "profit", "profit_pips", "reason"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, o := range result.ClosedOrders {
		if err := w.Write(tradeRecord(o)); err != nil {
			return fmt.Errorf("failed to write trade row: %w", err)
		}
	}
	return w.Error()
}

// WriteCurveCSV writes an equity or portfolio curve as date,value rows.
func (r *DefaultFileReporter) WriteCurveCSV(curve portfolio.Curve, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create curve CSV: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"date", "value"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, p := range curve {
		record := []string{
			p.Date.Format(timeLayout),
			strconv.FormatFloat(p.Value, 'f', 2, 64),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write curve row: %w", err)
		}
	}
	return w.Error()
}

func tradeRecord(o *order.Order) []string {
	record := []string{
		strconv.FormatInt(o.Ticket, 10),
		o.Ticker,
		o.Direction.String(),
		strconv.FormatFloat(o.Units, 'f', 2, 64),
		o.OpenTime.Format(timeLayout),
		strconv.FormatFloat(o.OpenPrice, 'f', 5, 64),
		"", "", "", "",
		string(o.ClosedReason),
	}
	if o.CloseTime != nil {
		record[6] = o.CloseTime.Format(timeLayout)
	}
	if o.ClosePrice != nil {
		record[7] = strconv.FormatFloat(*o.ClosePrice, 'f', 5, 64)
	}
	if o.Profit != nil {
		record[8] = strconv.FormatFloat(*o.Profit, 'f', 2, 64)
	}
	if o.ProfitPips != nil {
		record[9] = strconv.FormatFloat(*o.ProfitPips, 'f', 1, 64)
	}
	return record
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return nil
}
