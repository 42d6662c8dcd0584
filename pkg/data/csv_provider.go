package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/logger"
	"github.com/SaidJacobo/forex-ml-bot-sub000/pkg/types"
)

// ColumnMapping describes how a CSV file lays out its bar fields. SideCol
// and ProbabilityCol are optional (-1 when absent): historical files
// without upstream signals load as signal-less series.
type ColumnMapping struct {
	DateFormat     string
	TimestampCol   int
	OpenCol        int
	HighCol        int
	LowCol         int
	CloseCol       int
	VolumeCol      int
	SideCol        int
	ProbabilityCol int
	MinColumns     int
}

// DefaultFormat matches the exported research files:
// timestamp,open,high,low,close,volume[,side,probability].
var DefaultFormat = ColumnMapping{
	DateFormat:     "2006-01-02 15:04:05",
	TimestampCol:   0,
	OpenCol:        1,
	HighCol:        2,
	LowCol:         3,
	CloseCol:       4,
	VolumeCol:      5,
	SideCol:        6,
	ProbabilityCol: 7,
	MinColumns:     6,
}

// CSVProvider loads historical bar series from CSV files.
type CSVProvider struct {
	format ColumnMapping
}

// NewCSVProvider uses the default column layout.
func NewCSVProvider() *CSVProvider {
	return &CSVProvider{format: DefaultFormat}
}

// NewCSVProviderWithFormat uses a custom column layout.
func NewCSVProviderWithFormat(format ColumnMapping) *CSVProvider {
	return &CSVProvider{format: format}
}

// LoadBars reads the file into a bar series, skipping malformed rows with
// a warning rather than failing the whole load.
func (p *CSVProvider) LoadBars(filename string) ([]types.Bar, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	if _, err := reader.Read(); err != nil { // header
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	format := p.format
	var bars []types.Bar
	lineNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV at line %d: %w", lineNum, err)
		}
		lineNum++

		if len(record) < format.MinColumns {
			logger.S().Warnw("insufficient columns, skipping row", "line", lineNum, "got", len(record))
			continue
		}

		timestamp, err := time.Parse(format.DateFormat, record[format.TimestampCol])
		if err != nil {
			logger.S().Warnw("invalid timestamp, skipping row", "line", lineNum, "value", record[format.TimestampCol])
			continue
		}

		open, err1 := strconv.ParseFloat(record[format.OpenCol], 64)
		high, err2 := strconv.ParseFloat(record[format.HighCol], 64)
		low, err3 := strconv.ParseFloat(record[format.LowCol], 64)
		closePrice, err4 := strconv.ParseFloat(record[format.CloseCol], 64)
		volume, err5 := strconv.ParseFloat(record[format.VolumeCol], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			logger.S().Warnw("invalid numeric field, skipping row", "line", lineNum)
			continue
		}
		if open <= 0 || high <= 0 || low <= 0 || closePrice <= 0 {
			logger.S().Warnw("non-positive price, skipping row", "line", lineNum)
			continue
		}
		if high < open || high < closePrice || high < low || low > open || low > closePrice {
			logger.S().Warnw("inconsistent OHLC range, skipping row", "line", lineNum)
			continue
		}

		bar := types.Bar{
			Timestamp: timestamp,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePrice,
			Volume:    volume,
		}
		if format.SideCol >= 0 && len(record) > format.SideCol {
			if side, err := strconv.Atoi(record[format.SideCol]); err == nil {
				bar.Side = types.Side(side)
			}
		}
		if format.ProbabilityCol >= 0 && len(record) > format.ProbabilityCol {
			if prob, err := strconv.ParseFloat(record[format.ProbabilityCol], 64); err == nil {
				bar.Probability = prob
			}
		}
		bars = append(bars, bar)
	}
	return bars, nil
}
