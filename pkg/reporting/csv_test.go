package reporting

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/backtest"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/order"
	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/portfolio"
)

func TestWriteTradesCSV(t *testing.T) {
	open := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	o := &order.Order{
		Ticket:    7,
		Ticker:    "EURUSD",
		PipValue:  0.0001,
		Direction: order.Buy,
		Units:     40000,
		OpenTime:  open,
		OpenPrice: 1.2000,
	}
	require.NoError(t, o.Close(1.2100, open.Add(2*time.Hour), order.CloseTakeProfit))

	result := &backtest.RunResult{Name: "eurusd", ClosedOrders: []*order.Order{o}}
	path := filepath.Join(t.TempDir(), "out", "trades.csv")
	require.NoError(t, NewDefaultFileReporter().WriteTradesCSV(result, path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "ticket", rows[0][0])
	assert.Equal(t, "7", rows[1][0])
	assert.Equal(t, "BUY", rows[1][2])
	assert.Equal(t, "1.21000", rows[1][7])
	assert.Equal(t, "400.00", rows[1][8])
	assert.Equal(t, "TAKE_PROFIT", rows[1][10])
}

func TestWriteCurveCSV(t *testing.T) {
	curve := portfolio.Curve{
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Value: 100000},
		{Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), Value: 100500.5},
	}
	path := filepath.Join(t.TempDir(), "portfolio.csv")
	require.NoError(t, NewDefaultFileReporter().WriteCurveCSV(curve, path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"date", "value"}, rows[0])
	assert.Equal(t, "100000.00", rows[1][1])
	assert.Equal(t, "100500.50", rows[2][1])
}
