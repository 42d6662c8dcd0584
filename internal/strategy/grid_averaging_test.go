package strategy

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/order"
	"github.com/SaidJacobo/forex-ml-bot-sub000/pkg/types"
)

func gridParams() Params {
	p := testParams()
	p.GridMultiplier = 1
	p.MaxGridOrders = 5
	p.ATRPeriod = 2
	p.ATRDistanceFactor = 1
	return p
}

// pullbackHistory ends in a bullish engulfing candle well below the last
// entry at 1.2000.
func pullbackHistory(start time.Time) []types.Bar {
	return []types.Bar{
		barAt(start, 1.2000, 1.2005, 1.1995, 1.2000),
		barAt(start.Add(time.Hour), 1.1990, 1.1995, 1.1985, 1.1990),
		barAt(start.Add(2*time.Hour), 1.1960, 1.1962, 1.1943, 1.1945),
		barAt(start.Add(3*time.Hour), 1.1944, 1.1966, 1.1943, 1.1965),
	}
}

func TestGridAveragingAddsOnConfirmedPullback(t *testing.T) {
	s := NewGridAveraging(gridParams())
	history := pullbackHistory(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	open := &order.Order{
		Ticket:     1,
		Direction:  order.Buy,
		OpenPrice:  1.2000,
		Units:      40000,
		PipValue:   0.0001,
		StopLoss:   order.Float64Ptr(1.1950),
		TakeProfit: order.Float64Ptr(1.2100),
	}
	snap := Snapshot{OpenOrders: []*order.Order{open}, Balance: 10000, LossStreak: 2}

	d, err := s.OrderManagement(history[len(history)-1], history, snap)
	require.NoError(t, err)
	require.Len(t, d.Actions, 2)

	update := d.Actions[0]
	assert.Equal(t, ActionUpdate, update.Type)
	assert.Equal(t, int64(1), update.Ticket)
	assert.True(t, update.GroupReprice)

	add := d.Actions[1]
	assert.Equal(t, ActionOpen, add.Type)
	assert.Equal(t, order.Buy, add.Direction)
	// Base size 40000 scaled by lossStreak 2 * multiplier 1.
	assert.InDelta(t, 80000, add.Units, 1e-9)
	assert.InDelta(t, 1.1965, add.Price, 1e-9)

	// Every member lands on the same shared levels.
	require.NotNil(t, update.StopLoss)
	require.NotNil(t, add.StopLoss)
	assert.Equal(t, *update.StopLoss, *add.StopLoss)
	assert.Equal(t, *update.TakeProfit, *add.TakeProfit)

	// The shared stop realizes the single risk budget for the whole group.
	wavg := (1.2000*40000 + 1.1965*80000) / 120000
	assert.InDelta(t, wavg-200.0/120000, *add.StopLoss, 1e-9)
	assert.InDelta(t, wavg+400.0/120000, *add.TakeProfit, 1e-9)
}

func TestGridAveragingRequiresPullback(t *testing.T) {
	s := NewGridAveraging(gridParams())
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	// Price still hovering at the entry: no adverse move, no add.
	history := []types.Bar{
		barAt(start, 1.2000, 1.2005, 1.1995, 1.2000),
		barAt(start.Add(time.Hour), 1.1998, 1.2004, 1.1994, 1.1999),
		barAt(start.Add(2*time.Hour), 1.1999, 1.2006, 1.1995, 1.2001),
		barAt(start.Add(3*time.Hour), 1.1997, 1.2005, 1.1994, 1.2000),
	}
	open := &order.Order{Ticket: 1, Direction: order.Buy, OpenPrice: 1.2000, Units: 40000, PipValue: 0.0001}
	snap := Snapshot{OpenOrders: []*order.Order{open}, Balance: 10000}

	d, err := s.OrderManagement(history[len(history)-1], history, snap)
	require.NoError(t, err)
	assert.True(t, d.IsWait())
}

func TestGridAveragingRequiresReversalCandle(t *testing.T) {
	s := NewGridAveraging(gridParams())
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	// Deep pullback but the current candle keeps falling.
	history := []types.Bar{
		barAt(start, 1.2000, 1.2005, 1.1995, 1.2000),
		barAt(start.Add(time.Hour), 1.1990, 1.1995, 1.1985, 1.1990),
		barAt(start.Add(2*time.Hour), 1.1960, 1.1962, 1.1943, 1.1945),
		barAt(start.Add(3*time.Hour), 1.1944, 1.1946, 1.1920, 1.1925),
	}
	open := &order.Order{Ticket: 1, Direction: order.Buy, OpenPrice: 1.2000, Units: 40000, PipValue: 0.0001}
	snap := Snapshot{OpenOrders: []*order.Order{open}, Balance: 10000}

	d, err := s.OrderManagement(history[len(history)-1], history, snap)
	require.NoError(t, err)
	assert.True(t, d.IsWait())
}

func TestGridAveragingHonorsMaxOrders(t *testing.T) {
	p := gridParams()
	p.MaxGridOrders = 2
	s := NewGridAveraging(p)
	history := pullbackHistory(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	group := []*order.Order{
		{Ticket: 1, Direction: order.Buy, OpenPrice: 1.2000, Units: 40000, PipValue: 0.0001},
		{Ticket: 2, Direction: order.Buy, OpenPrice: 1.1980, Units: 40000, PipValue: 0.0001},
	}
	snap := Snapshot{OpenOrders: group, Balance: 10000}

	d, err := s.OrderManagement(history[len(history)-1], history, snap)
	require.NoError(t, err)
	assert.True(t, d.IsWait())
}

func TestGridAveragingEntersWhenFlat(t *testing.T) {
	s := NewGridAveraging(gridParams())
	history := pullbackHistory(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	bar := history[len(history)-1]
	bar.Side = types.SideBuy
	history[len(history)-1] = bar

	d, err := s.OrderManagement(bar, history, Snapshot{Balance: 10000})
	require.NoError(t, err)
	require.Len(t, d.Actions, 1)
	assert.Equal(t, ActionOpen, d.Actions[0].Type)
	assert.InDelta(t, 40000, d.Actions[0].Units, 1e-9)
}

func TestGridAveragingDecisionsDependOnlyOnHistory(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := pullbackHistory(start)
	bars[0].Side = types.SideBuy

	// Two fresh instances replaying the same prefix must decide
	// identically, whatever comes after.
	replay := func(s Strategy, bars []types.Bar) []Decision {
		var decisions []Decision
		for i := range bars {
			d, err := s.OrderManagement(bars[i], bars[:i+1], Snapshot{Balance: 10000})
			require.NoError(t, err)
			decisions = append(decisions, d)
		}
		return decisions
	}

	extended := append(append([]types.Bar{}, bars...),
		barAt(start.Add(4*time.Hour), 1.5000, 1.6000, 1.4000, 1.5500))

	a := replay(NewGridAveraging(gridParams()), bars)
	b := replay(NewGridAveraging(gridParams()), extended)

	for i := range a {
		assert.True(t, reflect.DeepEqual(a[i].Actions, b[i].Actions), "decision %d diverged", i)
	}
}

func TestFactoryResolvesVariants(t *testing.T) {
	s, err := New(VariantOneShotReversal, testParams())
	require.NoError(t, err)
	assert.Equal(t, "OneShotReversal", s.Name())

	s, err = New(VariantGridAveraging, gridParams())
	require.NoError(t, err)
	assert.Equal(t, "GridAveraging", s.Name())

	_, err = New("martingale", testParams())
	assert.Error(t, err)
}
