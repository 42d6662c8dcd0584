package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/order"
	"github.com/SaidJacobo/forex-ml-bot-sub000/pkg/types"
)

func TestOneShotOpensOnSignal(t *testing.T) {
	s := NewOneShotReversal(testParams())
	bar := barAt(time.Now(), 1.1990, 1.2005, 1.1985, 1.2000)
	bar.Side = types.SideBuy

	d, err := s.OrderManagement(bar, []types.Bar{bar}, Snapshot{Balance: 10000})
	require.NoError(t, err)
	require.Len(t, d.Actions, 1)

	a := d.Actions[0]
	assert.Equal(t, ActionOpen, a.Type)
	assert.Equal(t, order.Buy, a.Direction)
	assert.InDelta(t, 40000, a.Units, 1e-9)
	assert.InDelta(t, 1.2000, a.Price, 1e-9)
	require.NotNil(t, a.StopLoss)
	assert.InDelta(t, 1.1950, *a.StopLoss, 1e-9)
	require.NotNil(t, a.TakeProfit)
	assert.InDelta(t, 1.2100, *a.TakeProfit, 1e-9)
}

func TestOneShotWaitsWithoutSignal(t *testing.T) {
	s := NewOneShotReversal(testParams())
	bar := barAt(time.Now(), 1.1990, 1.2005, 1.1985, 1.2000)

	d, err := s.OrderManagement(bar, []types.Bar{bar}, Snapshot{Balance: 10000})
	require.NoError(t, err)
	assert.True(t, d.IsWait())
}

func TestOneShotReversesOnOppositeSignal(t *testing.T) {
	s := NewOneShotReversal(testParams())
	open := &order.Order{
		Ticket:     1,
		Direction:  order.Buy,
		OpenPrice:  1.1980,
		Units:      40000,
		PipValue:   0.0001,
		StopLoss:   order.Float64Ptr(1.1930),
		TakeProfit: order.Float64Ptr(1.2080),
	}
	bar := barAt(time.Now(), 1.1990, 1.2005, 1.1985, 1.2000)
	bar.Side = types.SideSell

	d, err := s.OrderManagement(bar, []types.Bar{bar}, Snapshot{OpenOrders: []*order.Order{open}, Balance: 10000})
	require.NoError(t, err)
	require.Len(t, d.Actions, 2)

	assert.Equal(t, ActionClose, d.Actions[0].Type)
	assert.Equal(t, order.CloseSignal, d.Actions[0].Reason)
	assert.InDelta(t, 1.2000, d.Actions[0].Price, 1e-9)

	assert.Equal(t, ActionOpen, d.Actions[1].Type)
	assert.Equal(t, order.Sell, d.Actions[1].Direction)
	require.NotNil(t, d.Actions[1].StopLoss)
	assert.InDelta(t, 1.2050, *d.Actions[1].StopLoss, 1e-9)
}

func TestOneShotTrailsOnSameDirectionSignal(t *testing.T) {
	s := NewOneShotReversal(testParams())
	open := &order.Order{
		Ticket:     1,
		Direction:  order.Buy,
		OpenPrice:  1.1980,
		Units:      40000,
		PipValue:   0.0001,
		StopLoss:   order.Float64Ptr(1.1930),
		TakeProfit: order.Float64Ptr(1.2080),
	}
	bar := barAt(time.Now(), 1.1990, 1.2005, 1.1985, 1.2000)
	bar.Side = types.SideBuy

	// A same-direction signal never stacks a second position; the held one
	// only gets its stop re-anchored at the close.
	d, err := s.OrderManagement(bar, []types.Bar{bar}, Snapshot{OpenOrders: []*order.Order{open}, Balance: 10000})
	require.NoError(t, err)
	require.Len(t, d.Actions, 1)

	a := d.Actions[0]
	assert.Equal(t, ActionUpdate, a.Type)
	assert.Equal(t, int64(1), a.Ticket)
	assert.False(t, a.GroupReprice)
	require.NotNil(t, a.StopLoss)
	assert.InDelta(t, 1.1950, *a.StopLoss, 1e-9)
	assert.Nil(t, a.TakeProfit)
}

func TestOneShotTrailsWithoutSignal(t *testing.T) {
	s := NewOneShotReversal(testParams())
	open := &order.Order{
		Ticket:     1,
		Direction:  order.Sell,
		OpenPrice:  1.2050,
		Units:      40000,
		PipValue:   0.0001,
		StopLoss:   order.Float64Ptr(1.2100),
		TakeProfit: order.Float64Ptr(1.1950),
	}
	bar := barAt(time.Now(), 1.2010, 1.2015, 1.1995, 1.2000)

	d, err := s.OrderManagement(bar, []types.Bar{bar}, Snapshot{OpenOrders: []*order.Order{open}, Balance: 10000})
	require.NoError(t, err)
	require.Len(t, d.Actions, 1)

	a := d.Actions[0]
	assert.Equal(t, ActionUpdate, a.Type)
	require.NotNil(t, a.StopLoss)
	assert.InDelta(t, 1.2050, *a.StopLoss, 1e-9)
}

func TestOneShotCloseSuppressesSameBarOpen(t *testing.T) {
	s := NewOneShotReversal(testParams())
	open := &order.Order{
		Ticket:     1,
		Direction:  order.Buy,
		OpenPrice:  1.1980,
		Units:      40000,
		PipValue:   0.0001,
		StopLoss:   order.Float64Ptr(1.1930),
		TakeProfit: order.Float64Ptr(1.2080),
	}
	// The bar both breaches the stop and carries an opposite signal; only
	// the protective exit may run this bar.
	bar := barAt(time.Now(), 1.1950, 1.1960, 1.1920, 1.1940)
	bar.Side = types.SideSell

	d, err := s.OrderManagement(bar, []types.Bar{bar}, Snapshot{OpenOrders: []*order.Order{open}, Balance: 10000})
	require.NoError(t, err)
	require.Len(t, d.Actions, 1)
	assert.Equal(t, ActionClose, d.Actions[0].Type)
	assert.Equal(t, order.CloseStopLoss, d.Actions[0].Reason)
}
