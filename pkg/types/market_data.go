package types

import "time"

// Side is the discrete entry signal attached to a bar by an upstream
// strategy or ML classifier: -1 sell, 0 none, 1 buy.
type Side int

const (
	SideSell Side = -1
	SideNone Side = 0
	SideBuy  Side = 1
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "NONE"
	}
}

// Bar is one period of market data as delivered by the bar-replay engine,
// together with the upstream signal fields the order engine consumes.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64

	// Upstream signal fields. Class and Probability come from the ML
	// collaborator and are optional; Side is the gated entry signal.
	Side        Side
	Class       int
	Probability float64
}

// Tick is a live bid/ask quote from the broker binding.
type Tick struct {
	Symbol    string
	Bid       float64
	Ask       float64
	Timestamp time.Time
}

// InstrumentMeta carries the per-instrument constraints used for sizing.
type InstrumentMeta struct {
	Symbol         string
	PipValue       float64 // smallest meaningful price increment
	ContractVolume float64 // units per 1.0 lot
	MinLot         float64
	MaxLot         float64
	VolumeStep     float64
	TickValueLoss  float64 // money lost per pip per 1.0 lot
}
