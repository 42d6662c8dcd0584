package strategy

import (
	"time"

	"github.com/SaidJacobo/forex-ml-bot-sub000/internal/order"
	"github.com/SaidJacobo/forex-ml-bot-sub000/pkg/types"
)

// ActionType is what the state machine asks the trader to do.
type ActionType int

const (
	ActionWait ActionType = iota
	ActionOpen
	ActionClose
	ActionUpdate
)

func (a ActionType) String() string {
	switch a {
	case ActionOpen:
		return "OPEN"
	case ActionClose:
		return "CLOSE"
	case ActionUpdate:
		return "UPDATE"
	default:
		return "WAIT"
	}
}

// Action is a single order mutation. Opens carry direction, units and the
// protective levels; closes carry the ticket, fill price and reason;
// updates carry the ticket and revised levels.
type Action struct {
	Type       ActionType
	Direction  order.Direction
	Units      float64
	Price      float64
	StopLoss   *float64
	TakeProfit *float64
	Ticket     int64
	Reason     order.CloseReason

	// GroupReprice marks an update that moves an order onto the grid's
	// recomputed shared levels. Unlike a trailing update it replaces the
	// levels outright instead of only tightening them.
	GroupReprice bool
}

// Decision is everything a strategy wants done for one bar, in order.
// Closes always precede opens and updates.
type Decision struct {
	Actions []Action
	Reason  string
}

// IsWait reports whether the decision mutates nothing.
func (d Decision) IsWait() bool {
	return len(d.Actions) == 0
}

// Snapshot is the trader state a strategy may observe when deciding. It is
// read-only: all mutation flows back through the returned actions.
type Snapshot struct {
	OpenOrders []*order.Order // same-direction group, oldest first
	Balance    float64
	LossStreak int // consecutive losing closed orders
}

// Strategy is the closed capability set of the engine's trading variants.
// One bar is fully processed before the next; OrderManagement must only
// look at history up to and including the current bar.
type Strategy interface {
	Name() string

	// EnterSignal extracts the entry side for this bar, SideNone if flat
	// is the right state.
	EnterSignal(bar types.Bar) types.Side

	// CloseSignal runs the close checks for the bar: protective levels
	// (stop-loss evaluated before take-profit, the conservative gap
	// assumption), holding-period and group lock-in exits.
	CloseSignal(bar types.Bar, snap Snapshot) []Action

	// OrderManagement is the per-bar entry point: close checks first,
	// then entries or grid re-entries. A close suppresses any open or
	// update for the same bar.
	OrderManagement(bar types.Bar, history []types.Bar, snap Snapshot) (Decision, error)

	// ResetForNewPeriod clears indicator state between validation folds.
	ResetForNewPeriod()
}

// Params configures a strategy variant for one instrument run.
type Params struct {
	Meta types.InstrumentMeta

	RiskPct          float64 // % of balance risked to the stop
	RiskReward       float64 // take-profit distance as multiple of stop distance
	StopDistancePips float64

	MaxHoldPeriod time.Duration // 0 disables the TIME exit
	LockInPct     float64       // close the group when floating profit >= balance*LockInPct/100; 0 disables

	// Grid-averaging knobs.
	GridMultiplier    float64 // size scale per consecutive loss
	MaxGridOrders     int
	ATRPeriod         int
	ATRDistanceFactor float64 // re-entry distance = ATR * factor
}
