package broker

import (
	"context"

	"github.com/SaidJacobo/forex-ml-bot-sub000/pkg/types"
)

// Provider is the terminal binding the engine consumes in live mode: the
// current quote and the instrument constraints sizing needs. Order routing
// itself is out of scope; a live-trading adapter sits on the other side of
// this interface.
type Provider interface {
	// InstrumentMeta fetches contract volume, lot bounds, volume step and
	// tick value for a symbol.
	InstrumentMeta(ctx context.Context, symbol string) (types.InstrumentMeta, error)

	// LatestTick fetches the current bid/ask.
	LatestTick(ctx context.Context, symbol string) (types.Tick, error)
}
