package strategy

import "fmt"

// Variant names accepted in configuration. The set is closed: variants are
// resolved here, at configuration-load time, never via dynamic lookup.
const (
	VariantOneShotReversal = "one_shot_reversal"
	VariantGridAveraging   = "grid_averaging"
)

// New resolves a configured variant name into a typed strategy.
func New(variant string, params Params) (Strategy, error) {
	switch variant {
	case VariantOneShotReversal:
		return NewOneShotReversal(params), nil
	case VariantGridAveraging:
		return NewGridAveraging(params), nil
	default:
		return nil, fmt.Errorf("unknown strategy variant %q", variant)
	}
}
